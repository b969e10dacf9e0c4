package api

import (
	"errors"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrMissingID  = errors.New("missing path identifier")
)

var validationErrors = []error{
	ErrBadRequest,
	ErrMissingID,
	repository.ErrInvalidInput,
	repository.ErrInvalidRoster,
	repository.ErrInvalidSeats,
	repository.ErrInvalidLimit,
	results.ErrSeatCount,
	results.ErrInvalidPlacement,
	results.ErrDuplicatePlayer,
	results.ErrNotSeated,
	pairing.ErrInvalidRosterSize,
	pairing.ErrDuplicatePlayer,
	pairing.ErrUnsatisfiableAssignment,
	rating.ErrTableSize,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
