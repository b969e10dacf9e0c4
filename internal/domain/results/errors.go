package results

import "errors"

var (
	// ErrSeatCount is returned when a submission does not cover exactly four seats.
	ErrSeatCount = errors.New("results must contain exactly 4 entries")
	// ErrInvalidPlacement is returned when placements are not a permutation of 1..4.
	ErrInvalidPlacement = errors.New("placements must be unique values between 1 and 4")
	// ErrDuplicatePlayer is returned when a player appears twice in one submission.
	ErrDuplicatePlayer = errors.New("player submitted more than once")
	// ErrNotSeated is returned when a submitted player is not seated at the table.
	ErrNotSeated = errors.New("player is not seated at this table")
)
