package pairing

import "errors"

// Sentinel errors returned by GenerateRound.
var (
	ErrInvalidRosterSize       = errors.New("player count must be divisible by 4")
	ErrUnsatisfiableAssignment = errors.New("unable to build a table with remaining players")
	ErrDuplicatePlayer         = errors.New("player appears more than once in roster")
)
