package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidRoster = errors.New("tournament roster must hold a positive multiple of 4 distinct players")
	ErrInvalidSeats  = errors.New("seats must place 4 distinct participants in seats 1-4")
	ErrOpenRound     = errors.New("lock the current round before generating a new one")
	ErrRoundLocked   = errors.New("round is locked")
	ErrResultsExist  = errors.New("results already submitted for this table")
)
