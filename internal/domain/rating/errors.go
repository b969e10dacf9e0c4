package rating

import "errors"

// ErrTableSize is returned when a table does not hold exactly four players.
var ErrTableSize = errors.New("elo tables must contain exactly 4 players")
