// Package rating updates Elo ratings from the placements of a single 4-player table.
//
// A table is resolved as six independent pairwise matches: each player is
// compared against each opponent, the differences between actual and expected
// scores are summed, scaled by the k-factor, rounded and clamped. Rounding and
// clamping happen per player, so the four deltas are only approximately zero
// sum.
package rating

import (
	"fmt"
	"math"
)

// Defaults applied when no option overrides them.
const (
	DefaultKFactor = 24.0
	DefaultClamp   = 48
	DefaultRating  = 1500

	tableSize = 4
	eloScale  = 400.0
)

// Input is one player's state at a table.
type Input struct {
	PlayerID  string `json:"playerId"`
	Placement int    `json:"placement"`
	Rating    int    `json:"rating"`
}

// Change is the rating update for one player.
type Change struct {
	PlayerID string `json:"playerId"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Delta    int    `json:"delta"`
}

// ComputeEloForTable returns one change per input, in input order.
func ComputeEloForTable(players []Input, opts ...Option) ([]Change, error) {
	if len(players) != tableSize {
		return nil, fmt.Errorf("%w: got %d", ErrTableSize, len(players))
	}
	s := settings{kFactor: DefaultKFactor, clamp: DefaultClamp}
	for _, opt := range opts {
		opt(&s)
	}

	changes := make([]Change, len(players))
	for i, player := range players {
		sumDiff := 0.0
		for j, opponent := range players {
			if j == i {
				continue
			}
			sumDiff += beats(player.Placement, opponent.Placement) - Expected(player.Rating, opponent.Rating)
		}
		delta := roundAndClamp(s.kFactor*sumDiff, s.clamp)
		changes[i] = Change{
			PlayerID: player.PlayerID,
			Before:   player.Rating,
			After:    player.Rating + delta,
			Delta:    delta,
		}
	}
	return changes, nil
}

// Expected is the logistic probability that a player rated a beats one rated b.
func Expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/eloScale))
}

func beats(a, b int) float64 {
	if a < b {
		return 1
	}
	return 0
}

// roundAndClamp rounds .5 towards positive infinity, so -2.5 becomes -2, then
// bounds the result to [-bound, bound]. The bound is applied before the int
// conversion so very large k-factors cannot overflow.
func roundAndClamp(x float64, bound int) int {
	limit := float64(bound)
	return int(math.Max(-limit, math.Min(limit, math.Floor(x+0.5))))
}
