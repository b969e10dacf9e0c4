// Package results validates submitted table outcomes and settles them into
// awarded points and rating changes.
package results

import (
	"fmt"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
)

const seatsPerTable = 4

// Submission is one reported seat outcome.
type Submission struct {
	PlayerID  string   `json:"playerId"`
	Placement int      `json:"placement"`
	RawScore  *float64 `json:"rawScore,omitempty"`
}

// Settlement is the outcome of settling one table.
type Settlement struct {
	Results []model.Result  `json:"results"`
	Changes []rating.Change `json:"changes"`
}

// Validate checks a submission against the seated players. An empty seated
// list skips the seating check.
func Validate(seated []string, subs []Submission) error {
	if len(subs) != seatsPerTable {
		return fmt.Errorf("%w: got %d", ErrSeatCount, len(subs))
	}

	players := make(map[string]struct{}, len(subs))
	var placements [seatsPerTable + 1]bool
	for _, s := range subs {
		if _, dup := players[s.PlayerID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicatePlayer, s.PlayerID)
		}
		players[s.PlayerID] = struct{}{}

		if s.Placement < 1 || s.Placement > seatsPerTable || placements[s.Placement] {
			return fmt.Errorf("%w: %d", ErrInvalidPlacement, s.Placement)
		}
		placements[s.Placement] = true
	}

	if len(seated) == 0 {
		return nil
	}
	seats := make(map[string]struct{}, len(seated))
	for _, id := range seated {
		seats[id] = struct{}{}
	}
	for _, s := range subs {
		if _, ok := seats[s.PlayerID]; !ok {
			return fmt.Errorf("%w: %q", ErrNotSeated, s.PlayerID)
		}
	}
	return nil
}

// Settle scores every seat under rs and computes the table's rating changes
// from the current ratings. Results and changes follow submission order.
func Settle(subs []Submission, rs rules.Ruleset, ratings map[string]int, opts ...Option) (Settlement, error) {
	if err := Validate(nil, subs); err != nil {
		return Settlement{}, err
	}
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	out := Settlement{Results: make([]model.Result, len(subs))}
	inputs := make([]rating.Input, len(subs))
	for i, sub := range subs {
		points := rules.ComputePoints(sub.Placement, sub.RawScore, rs)
		out.Results[i] = model.Result{
			PlayerID:       sub.PlayerID,
			Placement:      sub.Placement,
			RawScore:       sub.RawScore,
			BasePoints:     points.BasePoints,
			Bonus:          points.Bonus,
			PointsAwarded:  points.Total,
			AppliedBonuses: points.AppliedBonusNames,
		}

		current, ok := ratings[sub.PlayerID]
		if !ok {
			current = s.defaultRating
		}
		inputs[i] = rating.Input{PlayerID: sub.PlayerID, Placement: sub.Placement, Rating: current}
	}

	changes, err := rating.ComputeEloForTable(inputs,
		rating.WithKFactor(rs.ResolveKFactor(s.defaultKFactor)),
		rating.WithClamp(s.clamp),
	)
	if err != nil {
		return Settlement{}, fmt.Errorf("compute ratings: %w", err)
	}
	out.Changes = changes
	return out, nil
}
