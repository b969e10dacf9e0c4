// Package rules converts a seat's placement and raw score into awarded points
// under an operator-configured ruleset.
//
// Rulesets arrive as loosely typed configuration. CoerceRules normalises them
// and ComputePoints never fails: a missing or malformed ruleset behaves like
// the default placement table with no bonuses.
package rules

import (
	"maps"
	"strconv"
)

// DefaultKFactor is the rating sensitivity used when a ruleset sets none.
const DefaultKFactor = 24.0

// BonusName labels bonus rules that were configured without a name.
const BonusName = "Bonus"

var defaultPoints = map[string]float64{
	"1": 5,
	"2": 3,
	"3": 2,
	"4": 1,
}

// Condition gates a bonus. Every non-nil field must hold.
type Condition struct {
	RawScoreAtLeast *float64 `json:"rawScoreAtLeast,omitempty"`
	PlacementEquals *int     `json:"placementEquals,omitempty"`
}

// BonusRule awards AddPoints, which may be negative, when If holds.
type BonusRule struct {
	Name      string    `json:"name"`
	If        Condition `json:"if"`
	AddPoints float64   `json:"addPoints"`
}

// Ruleset is the normalised game configuration.
type Ruleset struct {
	PointsByPlacement map[string]float64 `json:"pointsByPlacement,omitempty"`
	Bonuses           []BonusRule        `json:"bonuses,omitempty"`
	KFactor           *float64           `json:"kFactor,omitempty"`
}

// Points is the breakdown returned by ComputePoints.
type Points struct {
	BasePoints        float64  `json:"basePoints"`
	Bonus             float64  `json:"bonus"`
	Total             float64  `json:"total"`
	AppliedBonusNames []string `json:"appliedBonusNames"`
}

// DefaultPointsByPlacement returns a copy of the standard placement table.
func DefaultPointsByPlacement() map[string]float64 {
	return maps.Clone(defaultPoints)
}

// ResolvePointsByPlacement overlays the ruleset's table on the defaults.
func ResolvePointsByPlacement(rs Ruleset) map[string]float64 {
	table := DefaultPointsByPlacement()
	maps.Copy(table, rs.PointsByPlacement)
	return table
}

// ResolveKFactor returns the ruleset's k-factor or def when unset.
func (rs Ruleset) ResolveKFactor(def float64) float64 {
	if rs.KFactor == nil {
		return def
	}
	return *rs.KFactor
}

// ComputePoints scores one seat. A nil rawScore fails every raw score
// condition. Placements outside the resolved table earn no base points.
func ComputePoints(placement int, rawScore *float64, rs Ruleset) Points {
	base := ResolvePointsByPlacement(rs)[strconv.Itoa(placement)]

	bonus := 0.0
	applied := []string{}
	for _, rule := range rs.Bonuses {
		if !rule.If.holds(placement, rawScore) {
			continue
		}
		bonus += rule.AddPoints
		name := rule.Name
		if name == "" {
			name = BonusName
		}
		applied = append(applied, name)
	}

	return Points{
		BasePoints:        base,
		Bonus:             bonus,
		Total:             base + bonus,
		AppliedBonusNames: applied,
	}
}

func (c Condition) holds(placement int, rawScore *float64) bool {
	if c.RawScoreAtLeast != nil {
		if rawScore == nil || *rawScore < *c.RawScoreAtLeast {
			return false
		}
	}
	if c.PlacementEquals != nil && placement != *c.PlacementEquals {
		return false
	}
	return true
}
