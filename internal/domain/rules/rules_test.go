package rules_test

import (
	"encoding/json"
	"testing"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func float(v float64) *float64 { return &v }
func integer(v int) *int       { return &v }

func TestComputePoints(t *testing.T) {
	Convey("Given the empty ruleset", t, func() {
		rs := rules.Ruleset{}

		Convey("When the winner has no raw score", func() {
			points := rules.ComputePoints(1, nil, rs)

			Convey("Then the default placement table applies with no bonus", func() {
				So(points.BasePoints, ShouldEqual, 5)
				So(points.Bonus, ShouldEqual, 0)
				So(points.Total, ShouldEqual, 5)
				So(points.AppliedBonusNames, ShouldBeEmpty)
			})
		})

		Convey("When every placement is scored", func() {
			Convey("Then the defaults are 5, 3, 2 and 1", func() {
				So(rules.ComputePoints(2, nil, rs).Total, ShouldEqual, 3)
				So(rules.ComputePoints(3, nil, rs).Total, ShouldEqual, 2)
				So(rules.ComputePoints(4, nil, rs).Total, ShouldEqual, 1)
			})
		})

		Convey("When the placement is outside the table", func() {
			Convey("Then no base points are awarded", func() {
				So(rules.ComputePoints(5, nil, rs).BasePoints, ShouldEqual, 0)
				So(rules.ComputePoints(0, nil, rs).BasePoints, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a custom table with a high score bonus", t, func() {
		rs := rules.CoerceRules(map[string]any{
			"pointsByPlacement": map[string]any{"1": 6, "2": 4, "3": 2, "4": 0},
			"bonuses": []any{
				map[string]any{"name": "High score", "if": map[string]any{"rawScoreAtLeast": 80}, "addPoints": 2},
			},
		})

		Convey("When second place scores 85", func() {
			points := rules.ComputePoints(2, float(85), rs)

			Convey("Then base and bonus are combined", func() {
				So(points.BasePoints, ShouldEqual, 4)
				So(points.Bonus, ShouldEqual, 2)
				So(points.Total, ShouldEqual, 6)
				So(points.AppliedBonusNames, ShouldResemble, []string{"High score"})
			})
		})

		Convey("When the raw score is missing", func() {
			points := rules.ComputePoints(2, nil, rs)

			Convey("Then the threshold bonus does not apply", func() {
				So(points.Bonus, ShouldEqual, 0)
				So(points.Total, ShouldEqual, 4)
			})
		})

		Convey("When the raw score equals the threshold", func() {
			Convey("Then the bonus applies", func() {
				So(rules.ComputePoints(4, float(80), rs).Total, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a partial table", t, func() {
		rs := rules.Ruleset{PointsByPlacement: map[string]float64{"1": 10}}

		Convey("Then missing placements fall back to the defaults", func() {
			So(rules.ComputePoints(1, nil, rs).BasePoints, ShouldEqual, 10)
			So(rules.ComputePoints(2, nil, rs).BasePoints, ShouldEqual, 3)
		})
	})

	Convey("Given several bonuses with combined conditions", t, func() {
		rs := rules.Ruleset{Bonuses: []rules.BonusRule{
			{Name: "Clean sweep", If: rules.Condition{PlacementEquals: integer(1), RawScoreAtLeast: float(100)}, AddPoints: 3},
			{Name: "Last place", If: rules.Condition{PlacementEquals: integer(4)}, AddPoints: -1},
			{If: rules.Condition{}, AddPoints: 0.5},
		}}

		Convey("When a winner reaches the score", func() {
			points := rules.ComputePoints(1, float(120), rs)

			Convey("Then matching bonuses are summed in rule order", func() {
				So(points.Bonus, ShouldEqual, 3.5)
				So(points.Total, ShouldEqual, 8.5)
				So(points.AppliedBonusNames, ShouldResemble, []string{"Clean sweep", rules.BonusName})
			})
		})

		Convey("When a winner misses the score", func() {
			points := rules.ComputePoints(1, float(99), rs)

			Convey("Then a partially met condition does not apply", func() {
				So(points.AppliedBonusNames, ShouldResemble, []string{rules.BonusName})
			})
		})

		Convey("When the player finishes last", func() {
			points := rules.ComputePoints(4, nil, rs)

			Convey("Then negative bonuses reduce the total", func() {
				So(points.Bonus, ShouldEqual, -0.5)
				So(points.Total, ShouldEqual, 0.5)
			})
		})
	})
}

func TestComputePoints_Idempotent(t *testing.T) {
	Convey("Given identical inputs", t, func() {
		rs := rules.CoerceRules(`{"bonuses":[{"name":"80+","if":{"rawScoreAtLeast":80},"addPoints":1}]}`)

		Convey("Then repeated calls give identical results", func() {
			first := rules.ComputePoints(1, float(90), rs)
			second := rules.ComputePoints(1, float(90), rs)
			So(second, ShouldResemble, first)

			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			So(string(a), ShouldEqual, string(b))
		})
	})
}

func TestResolveKFactor(t *testing.T) {
	Convey("Given rulesets with and without a k-factor", t, func() {
		So(rules.Ruleset{}.ResolveKFactor(rules.DefaultKFactor), ShouldEqual, 24)
		So(rules.Ruleset{KFactor: float(28)}.ResolveKFactor(rules.DefaultKFactor), ShouldEqual, 28)
	})
}

func TestDefaultPointsByPlacement(t *testing.T) {
	Convey("Given the default table", t, func() {
		table := rules.DefaultPointsByPlacement()
		table["1"] = 100

		Convey("Then callers receive a copy", func() {
			So(rules.DefaultPointsByPlacement()["1"], ShouldEqual, 5)
		})
	})
}
