package rules

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCoerceRules(t *testing.T) {
	Convey("Given externally supplied rulesets", t, func() {
		Convey("When the input is not an object", func() {
			Convey("Then the empty ruleset is returned", func() {
				So(CoerceRules(nil), ShouldResemble, Ruleset{})
				So(CoerceRules(42), ShouldResemble, Ruleset{})
				So(CoerceRules([]any{1, 2}), ShouldResemble, Ruleset{})
				So(CoerceRules(`[1, 2]`), ShouldResemble, Ruleset{})
				So(CoerceRules(`not json`), ShouldResemble, Ruleset{})
				So(CoerceRules((*Ruleset)(nil)), ShouldResemble, Ruleset{})
			})
		})

		Convey("When values are numeric strings", func() {
			rs := CoerceRules(map[string]any{
				"pointsByPlacement": map[string]any{"1": "7", "2": " 4.5 ", "3": true, "4": nil},
				"bonuses":           []any{map[string]any{"name": "Tie breaker", "addPoints": "2"}},
				"kFactor":           "28",
			})

			Convey("Then they are coerced to numbers", func() {
				So(rs.PointsByPlacement, ShouldResemble, map[string]float64{"1": 7, "2": 4.5, "3": 1, "4": 0})
				So(rs.Bonuses, ShouldHaveLength, 1)
				So(rs.Bonuses[0].AddPoints, ShouldEqual, 2)
				So(*rs.KFactor, ShouldEqual, 28)
			})
		})

		Convey("When the ruleset arrives as a JSON document", func() {
			doc := json.RawMessage(`{
				"pointsByPlacement": {"1": 6, "2": 4, "3": 2, "4": 0},
				"bonuses": [{"name": "250+", "if": {"rawScoreAtLeast": 250, "placementEquals": 1}, "addPoints": 1}],
				"kFactor": 28,
				"colour": "green"
			}`)
			rs := CoerceRules(doc)

			Convey("Then known fields are decoded and unknown ones ignored", func() {
				So(rs.PointsByPlacement["1"], ShouldEqual, 6)
				So(rs.Bonuses[0].Name, ShouldEqual, "250+")
				So(*rs.Bonuses[0].If.RawScoreAtLeast, ShouldEqual, 250)
				So(*rs.Bonuses[0].If.PlacementEquals, ShouldEqual, 1)
				So(*rs.KFactor, ShouldEqual, 28)
			})

			Convey("And the byte and string forms agree", func() {
				So(CoerceRules([]byte(doc)), ShouldResemble, rs)
				So(CoerceRules(string(doc)), ShouldResemble, rs)
			})
		})

		Convey("When any numeric field cannot be coerced", func() {
			Convey("Then the whole ruleset falls back to empty", func() {
				So(CoerceRules(map[string]any{
					"pointsByPlacement": map[string]any{"1": "lots"},
				}), ShouldResemble, Ruleset{})
				So(CoerceRules(map[string]any{
					"bonuses": []any{map[string]any{"name": "x", "addPoints": map[string]any{}}},
				}), ShouldResemble, Ruleset{})
				So(CoerceRules(map[string]any{
					"bonuses": []any{map[string]any{"name": "missing points"}},
				}), ShouldResemble, Ruleset{})
				So(CoerceRules(map[string]any{"kFactor": "NaN"}), ShouldResemble, Ruleset{})
				So(CoerceRules(map[string]any{"bonuses": "all of them"}), ShouldResemble, Ruleset{})
				So(CoerceRules(map[string]any{
					"bonuses": []any{map[string]any{"addPoints": 1, "if": map[string]any{"placementEquals": 1.5}}},
				}), ShouldResemble, Ruleset{})
			})
		})

		Convey("When a bonus has no condition", func() {
			rs := CoerceRules(map[string]any{
				"bonuses": []any{map[string]any{"addPoints": 1, "if": nil}},
			})

			Convey("Then it always applies under the generic name", func() {
				So(ComputePoints(3, nil, rs).AppliedBonusNames, ShouldResemble, []string{BonusName})
			})
		})

		Convey("When a typed ruleset is passed", func() {
			k := 30.0
			typed := Ruleset{KFactor: &k}

			Convey("Then it is returned unchanged", func() {
				So(CoerceRules(typed), ShouldResemble, typed)
				So(CoerceRules(&typed), ShouldResemble, typed)
			})
		})

		Convey("When the JSON ruleset is empty", func() {
			Convey("Then no fields are set", func() {
				So(CoerceRules(`{}`), ShouldResemble, Ruleset{})
			})
		})
	})
}

func TestToNumber(t *testing.T) {
	cases := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{in: 3, want: 3},
		{in: 2.5, want: 2.5},
		{in: json.Number("12"), want: 12},
		{in: "", want: 0},
		{in: "-4", want: -4},
		{in: false, want: 0},
		{in: "1e3", want: 1000},
		{in: "Inf", wantErr: true},
		{in: "abc", wantErr: true},
		{in: []any{}, wantErr: true},
	}
	for _, tc := range cases {
		got, err := toNumber(tc.in)
		if tc.wantErr {
			if !errors.Is(err, errNotNumeric) {
				t.Errorf("toNumber(%#v): expected errNotNumeric, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("toNumber(%#v): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("toNumber(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
