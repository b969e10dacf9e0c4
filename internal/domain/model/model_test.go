package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	convey.Convey("Given a seated table", t, func() {
		table := model.Table{
			ID: "t1",
			Seats: []model.Seat{
				{PlayerID: "p3", SeatNumber: 1},
				{PlayerID: "p1", SeatNumber: 2},
				{PlayerID: "p4", SeatNumber: 3},
				{PlayerID: "p2", SeatNumber: 4},
			},
		}

		convey.Convey("When listing its players", func() {
			ids := table.PlayerIDs()

			convey.Convey("Then they are returned in seat order", func() {
				convey.So(ids, convey.ShouldResemble, []string{"p3", "p1", "p4", "p2"})
			})
		})

		convey.Convey("When no results have been recorded", func() {
			convey.Convey("Then it is not settled", func() {
				convey.So(table.HasResults(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When results are attached", func() {
			table.Results = []model.Result{{PlayerID: "p3", Placement: 1}}

			convey.Convey("Then it is settled", func() {
				convey.So(table.HasResults(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given an empty table", t, func() {
		convey.Convey("Then it has no players", func() {
			convey.So(model.Table{}.PlayerIDs(), convey.ShouldBeEmpty)
		})
	})
}

func TestResultJSON(t *testing.T) {
	convey.Convey("Given a result without a raw score", t, func() {
		r := model.Result{PlayerID: "p1", Placement: 2, BasePoints: 3, PointsAwarded: 3, AppliedBonuses: []string{}}

		convey.Convey("When it is encoded", func() {
			b, err := json.Marshal(r)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the raw score is omitted", func() {
				convey.So(string(b), convey.ShouldNotContainSubstring, "rawScore")
				convey.So(string(b), convey.ShouldContainSubstring, `"appliedBonuses":[]`)
			})
		})
	})
}
