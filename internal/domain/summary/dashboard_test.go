package summary_test

import (
	"testing"
	"time"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
	. "github.com/smartystreets/goconvey/convey"
)

func row(game, table, player string, placement int, points, bonus float64, score *float64) model.ResultRow {
	return model.ResultRow{
		GameID:  game,
		TableID: table,
		Result: model.Result{
			PlayerID:      player,
			Placement:     placement,
			RawScore:      score,
			Bonus:         bonus,
			PointsAwarded: points,
		},
	}
}

func TestBuildDashboard(t *testing.T) {
	Convey("Given results across two games", t, func() {
		games := []model.Game{{ID: "g1", Name: "Catan"}, {ID: "g2", Name: "Azul"}}
		teams := []model.Team{{ID: "red", Name: "Red"}, {ID: "blue", Name: "Blue"}}
		players := []model.Player{
			{ID: "a", Name: "Ada", TeamID: "red", Rating: 1536},
			{ID: "b", Name: "Bo", TeamID: "blue", Rating: 1512},
			{ID: "c", Name: "Cy", TeamID: "red", Rating: 1488},
			{ID: "d", Name: "Di", Rating: 1464},
			{ID: "e", Name: "Ed", Rating: 1500},
			{ID: "f", Name: "Fi", Rating: 1500},
		}
		rows := []model.ResultRow{
			row("g1", "t1", "a", 1, 6, 1, raw(100)),
			row("g1", "t1", "b", 2, 3, 0, raw(70)),
			row("g1", "t1", "c", 3, 2, 0, nil),
			row("g1", "t1", "d", 4, 1, 0, nil),
			row("g2", "t2", "b", 1, 7, 2, raw(51.25)),
			row("g2", "t2", "a", 2, 3, 0, nil),
			row("g2", "t2", "d", 3, 2, 0, nil),
			row("g2", "t2", "c", 4, 1, 0, nil),
		}
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		changes := []model.RatingChange{
			{PlayerID: "a", Delta: 36, CreatedAt: at},
			{PlayerID: "b", Delta: 12, CreatedAt: at},
		}

		Convey("When the dashboard is built", func() {
			d := summary.BuildDashboard(rows, players, teams, games, changes)

			Convey("Then players and teams are ranked by points", func() {
				So(d.TopPlayers[0].PlayerID, ShouldEqual, "b")
				So(d.TopPlayers[0].Points, ShouldEqual, 10)
				So(d.TopPlayers[0].TeamName, ShouldEqual, "Blue")
				So(d.TopPlayers[1].PlayerID, ShouldEqual, "a")
				So(d.TopTeams, ShouldResemble, []summary.TeamEntry{
					{TeamID: "red", TeamName: "Red", Points: 12},
					{TeamID: "blue", TeamName: "Blue", Points: 10},
				})
			})

			Convey("And the rating board is capped at five", func() {
				So(d.TopElo, ShouldHaveLength, summary.DashboardSize)
				So(d.TopElo[0].PlayerID, ShouldEqual, "a")
				So(d.TopElo[2].PlayerID, ShouldEqual, "e")
				So(d.TopElo[3].PlayerID, ShouldEqual, "f")
			})

			Convey("And bonuses are counted per game", func() {
				So(d.BonusHits, ShouldResemble, []summary.BonusHit{
					{Name: "Azul: bonus", Count: 1},
					{Name: "Catan: bonus", Count: 1},
				})
			})

			Convey("And the winning average and rating series are reported", func() {
				So(*d.AvgWinning, ShouldEqual, 75.63)
				So(d.RatingSeries, ShouldHaveLength, 2)
				So(d.RatingSeries[0].Delta, ShouldEqual, 36)
				So(d.RatingSeries[0].CreatedAt, ShouldEqual, at)
			})
		})

		Convey("When totals are requested", func() {
			names := summary.GameNames(games)
			perPlayer := summary.PlayerPoints(rows, names)
			perTeam := summary.TeamPoints(rows, players)

			Convey("Then points are split per game and summed per team", func() {
				So(perPlayer["a"].TotalPoints, ShouldEqual, 9)
				So(perPlayer["a"].PerGamePoints, ShouldResemble, map[string]float64{"Catan": 6, "Azul": 3})
				_, ok := perPlayer["e"]
				So(ok, ShouldBeFalse)
				So(perTeam, ShouldResemble, map[string]float64{"red": 12, "blue": 10})
			})

			Convey("And a team summary lists its members' games", func() {
				s := summary.Team(teams[0], rows, players, names)
				So(s.TotalPoints, ShouldEqual, 12)
				So(s.PerGame, ShouldResemble, map[string]float64{"Catan": 8, "Azul": 4})
			})

			Convey("And a player's breakdown is keyed by table", func() {
				So(summary.PointsBreakdown(rows, "c"), ShouldResemble, map[string]float64{"t1": 2, "t2": 1})
				So(summary.PointsBreakdown(rows, "ghost"), ShouldBeEmpty)
			})
		})
	})

	Convey("Given no results", t, func() {
		d := summary.BuildDashboard(nil, nil, nil, nil, nil)

		Convey("Then every board is empty and there is no average", func() {
			So(d.TopPlayers, ShouldBeEmpty)
			So(d.TopTeams, ShouldBeEmpty)
			So(d.TopElo, ShouldBeEmpty)
			So(d.BonusHits, ShouldBeEmpty)
			So(d.AvgWinning, ShouldBeNil)
		})
	})
}
