package summary

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
)

// DashboardSize is the length of each dashboard leaderboard.
const DashboardSize = 5

// BonusHit counts results that earned a bonus in one game.
type BonusHit struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RatingPoint is one entry of the rating time series.
type RatingPoint struct {
	PlayerID  string    `json:"playerId"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dashboard is the cross-tournament overview.
type Dashboard struct {
	TopTeams     []TeamEntry   `json:"topTeams"`
	TopPlayers   []PointsEntry `json:"topPlayers"`
	TopElo       []RatingEntry `json:"topElo"`
	BonusHits    []BonusHit    `json:"bonusHits"`
	RatingSeries []RatingPoint `json:"ratingSeries"`
	AvgWinning   *float64      `json:"avgWinning"`
}

// PlayerTotals are a player's points across every game.
type PlayerTotals struct {
	TotalPoints   float64            `json:"totalPoints"`
	PerGamePoints map[string]float64 `json:"perGamePoints"`
}

// TeamSummary is a team's points across every game.
type TeamSummary struct {
	Team        model.Team         `json:"team"`
	TotalPoints float64            `json:"totalPoints"`
	PerGame     map[string]float64 `json:"perGame"`
}

// BuildDashboard aggregates all settled results. Bonus hits are keyed
// "<game>: bonus" and count results whose bonus was positive when settled.
// changes are expected in creation order.
func BuildDashboard(rows []model.ResultRow, players []model.Player, teams []model.Team, games []model.Game, changes []model.RatingChange) Dashboard {
	gameNames := GameNames(games)
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}
	byID := make(map[string]model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	playerTotals := make(map[string]*PointsEntry)
	teamTotals := make(map[string]*TeamEntry)
	bonusHits := make(map[string]int)
	var winningTotal float64
	var winners int

	for _, row := range rows {
		p := byID[row.PlayerID]
		entry, ok := playerTotals[row.PlayerID]
		if !ok {
			entry = &PointsEntry{PlayerID: p.ID, Name: p.Name, TeamName: teamNames[p.TeamID]}
			playerTotals[row.PlayerID] = entry
		}
		entry.Points += row.PointsAwarded

		if p.TeamID != "" {
			team, ok := teamTotals[p.TeamID]
			if !ok {
				team = &TeamEntry{TeamID: p.TeamID, TeamName: teamNames[p.TeamID]}
				teamTotals[p.TeamID] = team
			}
			team.Points += row.PointsAwarded
		}
		if row.Bonus > 0 {
			bonusHits[gameNames[row.GameID]+": bonus"]++
		}
		if row.Placement == 1 && row.RawScore != nil {
			winningTotal += *row.RawScore
			winners++
		}
	}

	out := Dashboard{
		TopPlayers:   sortedPoints(playerTotals),
		TopTeams:     make([]TeamEntry, 0, len(teamTotals)),
		TopElo:       make([]RatingEntry, 0, len(players)),
		BonusHits:    make([]BonusHit, 0, len(bonusHits)),
		RatingSeries: make([]RatingPoint, 0, len(changes)),
	}
	for _, t := range teamTotals {
		out.TopTeams = append(out.TopTeams, *t)
	}
	slices.SortFunc(out.TopTeams, func(a, b TeamEntry) int {
		return byValueThenID(a.Points, b.Points, a.TeamID, b.TeamID)
	})
	for _, p := range players {
		out.TopElo = append(out.TopElo, RatingEntry{PlayerID: p.ID, Name: p.Name, Rating: p.Rating, TeamName: teamNames[p.TeamID]})
	}
	slices.SortFunc(out.TopElo, func(a, b RatingEntry) int {
		return byValueThenID(float64(a.Rating), float64(b.Rating), a.PlayerID, b.PlayerID)
	})
	for name, count := range bonusHits {
		out.BonusHits = append(out.BonusHits, BonusHit{Name: name, Count: count})
	}
	slices.SortFunc(out.BonusHits, func(a, b BonusHit) int { return cmp.Compare(a.Name, b.Name) })
	for _, c := range changes {
		out.RatingSeries = append(out.RatingSeries, RatingPoint{PlayerID: c.PlayerID, Delta: c.Delta, CreatedAt: c.CreatedAt})
	}
	if winners > 0 {
		avg := round2(winningTotal / float64(winners))
		out.AvgWinning = &avg
	}

	out.TopPlayers = head(out.TopPlayers, DashboardSize)
	out.TopTeams = head(out.TopTeams, DashboardSize)
	out.TopElo = head(out.TopElo, DashboardSize)
	return out
}

// PlayerPoints totals points per player id, overall and per game name.
func PlayerPoints(rows []model.ResultRow, gameNames map[string]string) map[string]PlayerTotals {
	out := make(map[string]PlayerTotals)
	for _, row := range rows {
		t, ok := out[row.PlayerID]
		if !ok {
			t = PlayerTotals{PerGamePoints: make(map[string]float64)}
		}
		t.TotalPoints += row.PointsAwarded
		t.PerGamePoints[gameNames[row.GameID]] += row.PointsAwarded
		out[row.PlayerID] = t
	}
	for id, t := range out {
		t.TotalPoints = round2(t.TotalPoints)
		out[id] = t
	}
	return out
}

// TeamPoints totals points per team id using each player's current team.
func TeamPoints(rows []model.ResultRow, players []model.Player) map[string]float64 {
	teamOf := make(map[string]string, len(players))
	for _, p := range players {
		teamOf[p.ID] = p.TeamID
	}
	out := make(map[string]float64)
	for _, row := range rows {
		if team := teamOf[row.PlayerID]; team != "" {
			out[team] += row.PointsAwarded
		}
	}
	for id, v := range out {
		out[id] = round2(v)
	}
	return out
}

// Team summarises the points of team's current members.
func Team(team model.Team, rows []model.ResultRow, players []model.Player, gameNames map[string]string) TeamSummary {
	members := make(map[string]struct{})
	for _, p := range players {
		if p.TeamID == team.ID {
			members[p.ID] = struct{}{}
		}
	}
	out := TeamSummary{Team: team, PerGame: make(map[string]float64)}
	for _, row := range rows {
		if _, ok := members[row.PlayerID]; !ok {
			continue
		}
		out.TotalPoints += row.PointsAwarded
		out.PerGame[gameNames[row.GameID]] += row.PointsAwarded
	}
	out.TotalPoints = round2(out.TotalPoints)
	return out
}

// PointsBreakdown maps table id to the points playerID earned there.
func PointsBreakdown(rows []model.ResultRow, playerID string) map[string]float64 {
	out := make(map[string]float64)
	for _, row := range rows {
		if row.PlayerID == playerID {
			out[row.TableID] += row.PointsAwarded
		}
	}
	return out
}

// GameNames indexes game names by id.
func GameNames(games []model.Game) map[string]string {
	out := make(map[string]string, len(games))
	for _, g := range games {
		out[g.ID] = g.Name
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
