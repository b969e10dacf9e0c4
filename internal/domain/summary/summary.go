// Package summary aggregates settled results into game summaries and
// tournament standings.
package summary

import (
	"cmp"
	"slices"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
)

// GameLeaderboardSize is the number of players listed in a game summary.
const GameLeaderboardSize = 10

// PointsEntry is a player's accumulated points.
type PointsEntry struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Points   float64 `json:"points"`
	Rating   int     `json:"rating,omitempty"`
	TeamName string  `json:"teamName,omitempty"`
}

// TeamEntry is a team's accumulated points.
type TeamEntry struct {
	TeamID   string  `json:"teamId"`
	TeamName string  `json:"teamName"`
	Points   float64 `json:"points"`
}

// RatingEntry is a participant's current rating.
type RatingEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	TeamName string `json:"teamName,omitempty"`
}

// GameSummary describes every settled table of one game.
type GameSummary struct {
	Leaderboard     []PointsEntry  `json:"leaderboard"`
	PlacementCounts map[int]int    `json:"placementCounts"`
	ThresholdHits   map[string]int `json:"thresholdHits"`
	AvgWinningScore *float64       `json:"avgWinningScore"`
}

// TournamentStandings are the three leaderboards of a tournament.
type TournamentStandings struct {
	Individuals []PointsEntry `json:"individuals"`
	Teams       []TeamEntry   `json:"teams"`
	Elo         []RatingEntry `json:"elo"`
}

// Game summarises results. Bonus hits are recomputed with rs, so they follow
// the game's current ruleset rather than the one in force when a table was
// settled. names maps player ids to display names.
func Game(results []model.Result, names map[string]string, rs rules.Ruleset) GameSummary {
	totals := make(map[string]*PointsEntry)
	out := GameSummary{
		PlacementCounts: make(map[int]int),
		ThresholdHits:   make(map[string]int),
	}
	var winningTotal float64
	var winners int

	for _, r := range results {
		entry, ok := totals[r.PlayerID]
		if !ok {
			entry = &PointsEntry{PlayerID: r.PlayerID, Name: names[r.PlayerID]}
			totals[r.PlayerID] = entry
		}
		entry.Points += r.PointsAwarded
		out.PlacementCounts[r.Placement]++

		if r.Placement == 1 && r.RawScore != nil {
			winningTotal += *r.RawScore
			winners++
		}
		for _, name := range rules.ComputePoints(r.Placement, r.RawScore, rs).AppliedBonusNames {
			out.ThresholdHits[name]++
		}
	}

	out.Leaderboard = sortedPoints(totals)
	if len(out.Leaderboard) > GameLeaderboardSize {
		out.Leaderboard = out.Leaderboard[:GameLeaderboardSize]
	}
	if winners > 0 {
		avg := round2(winningTotal / float64(winners))
		out.AvgWinningScore = &avg
	}
	return out
}

// Standings ranks a tournament's participants by points, their teams by
// points and the participants by current rating. Only players with at least
// one result appear in the points boards.
func Standings(results []model.Result, participants []model.Player, teams []model.Team) TournamentStandings {
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}
	byID := make(map[string]model.Player, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	individuals := make(map[string]*PointsEntry)
	teamTotals := make(map[string]*TeamEntry)
	for _, r := range results {
		p := byID[r.PlayerID]
		entry, ok := individuals[r.PlayerID]
		if !ok {
			entry = &PointsEntry{PlayerID: r.PlayerID, Name: p.Name, Rating: p.Rating, TeamName: teamNames[p.TeamID]}
			individuals[r.PlayerID] = entry
		}
		entry.Points += r.PointsAwarded

		if p.TeamID == "" {
			continue
		}
		team, ok := teamTotals[p.TeamID]
		if !ok {
			team = &TeamEntry{TeamID: p.TeamID, TeamName: teamNames[p.TeamID]}
			teamTotals[p.TeamID] = team
		}
		team.Points += r.PointsAwarded
	}

	out := TournamentStandings{
		Individuals: sortedPoints(individuals),
		Teams:       make([]TeamEntry, 0, len(teamTotals)),
		Elo:         make([]RatingEntry, 0, len(participants)),
	}
	for _, t := range teamTotals {
		out.Teams = append(out.Teams, *t)
	}
	slices.SortFunc(out.Teams, func(a, b TeamEntry) int {
		return byValueThenID(a.Points, b.Points, a.TeamID, b.TeamID)
	})
	for _, p := range participants {
		out.Elo = append(out.Elo, RatingEntry{PlayerID: p.ID, Name: p.Name, Rating: p.Rating, TeamName: teamNames[p.TeamID]})
	}
	slices.SortFunc(out.Elo, func(a, b RatingEntry) int {
		return byValueThenID(float64(a.Rating), float64(b.Rating), a.PlayerID, b.PlayerID)
	})
	return out
}

func sortedPoints(totals map[string]*PointsEntry) []PointsEntry {
	out := make([]PointsEntry, 0, len(totals))
	for _, e := range totals {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b PointsEntry) int {
		return byValueThenID(a.Points, b.Points, a.PlayerID, b.PlayerID)
	})
	return out
}

// byValueThenID orders by value descending, then id ascending.
func byValueThenID(av, bv float64, aid, bid string) int {
	if c := cmp.Compare(bv, av); c != 0 {
		return c
	}
	return cmp.Compare(aid, bid)
}
