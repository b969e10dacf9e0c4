package service

import (
	"context"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
)

// PointsPreview is a player's points broken down by table id.
type PointsPreview struct {
	Breakdown map[string]float64 `json:"breakdown"`
}

// TopN returns the n highest rated players.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.store.TopRatings(ctx, n)
}

// Rank returns a player's rating position.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	return s.store.RatingRank(ctx, playerID)
}

func (s *Service) RatingHistory(ctx context.Context, playerID string) ([]model.RatingChange, error) {
	return s.store.RatingHistory(ctx, playerID)
}

// GameSummary aggregates every settled table played under gameID.
func (s *Service) GameSummary(ctx context.Context, gameID string) (summary.GameSummary, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return summary.GameSummary{}, err
	}
	rows, err := s.store.GameResults(ctx, gameID)
	if err != nil {
		return summary.GameSummary{}, err
	}
	names := make(map[string]string)
	for _, p := range s.store.ListPlayers(ctx) {
		names[p.ID] = p.Name
	}
	return summary.Game(model.Results(rows), names, game.Rules), nil
}

// Standings returns the tournament's individual, team and rating boards.
func (s *Service) Standings(ctx context.Context, tournamentID string) (summary.TournamentStandings, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return summary.TournamentStandings{}, err
	}
	rows, err := s.store.TournamentResults(ctx, tournamentID)
	if err != nil {
		return summary.TournamentStandings{}, err
	}
	participants := make([]model.Player, 0, len(t.PlayerIDs))
	for _, id := range t.PlayerIDs {
		p, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			return summary.TournamentStandings{}, err
		}
		participants = append(participants, p)
	}
	return summary.Standings(model.Results(rows), participants, s.store.ListTeams(ctx)), nil
}

// Dashboard returns the cross-tournament overview.
func (s *Service) Dashboard(ctx context.Context) summary.Dashboard {
	return summary.BuildDashboard(
		s.store.AllResults(ctx),
		s.store.ListPlayers(ctx),
		s.store.ListTeams(ctx),
		s.store.ListGames(ctx),
		s.store.RatingChanges(ctx),
	)
}

// TeamSummary totals the points of a team's current members.
func (s *Service) TeamSummary(ctx context.Context, teamID string) (summary.TeamSummary, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return summary.TeamSummary{}, err
	}
	names := summary.GameNames(s.store.ListGames(ctx))
	return summary.Team(team, s.store.AllResults(ctx), s.store.ListPlayers(ctx), names), nil
}

// PointsPreview breaks a player's points down per table.
func (s *Service) PointsPreview(ctx context.Context, playerID string) (PointsPreview, error) {
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return PointsPreview{}, err
	}
	return PointsPreview{Breakdown: summary.PointsBreakdown(s.store.AllResults(ctx), playerID)}, nil
}
