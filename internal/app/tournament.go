package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
	"github.com/Bruzzknock/Meeplelytics/pkg/metrics"
)

// TeamView is a team with its accumulated points.
type TeamView struct {
	model.Team
	TotalPoints float64 `json:"totalPoints"`
}

// PlayerView is a player with their accumulated points.
type PlayerView struct {
	model.Player
	TotalPoints   float64            `json:"totalPoints"`
	PerGamePoints map[string]float64 `json:"perGamePoints"`
}

// PlayerFilter narrows ListPlayers. Search matches name or handle,
// case-insensitively.
type PlayerFilter struct {
	TeamID string
	Search string
}

// GeneratedRound is a persisted round with the pairing explanation.
type GeneratedRound struct {
	Round         model.Round   `json:"round"`
	Tables        []model.Table `json:"tables"`
	Explanation   []string      `json:"explanation"`
	RepeatedPairs int           `json:"repeatedPairs"`
}

func (s *Service) CreateTeam(ctx context.Context, name, color string) (model.Team, error) {
	return s.store.CreateTeam(ctx, name, color)
}

func (s *Service) GetTeam(ctx context.Context, id string) (model.Team, error) {
	return s.store.GetTeam(ctx, id)
}

// ListTeams returns teams by name with their members' points.
func (s *Service) ListTeams(ctx context.Context) []TeamView {
	totals := summary.TeamPoints(s.store.AllResults(ctx), s.store.ListPlayers(ctx))
	teams := s.store.ListTeams(ctx)
	out := make([]TeamView, len(teams))
	for i, t := range teams {
		out[i] = TeamView{Team: t, TotalPoints: totals[t.ID]}
	}
	slices.SortStableFunc(out, func(a, b TeamView) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (s *Service) CreatePlayer(ctx context.Context, p repository.NewPlayer) (model.Player, error) {
	player, err := s.store.CreatePlayer(ctx, p)
	if err != nil {
		return model.Player{}, err
	}
	s.logger.Debug(ctx, "player registered", logger.String("player_id", player.ID))
	return player, nil
}

func (s *Service) UpdatePlayer(ctx context.Context, id string, patch repository.PlayerPatch) (model.Player, error) {
	return s.store.UpdatePlayer(ctx, id, patch)
}

func (s *Service) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// ListPlayers returns matching players by rating desc then name, with point
// totals.
func (s *Service) ListPlayers(ctx context.Context, f PlayerFilter) []PlayerView {
	names := summary.GameNames(s.store.ListGames(ctx))
	totals := summary.PlayerPoints(s.store.AllResults(ctx), names)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := []PlayerView{}
	for _, p := range s.store.ListPlayers(ctx) {
		if f.TeamID != "" && p.TeamID != f.TeamID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Handle), search) {
			continue
		}
		t := totals[p.ID]
		if t.PerGamePoints == nil {
			t.PerGamePoints = map[string]float64{}
		}
		out = append(out, PlayerView{Player: p, TotalPoints: t.TotalPoints, PerGamePoints: t.PerGamePoints})
	}
	slices.SortStableFunc(out, func(a, b PlayerView) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// CreateGame normalises raw rules with rules.CoerceRules before storing.
func (s *Service) CreateGame(ctx context.Context, name string, raw any) (model.Game, error) {
	return s.store.CreateGame(ctx, name, rules.CoerceRules(raw))
}

// UpdateGameRules replaces a game's ruleset. Settled results keep the
// points awarded under the previous rules.
func (s *Service) UpdateGameRules(ctx context.Context, id string, raw any) (model.Game, error) {
	return s.store.UpdateGameRules(ctx, id, rules.CoerceRules(raw))
}

func (s *Service) GetGame(ctx context.Context, id string) (model.Game, error) {
	return s.store.GetGame(ctx, id)
}

func (s *Service) ListGames(ctx context.Context) []model.Game {
	return s.store.ListGames(ctx)
}

func (s *Service) CreateTournament(ctx context.Context, name, gameID string, playerIDs []string) (model.Tournament, error) {
	t, err := s.store.CreateTournament(ctx, name, gameID, playerIDs)
	if err != nil {
		return model.Tournament{}, err
	}
	s.logger.Info(ctx, "tournament created",
		logger.String("tournament_id", t.ID),
		logger.Int("players", len(t.PlayerIDs)),
	)
	return t, nil
}

func (s *Service) GetTournament(ctx context.Context, id string) (model.Tournament, error) {
	return s.store.GetTournament(ctx, id)
}

func (s *Service) ListTournaments(ctx context.Context) []model.Tournament {
	return s.store.ListTournaments(ctx)
}

func (s *Service) TournamentRounds(ctx context.Context, id string) ([]model.Round, error) {
	return s.store.TournamentRounds(ctx, id)
}

// GenerateRound pairs the tournament's roster against its seating history
// and stores the result as the next round.
func (s *Service) GenerateRound(ctx context.Context, tournamentID string) (GeneratedRound, error) {
	start := s.clock.Now()
	var plan pairing.Round
	var repeated int

	round, tables, err := s.store.CreateRound(ctx, tournamentID,
		func(roster []pairing.Player, history []pairing.HistoricalTable) (pairing.Round, error) {
			r, err := pairing.GenerateRound(roster, history)
			if err != nil {
				return pairing.Round{}, err
			}
			plan = r
			repeated = pairing.RepeatedPairs(r, history)
			return r, nil
		})
	if err != nil {
		metrics.RecordErrorByComponent("pairing", "generate_failed")
		return GeneratedRound{}, err
	}

	latency := s.clock.Since(start)
	metrics.RecordRoundGenerated(len(tables), repeated, float64(latency.Milliseconds()))
	s.logger.Info(ctx, "round generated",
		logger.String("tournament_id", tournamentID),
		logger.Int("index", round.Index),
		logger.Int("tables", len(tables)),
		logger.Int("repeated_pairs", repeated),
		logger.Duration("latency", latency),
	)
	return GeneratedRound{Round: round, Tables: tables, Explanation: plan.Explanation, RepeatedPairs: repeated}, nil
}

func (s *Service) GetRound(ctx context.Context, id string) (model.Round, error) {
	return s.store.GetRound(ctx, id)
}

func (s *Service) LockRound(ctx context.Context, id string) (model.Round, error) {
	return s.store.LockRound(ctx, id)
}

func (s *Service) GetTable(ctx context.Context, id string) (model.Table, error) {
	return s.store.GetTable(ctx, id)
}

func (s *Service) UpdateSeats(ctx context.Context, tableID string, seats []model.Seat) (model.Table, error) {
	return s.store.UpdateSeats(ctx, tableID, seats)
}
