// Package api registers the HTTP routes of the tournament service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	service "github.com/Bruzzknock/Meeplelytics/internal/app"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	StatsProvider
	LeaderboardDependencies
	RankDependencies
	DashboardDependencies

	CreateTeam(ctx context.Context, name, color string) (model.Team, error)
	ListTeams(ctx context.Context) []service.TeamView
	TeamSummary(ctx context.Context, teamID string) (summary.TeamSummary, error)

	CreatePlayer(ctx context.Context, p repository.NewPlayer) (model.Player, error)
	UpdatePlayer(ctx context.Context, id string, patch repository.PlayerPatch) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListPlayers(ctx context.Context, f service.PlayerFilter) []service.PlayerView
	RatingHistory(ctx context.Context, playerID string) ([]model.RatingChange, error)
	PointsPreview(ctx context.Context, playerID string) (service.PointsPreview, error)

	CreateGame(ctx context.Context, name string, raw any) (model.Game, error)
	UpdateGameRules(ctx context.Context, id string, raw any) (model.Game, error)
	ListGames(ctx context.Context) []model.Game
	GameSummary(ctx context.Context, gameID string) (summary.GameSummary, error)

	CreateTournament(ctx context.Context, name, gameID string, playerIDs []string) (model.Tournament, error)
	GetTournament(ctx context.Context, id string) (model.Tournament, error)
	ListTournaments(ctx context.Context) []model.Tournament
	TournamentRounds(ctx context.Context, id string) ([]model.Round, error)
	GenerateRound(ctx context.Context, tournamentID string) (service.GeneratedRound, error)
	Standings(ctx context.Context, tournamentID string) (summary.TournamentStandings, error)

	GetRound(ctx context.Context, id string) (model.Round, error)
	LockRound(ctx context.Context, id string) (model.Round, error)
	GetTable(ctx context.Context, id string) (model.Table, error)
	UpdateSeats(ctx context.Context, tableID string, seats []model.Seat) (model.Table, error)
	SubmitResults(ctx context.Context, tableID string, subs []results.Submission) (service.Submitted, error)

	PreviewPoints(placement int, rawScore *float64, raw any) rules.Points
	PreviewElo(players []rating.Input, kFactor *float64, clamp *int) ([]rating.Change, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// leaderboard size.
func NewServer(deps Dependencies, maxLimit int) *Server {
	return &Server{
		deps:               deps,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		dashboardHandler:   newDashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("GET /dashboard", "dashboard", s.dashboardHandler.HandleDashboard)
	route("GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("GET /rank/{playerId}", "rank", s.rankHandler.HandleGetRank)

	route("POST /teams", "teams", s.handleCreateTeam)
	route("GET /teams", "teams", s.handleListTeams)
	route("GET /teams/{id}/summary", "team_summary", s.handleTeamSummary)

	route("POST /players", "players", s.handleCreatePlayer)
	route("GET /players", "players", s.handleListPlayers)
	route("GET /players/{id}", "player", s.handleGetPlayer)
	route("PATCH /players/{id}", "player", s.handleUpdatePlayer)
	route("GET /players/{id}/ratings", "player_ratings", s.handleRatingHistory)
	route("GET /players/{id}/points-preview", "player_points", s.handlePointsPreview)

	route("POST /games", "games", s.handleCreateGame)
	route("GET /games", "games", s.handleListGames)
	route("PATCH /games/{id}/rules", "game_rules", s.handleUpdateGameRules)
	route("GET /games/{id}/summary", "game_summary", s.handleGameSummary)

	route("POST /tournaments", "tournaments", s.handleCreateTournament)
	route("GET /tournaments", "tournaments", s.handleListTournaments)
	route("GET /tournaments/{id}", "tournament", s.handleGetTournament)
	route("POST /tournaments/{id}/rounds", "rounds", s.handleGenerateRound)
	route("GET /tournaments/{id}/standings", "standings", s.handleStandings)

	route("GET /rounds/{id}", "round", s.handleGetRound)
	route("POST /rounds/{id}/lock", "round_lock", s.handleLockRound)

	route("GET /tables/{id}", "table", s.handleGetTable)
	route("PATCH /tables/{id}/seats", "table_seats", s.handleUpdateSeats)
	route("POST /tables/{id}/results", "results", s.handleSubmitResults)

	route("POST /points/preview", "points_preview", s.handlePreviewPoints)
	route("POST /elo/preview", "elo_preview", s.handlePreviewElo)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// writeServiceError translates service and domain sentinels to statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrOpenRound),
		errors.Is(err, repository.ErrRoundLocked),
		errors.Is(err, repository.ErrResultsExist):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case isValidation(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
