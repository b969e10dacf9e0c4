// Package repository persists teams, players, games, tournaments, rounds,
// tables, results and rating history.
package repository

import (
	"context"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
)

// RoundFunc builds a round from a tournament's roster and seating history.
type RoundFunc func(players []pairing.Player, history []pairing.HistoricalTable) (pairing.Round, error)

// SettleFunc settles a table given its game ruleset, the seated players and
// their current ratings.
type SettleFunc func(rs rules.Ruleset, seated []string, ratings map[string]int) (results.Settlement, error)

// NewPlayer holds the fields accepted when registering a player.
type NewPlayer struct {
	Name   string
	Handle string
	TeamID string
}

// PlayerPatch updates the non-nil fields of a player. An empty TeamID
// removes the player from their team.
type PlayerPatch struct {
	Name   *string
	TeamID *string
}

// Counts reports the size of the store.
type Counts struct {
	Players       int
	Tournaments   int
	TablesSettled int
}

// Store provides read/write access to tournament state.
type Store interface {
	CreateTeam(ctx context.Context, name, color string) (model.Team, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	ListTeams(ctx context.Context) []model.Team

	CreatePlayer(ctx context.Context, p NewPlayer) (model.Player, error)
	UpdatePlayer(ctx context.Context, id string, patch PlayerPatch) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListPlayers(ctx context.Context) []model.Player

	CreateGame(ctx context.Context, name string, rs rules.Ruleset) (model.Game, error)
	UpdateGameRules(ctx context.Context, id string, rs rules.Ruleset) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context) []model.Game

	CreateTournament(ctx context.Context, name, gameID string, playerIDs []string) (model.Tournament, error)
	GetTournament(ctx context.Context, id string) (model.Tournament, error)
	ListTournaments(ctx context.Context) []model.Tournament
	TournamentRounds(ctx context.Context, id string) ([]model.Round, error)
	TournamentHistory(ctx context.Context, id string) ([]pairing.HistoricalTable, error)

	// CreateRound runs generate against the tournament's roster and history
	// and persists the result. It fails with ErrOpenRound while another
	// round of the tournament is unlocked.
	CreateRound(ctx context.Context, tournamentID string, generate RoundFunc) (model.Round, []model.Table, error)
	GetRound(ctx context.Context, id string) (model.Round, error)
	LockRound(ctx context.Context, id string) (model.Round, error)

	GetTable(ctx context.Context, id string) (model.Table, error)
	UpdateSeats(ctx context.Context, tableID string, seats []model.Seat) (model.Table, error)

	// ApplyResults settles a table once. Results, rating changes and player
	// ratings are written together or not at all.
	ApplyResults(ctx context.Context, tableID string, settle SettleFunc) (model.Table, []model.RatingChange, error)

	// TopRatings returns the top-N players ordered by rating desc, id asc.
	TopRatings(ctx context.Context, n int) ([]types.Entry, error)
	// RatingRank returns a player's position. Players sharing a rating share
	// a rank.
	RatingRank(ctx context.Context, playerID string) (types.Entry, error)
	RatingHistory(ctx context.Context, playerID string) ([]model.RatingChange, error)
	RatingChanges(ctx context.Context) []model.RatingChange

	GameResults(ctx context.Context, gameID string) ([]model.ResultRow, error)
	TournamentResults(ctx context.Context, tournamentID string) ([]model.ResultRow, error)
	AllResults(ctx context.Context) []model.ResultRow

	Counts(ctx context.Context) Counts
}
