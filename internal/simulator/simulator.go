// Package simulator plays whole tournaments through the application service
// with random but reproducible table outcomes.
package simulator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	service "github.com/Bruzzknock/Meeplelytics/internal/app"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/summary"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
)

// ErrInvalidConfig reports an unusable simulation configuration.
var ErrInvalidConfig = errors.New("invalid simulation config")

const (
	minRawScore = 40
	maxRawScore = 160
)

// League is the subset of the application service a simulation drives.
type League interface {
	CreateGame(ctx context.Context, name string, raw any) (model.Game, error)
	CreateTeam(ctx context.Context, name, color string) (model.Team, error)
	CreatePlayer(ctx context.Context, p repository.NewPlayer) (model.Player, error)
	CreateTournament(ctx context.Context, name, gameID string, playerIDs []string) (model.Tournament, error)
	GenerateRound(ctx context.Context, tournamentID string) (service.GeneratedRound, error)
	ApplyResults(ctx context.Context, tableID string, subs []results.Submission) (model.Table, []model.RatingChange, error)
	LockRound(ctx context.Context, id string) (model.Round, error)
	Standings(ctx context.Context, tournamentID string) (summary.TournamentStandings, error)
	TopN(ctx context.Context, n int) ([]types.Entry, error)
}

// Config describes one simulated tournament.
type Config struct {
	Players int
	Rounds  int
	Teams   int
	Seed    uint64
	// Workers bounds how many tables are settled at once. Zero settles a
	// whole round concurrently.
	Workers int
	Game    string
	Rules   any
}

// RoundReport summarises one simulated round.
type RoundReport struct {
	Index         int `json:"index"`
	Tables        int `json:"tables"`
	RepeatedPairs int `json:"repeatedPairs"`
}

// Report is the outcome of a simulation.
type Report struct {
	Tournament  model.Tournament            `json:"tournament"`
	Rounds      []RoundReport               `json:"rounds"`
	Standings   summary.TournamentStandings `json:"standings"`
	Leaderboard []types.Entry               `json:"leaderboard"`
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Players < pairing.TableSize || c.Players%pairing.TableSize != 0:
		return fmt.Errorf("%w: players must be a positive multiple of %d, got %d", ErrInvalidConfig, pairing.TableSize, c.Players)
	case c.Rounds < 1:
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidConfig, c.Rounds)
	case c.Teams < 0:
		return fmt.Errorf("%w: teams must not be negative, got %d", ErrInvalidConfig, c.Teams)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Run registers the league, then generates, settles and locks every round.
// Outcomes depend only on cfg.Seed.
func Run(ctx context.Context, league League, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if cfg.Game == "" {
		cfg.Game = "Simulated game"
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	tournament, err := seed(ctx, league, cfg)
	if err != nil {
		return Report{}, err
	}

	report := Report{Tournament: tournament}
	for range cfg.Rounds {
		round, err := league.GenerateRound(ctx, tournament.ID)
		if err != nil {
			return Report{}, fmt.Errorf("generate round: %w", err)
		}
		// Outcomes are drawn before settling so concurrency cannot change them.
		outcomes := make([][]results.Submission, len(round.Tables))
		for i, table := range round.Tables {
			outcomes[i] = playTable(rng, table)
		}
		if err := settleRound(ctx, league, round.Tables, outcomes, cfg.Workers); err != nil {
			return Report{}, err
		}
		if _, err := league.LockRound(ctx, round.Round.ID); err != nil {
			return Report{}, fmt.Errorf("lock round %d: %w", round.Round.Index, err)
		}
		report.Rounds = append(report.Rounds, RoundReport{
			Index:         round.Round.Index,
			Tables:        len(round.Tables),
			RepeatedPairs: round.RepeatedPairs,
		})
	}

	if report.Standings, err = league.Standings(ctx, tournament.ID); err != nil {
		return Report{}, err
	}
	if report.Leaderboard, err = league.TopN(ctx, cfg.Players); err != nil {
		return Report{}, err
	}
	return report, nil
}

func seed(ctx context.Context, league League, cfg Config) (model.Tournament, error) {
	game, err := league.CreateGame(ctx, cfg.Game, cfg.Rules)
	if err != nil {
		return model.Tournament{}, fmt.Errorf("create game: %w", err)
	}
	teams := make([]model.Team, 0, cfg.Teams)
	for i := range cfg.Teams {
		team, err := league.CreateTeam(ctx, fmt.Sprintf("Team %d", i+1), "")
		if err != nil {
			return model.Tournament{}, fmt.Errorf("create team: %w", err)
		}
		teams = append(teams, team)
	}
	ids := make([]string, 0, cfg.Players)
	for i := range cfg.Players {
		np := repository.NewPlayer{
			Name:   fmt.Sprintf("Player %03d", i+1),
			Handle: fmt.Sprintf("p%03d", i+1),
		}
		if len(teams) > 0 {
			np.TeamID = teams[i%len(teams)].ID
		}
		player, err := league.CreatePlayer(ctx, np)
		if err != nil {
			return model.Tournament{}, fmt.Errorf("create player: %w", err)
		}
		ids = append(ids, player.ID)
	}
	t, err := league.CreateTournament(ctx, "Simulation", game.ID, ids)
	if err != nil {
		return model.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}
	return t, nil
}

// playTable draws a raw score per seat and places seats by descending
// score, earlier seats winning ties.
func playTable(rng *rand.Rand, table model.Table) []results.Submission {
	type draw struct {
		seat  int
		score float64
	}
	draws := make([]draw, len(table.Seats))
	for i := range table.Seats {
		draws[i] = draw{seat: i, score: float64(minRawScore + rng.IntN(maxRawScore-minRawScore+1))}
	}
	slices.SortStableFunc(draws, func(a, b draw) int { return cmp.Compare(b.score, a.score) })

	subs := make([]results.Submission, len(draws))
	for place, d := range draws {
		score := d.score
		subs[d.seat] = results.Submission{
			PlayerID:  table.Seats[d.seat].PlayerID,
			Placement: place + 1,
			RawScore:  &score,
		}
	}
	return subs
}

func settleRound(ctx context.Context, league League, tables []model.Table, outcomes [][]results.Submission, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, table := range tables {
		g.Go(func() error {
			if _, _, err := league.ApplyResults(ctx, table.ID, outcomes[i]); err != nil {
				return fmt.Errorf("settle table %d: %w", table.TableIndex, err)
			}
			return nil
		})
	}
	return g.Wait()
}
