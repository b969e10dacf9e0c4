package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
	"github.com/Bruzzknock/Meeplelytics/pkg/metrics"
)

const seatsPerTable = pairing.TableSize

// MemoryStore is a mutex-protected, in-memory Store.
type MemoryStore struct {
	mu sync.RWMutex

	clock         quartz.Clock
	defaultRating int
	newID         func() string

	teams       map[string]model.Team
	players     map[string]model.Player
	games       map[string]model.Game
	tournaments map[string]model.Tournament
	rounds      map[string]model.Round
	tables      map[string]model.Table

	// insertion order for listings
	teamOrder       []string
	playerOrder     []string
	gameOrder       []string
	tournamentOrder []string
	roundsByTourney map[string][]string

	changes []model.RatingChange
	settled int
	ratings ratingIndex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		clock:           quartz.NewReal(),
		defaultRating:   rating.DefaultRating,
		newID:           uuid.NewString,
		teams:           make(map[string]model.Team),
		players:         make(map[string]model.Player),
		games:           make(map[string]model.Game),
		tournaments:     make(map[string]model.Tournament),
		rounds:          make(map[string]model.Round),
		tables:          make(map[string]model.Table),
		roundsByTourney: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(kind, id string) error {
	metrics.RecordErrorByComponent("repository", "not_found")
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

func requireName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field)
	}
	return v, nil
}

// Teams

func (s *MemoryStore) CreateTeam(_ context.Context, name, color string) (model.Team, error) {
	name, err := requireName("name", name)
	if err != nil {
		return model.Team{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Team{ID: s.newID(), Name: name, Color: strings.TrimSpace(color)}
	s.teams[t.ID] = t
	s.teamOrder = append(s.teamOrder, t.ID)
	return t, nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, notFound("team", id)
	}
	return t, nil
}

func (s *MemoryStore) ListTeams(_ context.Context) []model.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Team, 0, len(s.teamOrder))
	for _, id := range s.teamOrder {
		out = append(out, s.teams[id])
	}
	return out
}

// Players

func (s *MemoryStore) CreatePlayer(_ context.Context, p NewPlayer) (model.Player, error) {
	name, err := requireName("name", p.Name)
	if err != nil {
		return model.Player{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.TeamID != "" {
		if _, ok := s.teams[p.TeamID]; !ok {
			return model.Player{}, notFound("team", p.TeamID)
		}
	}
	player := model.Player{
		ID:        s.newID(),
		Name:      name,
		Handle:    strings.TrimSpace(p.Handle),
		TeamID:    p.TeamID,
		Rating:    s.defaultRating,
		CreatedAt: s.clock.Now(),
	}
	s.players[player.ID] = player
	s.playerOrder = append(s.playerOrder, player.ID)
	s.ratings.insert(player.ID, player.Rating)
	return player, nil
}

func (s *MemoryStore) UpdatePlayer(_ context.Context, id string, patch PlayerPatch) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return model.Player{}, notFound("player", id)
	}
	if patch.Name != nil {
		name, err := requireName("name", *patch.Name)
		if err != nil {
			return model.Player{}, err
		}
		p.Name = name
	}
	if patch.TeamID != nil {
		if *patch.TeamID != "" {
			if _, ok := s.teams[*patch.TeamID]; !ok {
				return model.Player{}, notFound("team", *patch.TeamID)
			}
		}
		p.TeamID = *patch.TeamID
	}
	s.players[id] = p
	return p, nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, notFound("player", id)
	}
	return p, nil
}

func (s *MemoryStore) ListPlayers(_ context.Context) []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Player, 0, len(s.playerOrder))
	for _, id := range s.playerOrder {
		out = append(out, s.players[id])
	}
	return out
}

// Games

func (s *MemoryStore) CreateGame(_ context.Context, name string, rs rules.Ruleset) (model.Game, error) {
	name, err := requireName("name", name)
	if err != nil {
		return model.Game{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g := model.Game{ID: s.newID(), Name: name, Rules: rs}
	s.games[g.ID] = g
	s.gameOrder = append(s.gameOrder, g.ID)
	return g, nil
}

func (s *MemoryStore) UpdateGameRules(_ context.Context, id string, rs rules.Ruleset) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return model.Game{}, notFound("game", id)
	}
	g.Rules = rs
	s.games[id] = g
	return g, nil
}

func (s *MemoryStore) GetGame(_ context.Context, id string) (model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return model.Game{}, notFound("game", id)
	}
	return g, nil
}

func (s *MemoryStore) ListGames(_ context.Context) []model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Game, 0, len(s.gameOrder))
	for _, id := range s.gameOrder {
		out = append(out, s.games[id])
	}
	return out
}

// Tournaments

func (s *MemoryStore) CreateTournament(_ context.Context, name, gameID string, playerIDs []string) (model.Tournament, error) {
	name, err := requireName("name", name)
	if err != nil {
		return model.Tournament{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return model.Tournament{}, notFound("game", gameID)
	}
	if len(playerIDs) == 0 || len(playerIDs)%seatsPerTable != 0 {
		return model.Tournament{}, fmt.Errorf("%w: got %d players", ErrInvalidRoster, len(playerIDs))
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := s.players[id]; !ok {
			return model.Tournament{}, notFound("player", id)
		}
		if _, dup := seen[id]; dup {
			return model.Tournament{}, fmt.Errorf("%w: %q listed twice", ErrInvalidRoster, id)
		}
		seen[id] = struct{}{}
	}

	t := model.Tournament{
		ID:        s.newID(),
		Name:      name,
		GameID:    gameID,
		Status:    model.StatusRunning,
		PlayerIDs: slices.Clone(playerIDs),
		CreatedAt: s.clock.Now(),
	}
	s.tournaments[t.ID] = t
	s.tournamentOrder = append(s.tournamentOrder, t.ID)
	return cloneTournament(t), nil
}

func (s *MemoryStore) GetTournament(_ context.Context, id string) (model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return model.Tournament{}, notFound("tournament", id)
	}
	return cloneTournament(t), nil
}

func (s *MemoryStore) ListTournaments(_ context.Context) []model.Tournament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Tournament, 0, len(s.tournamentOrder))
	for _, id := range s.tournamentOrder {
		out = append(out, cloneTournament(s.tournaments[id]))
	}
	return out
}

func (s *MemoryStore) TournamentRounds(_ context.Context, id string) ([]model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tournaments[id]; !ok {
		return nil, notFound("tournament", id)
	}
	ids := s.roundsByTourney[id]
	out := make([]model.Round, 0, len(ids))
	for _, rid := range ids {
		out = append(out, cloneRound(s.rounds[rid]))
	}
	return out, nil
}

func (s *MemoryStore) TournamentHistory(_ context.Context, id string) ([]pairing.HistoricalTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tournaments[id]; !ok {
		return nil, notFound("tournament", id)
	}
	return s.historyLocked(id), nil
}

func (s *MemoryStore) historyLocked(tournamentID string) []pairing.HistoricalTable {
	var history []pairing.HistoricalTable
	for _, rid := range s.roundsByTourney[tournamentID] {
		for _, tid := range s.rounds[rid].TableIDs {
			history = append(history, pairing.HistoricalTable{PlayerIDs: s.tables[tid].PlayerIDs()})
		}
	}
	return history
}

func (s *MemoryStore) rosterLocked(t model.Tournament) []pairing.Player {
	roster := make([]pairing.Player, len(t.PlayerIDs))
	for i, id := range t.PlayerIDs {
		p := s.players[id]
		roster[i] = pairing.Player{ID: p.ID, Name: p.Name, TeamID: p.TeamID}
	}
	return roster
}

// Rounds

func (s *MemoryStore) CreateRound(_ context.Context, tournamentID string, generate RoundFunc) (model.Round, []model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[tournamentID]
	if !ok {
		return model.Round{}, nil, notFound("tournament", tournamentID)
	}
	for _, rid := range s.roundsByTourney[tournamentID] {
		if !s.rounds[rid].Locked {
			return model.Round{}, nil, fmt.Errorf("%w: round %d is open", ErrOpenRound, s.rounds[rid].Index)
		}
	}

	gen, err := generate(s.rosterLocked(t), s.historyLocked(tournamentID))
	if err != nil {
		return model.Round{}, nil, err
	}

	now := s.clock.Now()
	round := model.Round{
		ID:           s.newID(),
		TournamentID: tournamentID,
		Index:        len(s.roundsByTourney[tournamentID]) + 1,
		TableIDs:     make([]string, 0, len(gen.Tables)),
		CreatedAt:    now,
	}
	tables := make([]model.Table, 0, len(gen.Tables))
	for _, g := range gen.Tables {
		table := model.Table{
			ID:           s.newID(),
			RoundID:      round.ID,
			TournamentID: tournamentID,
			TableIndex:   g.TableIndex,
			Seats:        make([]model.Seat, len(g.PlayerIDs)),
			PairScore:    g.PairScore,
			CreatedAt:    now,
		}
		for i, pid := range g.PlayerIDs {
			table.Seats[i] = model.Seat{PlayerID: pid, SeatNumber: i + 1}
		}
		s.tables[table.ID] = table
		round.TableIDs = append(round.TableIDs, table.ID)
		tables = append(tables, cloneTable(table))
	}
	s.rounds[round.ID] = round
	s.roundsByTourney[tournamentID] = append(s.roundsByTourney[tournamentID], round.ID)
	return cloneRound(round), tables, nil
}

func (s *MemoryStore) GetRound(_ context.Context, id string) (model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[id]
	if !ok {
		return model.Round{}, notFound("round", id)
	}
	return cloneRound(r), nil
}

func (s *MemoryStore) LockRound(_ context.Context, id string) (model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return model.Round{}, notFound("round", id)
	}
	r.Locked = true
	s.rounds[id] = r
	return cloneRound(r), nil
}

// Tables

func (s *MemoryStore) GetTable(_ context.Context, id string) (model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return model.Table{}, notFound("table", id)
	}
	return cloneTable(t), nil
}

func (s *MemoryStore) UpdateSeats(_ context.Context, tableID string, seats []model.Seat) (model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return model.Table{}, notFound("table", tableID)
	}
	if s.rounds[t.RoundID].Locked {
		return model.Table{}, fmt.Errorf("%w: cannot change seats", ErrRoundLocked)
	}
	if t.HasResults() {
		return model.Table{}, fmt.Errorf("%w: cannot change seats", ErrResultsExist)
	}
	if err := s.validateSeatsLocked(t.TournamentID, seats); err != nil {
		return model.Table{}, err
	}

	t.Seats = slices.Clone(seats)
	slices.SortFunc(t.Seats, func(a, b model.Seat) int { return a.SeatNumber - b.SeatNumber })
	s.tables[tableID] = t
	return cloneTable(t), nil
}

func (s *MemoryStore) validateSeatsLocked(tournamentID string, seats []model.Seat) error {
	if len(seats) != seatsPerTable {
		return fmt.Errorf("%w: got %d seats", ErrInvalidSeats, len(seats))
	}
	participants := make(map[string]struct{})
	for _, id := range s.tournaments[tournamentID].PlayerIDs {
		participants[id] = struct{}{}
	}
	var taken [seatsPerTable + 1]bool
	players := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if seat.SeatNumber < 1 || seat.SeatNumber > seatsPerTable || taken[seat.SeatNumber] {
			return fmt.Errorf("%w: seat %d", ErrInvalidSeats, seat.SeatNumber)
		}
		taken[seat.SeatNumber] = true
		if _, dup := players[seat.PlayerID]; dup {
			return fmt.Errorf("%w: %q seated twice", ErrInvalidSeats, seat.PlayerID)
		}
		players[seat.PlayerID] = struct{}{}
		if _, ok := participants[seat.PlayerID]; !ok {
			return fmt.Errorf("%w: %q is not a participant", ErrInvalidSeats, seat.PlayerID)
		}
	}
	return nil
}

func (s *MemoryStore) ApplyResults(_ context.Context, tableID string, settle SettleFunc) (model.Table, []model.RatingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return model.Table{}, nil, notFound("table", tableID)
	}
	if t.HasResults() {
		return model.Table{}, nil, fmt.Errorf("%w: table %q", ErrResultsExist, tableID)
	}
	game := s.games[s.tournaments[t.TournamentID].GameID]

	seated := t.PlayerIDs()
	current := make(map[string]int, len(seated))
	for _, id := range seated {
		current[id] = s.players[id].Rating
	}

	settlement, err := settle(game.Rules, seated, current)
	if err != nil {
		return model.Table{}, nil, err
	}

	now := s.clock.Now()
	changes := make([]model.RatingChange, 0, len(settlement.Changes))
	for _, c := range settlement.Changes {
		p, ok := s.players[c.PlayerID]
		if !ok {
			return model.Table{}, nil, notFound("player", c.PlayerID)
		}
		changes = append(changes, model.RatingChange{
			PlayerID:  c.PlayerID,
			TableID:   tableID,
			Before:    p.Rating,
			After:     c.After,
			Delta:     c.Delta,
			CreatedAt: now,
		})
	}

	// every check has passed; write everything
	for _, c := range changes {
		p := s.players[c.PlayerID]
		s.ratings.update(p.ID, p.Rating, c.After)
		p.Rating = c.After
		s.players[p.ID] = p
	}
	s.changes = append(s.changes, changes...)
	t.Results = settlement.Results
	s.tables[tableID] = t
	s.settled++
	return cloneTable(t), slices.Clone(changes), nil
}

// Ratings

func (s *MemoryStore) TopRatings(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	top := s.ratings.top(n)
	out := make([]types.Entry, len(top))
	for i, e := range top {
		rank := i + 1
		if i > 0 && e.rating == top[i-1].rating {
			rank = out[i-1].Rank
		}
		out[i] = types.Entry{Rank: rank, PlayerID: e.id, Name: s.players[e.id].Name, Rating: e.rating}
	}
	return out, nil
}

func (s *MemoryStore) RatingRank(_ context.Context, playerID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return types.Entry{}, notFound("player", playerID)
	}
	return types.Entry{
		Rank:     s.ratings.higherThan(p.Rating) + 1,
		PlayerID: p.ID,
		Name:     p.Name,
		Rating:   p.Rating,
	}, nil
}

func (s *MemoryStore) RatingHistory(_ context.Context, playerID string) ([]model.RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.players[playerID]; !ok {
		return nil, notFound("player", playerID)
	}
	out := []model.RatingChange{}
	for _, c := range s.changes {
		if c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) RatingChanges(_ context.Context) []model.RatingChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.changes)
}

// Results

func (s *MemoryStore) GameResults(_ context.Context, gameID string) ([]model.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.games[gameID]; !ok {
		return nil, notFound("game", gameID)
	}
	return s.resultsLocked(func(t model.Tournament) bool { return t.GameID == gameID }), nil
}

func (s *MemoryStore) TournamentResults(_ context.Context, tournamentID string) ([]model.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tournaments[tournamentID]; !ok {
		return nil, notFound("tournament", tournamentID)
	}
	return s.resultsLocked(func(t model.Tournament) bool { return t.ID == tournamentID }), nil
}

func (s *MemoryStore) AllResults(_ context.Context) []model.ResultRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultsLocked(func(model.Tournament) bool { return true })
}

// resultsLocked walks tournaments, rounds and tables in creation order.
func (s *MemoryStore) resultsLocked(match func(model.Tournament) bool) []model.ResultRow {
	rows := []model.ResultRow{}
	for _, tid := range s.tournamentOrder {
		tourney := s.tournaments[tid]
		if !match(tourney) {
			continue
		}
		for _, rid := range s.roundsByTourney[tid] {
			for _, tableID := range s.rounds[rid].TableIDs {
				for _, r := range s.tables[tableID].Results {
					rows = append(rows, model.ResultRow{
						GameID:       tourney.GameID,
						TournamentID: tid,
						TableID:      tableID,
						Result:       cloneResult(r),
					})
				}
			}
		}
	}
	return rows
}

func (s *MemoryStore) Counts(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{Players: len(s.players), Tournaments: len(s.tournaments), TablesSettled: s.settled}
}

// Copies keep callers from aliasing the store's slices.

func cloneTournament(t model.Tournament) model.Tournament {
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t
}

func cloneRound(r model.Round) model.Round {
	r.TableIDs = slices.Clone(r.TableIDs)
	return r
}

func cloneTable(t model.Table) model.Table {
	t.Seats = slices.Clone(t.Seats)
	if t.Results != nil {
		results := make([]model.Result, len(t.Results))
		for i, r := range t.Results {
			results[i] = cloneResult(r)
		}
		t.Results = results
	}
	return t
}

func cloneResult(r model.Result) model.Result {
	r.AppliedBonuses = slices.Clone(r.AppliedBonuses)
	if r.RawScore != nil {
		v := *r.RawScore
		r.RawScore = &v
	}
	return r
}
