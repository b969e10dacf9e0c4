// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
)

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

// Tournament states.
const (
	StatusRunning  TournamentStatus = "running"
	StatusFinished TournamentStatus = "finished"
)

// Team groups players that should be spread across tables.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Player is a registered participant with a current Elo rating.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle,omitempty"`
	TeamID    string    `json:"teamId,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// Game is a board game and the ruleset its tables are scored with.
type Game struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Rules rules.Ruleset `json:"rules"`
}

// Tournament is a series of rounds of one game between a fixed roster.
type Tournament struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	GameID    string           `json:"gameId"`
	Status    TournamentStatus `json:"status"`
	PlayerIDs []string         `json:"playerIds"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Round is one generated set of tables. A new round can only be generated
// once every earlier round of the tournament is locked.
type Round struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournamentId"`
	Index        int       `json:"index"`
	Locked       bool      `json:"locked"`
	TableIDs     []string  `json:"tableIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Seat places a player at a table. Seat numbers run 1..4.
type Seat struct {
	PlayerID   string `json:"playerId"`
	SeatNumber int    `json:"seatNumber"`
}

// Result is a settled outcome for one seat.
type Result struct {
	PlayerID       string   `json:"playerId"`
	Placement      int      `json:"placement"`
	RawScore       *float64 `json:"rawScore,omitempty"`
	BasePoints     float64  `json:"basePoints"`
	Bonus          float64  `json:"bonus"`
	PointsAwarded  float64  `json:"pointsAwarded"`
	AppliedBonuses []string `json:"appliedBonuses"`
}

// Table is a group of four seats within a round.
type Table struct {
	ID           string    `json:"id"`
	RoundID      string    `json:"roundId"`
	TournamentID string    `json:"tournamentId"`
	TableIndex   int       `json:"tableIndex"`
	Seats        []Seat    `json:"seats"`
	Results      []Result  `json:"results,omitempty"`
	PairScore    float64   `json:"pairScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PlayerIDs returns the seated player ids in seat order.
func (t Table) PlayerIDs() []string {
	ids := make([]string, len(t.Seats))
	for i, s := range t.Seats {
		ids[i] = s.PlayerID
	}
	return ids
}

// HasResults reports whether the table has been settled.
func (t Table) HasResults() bool {
	return len(t.Results) > 0
}

// RatingChange is a persisted rating update produced by settling a table.
type RatingChange struct {
	PlayerID  string    `json:"playerId"`
	TableID   string    `json:"tableId"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResultRow is a settled result together with where it was played.
type ResultRow struct {
	GameID       string `json:"gameId"`
	TournamentID string `json:"tournamentId"`
	TableID      string `json:"tableId"`
	Result
}

// Results strips the location from rows.
func Results(rows []ResultRow) []Result {
	out := make([]Result, len(rows))
	for i, r := range rows {
		out[i] = r.Result
	}
	return out
}
