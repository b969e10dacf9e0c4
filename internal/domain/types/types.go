// Package types contains common types used across the application
package types

// Entry represents a rating leaderboard entry
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
}

// Stats is a snapshot of the service's runtime state.
type Stats struct {
	Players            int   `json:"players"`
	Tournaments        int   `json:"tournaments"`
	TablesSettled      int   `json:"tablesSettled"`
	QueueLength        int   `json:"queueLength"`
	QueueCapacity      int   `json:"queueCapacity"`
	WorkerCount        int   `json:"workerCount"`
	SubmissionsGuarded int64 `json:"submissionsGuarded"`
}
