package repository

import "github.com/coder/quartz"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the clock used for timestamps.
func WithClock(c quartz.Clock) Option {
	return func(s *MemoryStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDefaultRating sets the rating assigned to new players.
func WithDefaultRating(r int) Option {
	return func(s *MemoryStore) {
		if r > 0 {
			s.defaultRating = r
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(next func() string) Option {
	return func(s *MemoryStore) {
		if next != nil {
			s.newID = next
		}
	}
}
