package service

import (
	"math"

	"github.com/coder/quartz"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of settlement workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the settlement queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many accepted table ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDefaultRating sets the rating of newly registered players.
func WithDefaultRating(r int) Option {
	return func(s *Service) {
		if r > 0 {
			s.defaultRating = r
		}
	}
}

// WithDefaultKFactor sets the k-factor used when a game's rules carry none.
func WithDefaultKFactor(k float64) Option {
	return func(s *Service) {
		if k >= 0 && !math.IsNaN(k) && !math.IsInf(k, 0) {
			s.defaultKFactor = k
		}
	}
}

// WithRatingClamp bounds every rating delta.
func WithRatingClamp(c int) Option {
	return func(s *Service) {
		if c >= 0 {
			s.clamp = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for timestamps and latencies.
func WithClock(c quartz.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStore replaces the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}
