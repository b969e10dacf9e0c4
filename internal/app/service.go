// Package service wires the store, submission guard, settlement queue and
// worker pool behind the operations used by the HTTP API and the CLI.
package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/coder/quartz"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/mq/queue"
	"github.com/Bruzzknock/Meeplelytics/internal/adapters/mq/worker"
	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/dedupe"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/types"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
	"github.com/Bruzzknock/Meeplelytics/pkg/metrics"
)

// Service implements the tournament operations.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool
	clock   quartz.Clock

	workerCount    int
	queueSize      int
	dedupeSize     int
	defaultRating  int
	defaultKFactor float64
	clamp          int

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. The store and guard are usable immediately;
// Start is only needed for asynchronous result submission.
func New(opts ...Option) *Service {
	s := &Service{
		clock:          quartz.NewReal(),
		workerCount:    runtime.NumCPU(),
		queueSize:      10_000,
		dedupeSize:     dedupe.DefaultMaxSize,
		defaultRating:  rating.DefaultRating,
		defaultKFactor: rating.DefaultKFactor,
		clamp:          rating.DefaultClamp,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(
			repository.WithClock(s.clock),
			repository.WithDefaultRating(s.defaultRating),
		)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the settlement queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting tournament service...")

	// workers outlive the caller's context so Stop can drain the queue
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithFailureHandler(s.settlementFailed),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "tournament service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and waits for the workers to settle what is left.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping tournament service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "tournament service stopped")
	return err
}

// Started reports whether Start has run.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) enqueue(ctx context.Context, j queue.Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.queue.Enqueue(ctx, j)
}

func (s *Service) settlementFailed(ctx context.Context, j queue.Job, err error) {
	s.deduper.Unrecord(ctx, j.TableID)
	metrics.RecordSettlementError()
	s.logger.Warn(ctx, "submission released after failed settlement",
		logger.String("table_id", j.TableID),
		logger.Error(err),
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	counts := s.store.Counts(ctx)
	stats := types.Stats{
		Players:            counts.Players,
		Tournaments:        counts.Tournaments,
		TablesSettled:      counts.TablesSettled,
		WorkerCount:        s.workerCount,
		QueueCapacity:      s.queueSize,
		SubmissionsGuarded: s.deduper.Size(),
	}

	s.mu.RLock()
	if s.started {
		stats.QueueLength = s.queue.Len(ctx)
	}
	s.mu.RUnlock()

	metrics.UpdateTotalPlayers(stats.Players)
	metrics.UpdateTotalTournaments(stats.Tournaments)
	return stats
}
