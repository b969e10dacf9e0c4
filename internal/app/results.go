package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/mq/queue"
	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
	"github.com/Bruzzknock/Meeplelytics/pkg/metrics"
)

// SubmitStatus reports what happened to a results submission.
type SubmitStatus string

const (
	StatusAccepted  SubmitStatus = "accepted"
	StatusDuplicate SubmitStatus = "duplicate"
)

// Submitted is the outcome of SubmitResults.
type Submitted struct {
	Status  SubmitStatus `json:"status"`
	JobID   string       `json:"jobId,omitempty"`
	TableID string       `json:"tableId"`
}

// SubmitResults validates a submission against the table's seats and
// queues it for settlement. A table already queued is reported as a
// duplicate; a settled table fails with repository.ErrResultsExist.
func (s *Service) SubmitResults(ctx context.Context, tableID string, subs []results.Submission) (Submitted, error) {
	table, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return Submitted{}, err
	}
	if table.HasResults() {
		return Submitted{}, fmt.Errorf("%w: table %q", repository.ErrResultsExist, tableID)
	}
	if err := results.Validate(table.PlayerIDs(), subs); err != nil {
		metrics.RecordErrorByComponent("results", "invalid_submission")
		return Submitted{}, err
	}

	if s.deduper.SeenAndRecord(ctx, tableID) {
		metrics.RecordResultsDuplicate()
		s.logger.Debug(ctx, "duplicate submission skipped", logger.String("table_id", tableID))
		return Submitted{Status: StatusDuplicate, TableID: tableID}, nil
	}

	j := queue.Job{ID: uuid.NewString(), TableID: tableID, Submissions: subs, AcceptedAt: s.clock.Now()}
	if err := s.enqueue(ctx, j); err != nil {
		s.deduper.Unrecord(ctx, tableID)
		if errors.Is(err, queue.ErrFull) {
			return Submitted{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return Submitted{}, err
	}

	metrics.RecordResultsSubmitted()
	return Submitted{Status: StatusAccepted, JobID: j.ID, TableID: tableID}, nil
}

// SettleTable implements worker.Settler.
func (s *Service) SettleTable(ctx context.Context, tableID string, subs []results.Submission) error {
	_, _, err := s.ApplyResults(ctx, tableID, subs)
	return err
}

// ApplyResults settles a table synchronously: points under the game's
// ruleset, rating changes from the seated players' current ratings.
func (s *Service) ApplyResults(ctx context.Context, tableID string, subs []results.Submission) (model.Table, []model.RatingChange, error) {
	start := s.clock.Now()
	var settlement results.Settlement

	table, changes, err := s.store.ApplyResults(ctx, tableID,
		func(rs rules.Ruleset, seated []string, ratings map[string]int) (results.Settlement, error) {
			if err := results.Validate(seated, subs); err != nil {
				return results.Settlement{}, err
			}
			out, err := results.Settle(subs, rs, ratings, s.settleOptions()...)
			settlement = out
			return out, err
		})
	if err != nil {
		return model.Table{}, nil, err
	}

	latency := s.clock.Since(start)
	deltas := make([]int, len(changes))
	for i, c := range changes {
		deltas[i] = c.Delta
	}
	var bonuses []string
	for _, r := range settlement.Results {
		bonuses = append(bonuses, r.AppliedBonuses...)
	}
	metrics.RecordTableSettled(float64(latency.Milliseconds()), deltas, s.clamp, bonuses)
	s.logger.Info(ctx, "table settled",
		logger.String("table_id", tableID),
		logger.Any("deltas", deltas),
		logger.Duration("latency", latency),
	)
	return table, changes, nil
}

func (s *Service) settleOptions() []results.Option {
	return []results.Option{
		results.WithDefaultRating(s.defaultRating),
		results.WithDefaultKFactor(s.defaultKFactor),
		results.WithClamp(s.clamp),
	}
}

// PreviewPoints scores one seat without storing anything. raw is coerced
// with rules.CoerceRules.
func (s *Service) PreviewPoints(placement int, rawScore *float64, raw any) rules.Points {
	return rules.ComputePoints(placement, rawScore, rules.CoerceRules(raw))
}

// PreviewElo computes rating changes for a hypothetical table. A nil
// k-factor or clamp uses the service defaults.
func (s *Service) PreviewElo(players []rating.Input, kFactor *float64, clamp *int) ([]rating.Change, error) {
	opts := []rating.Option{rating.WithKFactor(s.defaultKFactor), rating.WithClamp(s.clamp)}
	if kFactor != nil {
		opts = append(opts, rating.WithKFactor(*kFactor))
	}
	if clamp != nil {
		opts = append(opts, rating.WithClamp(*clamp))
	}
	return rating.ComputeEloForTable(players, opts...)
}
