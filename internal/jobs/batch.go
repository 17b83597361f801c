package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/devjourney/feature-engine/internal/data/repos/activity"
	featurerepos "github.com/devjourney/feature-engine/internal/data/repos/features"
	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/features"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// PipelineRunner is the per-user pipeline; implemented by features.Service.
type PipelineRunner interface {
	ComputeForUser(ctx context.Context, userID uuid.UUID) (features.Result, error)
}

// HealthChecker gates a run on the store being reachable and the output table
// existing; implemented by db.Service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RunLock is a best-effort guard against overlapping runs.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// NoopLock is used when no lock backend is configured; every run proceeds.
type NoopLock struct{}

func (NoopLock) Acquire(ctx context.Context) (bool, error) { return true, nil }
func (NoopLock) Release(ctx context.Context) error         { return nil }

type BatchConfig struct {
	ChunkSize       int
	ChunkDelay      time.Duration
	MaxErrorDetails int
}

const (
	DefaultChunkSize       = 100
	DefaultChunkDelay      = time.Second
	DefaultMaxErrorDetails = 10
)

func (c BatchConfig) withDefaults() BatchConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkDelay < 0 {
		c.ChunkDelay = DefaultChunkDelay
	}
	if c.MaxErrorDetails <= 0 {
		c.MaxErrorDetails = DefaultMaxErrorDetails
	}
	return c
}

type UserError struct {
	UserID uuid.UUID `json:"user_id"`
	Error  string    `json:"error"`
}

type RunSummary struct {
	TotalCandidates int
	Processed       int
	Skipped         int
	Errors          int
	Duration        time.Duration
	// AvgPerUser is zero when nothing was processed.
	AvgPerUser   time.Duration
	ErrorDetails []UserError
}

// BatchService drives one full feature-computation run over every user with
// tracking activity. Per-user failures are isolated; only startup failures
// abort the run.
type BatchService struct {
	store     HealthChecker
	log       *logger.Logger
	trackings activity.JourneyTrackingRepo
	runs      featurerepos.FeatureRunRepo
	pipeline  PipelineRunner
	lock      RunLock
	cfg       BatchConfig
}

func NewBatchService(
	store HealthChecker,
	baseLog *logger.Logger,
	trackings activity.JourneyTrackingRepo,
	runs featurerepos.FeatureRunRepo,
	pipeline PipelineRunner,
	lock RunLock,
	cfg BatchConfig,
) *BatchService {
	if lock == nil {
		lock = NoopLock{}
	}
	return &BatchService{
		store:     store,
		log:       baseLog.With("service", "BatchService"),
		trackings: trackings,
		runs:      runs,
		pipeline:  pipeline,
		lock:      lock,
		cfg:       cfg.withDefaults(),
	}
}

// Run executes one batch and returns its summary. For a completed run
// Processed+Skipped+Errors always equals TotalCandidates.
func (s *BatchService) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()

	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		// Lock backend trouble must not block feature computation.
		s.log.Warn("Run lock unavailable, proceeding without it", "error", err)
	} else if !acquired {
		return nil, fmt.Errorf("another feature computation run is in progress")
	} else {
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("Failed to release run lock", "error", err)
			}
		}()
	}

	if err := s.store.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	userIDs, err := s.trackings.ListActiveUserIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	summary := &RunSummary{TotalCandidates: len(userIDs)}
	s.log.Info("Starting batch feature computation",
		"total_users", summary.TotalCandidates,
		"chunk_size", s.cfg.ChunkSize,
	)

	if summary.TotalCandidates == 0 {
		s.log.Warn("No active users found, nothing to compute")
		summary.Duration = time.Since(start)
		s.recordRun(ctx, start, summary)
		return summary, nil
	}

	chunks := chunkIDs(userIDs, s.cfg.ChunkSize)
	for i, chunk := range chunks {
		s.log.Info("Processing chunk",
			"chunk", i+1,
			"total_chunks", len(chunks),
			"users", len(chunk),
		)
		s.runChunk(ctx, chunk, summary)

		if i == len(chunks)-1 {
			break
		}
		// Cancellation point between chunks; the delay bounds store load.
		select {
		case <-ctx.Done():
			summary.Duration = time.Since(start)
			s.recordRun(ctx, start, summary)
			return summary, ctx.Err()
		case <-time.After(s.cfg.ChunkDelay):
		}
	}

	summary.Duration = time.Since(start)
	if summary.Processed > 0 {
		summary.AvgPerUser = summary.Duration / time.Duration(summary.Processed)
	}

	s.log.Info("Batch feature computation completed",
		"total_users", summary.TotalCandidates,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"duration_s", summary.Duration.Seconds(),
		"avg_per_user_s", summary.AvgPerUser.Seconds(),
	)
	for _, ue := range summary.ErrorDetails {
		s.log.Error("User failed during run", "user_id", ue.UserID, "error", ue.Error)
	}

	s.recordRun(ctx, start, summary)
	return summary, nil
}

// runChunk fans the chunk out concurrently and waits for every user to
// settle; individual outcomes are folded into the summary under a mutex and
// never abort the chunk.
func (s *BatchService) runChunk(ctx context.Context, chunk []uuid.UUID, summary *RunSummary) {
	var mu sync.Mutex
	var g errgroup.Group

	for _, userID := range chunk {
		userID := userID
		g.Go(func() error {
			res, err := s.pipeline.ComputeForUser(ctx, userID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Errors++
				if len(summary.ErrorDetails) < s.cfg.MaxErrorDetails {
					summary.ErrorDetails = append(summary.ErrorDetails, UserError{
						UserID: userID,
						Error:  err.Error(),
					})
				}
				s.log.Error("Feature computation failed", "user_id", userID, "error", err)
			case res.Status == features.StatusSkipped:
				summary.Skipped++
			default:
				summary.Processed++
				if summary.Processed%50 == 0 {
					s.log.Info("Progress",
						"processed", summary.Processed,
						"total_users", summary.TotalCandidates,
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *BatchService) recordRun(ctx context.Context, start time.Time, summary *RunSummary) {
	if s.runs == nil {
		return
	}
	row := &domain.FeatureRun{
		StartedAt:       start.UTC(),
		FinishedAt:      time.Now().UTC(),
		TotalCandidates: summary.TotalCandidates,
		Processed:       summary.Processed,
		Skipped:         summary.Skipped,
		Errors:          summary.Errors,
		DurationMS:      int(summary.Duration.Milliseconds()),
	}
	if len(summary.ErrorDetails) > 0 {
		if raw, err := json.Marshal(summary.ErrorDetails); err == nil {
			row.ErrorDetails = raw
		}
	}
	if err := s.runs.Create(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, row); err != nil {
		s.log.Warn("Failed to record feature run", "error", err)
	}
}

func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	var chunks [][]uuid.UUID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
