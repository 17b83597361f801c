package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// Scheduler triggers batch runs on a cron cadence. One schedule entry, one
// run at a time; the run lock inside BatchService guards against overlap.
type Scheduler struct {
	c        *cron.Cron
	log      *logger.Logger
	batch    *BatchService
	notifier Notifier
	schedule string
}

func NewScheduler(baseLog *logger.Logger, batch *BatchService, notifier Notifier, schedule, timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	s := &Scheduler{
		c:        cron.New(cron.WithLocation(loc)),
		log:      baseLog.With("service", "Scheduler"),
		batch:    batch,
		notifier: notifier,
		schedule: schedule,
	}
	if _, err := s.c.AddFunc(schedule, s.RunNow); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunNow executes one batch immediately. Also invoked by the cron entry.
func (s *Scheduler) RunNow() {
	ctx := context.Background()
	s.log.Info("Feature computation triggered", "schedule", s.schedule)

	summary, err := s.batch.Run(ctx)
	if err != nil {
		s.log.Error("Feature computation run failed", "error", err)
		if s.notifier != nil {
			s.notifier.RunFailed(ctx, err)
		}
		return
	}
	if s.notifier != nil {
		s.notifier.RunCompleted(ctx, summary)
	}
}

func (s *Scheduler) Start() {
	s.c.Start()
	entries := s.c.Entries()
	if len(entries) > 0 {
		s.log.Info("Scheduler started", "schedule", s.schedule, "next_run", entries[0].Next)
	}
}

// Stop halts the cron loop and waits for an in-flight run to finish, up to
// the caller's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.c.Stop()
	select {
	case <-stopped.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with a run still in flight")
	}
}
