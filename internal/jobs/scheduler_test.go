package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type fakeNotifier struct {
	completed int
	failed    int
	lastErr   error
}

func (n *fakeNotifier) RunCompleted(ctx context.Context, summary *RunSummary) { n.completed++ }
func (n *fakeNotifier) RunFailed(ctx context.Context, err error) {
	n.failed++
	n.lastErr = err
}

func TestNewSchedulerRejectsBadInput(t *testing.T) {
	svc := newTestBatch(t, &fakeHealth{}, &fakeTrackings{}, &fakeRuns{}, &fakePipeline{}, nil, BatchConfig{})
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	if _, err := NewScheduler(log, svc, nil, "0 2 * * *", "Not/AZone"); err == nil {
		t.Fatal("expected an error for an unknown timezone")
	}
	if _, err := NewScheduler(log, svc, nil, "not a schedule", "UTC"); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
	if _, err := NewScheduler(log, svc, nil, "0 2 * * *", "Asia/Jakarta"); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestRunNowNotifiesOnSuccess(t *testing.T) {
	svc := newTestBatch(t, &fakeHealth{}, &fakeTrackings{userIDs: userIDs(2)}, &fakeRuns{}, &fakePipeline{}, nil, BatchConfig{ChunkSize: 10})
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	notifier := &fakeNotifier{}
	sched, err := NewScheduler(log, svc, notifier, "0 2 * * *", "UTC")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	sched.RunNow()
	if notifier.completed != 1 || notifier.failed != 0 {
		t.Fatalf("got completed=%d failed=%d, want 1/0", notifier.completed, notifier.failed)
	}
}

func TestRunNowNotifiesOnFailure(t *testing.T) {
	healthErr := errors.New("store unreachable")
	svc := newTestBatch(t, &fakeHealth{err: healthErr}, &fakeTrackings{}, &fakeRuns{}, &fakePipeline{}, nil, BatchConfig{})
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	notifier := &fakeNotifier{}
	sched, err := NewScheduler(log, svc, notifier, "0 2 * * *", "UTC")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	sched.RunNow()
	if notifier.failed != 1 || notifier.completed != 0 {
		t.Fatalf("got completed=%d failed=%d, want 0/1", notifier.completed, notifier.failed)
	}
	if !errors.Is(notifier.lastErr, healthErr) {
		t.Fatalf("notified error: got %v, want wrapped health error", notifier.lastErr)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	svc := newTestBatch(t, &fakeHealth{}, &fakeTrackings{}, &fakeRuns{}, &fakePipeline{}, nil, BatchConfig{})
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	sched, err := NewScheduler(log, svc, nil, "0 2 * * *", "UTC")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	sched.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sched.Stop(ctx)
}
