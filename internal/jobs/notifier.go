package jobs

import (
	"context"

	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// Notifier receives run outcomes. The default implementation only logs;
// a chat-webhook implementation can slot in without touching the scheduler.
type Notifier interface {
	RunCompleted(ctx context.Context, summary *RunSummary)
	RunFailed(ctx context.Context, err error)
}

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) *LogNotifier {
	return &LogNotifier{log: baseLog.With("service", "LogNotifier")}
}

func (n *LogNotifier) RunCompleted(ctx context.Context, summary *RunSummary) {
	n.log.Info("Run notification",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"duration_s", summary.Duration.Seconds(),
	)
}

func (n *LogNotifier) RunFailed(ctx context.Context, err error) {
	n.log.Error("Run failure notification", "error", err)
}
