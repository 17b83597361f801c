package app

import (
	"fmt"
	"io"
	"os"

	redisclient "github.com/devjourney/feature-engine/internal/clients/redis"
	"github.com/devjourney/feature-engine/internal/data/repos/activity"
	featurerepos "github.com/devjourney/feature-engine/internal/data/repos/features"
	"github.com/devjourney/feature-engine/internal/db"
	"github.com/devjourney/feature-engine/internal/features"
	"github.com/devjourney/feature-engine/internal/jobs"
	"github.com/devjourney/feature-engine/internal/platform/envutil"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// App wires the feature-computation service together: store, repos, per-user
// pipeline, batch orchestrator and cron scheduler.
type App struct {
	Log       *logger.Logger
	Cfg       Config
	DB        *db.Service
	Batch     *jobs.BatchService
	Scheduler *jobs.Scheduler

	lockCloser io.Closer
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	store, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if envutil.Bool("AUTO_MIGRATE", true) {
		if err := store.AutoMigrateAll(); err != nil {
			log.Sync()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	gdb := store.DB()

	trackingRepo := activity.NewJourneyTrackingRepo(gdb, log)
	completionRepo := activity.NewJourneyCompletionRepo(gdb, log)
	submissionRepo := activity.NewSubmissionRepo(gdb, log)
	examRepo := activity.NewExamRepo(gdb, log)
	featureRepo := featurerepos.NewLearnerFeatureRepo(gdb, log)
	runRepo := featurerepos.NewFeatureRunRepo(gdb, log)

	pipeline := features.NewService(gdb, log, trackingRepo, completionRepo, submissionRepo, examRepo, featureRepo)

	var lock jobs.RunLock = jobs.NoopLock{}
	var lockCloser io.Closer
	if os.Getenv("REDIS_ADDR") != "" {
		rl, err := redisclient.NewRunLock(log)
		if err != nil {
			log.Warn("Run lock disabled", "error", err)
		} else {
			lock = rl
			lockCloser = rl
		}
	}

	var notifier jobs.Notifier
	if cfg.EnableNotifications {
		notifier = jobs.NewLogNotifier(log)
	}

	batch := jobs.NewBatchService(store, log, trackingRepo, runRepo, pipeline, lock, cfg.Batch)

	scheduler, err := jobs.NewScheduler(log, batch, notifier, cfg.CronSchedule, cfg.Timezone)
	if err != nil {
		log.Sync()
		return nil, err
	}

	return &App{
		Log:        log,
		Cfg:        cfg,
		DB:         store,
		Batch:      batch,
		Scheduler:  scheduler,
		lockCloser: lockCloser,
	}, nil
}

func (a *App) Close() {
	if a.lockCloser != nil {
		if err := a.lockCloser.Close(); err != nil {
			a.Log.Warn("Failed to close run lock", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Log.Warn("Failed to close store", "error", err)
	}
	a.Log.Sync()
}
