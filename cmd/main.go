package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devjourney/feature-engine/internal/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	once := flag.Bool("once", false, "run a single batch computation and exit")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	// Refuse to start when the store is unreachable or the output table is
	// missing, instead of silently skipping every user on the first trigger.
	checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.DB.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("startup check: %w", err)
	}
	a.Log.Info("Store connection verified")

	if *once {
		a.Log.Info("Running feature computation manually...")
		summary, err := a.Batch.Run(context.Background())
		if err != nil {
			return fmt.Errorf("manual run: %w", err)
		}
		a.Log.Info("Manual run completed",
			"processed", summary.Processed,
			"skipped", summary.Skipped,
			"errors", summary.Errors,
		)
		return nil
	}

	a.Scheduler.Start()
	if a.Cfg.RunOnStartup {
		a.Log.Info("RUN_ON_STARTUP enabled, running initial computation...")
		go a.Scheduler.RunNow()
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	a.Log.Info("Shutdown signal received, stopping...")
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	a.Scheduler.Stop(stopCtx)
	return nil
}
