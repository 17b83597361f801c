package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devjourney/feature-engine/internal/jobs"
	"github.com/devjourney/feature-engine/internal/platform/envutil"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type Config struct {
	CronSchedule        string
	Timezone            string
	RunOnStartup        bool
	EnableNotifications bool
	Batch               jobs.BatchConfig
}

// LoadConfig reads the env-first configuration. When FEATURE_CONFIG_FILE
// points at a YAML file its values override the environment. Invalid values
// fall back to defaults rather than failing the process.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		CronSchedule:        envutil.String("CRON_SCHEDULE", "0 2 * * *"),
		Timezone:            envutil.String("TZ", "Asia/Jakarta"),
		RunOnStartup:        envutil.Bool("RUN_ON_STARTUP", false),
		EnableNotifications: envutil.Bool("ENABLE_NOTIFICATIONS", false),
		Batch: jobs.BatchConfig{
			ChunkSize:       envutil.Int("BATCH_SIZE", jobs.DefaultChunkSize),
			ChunkDelay:      envutil.DurationMS("BATCH_DELAY_MS", jobs.DefaultChunkDelay),
			MaxErrorDetails: envutil.Int("MAX_ERROR_DETAILS", jobs.DefaultMaxErrorDetails),
		},
	}

	if path := envutil.String("FEATURE_CONFIG_FILE", ""); path != "" {
		if err := applyFileOverrides(&cfg, path); err != nil {
			log.Warn("Ignoring config file", "path", path, "error", err)
		} else {
			log.Info("Applied config file overrides", "path", path)
		}
	}

	if cfg.Batch.ChunkSize <= 0 {
		log.Warn("Invalid batch size, falling back to default",
			"batch_size", cfg.Batch.ChunkSize,
			"default", jobs.DefaultChunkSize,
		)
		cfg.Batch.ChunkSize = jobs.DefaultChunkSize
	}
	return cfg
}

type fileConfig struct {
	CronSchedule        *string `yaml:"cron_schedule"`
	Timezone            *string `yaml:"timezone"`
	RunOnStartup        *bool   `yaml:"run_on_startup"`
	EnableNotifications *bool   `yaml:"enable_notifications"`
	BatchSize           *int    `yaml:"batch_size"`
	BatchDelayMS        *int    `yaml:"batch_delay_ms"`
	MaxErrorDetails     *int    `yaml:"max_error_details"`
}

func applyFileOverrides(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.CronSchedule != nil {
		cfg.CronSchedule = *fc.CronSchedule
	}
	if fc.Timezone != nil {
		cfg.Timezone = *fc.Timezone
	}
	if fc.RunOnStartup != nil {
		cfg.RunOnStartup = *fc.RunOnStartup
	}
	if fc.EnableNotifications != nil {
		cfg.EnableNotifications = *fc.EnableNotifications
	}
	if fc.BatchSize != nil {
		cfg.Batch.ChunkSize = *fc.BatchSize
	}
	if fc.BatchDelayMS != nil && *fc.BatchDelayMS >= 0 {
		cfg.Batch.ChunkDelay = time.Duration(*fc.BatchDelayMS) * time.Millisecond
	}
	if fc.MaxErrorDetails != nil {
		cfg.Batch.MaxErrorDetails = *fc.MaxErrorDetails
	}
	return nil
}
