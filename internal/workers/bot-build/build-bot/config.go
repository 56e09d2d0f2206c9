// internal/workers/bot-build/build-bot/config.go
package buildbot

import (
	"time"

	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/lex"
)

type Config struct {
	Timeout         time.Duration
	Build           lex.WaitConfig
	Export          lex.WaitConfig
	ExportBucket    string
	ExportPrefix    string
	MaxBuildRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         20 * time.Minute,
		Build:           lex.WaitConfig{Interval: 5 * time.Second, Timeout: 10 * time.Minute},
		Export:          lex.WaitConfig{Interval: 5 * time.Second, Timeout: 5 * time.Minute},
		ExportPrefix:    "exports",
		MaxBuildRetries: 2,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	b := app.Build
	if b.PollInterval > 0 {
		cfg.Build.Interval = config.GetDuration(b.PollInterval)
		cfg.Export.Interval = config.GetDuration(b.PollInterval)
	}
	if b.WaitTimeout > 0 {
		cfg.Build.Timeout = config.GetDuration(b.WaitTimeout)
	}
	if b.ExportTimeout > 0 {
		cfg.Export.Timeout = config.GetDuration(b.ExportTimeout)
	}
	if b.MaxBuildRetries > 0 {
		cfg.MaxBuildRetries = b.MaxBuildRetries
	}
	cfg.ExportBucket = app.AWS.S3.ExportBucket
	if app.AWS.S3.ExportPrefix != "" {
		cfg.ExportPrefix = app.AWS.S3.ExportPrefix
	}
	return cfg
}
