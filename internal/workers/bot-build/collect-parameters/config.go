// internal/workers/bot-build/collect-parameters/config.go
package collectparameters

import (
	"time"

	"lex-build-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	BundleBucket string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}

// NewConfig reads the worker section and the bundle bucket from app config.
func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.BundleBucket = app.AWS.S3.BundleBucket
	return cfg
}
