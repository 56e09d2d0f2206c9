// internal/workers/bot-build/create-intent/config.go
package createintent

import (
	"time"

	"lex-build-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 10 * time.Minute}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
