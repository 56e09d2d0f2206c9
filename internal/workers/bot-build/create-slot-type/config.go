// internal/workers/bot-build/create-slot-type/config.go
package createslottype

import (
	"time"

	"lex-build-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 5 * time.Minute}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
