// internal/workers/bot-build/fix-resource/config.go
package fixresource

import (
	"time"

	"lex-build-workers/internal/common/config"
)

const defaultAuditIndex = "bot-build-repairs"

type Config struct {
	Timeout    time.Duration
	AuditIndex string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    10 * time.Minute,
		AuditIndex: defaultAuditIndex,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if idx := app.Database.Elasticsearch.RepairIndex; idx != "" {
		cfg.AuditIndex = idx
	}
	return cfg
}
