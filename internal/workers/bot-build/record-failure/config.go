// internal/workers/bot-build/record-failure/config.go
package recordfailure

import (
	"time"

	"lex-build-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	TopicARN  string
	FromEmail string
}

func DefaultConfig() *Config {
	return &Config{Timeout: time.Minute}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if app.AWS.SNS.Enabled {
		cfg.TopicARN = app.AWS.SNS.TopicARN
	}
	if app.AWS.SES.Enabled {
		cfg.FromEmail = app.AWS.SES.FromEmail
	}
	return cfg
}
