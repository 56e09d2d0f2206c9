// internal/workers/bot-build/record-failure/models.go
package recordfailure

import (
	"context"

	"lex-build-workers/internal/models"
)

// Input carries the variables the BOT_BUILD_FAILED error boundary receives.
type Input struct {
	Bot               models.BotRef `json:"bot"`
	ErrorStep         string        `json:"errorStep"`
	ErrorMessage      string        `json:"errorMessage"`
	ErrorCause        string        `json:"errorCause,omitempty"`
	OriginalErrorCode string        `json:"originalErrorCode,omitempty"`
}

type Output struct {
	Bot       models.BotRef `json:"bot"`
	Recorded  bool          `json:"recorded"`
	Notified  []string      `json:"notified"`
	NextStage string        `json:"nextStage"`
}

type Alerter interface {
	PublishAlert(ctx context.Context, topicARN, artifactID, subject, message string) (string, error)
}

type Mailer interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}
