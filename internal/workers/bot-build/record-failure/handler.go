// internal/workers/bot-build/record-failure/handler.go
package recordfailure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage"
)

const TaskType = "bot-record-failure"

// Notification channels reported in Output.Notified.
const (
	ChannelSNS = "sns"
	ChannelSES = "ses"
)

type Handler struct {
	config  *Config
	tracker *artifacts.Tracker
	alerter Alerter
	mailer  Mailer
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

// NewHandler builds the failure recorder. alerter and mailer may be nil.
func NewHandler(config *Config, tracker *artifacts.Tracker, alerter Alerter, mailer Mailer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		tracker: tracker,
		alerter: alerter,
		mailer:  mailer,
		errors:  errors.NewErrorHandler(l),
		logger:  l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	stage.Run(client, job, stage.Params{
		TaskType: TaskType,
		Timeout:  h.config.Timeout,
		Logger:   h.logger,
		Errors:   h.errors,
	}, h.Execute)
}

// Execute appends the failure to the status log, marks the artifact error
// and sends the configured alerts.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Bot.ArtifactID == "" {
		return nil, errors.NewInputParsingFailedError(fmt.Errorf("artifact id is required"))
	}
	log := logger.ForArtifact(h.logger, input.Bot.ArtifactID)

	message := failureMessage(input)
	artifact, err := h.tracker.Fail(ctx, input.Bot.ArtifactID, message)
	if err != nil {
		return nil, stage.TrackerError(err)
	}
	log.Error("bot build failed", map[string]interface{}{
		"step":      input.ErrorStep,
		"errorCode": input.OriginalErrorCode,
		"message":   input.ErrorMessage,
	})

	return &Output{
		Bot:       input.Bot,
		Recorded:  true,
		Notified:  h.notify(ctx, log, artifact, message),
		NextStage: string(orchestrator.StateFailed),
	}, nil
}

// RecordFailure records err as the failure of step. The local runner calls
// it where the process would take the error boundary.
func (h *Handler) RecordFailure(ctx context.Context, artifactID, step string, err error) error {
	stdErr := errors.Normalize(err)
	_, rerr := h.Execute(ctx, &Input{
		Bot:               models.BotRef{ArtifactID: artifactID},
		ErrorStep:         step,
		ErrorMessage:      stdErr.Message,
		ErrorCause:        stdErr.Details,
		OriginalErrorCode: string(stdErr.Code),
	})
	return rerr
}

// notify fans the alert out; delivery failures are logged only.
func (h *Handler) notify(ctx context.Context, log logger.Logger, artifact *models.Artifact, message string) []string {
	subject := fmt.Sprintf("Bot build failed for %s", artifact.ID)
	body := fmt.Sprintf("Bot %s (%s) failed to build.\n\n%s\n", artifact.BotID, artifact.Locale, message)

	var (
		mu   sync.Mutex
		sent = []string{}
		g    errgroup.Group
	)
	done := func(channel string) {
		mu.Lock()
		sent = append(sent, channel)
		mu.Unlock()
	}

	if h.alerter != nil && h.config.TopicARN != "" {
		g.Go(func() error {
			if _, err := h.alerter.PublishAlert(ctx, h.config.TopicARN, artifact.ID, subject, body); err != nil {
				return h.notifyFailed(log, ChannelSNS, err)
			}
			done(ChannelSNS)
			return nil
		})
	}
	if h.mailer != nil && h.config.FromEmail != "" && artifact.NotifyEmail != "" {
		g.Go(func() error {
			if _, err := h.mailer.SendText(ctx, h.config.FromEmail, artifact.NotifyEmail, subject, body); err != nil {
				return h.notifyFailed(log, ChannelSES, err)
			}
			done(ChannelSES)
			return nil
		})
	}
	_ = g.Wait()
	return sent
}

func (h *Handler) notifyFailed(log logger.Logger, channel string, err error) error {
	nerr := errors.NewNotificationSendFailedError(channel, err)
	log.Warn(nerr.Message, map[string]interface{}{
		"errorCode": string(nerr.Code),
		"error":     nerr.Details,
	})
	return nerr
}

func failureMessage(in *Input) string {
	var b strings.Builder
	step := in.ErrorStep
	if step == "" {
		step = "bot build"
	}
	b.WriteString(step)
	b.WriteString(" failed: ")
	msg := in.ErrorMessage
	if msg == "" {
		msg = "unknown error"
	}
	b.WriteString(msg)
	if in.ErrorCause != "" && in.ErrorCause != msg {
		b.WriteString(" (")
		b.WriteString(in.ErrorCause)
		b.WriteString(")")
	}
	return b.String()
}
