// Package stage holds the Zeebe plumbing shared by the bot build workers.
package stage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/metrics"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
)

// Params configures one job run.
type Params struct {
	TaskType string
	Timeout  time.Duration
	Logger   logger.Logger
	Errors   *errors.ErrorHandler
}

// Run decodes the job variables into In, executes exec and completes the
// job with its output. Failures go through the shared error handler, which
// throws BOT_BUILD_FAILED unless the error is worth a job retry.
func Run[In any, Out any](client worker.JobClient, job entities.Job, p Params, exec func(context.Context, *In) (*Out, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(p.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(p.TaskType).Dec()

	p.Logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	var input In
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		fail(ctx, client, job, p, errors.NewInputParsingFailedError(err))
		return
	}

	output, err := exec(ctx, &input)
	if err != nil {
		fail(ctx, client, job, p, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		fail(ctx, client, job, p, errors.NewInternalError(fmt.Errorf("encode job output: %w", err)))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		p.Logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(p.TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(p.TaskType).Observe(time.Since(start).Seconds())
}

func fail(ctx context.Context, client worker.JobClient, job entities.Job, p Params, err error) {
	std := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(p.TaskType, string(std.Code)).Inc()
	p.Errors.HandleJobError(ctx, client, job, std)
}

// Wrap converts a stage failure into a StandardError so the BPMN error
// carries a meaningful code.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var std *errors.StandardError
	if stderrors.As(err, &std) {
		return err
	}

	var (
		exhausted   *mutator.RepairExhaustedError
		missingType *mutator.SlotTypeNotFoundError
	)
	switch {
	case stderrors.As(err, &exhausted):
		return errors.NewRepairBudgetExhaustedError(fmt.Sprintf("%s %s", exhausted.Kind, exhausted.Name), err).
			WithMetadata("repairAttempts", exhausted.Attempts)
	case stderrors.As(err, &missingType):
		return errors.NewResourceNotFoundError("slot type", missingType.SlotType)
	case stderrors.Is(err, mutator.ErrOracleFailed):
		return errors.NewOracleFailedError(op, err)
	case stderrors.Is(err, lex.ErrWaitTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewPlatformWaitTimeoutError(op, err)
	case stderrors.Is(err, artifacts.ErrNotFound):
		return errors.NewArtifactNotFoundError(op)
	default:
		return errors.NewPlatformRequestFailedError(op, err)
	}
}

// LoadArtifact reads the artifact a stage works on and derives its locale.
func LoadArtifact(ctx context.Context, repo artifacts.Repository, id string) (*models.Artifact, lex.Locale, error) {
	if id == "" {
		return nil, lex.Locale{}, errors.NewInputParsingFailedError(stderrors.New("bot.artifactId is required"))
	}
	a, err := repo.Get(ctx, id)
	if stderrors.Is(err, artifacts.ErrNotFound) {
		return nil, lex.Locale{}, errors.NewArtifactNotFoundError(id)
	}
	if err != nil {
		return nil, lex.Locale{}, errors.NewStorageFailedError("artifact read", err)
	}
	return a, lex.LocaleOf(a), nil
}

// TrackerError converts a failed status-log write.
func TrackerError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, artifacts.ErrNotFound) {
		return errors.NewArtifactNotFoundError("")
	}
	return errors.NewArtifactUpdateFailedError(err)
}
