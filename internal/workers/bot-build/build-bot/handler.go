// internal/workers/bot-build/build-bot/handler.go
package buildbot

import (
	"context"
	stderrors "errors"
	"fmt"
	"path"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/aws"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/metrics"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage"
)

const TaskType = "bot-build-artifact"

const statusMessage = "Building bot locale"

type Handler struct {
	config     *Config
	tracker    *artifacts.Tracker
	platform   lex.Platform
	store      aws.ObjectStore
	downloader Downloader
	newKey     func() string
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, tracker *artifacts.Tracker, platform lex.Platform, store aws.ObjectStore, downloader Downloader, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		tracker:    tracker,
		platform:   platform,
		store:      store,
		downloader: downloader,
		newKey:     uuid.NewString,
		errors:     errors.NewErrorHandler(l),
		logger:     l,
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

// Execute builds the locale and stores its export. A failed build yields
// its failure reasons and the current inventory for the fixer, until the
// retry budget is spent.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	artifact, loc, err := stage.LoadArtifact(ctx, h.tracker.Repository(), input.Bot.ArtifactID)
	if err != nil {
		return nil, err
	}
	log := logger.ForArtifact(h.logger, artifact.ID)

	if _, err := h.tracker.Begin(ctx, artifact.ID, statusMessage); err != nil {
		return nil, stage.TrackerError(err)
	}

	out := *input
	location, buildErr := h.buildAndExport(ctx, artifact.ID, loc)
	if buildErr == nil {
		if _, err := h.tracker.MarkBuilt(ctx, artifact.ID, statusMessage, location); err != nil {
			return nil, stage.TrackerError(err)
		}
		metrics.Builds.WithLabelValues(metrics.OutcomeBuilt).Inc()
		log.Info("bot built", map[string]interface{}{
			"exportLocation": location,
			"retries":        input.Input.NumOfRetry,
		})
		out.Input.Built = true
		out.SetFailureReasons(nil)
		return route(&out)
	}

	if stderrors.Is(buildErr, lex.ErrWaitTimeout) || ctx.Err() != nil {
		return nil, stage.Wrap("build bot locale", buildErr)
	}

	reasons := lex.ExtractFailureReasons(buildErr)
	out.Input.NumOfRetry++
	attempt := out.Input.NumOfRetry
	metrics.Builds.WithLabelValues(metrics.OutcomeFailed).Inc()
	log.Warn("build failed", map[string]interface{}{
		"attempt":        attempt,
		"failureReasons": reasons,
		"error":          buildErr.Error(),
	})

	message := fmt.Sprintf("Build attempt %d failed with %d failure reason(s)", attempt, len(reasons))
	if _, err := h.tracker.Fail(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}
	if attempt > h.config.MaxBuildRetries {
		return nil, errors.NewBuildRetriesExhaustedError(attempt, buildErr).
			WithMetadata("failureReasons", reasons)
	}

	inventory, err := lex.ComputeInventory(ctx, h.platform, loc)
	if err != nil {
		return nil, stage.Wrap("compute inventory", err)
	}
	out.Input.Built = false
	out.Input.Inventory = inventory
	out.SetFailureReasons(reasons)
	return route(&out)
}

// buildAndExport returns the S3 URI of the stored export.
func (h *Handler) buildAndExport(ctx context.Context, artifactID string, loc lex.Locale) (string, error) {
	if err := h.platform.BuildLocale(ctx, loc); err != nil {
		return "", fmt.Errorf("start build: %w", err)
	}
	started := time.Now()
	err := lex.WaitForBuild(ctx, h.platform, loc, h.config.Build)
	metrics.BuildWaitDuration.WithLabelValues("build").Observe(time.Since(started).Seconds())
	if err != nil {
		return "", err
	}

	exportID, err := h.platform.CreateExport(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	started = time.Now()
	url, err := lex.WaitForExport(ctx, h.platform, exportID, h.config.Export)
	metrics.BuildWaitDuration.WithLabelValues("export").Observe(time.Since(started).Seconds())
	if err != nil {
		return "", err
	}

	archive, err := h.downloader.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download export %s: %w", exportID, err)
	}
	key := path.Join(h.config.ExportPrefix, artifactID, h.newKey()+".zip")
	if err := h.store.Put(ctx, h.config.ExportBucket, key, archive, "application/zip"); err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}
	return aws.S3URI(h.config.ExportBucket, key), nil
}

func route(out *Output) (*Output, error) {
	if err := orchestrator.Route(orchestrator.StateBuildArtifact, out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}
