// internal/workers/bot-build/collect-parameters/handler.go
package collectparameters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/aws"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage"
)

const TaskType = "bot-collect-parameters"

const statusMessage = "Collecting bot parameters"

type Handler struct {
	config   *Config
	tracker  *artifacts.Tracker
	platform lex.Platform
	store    aws.ObjectStore
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, tracker *artifacts.Tracker, platform lex.Platform, store aws.ObjectStore, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		tracker:  tracker,
		platform: platform,
		store:    store,
		errors:   errors.NewErrorHandler(l),
		logger:   l,
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

// Execute resets the locale, deduplicates utterances and produces the
// slot-type and intent work-lists.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	artifact, loc, err := stage.LoadArtifact(ctx, h.tracker.Repository(), input.Bot.ArtifactID)
	if err != nil {
		return nil, err
	}
	log := logger.ForArtifact(h.logger, artifact.ID)

	if _, err := h.tracker.Begin(ctx, artifact.ID, statusMessage); err != nil {
		return nil, stage.TrackerError(err)
	}

	bundle, err := h.loadBundle(ctx, input, artifact)
	if err != nil {
		return nil, err
	}

	summary, err := h.reset(ctx, loc)
	if err != nil {
		return nil, stage.Wrap("reset locale", err)
	}
	removed := bundle.DedupeUtterances()

	out := *input
	out.Output = bundle
	out.SetSlotTypes(bundle.SlotTypeNames())
	out.SetIntents(bundle.IntentNames())
	out.SetFailureReasons(nil)
	out.Input.NumOfRetry = 0
	out.Input.Built = false
	out.Input.Inventory = models.Inventory{}

	log.Info("parameters collected", map[string]interface{}{
		"intentsDeleted":     summary.IntentsDeleted,
		"slotTypesDeleted":   summary.SlotTypesDeleted,
		"utterancesRemoved":  removed,
		"slotTypesToProcess": out.Input.SlotTypesToProcess,
		"intentsToProcess":   out.Input.IntentsToProcess,
	})

	if _, err := h.tracker.Succeed(ctx, artifact.ID, statusMessage); err != nil {
		return nil, stage.TrackerError(err)
	}
	if err := orchestrator.Route(orchestrator.StateParameterCollection, &out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &out, nil
}

// loadBundle prefers the bundle carried on the event and falls back to the
// copy stored with the artifact.
func (h *Handler) loadBundle(ctx context.Context, input *Input, artifact *models.Artifact) (models.Bundle, error) {
	if !input.Output.IsEmpty() {
		return input.Output, nil
	}
	if artifact.BundleLocation == "" {
		return models.Bundle{}, errors.NewResourceNotFoundError("bundle", artifact.ID)
	}
	data, err := h.store.Get(ctx, h.config.BundleBucket, artifact.BundleLocation)
	if err != nil {
		return models.Bundle{}, errors.NewStorageFailedError("bundle read", err)
	}
	var bundle models.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return models.Bundle{}, errors.NewInputParsingFailedError(fmt.Errorf("decode bundle %s: %w", artifact.BundleLocation, err))
	}
	return bundle, nil
}

// reset deletes every intent except FallbackIntent, then every slot type.
// Resources that are already gone are skipped so a retried job converges.
func (h *Handler) reset(ctx context.Context, loc lex.Locale) (ResetSummary, error) {
	var summary ResetSummary

	intents, err := h.platform.ListIntents(ctx, loc)
	if err != nil {
		return summary, fmt.Errorf("list intents: %w", err)
	}
	for _, in := range intents {
		if in.Name == models.FallbackIntentName {
			continue
		}
		if err := h.platform.DeleteIntent(ctx, loc, in.ID); err != nil && !lex.IsNotFound(err) {
			return summary, fmt.Errorf("delete intent %s: %w", in.Name, err)
		}
		summary.IntentsDeleted++
	}

	slotTypes, err := h.platform.ListSlotTypes(ctx, loc)
	if err != nil {
		return summary, fmt.Errorf("list slot types: %w", err)
	}
	for _, st := range slotTypes {
		if err := h.platform.DeleteSlotType(ctx, loc, st.ID); err != nil && !lex.IsNotFound(err) {
			return summary, fmt.Errorf("delete slot type %s: %w", st.Name, err)
		}
		summary.SlotTypesDeleted++
	}
	return summary, nil
}
