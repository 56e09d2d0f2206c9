// internal/workers/bot-build/create-slot-type/handler.go
package createslottype

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage"
)

const TaskType = "bot-create-slot-type"

type Handler struct {
	config   *Config
	tracker  *artifacts.Tracker
	platform lex.Platform
	mutator  *mutator.Mutator
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, tracker *artifacts.Tracker, platform lex.Platform, m *mutator.Mutator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		tracker:  tracker,
		platform: platform,
		mutator:  m,
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

// Execute creates the slot type at the head of the work-list. An empty
// work-list is a no-op. A slot type left by an earlier delivery of the same
// job is updated instead of created again.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := *input
	name, rest, ok := input.Input.SlotTypeNames.Pop()
	if !ok {
		out.SetSlotTypes(rest)
		return route(&out)
	}

	def, found := input.Output.SlotType(name)
	if !found {
		return nil, errors.NewResourceNotFoundError("slot type", name)
	}

	artifact, loc, err := stage.LoadArtifact(ctx, h.tracker.Repository(), input.Bot.ArtifactID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Creating slot type %s", name)
	if _, err := h.tracker.Begin(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}

	ids, err := lex.SlotTypeIDs(ctx, h.platform, loc)
	if err != nil {
		return nil, stage.Wrap("list slot types", err)
	}

	var (
		mut     mutator.Mutation
		applied *models.SlotTypeDefinition
	)
	if id, exists := ids[name]; exists {
		update := &mutator.UpdateSlotType{ID: id, Def: def}
		mut, applied = update, &update.Def
	} else {
		create := &mutator.CreateSlotType{Def: def}
		mut, applied = create, &create.Def
	}
	res, err := h.mutator.Apply(ctx, mutator.Target{ArtifactID: artifact.ID, Locale: loc}, mut)
	if err != nil {
		return nil, stage.Wrap("create slot type "+name, err)
	}

	if _, err := h.tracker.Succeed(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}
	logger.ForArtifact(h.logger, artifact.ID).Info("slot type created", map[string]interface{}{
		"slotType":   name,
		"slotTypeId": res.ID,
		"attempts":   res.Attempts,
		"remaining":  rest.Len(),
	})

	out.Output = copyBundle(input.Output)
	out.Output.PutSlotType(*applied)
	out.SetSlotTypes(rest)
	return route(&out)
}

func route(out *Output) (*Output, error) {
	if err := orchestrator.Route(orchestrator.StateCreateSlotType, out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}

func copyBundle(b models.Bundle) models.Bundle {
	b.SlotTypes = append([]models.SlotTypeDefinition(nil), b.SlotTypes...)
	return b
}
