// internal/workers/bot-build/create-intent/handler.go
package createintent

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

const TaskType = "bot-create-intent"

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

// Execute creates the intent at the head of the work-list, then its slots,
// then sets the intent's slot priorities to the new slot ids. Resources left
// by an earlier delivery of the same job are updated instead of created.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := *input
	name, rest, ok := input.Input.IntentNames.Pop()
	if !ok {
		out.SetIntents(rest)
		return route(&out)
	}

	def, found := input.Output.Intent(name)
	if !found {
		return nil, errors.NewResourceNotFoundError("intent", name)
	}

	artifact, loc, err := stage.LoadArtifact(ctx, h.tracker.Repository(), input.Bot.ArtifactID)
	if err != nil {
		return nil, err
	}
	target := mutator.Target{ArtifactID: artifact.ID, Locale: loc}
	log := logger.ForArtifact(h.logger, artifact.ID).WithFields(map[string]interface{}{"intent": name})

	message := fmt.Sprintf("Creating intent %s", name)
	if _, err := h.tracker.Begin(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}

	bundle := copyBundle(input.Output)

	existingID, exists, err := lex.FindIntentID(ctx, h.platform, loc, name)
	if err != nil {
		return nil, stage.Wrap("list intents", err)
	}
	var (
		intentMut mutator.Mutation
		intentDef *models.IntentDefinition
	)
	if exists {
		update := &mutator.UpdateIntent{ID: existingID, Def: def}
		intentMut, intentDef = update, &update.Def
		log.Info("intent already exists, updating", map[string]interface{}{"intentId": existingID})
	} else {
		create := &mutator.CreateIntent{Def: def}
		intentMut, intentDef = create, &create.Def
	}
	res, err := h.mutator.Apply(ctx, target, intentMut)
	if err != nil {
		return nil, stage.Wrap("create intent "+name, err)
	}
	intentID := res.ID

	slotIDs := map[string]string{}
	if exists {
		if slotIDs, err = lex.SlotIDs(ctx, h.platform, loc, intentID); err != nil {
			return nil, stage.Wrap("list slots of "+name, err)
		}
	}

	slots := bundle.SlotsFor(name)
	created := make([]createdSlot, 0, len(slots))
	for _, slot := range slots {
		// The slot type id is looked up again on every create so types made
		// by earlier jobs are visible.
		slot.SlotTypeID = ""
		var (
			slotMut mutator.Mutation
			slotDef *models.SlotDefinition
		)
		if slotID, ok := slotIDs[slot.Name]; ok {
			update := &mutator.UpdateSlot{IntentID: intentID, SlotID: slotID, Def: slot}
			slotMut, slotDef = update, &update.Def
		} else {
			create := &mutator.CreateSlot{IntentID: intentID, Def: slot}
			slotMut, slotDef = create, &create.Def
		}
		sr, err := h.mutator.Apply(ctx, target, slotMut)
		if err != nil {
			return nil, stage.Wrap(fmt.Sprintf("create slot %s.%s", name, slot.Name), err)
		}
		created = append(created, createdSlot{Name: slotDef.Name, ID: sr.ID})
		bundle.PutSlot(*slotDef)
	}

	final := *intentDef
	if len(created) > 0 {
		final.SlotPriorities = priorities(created)
		update := &mutator.UpdateIntent{ID: intentID, Def: final}
		if _, err := h.mutator.Apply(ctx, target, update); err != nil {
			return nil, stage.Wrap("set slot priorities for "+name, err)
		}
		final = update.Def
	}
	bundle.PutIntent(final)

	if _, err := h.tracker.Succeed(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}
	log.Info("intent created", map[string]interface{}{
		"intentId":  intentID,
		"slots":     len(created),
		"remaining": rest.Len(),
	})

	out.Output = bundle
	out.SetIntents(rest)
	return route(&out)
}

// priorities numbers slots from 1 in bundle order.
func priorities(slots []createdSlot) []models.SlotPriority {
	out := make([]models.SlotPriority, len(slots))
	for i, s := range slots {
		out[i] = models.SlotPriority{Priority: i + 1, SlotID: s.ID}
	}
	return out
}

func route(out *Output) (*Output, error) {
	if err := orchestrator.Route(orchestrator.StateCreateIntent, out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}

func copyBundle(b models.Bundle) models.Bundle {
	b.Intents = append([]models.IntentDefinition(nil), b.Intents...)
	b.Slots = append([]models.SlotDefinition(nil), b.Slots...)
	return b
}
