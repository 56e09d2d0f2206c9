// internal/workers/bot-build/fix-resource/handler.go
package fixresource

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/metrics"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage"
	"lex-build-workers/pkg/registry"
)

const TaskType = "bot-fix-resource"

// errUnresolved marks a reason or resource the fixer cannot act on. The
// next build reports it again if it still matters.
var errUnresolved = stderrors.New("failure reason not resolvable")

type Handler struct {
	config   *Config
	tracker  *artifacts.Tracker
	platform lex.Platform
	fixer    Fixer
	mutator  *mutator.Mutator
	auditor  RepairAuditor
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the fixer stage. auditor may be nil.
func NewHandler(config *Config, tracker *artifacts.Tracker, platform lex.Platform, fixer Fixer, m *mutator.Mutator, auditor RepairAuditor, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		tracker:  tracker,
		platform: platform,
		fixer:    fixer,
		mutator:  m,
		auditor:  auditor,
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

// Execute pops one failure reason, asks the oracle which resources it
// blames, and rewrites each of them through the mutator.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := *input
	reasons := input.Input.FailureReasons
	if len(reasons) == 0 {
		out.SetFailureReasons(nil)
		return route(&out)
	}
	reason := reasons[0]
	rest := append([]string{}, reasons[1:]...)

	artifact, loc, err := stage.LoadArtifact(ctx, h.tracker.Repository(), input.Bot.ArtifactID)
	if err != nil {
		return nil, err
	}
	log := logger.ForArtifact(h.logger, artifact.ID).WithFields(map[string]interface{}{"reason": reason})

	message := fmt.Sprintf("Fixing build failure: %s", reason)
	if _, err := h.tracker.Begin(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}

	audit := RepairAudit{
		ArtifactID: artifact.ID,
		Reason:     reason,
		Resources:  []string{},
		Fixed:      []string{},
		Attempt:    input.Input.NumOfRetry,
	}
	bundle := copyBundle(input.Output)
	inventory := input.Input.Inventory

	cls, err := h.fixer.ClassifyFailure(ctx, reason, inventory)
	switch {
	case err == nil:
		audit.ResourceType = cls.Type
		audit.Resources = cls.Resources
		metrics.FailureReasons.WithLabelValues(string(cls.Type)).Inc()
	case unclassifiable(err):
		metrics.FailureReasons.WithLabelValues("unclassified").Inc()
		log.Warn("failure reason not classified", map[string]interface{}{"error": err.Error()})
	default:
		return nil, errors.NewOracleFailedError("classify failure", err)
	}

	target := mutator.Target{ArtifactID: artifact.ID, Locale: loc}
	for _, name := range audit.Resources {
		err := h.fix(ctx, target, reason, cls.Type, name, inventory, &bundle)
		if stderrors.Is(err, errUnresolved) {
			log.Warn("resource not fixed", map[string]interface{}{
				"resource": name,
				"error":    err.Error(),
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		audit.Fixed = append(audit.Fixed, name)
	}

	if len(audit.Fixed) == 0 {
		// Leave the error entry; the rebuild decides whether the reason stands.
		if _, err := h.tracker.Record(ctx, artifact.ID, models.StatusError, message, nil); err != nil {
			return nil, stage.TrackerError(err)
		}
	} else if _, err := h.tracker.Succeed(ctx, artifact.ID, message); err != nil {
		return nil, stage.TrackerError(err)
	}
	h.index(ctx, log, audit)

	log.Info("failure reason processed", map[string]interface{}{
		"resourceType": string(audit.ResourceType),
		"fixed":        audit.Fixed,
		"remaining":    len(rest),
	})

	out.Output = bundle
	out.SetFailureReasons(rest)
	return route(&out)
}

func (h *Handler) fix(ctx context.Context, target mutator.Target, reason string, kind registry.Kind, name string, inv models.Inventory, bundle *models.Bundle) error {
	switch kind {
	case registry.KindSlotType:
		return h.fixSlotType(ctx, target, reason, name, inv, bundle)
	case registry.KindIntent:
		return h.fixIntent(ctx, target, reason, name, inv, bundle)
	case registry.KindSlot:
		return h.fixSlot(ctx, target, reason, name, inv, bundle)
	default:
		return fmt.Errorf("%w: resource type %q", errUnresolved, kind)
	}
}

func (h *Handler) fixSlotType(ctx context.Context, target mutator.Target, reason, name string, inv models.Inventory, bundle *models.Bundle) error {
	ref, ok := inv.FindSlotType(name)
	if !ok {
		return fmt.Errorf("%w: slot type %s not in inventory", errUnresolved, name)
	}
	current, err := h.platform.DescribeSlotType(ctx, target.Locale, ref.ID)
	if err != nil {
		return stage.Wrap("describe slot type "+name, err)
	}

	mut := &mutator.UpdateSlotType{ID: ref.ID, Def: current}
	if err := h.propose(ctx, reason, mut, oracle.RepairContext{Kind: registry.KindSlotType, Inventory: inv}); err != nil {
		return err
	}
	mut.Def.Name = current.Name
	if _, err := h.mutator.Apply(ctx, target, mut); err != nil {
		return stage.Wrap("update slot type "+name, err)
	}
	bundle.PutSlotType(mut.Def)
	return nil
}

func (h *Handler) fixIntent(ctx context.Context, target mutator.Target, reason, name string, inv models.Inventory, bundle *models.Bundle) error {
	entry, ok := inv.FindIntent(name)
	if !ok {
		return fmt.Errorf("%w: intent %s not in inventory", errUnresolved, name)
	}
	current, err := h.platform.DescribeIntent(ctx, target.Locale, entry.ID)
	if err != nil {
		return stage.Wrap("describe intent "+name, err)
	}

	rc := oracle.RepairContext{Kind: registry.KindIntent, Inventory: inv}
	for _, s := range entry.Slots {
		slot, err := h.platform.DescribeSlot(ctx, target.Locale, entry.ID, s.ID)
		if err != nil {
			return stage.Wrap("describe slot "+s.Name, err)
		}
		slot.IntentName = name
		if raw, err := json.Marshal(slot); err == nil {
			rc.Siblings = append(rc.Siblings, raw)
		}
	}

	mut := &mutator.UpdateIntent{ID: entry.ID, Def: current}
	if err := h.propose(ctx, reason, mut, rc); err != nil {
		return err
	}
	mut.Def.Name = current.Name
	if len(mut.Def.SlotPriorities) == 0 {
		mut.Def.SlotPriorities = current.SlotPriorities
	}
	if _, err := h.mutator.Apply(ctx, target, mut); err != nil {
		return stage.Wrap("update intent "+name, err)
	}
	bundle.PutIntent(mut.Def)
	return nil
}

func (h *Handler) fixSlot(ctx context.Context, target mutator.Target, reason, name string, inv models.Inventory, bundle *models.Bundle) error {
	owner, ref, ok := inv.FindSlot(name)
	if !ok {
		return fmt.Errorf("%w: slot %s not in inventory", errUnresolved, name)
	}
	current, err := h.platform.DescribeSlot(ctx, target.Locale, owner.ID, ref.ID)
	if err != nil {
		return stage.Wrap("describe slot "+name, err)
	}
	current.IntentName = owner.Name
	if current.SlotTypeName == "" {
		current.SlotTypeName = slotTypeName(inv, current.SlotTypeID)
	}

	rc := oracle.RepairContext{Kind: registry.KindSlot, Inventory: inv}
	if intent, err := h.platform.DescribeIntent(ctx, target.Locale, owner.ID); err == nil {
		if raw, err := json.Marshal(intent); err == nil {
			rc.Siblings = append(rc.Siblings, raw)
		}
	}

	mut := &mutator.UpdateSlot{IntentID: owner.ID, SlotID: ref.ID, Def: current}
	if err := h.propose(ctx, reason, mut, rc); err != nil {
		return err
	}
	mut.Def.IntentName = owner.Name
	mut.Def.Name = current.Name
	if _, err := h.mutator.Apply(ctx, target, mut); err != nil {
		return stage.Wrap(fmt.Sprintf("update slot %s.%s", owner.Name, current.Name), err)
	}
	bundle.PutSlot(mut.Def)
	return nil
}

// propose asks the oracle for a rewrite of mut's payload and installs it.
func (h *Handler) propose(ctx context.Context, reason string, mut mutator.Mutation, rc oracle.RepairContext) error {
	current, err := mut.Payload()
	if err != nil {
		return errors.NewInternalError(err)
	}
	fixed, err := h.fixer.ProposeFix(ctx, reason, current, rc)
	if stderrors.Is(err, oracle.ErrUnparseableReply) {
		return fmt.Errorf("%w: %v", errUnresolved, err)
	}
	if err != nil {
		return errors.NewOracleFailedError("propose fix", err)
	}
	if err := mut.SetPayload(fixed); err != nil {
		return fmt.Errorf("%w: %v", errUnresolved, err)
	}
	return nil
}

func (h *Handler) index(ctx context.Context, log logger.Logger, audit RepairAudit) {
	if h.auditor == nil {
		return
	}
	audit.Timestamp = time.Now().UTC()
	if err := h.auditor.IndexDocument(ctx, h.config.AuditIndex, uuid.NewString(), audit); err != nil {
		log.Warn("repair audit not indexed", map[string]interface{}{"error": err.Error()})
	}
}

func unclassifiable(err error) bool {
	return stderrors.Is(err, oracle.ErrUnparseableReply) ||
		stderrors.Is(err, oracle.ErrUnknownKind) ||
		stderrors.Is(err, oracle.ErrNoResources)
}

// slotTypeName maps a slot type id back to the name the oracle knows.
func slotTypeName(inv models.Inventory, id string) string {
	if models.IsBuiltIn(id) {
		return id
	}
	for _, st := range inv.SlotTypes {
		if st.ID == id {
			return st.Name
		}
	}
	return ""
}

func route(out *Output) (*Output, error) {
	if err := orchestrator.Route(orchestrator.StateFixResource, out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}

func copyBundle(b models.Bundle) models.Bundle {
	b.SlotTypes = append([]models.SlotTypeDefinition(nil), b.SlotTypes...)
	b.Intents = append([]models.IntentDefinition(nil), b.Intents...)
	b.Slots = append([]models.SlotDefinition(nil), b.Slots...)
	return b
}
