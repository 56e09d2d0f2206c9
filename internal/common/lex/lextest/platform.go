// Package lextest provides an in-memory lex.Platform for tests and local dry runs.
package lextest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"
	"github.com/aws/smithy-go"

	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/models"
)

var _ lex.Platform = (*Platform)(nil)

// Operation names used with Fail and Calls.
const (
	OpCreateSlotType = "CreateSlotType"
	OpUpdateSlotType = "UpdateSlotType"
	OpCreateIntent   = "CreateIntent"
	OpUpdateIntent   = "UpdateIntent"
	OpCreateSlot     = "CreateSlot"
	OpUpdateSlot     = "UpdateSlot"
	OpDeleteIntent   = "DeleteIntent"
	OpDeleteSlotType = "DeleteSlotType"
	OpBuildLocale    = "BuildLocale"
	OpCreateExport   = "CreateExport"
	OpListSlotTypes  = "ListSlotTypes"
)

// BuildOutcome scripts the result of one BuildLocale call.
type BuildOutcome struct {
	Reasons []string // empty means the build succeeds
	Pending bool     // the locale stays Building
}

type slotRecord struct {
	intentID string
	def      models.SlotDefinition
}

// Platform is a single-locale in-memory stand-in for Lex.
type Platform struct {
	mu sync.Mutex

	seq       int
	slotTypes map[string]models.SlotTypeDefinition
	intents   map[string]models.IntentDefinition
	slots     map[string]slotRecord

	failures map[string][]error
	calls    map[string]int

	builds       []BuildOutcome
	localeState  lex.LocaleState
	DownloadURL  string
	ExportStatus string
}

// New returns an empty platform that already holds the built-in FallbackIntent.
func New() *Platform {
	p := &Platform{
		slotTypes:    make(map[string]models.SlotTypeDefinition),
		intents:      make(map[string]models.IntentDefinition),
		slots:        make(map[string]slotRecord),
		failures:     make(map[string][]error),
		calls:        make(map[string]int),
		localeState:  lex.LocaleState{Status: lex.LocaleNotBuilt},
		ExportStatus: lex.ExportCompleted,
	}
	p.intents["FALLBCKINT"] = models.IntentDefinition{Name: models.FallbackIntentName, ParentSignature: "AMAZON.FallbackIntent"}
	return p
}

// ValidationError builds the error Lex returns for a rejected payload.
func ValidationError(msg string) error {
	return &types.ValidationException{Message: aws.String(msg)}
}

// SerializationError builds the error the SDK returns for a payload it
// cannot encode or decode.
func SerializationError(msg string) error {
	return &smithy.SerializationError{Err: errors.New(msg)}
}

// Fail queues errors for the next calls of op, in order.
func (p *Platform) Fail(op string, errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = append(p.failures[op], errs...)
}

// ScriptBuilds queues build outcomes. Once exhausted, builds succeed.
func (p *Platform) ScriptBuilds(outcomes ...BuildOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builds = append(p.builds, outcomes...)
}

// Calls returns how many times op was invoked.
func (p *Platform) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// SeedSlotType adds a slot type as if it pre-existed.
func (p *Platform) SeedSlotType(def models.SlotTypeDefinition) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID("ST")
	p.slotTypes[id] = def
	return id
}

// SeedIntent adds an intent as if it pre-existed.
func (p *Platform) SeedIntent(def models.IntentDefinition) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID("IN")
	p.intents[id] = def
	return id
}

// SeedSlot adds a slot to a seeded intent as if it pre-existed, placing it
// last in the intent's slot priorities. Neither the slot nor the priority
// change counts as a call.
func (p *Platform) SeedSlot(intentID string, def models.SlotDefinition) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID("SL")
	p.slots[id] = slotRecord{intentID: intentID, def: def}
	if intent, ok := p.intents[intentID]; ok {
		intent.SlotPriorities = append(append([]models.SlotPriority(nil), intent.SlotPriorities...),
			models.SlotPriority{Priority: len(intent.SlotPriorities) + 1, SlotID: id})
		p.intents[intentID] = intent
	}
	return id
}

// SlotTypeByName returns the stored definition of a slot type.
func (p *Platform) SlotTypeByName(name string) (models.SlotTypeDefinition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, def := range p.slotTypes {
		if def.Name == name {
			return def, true
		}
	}
	return models.SlotTypeDefinition{}, false
}

// IntentByName returns the id and stored definition of an intent.
func (p *Platform) IntentByName(name string) (string, models.IntentDefinition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, def := range p.intents {
		if def.Name == name {
			return id, def, true
		}
	}
	return "", models.IntentDefinition{}, false
}

// SlotsOf returns the stored slots of an intent sorted by id.
func (p *Platform) SlotsOf(intentID string) []models.SlotDefinition {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0)
	for id, rec := range p.slots {
		if rec.intentID == intentID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]models.SlotDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.slots[id].def)
	}
	return out
}

func (p *Platform) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s%04d", prefix, p.seq)
}

// enter records a call and pops a scripted failure if one is queued.
func (p *Platform) enter(op string) error {
	p.calls[op]++
	if q := p.failures[op]; len(q) > 0 {
		p.failures[op] = q[1:]
		return q[0]
	}
	return nil
}

func (p *Platform) CreateSlotType(_ context.Context, _ lex.Locale, def models.SlotTypeDefinition) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateSlotType); err != nil {
		return "", err
	}
	for _, existing := range p.slotTypes {
		if existing.Name == def.Name {
			return "", &types.ConflictException{Message: aws.String("slot type " + def.Name + " already exists")}
		}
	}
	id := p.nextID("ST")
	p.slotTypes[id] = def
	return id, nil
}

func (p *Platform) UpdateSlotType(_ context.Context, _ lex.Locale, id string, def models.SlotTypeDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateSlotType); err != nil {
		return err
	}
	if _, ok := p.slotTypes[id]; !ok {
		return &types.ResourceNotFoundException{Message: aws.String("slot type " + id)}
	}
	p.slotTypes[id] = def
	return nil
}

func (p *Platform) DescribeSlotType(_ context.Context, _ lex.Locale, id string) (models.SlotTypeDefinition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	def, ok := p.slotTypes[id]
	if !ok {
		return models.SlotTypeDefinition{}, &types.ResourceNotFoundException{Message: aws.String("slot type " + id)}
	}
	return def, nil
}

func (p *Platform) ListSlotTypes(_ context.Context, _ lex.Locale) ([]models.ResourceRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpListSlotTypes); err != nil {
		return nil, err
	}
	refs := make([]models.ResourceRef, 0, len(p.slotTypes))
	for id, def := range p.slotTypes {
		refs = append(refs, models.ResourceRef{ID: id, Name: def.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (p *Platform) DeleteSlotType(_ context.Context, _ lex.Locale, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpDeleteSlotType); err != nil {
		return err
	}
	delete(p.slotTypes, id)
	return nil
}

func (p *Platform) CreateIntent(_ context.Context, _ lex.Locale, def models.IntentDefinition) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateIntent); err != nil {
		return "", err
	}
	for _, existing := range p.intents {
		if existing.Name == def.Name {
			return "", &types.ConflictException{Message: aws.String("intent " + def.Name + " already exists")}
		}
	}
	id := p.nextID("IN")
	p.intents[id] = def
	return id, nil
}

func (p *Platform) UpdateIntent(_ context.Context, _ lex.Locale, id string, def models.IntentDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateIntent); err != nil {
		return err
	}
	if _, ok := p.intents[id]; !ok {
		return &types.ResourceNotFoundException{Message: aws.String("intent " + id)}
	}
	p.intents[id] = def
	return nil
}

func (p *Platform) DescribeIntent(_ context.Context, _ lex.Locale, id string) (models.IntentDefinition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	def, ok := p.intents[id]
	if !ok {
		return models.IntentDefinition{}, &types.ResourceNotFoundException{Message: aws.String("intent " + id)}
	}
	return def, nil
}

func (p *Platform) ListIntents(_ context.Context, _ lex.Locale) ([]models.ResourceRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	refs := make([]models.ResourceRef, 0, len(p.intents))
	for id, def := range p.intents {
		refs = append(refs, models.ResourceRef{ID: id, Name: def.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (p *Platform) DeleteIntent(_ context.Context, _ lex.Locale, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpDeleteIntent); err != nil {
		return err
	}
	delete(p.intents, id)
	for slotID, rec := range p.slots {
		if rec.intentID == id {
			delete(p.slots, slotID)
		}
	}
	return nil
}

func (p *Platform) CreateSlot(_ context.Context, _ lex.Locale, intentID string, def models.SlotDefinition) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateSlot); err != nil {
		return "", err
	}
	if _, ok := p.intents[intentID]; !ok {
		return "", &types.ResourceNotFoundException{Message: aws.String("intent " + intentID)}
	}
	for _, rec := range p.slots {
		if rec.intentID == intentID && rec.def.Name == def.Name {
			return "", &types.ConflictException{Message: aws.String("slot " + def.Name + " already exists")}
		}
	}
	id := p.nextID("SL")
	p.slots[id] = slotRecord{intentID: intentID, def: def}
	return id, nil
}

func (p *Platform) UpdateSlot(_ context.Context, _ lex.Locale, intentID, slotID string, def models.SlotDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateSlot); err != nil {
		return err
	}
	if _, ok := p.slots[slotID]; !ok {
		return &types.ResourceNotFoundException{Message: aws.String("slot " + slotID)}
	}
	p.slots[slotID] = slotRecord{intentID: intentID, def: def}
	return nil
}

func (p *Platform) DescribeSlot(_ context.Context, _ lex.Locale, _, slotID string) (models.SlotDefinition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.slots[slotID]
	if !ok {
		return models.SlotDefinition{}, &types.ResourceNotFoundException{Message: aws.String("slot " + slotID)}
	}
	return rec.def, nil
}

func (p *Platform) ListSlots(_ context.Context, _ lex.Locale, intentID string) ([]models.ResourceRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	refs := []models.ResourceRef{}
	for id, rec := range p.slots {
		if rec.intentID == intentID {
			refs = append(refs, models.ResourceRef{ID: id, Name: rec.def.Name})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (p *Platform) BuildLocale(_ context.Context, _ lex.Locale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpBuildLocale); err != nil {
		return err
	}
	outcome := BuildOutcome{}
	if len(p.builds) > 0 {
		outcome, p.builds = p.builds[0], p.builds[1:]
	}
	switch {
	case outcome.Pending:
		p.localeState = lex.LocaleState{Status: lex.LocaleBuilding}
	case len(outcome.Reasons) > 0:
		p.localeState = lex.LocaleState{Status: lex.LocaleFailed, FailureReasons: outcome.Reasons}
	default:
		p.localeState = lex.LocaleState{Status: lex.LocaleBuilt}
	}
	return nil
}

func (p *Platform) DescribeLocale(_ context.Context, _ lex.Locale) (lex.LocaleState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.localeState, nil
}

func (p *Platform) CreateExport(_ context.Context, _ lex.Locale) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateExport); err != nil {
		return "", err
	}
	return p.nextID("EX"), nil
}

func (p *Platform) DescribeExport(_ context.Context, _ string) (lex.ExportState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lex.ExportState{Status: p.ExportStatus, DownloadURL: p.DownloadURL}, nil
}
