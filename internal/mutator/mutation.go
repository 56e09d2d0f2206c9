// internal/mutator/mutation.go
package mutator

import (
	"context"
	"encoding/json"
	"fmt"

	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/models"
	"lex-build-workers/pkg/registry"
)

// Mutation is one create or update call against the platform. The set of
// implementations is closed: SlotType, Slot and Intent, each as Create or
// Update.
type Mutation interface {
	Kind() registry.Kind
	Name() string
	// Payload is the JSON form the oracle reads and rewrites.
	Payload() (json.RawMessage, error)
	SetPayload(json.RawMessage) error
	submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error)
}

var (
	_ Mutation = (*CreateSlotType)(nil)
	_ Mutation = (*UpdateSlotType)(nil)
	_ Mutation = (*CreateSlot)(nil)
	_ Mutation = (*UpdateSlot)(nil)
	_ Mutation = (*CreateIntent)(nil)
	_ Mutation = (*UpdateIntent)(nil)
)

// --- slot types ---

type CreateSlotType struct {
	Def models.SlotTypeDefinition
}

func (m *CreateSlotType) Kind() registry.Kind               { return registry.KindSlotType }
func (m *CreateSlotType) Name() string                      { return m.Def.Name }
func (m *CreateSlotType) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *CreateSlotType) SetPayload(raw json.RawMessage) error {
	return decodeInto(raw, &m.Def)
}
func (m *CreateSlotType) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	return p.CreateSlotType(ctx, loc, m.Def)
}

type UpdateSlotType struct {
	ID  string
	Def models.SlotTypeDefinition
}

func (m *UpdateSlotType) Kind() registry.Kind               { return registry.KindSlotType }
func (m *UpdateSlotType) Name() string                      { return m.Def.Name }
func (m *UpdateSlotType) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *UpdateSlotType) SetPayload(raw json.RawMessage) error {
	return decodeInto(raw, &m.Def)
}
func (m *UpdateSlotType) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	return m.ID, p.UpdateSlotType(ctx, loc, m.ID, m.Def)
}

// --- slots ---

type CreateSlot struct {
	IntentID string
	Def      models.SlotDefinition
}

func (m *CreateSlot) Kind() registry.Kind               { return registry.KindSlot }
func (m *CreateSlot) Name() string                      { return m.Def.IntentName + "." + m.Def.Name }
func (m *CreateSlot) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *CreateSlot) SetPayload(raw json.RawMessage) error {
	return setSlotPayload(raw, &m.Def)
}
func (m *CreateSlot) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	if err := resolveSlotType(ctx, p, loc, &m.Def); err != nil {
		return "", err
	}
	return p.CreateSlot(ctx, loc, m.IntentID, m.Def)
}

type UpdateSlot struct {
	IntentID string
	SlotID   string
	Def      models.SlotDefinition
}

func (m *UpdateSlot) Kind() registry.Kind               { return registry.KindSlot }
func (m *UpdateSlot) Name() string                      { return m.Def.IntentName + "." + m.Def.Name }
func (m *UpdateSlot) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *UpdateSlot) SetPayload(raw json.RawMessage) error {
	return setSlotPayload(raw, &m.Def)
}
func (m *UpdateSlot) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	if err := resolveSlotType(ctx, p, loc, &m.Def); err != nil {
		return "", err
	}
	return m.SlotID, p.UpdateSlot(ctx, loc, m.IntentID, m.SlotID, m.Def)
}

// --- intents ---

type CreateIntent struct {
	Def models.IntentDefinition
}

func (m *CreateIntent) Kind() registry.Kind               { return registry.KindIntent }
func (m *CreateIntent) Name() string                      { return m.Def.Name }
func (m *CreateIntent) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *CreateIntent) SetPayload(raw json.RawMessage) error {
	return decodeInto(raw, &m.Def)
}
func (m *CreateIntent) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	m.Def.DisableCodeHooks()
	return p.CreateIntent(ctx, loc, m.Def)
}

type UpdateIntent struct {
	ID  string
	Def models.IntentDefinition
}

func (m *UpdateIntent) Kind() registry.Kind               { return registry.KindIntent }
func (m *UpdateIntent) Name() string                      { return m.Def.Name }
func (m *UpdateIntent) Payload() (json.RawMessage, error) { return json.Marshal(m.Def) }
func (m *UpdateIntent) SetPayload(raw json.RawMessage) error {
	return decodeInto(raw, &m.Def)
}
func (m *UpdateIntent) submit(ctx context.Context, p lex.Platform, loc lex.Locale) (string, error) {
	m.Def.DisableCodeHooks()
	return m.ID, p.UpdateIntent(ctx, loc, m.ID, m.Def)
}

// decodeInto replaces *dst with raw. On error *dst is left unchanged.
func decodeInto[T any](raw json.RawMessage, dst *T) error {
	var next T
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	*dst = next
	return nil
}

// setSlotPayload keeps the resolved type id only while the type name is
// unchanged; a renamed type is resolved again on submit.
func setSlotPayload(raw json.RawMessage, def *models.SlotDefinition) error {
	prev := *def
	if err := decodeInto(raw, def); err != nil {
		return err
	}
	if def.SlotTypeName == prev.SlotTypeName {
		def.SlotTypeID = prev.SlotTypeID
	} else {
		def.SlotTypeID = ""
	}
	return nil
}

// resolveSlotType fills SlotTypeID from a fresh slot-type listing. Built-in
// type names are their own id.
func resolveSlotType(ctx context.Context, p lex.Platform, loc lex.Locale, def *models.SlotDefinition) error {
	if def.SlotTypeID != "" {
		return nil
	}
	if models.IsBuiltIn(def.SlotTypeName) {
		def.SlotTypeID = def.SlotTypeName
		return nil
	}
	ids, err := lex.SlotTypeIDs(ctx, p, loc)
	if err != nil {
		return fmt.Errorf("list slot types: %w", err)
	}
	id, ok := ids[def.SlotTypeName]
	if !ok {
		return &SlotTypeNotFoundError{SlotType: def.SlotTypeName, Slot: def.Name}
	}
	def.SlotTypeID = id
	return nil
}

// SlotTypeNotFoundError means a slot references a custom slot type that does
// not exist on the platform.
type SlotTypeNotFoundError struct {
	SlotType string
	Slot     string
}

func (e *SlotTypeNotFoundError) Error() string {
	return fmt.Sprintf("slot %s references unknown slot type %s", e.Slot, e.SlotType)
}
