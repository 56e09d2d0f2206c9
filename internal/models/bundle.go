// internal/models/bundle.go
package models

import "strings"

// BuiltInPrefix marks platform-provided slot types and intents that are
// never created or deleted locally.
const BuiltInPrefix = "AMAZON."

// FallbackIntentName is the built-in intent every Lex locale keeps.
const FallbackIntentName = "FallbackIntent"

// IsBuiltIn reports whether name refers to a platform-provided resource.
func IsBuiltIn(name string) bool {
	return strings.HasPrefix(name, BuiltInPrefix)
}

// Bundle is the parsed migration output: everything the bot needs.
type Bundle struct {
	Slots     []SlotDefinition     `json:"slots"`
	SlotTypes []SlotTypeDefinition `json:"slotTypes"`
	Intents   []IntentDefinition   `json:"intents"`
}

// IsEmpty reports whether the bundle carries no resources at all.
func (b Bundle) IsEmpty() bool {
	return len(b.Slots) == 0 && len(b.SlotTypes) == 0 && len(b.Intents) == 0
}

// SlotType looks up a slot-type definition by name.
func (b Bundle) SlotType(name string) (SlotTypeDefinition, bool) {
	for _, st := range b.SlotTypes {
		if st.Name == name {
			return st, true
		}
	}
	return SlotTypeDefinition{}, false
}

// Intent looks up an intent definition by name.
func (b Bundle) Intent(name string) (IntentDefinition, bool) {
	for _, in := range b.Intents {
		if in.Name == name {
			return in, true
		}
	}
	return IntentDefinition{}, false
}

// SlotsFor returns the slots owned by the named intent in bundle order.
func (b Bundle) SlotsFor(intentName string) []SlotDefinition {
	var out []SlotDefinition
	for _, s := range b.Slots {
		if s.IntentName == intentName {
			out = append(out, s)
		}
	}
	return out
}

// PutSlotType replaces the named slot type, or appends it.
func (b *Bundle) PutSlotType(def SlotTypeDefinition) {
	for i := range b.SlotTypes {
		if b.SlotTypes[i].Name == def.Name {
			b.SlotTypes[i] = def
			return
		}
	}
	b.SlotTypes = append(b.SlotTypes, def)
}

// PutIntent replaces the named intent, or appends it.
func (b *Bundle) PutIntent(def IntentDefinition) {
	for i := range b.Intents {
		if b.Intents[i].Name == def.Name {
			b.Intents[i] = def
			return
		}
	}
	b.Intents = append(b.Intents, def)
}

// PutSlot replaces the slot with the same intent and name, or appends it.
func (b *Bundle) PutSlot(def SlotDefinition) {
	for i := range b.Slots {
		if b.Slots[i].IntentName == def.IntentName && b.Slots[i].Name == def.Name {
			b.Slots[i] = def
			return
		}
	}
	b.Slots = append(b.Slots, def)
}

// SlotTypeValue is one enumerated value with optional synonyms.
type SlotTypeValue struct {
	Value    string   `json:"value"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// SlotTypeDefinition is the payload for a custom slot type.
type SlotTypeDefinition struct {
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Values             []SlotTypeValue `json:"values,omitempty"`
	ResolutionStrategy string          `json:"resolutionStrategy,omitempty"`
	ParentSignature    string          `json:"parentSignature,omitempty"`
}

// SlotDefinition is the payload for a slot owned by an intent. SlotTypeName
// is either a custom slot type from the bundle or a built-in.
type SlotDefinition struct {
	Name         string `json:"name"`
	IntentName   string `json:"intentName"`
	Description  string `json:"description,omitempty"`
	SlotTypeName string `json:"slotTypeName"`
	SlotTypeID   string `json:"slotTypeId,omitempty"`
	Required     bool   `json:"required"`
	Prompt       string `json:"prompt"`
	MaxRetries   int    `json:"maxRetries,omitempty"`
}

// SlotPriority orders slot elicitation inside an intent.
type SlotPriority struct {
	Priority int    `json:"priority"`
	SlotID   string `json:"slotId"`
}

// IntentDefinition is the payload for an intent.
type IntentDefinition struct {
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	SampleUtterances    []string       `json:"sampleUtterances"`
	SlotPriorities      []SlotPriority `json:"slotPriorities,omitempty"`
	ParentSignature     string         `json:"parentSignature,omitempty"`
	DialogCodeHook      bool           `json:"dialogCodeHook"`
	FulfillmentCodeHook bool           `json:"fulfillmentCodeHook"`
}

// DisableCodeHooks turns off the Lambda hooks; migrated bots have no backend.
func (d *IntentDefinition) DisableCodeHooks() {
	d.DialogCodeHook = false
	d.FulfillmentCodeHook = false
}

// DedupeUtterances removes sample utterances that already appeared in an
// earlier intent. Comparison ignores case and surrounding or repeated
// whitespace; the first occurrence wins. Blank utterances are dropped.
func (b *Bundle) DedupeUtterances() int {
	seen := make(map[string]struct{})
	removed := 0
	for i := range b.Intents {
		kept := make([]string, 0, len(b.Intents[i].SampleUtterances))
		for _, u := range b.Intents[i].SampleUtterances {
			key := normalizeUtterance(u)
			if key == "" {
				removed++
				continue
			}
			if _, dup := seen[key]; dup {
				removed++
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, u)
		}
		b.Intents[i].SampleUtterances = kept
	}
	return removed
}

func normalizeUtterance(u string) string {
	return strings.ToLower(strings.Join(strings.Fields(u), " "))
}

// SlotTypeNames lists custom slot types to create, skipping built-ins.
func (b Bundle) SlotTypeNames() []string {
	names := make([]string, 0, len(b.SlotTypes))
	for _, st := range b.SlotTypes {
		if IsBuiltIn(st.Name) {
			continue
		}
		names = append(names, st.Name)
	}
	return names
}

// IntentNames lists intents to create, skipping built-ins.
func (b Bundle) IntentNames() []string {
	names := make([]string, 0, len(b.Intents))
	for _, in := range b.Intents {
		if IsBuiltIn(in.Name) {
			continue
		}
		names = append(names, in.Name)
	}
	return names
}
