// internal/models/inventory.go
package models

import "strings"

// ResourceRef pairs a platform-assigned id with its name.
type ResourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IntentInventory is one intent with the slots it owns.
type IntentInventory struct {
	ResourceRef
	Slots []ResourceRef `json:"slots"`
}

// Inventory is the full listing of what exists on the platform. It is
// handed to the oracle so it can attribute failure reasons to resources.
type Inventory struct {
	Intents   []IntentInventory `json:"intents"`
	SlotTypes []ResourceRef     `json:"slotTypes"`
}

// FindIntent returns the inventory entry for an intent name.
func (inv Inventory) FindIntent(name string) (IntentInventory, bool) {
	for _, in := range inv.Intents {
		if in.Name == name {
			return in, true
		}
	}
	return IntentInventory{}, false
}

// FindSlotType returns the inventory entry for a slot-type name.
func (inv Inventory) FindSlotType(name string) (ResourceRef, bool) {
	for _, st := range inv.SlotTypes {
		if st.Name == name {
			return st, true
		}
	}
	return ResourceRef{}, false
}

// FindSlot locates a slot by name. When several intents own a slot with the
// same name the first one in inventory order wins; qualify with
// "Intent.Slot" to disambiguate.
func (inv Inventory) FindSlot(name string) (intent IntentInventory, slot ResourceRef, ok bool) {
	intentName, slotName, qualified := strings.Cut(name, ".")
	if !qualified {
		intentName, slotName = "", name
	}
	for _, in := range inv.Intents {
		if intentName != "" && in.Name != intentName {
			continue
		}
		for _, s := range in.Slots {
			if s.Name == slotName {
				return in, s, true
			}
		}
	}
	return IntentInventory{}, ResourceRef{}, false
}
