// internal/common/lex/inventory.go
package lex

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lex-build-workers/internal/models"
)

// inventoryConcurrency caps parallel ListSlots calls; the models API
// throttles aggressively per bot.
const inventoryConcurrency = 4

// ComputeInventory lists every intent with its slots and every slot type.
// Order follows the platform listing.
func ComputeInventory(ctx context.Context, p Platform, loc Locale) (models.Inventory, error) {
	intents, err := p.ListIntents(ctx, loc)
	if err != nil {
		return models.Inventory{}, fmt.Errorf("list intents: %w", err)
	}
	slotTypes, err := p.ListSlotTypes(ctx, loc)
	if err != nil {
		return models.Inventory{}, fmt.Errorf("list slot types: %w", err)
	}

	inv := models.Inventory{
		Intents:   make([]models.IntentInventory, len(intents)),
		SlotTypes: slotTypes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inventoryConcurrency)
	for i, in := range intents {
		g.Go(func() error {
			slots, err := p.ListSlots(gctx, loc, in.ID)
			if err != nil {
				return fmt.Errorf("list slots of %s: %w", in.Name, err)
			}
			if slots == nil {
				slots = []models.ResourceRef{}
			}
			inv.Intents[i] = models.IntentInventory{ResourceRef: in, Slots: slots}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Inventory{}, err
	}
	if inv.SlotTypes == nil {
		inv.SlotTypes = []models.ResourceRef{}
	}
	return inv, nil
}

// SlotTypeIDs returns a fresh name-to-id map of the slot types on the platform.
func SlotTypeIDs(ctx context.Context, p Platform, loc Locale) (map[string]string, error) {
	refs, err := p.ListSlotTypes(ctx, loc)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(refs))
	for _, r := range refs {
		ids[r.Name] = r.ID
	}
	return ids, nil
}

// FindIntentID looks an intent up by name.
func FindIntentID(ctx context.Context, p Platform, loc Locale, name string) (string, bool, error) {
	refs, err := p.ListIntents(ctx, loc)
	if err != nil {
		return "", false, err
	}
	for _, r := range refs {
		if r.Name == name {
			return r.ID, true, nil
		}
	}
	return "", false, nil
}

// SlotIDs returns a name-to-id map of the slots already on an intent.
func SlotIDs(ctx context.Context, p Platform, loc Locale, intentID string) (map[string]string, error) {
	refs, err := p.ListSlots(ctx, loc, intentID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(refs))
	for _, r := range refs {
		ids[r.Name] = r.ID
	}
	return ids, nil
}
