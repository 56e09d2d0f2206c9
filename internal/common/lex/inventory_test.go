package lex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/lex/lextest"
	"lex-build-workers/internal/models"
)

func TestComputeInventory(t *testing.T) {
	ctx := context.Background()
	p := lextest.New()
	cityID := p.SeedSlotType(models.SlotTypeDefinition{Name: "City"})
	intentID := p.SeedIntent(models.IntentDefinition{Name: "BookHotel"})
	_, err := p.CreateSlot(ctx, testLocale, intentID, models.SlotDefinition{Name: "Location", SlotTypeID: cityID})
	require.NoError(t, err)

	inv, err := lex.ComputeInventory(ctx, p, testLocale)
	require.NoError(t, err)

	assert.Len(t, inv.Intents, 2) // FallbackIntent plus BookHotel
	book, ok := inv.FindIntent("BookHotel")
	require.True(t, ok)
	assert.Equal(t, intentID, book.ID)
	require.Len(t, book.Slots, 1)
	assert.Equal(t, "Location", book.Slots[0].Name)

	fallback, ok := inv.FindIntent(models.FallbackIntentName)
	require.True(t, ok)
	assert.NotNil(t, fallback.Slots)
	assert.Empty(t, fallback.Slots)

	st, ok := inv.FindSlotType("City")
	require.True(t, ok)
	assert.Equal(t, cityID, st.ID)
}

func TestSlotTypeIDs(t *testing.T) {
	p := lextest.New()
	a := p.SeedSlotType(models.SlotTypeDefinition{Name: "City"})
	b := p.SeedSlotType(models.SlotTypeDefinition{Name: "RoomType"})

	ids, err := lex.SlotTypeIDs(context.Background(), p, testLocale)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"City": a, "RoomType": b}, ids)
}
