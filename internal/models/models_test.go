// internal/models/models_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkList_Pop(t *testing.T) {
	w := WorkList{"A", "B", "C"}

	head, rest, ok := w.Pop()

	require.True(t, ok)
	assert.Equal(t, "A", head)
	assert.Equal(t, WorkList{"B", "C"}, rest)
	assert.Equal(t, 2, rest.Len())
	assert.Equal(t, WorkList{"A", "B", "C"}, w, "original list must not change")
}

func TestWorkList_PopEmpty(t *testing.T) {
	var w WorkList

	head, rest, ok := w.Pop()

	assert.False(t, ok)
	assert.Empty(t, head)
	assert.Equal(t, 0, rest.Len())
}

func TestArtifact_AppendMessage_RemovesIdenticalText(t *testing.T) {
	a := &Artifact{}
	a.AppendMessage(StatusInProgress, "Creating slot type Size")
	a.AppendMessage(StatusSuccess, "Created slot type Size")
	a.AppendMessage(StatusInProgress, "Creating slot type Size")

	require.Len(t, a.StatusMessages, 2)
	assert.Equal(t, "Created slot type Size", a.StatusMessages[0].Message)
	assert.Equal(t, "Creating slot type Size", a.StatusMessages[1].Message)
}

func TestArtifact_CountStatus(t *testing.T) {
	a := &Artifact{StatusMessages: []StatusMessage{
		{Status: StatusError, Message: "one"},
		{Status: StatusSuccess, Message: "two"},
		{Status: StatusError, Message: "three"},
	}}

	assert.Equal(t, 2, a.CountStatus(StatusError))
	assert.Equal(t, 0, a.CountStatus(StatusBuilt))
}

func TestArtifact_BotVersion(t *testing.T) {
	assert.Equal(t, "DRAFT", (&Artifact{}).BotVersion())
	assert.Equal(t, "3", (&Artifact{Version: "3"}).BotVersion())
}

func TestBundle_DedupeUtterances(t *testing.T) {
	b := Bundle{Intents: []IntentDefinition{
		{Name: "OrderPizza", SampleUtterances: []string{"I want a pizza", "order pizza"}},
		{Name: "OrderDrink", SampleUtterances: []string{"i want  a PIZZA ", "order a drink", "  "}},
	}}

	removed := b.DedupeUtterances()

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"I want a pizza", "order pizza"}, b.Intents[0].SampleUtterances)
	assert.Equal(t, []string{"order a drink"}, b.Intents[1].SampleUtterances)
}

func TestBundle_NamesSkipBuiltIns(t *testing.T) {
	b := Bundle{
		SlotTypes: []SlotTypeDefinition{{Name: "Size"}, {Name: "AMAZON.Number"}, {Name: "Crust"}},
		Intents:   []IntentDefinition{{Name: "AMAZON.HelpIntent"}, {Name: "OrderPizza"}},
	}

	assert.Equal(t, []string{"Size", "Crust"}, b.SlotTypeNames())
	assert.Equal(t, []string{"OrderPizza"}, b.IntentNames())
}

func TestBundle_SlotsFor(t *testing.T) {
	b := Bundle{Slots: []SlotDefinition{
		{Name: "size", IntentName: "OrderPizza"},
		{Name: "drink", IntentName: "OrderDrink"},
		{Name: "crust", IntentName: "OrderPizza"},
	}}

	slots := b.SlotsFor("OrderPizza")

	require.Len(t, slots, 2)
	assert.Equal(t, "size", slots[0].Name)
	assert.Equal(t, "crust", slots[1].Name)
}

func TestInventory_FindSlot(t *testing.T) {
	inv := Inventory{Intents: []IntentInventory{
		{ResourceRef: ResourceRef{ID: "I1", Name: "OrderPizza"}, Slots: []ResourceRef{{ID: "S1", Name: "size"}}},
		{ResourceRef: ResourceRef{ID: "I2", Name: "OrderDrink"}, Slots: []ResourceRef{{ID: "S2", Name: "size"}}},
	}}

	in, slot, ok := inv.FindSlot("size")
	require.True(t, ok)
	assert.Equal(t, "I1", in.ID)
	assert.Equal(t, "S1", slot.ID)

	in, slot, ok = inv.FindSlot("OrderDrink.size")
	require.True(t, ok)
	assert.Equal(t, "I2", in.ID)
	assert.Equal(t, "S2", slot.ID)

	_, _, ok = inv.FindSlot("missing")
	assert.False(t, ok)
}

func TestStageEvent_SetFailureReasonsNil(t *testing.T) {
	var e StageEvent
	e.SetFailureReasons(nil)

	assert.NotNil(t, e.Input.FailureReasons)
	assert.Equal(t, 0, e.Input.FailureReasonsToFix)
}

func TestBundle_PutReplacesByName(t *testing.T) {
	b := Bundle{
		SlotTypes: []SlotTypeDefinition{{Name: "City"}},
		Intents:   []IntentDefinition{{Name: "BookHotel"}},
		Slots:     []SlotDefinition{{Name: "Location", IntentName: "BookHotel"}},
	}

	b.PutSlotType(SlotTypeDefinition{Name: "City", Description: "fixed"})
	b.PutSlotType(SlotTypeDefinition{Name: "RoomType"})
	b.PutIntent(IntentDefinition{Name: "BookHotel", Description: "fixed"})
	b.PutSlot(SlotDefinition{Name: "Location", IntentName: "BookHotel", Prompt: "Where?"})
	b.PutSlot(SlotDefinition{Name: "Location", IntentName: "BookCar"})

	require.Len(t, b.SlotTypes, 2)
	assert.Equal(t, "fixed", b.SlotTypes[0].Description)
	require.Len(t, b.Intents, 1)
	assert.Equal(t, "fixed", b.Intents[0].Description)
	require.Len(t, b.Slots, 2)
	assert.Equal(t, "Where?", b.Slots[0].Prompt)
}
