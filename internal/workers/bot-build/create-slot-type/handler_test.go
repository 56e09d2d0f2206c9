package createslottype

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/lex/lextest"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage/stagetest"
)

func newHandler(f *stagetest.Fixture) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, f.Tracker, f.Platform, f.Mutator, f.Logger)
}

func slotTypeEvent(f *stagetest.Fixture, names ...string) *Input {
	ev := f.Event()
	ev.Output = stagetest.SampleBundle()
	ev.SetSlotTypes(names)
	ev.SetIntents(ev.Output.IntentNames())
	return ev
}

func TestHandler_Execute_CreatesHead(t *testing.T) {
	f := stagetest.New(t)
	in := slotTypeEvent(f, "City", "RoomType")

	out, err := newHandler(f).Execute(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, models.WorkList{"RoomType"}, out.Input.SlotTypeNames)
	assert.Equal(t, 1, out.Input.SlotTypesToProcess)
	assert.Equal(t, string(orchestrator.StateCreateSlotType), out.NextStage)
	assert.Equal(t, models.WorkList{"City", "RoomType"}, in.Input.SlotTypeNames, "input list must not change")

	_, ok := f.Platform.SlotTypeByName("City")
	assert.True(t, ok)
	assert.Equal(t, []models.StatusMessage{{Status: models.StatusSuccess, Message: "Creating slot type City"}}, f.Artifact(t).StatusMessages)
}

func TestHandler_Execute_LastItemRoutesToIntents(t *testing.T) {
	f := stagetest.New(t)

	out, err := newHandler(f).Execute(context.Background(), slotTypeEvent(f, "RoomType"))

	require.NoError(t, err)
	assert.Equal(t, 0, out.Input.SlotTypesToProcess)
	assert.Equal(t, string(orchestrator.StateCreateIntent), out.NextStage)
}

func TestHandler_Execute_EmptyListIsNoOp(t *testing.T) {
	f := stagetest.New(t)

	out, err := newHandler(f).Execute(context.Background(), slotTypeEvent(f))

	require.NoError(t, err)
	assert.Equal(t, 0, out.Input.SlotTypesToProcess)
	assert.Equal(t, 0, f.Platform.Calls(lextest.OpCreateSlotType))
	assert.Empty(t, f.Artifact(t).StatusMessages)
}

func TestHandler_Execute_KeepsRepairedDefinition(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.Fail(lextest.OpCreateSlotType, lextest.ValidationError("value Paris is duplicated"))
	f.Model.Reply(`{"name":"City","values":[{"value":"Paris"},{"value":"Rome"}]}`)

	out, err := newHandler(f).Execute(context.Background(), slotTypeEvent(f, "City"))

	require.NoError(t, err)
	city, ok := out.Output.SlotType("City")
	require.True(t, ok)
	assert.Equal(t, "Rome", city.Values[1].Value)
	assert.Equal(t, 2, f.Platform.Calls(lextest.OpCreateSlotType))
}

func TestHandler_Execute_ExhaustsAfterFiveSubmissions(t *testing.T) {
	f := stagetest.New(t)
	for i := 0; i < 6; i++ {
		f.Platform.Fail(lextest.OpCreateSlotType, lextest.ValidationError(fmt.Sprintf("invalid %d", i)))
	}
	f.Model.Otherwise(func(string, []oracle.Message) (string, error) {
		return `{"name":"City","values":[{"value":"Paris"}]}`, nil
	})

	_, err := newHandler(f).Execute(context.Background(), slotTypeEvent(f, "City"))

	require.Error(t, err)
	assert.ErrorIs(t, err, mutator.ErrRetriedTooManyTimes)
	assert.Equal(t, errors.ErrCodeRepairBudgetExhausted, errors.Normalize(err).Code)
	assert.Equal(t, 5, f.Platform.Calls(lextest.OpCreateSlotType))
}

func TestHandler_Execute_UnknownSlotType(t *testing.T) {
	f := stagetest.New(t)

	_, err := newHandler(f).Execute(context.Background(), slotTypeEvent(f, "Missing"))

	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
}

func TestHandler_Execute_RedeliveredJobUpdatesExisting(t *testing.T) {
	f := stagetest.New(t)
	h := newHandler(f)
	in := slotTypeEvent(f, "City")

	_, err := h.Execute(context.Background(), in)
	require.NoError(t, err)
	out, err := h.Execute(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 1, f.Platform.Calls(lextest.OpCreateSlotType))
	assert.Equal(t, 1, f.Platform.Calls(lextest.OpUpdateSlotType))
	assert.Equal(t, 0, out.Input.SlotTypesToProcess)

	ids, err := lex.SlotTypeIDs(context.Background(), f.Platform, lex.Locale{})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, []models.StatusMessage{{Status: models.StatusSuccess, Message: "Creating slot type City"}}, f.Artifact(t).StatusMessages)
}
