package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/models"
)

func event(in models.StageInput) *models.StageEvent {
	return &models.StageEvent{Input: in}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		from State
		in   models.StageInput
		want State
	}{
		{"collector with slot types", StateParameterCollection, models.StageInput{SlotTypesToProcess: 2, IntentsToProcess: 3}, StateCreateSlotType},
		{"collector without slot types", StateParameterCollection, models.StageInput{IntentsToProcess: 3}, StateCreateIntent},
		{"slot type loop", StateCreateSlotType, models.StageInput{SlotTypesToProcess: 1}, StateCreateSlotType},
		{"slot types drained", StateCreateSlotType, models.StageInput{IntentsToProcess: 3}, StateCreateIntent},
		{"intent loop", StateCreateIntent, models.StageInput{IntentsToProcess: 1}, StateCreateIntent},
		{"intents drained", StateCreateIntent, models.StageInput{}, StateBuildArtifact},
		{"built", StateBuildArtifact, models.StageInput{Built: true}, StateDone},
		{"build failed with reasons", StateBuildArtifact, models.StageInput{FailureReasonsToFix: 2}, StateFixResource},
		{"build failed without reasons", StateBuildArtifact, models.StageInput{}, StateBuildArtifact},
		{"fix loop", StateFixResource, models.StageInput{FailureReasonsToFix: 1}, StateFixResource},
		{"fixes drained", StateFixResource, models.StageInput{}, StateBuildArtifact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, event(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, Transition(tt.from, got))
		})
	}
}

func TestNext_Terminal(t *testing.T) {
	_, err := Next(StateDone, event(models.StageInput{}))
	assert.ErrorIs(t, err, ErrTerminalState)

	_, err = Next(State("bogus"), event(models.StageInput{}))
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestTransition(t *testing.T) {
	assert.NoError(t, Transition(StateCreateIntent, StateFailed))
	assert.ErrorIs(t, Transition(StateCreateIntent, StateCreateSlotType), ErrIllegalTransition)
	assert.ErrorIs(t, Transition(StateDone, StateBuildArtifact), ErrIllegalTransition)
	assert.ErrorIs(t, Transition(StateDone, StateFailed), ErrIllegalTransition)
	assert.ErrorIs(t, Transition(StateBuildArtifact, State("nowhere")), ErrUnknownState)
}

func TestRoute(t *testing.T) {
	ev := event(models.StageInput{SlotTypesToProcess: 1})

	require.NoError(t, Route(StateParameterCollection, ev))

	assert.Equal(t, string(StateCreateSlotType), ev.NextStage)
}
