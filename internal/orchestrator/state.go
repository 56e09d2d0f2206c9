// internal/orchestrator/state.go
package orchestrator

import (
	"errors"
	"fmt"

	"lex-build-workers/internal/models"
)

// State is one step of the bot build process. The string values are what
// workers write to nextStage and what the BPMN gateways route on.
type State string

const (
	StateParameterCollection State = "collect-parameters"
	StateCreateSlotType      State = "create-slot-type"
	StateCreateIntent        State = "create-intent"
	StateBuildArtifact       State = "build-artifact"
	StateFixResource         State = "fix-resource"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

var (
	ErrTerminalState     = errors.New("state is terminal")
	ErrUnknownState      = errors.New("unknown state")
	ErrIllegalTransition = errors.New("illegal transition")
)

// edges lists every allowed transition. Failed is reachable from anywhere
// and is not listed.
var edges = map[State][]State{
	StateParameterCollection: {StateCreateSlotType, StateCreateIntent},
	StateCreateSlotType:      {StateCreateSlotType, StateCreateIntent},
	StateCreateIntent:        {StateCreateIntent, StateBuildArtifact},
	StateBuildArtifact:       {StateDone, StateFixResource, StateBuildArtifact},
	StateFixResource:         {StateFixResource, StateBuildArtifact},
	StateDone:                nil,
	StateFailed:              nil,
}

// Terminal reports whether no stage runs after s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s State) known() bool {
	_, ok := edges[s]
	return ok
}

// Next picks the state that follows s given the event a stage produced.
func Next(s State, ev *models.StageEvent) (State, error) {
	if !s.known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
	}
	if s.Terminal() {
		return "", fmt.Errorf("%w: %s", ErrTerminalState, s)
	}
	in := ev.Input
	switch s {
	case StateParameterCollection, StateCreateSlotType:
		if in.SlotTypesToProcess > 0 {
			return StateCreateSlotType, nil
		}
		return StateCreateIntent, nil
	case StateCreateIntent:
		if in.IntentsToProcess > 0 {
			return StateCreateIntent, nil
		}
		return StateBuildArtifact, nil
	case StateBuildArtifact:
		switch {
		case in.Built:
			return StateDone, nil
		case in.FailureReasonsToFix > 0:
			return StateFixResource, nil
		default:
			return StateBuildArtifact, nil
		}
	default: // StateFixResource
		if in.FailureReasonsToFix > 0 {
			return StateFixResource, nil
		}
		return StateBuildArtifact, nil
	}
}

// Transition checks that from -> to is an edge of the process.
func Transition(from, to State) error {
	if !from.known() {
		return fmt.Errorf("%w: %q", ErrUnknownState, from)
	}
	if !to.known() {
		return fmt.Errorf("%w: %q", ErrUnknownState, to)
	}
	if to == StateFailed && !from.Terminal() {
		return nil
	}
	for _, allowed := range edges[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

// Route sets ev.NextStage from the state that just ran.
func Route(s State, ev *models.StageEvent) error {
	next, err := Next(s, ev)
	if err != nil {
		return err
	}
	ev.NextStage = string(next)
	return nil
}
