// internal/models/event.go
package models

// WorkList is an ordered list of resource names still to be processed.
// It is a value type: Pop never mutates the receiver's backing array.
type WorkList []string

// Pop removes the head of the list. It returns ok=false on an empty list.
func (w WorkList) Pop() (head string, rest WorkList, ok bool) {
	if len(w) == 0 {
		return "", WorkList{}, false
	}
	rest = make(WorkList, len(w)-1)
	copy(rest, w[1:])
	return w[0], rest, true
}

// Len is the remaining-item counter exposed to the scheduler.
func (w WorkList) Len() int {
	return len(w)
}

// BotRef identifies the artifact a stage works on.
type BotRef struct {
	ArtifactID string `json:"artifactId"`
}

// StageInput carries the work-lists and build bookkeeping between stages.
type StageInput struct {
	SlotTypeNames       WorkList  `json:"slotTypeNames"`
	IntentNames         WorkList  `json:"intentNames"`
	SlotTypesToProcess  int       `json:"slotTypesToProcess"`
	IntentsToProcess    int       `json:"intentsToProcess"`
	FailureReasons      []string  `json:"failureReasons"`
	FailureReasonsToFix int       `json:"failureReasonsToFix"`
	NumOfRetry          int       `json:"numOfRetry"`
	Built               bool      `json:"built"`
	Inventory           Inventory `json:"inventory"`
}

// StageEvent is the variable document passed from stage to stage. On Zeebe
// it is the process instance variables; locally it is the runner state.
type StageEvent struct {
	Bot       BotRef     `json:"bot"`
	Input     StageInput `json:"input"`
	Output    Bundle     `json:"output"`
	NextStage string     `json:"nextStage,omitempty"`
}

// SetSlotTypes replaces the slot-type work-list and recomputes its counter.
func (e *StageEvent) SetSlotTypes(w WorkList) {
	e.Input.SlotTypeNames = w
	e.Input.SlotTypesToProcess = w.Len()
}

// SetIntents replaces the intent work-list and recomputes its counter.
func (e *StageEvent) SetIntents(w WorkList) {
	e.Input.IntentNames = w
	e.Input.IntentsToProcess = w.Len()
}

// SetFailureReasons replaces the pending failure reasons and recomputes the counter.
func (e *StageEvent) SetFailureReasons(reasons []string) {
	if reasons == nil {
		reasons = []string{}
	}
	e.Input.FailureReasons = reasons
	e.Input.FailureReasonsToFix = len(reasons)
}
