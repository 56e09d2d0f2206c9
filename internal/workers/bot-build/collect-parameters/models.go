// internal/workers/bot-build/collect-parameters/models.go
package collectparameters

import "lex-build-workers/internal/models"

// Input is the process state at the start; Output.Output carries the
// deduplicated bundle and Output.Input the fresh work-lists.
type (
	Input  = models.StageEvent
	Output = models.StageEvent
)

// ResetSummary counts what the reset pass removed from the locale.
type ResetSummary struct {
	IntentsDeleted   int
	SlotTypesDeleted int
}
