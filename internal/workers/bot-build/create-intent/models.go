// internal/workers/bot-build/create-intent/models.go
package createintent

import "lex-build-workers/internal/models"

type (
	Input  = models.StageEvent
	Output = models.StageEvent
)

// createdSlot is one slot created under the intent, in elicitation order.
type createdSlot struct {
	Name string
	ID   string
}
