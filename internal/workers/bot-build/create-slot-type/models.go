// internal/workers/bot-build/create-slot-type/models.go
package createslottype

import "lex-build-workers/internal/models"

type (
	Input  = models.StageEvent
	Output = models.StageEvent
)
