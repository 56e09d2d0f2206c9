// internal/workers/bot-build/build-bot/models.go
package buildbot

import (
	"context"

	"lex-build-workers/internal/models"
)

type (
	Input  = models.StageEvent
	Output = models.StageEvent
)

// Downloader fetches the archive behind an export's presigned URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
