// internal/common/artifacts/repository.go
package artifacts

import (
	"context"
	"errors"

	"lex-build-workers/internal/models"
)

var ErrNotFound = errors.New("artifact not found")

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Status         *models.ArtifactStatus
	StatusMessages []models.StatusMessage
	ExportLocation *string
}

// Repository is the narrow get/update surface every stage uses. Writes are
// last-write-wins.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Artifact, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Artifact, error)
}

// StatusPtr is a convenience for building patches.
func StatusPtr(s models.ArtifactStatus) *models.ArtifactStatus { return &s }

func apply(a *models.Artifact, p Patch) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.StatusMessages != nil {
		a.StatusMessages = append([]models.StatusMessage{}, p.StatusMessages...)
	}
	if p.ExportLocation != nil {
		a.ExportLocation = *p.ExportLocation
	}
}
