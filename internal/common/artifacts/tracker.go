// internal/common/artifacts/tracker.go
package artifacts

import (
	"context"
	"fmt"

	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
)

// Tracker writes the artifact status log. Every write re-reads the artifact
// first so entries added by other stages survive, and drops any earlier
// entry with the same text before appending.
type Tracker struct {
	repo   Repository
	logger logger.Logger
}

func NewTracker(repo Repository, log logger.Logger) *Tracker {
	return &Tracker{repo: repo, logger: log}
}

// Repository exposes the underlying store for plain reads.
func (t *Tracker) Repository() Repository { return t.repo }

// Record appends one log entry. artifactStatus, when non-nil, also moves the
// artifact's lifecycle status.
func (t *Tracker) Record(ctx context.Context, id string, entry models.ArtifactStatus, message string, artifactStatus *models.ArtifactStatus) (*models.Artifact, error) {
	return t.record(ctx, id, entry, message, Patch{Status: artifactStatus})
}

func (t *Tracker) record(ctx context.Context, id string, entry models.ArtifactStatus, message string, patch Patch) (*models.Artifact, error) {
	current, err := t.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", id, err)
	}
	current.AppendMessage(entry, message)
	patch.StatusMessages = current.StatusMessages

	updated, err := t.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update artifact %s: %w", id, err)
	}
	t.logger.Debug("status recorded", map[string]interface{}{
		"artifactId": id,
		"entry":      string(entry),
		"message":    message,
	})
	return updated, nil
}

// Begin marks a step as started and the artifact as in progress.
func (t *Tracker) Begin(ctx context.Context, id, message string) (*models.Artifact, error) {
	return t.Record(ctx, id, models.StatusInProgress, message, StatusPtr(models.StatusInProgress))
}

// Succeed replaces the step's in-progress entry with a success entry.
func (t *Tracker) Succeed(ctx context.Context, id, message string) (*models.Artifact, error) {
	return t.Record(ctx, id, models.StatusSuccess, message, nil)
}

// Fail appends an error entry and moves the artifact to error.
func (t *Tracker) Fail(ctx context.Context, id, message string) (*models.Artifact, error) {
	return t.Record(ctx, id, models.StatusError, message, StatusPtr(models.StatusError))
}

// MarkBuilt records a successful build and where its export was stored.
func (t *Tracker) MarkBuilt(ctx context.Context, id, message, exportLocation string) (*models.Artifact, error) {
	return t.record(ctx, id, models.StatusSuccess, message, Patch{
		Status:         StatusPtr(models.StatusBuilt),
		ExportLocation: &exportLocation,
	})
}
