// internal/common/artifacts/postgres.go
package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lex-build-workers/internal/models"
)

var _ Repository = (*PostgresRepository)(nil)

const selectArtifact = `SELECT id, bot_id, locale, version, status, status_messages,
	bundle_location, export_location, notify_email, updated_at
	FROM bot_artifacts WHERE id = $1`

// PostgresRepository stores artifacts in a bot_artifacts table; the status
// log is a JSONB column.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Artifact, error) {
	row := r.db.QueryRowContext(ctx, selectArtifact, id)
	return scanArtifact(row)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch) (*models.Artifact, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{r.now().UTC()}

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.StatusMessages != nil {
		body, err := json.Marshal(patch.StatusMessages)
		if err != nil {
			return nil, fmt.Errorf("encode status messages: %w", err)
		}
		args = append(args, body)
		sets = append(sets, fmt.Sprintf("status_messages = $%d", len(args)))
	}
	if patch.ExportLocation != nil {
		args = append(args, *patch.ExportLocation)
		sets = append(sets, fmt.Sprintf("export_location = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE bot_artifacts SET %s WHERE id = $%d
	RETURNING id, bot_id, locale, version, status, status_messages,
	bundle_location, export_location, notify_email, updated_at`, strings.Join(sets, ", "), len(args))

	row := r.db.QueryRowContext(ctx, query, args...)
	return scanArtifact(row)
}

func scanArtifact(row *sql.Row) (*models.Artifact, error) {
	var (
		a                              models.Artifact
		status                         string
		messages                       []byte
		bundle, export, email, version sql.NullString
	)
	err := row.Scan(&a.ID, &a.BotID, &a.Locale, &version, &status, &messages, &bundle, &export, &email, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan artifact: %w", err)
	}
	a.Status = models.ArtifactStatus(status)
	a.Version = version.String
	a.BundleLocation = bundle.String
	a.ExportLocation = export.String
	a.NotifyEmail = email.String
	a.StatusMessages = []models.StatusMessage{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &a.StatusMessages); err != nil {
			return nil, fmt.Errorf("decode status messages: %w", err)
		}
	}
	return &a, nil
}
