// Package postgres is the durable artifact registry.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"praticai/internal/artifact"
	"praticai/internal/forms/models"
	"praticai/pkg/platform/sentinel"
	"praticai/pkg/requestcontext"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id          UUID PRIMARY KEY,
	form_type   TEXT NOT NULL,
	path        TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS artifacts_created_at_idx ON artifacts (created_at);
`

// Store persists artifacts in the artifacts table. Rows older than ttl are
// treated as absent.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// New creates a PostgreSQL-backed registry. A zero ttl never hides rows.
func New(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// EnsureSchema creates the artifacts table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure artifacts schema: %w", err)
	}
	return nil
}

func (s *Store) Register(ctx context.Context, a artifact.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, form_type, path, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET form_type = EXCLUDED.form_type,
			path = EXCLUDED.path,
			file_name = EXCLUDED.file_name,
			created_at = EXCLUDED.created_at`,
		a.ID, string(a.FormType), a.Path, a.FileName, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("register artifact: %w", err)
	}
	return nil
}

func (s *Store) Resolve(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	cutoff := time.Time{}
	if s.ttl > 0 {
		cutoff = requestcontext.Now(ctx).Add(-s.ttl)
	}

	var (
		a        artifact.Artifact
		formType string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, form_type, path, file_name, created_at
		FROM artifacts
		WHERE id = $1 AND created_at > $2`,
		id, cutoff,
	).Scan(&a.ID, &formType, &a.Path, &a.FileName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve artifact: %w", err)
	}
	a.FormType = models.FormType(formType)
	return &a, nil
}

func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

// DeleteBefore drops rows created before cutoff and reports how many went.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired artifacts: %w", err)
	}
	return res.RowsAffected()
}
