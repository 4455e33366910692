package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

func (tx *sqliteTx) CreateProject(ctx context.Context, p *types.Project) error {
	if err := validateSlug(p.Slug); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	localesJSON, err := json.Marshal(p.EnabledLocales)
	if err != nil {
		return err
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	_, err = tx.q.ExecContext(ctx, `
		INSERT INTO projects (id, name, slug, default_source_locale, default_target_locale, enabled_locales_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.DefaultSourceLocale, p.DefaultTargetLocale, string(localesJSON), ts, ts,
	)
	return err
}

func (tx *sqliteTx) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, name, slug, default_source_locale, default_target_locale, enabled_locales_json, created_at, updated_at
		FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*types.Project, error) {
	var p types.Project
	var localesJSON string
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.DefaultSourceLocale, &p.DefaultTargetLocale, &localesJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(localesJSON), &p.EnabledLocales); err != nil {
		return nil, fmt.Errorf("decode enabled_locales_json: %w", err)
	}
	return &p, nil
}

func (tx *sqliteTx) SetEnabledLocales(ctx context.Context, projectID string, locales []string) error {
	localesJSON, err := json.Marshal(locales)
	if err != nil {
		return err
	}
	_, err = tx.q.ExecContext(ctx, `UPDATE projects SET enabled_locales_json = ?, updated_at = ? WHERE id = ?`,
		string(localesJSON), now(), projectID)
	return err
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, p *types.Project) error {
	return s.withQ().CreateProject(ctx, p)
}
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	return s.withQ().GetProject(ctx, id)
}
func (s *SQLiteStorage) SetEnabledLocales(ctx context.Context, projectID string, locales []string) error {
	return s.withQ().SetEnabledLocales(ctx, projectID, locales)
}
