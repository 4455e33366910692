package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// UpsertTMEntry is keyed by (project, source locale, target locale,
// normalized hash). A new row gets zero use count and fresh timestamps; an
// existing row updates source/target text, origin, quality and updated_at.
// The FTS mirror row is deleted and reinserted afterwards so the two never
// drift.
func (tx *sqliteTx) UpsertTMEntry(ctx context.Context, e *types.TMEntry) (*types.TMEntry, error) {
	existing, err := tx.FindTMExact(ctx, e.ProjectID, e.SourceLocale, e.TargetLocale, e.NormalizedHash)
	ts := now()
	switch {
	case err == storage.ErrNotFound:
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.CreatedAt, e.UpdatedAt = ts, ts
		e.UseCount = 0
		if e.Quality == "" {
			e.Quality = types.TMQualityUnrated
		}
		_, execErr := tx.q.ExecContext(ctx, `
			INSERT INTO tm_entries (id, project_id, source_locale, target_locale, source_text, target_text, normalized_hash, origin, origin_asset_id, origin_row_ref, created_at, updated_at, use_count, last_used_at, quality)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?)`,
			e.ID, e.ProjectID, e.SourceLocale, e.TargetLocale, e.SourceText, e.TargetText, e.NormalizedHash, e.Origin, e.OriginAssetID, e.OriginRowRef, ts, ts, e.Quality,
		)
		if execErr != nil {
			return nil, execErr
		}
	case err != nil:
		return nil, err
	default:
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
		e.UseCount = existing.UseCount
		e.LastUsedAt = existing.LastUsedAt
		e.UpdatedAt = ts
		_, execErr := tx.q.ExecContext(ctx, `
			UPDATE tm_entries SET source_text = ?, target_text = ?, origin = ?, quality = ?, updated_at = ?
			WHERE id = ?`,
			e.SourceText, e.TargetText, e.Origin, e.Quality, ts, e.ID,
		)
		if execErr != nil {
			return nil, execErr
		}
	}

	if _, err := tx.q.ExecContext(ctx, `DELETE FROM tm_fts WHERE tm_id = ?`, e.ID); err != nil {
		return nil, err
	}
	if _, err := tx.q.ExecContext(ctx, `
		INSERT INTO tm_fts (tm_id, project_id, source_locale, target_locale, source_text, target_text)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.SourceLocale, e.TargetLocale, e.SourceText, e.TargetText,
	); err != nil {
		return nil, err
	}

	return e, nil
}

func (tx *sqliteTx) FindTMExact(ctx context.Context, projectID, sourceLocale, targetLocale, normalizedHash string) (*types.TMEntry, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, project_id, source_locale, target_locale, source_text, target_text, normalized_hash, origin, origin_asset_id, origin_row_ref, created_at, updated_at, use_count, last_used_at, quality
		FROM tm_entries
		WHERE project_id = ? AND source_locale = ? AND target_locale = ? AND normalized_hash = ?
		ORDER BY updated_at DESC LIMIT 1`,
		projectID, sourceLocale, targetLocale, normalizedHash)
	return scanTMEntry(row)
}

func scanTMEntry(row *sql.Row) (*types.TMEntry, error) {
	var e types.TMEntry
	if err := row.Scan(&e.ID, &e.ProjectID, &e.SourceLocale, &e.TargetLocale, &e.SourceText, &e.TargetText, &e.NormalizedHash, &e.Origin, &e.OriginAssetID, &e.OriginRowRef, &e.CreatedAt, &e.UpdatedAt, &e.UseCount, &e.LastUsedAt, &e.Quality); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// SearchTMFuzzyCandidates runs the sanitized FTS query against tm_fts scoped
// to (project, source locale, target locale) and returns the raw candidate
// pool, ranked by FTS relevance; re-ranking by token-set similarity happens
// in the tm package, which owns the query-sanitization and scoring logic.
func (tx *sqliteTx) SearchTMFuzzyCandidates(ctx context.Context, projectID, sourceLocale, targetLocale, ftsQuery string, limit int) ([]*types.TMEntry, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT e.id, e.project_id, e.source_locale, e.target_locale, e.source_text, e.target_text, e.normalized_hash, e.origin, e.origin_asset_id, e.origin_row_ref, e.created_at, e.updated_at, e.use_count, e.last_used_at, e.quality
		FROM tm_fts f
		JOIN tm_entries e ON e.id = f.tm_id
		WHERE f.tm_fts MATCH ? AND f.project_id = ? AND f.source_locale = ? AND f.target_locale = ?
		ORDER BY rank
		LIMIT ?`,
		ftsQuery, projectID, sourceLocale, targetLocale, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.TMEntry
	for rows.Next() {
		var e types.TMEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.SourceLocale, &e.TargetLocale, &e.SourceText, &e.TargetText, &e.NormalizedHash, &e.Origin, &e.OriginAssetID, &e.OriginRowRef, &e.CreatedAt, &e.UpdatedAt, &e.UseCount, &e.LastUsedAt, &e.Quality); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (tx *sqliteTx) BumpTMUsage(ctx context.Context, tmID string) error {
	_, err := tx.q.ExecContext(ctx, `UPDATE tm_entries SET use_count = use_count + 1, last_used_at = ? WHERE id = ?`, now(), tmID)
	return err
}

func (s *SQLiteStorage) UpsertTMEntry(ctx context.Context, e *types.TMEntry) (*types.TMEntry, error) {
	return s.withQ().UpsertTMEntry(ctx, e)
}
func (s *SQLiteStorage) FindTMExact(ctx context.Context, projectID, sourceLocale, targetLocale, normalizedHash string) (*types.TMEntry, error) {
	return s.withQ().FindTMExact(ctx, projectID, sourceLocale, targetLocale, normalizedHash)
}
func (s *SQLiteStorage) SearchTMFuzzyCandidates(ctx context.Context, projectID, sourceLocale, targetLocale, ftsQuery string, limit int) ([]*types.TMEntry, error) {
	return s.withQ().SearchTMFuzzyCandidates(ctx, projectID, sourceLocale, targetLocale, ftsQuery, limit)
}
func (s *SQLiteStorage) BumpTMUsage(ctx context.Context, tmID string) error {
	return s.withQ().BumpTMUsage(ctx, tmID)
}
