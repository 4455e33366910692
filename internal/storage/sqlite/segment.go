package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

func (tx *sqliteTx) CreateSegment(ctx context.Context, s *types.Segment) error {
	if err := validateSourceText(s.SourceText, s.Key); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ContextJSON == "" {
		s.ContextJSON = "{}"
	}
	if s.PlaceholdersJSON == "" {
		s.PlaceholdersJSON = "[]"
	}
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO segments (id, asset_id, sheet_name, row_index, key, source_locale, source_text, source_text_old, char_limit, cn_text, context_json, placeholders_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AssetID, s.SheetName, s.RowIndex, s.Key, s.SourceLocale, s.SourceText, s.SourceTextOld, s.CharLimit, s.CNText, s.ContextJSON, s.PlaceholdersJSON,
	)
	return err
}

func (tx *sqliteTx) GetSegment(ctx context.Context, id string) (*types.Segment, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, asset_id, sheet_name, row_index, key, source_locale, source_text, source_text_old, char_limit, cn_text, context_json, placeholders_json
		FROM segments WHERE id = ?`, id)
	return scanSegment(row)
}

func scanSegment(row *sql.Row) (*types.Segment, error) {
	var s types.Segment
	if err := row.Scan(&s.ID, &s.AssetID, &s.SheetName, &s.RowIndex, &s.Key, &s.SourceLocale, &s.SourceText, &s.SourceTextOld, &s.CharLimit, &s.CNText, &s.ContextJSON, &s.PlaceholdersJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (tx *sqliteTx) UpdateSegmentPlaceholders(ctx context.Context, segmentID, placeholdersJSON string) error {
	_, err := tx.q.ExecContext(ctx, `UPDATE segments SET placeholders_json = ? WHERE id = ?`, placeholdersJSON, segmentID)
	return err
}

func (tx *sqliteTx) ListSegmentsByAsset(ctx context.Context, assetID string) ([]*types.Segment, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT id, asset_id, sheet_name, row_index, key, source_locale, source_text, source_text_old, char_limit, cn_text, context_json, placeholders_json
		FROM segments WHERE asset_id = ? ORDER BY row_index ASC, id ASC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSegments(rows)
}

func scanSegments(rows *sql.Rows) ([]*types.Segment, error) {
	var out []*types.Segment
	for rows.Next() {
		var s types.Segment
		if err := rows.Scan(&s.ID, &s.AssetID, &s.SheetName, &s.RowIndex, &s.Key, &s.SourceLocale, &s.SourceText, &s.SourceTextOld, &s.CharLimit, &s.CNText, &s.ContextJSON, &s.PlaceholdersJSON); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) CreateSegment(ctx context.Context, seg *types.Segment) error {
	return s.withQ().CreateSegment(ctx, seg)
}
func (s *SQLiteStorage) GetSegment(ctx context.Context, id string) (*types.Segment, error) {
	return s.withQ().GetSegment(ctx, id)
}
func (s *SQLiteStorage) UpdateSegmentPlaceholders(ctx context.Context, segmentID, placeholdersJSON string) error {
	return s.withQ().UpdateSegmentPlaceholders(ctx, segmentID, placeholdersJSON)
}
func (s *SQLiteStorage) ListSegmentsByAsset(ctx context.Context, assetID string) ([]*types.Segment, error) {
	return s.withQ().ListSegmentsByAsset(ctx, assetID)
}

// SegmentsNeedingChangeReview returns every segment of the asset whose
// source_text_old is non-null, ordered by (row_index, id): the working set
// for both change-variant jobs. It does not compare the old and new text;
// the callers skip or clean up rows that are equal after trimming.
func (tx *sqliteTx) SegmentsNeedingChangeReview(ctx context.Context, assetID string) ([]*types.Segment, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT id, asset_id, sheet_name, row_index, key, source_locale, source_text, source_text_old, char_limit, cn_text, context_json, placeholders_json
		FROM segments
		WHERE asset_id = ? AND source_text_old IS NOT NULL
		ORDER BY row_index ASC, id ASC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSegments(rows)
}

func (s *SQLiteStorage) SegmentsNeedingChangeReview(ctx context.Context, assetID string) ([]*types.Segment, error) {
	return s.withQ().SegmentsNeedingChangeReview(ctx, assetID)
}
