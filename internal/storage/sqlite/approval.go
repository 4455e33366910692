package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// UpsertApproval is keyed by (segment, target locale): at most one row.
func (tx *sqliteTx) UpsertApproval(ctx context.Context, a *types.ApprovedTranslation) error {
	if err := validateApprovalText(a.Text); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = types.ApprovalStatusApproved
	}
	a.ApprovedAt = now()
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO approved_translations (id, segment_id, target_locale, text, status, approver, approved_at, revision_of, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id, target_locale) DO UPDATE SET
			text = excluded.text,
			status = excluded.status,
			approver = excluded.approver,
			approved_at = excluded.approved_at,
			revision_of = excluded.revision_of,
			pinned = excluded.pinned`,
		a.ID, a.SegmentID, a.TargetLocale, a.Text, a.Status, a.Approver, a.ApprovedAt, a.RevisionOf, a.Pinned,
	)
	return err
}

func (tx *sqliteTx) GetApproval(ctx context.Context, segmentID, targetLocale string) (*types.ApprovedTranslation, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, segment_id, target_locale, text, status, approver, approved_at, revision_of, pinned
		FROM approved_translations WHERE segment_id = ? AND target_locale = ?`, segmentID, targetLocale)
	return scanApproval(row)
}

func scanApproval(row *sql.Row) (*types.ApprovedTranslation, error) {
	var a types.ApprovedTranslation
	if err := row.Scan(&a.ID, &a.SegmentID, &a.TargetLocale, &a.Text, &a.Status, &a.Approver, &a.ApprovedAt, &a.RevisionOf, &a.Pinned); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStorage) UpsertApproval(ctx context.Context, a *types.ApprovedTranslation) error {
	return s.withQ().UpsertApproval(ctx, a)
}
func (s *SQLiteStorage) GetApproval(ctx context.Context, segmentID, targetLocale string) (*types.ApprovedTranslation, error) {
	return s.withQ().GetApproval(ctx, segmentID, targetLocale)
}

// ListApprovedByAssetLocale joins approved_translations to segments for a
// given (asset, locale): the query the patch exporter reads from.
func (s *SQLiteStorage) ListApprovedByAssetLocale(ctx context.Context, assetID, targetLocale string) ([]*types.ApprovedTranslation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.segment_id, a.target_locale, a.text, a.status, a.approver, a.approved_at, a.revision_of, a.pinned
		FROM approved_translations a
		JOIN segments s ON s.id = a.segment_id
		WHERE s.asset_id = ? AND a.target_locale = ?
		ORDER BY s.row_index ASC, s.id ASC`, assetID, targetLocale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.ApprovedTranslation
	for rows.Next() {
		var a types.ApprovedTranslation
		if err := rows.Scan(&a.ID, &a.SegmentID, &a.TargetLocale, &a.Text, &a.Status, &a.Approver, &a.ApprovedAt, &a.RevisionOf, &a.Pinned); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
