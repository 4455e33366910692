package sqlite

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/types"
)

// ReplaceQAFlags deletes every existing flag for (segment, target locale)
// and inserts the given set, in one statement group; the job orchestrator
// calls this after every pipeline pass over a segment regardless of whether
// any issues were found.
func (tx *sqliteTx) ReplaceQAFlags(ctx context.Context, segmentID, targetLocale string, flags []*types.QAFlag) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM qa_flags WHERE segment_id = ? AND target_locale = ?`, segmentID, targetLocale); err != nil {
		return err
	}
	ts := now()
	for _, f := range flags {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.SpanJSON == "" {
			f.SpanJSON = "{}"
		}
		f.SegmentID = segmentID
		f.TargetLocale = targetLocale
		f.CreatedAt = ts
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO qa_flags (id, segment_id, target_locale, type, severity, message, span_json, created_at, resolved_at, resolved_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.SegmentID, f.TargetLocale, f.Type, f.Severity, f.Message, f.SpanJSON, f.CreatedAt, f.ResolvedAt, f.ResolvedBy,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (tx *sqliteTx) ListQAFlags(ctx context.Context, segmentID, targetLocale string) ([]*types.QAFlag, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT id, segment_id, target_locale, type, severity, message, span_json, created_at, resolved_at, resolved_by
		FROM qa_flags WHERE segment_id = ? AND target_locale = ? ORDER BY created_at ASC, id ASC`, segmentID, targetLocale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.QAFlag
	for rows.Next() {
		var f types.QAFlag
		if err := rows.Scan(&f.ID, &f.SegmentID, &f.TargetLocale, &f.Type, &f.Severity, &f.Message, &f.SpanJSON, &f.CreatedAt, &f.ResolvedAt, &f.ResolvedBy); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (tx *sqliteTx) DeleteQAFlagsOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.QAFlagType) error {
	if len(types_) == 0 {
		return nil
	}
	placeholders := make([]string, len(types_))
	args := make([]any, 0, len(types_)+2)
	args = append(args, segmentID, targetLocale)
	for i, t := range types_ {
		placeholders[i] = "?"
		args = append(args, t)
	}
	q := `DELETE FROM qa_flags WHERE segment_id = ? AND target_locale = ? AND type IN (` + strings.Join(placeholders, ",") + `)`
	_, err := tx.q.ExecContext(ctx, q, args...)
	return err
}

func (s *SQLiteStorage) ReplaceQAFlags(ctx context.Context, segmentID, targetLocale string, flags []*types.QAFlag) error {
	return s.withQ().ReplaceQAFlags(ctx, segmentID, targetLocale, flags)
}
func (s *SQLiteStorage) ListQAFlags(ctx context.Context, segmentID, targetLocale string) ([]*types.QAFlag, error) {
	return s.withQ().ListQAFlags(ctx, segmentID, targetLocale)
}
func (s *SQLiteStorage) DeleteQAFlagsOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.QAFlagType) error {
	return s.withQ().DeleteQAFlagsOfTypes(ctx, segmentID, targetLocale, types_)
}
