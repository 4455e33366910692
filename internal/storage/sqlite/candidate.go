package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// UpsertCandidate is keyed by (segment, target locale, type): the existing
// row of that type is updated in place, else a new row is inserted.
func (tx *sqliteTx) UpsertCandidate(ctx context.Context, c *types.TranslationCandidate) error {
	if err := validateCandidateScore(c.Score); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ModelInfoJSON == "" {
		c.ModelInfoJSON = "{}"
	}
	if c.GeneratedAt.IsZero() {
		c.GeneratedAt = now()
	}
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO translation_candidates (id, segment_id, target_locale, text, type, score, model_info_json, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id, target_locale, type) DO UPDATE SET
			text = excluded.text,
			score = excluded.score,
			model_info_json = excluded.model_info_json,
			generated_at = excluded.generated_at`,
		c.ID, c.SegmentID, c.TargetLocale, c.Text, c.Type, c.Score, c.ModelInfoJSON, c.GeneratedAt,
	)
	return err
}

func (tx *sqliteTx) CandidateOfType(ctx context.Context, segmentID, targetLocale string, t types.CandidateType) (*types.TranslationCandidate, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, segment_id, target_locale, text, type, score, model_info_json, generated_at
		FROM translation_candidates WHERE segment_id = ? AND target_locale = ? AND type = ?`,
		segmentID, targetLocale, t)
	return scanCandidate(row)
}

// LatestCandidate returns the candidate of any type most recently generated
// for (segment, target locale), ordered by (generated_at desc, id desc).
func (tx *sqliteTx) LatestCandidate(ctx context.Context, segmentID, targetLocale string) (*types.TranslationCandidate, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, segment_id, target_locale, text, type, score, model_info_json, generated_at
		FROM translation_candidates WHERE segment_id = ? AND target_locale = ?
		ORDER BY generated_at DESC, id DESC LIMIT 1`, segmentID, targetLocale)
	return scanCandidate(row)
}

func scanCandidate(row *sql.Row) (*types.TranslationCandidate, error) {
	var c types.TranslationCandidate
	if err := row.Scan(&c.ID, &c.SegmentID, &c.TargetLocale, &c.Text, &c.Type, &c.Score, &c.ModelInfoJSON, &c.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (tx *sqliteTx) DeleteCandidatesOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.CandidateType) error {
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
	q := `DELETE FROM translation_candidates WHERE segment_id = ? AND target_locale = ? AND type IN (` + strings.Join(placeholders, ",") + `)`
	_, err := tx.q.ExecContext(ctx, q, args...)
	return err
}

func (s *SQLiteStorage) UpsertCandidate(ctx context.Context, c *types.TranslationCandidate) error {
	return s.withQ().UpsertCandidate(ctx, c)
}
func (s *SQLiteStorage) LatestCandidate(ctx context.Context, segmentID, targetLocale string) (*types.TranslationCandidate, error) {
	return s.withQ().LatestCandidate(ctx, segmentID, targetLocale)
}
func (s *SQLiteStorage) CandidateOfType(ctx context.Context, segmentID, targetLocale string, t types.CandidateType) (*types.TranslationCandidate, error) {
	return s.withQ().CandidateOfType(ctx, segmentID, targetLocale, t)
}
func (s *SQLiteStorage) DeleteCandidatesOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.CandidateType) error {
	return s.withQ().DeleteCandidatesOfTypes(ctx, segmentID, targetLocale, types_)
}
