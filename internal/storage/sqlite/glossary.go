package sqlite

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/types"
)

// CreateGlossaryTerm inserts a must-use term for (project, locale). The
// project id may be the "global" sentinel, making the term a cross-project
// default that project-specific terms override on source-term collision.
func (tx *sqliteTx) CreateGlossaryTerm(ctx context.Context, t *types.GlossaryTerm) error {
	if t.MatchType == "" {
		t.MatchType = types.MatchWholeToken
	}
	if err := validateMatchType(t.MatchType); err != nil {
		return err
	}
	if t.CompoundStrategy == "" {
		t.CompoundStrategy = types.CompoundHyphenate
	}
	if err := validateCompoundStrategy(t.CompoundStrategy); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Rule == "" {
		t.Rule = types.GlossaryRuleMustUse
	}
	negJSON, err := json.Marshal(t.NegativePatterns)
	if err != nil {
		return err
	}
	_, err = tx.q.ExecContext(ctx, `
		INSERT INTO glossary_terms (id, project_id, locale, source_term, target_term, rule, match_type, case_sensitive, allow_compounds, compound_strategy, negative_patterns_json, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Locale, t.SourceTerm, t.TargetTerm, t.Rule, t.MatchType, t.CaseSensitive, t.AllowCompounds, t.CompoundStrategy, string(negJSON), t.Notes,
	)
	return err
}

// ListGlossaryTerms loads must_use terms for (project, locale), first the
// global-sentinel set then the project-specific overlay; the merge-on-source-
// term-collision and final longest-first ordering is performed by the
// glossary package, which owns matching semantics.
func (tx *sqliteTx) ListGlossaryTerms(ctx context.Context, projectID, locale string) ([]*types.GlossaryTerm, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT id, project_id, locale, source_term, target_term, rule, match_type, case_sensitive, allow_compounds, compound_strategy, negative_patterns_json, notes
		FROM glossary_terms
		WHERE locale = ? AND (project_id = ? OR project_id = 'global')
		ORDER BY project_id = 'global' DESC, id ASC`, locale, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.GlossaryTerm
	for rows.Next() {
		var t types.GlossaryTerm
		var caseSensitive, allowCompounds int
		var negJSON string
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Locale, &t.SourceTerm, &t.TargetTerm, &t.Rule, &t.MatchType, &caseSensitive, &allowCompounds, &t.CompoundStrategy, &negJSON, &t.Notes); err != nil {
			return nil, err
		}
		t.CaseSensitive = caseSensitive != 0
		t.AllowCompounds = allowCompounds != 0
		if err := json.Unmarshal([]byte(negJSON), &t.NegativePatterns); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) CreateGlossaryTerm(ctx context.Context, t *types.GlossaryTerm) error {
	return s.withQ().CreateGlossaryTerm(ctx, t)
}
func (s *SQLiteStorage) ListGlossaryTerms(ctx context.Context, projectID, locale string) ([]*types.GlossaryTerm, error) {
	return s.withQ().ListGlossaryTerms(ctx, projectID, locale)
}
