// Package glossary implements the must-use glossary engine: term loading
// with project/global merge, non-overlapping matching (whole-token,
// compound, exact), negative-pattern exclusion, and lock-token enforcement.
package glossary

import (
	"context"
	"sort"

	"golang.org/x/text/cases"

	"github.com/localcat/transtable/internal/types"
)

// caseFold applies full Unicode case folding, which is what "case-folded
// source" ordering means here: unlike strings.ToLower it folds pairs like
// ß/ss and İ/i̇ consistently, which matters for German-heavy glossaries.
func caseFold(s string) string {
	return cases.Fold().String(s)
}

// Store is the subset of storage.Transaction/Storage the glossary engine
// needs to load terms.
type Store interface {
	ListGlossaryTerms(ctx context.Context, projectID, locale string) ([]*types.GlossaryTerm, error)
}

// Load returns the must-use terms for (project, locale): global-sentinel
// terms first (when includeGlobal is set, per the project's
// global_game_glossary_enabled config flag), then project-specific terms
// overlaid on top (project wins on collision by source term), ordered by
// descending source-term length, then case-folded source, then id.
func Load(ctx context.Context, store Store, projectID, locale string, includeGlobal bool) ([]*types.GlossaryTerm, error) {
	var global []*types.GlossaryTerm
	if includeGlobal {
		var err error
		global, err = store.ListGlossaryTerms(ctx, types.GlobalProjectID, locale)
		if err != nil {
			return nil, err
		}
	}
	project, err := store.ListGlossaryTerms(ctx, projectID, locale)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*types.GlossaryTerm)
	for _, t := range global {
		if t.ProjectID == types.GlobalProjectID {
			merged[t.SourceTerm] = t
		}
	}
	for _, t := range project {
		if t.ProjectID == projectID {
			merged[t.SourceTerm] = t
		}
	}

	out := make([]*types.GlossaryTerm, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a.SourceTerm) != len(b.SourceTerm) {
			return len(a.SourceTerm) > len(b.SourceTerm)
		}
		af, bf := caseFold(a.SourceTerm), caseFold(b.SourceTerm)
		if af != bf {
			return af < bf
		}
		return a.ID < b.ID
	})
	return out, nil
}
