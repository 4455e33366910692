package sqlite

import (
	"fmt"
	"strings"

	"github.com/localcat/transtable/internal/types"
)

// validateSlug rejects the empty-after-derivation slug every Project
// requires.
func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("slug must be non-empty")
	}
	return nil
}

// validateSourceText rejects an empty-after-trim segment source unless the
// segment carries a key: keyed rows with no source act as placeholder rows
// and keep whatever review history they already have.
func validateSourceText(sourceText string, key *string) error {
	if strings.TrimSpace(sourceText) == "" && key == nil {
		return fmt.Errorf("segment source_text must be non-empty after trimming, or the segment must carry a key")
	}
	return nil
}

// validateApprovalText rejects an empty approved translation.
func validateApprovalText(text string) error {
	if text == "" {
		return fmt.Errorf("approval text must be non-empty")
	}
	return nil
}

// validateCandidateScore enforces the [0,1] range TranslationCandidate.Score
// is defined over.
func validateCandidateScore(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("candidate score must be within [0,1] (got %f)", score)
	}
	return nil
}

// validateMatchType rejects a GlossaryTerm with an unrecognized match type.
func validateMatchType(mt types.GlossaryMatchType) error {
	switch mt {
	case types.MatchWholeToken, types.MatchWordBoundary, types.MatchExact:
		return nil
	default:
		return fmt.Errorf("invalid glossary match type: %s", mt)
	}
}

// validateCompoundStrategy rejects a GlossaryTerm with an unrecognized
// compound strategy.
func validateCompoundStrategy(cs types.CompoundStrategy) error {
	switch cs {
	case types.CompoundHyphenate, types.CompoundReplacePrefix, types.CompoundKeepSource:
		return nil
	default:
		return fmt.Errorf("invalid compound strategy: %s", cs)
	}
}
