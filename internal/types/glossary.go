package types

// GlobalProjectID is the sentinel project id for cross-project default
// glossary terms; project-specific terms of the same source term win on
// collision when the two sets are merged.
const GlobalProjectID = "global"

// GlossaryRule is currently always "must_use"; kept as a distinct type so a
// future advisory-only rule doesn't require a schema change.
type GlossaryRule string

const GlossaryRuleMustUse GlossaryRule = "must_use"

// GlossaryMatchType selects how a term's SourceTerm is located in text.
type GlossaryMatchType string

const (
	MatchWholeToken   GlossaryMatchType = "whole_token"
	MatchWordBoundary GlossaryMatchType = "word_boundary"
	MatchExact        GlossaryMatchType = "exact"
)

// CompoundStrategy selects the replacement shape when a compound split point
// inside a longer token is matched under allow_compounds.
type CompoundStrategy string

const (
	CompoundHyphenate     CompoundStrategy = "hyphenate"
	CompoundReplacePrefix CompoundStrategy = "replace_prefix"
	CompoundKeepSource    CompoundStrategy = "keep_source"
)

// GlossaryTerm is a single must-use mapping for a (project, locale). Terms
// loaded for GlobalProjectID apply to every project unless overridden by a
// project-specific term with the same SourceTerm.
type GlossaryTerm struct {
	ID               string
	ProjectID        string
	Locale           string
	SourceTerm       string
	TargetTerm       string
	Rule             GlossaryRule
	MatchType        GlossaryMatchType
	CaseSensitive    bool
	AllowCompounds   bool
	CompoundStrategy CompoundStrategy
	NegativePatterns []string
	Notes            string
}
