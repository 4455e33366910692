package types

import "time"

// CandidateType identifies the origin of a TranslationCandidate. At most one
// row of a given type exists per (segment, target locale); a newer generation
// replaces the older row of the same type in place.
type CandidateType string

const (
	CandidateExistingTarget     CandidateType = "existing_target"
	CandidateTMExact            CandidateType = "tm_exact"
	CandidateTMFuzzy            CandidateType = "tm_fuzzy"
	CandidateLLMDraft           CandidateType = "llm_draft"
	CandidateLLMReviewed        CandidateType = "llm_reviewed"
	CandidateEdited             CandidateType = "edited"
	CandidateChangeProposed     CandidateType = "change_proposed"
	CandidateChangeFlagProposed CandidateType = "change_flagged_proposed"
	CandidateMock               CandidateType = "mock"
)

// TranslationCandidate is a proposed target-language rendering of a Segment,
// typed by origin. ModelInfoJSON is a schema-less string->scalar bag:
// provider/model/risk_score for generated drafts, match kind for TM hits,
// and change_decision/change_confidence/change_reason for change proposals.
type TranslationCandidate struct {
	ID            string
	SegmentID     string
	TargetLocale  string
	Text          string
	Type          CandidateType
	Score         float64
	ModelInfoJSON string
	GeneratedAt   time.Time
}
