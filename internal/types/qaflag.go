package types

import "time"

// QAFlagType is a stable identifier for a kind of QA issue.
type QAFlagType string

const (
	QAPlaceholderMismatch QAFlagType = "placeholder_mismatch"
	QANewlineMismatch     QAFlagType = "newline_mismatch"
	QAGlossaryViolation   QAFlagType = "glossary_violation"
	QAStaleSourceChange   QAFlagType = "stale_source_change"
	QAImpactFlagged       QAFlagType = "impact_flagged"
)

// QASeverity distinguishes issues that block shipping from advisory ones.
type QASeverity string

const (
	SeverityWarn  QASeverity = "warn"
	SeverityError QASeverity = "error"
)

// QAFlag is a structured, persisted issue against a (segment, locale).
// QAFlags are not errors: the pipeline always writes a candidate regardless
// of which flags are raised, and the operator decides what to do with them.
type QAFlag struct {
	ID           string
	SegmentID    string
	TargetLocale string
	Type         QAFlagType
	Severity     QASeverity
	Message      string
	SpanJSON     string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
	ResolvedBy   *string
}
