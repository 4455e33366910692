package types

import "time"

// ApprovalStatus is the lifecycle state of an ApprovedTranslation. Only
// "approved" exists today; the field is kept distinct from a bare boolean so
// a future revocation state does not require a schema change.
type ApprovalStatus string

const ApprovalStatusApproved ApprovalStatus = "approved"

// ApprovedTranslation is the single authoritative target-language string for
// a (segment, locale) pair. Upsert semantics: at most one row per
// (segment, target locale).
type ApprovedTranslation struct {
	ID           string
	SegmentID    string
	TargetLocale string
	Text         string
	Status       ApprovalStatus
	Approver     *string
	ApprovedAt   time.Time
	RevisionOf   *string
	Pinned       bool
}
