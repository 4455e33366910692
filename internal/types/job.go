package types

import "time"

// JobType selects which per-segment pipeline variant a Job runs.
type JobType string

const (
	JobMockTranslate    JobType = "mock_translate"
	JobChangeVariantA   JobType = "change_variant_a"
	JobChangeVariantB   JobType = "change_variant_b"
)

// JobStatus is the lifecycle state of a Job: queued -> running -> done|failed.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one orchestrator run over an asset's segments. DecisionTraceJSON
// always carries selected_asset_id and mapping_signature. Both change-variant
// jobs add final summary_counts and only change_variant_b records
// rules_used; a mock_translate trace carries neither.
type Job struct {
	ID                string
	ProjectID         string
	AssetID           *string
	Type              JobType
	TargetsJSON       string
	Status            JobStatus
	QueuedAt          time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	Summary           string
	DecisionTraceJSON string
}
