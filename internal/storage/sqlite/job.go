package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/types"
)

func (tx *sqliteTx) CreateJob(ctx context.Context, j *types.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = types.JobQueued
	}
	if j.TargetsJSON == "" {
		j.TargetsJSON = "[]"
	}
	if j.DecisionTraceJSON == "" {
		j.DecisionTraceJSON = "{}"
	}
	j.QueuedAt = now()
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO jobs (id, project_id, asset_id, type, targets_json, status, queued_at, started_at, finished_at, summary, decision_trace_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		j.ID, j.ProjectID, j.AssetID, j.Type, j.TargetsJSON, j.Status, j.QueuedAt, j.Summary, j.DecisionTraceJSON,
	)
	return err
}

// UpdateJobStatus stamps started_at on the transition into running and
// finished_at on the transition into done or failed.
func (tx *sqliteTx) UpdateJobStatus(ctx context.Context, jobID string, status types.JobStatus, summary, decisionTraceJSON string) error {
	ts := now()
	switch status {
	case types.JobRunning:
		_, err := tx.q.ExecContext(ctx, `UPDATE jobs SET status = ?, started_at = ?, summary = ?, decision_trace_json = ? WHERE id = ?`,
			status, ts, summary, decisionTraceJSON, jobID)
		return err
	case types.JobDone, types.JobFailed:
		_, err := tx.q.ExecContext(ctx, `UPDATE jobs SET status = ?, finished_at = ?, summary = ?, decision_trace_json = ? WHERE id = ?`,
			status, ts, summary, decisionTraceJSON, jobID)
		return err
	default:
		_, err := tx.q.ExecContext(ctx, `UPDATE jobs SET status = ?, summary = ?, decision_trace_json = ? WHERE id = ?`,
			status, summary, decisionTraceJSON, jobID)
		return err
	}
}

func (s *SQLiteStorage) CreateJob(ctx context.Context, j *types.Job) error {
	return s.withQ().CreateJob(ctx, j)
}
func (s *SQLiteStorage) UpdateJobStatus(ctx context.Context, jobID string, status types.JobStatus, summary, decisionTraceJSON string) error {
	return s.withQ().UpdateJobStatus(ctx, jobID, status, summary, decisionTraceJSON)
}
