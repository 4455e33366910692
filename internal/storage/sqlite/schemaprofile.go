package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// UpsertSchemaProfile is keyed by (project, signature). The
// operator-confirmed flag is preserved as max(existing, new) rather than
// overwritten, so a prior confirmed mapping can never be silently demoted
// back to unconfirmed.
func (tx *sqliteTx) UpsertSchemaProfile(ctx context.Context, p *types.SchemaProfile) error {
	existing, err := tx.GetSchemaProfile(ctx, p.ProjectID, p.Signature)
	ts := now()
	switch {
	case err == storage.ErrNotFound:
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt, p.UpdatedAt = ts, ts
		_, execErr := tx.q.ExecContext(ctx, `
			INSERT INTO schema_profiles (id, project_id, signature, mapping_json, confidence, confirmed_by_user, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ProjectID, p.Signature, p.MappingJSON, p.Confidence, p.ConfirmedByUser, ts, ts,
		)
		return execErr
	case err != nil:
		return err
	default:
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = ts
		p.ConfirmedByUser = existing.ConfirmedByUser || p.ConfirmedByUser
		_, execErr := tx.q.ExecContext(ctx, `
			UPDATE schema_profiles SET mapping_json = ?, confidence = ?, confirmed_by_user = ?, updated_at = ?
			WHERE id = ?`,
			p.MappingJSON, p.Confidence, p.ConfirmedByUser, ts, p.ID,
		)
		return execErr
	}
}

func (tx *sqliteTx) GetSchemaProfile(ctx context.Context, projectID, signature string) (*types.SchemaProfile, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, project_id, signature, mapping_json, confidence, confirmed_by_user, created_at, updated_at
		FROM schema_profiles WHERE project_id = ? AND signature = ?`, projectID, signature)
	return scanSchemaProfile(row)
}

func scanSchemaProfile(row *sql.Row) (*types.SchemaProfile, error) {
	var p types.SchemaProfile
	var confirmed int
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Signature, &p.MappingJSON, &p.Confidence, &confirmed, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	p.ConfirmedByUser = confirmed != 0
	return &p, nil
}

func (s *SQLiteStorage) UpsertSchemaProfile(ctx context.Context, p *types.SchemaProfile) error {
	return s.withQ().UpsertSchemaProfile(ctx, p)
}
func (s *SQLiteStorage) GetSchemaProfile(ctx context.Context, projectID, signature string) (*types.SchemaProfile, error) {
	return s.withQ().GetSchemaProfile(ctx, projectID, signature)
}

func (tx *sqliteTx) LatestSchemaProfile(ctx context.Context, projectID string) (*types.SchemaProfile, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, project_id, signature, mapping_json, confidence, confirmed_by_user, created_at, updated_at
		FROM schema_profiles WHERE project_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`, projectID)
	return scanSchemaProfile(row)
}

// LatestSchemaProfile returns the most-recently-updated schema profile for
// a project, used by the job orchestrator to seed a decision trace's
// mapping_signature when a job isn't tied to one specific import.
func (s *SQLiteStorage) LatestSchemaProfile(ctx context.Context, projectID string) (*types.SchemaProfile, error) {
	return s.withQ().LatestSchemaProfile(ctx, projectID)
}

func (tx *sqliteTx) ListSchemaProfilesByProject(ctx context.Context, projectID string) ([]*types.SchemaProfile, error) {
	rows, err := tx.q.QueryContext(ctx, `
		SELECT id, project_id, signature, mapping_json, confidence, confirmed_by_user, created_at, updated_at
		FROM schema_profiles WHERE project_id = ? ORDER BY updated_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*types.SchemaProfile
	for rows.Next() {
		var p types.SchemaProfile
		var confirmed int
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Signature, &p.MappingJSON, &p.Confidence, &confirmed, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.ConfirmedByUser = confirmed != 0
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// ListSchemaProfilesByProject returns every schema profile recorded for a
// project, used by the workbook-copy exporter to resolve which sheet an
// xlsx asset's columns live in without re-deriving it from the import.
func (s *SQLiteStorage) ListSchemaProfilesByProject(ctx context.Context, projectID string) ([]*types.SchemaProfile, error) {
	return s.withQ().ListSchemaProfilesByProject(ctx, projectID)
}
