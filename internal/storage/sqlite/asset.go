package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

func (tx *sqliteTx) CreateAsset(ctx context.Context, a *types.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Channel == "" {
		a.Channel = types.SourceChannelManual
	}
	a.ReceivedAt = now()
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO assets (id, project_id, type, original_name, storage_path, size_bytes, content_hash, received_at, channel)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, a.Type, a.OriginalName, a.StoragePath, a.SizeBytes, a.ContentHash, a.ReceivedAt, a.Channel,
	)
	return err
}

func (tx *sqliteTx) GetAsset(ctx context.Context, id string) (*types.Asset, error) {
	row := tx.q.QueryRowContext(ctx, `
		SELECT id, project_id, type, original_name, storage_path, size_bytes, content_hash, received_at, channel
		FROM assets WHERE id = ?`, id)
	return scanAsset(row)
}

func scanAsset(row *sql.Row) (*types.Asset, error) {
	var a types.Asset
	if err := row.Scan(&a.ID, &a.ProjectID, &a.Type, &a.OriginalName, &a.StoragePath, &a.SizeBytes, &a.ContentHash, &a.ReceivedAt, &a.Channel); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStorage) CreateAsset(ctx context.Context, a *types.Asset) error {
	return s.withQ().CreateAsset(ctx, a)
}
func (s *SQLiteStorage) GetAsset(ctx context.Context, id string) (*types.Asset, error) {
	return s.withQ().GetAsset(ctx, id)
}

func (s *SQLiteStorage) ListAssetsByProject(ctx context.Context, projectID string) ([]*types.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, type, original_name, storage_path, size_bytes, content_hash, received_at, channel
		FROM assets WHERE project_id = ? ORDER BY received_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.Asset
	for rows.Next() {
		var a types.Asset
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Type, &a.OriginalName, &a.StoragePath, &a.SizeBytes, &a.ContentHash, &a.ReceivedAt, &a.Channel); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
