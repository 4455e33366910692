// Package storage tests for interface compliance and contract verification.
package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/localcat/transtable/internal/types"
)

// Compile-time interface conformance checks.
var (
	_ Storage     = (*mockStorage)(nil)
	_ Transaction = (*mockTransaction)(nil)
)

// mockTransaction is a minimal mock for Transaction interface testing.
type mockTransaction struct{}

func (m *mockTransaction) CreateProject(ctx context.Context, p *types.Project) error { return nil }
func (m *mockTransaction) GetProject(ctx context.Context, id string) (*types.Project, error) {
	return nil, nil
}
func (m *mockTransaction) SetEnabledLocales(ctx context.Context, projectID string, locales []string) error {
	return nil
}
func (m *mockTransaction) CreateAsset(ctx context.Context, a *types.Asset) error { return nil }
func (m *mockTransaction) GetAsset(ctx context.Context, id string) (*types.Asset, error) {
	return nil, nil
}
func (m *mockTransaction) CreateSegment(ctx context.Context, s *types.Segment) error { return nil }
func (m *mockTransaction) GetSegment(ctx context.Context, id string) (*types.Segment, error) {
	return nil, nil
}
func (m *mockTransaction) UpdateSegmentPlaceholders(ctx context.Context, segmentID, placeholdersJSON string) error {
	return nil
}
func (m *mockTransaction) ListSegmentsByAsset(ctx context.Context, assetID string) ([]*types.Segment, error) {
	return nil, nil
}
func (m *mockTransaction) SegmentsNeedingChangeReview(ctx context.Context, assetID string) ([]*types.Segment, error) {
	return nil, nil
}
func (m *mockTransaction) UpsertCandidate(ctx context.Context, c *types.TranslationCandidate) error {
	return nil
}
func (m *mockTransaction) LatestCandidate(ctx context.Context, segmentID, targetLocale string) (*types.TranslationCandidate, error) {
	return nil, nil
}
func (m *mockTransaction) CandidateOfType(ctx context.Context, segmentID, targetLocale string, t types.CandidateType) (*types.TranslationCandidate, error) {
	return nil, nil
}
func (m *mockTransaction) DeleteCandidatesOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.CandidateType) error {
	return nil
}
func (m *mockTransaction) UpsertApproval(ctx context.Context, a *types.ApprovedTranslation) error {
	return nil
}
func (m *mockTransaction) GetApproval(ctx context.Context, segmentID, targetLocale string) (*types.ApprovedTranslation, error) {
	return nil, nil
}
func (m *mockTransaction) UpsertTMEntry(ctx context.Context, e *types.TMEntry) (*types.TMEntry, error) {
	return nil, nil
}
func (m *mockTransaction) FindTMExact(ctx context.Context, projectID, sourceLocale, targetLocale, normalizedHash string) (*types.TMEntry, error) {
	return nil, nil
}
func (m *mockTransaction) SearchTMFuzzyCandidates(ctx context.Context, projectID, sourceLocale, targetLocale, ftsQuery string, limit int) ([]*types.TMEntry, error) {
	return nil, nil
}
func (m *mockTransaction) BumpTMUsage(ctx context.Context, tmID string) error { return nil }
func (m *mockTransaction) CreateGlossaryTerm(ctx context.Context, t *types.GlossaryTerm) error {
	return nil
}
func (m *mockTransaction) ListGlossaryTerms(ctx context.Context, projectID, locale string) ([]*types.GlossaryTerm, error) {
	return nil, nil
}
func (m *mockTransaction) ReplaceQAFlags(ctx context.Context, segmentID, targetLocale string, flags []*types.QAFlag) error {
	return nil
}
func (m *mockTransaction) ListQAFlags(ctx context.Context, segmentID, targetLocale string) ([]*types.QAFlag, error) {
	return nil, nil
}
func (m *mockTransaction) DeleteQAFlagsOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.QAFlagType) error {
	return nil
}
func (m *mockTransaction) UpsertSchemaProfile(ctx context.Context, p *types.SchemaProfile) error {
	return nil
}
func (m *mockTransaction) GetSchemaProfile(ctx context.Context, projectID, signature string) (*types.SchemaProfile, error) {
	return nil, nil
}
func (m *mockTransaction) LatestSchemaProfile(ctx context.Context, projectID string) (*types.SchemaProfile, error) {
	return nil, nil
}
func (m *mockTransaction) ListSchemaProfilesByProject(ctx context.Context, projectID string) ([]*types.SchemaProfile, error) {
	return nil, nil
}
func (m *mockTransaction) CreateJob(ctx context.Context, j *types.Job) error { return nil }
func (m *mockTransaction) UpdateJobStatus(ctx context.Context, jobID string, status types.JobStatus, summary, decisionTraceJSON string) error {
	return nil
}

// mockStorage is a minimal mock for Storage interface testing; it embeds
// mockTransaction since Storage embeds Transaction.
type mockStorage struct {
	mockTransaction
}

func (m *mockStorage) ListAssetsByProject(ctx context.Context, projectID string) ([]*types.Asset, error) {
	return nil, nil
}
func (m *mockStorage) ListApprovedByAssetLocale(ctx context.Context, assetID, targetLocale string) ([]*types.ApprovedTranslation, error) {
	return nil, nil
}
func (m *mockStorage) SegmentsNeedingChangeReview(ctx context.Context, assetID string) ([]*types.Segment, error) {
	return nil, nil
}
func (m *mockStorage) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	return fn(&mockTransaction{})
}
func (m *mockStorage) Close() error { return nil }
func (m *mockStorage) Path() string { return "" }
func (m *mockStorage) UnderlyingDB() *sql.DB { return nil }
func (m *mockStorage) UnderlyingConn(ctx context.Context) (*sql.Conn, error) {
	return nil, nil
}

// TestConfig verifies the Config struct has expected fields.
func TestConfig(t *testing.T) {
	cfg := Config{
		Backend: "sqlite",
		Path:    "/tmp/test.db",
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("expected backend 'sqlite', got %q", cfg.Backend)
	}
	if cfg.Path != "/tmp/test.db" {
		t.Errorf("expected path '/tmp/test.db', got %q", cfg.Path)
	}
}

// TestInterfaceDocumentation verifies interface methods exist with expected
// signatures. This serves as documentation and catches accidental signature
// changes.
func TestInterfaceDocumentation(t *testing.T) {
	t.Run("Storage interface has expected method groups", func(t *testing.T) {
		var s Storage = &mockStorage{}

		_ = s.CreateProject
		_ = s.GetProject
		_ = s.SetEnabledLocales

		_ = s.CreateAsset
		_ = s.GetAsset
		_ = s.ListAssetsByProject

		_ = s.CreateSegment
		_ = s.GetSegment
		_ = s.ListSegmentsByAsset
		_ = s.UpdateSegmentPlaceholders
		_ = s.SegmentsNeedingChangeReview

		_ = s.UpsertCandidate
		_ = s.LatestCandidate
		_ = s.CandidateOfType
		_ = s.DeleteCandidatesOfTypes

		_ = s.UpsertApproval
		_ = s.GetApproval
		_ = s.ListApprovedByAssetLocale

		_ = s.UpsertTMEntry
		_ = s.FindTMExact
		_ = s.SearchTMFuzzyCandidates
		_ = s.BumpTMUsage

		_ = s.CreateGlossaryTerm
		_ = s.ListGlossaryTerms

		_ = s.ReplaceQAFlags
		_ = s.ListQAFlags
		_ = s.DeleteQAFlagsOfTypes

		_ = s.UpsertSchemaProfile
		_ = s.GetSchemaProfile
		_ = s.LatestSchemaProfile
		_ = s.ListSchemaProfilesByProject

		_ = s.CreateJob
		_ = s.UpdateJobStatus

		_ = s.RunInTransaction
		_ = s.Close
		_ = s.Path
		_ = s.UnderlyingDB
		_ = s.UnderlyingConn
	})

	t.Run("Transaction interface has expected methods", func(t *testing.T) {
		var tx Transaction = &mockTransaction{}

		_ = tx.CreateProject
		_ = tx.GetProject
		_ = tx.CreateAsset
		_ = tx.GetAsset
		_ = tx.CreateSegment
		_ = tx.ListSegmentsByAsset
		_ = tx.UpsertCandidate
		_ = tx.UpsertApproval
		_ = tx.GetApproval
		_ = tx.UpsertTMEntry
		_ = tx.FindTMExact
		_ = tx.ReplaceQAFlags
		_ = tx.UpsertSchemaProfile
		_ = tx.CreateJob
		_ = tx.UpdateJobStatus
	})

	t.Run("Storage.RunInTransaction hands the callback a Transaction", func(t *testing.T) {
		s := &mockStorage{}
		called := false
		if err := s.RunInTransaction(context.Background(), func(tx Transaction) error {
			called = true
			return nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatal("expected callback to run")
		}
	})
}
