package sqlite

import (
	"context"
	"testing"

	"github.com/localcat/transtable/internal/types"
)

// testEnv bundles a fresh store with the context tests run against.
type testEnv struct {
	t     *testing.T
	Store *SQLiteStorage
	Ctx   context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{t: t, Store: newTestStore(t), Ctx: context.Background()}
}

// newTestStore opens a fresh on-disk database under t.TempDir(). A real file
// rather than ":memory:" is used so connection-pool behavior (relevant to
// RunInTransaction's use of a dedicated *sql.Conn) matches production.
func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(context.Background(), t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("failed to close test database: %v", err)
		}
	})
	return store
}

// CreateProject creates a project with default locales and fails the test on
// error.
func (e *testEnv) CreateProject(name, sourceLocale, targetLocale string) *types.Project {
	e.t.Helper()
	p := &types.Project{
		Name:                name,
		Slug:                types.Slugify(name),
		DefaultSourceLocale: sourceLocale,
		DefaultTargetLocale: targetLocale,
		EnabledLocales:      []string{targetLocale},
	}
	if err := e.Store.CreateProject(e.Ctx, p); err != nil {
		e.t.Fatalf("CreateProject(%q) failed: %v", name, err)
	}
	return p
}

// CreateAsset creates a minimal xlsx asset owned by p.
func (e *testEnv) CreateAsset(p *types.Project) *types.Asset {
	e.t.Helper()
	a := &types.Asset{
		ProjectID:    p.ID,
		Type:         types.AssetXLSX,
		OriginalName: "strings.xlsx",
	}
	if err := e.Store.CreateAsset(e.Ctx, a); err != nil {
		e.t.Fatalf("CreateAsset failed: %v", err)
	}
	return a
}

// CreateSegment creates a segment on asset a at the given row index.
func (e *testEnv) CreateSegment(a *types.Asset, rowIndex int, sourceLocale, sourceText string) *types.Segment {
	e.t.Helper()
	s := &types.Segment{
		AssetID:      a.ID,
		RowIndex:     rowIndex,
		SourceLocale: sourceLocale,
		SourceText:   sourceText,
	}
	if err := e.Store.CreateSegment(e.Ctx, s); err != nil {
		e.t.Fatalf("CreateSegment(row=%d) failed: %v", rowIndex, err)
	}
	return s
}
