package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/localcat/transtable/internal/storage/sqlite"
	"github.com/localcat/transtable/internal/types"
)

var exportNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type exportFixture struct {
	Store   *sqlite.SQLiteStorage
	Ctx     context.Context
	Project *types.Project
	Asset   *types.Asset
	// Segments indexed by row: row 2 approved, row 3 approved with cn text,
	// row 4 left unapproved.
	Segments []*types.Segment
}

func newExportFixture(t *testing.T, storagePath *string) *exportFixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "project.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	p := &types.Project{
		Name: "Demo Game", Slug: types.Slugify("Demo Game"),
		DefaultSourceLocale: "en-US", DefaultTargetLocale: "de-DE",
		EnabledLocales: []string{"de-DE"},
	}
	if err := store.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}

	asset := &types.Asset{ProjectID: p.ID, Type: types.AssetXLSX, OriginalName: "strings.xlsx", StoragePath: storagePath}
	if err := store.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	sheet := "Sheet1"
	cn := "你好"
	mk := func(row int, key, source string, cnText *string) *types.Segment {
		k := key
		seg := &types.Segment{
			AssetID: asset.ID, SheetName: &sheet, RowIndex: row, Key: &k,
			SourceLocale: "en-US", SourceText: source, CNText: cnText,
		}
		if err := store.CreateSegment(ctx, seg); err != nil {
			t.Fatalf("create segment row %d: %v", row, err)
		}
		return seg
	}
	segments := []*types.Segment{
		mk(2, "welcome", "Hello", nil),
		mk(3, "bye", "Goodbye", &cn),
		mk(4, "stay", "Stay", nil),
	}

	approve := func(seg *types.Segment, text string) {
		if err := store.UpsertApproval(ctx, &types.ApprovedTranslation{
			SegmentID: seg.ID, TargetLocale: "de-DE", Text: text,
		}); err != nil {
			t.Fatalf("approve row %d: %v", seg.RowIndex, err)
		}
	}
	approve(segments[0], "Hallo")
	approve(segments[1], "Tschüss")

	return &exportFixture{Store: store, Ctx: ctx, Project: p, Asset: asset, Segments: segments}
}

func TestPatchExportCSV(t *testing.T) {
	fix := newExportFixture(t, nil)
	exportsDir := t.TempDir()

	result, err := PatchExport(fix.Ctx, fix.Store, exportsDir, fix.Project.Slug, fix.Asset.ID, "de-DE", "csv", "patch", exportNow)
	if err != nil {
		t.Fatalf("PatchExport failed: %v", err)
	}
	if result.RowCount != 2 {
		t.Fatalf("expected 2 approved rows, got %d", result.RowCount)
	}

	base := filepath.Base(result.Path)
	if !strings.HasPrefix(base, "patch_demo-game_"+fix.Asset.ID[:8]+"_de-DE_") {
		t.Errorf("unexpected filename shape: %s", base)
	}
	if !strings.HasSuffix(base, "_20250314_092653.csv") {
		t.Errorf("unexpected timestamp fragment: %s", base)
	}

	f, err := os.Open(result.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}

	// One approved row carries cn text, so the cn_text column must be present.
	wantHeader := []string{"key", "source_text", "approved_target_text", "row_index", "sheet_name", "cn_text"}
	if strings.Join(records[0], "|") != strings.Join(wantHeader, "|") {
		t.Errorf("unexpected header: %v", records[0])
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[1][0] != "welcome" || records[1][2] != "Hallo" || records[1][3] != "2" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][5] != "你好" {
		t.Errorf("expected cn text in second row, got %v", records[2])
	}
}

func TestPatchExportOmitsCNColumnWhenAbsent(t *testing.T) {
	fix := newExportFixture(t, nil)
	// Replace the cn-carrying approval's segment with a cn-free approval set
	// by approving only row 2 in a fresh fixture: simplest is a second asset.
	asset := &types.Asset{ProjectID: fix.Project.ID, Type: types.AssetXLSX, OriginalName: "plain.xlsx"}
	if err := fix.Store.CreateAsset(fix.Ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	seg := &types.Segment{AssetID: asset.ID, RowIndex: 2, SourceLocale: "en-US", SourceText: "Hello"}
	if err := fix.Store.CreateSegment(fix.Ctx, seg); err != nil {
		t.Fatalf("create segment: %v", err)
	}
	if err := fix.Store.UpsertApproval(fix.Ctx, &types.ApprovedTranslation{SegmentID: seg.ID, TargetLocale: "de-DE", Text: "Hallo"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	result, err := PatchExport(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, asset.ID, "de-DE", "csv", "", exportNow)
	if err != nil {
		t.Fatalf("PatchExport failed: %v", err)
	}
	f, err := os.Open(result.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records[0]) != 5 {
		t.Errorf("expected no cn_text column, got header %v", records[0])
	}
}

func TestPatchExportRejectsUnknownFormat(t *testing.T) {
	fix := newExportFixture(t, nil)
	if _, err := PatchExport(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, fix.Asset.ID, "de-DE", "pdf", "", exportNow); err == nil {
		t.Fatal("expected unknown format to be rejected")
	}
}

func TestPatchExportXLSX(t *testing.T) {
	fix := newExportFixture(t, nil)
	result, err := PatchExport(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, fix.Asset.ID, "de-DE", "xlsx", "", exportNow)
	if err != nil {
		t.Fatalf("PatchExport failed: %v", err)
	}
	f, err := excelize.OpenFile(result.Path)
	if err != nil {
		t.Fatalf("open xlsx export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read xlsx export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Hello" || rows[1][2] != "Hallo" {
		t.Errorf("unexpected xlsx row: %v", rows[1])
	}
}

func writeSourceWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	cells := [][]any{
		{"EN", "DE", "Key"},
		{"Hello", "Hallo", "welcome"},
		{"Goodbye", "", "bye"},
		{"Stay", "", "stay"},
	}
	for r, row := range cells {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("seed workbook: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "strings.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestExportLPCopyAppendsNewLocaleColumn(t *testing.T) {
	sourcePath := writeSourceWorkbook(t)
	fix := newExportFixture(t, &sourcePath)
	exportsDir := t.TempDir()

	result, err := ExportLPCopy(fix.Ctx, fix.Store, exportsDir, fix.Project.Slug, fix.Asset.ID, "de-DE", exportNow)
	if err != nil {
		t.Fatalf("ExportLPCopy failed: %v", err)
	}
	if result.NewColumnName != "NEW DE" {
		t.Errorf("expected column NEW DE, got %q", result.NewColumnName)
	}
	if result.RowCount != 2 {
		t.Errorf("expected 2 written rows, got %d", result.RowCount)
	}
	base := filepath.Base(result.Path)
	if !strings.HasPrefix(base, "lp_demo-game_"+fix.Asset.ID[:8]+"_NEWDE_") {
		t.Errorf("unexpected filename shape: %s", base)
	}

	f, err := excelize.OpenFile(result.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if rows[0][3] != "NEW DE" {
		t.Errorf("expected NEW DE header appended, got %v", rows[0])
	}
	if rows[1][3] != "Hallo" || rows[2][3] != "Tschüss" {
		t.Errorf("expected approved texts in rows 2 and 3, got %v / %v", rows[1], rows[2])
	}
	// The unapproved row keeps its original cells and gets no new value.
	if len(rows[3]) > 3 && rows[3][3] != "" {
		t.Errorf("expected unapproved row untouched, got %v", rows[3])
	}
	if rows[1][0] != "Hello" || rows[1][1] != "Hallo" {
		t.Errorf("original cells must survive the copy, got %v", rows[1])
	}
}

func TestExportLPCopyReusesExistingColumn(t *testing.T) {
	sourcePath := writeSourceWorkbook(t)
	fix := newExportFixture(t, &sourcePath)

	first, err := ExportLPCopy(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, fix.Asset.ID, "de-DE", exportNow)
	if err != nil {
		t.Fatalf("first export failed: %v", err)
	}

	// Re-exporting from a workbook that already has the column must reuse
	// it instead of appending a second header.
	storagePath := first.Path
	asset := &types.Asset{ProjectID: fix.Project.ID, Type: types.AssetXLSX, OriginalName: "second.xlsx", StoragePath: &storagePath}
	if err := fix.Store.CreateAsset(fix.Ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	sheet := "Sheet1"
	seg := &types.Segment{AssetID: asset.ID, SheetName: &sheet, RowIndex: 2, SourceLocale: "en-US", SourceText: "Hello"}
	if err := fix.Store.CreateSegment(fix.Ctx, seg); err != nil {
		t.Fatalf("create segment: %v", err)
	}
	if err := fix.Store.UpsertApproval(fix.Ctx, &types.ApprovedTranslation{SegmentID: seg.ID, TargetLocale: "de-DE", Text: "Hallo zwei"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	second, err := ExportLPCopy(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, asset.ID, "de-DE", exportNow)
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	f, err := excelize.OpenFile(second.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	count := 0
	for _, h := range rows[0] {
		if h == "NEW DE" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one NEW DE header, got %d in %v", count, rows[0])
	}
	if rows[1][3] != "Hallo zwei" {
		t.Errorf("expected overwritten cell, got %v", rows[1])
	}
}

func TestExportLPCopyRefusesNonWorkbookAsset(t *testing.T) {
	fix := newExportFixture(t, nil)
	asset := &types.Asset{ProjectID: fix.Project.ID, Type: types.AssetCSV, OriginalName: "strings.csv"}
	if err := fix.Store.CreateAsset(fix.Ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if _, err := ExportLPCopy(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, asset.ID, "de-DE", exportNow); err == nil {
		t.Fatal("expected csv asset to be refused")
	}
}

func TestExportLPCopyRequiresStoredOriginal(t *testing.T) {
	fix := newExportFixture(t, nil)
	_, err := ExportLPCopy(fix.Ctx, fix.Store, t.TempDir(), fix.Project.Slug, fix.Asset.ID, "de-DE", exportNow)
	if err == nil || !strings.Contains(err.Error(), "use patch export instead") {
		t.Fatalf("expected missing-original refusal, got %v", err)
	}
}
