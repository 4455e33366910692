package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
	"github.com/xuri/excelize/v2"
)

// LPCopyResult describes a written workbook-copy export.
type LPCopyResult struct {
	Path          string
	RowCount      int
	NewColumnName string
	SourcePath    string
	Warnings      []string
}

// ExportLPCopy copies assetID's original xlsx file and writes every approved
// (assetID, targetLocale) translation into a new "NEW {LANG}" column. Each
// row goes to its own segment's sheet; rows without a sheet name go to the
// sheet resolved from the project's schema profiles, or to the workbook's
// active sheet when none is resolved or it is missing. Rows whose sheet is
// not in the workbook are skipped with a warning. Only xlsx assets with a
// resolvable storage path support this export; others should use
// PatchExport instead.
func ExportLPCopy(ctx context.Context, store storage.Storage, exportsDir, projectSlug, assetID, targetLocale string, now time.Time) (*LPCopyResult, error) {
	asset, err := store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	if asset.Type != types.AssetXLSX {
		return nil, fmt.Errorf("LP copy export supports only xlsx assets, got %s", asset.Type)
	}
	if asset.StoragePath == nil || strings.TrimSpace(*asset.StoragePath) == "" {
		return nil, fmt.Errorf("original xlsx not available for asset %s; use patch export instead", assetID)
	}
	sourcePath := *asset.StoragePath
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("original xlsx not available at %s; use patch export instead", sourcePath)
	}

	rows, err := listApprovedForAsset(ctx, store, assetID, targetLocale)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no approved translations found for asset %s locale %s", assetID, targetLocale)
	}

	fallbackSheet := ""
	for _, r := range rows {
		if r.sheetName != "" {
			fallbackSheet = r.sheetName
			break
		}
	}
	mappedSheet, sheetWarnings, err := resolveSheetName(ctx, store, asset.ProjectID, fallbackSheet)
	if err != nil {
		return nil, err
	}

	if err := ensureDir(exportsDir); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("lp_%s_%s_%s_%s.xlsx",
		safeFragment(projectSlug, "export"),
		shortAssetID(assetID),
		safeFragment(newColumnFilenameToken(targetLocale), "export"),
		utcFilenameTimestamp(now),
	)
	outputPath := filepath.Join(exportsDir, filename)

	sourceBytes, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source xlsx: %w", err)
	}
	if err := atomicWriteFile(outputPath, sourceBytes); err != nil {
		return nil, fmt.Errorf("copy source xlsx: %w", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("open copied xlsx: %w", err)
	}
	defer f.Close()

	warnings := append([]string{}, sheetWarnings...)
	activeSheet := f.GetSheetName(f.GetActiveSheetIndex())
	defaultSheet := mappedSheet
	if defaultSheet != "" && !sheetExists(f, defaultSheet) {
		warnings = append(warnings, fmt.Sprintf("sheet %q not found; using active sheet %q", defaultSheet, activeSheet))
		defaultSheet = activeSheet
	}
	if defaultSheet == "" {
		warnings = append(warnings, fmt.Sprintf("sheet mapping not found; using active sheet %q", activeSheet))
		defaultSheet = activeSheet
	}

	rowsBySheet := make(map[string][]approvedPatchRow)
	sheetOrder := make([]string, 0, 4)
	for _, r := range rows {
		sheetName := r.sheetName
		if sheetName == "" {
			sheetName = defaultSheet
		}
		if sheetName == "" {
			sheetName = activeSheet
		}
		if _, ok := rowsBySheet[sheetName]; !ok {
			sheetOrder = append(sheetOrder, sheetName)
		}
		rowsBySheet[sheetName] = append(rowsBySheet[sheetName], r)
	}

	newColName := newColumnName(targetLocale)
	written := 0
	for _, sheetName := range sheetOrder {
		sheetRows := rowsBySheet[sheetName]
		if !sheetExists(f, sheetName) {
			warnings = append(warnings, fmt.Sprintf("sheet %q not found; skipped %d approved row(s)", sheetName, len(sheetRows)))
			continue
		}
		n, err := writeRowsForSheet(f, sheetName, sheetRows, newColName)
		if err != nil {
			return nil, err
		}
		written += n
	}

	if err := f.Save(); err != nil {
		return nil, fmt.Errorf("save xlsx: %w", err)
	}

	return &LPCopyResult{
		Path:          outputPath,
		RowCount:      written,
		NewColumnName: newColName,
		SourcePath:    sourcePath,
		Warnings:      warnings,
	}, nil
}

func sheetExists(f *excelize.File, sheetName string) bool {
	for _, s := range f.GetSheetList() {
		if s == sheetName {
			return true
		}
	}
	return false
}

// ensureNewColumn returns the column index of newColName's header in
// sheetName, creating it at the end of the header row if absent.
func ensureNewColumn(f *excelize.File, sheetName, newColName string) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) > 0 {
		for i, value := range rows[0] {
			if strings.TrimSpace(value) == newColName {
				return i + 1, nil
			}
		}
	}
	newColIndex := 1
	if len(rows) > 0 {
		newColIndex = len(rows[0]) + 1
	}
	cell, err := excelize.CoordinatesToCellName(newColIndex, 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheetName, cell, newColName); err != nil {
		return 0, fmt.Errorf("write header for %q: %w", newColName, err)
	}
	return newColIndex, nil
}

func writeRowsForSheet(f *excelize.File, sheetName string, rows []approvedPatchRow, newColName string) (int, error) {
	colIndex, err := ensureNewColumn(f, sheetName, newColName)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, r := range rows {
		if r.rowIndex < 2 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(colIndex, r.rowIndex)
		if err != nil {
			return written, err
		}
		if err := f.SetCellValue(sheetName, cell, r.approvedTargetText); err != nil {
			return written, fmt.Errorf("write row %d: %w", r.rowIndex, err)
		}
		written++
	}
	return written, nil
}

// schemaProfileMapping is the subset of a SchemaProfile's mapping JSON the
// LP-copy exporter needs: which file shape and sheet it was recorded for.
type schemaProfileMapping struct {
	FileType  string `json:"file_type"`
	SheetName string `json:"sheet_name"`
}

// resolveSheetName picks the xlsx sheet name to default to when a segment's
// own sheet_name is unknown, preferring a schema profile whose sheet matches
// fallbackSheetName and otherwise the most recently updated xlsx profile.
func resolveSheetName(ctx context.Context, store storage.Storage, projectID, fallbackSheetName string) (string, []string, error) {
	profiles, err := store.ListSchemaProfilesByProject(ctx, projectID)
	if err != nil {
		return "", nil, fmt.Errorf("list schema profiles: %w", err)
	}

	preferred := strings.TrimSpace(fallbackSheetName)
	fallbackMappingSheet := ""
	for _, p := range profiles {
		var mapping schemaProfileMapping
		if err := json.Unmarshal([]byte(p.MappingJSON), &mapping); err != nil {
			continue
		}
		if strings.ToLower(mapping.FileType) != "xlsx" {
			continue
		}
		mappingSheet := strings.TrimSpace(mapping.SheetName)
		if mappingSheet == "" {
			continue
		}
		if preferred != "" && mappingSheet == preferred {
			return mappingSheet, nil, nil
		}
		if fallbackMappingSheet == "" {
			fallbackMappingSheet = mappingSheet
		}
	}

	if fallbackMappingSheet != "" {
		var warnings []string
		if preferred != "" && fallbackMappingSheet != preferred {
			warnings = append(warnings, fmt.Sprintf("using schema profile sheet %q instead of %q", fallbackMappingSheet, preferred))
		}
		return fallbackMappingSheet, warnings, nil
	}
	return preferred, nil, nil
}
