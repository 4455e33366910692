package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/localcat/transtable/internal/storage"
	"github.com/xuri/excelize/v2"
)

// PatchResult describes a written patch-table export.
type PatchResult struct {
	Path      string
	RowCount  int
	Format    string
}

// approvedPatchRow is one segment with an approved translation, projected
// for the patch table and the LP-copy rewrite: both exports only ever
// touch segments that have cleared review.
type approvedPatchRow struct {
	key                string
	sourceText         string
	approvedTargetText string
	rowIndex           int
	sheetName          string
	cnText             *string
}

func listApprovedForAsset(ctx context.Context, store storage.Storage, assetID, targetLocale string) ([]approvedPatchRow, error) {
	segments, err := store.ListSegmentsByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	rows := make([]approvedPatchRow, 0, len(segments))
	for _, seg := range segments {
		approved, err := store.GetApproval(ctx, seg.ID, targetLocale)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, fmt.Errorf("get approval: %w", err)
		}

		key := ""
		if seg.Key != nil {
			key = *seg.Key
		}
		sheetName := ""
		if seg.SheetName != nil {
			sheetName = *seg.SheetName
		}
		rows = append(rows, approvedPatchRow{
			key:                key,
			sourceText:         seg.SourceText,
			approvedTargetText: approved.Text,
			rowIndex:           seg.RowIndex,
			sheetName:          sheetName,
			cnText:             seg.CNText,
		})
	}
	return rows, nil
}

func anyCNText(rows []approvedPatchRow) bool {
	for _, r := range rows {
		if r.cnText != nil {
			return true
		}
	}
	return false
}

// PatchExport writes every approved translation for (assetID, targetLocale)
// to a flat table under exportsDir, named
// {filenamePrefix}_{projectSlug}_{assetID[:8]}_{targetLocale}_{UTC timestamp}.{format}.
// fileFormat must be "csv" or "xlsx". A cn_text column is included only when
// at least one row carries one.
func PatchExport(ctx context.Context, store storage.Storage, exportsDir, projectSlug, assetID, targetLocale, fileFormat, filenamePrefix string, now time.Time) (*PatchResult, error) {
	normalizedFormat := fileFormat
	switch normalizedFormat {
	case "xlsx", "csv":
	default:
		return nil, fmt.Errorf("file_format must be %q or %q, got %q", "xlsx", "csv", fileFormat)
	}

	rows, err := listApprovedForAsset(ctx, store, assetID, targetLocale)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no approved translations found for asset %s locale %s", assetID, targetLocale)
	}

	if filenamePrefix == "" {
		filenamePrefix = "patch"
	}
	if err := ensureDir(exportsDir); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s_%s_%s_%s.%s",
		safeFragment(filenamePrefix, "patch"),
		safeFragment(projectSlug, "patch"),
		shortAssetID(assetID),
		safeFragment(targetLocale, "patch"),
		utcTimestampToken(now),
		normalizedFormat,
	)
	outputPath := filepath.Join(exportsDir, filename)

	includeCN := anyCNText(rows)
	if normalizedFormat == "csv" {
		if err := writePatchCSV(outputPath, rows, includeCN); err != nil {
			return nil, err
		}
	} else {
		if err := writePatchXLSX(outputPath, rows, includeCN); err != nil {
			return nil, err
		}
	}

	return &PatchResult{Path: outputPath, RowCount: len(rows), Format: normalizedFormat}, nil
}

func patchHeader(includeCN bool) []string {
	header := []string{"key", "source_text", "approved_target_text", "row_index", "sheet_name"}
	if includeCN {
		header = append(header, "cn_text")
	}
	return header
}

func patchRecord(r approvedPatchRow, includeCN bool) []string {
	record := []string{r.key, r.sourceText, r.approvedTargetText, fmt.Sprintf("%d", r.rowIndex), r.sheetName}
	if includeCN {
		cn := ""
		if r.cnText != nil {
			cn = *r.cnText
		}
		record = append(record, cn)
	}
	return record
}

func writePatchCSV(path string, rows []approvedPatchRow, includeCN bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(patchHeader(includeCN)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(patchRecord(r, includeCN)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writePatchXLSX(path string, rows []approvedPatchRow, includeCN bool) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := patchHeader(includeCN)
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write xlsx header: %w", err)
		}
	}
	for i, r := range rows {
		record := patchRecord(r, includeCN)
		excelRow := i + 2
		for col, value := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, excelRow)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write xlsx row %d: %w", excelRow, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
