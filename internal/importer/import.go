package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// Summary reports what an Import call did, for the caller to surface to a
// user or log.
type Summary struct {
	AssetID         string
	SchemaProfileID string
	Signature       string
	ImportedRows    int
	SkippedRows     int
	MappedColumns   ColumnMapping
}

// Input bundles the arguments to Import: the row-view to consume, the
// column mapping describing it, and the asset metadata to record.
type Input struct {
	ProjectID    string
	SourceLocale string
	FileType     types.AssetType
	OriginalName string
	StoragePath  *string
	SizeBytes    *int64
	ContentHash  *string
	SheetName    string
	Mapping      ColumnMapping
	View         RowView
}

// Import consumes a RowView under a ColumnMapping, creating an Asset and one
// Segment per non-empty source row, projecting an existing_target baseline
// candidate for ModeLP rows with a mapped target column (unless an approval
// already exists for that segment+locale), and upserting a SchemaProfile
// fingerprinting the column layout for reuse on re-import.
//
// Rows whose mapped source cell is empty (or whitespace-only) after
// trimming are dropped entirely and counted as skipped.
func Import(ctx context.Context, store storage.Storage, in Input) (*Summary, error) {
	mapping := in.Mapping.normalized()
	if err := mapping.Validate(in.View.Columns); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	signature := ComputeSchemaSignature(string(in.FileType), in.SheetName, in.View.Columns)

	var sheetName *string
	if strings.TrimSpace(in.SheetName) != "" {
		s := in.SheetName
		sheetName = &s
	}

	var summary Summary
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		asset := &types.Asset{
			ProjectID:    in.ProjectID,
			Type:         in.FileType,
			OriginalName: in.OriginalName,
			StoragePath:  in.StoragePath,
			SizeBytes:    in.SizeBytes,
			ContentHash:  in.ContentHash,
			Channel:      types.SourceChannelManual,
		}
		if err := tx.CreateAsset(ctx, asset); err != nil {
			return fmt.Errorf("create asset: %w", err)
		}

		imported, skipped := 0, 0
		for position, row := range in.View.Rows {
			sourceNew := requiredText(row, mapping.SourceNew)
			if sourceNew == nil {
				skipped++
				continue
			}

			seg := &types.Segment{
				AssetID:      asset.ID,
				SheetName:    sheetName,
				RowIndex:     computeRowIndex(row, position),
				Key:          optionalText(row, mapping.Key),
				SourceLocale: in.SourceLocale,
				SourceText:   *sourceNew,
				CNText:       optionalText(row, mapping.CN),
				CharLimit:    optionalInt(row, mapping.CharLimit),
			}

			if mapping.Mode == ModeChangeSourceUpdate {
				seg.SourceTextOld = requiredText(row, mapping.SourceOld)
			}

			contextJSON, err := buildContextJSON(row, mapping.Context)
			if err != nil {
				return fmt.Errorf("build context payload: %w", err)
			}
			seg.ContextJSON = contextJSON
			seg.PlaceholdersJSON = "[]"

			if err := tx.CreateSegment(ctx, seg); err != nil {
				return fmt.Errorf("create segment: %w", err)
			}
			imported++

			if mapping.Mode == ModeLP && mapping.Target != "" && mapping.TargetLocale != "" {
				if targetText := optionalText(row, mapping.Target); targetText != nil {
					_, err := tx.GetApproval(ctx, seg.ID, mapping.TargetLocale)
					if err != nil && err != storage.ErrNotFound {
						return fmt.Errorf("check existing approval: %w", err)
					}
					if err == storage.ErrNotFound {
						candidate := &types.TranslationCandidate{
							SegmentID:    seg.ID,
							TargetLocale: mapping.TargetLocale,
							Text:         *targetText,
							Type:         types.CandidateExistingTarget,
							Score:        1.0,
						}
						if err := tx.UpsertCandidate(ctx, candidate); err != nil {
							return fmt.Errorf("upsert existing_target candidate: %w", err)
						}
					}
				}
			}
		}

		mappingJSON, err := marshalMapping(mapping, string(in.FileType), in.SheetName)
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}

		profile := &types.SchemaProfile{
			ProjectID:       in.ProjectID,
			Signature:       signature,
			MappingJSON:     mappingJSON,
			Confidence:      1.0,
			ConfirmedByUser: true,
		}
		if err := tx.UpsertSchemaProfile(ctx, profile); err != nil {
			return fmt.Errorf("upsert schema profile: %w", err)
		}

		summary = Summary{
			AssetID:         asset.ID,
			SchemaProfileID: profile.ID,
			Signature:       signature,
			ImportedRows:    imported,
			SkippedRows:     skipped,
			MappedColumns:   mapping,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// requiredText trims the mapped cell and returns nil if the column is
// unmapped or the trimmed value is empty.
func requiredText(row Row, column string) *string {
	if column == "" {
		return nil
	}
	v := row.Values[column]
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// optionalText behaves like requiredText but is used for columns where an
// empty value is a legitimate absence rather than a skip signal.
func optionalText(row Row, column string) *string {
	return requiredText(row, column)
}

func optionalInt(row Row, column string) *int {
	if column == "" {
		return nil
	}
	v := row.Values[column]
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}
	return &n
}

func buildContextJSON(row Row, columns []string) (string, error) {
	payload := make(map[string]string, len(columns))
	for _, col := range columns {
		if v := optionalText(row, col); v != nil {
			payload[col] = *v
		}
	}
	if len(payload) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// marshalMapping renders the mapping JSON a SchemaProfile persists.
// file_type and sheet_name are carried alongside the column mapping itself
// so a workbook-copy export can later resolve which sheet of a workbook an
// asset's approved rows belong to, without re-deriving it from the row-view.
func marshalMapping(m ColumnMapping, fileType, sheetName string) (string, error) {
	payload := map[string]any{
		"mode":          m.Mode,
		"source_new":    m.SourceNew,
		"source_old":    m.SourceOld,
		"target":        m.Target,
		"target_locale": m.TargetLocale,
		"cn":            m.CN,
		"key":           m.Key,
		"char_limit":    m.CharLimit,
		"context":       m.Context,
		"file_type":     strings.ToLower(fileType),
		"sheet_name":    sheetName,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
