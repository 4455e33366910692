package review

import (
	"context"
	"fmt"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/tm"
	"github.com/localcat/transtable/internal/types"
)

// Approve upserts the approved translation for (segmentID, targetLocale)
// and, in the same transaction, learns it into translation memory with
// origin_row_ref = "{sheet}:{row_index}" (sheet is empty when the segment
// has none).
func Approve(ctx context.Context, store storage.Storage, segmentID, targetLocale, text string, approver *string) (*types.ApprovedTranslation, error) {
	var approved *types.ApprovedTranslation
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		seg, err := tx.GetSegment(ctx, segmentID)
		if err != nil {
			return fmt.Errorf("get segment: %w", err)
		}
		asset, err := tx.GetAsset(ctx, seg.AssetID)
		if err != nil {
			return fmt.Errorf("get asset: %w", err)
		}

		a := &types.ApprovedTranslation{
			SegmentID:    segmentID,
			TargetLocale: targetLocale,
			Text:         text,
			Status:       types.ApprovalStatusApproved,
			Approver:     approver,
		}
		if err := tx.UpsertApproval(ctx, a); err != nil {
			return fmt.Errorf("upsert approval: %w", err)
		}
		approved = a

		sheet := ""
		if seg.SheetName != nil {
			sheet = *seg.SheetName
		}
		originRowRef := fmt.Sprintf("%s:%d", sheet, seg.RowIndex)
		originAssetID := asset.ID

		if _, err := tm.Learn(ctx, tx, asset.ProjectID, seg.SourceLocale, targetLocale, seg.SourceText, text, &originAssetID, &originRowRef); err != nil {
			return fmt.Errorf("learn tm entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}
