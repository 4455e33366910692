// Package review assembles per-segment review rows for an (asset, locale)
// pair, and approves translations with TM learn-on-approval wired into the
// same transaction.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// Row is one segment's review state for a given (asset, locale).
type Row struct {
	Segment *types.Segment

	// Approved is the approval row if one exists; Baseline is the
	// existing_target candidate, present whether or not Approved is. The
	// baseline text shown to a reviewer is Approved.Text when Approved !=
	// nil, else Baseline.Text.
	Approved *types.ApprovedTranslation
	Baseline *types.TranslationCandidate

	// Proposed is the latest change_proposed/change_flagged_proposed
	// candidate if any, else the latest non-existing_target candidate.
	Proposed *types.TranslationCandidate

	QAMessages []string
	HasQAFlags bool

	ChangeDecision   string
	ChangeConfidence float64
	ChangeReason     string

	IsChanged bool
}

var changeProposedTypes = map[types.CandidateType]bool{
	types.CandidateChangeProposed:     true,
	types.CandidateChangeFlagProposed: true,
}

// AssembleRows returns one Row per segment of assetID, ordered by
// (row_index, id).
func AssembleRows(ctx context.Context, store storage.Storage, assetID, targetLocale string) ([]Row, error) {
	segments, err := store.ListSegmentsByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	rows := make([]Row, 0, len(segments))
	for _, seg := range segments {
		row, err := assembleRow(ctx, store, seg, targetLocale)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func assembleRow(ctx context.Context, store storage.Storage, seg *types.Segment, targetLocale string) (Row, error) {
	row := Row{Segment: seg}

	approved, err := store.GetApproval(ctx, seg.ID, targetLocale)
	if err != nil && err != storage.ErrNotFound {
		return Row{}, fmt.Errorf("get approval: %w", err)
	}
	if err == nil {
		row.Approved = approved
	}

	existingTarget, err := store.CandidateOfType(ctx, seg.ID, targetLocale, types.CandidateExistingTarget)
	if err != nil && err != storage.ErrNotFound {
		return Row{}, fmt.Errorf("get existing_target candidate: %w", err)
	}
	if err == nil {
		row.Baseline = existingTarget
	}

	changeCandidate, err := latestOfTypes(ctx, store, seg.ID, targetLocale, []types.CandidateType{
		types.CandidateChangeProposed, types.CandidateChangeFlagProposed,
	})
	if err != nil {
		return Row{}, err
	}
	if changeCandidate != nil {
		row.Proposed = changeCandidate
	} else {
		latest, err := store.LatestCandidate(ctx, seg.ID, targetLocale)
		if err != nil && err != storage.ErrNotFound {
			return Row{}, fmt.Errorf("get latest candidate: %w", err)
		}
		if err == nil && latest.Type != types.CandidateExistingTarget {
			row.Proposed = latest
		}
	}

	flags, err := store.ListQAFlags(ctx, seg.ID, targetLocale)
	if err != nil {
		return Row{}, fmt.Errorf("list qa flags: %w", err)
	}
	var staleFlag *types.QAFlag
	for _, f := range flags {
		if f.ResolvedAt != nil {
			continue
		}
		row.QAMessages = append(row.QAMessages, f.Message)
		row.HasQAFlags = true
		if f.Type == types.QAStaleSourceChange {
			staleFlag = f
		}
	}

	if row.Proposed != nil {
		decision, confidence, reason, ok := changeFieldsFromModelInfo(row.Proposed.ModelInfoJSON)
		if ok {
			row.ChangeDecision, row.ChangeConfidence, row.ChangeReason = decision, confidence, reason
		}
	}
	if row.ChangeDecision == "" && staleFlag != nil {
		decision, confidence, reason, ok := changeFieldsFromSpan(staleFlag.SpanJSON)
		if ok {
			row.ChangeDecision, row.ChangeConfidence, row.ChangeReason = decision, confidence, reason
		}
	}

	row.IsChanged = seg.SourceTextOld != nil && trimmedDiffers(*seg.SourceTextOld, seg.SourceText)

	return row, nil
}

// latestOfTypes returns the most recent candidate (by generated_at desc, id
// desc) whose type is one of types_, or nil if none exists.
func latestOfTypes(ctx context.Context, store storage.Storage, segmentID, targetLocale string, types_ []types.CandidateType) (*types.TranslationCandidate, error) {
	var candidates []*types.TranslationCandidate
	for _, t := range types_ {
		c, err := store.CandidateOfType(ctx, segmentID, targetLocale, t)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, fmt.Errorf("get candidate of type %s: %w", t, err)
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].GeneratedAt.Equal(candidates[j].GeneratedAt) {
			return candidates[i].GeneratedAt.After(candidates[j].GeneratedAt)
		}
		return candidates[i].ID > candidates[j].ID
	})
	return candidates[0], nil
}

func changeFieldsFromModelInfo(modelInfoJSON string) (decision string, confidence float64, reason string, ok bool) {
	if modelInfoJSON == "" {
		return "", 0, "", false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(modelInfoJSON), &m); err != nil {
		return "", 0, "", false
	}
	d, hasDecision := m["change_decision"].(string)
	if !hasDecision {
		return "", 0, "", false
	}
	r, _ := m["change_reason"].(string)
	switch v := m["change_confidence"].(type) {
	case float64:
		confidence = v
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			confidence = f
		}
	}
	return d, confidence, r, true
}

func changeFieldsFromSpan(spanJSON string) (decision string, confidence float64, reason string, ok bool) {
	if spanJSON == "" {
		return "", 0, "", false
	}
	var span struct {
		Decision   string  `json:"decision"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(spanJSON), &span); err != nil {
		return "", 0, "", false
	}
	if span.Decision == "" {
		return "", 0, "", false
	}
	return span.Decision, span.Confidence, span.Reason, true
}

func trimmedDiffers(a, b string) bool {
	return strings.TrimSpace(a) != strings.TrimSpace(b)
}
