package tm

import (
	"context"
	"errors"
	"sort"

	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// Store is the subset of storage.Transaction/Storage the TM engine needs.
type Store interface {
	FindTMExact(ctx context.Context, projectID, sourceLocale, targetLocale, normalizedHash string) (*types.TMEntry, error)
	SearchTMFuzzyCandidates(ctx context.Context, projectID, sourceLocale, targetLocale, ftsQuery string, limit int) ([]*types.TMEntry, error)
	UpsertTMEntry(ctx context.Context, e *types.TMEntry) (*types.TMEntry, error)
	BumpTMUsage(ctx context.Context, tmID string) error
}

// Hit is a fuzzy-search result scored against the query source text.
type Hit struct {
	Entry *types.TMEntry
	Score float64
}

// FindExact looks up a TM entry by normalized source hash, returning
// (nil, nil) when no row matches.
func FindExact(ctx context.Context, store Store, projectID, sourceLocale, targetLocale, sourceText string) (*types.TMEntry, error) {
	entry, err := store.FindTMExact(ctx, projectID, sourceLocale, targetLocale, NormalizedHash(sourceText))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// FuzzySearch sanitizes query_text into an FTS query, pulls a candidate
// pool of at least max(50, 10*limit) rows ranked by FTS relevance, re-ranks
// by token-set similarity between normalized source texts, and returns the
// top `limit` hits sorted by score desc, id asc.
func FuzzySearch(ctx context.Context, store Store, projectID, sourceLocale, targetLocale, sourceText string, limit int) ([]Hit, error) {
	if limit < 1 {
		limit = 1
	}
	sanitized := SanitizeFTSQuery(sourceText)
	if sanitized == "" {
		return nil, nil
	}

	poolSize := 10 * limit
	if poolSize < 50 {
		poolSize = 50
	}

	candidates, err := store.SearchTMFuzzyCandidates(ctx, projectID, sourceLocale, targetLocale, sanitized, poolSize)
	if err != nil {
		return nil, err
	}

	normalizedSource := NormalizeSource(sourceText)
	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, Hit{Entry: c, Score: TokenSetRatio(normalizedSource, NormalizeSource(c.SourceText))})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Entry.ID < hits[j].Entry.ID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Learn upserts an approval into the TM with origin "approved" and quality
// "trusted", the only path by which a TM row learns from reviewer
// activity; unapproved candidates never call this.
func Learn(ctx context.Context, store Store, projectID, sourceLocale, targetLocale, sourceText, targetText string, originAssetID, originRowRef *string) (*types.TMEntry, error) {
	entry := &types.TMEntry{
		ProjectID:      projectID,
		SourceLocale:   sourceLocale,
		TargetLocale:   targetLocale,
		SourceText:     sourceText,
		TargetText:     targetText,
		NormalizedHash: NormalizedHash(sourceText),
		Origin:         types.TMOriginApproved,
		OriginAssetID:  originAssetID,
		OriginRowRef:   originRowRef,
		Quality:        types.TMQualityTrusted,
	}
	return store.UpsertTMEntry(ctx, entry)
}

// RecordUse bumps use_count and last_used_at for a consumed TM hit, exact
// or fuzzy.
func RecordUse(ctx context.Context, store Store, tmID string) error {
	return store.BumpTMUsage(ctx, tmID)
}
