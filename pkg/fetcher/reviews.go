package fetcher

import (
	"context"
	"log"

	"github.com/nightfeed/nightfeed/pkg/store"
)

// ReviewResult is the outcome of processing one review snapshot
type ReviewResult struct {
	NewItems   []store.Review
	IsFirstRun bool
}

// Reviews deduplicates review snapshots against the store
type Reviews struct {
	store Store
}

// NewReviews creates a review fetcher
func NewReviews(s Store) *Reviews {
	return &Reviews{store: s}
}

// Process partitions the snapshot into known and new reviews, persists the
// new ones best-effort, and reports first-run status. First run means the
// review table had zero rows before this call. Reviews without an id are
// dropped. A store read failure degrades to the first-run path rather than
// aborting the cycle.
func (f *Reviews) Process(ctx context.Context, snapshot []store.Review) (ReviewResult, error) {
	priorCount, err := f.store.ReviewCount(ctx)
	if err != nil {
		log.Printf("[WARN] review count unavailable, assuming first run: %v", err)
		priorCount = 0
	}
	result := ReviewResult{IsFirstRun: priorCount == 0}

	if len(snapshot) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(snapshot))
	for _, rev := range snapshot {
		if rev.RecommendationID == "" {
			log.Printf("[WARN] dropping review without id (author %q)", rev.AuthorID)
			continue
		}
		ids = append(ids, rev.RecommendationID)
	}

	known, err := f.store.FilterKnown(ctx, ids)
	if err != nil {
		log.Printf("[WARN] known-review lookup failed, treating all as new: %v", err)
		known = map[string]bool{}
	}

	for _, rev := range snapshot {
		if rev.RecommendationID == "" || known[rev.RecommendationID] {
			continue
		}
		if err := f.store.AddReview(ctx, rev); err != nil {
			log.Printf("[WARN] failed to persist review %s: %v", rev.RecommendationID, err)
			continue
		}
		result.NewItems = append(result.NewItems, rev)
	}

	return result, nil
}
