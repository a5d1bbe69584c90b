package fetcher

import (
	"context"
	"log"

	"github.com/nightfeed/nightfeed/pkg/store"
)

// DiscussionResult is the outcome of processing one forum snapshot
type DiscussionResult struct {
	NewItems   []store.Discussion
	IsFirstRun bool
}

// Discussions deduplicates forum topic snapshots against the store
type Discussions struct {
	store Store
}

// NewDiscussions creates a discussion fetcher
func NewDiscussions(s Store) *Discussions {
	return &Discussions{store: s}
}

// Process partitions the snapshot into known and new topics and persists
// the new ones best-effort. Topics without a gid are dropped. Pinned topics
// are stored like any other but callers typically exclude them from "new"
// messaging.
func (f *Discussions) Process(ctx context.Context, snapshot []store.Discussion) (DiscussionResult, error) {
	priorCount, err := f.store.DiscussionCount(ctx)
	if err != nil {
		log.Printf("[WARN] discussion count unavailable, assuming first run: %v", err)
		priorCount = 0
	}
	result := DiscussionResult{IsFirstRun: priorCount == 0}

	if len(snapshot) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(snapshot))
	for _, disc := range snapshot {
		if disc.GID == "" {
			log.Printf("[WARN] dropping discussion without gid (title %q)", disc.Title)
			continue
		}
		ids = append(ids, disc.GID)
	}

	known, err := f.store.FilterKnown(ctx, ids)
	if err != nil {
		log.Printf("[WARN] known-discussion lookup failed, treating all as new: %v", err)
		known = map[string]bool{}
	}

	for _, disc := range snapshot {
		if disc.GID == "" || known[disc.GID] {
			continue
		}
		if err := f.store.AddDiscussion(ctx, disc); err != nil {
			log.Printf("[WARN] failed to persist discussion %s: %v", disc.GID, err)
			continue
		}
		result.NewItems = append(result.NewItems, disc)
	}

	return result, nil
}
