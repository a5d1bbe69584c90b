// Package fetcher turns raw source snapshots into deduplicated increments.
// Each fetcher partitions a snapshot into already-known vs new items using
// the store, persists the new subset, and reports whether this was the
// first observation of the source.
package fetcher

import (
	"context"

	"github.com/nightfeed/nightfeed/pkg/store"
)

// Store is the persistence surface the fetchers need
type Store interface {
	FilterKnown(ctx context.Context, identities []string) (map[string]bool, error)
	MarkSeen(ctx context.Context, rec store.SeenRecord) error
	SeenCount(ctx context.Context, source string) (int64, error)
	AddReview(ctx context.Context, rev store.Review) error
	ReviewCount(ctx context.Context) (int64, error)
	AddDiscussion(ctx context.Context, disc store.Discussion) error
	DiscussionCount(ctx context.Context) (int64, error)
}
