package fetcher

import (
	"context"
	"log"
	"time"

	"github.com/nightfeed/nightfeed/pkg/store"
)

// NewsItem is one article from an RSS source, identified by its URL
type NewsItem struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Category  string    `json:"category"`
	Priority  int       `json:"priority"`
	Published time.Time `json:"published"`
}

// NewsResult is the outcome of processing one RSS snapshot
type NewsResult struct {
	NewItems   []NewsItem
	IsFirstRun bool
}

// News deduplicates RSS article snapshots by URL. Articles have no domain
// table of their own, the seen record is the whole persistent footprint.
type News struct {
	store Store
}

// NewNews creates an RSS fetcher
func NewNews(s Store) *News {
	return &News{store: s}
}

// Process partitions the snapshot by URL and marks new articles seen,
// best-effort per item. Articles without a URL are dropped.
func (f *News) Process(ctx context.Context, snapshot []NewsItem) (NewsResult, error) {
	priorCount, err := f.store.SeenCount(ctx, "rss")
	if err != nil {
		log.Printf("[WARN] rss seen count unavailable, assuming first run: %v", err)
		priorCount = 0
	}
	result := NewsResult{IsFirstRun: priorCount == 0}

	if len(snapshot) == 0 {
		return result, nil
	}

	urls := make([]string, 0, len(snapshot))
	for _, item := range snapshot {
		if item.URL == "" {
			log.Printf("[WARN] dropping rss item without url (title %q)", item.Title)
			continue
		}
		urls = append(urls, item.URL)
	}

	known, err := f.store.FilterKnown(ctx, urls)
	if err != nil {
		log.Printf("[WARN] known-url lookup failed, treating all as new: %v", err)
		known = map[string]bool{}
	}

	for _, item := range snapshot {
		if item.URL == "" || known[item.URL] {
			continue
		}
		rec := store.SeenRecord{
			Identity:  item.URL,
			Source:    "rss",
			Title:     item.Title,
			FirstSeen: time.Now().Unix(),
		}
		if err := f.store.MarkSeen(ctx, rec); err != nil {
			log.Printf("[WARN] failed to mark rss item seen %s: %v", item.URL, err)
			continue
		}
		result.NewItems = append(result.NewItems, item)
	}

	return result, nil
}
