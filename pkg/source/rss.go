package source

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/fetcher"
)

// RSS fetches configured news feeds
type RSS struct {
	client    *http.Client
	userAgent string
}

// NewRSS creates an RSS source client
func NewRSS(timeout time.Duration) *RSS {
	return &RSS{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}
}

// Fetch retrieves one source's current items, newest first as published by
// the feed. Items without a link are skipped.
func (r *RSS) Fetch(ctx context.Context, src config.RSSSource, maxItems int) ([]fetcher.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", src.Name, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", src.Name, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	entries := feed.Items
	if len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	items := make([]fetcher.NewsItem, 0, len(entries))
	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}

		item := fetcher.NewsItem{
			URL:      entry.Link,
			Title:    strings.TrimSpace(sanitizer.Sanitize(entry.Title)),
			Source:   src.Name,
			Category: src.Category,
			Priority: src.Priority,
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = *entry.UpdatedParsed
		}

		items = append(items, item)
	}
	return items, nil
}

// FetchAll retrieves every configured source, skipping sources that fail.
// A broken feed costs its own items, never the whole collection.
func (r *RSS) FetchAll(ctx context.Context, sources []config.RSSSource, maxPerSource int) []fetcher.NewsItem {
	var all []fetcher.NewsItem
	for _, src := range sources {
		items, err := r.Fetch(ctx, src, maxPerSource)
		if err != nil {
			log.Printf("[WARN] rss source %s failed: %v", src.Name, err)
			continue
		}
		log.Printf("[INFO] fetched %d items from %s", len(items), src.Name)
		all = append(all, items...)
	}
	return all
}
