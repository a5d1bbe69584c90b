// Package service implements the three pipeline stage services: collector,
// writer and publisher. Each is also exposed as a subcommand of the main
// binary so the sequencer can run stages as isolated subprocesses.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/fetcher"
	"github.com/nightfeed/nightfeed/pkg/pipeline"
	"github.com/nightfeed/nightfeed/pkg/rank"
	"github.com/nightfeed/nightfeed/pkg/source"
	"github.com/nightfeed/nightfeed/pkg/store"
)

// Bundle is the signals artifact handed from the collect stage to the
// write stage. Its JSON layout is a stable contract between the two.
type Bundle struct {
	CollectionTimestamp string   `json:"collection_timestamp"`
	Date                string   `json:"date"`
	Signals             Signals  `json:"signals"`
	Metadata            Metadata `json:"metadata"`
}

// Signals groups the day's collected inputs
type Signals struct {
	TopSellers []rank.Delta          `json:"top_sellers"`
	Trending   []source.TrendingGame `json:"trending"`
	NewsItems  []fetcher.NewsItem    `json:"news_items"`
	Highlights []fetcher.NewsItem    `json:"highlights"`
}

// Metadata carries collection counts for quick inspection
type Metadata struct {
	TotalSignals    int `json:"total_signals"`
	TopSellersCount int `json:"top_sellers_count"`
	TrendingCount   int `json:"trending_count"`
	NewsCount       int `json:"news_count"`
	HighlightsCount int `json:"highlights_count"`
}

// RankSource provides store chart snapshots
type RankSource interface {
	FetchTopSellers(ctx context.Context, maxItems int) ([]store.Ranking, error)
	FetchTrending(ctx context.Context, maxItems int) ([]source.TrendingGame, error)
}

// NewsSource provides RSS article snapshots
type NewsSource interface {
	FetchAll(ctx context.Context, sources []config.RSSSource, maxPerSource int) []fetcher.NewsItem
}

// CollectorStore is the persistence surface the collector needs
type CollectorStore interface {
	PutRankings(ctx context.Context, date string, items []store.Ranking) error
	GetRankings(ctx context.Context, daysBack int) (map[string]map[int64]store.RankEntry, error)
	Cleanup(ctx context.Context, retentionDays int) error
}

// Collector gathers the day's signals and writes the bundle artifact
type Collector struct {
	cfg       config.CollectorConfig
	ranks     RankSource
	rss       NewsSource
	news      *fetcher.News
	store     CollectorStore
	artifacts pipeline.Artifacts
	nowFn     func() time.Time
}

// NewCollector creates a collector service
func NewCollector(cfg config.CollectorConfig, ranks RankSource, rss NewsSource, news *fetcher.News,
	st CollectorStore, artifacts pipeline.Artifacts) *Collector {
	return &Collector{cfg: cfg, ranks: ranks, rss: rss, news: news, store: st, artifacts: artifacts, nowFn: time.Now}
}

// Run collects all sources concurrently, computes rank deltas against the
// most recent prior day, deduplicates news and writes the signals bundle.
// Source failures degrade to empty sections, only the artifact write and
// the ranking store are fatal.
func (c *Collector) Run(ctx context.Context, date string) error {
	// retention cleanup runs before collection, outside the critical path
	if err := c.store.Cleanup(ctx, c.cfg.RetentionDays); err != nil {
		log.Printf("[WARN] retention cleanup failed: %v", err)
	}

	var (
		topSellers []store.Ranking
		trending   []source.TrendingGame
		newsItems  []fetcher.NewsItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if topSellers, err = c.ranks.FetchTopSellers(gctx, c.cfg.MaxTopSellers); err != nil {
			log.Printf("[WARN] top sellers fetch failed: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if trending, err = c.ranks.FetchTrending(gctx, c.cfg.MaxTrending); err != nil {
			log.Printf("[WARN] trending fetch failed: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		newsItems = c.rss.FetchAll(gctx, c.cfg.Sources, c.cfg.MaxItemsPerSource)
		return nil
	})
	_ = g.Wait() // goroutines never return errors, degraded sections stay empty

	var deltas []rank.Delta
	if len(topSellers) > 0 {
		history, err := c.store.GetRankings(ctx, c.cfg.RankingsDaysBack)
		if err != nil {
			log.Printf("[WARN] ranking history unavailable, all changes unknown: %v", err)
			history = map[string]map[int64]store.RankEntry{}
		}
		deltas = rank.ComputeDeltas(date, topSellers, history)

		if err := c.store.PutRankings(ctx, date, topSellers); err != nil {
			return fmt.Errorf("store rankings: %w", err)
		}
		log.Printf("[INFO] stored %d top sellers for %s", len(topSellers), date)
	}

	newsResult, err := c.news.Process(ctx, newsItems)
	if err != nil {
		log.Printf("[WARN] news dedup failed, bundle carries raw snapshot: %v", err)
		newsResult.NewItems = newsItems
	}

	highlights := prioritizeHighlights(newsResult.NewItems, c.cfg.MaxHighlights)

	bundle := Bundle{
		CollectionTimestamp: c.nowFn().Format(time.RFC3339),
		Date:                date,
		Signals: Signals{
			TopSellers: deltas,
			Trending:   trending,
			NewsItems:  newsResult.NewItems,
			Highlights: highlights,
		},
		Metadata: Metadata{
			TotalSignals:    len(deltas) + len(trending) + len(newsResult.NewItems),
			TopSellersCount: len(deltas),
			TrendingCount:   len(trending),
			NewsCount:       len(newsResult.NewItems),
			HighlightsCount: len(highlights),
		},
	}

	if err := writeJSON(c.artifacts.Signals(), bundle); err != nil {
		return fmt.Errorf("write signals bundle: %w", err)
	}
	log.Printf("[INFO] signals bundle written: %d total signals", bundle.Metadata.TotalSignals)
	return nil
}

// prioritizeHighlights picks up to maxItems articles, priority sources
// first, newest within each group
func prioritizeHighlights(items []fetcher.NewsItem, maxItems int) []fetcher.NewsItem {
	sorted := make([]fetcher.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Published.After(sorted[j].Published)
	})
	if len(sorted) > maxItems {
		sorted = sorted[:maxItems]
	}
	return sorted
}

// LoadBundle reads a signals bundle artifact
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config dirs
	if err != nil {
		return nil, fmt.Errorf("read signals bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse signals bundle: %w", err)
	}
	return &b, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // artifact is not sensitive
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
