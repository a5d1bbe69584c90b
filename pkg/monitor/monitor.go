// Package monitor runs the periodic review and discussion watch cycle for
// a configured app: fetch snapshots, deduplicate, notify about new items,
// and fire the gated AI summary when due.
package monitor

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/fetcher"
	"github.com/nightfeed/nightfeed/pkg/gate"
	"github.com/nightfeed/nightfeed/pkg/store"
	"github.com/nightfeed/nightfeed/pkg/summary"
)

// SteamSource provides the raw snapshots and app metadata
type SteamSource interface {
	FetchReviews(ctx context.Context, appID int64, maxItems int) ([]store.Review, error)
	FetchDiscussions(ctx context.Context, appID int64, maxItems int) ([]store.Discussion, error)
	FetchGameName(ctx context.Context, appID int64) string
}

// Notifier delivers best-effort operator notifications
type Notifier interface {
	TrySend(ctx context.Context, message string)
}

// Summarizer produces the gated AI summary
type Summarizer interface {
	Generate(ctx context.Context, gameName string) (*summary.Result, error)
}

// Totals exposes the aggregate counts used in notifications
type Totals interface {
	ReviewTotals(ctx context.Context) (negative, positive int64, err error)
	GetCursor(ctx context.Context, key string) (string, bool, error)
}

// Monitor owns one app's watch cycle. All cycle state lives here, fetched
// game name included, nothing is process-global.
type Monitor struct {
	cfg         config.MonitorConfig
	steam       SteamSource
	reviews     *fetcher.Reviews
	discussions *fetcher.Discussions
	totals      Totals
	notifier    Notifier
	summarizer  Summarizer
	summaryGate *gate.Gate

	gameName string // resolved once per process on first use
	nowFn    func() time.Time
}

// New creates a monitor. The summary gate starts forced so every process
// restart produces one summary evaluation regardless of elapsed time, and
// its last-fire time is restored from the summary cursor when present.
func New(cfg config.MonitorConfig, sumCfg config.SummaryConfig, steam SteamSource, totals Totals,
	reviews *fetcher.Reviews, discussions *fetcher.Discussions, notifier Notifier, summarizer Summarizer) *Monitor {

	g := gate.New(sumCfg.Enabled, sumCfg.APIKey != "", sumCfg.Interval)
	g.Force()

	if val, ok, err := totals.GetCursor(context.Background(), summary.CursorKey); err == nil && ok {
		if ts, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			g.RestoreLastFire(time.Unix(ts, 0))
		}
	}

	return &Monitor{
		cfg:         cfg,
		steam:       steam,
		reviews:     reviews,
		discussions: discussions,
		totals:      totals,
		notifier:    notifier,
		summarizer:  summarizer,
		summaryGate: g,
		nowFn:       time.Now,
	}
}

// Run executes one full watch cycle. Individual failures are logged and
// the rest of the cycle continues, the outer loop must always survive.
func (m *Monitor) Run(ctx context.Context) {
	name := m.resolveGameName(ctx)

	m.runReviews(ctx, name)
	m.runDiscussions(ctx, name)
	m.runSummary(ctx, name)
}

func (m *Monitor) resolveGameName(ctx context.Context) string {
	if m.gameName == "" {
		m.gameName = m.steam.FetchGameName(ctx, m.cfg.AppID)
	}
	return m.gameName
}

func (m *Monitor) runReviews(ctx context.Context, name string) {
	snapshot, err := m.steam.FetchReviews(ctx, m.cfg.AppID, m.cfg.MaxReviews)
	if err != nil {
		log.Printf("[WARN] review fetch failed: %v", err)
		return
	}

	result, err := m.reviews.Process(ctx, snapshot)
	if err != nil {
		log.Printf("[WARN] review processing failed: %v", err)
		return
	}

	newPos, newNeg := 0, 0
	for _, r := range result.NewItems {
		if r.VotedUp {
			newPos++
		} else {
			newNeg++
		}
	}

	if newPos+newNeg == 0 && !m.cfg.NotifyOnZeroNew {
		log.Printf("[INFO] no new reviews")
		return
	}

	totalNeg, totalPos, err := m.totals.ReviewTotals(ctx)
	if err != nil {
		log.Printf("[WARN] review totals unavailable: %v", err)
	}

	var msg string
	if result.IsFirstRun {
		msg = fmt.Sprintf("**%s** (app %d) - Reviews Initial Run\nLoaded %d initial reviews\n-%d / +%d\nUTC: %s",
			name, m.cfg.AppID, newPos+newNeg, newNeg, newPos, m.timestamp())
	} else {
		msg = fmt.Sprintf("**%s** (app %d)\nNEW: -%d / +%d\nTOTAL: -%d / +%d\nUTC: %s",
			name, m.cfg.AppID, newNeg, newPos, totalNeg, totalPos, m.timestamp())
	}
	m.notifier.TrySend(ctx, msg)
	log.Printf("[INFO] review notification sent: new=%d total=%d", newPos+newNeg, totalPos+totalNeg)
}

func (m *Monitor) runDiscussions(ctx context.Context, name string) {
	snapshot, err := m.steam.FetchDiscussions(ctx, m.cfg.AppID, m.cfg.MaxDiscussions)
	if err != nil {
		log.Printf("[WARN] discussion fetch failed: %v", err)
		return
	}

	result, err := m.discussions.Process(ctx, snapshot)
	if err != nil {
		log.Printf("[WARN] discussion processing failed: %v", err)
		return
	}

	// pinned topics are stored but not announced
	var unpinned []store.Discussion
	for _, d := range result.NewItems {
		if !d.Pinned {
			unpinned = append(unpinned, d)
		}
	}

	if len(unpinned) == 0 && !m.cfg.NotifyOnZeroNew {
		log.Printf("[INFO] no new discussions")
		return
	}

	var msg string
	if result.IsFirstRun {
		msg = fmt.Sprintf("**%s** (app %d) - Discussions Initial Run\nLoaded %d initial discussions\nUTC: %s",
			name, m.cfg.AppID, len(unpinned), m.timestamp())
	} else {
		msg = m.discussionDigest(name, unpinned)
	}
	m.notifier.TrySend(ctx, msg)
	log.Printf("[INFO] discussion notification sent: new=%d", len(unpinned))
}

// discussionDigest lists up to 5 new topics with author, snippet and link
func (m *Monitor) discussionDigest(name string, discs []store.Discussion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (app %d) - New Discussions\n%d new discussion(s)\n\n", name, m.cfg.AppID, len(discs))

	limit := len(discs)
	if limit > 5 {
		limit = 5
	}
	for i, d := range discs[:limit] {
		title := d.Title
		if len(title) > 100 {
			title = title[:100]
		}
		fmt.Fprintf(&sb, "%d. **%s**\n   By: %s\n", i+1, title, d.AuthorName)
		if d.Snippet != "" {
			snippet := d.Snippet
			if len(snippet) > 150 {
				snippet = snippet[:150]
			}
			fmt.Fprintf(&sb, "   %s...\n", snippet)
		}
		fmt.Fprintf(&sb, "   https://steamcommunity.com/app/%d/discussions/0/%s/\n\n", m.cfg.AppID, d.GID)
	}
	if len(discs) > limit {
		fmt.Fprintf(&sb, "... and %d more\n\n", len(discs)-limit)
	}

	sb.WriteString("UTC: " + m.timestamp())
	return sb.String()
}

func (m *Monitor) runSummary(ctx context.Context, name string) {
	now := m.nowFn()
	if !m.summaryGate.ShouldFire(now) {
		return
	}

	result, err := m.summarizer.Generate(ctx, name)
	if err != nil {
		// keep the force pending so a failed attempt retries next cycle
		log.Printf("[WARN] summary generation failed: %v", err)
		return
	}
	m.summaryGate.ClearForce()

	if result == nil {
		return // nothing to analyze, evaluate again next cycle
	}
	m.summaryGate.MarkFired(now)

	window := "since the last check"
	if result.FirstRun {
		window = "initial window"
	}
	msg := fmt.Sprintf("**%s** - AI Community Summary (%s)\nAnalyzed %d reviews, %d discussions\n\n%s",
		name, window, result.ReviewCount, result.DiscussionCount, result.Summary)
	m.notifier.TrySend(ctx, msg)
	log.Printf("[INFO] summary notification sent")
}

func (m *Monitor) timestamp() string {
	return m.nowFn().UTC().Format("2006-01-02 15:04")
}
