// Package summary generates periodic AI analysis of collected community
// feedback through an OpenAI-compatible endpoint.
package summary

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/store"
)

const systemPrompt = "You are a game community analyst who summarizes player feedback " +
	"to help developers understand community sentiment and key issues."

// CursorKey tracks the timestamp of the last successful summary
const CursorKey = "last_summary_timestamp"

// Store is the persistence surface the generator needs
type Store interface {
	GetCursor(ctx context.Context, key string) (string, bool, error)
	SetCursor(ctx context.Context, key, value string) error
	ReviewsSince(ctx context.Context, cutoff int64, limit int) ([]store.Review, error)
	DiscussionsSince(ctx context.Context, cutoff int64, limit int) ([]store.Discussion, error)
}

// Generator builds and delivers feedback summaries
type Generator struct {
	client *openai.Client
	store  Store
	cfg    config.SummaryConfig

	nowFn func() time.Time
}

// New creates a summary generator
func New(cfg config.SummaryConfig, st Store) *Generator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		store:  st,
		cfg:    cfg,
		nowFn:  time.Now,
	}
}

// Result is one generated summary with the window it covers
type Result struct {
	Summary         string
	ReviewCount     int
	DiscussionCount int
	FirstRun        bool // no prior summary cursor, lookback window used
}

// Generate queries feedback since the last summary cursor (or the lookback
// window when no cursor exists), produces the summary, and advances the
// cursor only after success. Returns nil when there is nothing to analyze.
func (g *Generator) Generate(ctx context.Context, gameName string) (*Result, error) {
	cutoff, firstRun := g.windowStart(ctx)

	reviews, err := g.store.ReviewsSince(ctx, cutoff, g.cfg.MaxInputItems)
	if err != nil {
		return nil, fmt.Errorf("load reviews for summary: %w", err)
	}
	discussions, err := g.store.DiscussionsSince(ctx, cutoff, g.cfg.MaxInputItems)
	if err != nil {
		return nil, fmt.Errorf("load discussions for summary: %w", err)
	}

	if len(reviews) == 0 && len(discussions) == 0 {
		log.Printf("[INFO] no new feedback to summarize")
		return nil, nil
	}

	prompt := buildPrompt(gameName, reviews, discussions, firstRun, g.cfg.LookbackDays)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: float32(g.cfg.Temperature),
		MaxTokens:   g.cfg.MaxChars * 4 / 3, // ~4 chars per token
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summary completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("summary completion returned no choices")
	}

	text := resp.Choices[0].Message.Content
	if utf8.RuneCountInString(text) > g.cfg.MaxChars {
		text = truncate(text, g.cfg.MaxChars-3) + "..."
	}
	log.Printf("[INFO] summary generated: %d reviews, %d discussions, tokens in=%d out=%d",
		len(reviews), len(discussions), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	// cursor advances only after a successful generation, a crash before
	// this point re-fires next cycle (at-least-once)
	now := g.nowFn().Unix()
	if err := g.store.SetCursor(ctx, CursorKey, strconv.FormatInt(now, 10)); err != nil {
		log.Printf("[WARN] failed to persist summary cursor: %v", err)
	}

	return &Result{
		Summary:         text,
		ReviewCount:     len(reviews),
		DiscussionCount: len(discussions),
		FirstRun:        firstRun,
	}, nil
}

// windowStart resolves the analysis window start. Cursor failures degrade
// to the lookback window rather than aborting.
func (g *Generator) windowStart(ctx context.Context) (cutoff int64, firstRun bool) {
	val, ok, err := g.store.GetCursor(ctx, CursorKey)
	if err != nil {
		log.Printf("[WARN] summary cursor unavailable, using lookback window: %v", err)
		ok = false
	}
	if ok {
		if ts, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			return ts, false
		}
		log.Printf("[WARN] invalid summary cursor %q, using lookback window", val)
	}
	return g.nowFn().Add(-time.Duration(g.cfg.LookbackDays) * 24 * time.Hour).Unix(), true
}

func buildPrompt(gameName string, reviews []store.Review, discussions []store.Discussion, firstRun bool, lookbackDays int) string {
	timeContext := "since the last check"
	if firstRun {
		timeContext = fmt.Sprintf("from the last %d days", lookbackDays)
	}

	var positive, negative []store.Review
	for _, r := range reviews {
		if r.VotedUp {
			positive = append(positive, r)
		} else {
			negative = append(negative, r)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the following NEW community feedback for %s %s.\n\n", gameName, timeContext)
	fmt.Fprintf(&sb, "REVIEWS (%d total: %d positive, %d negative):\n\n", len(reviews), len(positive), len(negative))

	sb.WriteString("POSITIVE REVIEWS:\n")
	writeReviews(&sb, positive, 30)
	sb.WriteString("\nNEGATIVE REVIEWS:\n")
	writeReviews(&sb, negative, 30)

	fmt.Fprintf(&sb, "\nDISCUSSIONS (%d topics):\n", len(discussions))
	limit := len(discussions)
	if limit > 40 {
		limit = 40
	}
	for _, d := range discussions[:limit] {
		fmt.Fprintf(&sb, "- %s (%d replies)\n", truncate(d.Title, 100), d.Replies)
		if d.Snippet != "" {
			fmt.Fprintf(&sb, "  %s\n", truncate(d.Snippet, 150))
		}
	}

	sb.WriteString(`
Please provide a comprehensive summary covering:
1. Best feedback and highlights (what players love)
2. Worst feedback and pain points (what players dislike)
3. Recurring problems or themes (mentioned multiple times)
4. Overall sentiment analysis (trend: improving/declining/stable)

Keep the summary under 1000 words and focus on actionable insights for developers.`)

	return sb.String()
}

func writeReviews(sb *strings.Builder, reviews []store.Review, limit int) {
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	for _, r := range reviews {
		text := r.Body
		if text == "" {
			text = "No text"
		}
		fmt.Fprintf(sb, "- %s\n", truncate(text, 200))
	}
}

// truncate cuts on a rune boundary so multi-byte text never splits mid-rune
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
