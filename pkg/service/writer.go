package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/pipeline"
	"github.com/nightfeed/nightfeed/pkg/trend"
)

const scriptSystemPrompt = `You are the writer of a daily game industry news podcast. ` +
	`Write a complete episode script in natural spoken language, ready to be read aloud. ` +
	`Structure: short intro with the date, store chart movement, notable trends, a deep dive ` +
	`segment on the day's featured topic, news highlights, and a brief sign-off. ` +
	`No markdown, no stage directions, no headers. Plain flowing text only.`

// wordsPerMinute is the speech rate used for duration estimates
const wordsPerMinute = 150

// Writer turns a signals bundle into a podcast script via an LLM
type Writer struct {
	cfg       config.WriterConfig
	client    *openai.Client
	artifacts pipeline.Artifacts
}

// NewWriter creates a writer service
func NewWriter(cfg config.WriterConfig, artifacts pipeline.Artifacts) *Writer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	return &Writer{cfg: cfg, client: openai.NewClientWithConfig(clientCfg), artifacts: artifacts}
}

// Run loads the signals bundle, analyzes trends, generates the script and
// writes the dated script artifact
func (w *Writer) Run(ctx context.Context, date string) error {
	bundle, err := LoadBundle(w.artifacts.Signals())
	if err != nil {
		return fmt.Errorf("load signals: %w", err)
	}
	log.Printf("[INFO] loaded %d top sellers, %d trending, %d news items",
		len(bundle.Signals.TopSellers), len(bundle.Signals.Trending), len(bundle.Signals.NewsItems))

	trendSummary := trend.Analyze(bundle.Signals.TopSellers, bundle.Signals.NewsItems)
	deepDive := trend.DeepDive(bundle.Signals.TopSellers, bundle.Signals.NewsItems)
	log.Printf("[INFO] detected trends:\n%s", trendSummary)

	prompt := w.buildPrompt(date, bundle, trendSummary, deepDive)

	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scriptSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   w.cfg.MaxTokens,
		Temperature: float32(w.cfg.Temperature),
	})
	if err != nil {
		return fmt.Errorf("script generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("script generation returned no choices")
	}
	script := strings.TrimSpace(resp.Choices[0].Message.Content)
	if script == "" {
		return fmt.Errorf("script generation returned empty content")
	}

	w.validateLength(script)

	scriptPath := w.artifacts.Script(date)
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o750); err != nil {
		return fmt.Errorf("create scripts dir: %w", err)
	}
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil { //nolint:gosec // artifact is not sensitive
		return fmt.Errorf("write script: %w", err)
	}
	log.Printf("[INFO] script saved to %s (%d words)", scriptPath, len(strings.Fields(script)))
	return nil
}

// validateLength estimates spoken duration and warns when the script is
// outside 70%-150% of the target
func (w *Writer) validateLength(script string) {
	words := len(strings.Fields(script))
	minutes := float64(words) / wordsPerMinute
	target := float64(w.cfg.TargetMinutes)

	switch {
	case minutes < target*0.7:
		log.Printf("[WARN] script may be too short: %.1f min estimated, %d min target", minutes, w.cfg.TargetMinutes)
	case minutes > target*1.5:
		log.Printf("[WARN] script may be too long: %.1f min estimated, %d min target", minutes, w.cfg.TargetMinutes)
	default:
		log.Printf("[INFO] script length ok: %.1f min estimated", minutes)
	}
}

func (w *Writer) buildPrompt(date string, bundle *Bundle, trendSummary string, deepDive *trend.DeepDiveTopic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write the episode script for %s.\n\n", date)

	sb.WriteString("TOP SELLERS:\n")
	for _, d := range bundle.Signals.TopSellers {
		if d.Change != nil {
			fmt.Fprintf(&sb, "#%d %s (change: %+d)\n", d.Rank, d.Name, *d.Change)
		} else {
			fmt.Fprintf(&sb, "#%d %s (new entry)\n", d.Rank, d.Name)
		}
	}

	sb.WriteString("\nNEW AND TRENDING:\n")
	for _, g := range bundle.Signals.Trending {
		sb.WriteString("- " + g.Name + "\n")
	}

	sb.WriteString("\nNEWS HIGHLIGHTS:\n")
	for _, item := range bundle.Signals.Highlights {
		fmt.Fprintf(&sb, "- [%s] %s\n", item.Source, item.Title)
	}

	sb.WriteString("\nDETECTED TRENDS:\n" + trendSummary + "\n")

	if deepDive != nil {
		sb.WriteString("\nDEEP DIVE TOPIC:\n")
		switch deepDive.Type {
		case "ranking_mover":
			fmt.Fprintf(&sb, "%s moved %+d positions and sits at #%d. Explore why.\n",
				deepDive.Game, deepDive.Change, deepDive.Rank)
		case "news_topic":
			fmt.Fprintf(&sb, "%q from %s. Discuss the story and its implications.\n",
				deepDive.Title, deepDive.Source)
		case "ranking_leader":
			fmt.Fprintf(&sb, "%s holds the #%d spot. Cover what keeps it there.\n",
				deepDive.Game, deepDive.Rank)
		}
	}

	fmt.Fprintf(&sb, "\nTarget length: about %d minutes of speech (%d words).\n",
		w.cfg.TargetMinutes, w.cfg.TargetMinutes*wordsPerMinute)
	return sb.String()
}
