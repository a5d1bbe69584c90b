package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/feed"
	"github.com/nightfeed/nightfeed/pkg/pipeline"
)

// Synthesizer turns script text into an audio file
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// FeedGenerator rebuilds the podcast feed index over the episodes directory
type FeedGenerator interface {
	Generate(episodesDir, outputPath string) error
}

// Publisher turns a script into a published episode: audio synthesis, feed
// index regeneration and old-episode pruning
type Publisher struct {
	cfg       config.CollectorConfig // retention settings live with the collector config
	tts       Synthesizer
	generator FeedGenerator
	artifacts pipeline.Artifacts
}

// NewPublisher creates a publisher service
func NewPublisher(cfg config.CollectorConfig, tts Synthesizer, generator FeedGenerator, artifacts pipeline.Artifacts) *Publisher {
	return &Publisher{cfg: cfg, tts: tts, generator: generator, artifacts: artifacts}
}

// Run loads the dated script, synthesizes the episode audio, regenerates
// the feed index and prunes episodes past retention. Pruning failures are
// logged only, the episode is already out.
func (p *Publisher) Run(ctx context.Context, date string) error {
	scriptPath := p.artifacts.Script(date)
	script, err := os.ReadFile(scriptPath) //nolint:gosec // path comes from config dirs
	if err != nil {
		return fmt.Errorf("load script %s: %w", scriptPath, err)
	}
	log.Printf("[INFO] loaded script (%d characters)", len(script))

	episodePath := p.artifacts.Episode(date)
	if err := p.tts.Synthesize(ctx, string(script), episodePath); err != nil {
		return fmt.Errorf("synthesize episode: %w", err)
	}

	episodesDir := filepath.Dir(episodePath)
	if err := p.generator.Generate(episodesDir, p.artifacts.FeedIndex()); err != nil {
		return fmt.Errorf("regenerate feed index: %w", err)
	}

	feed.PruneEpisodes(episodesDir, p.cfg.RetentionDays)

	log.Printf("[INFO] episode published: %s", episodePath)
	return nil
}
