package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/feed"
	"github.com/nightfeed/nightfeed/pkg/fetcher"
	"github.com/nightfeed/nightfeed/pkg/monitor"
	"github.com/nightfeed/nightfeed/pkg/notify"
	"github.com/nightfeed/nightfeed/pkg/pipeline"
	"github.com/nightfeed/nightfeed/pkg/scheduler"
	"github.com/nightfeed/nightfeed/pkg/service"
	"github.com/nightfeed/nightfeed/pkg/source"
	"github.com/nightfeed/nightfeed/pkg/store"
	"github.com/nightfeed/nightfeed/pkg/summary"
	"github.com/nightfeed/nightfeed/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`

	Collect struct{} `command:"collect" description:"run the collect stage and exit"`
	Write   struct{} `command:"write" description:"run the write stage and exit"`
	Publish struct{} `command:"publish" description:"run the publish stage and exit"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	color.NoColor = opts.NoColor
	setupLog(opts.Debug, secrets(cfg)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if cmd := parser.Active; cmd != nil {
		if err := runStage(ctx, cfg, cmd.Name); err != nil {
			log.Printf("[ERROR] %s stage failed: %v", cmd.Name, err)
			os.Exit(1)
		}
		return
	}

	if err := runDaemon(ctx, cfg, opts); err != nil {
		log.Printf("[ERROR] daemon failed: %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] shutdown complete")
}

// runStage executes a single pipeline stage, the unit the sequencer invokes
// as a subprocess
func runStage(ctx context.Context, cfg *config.Config, stage string) error {
	log.Printf("[INFO] starting %s stage, version %s", stage, revision)

	artifacts := pipeline.Artifacts{DataDir: cfg.Pipeline.DataDir, OutputDir: cfg.Pipeline.OutputDir}
	date := time.Now().Format("2006-01-02")

	switch stage {
	case "collect":
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		steam := source.NewSteam(cfg.Collector.FetchTimeout)
		rss := source.NewRSS(cfg.Collector.FetchTimeout)
		collector := service.NewCollector(cfg.Collector, steam, rss, fetcher.NewNews(st), st, artifacts)
		return collector.Run(ctx, date)

	case "write":
		return service.NewWriter(cfg.Writer, artifacts).Run(ctx, date)

	case "publish":
		tts := feed.NewTTSClient(cfg.Pipeline.TTSEndpoint, cfg.Pipeline.TTSTimeout)
		gen := feed.NewGenerator(cfg.Pipeline.FeedTitle, cfg.Pipeline.FeedDesc, cfg.Pipeline.FeedBaseURL, cfg.Pipeline.MaxEpisodes)
		return service.NewPublisher(cfg.Collector, tts, gen, artifacts).Run(ctx, date)

	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

// runDaemon starts the scheduler loops and the status server, blocking
// until the context is canceled
func runDaemon(ctx context.Context, cfg *config.Config, opts Opts) error {
	log.Printf("[INFO] starting nightfeed version %s", revision)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	notifier := notify.NewDiscord(cfg.Notifications.WebhookURL, cfg.Notifications.Enabled)

	var mon scheduler.MonitorJob
	if cfg.Monitor.Enabled {
		steam := source.NewSteam(cfg.Monitor.FetchTimeout)
		summarizer := summary.New(cfg.Summary, st)
		mon = monitor.New(cfg.Monitor, cfg.Summary, steam, st,
			fetcher.NewReviews(st), fetcher.NewDiscussions(st), notifier, summarizer)
	}

	artifacts := pipeline.Artifacts{DataDir: cfg.Pipeline.DataDir, OutputDir: cfg.Pipeline.OutputDir}
	runner := pipeline.NewRunner(cfg.Pipeline.MaxRetries, cfg.Pipeline.StageTimeout)
	stages := cfg.Pipeline.Stages
	if len(stages) == 0 {
		stages = defaultStages(opts.Config)
	}
	seq := pipeline.NewSequencer(runner, st, notifier, artifacts, stages)

	hour, minute, err := config.ParseRunAt(cfg.Pipeline.RunAt)
	if err != nil {
		return fmt.Errorf("parse run_at: %w", err)
	}

	sched := scheduler.New(seq, mon, scheduler.Config{
		RunAtHour:     hour,
		RunAtMinute:   minute,
		CheckInterval: cfg.Monitor.CheckInterval,
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, st, revision, opts.Debug)
	return srv.Run(ctx)
}

// defaultStages invokes the pipeline stages through this binary itself
func defaultStages(configPath string) []config.StageConfig {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	return []config.StageConfig{
		{Name: "collect", Command: []string{self, "collect", "-f", configPath}},
		{Name: "write", Command: []string{self, "write", "-f", configPath}},
		{Name: "publish", Command: []string{self, "publish", "-f", configPath}},
	}
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.New(store.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// secrets lists config values that must never appear in logs
func secrets(cfg *config.Config) []string {
	var secs []string
	if cfg.Notifications.WebhookURL != "" {
		secs = append(secs, cfg.Notifications.WebhookURL)
	}
	if cfg.Summary.APIKey != "" {
		secs = append(secs, cfg.Summary.APIKey)
	}
	if cfg.Writer.APIKey != "" {
		secs = append(secs, cfg.Writer.APIKey)
	}
	return secs
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
