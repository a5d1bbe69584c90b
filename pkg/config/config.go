package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=Status HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Status server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:nightfeed.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Monitor MonitorConfig `yaml:"monitor" json:"monitor" jsonschema:"description=Review and discussion monitoring configuration"`

	Summary SummaryConfig `yaml:"summary" json:"summary" jsonschema:"description=AI community summary configuration"`

	Collector CollectorConfig `yaml:"collector" json:"collector" jsonschema:"description=Signal collection configuration"`

	Writer WriterConfig `yaml:"writer" json:"writer" jsonschema:"description=Script writer LLM configuration"`

	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline" jsonschema:"description=Daily pipeline configuration"`

	Notifications struct {
		Enabled    bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable outbound notifications"`
		WebhookURL string `yaml:"webhook_url" json:"webhook_url" jsonschema:"description=Discord webhook URL (can use environment variable)"`
	} `yaml:"notifications" json:"notifications" jsonschema:"description=Notification sink configuration"`
}

// MonitorConfig holds settings for the review/discussion monitoring cycle
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable community monitoring"`
	AppID           int64         `yaml:"app_id" json:"app_id" jsonschema:"description=Store application id to monitor"`
	CheckInterval   time.Duration `yaml:"check_interval" json:"check_interval" jsonschema:"default=6h,description=Interval between monitoring cycles"`
	NotifyOnZeroNew bool          `yaml:"notify_on_zero_new" json:"notify_on_zero_new" jsonschema:"default=false,description=Send notifications even when nothing new was found"`
	MaxReviews      int           `yaml:"max_reviews" json:"max_reviews" jsonschema:"default=20,description=Reviews to request per cycle"`
	MaxDiscussions  int           `yaml:"max_discussions" json:"max_discussions" jsonschema:"default=20,description=Discussions to scan per cycle"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=HTTP timeout for snapshot fetches"`
}

// SummaryConfig holds settings for the periodic AI community summary
type SummaryConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable AI summary generation"`
	Endpoint      string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey        string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model         string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	Interval      time.Duration `yaml:"interval" json:"interval" jsonschema:"default=24h,description=Minimum interval between summaries"`
	LookbackDays  int           `yaml:"lookback_days" json:"lookback_days" jsonschema:"default=7,description=Days of history on first summary"`
	MaxInputItems int           `yaml:"max_input_items" json:"max_input_items" jsonschema:"default=100,description=Maximum reviews/discussions fed into the prompt"`
	MaxChars      int           `yaml:"max_chars" json:"max_chars" jsonschema:"default=1800,description=Maximum summary length in characters"`
	Temperature   float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,description=Temperature for response generation"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
}

// RSSSource describes one configured RSS/Atom feed
type RSSSource struct {
	Name     string `yaml:"name" json:"name" jsonschema:"required,description=Source name used as the seen-record tag"`
	URL      string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Language string `yaml:"language" json:"language" jsonschema:"description=Feed language"`
	Category string `yaml:"category" json:"category" jsonschema:"default=general,description=Feed category"`
	Priority int    `yaml:"priority" json:"priority" jsonschema:"default=0,description=Priority level, higher sources win highlight slots"`
}

// CollectorConfig holds settings for the signal collection stage
type CollectorConfig struct {
	MaxItemsPerSource int           `yaml:"max_items_per_source" json:"max_items_per_source" jsonschema:"default=50,description=RSS items to take per source"`
	MaxTopSellers     int           `yaml:"max_top_sellers" json:"max_top_sellers" jsonschema:"default=30,description=Top sellers to capture"`
	MaxTrending       int           `yaml:"max_trending" json:"max_trending" jsonschema:"default=20,description=Trending titles to capture"`
	MaxHighlights     int           `yaml:"max_highlights" json:"max_highlights" jsonschema:"default=20,description=RSS highlights to include in the bundle"`
	RankingsDaysBack  int           `yaml:"rankings_days_back" json:"rankings_days_back" jsonschema:"default=7,description=Days of ranking history to load for deltas"`
	RetentionDays     int           `yaml:"retention_days" json:"retention_days" jsonschema:"default=30,description=Days to keep rankings and seen records"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=HTTP timeout for source fetches"`
	Sources           []RSSSource   `yaml:"sources" json:"sources" jsonschema:"description=RSS sources to collect"`
}

// WriterConfig holds settings for the script generation stage
type WriterConfig struct {
	Endpoint      string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey        string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model         string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o,description=Model name"`
	MaxTokens     int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=4000,description=Maximum completion tokens"`
	Temperature   float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,description=Temperature for response generation"`
	TargetMinutes int           `yaml:"target_minutes" json:"target_minutes" jsonschema:"default=12,description=Target episode duration in minutes"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=120s,description=Request timeout"`
}

// StageConfig describes one pipeline stage invocation
type StageConfig struct {
	Name    string   `yaml:"name" json:"name" jsonschema:"required,description=Stage name"`
	Command []string `yaml:"command" json:"command" jsonschema:"required,description=Command and arguments to execute"`
}

// PipelineConfig holds settings for the daily pipeline
type PipelineConfig struct {
	RunAt        string        `yaml:"run_at" json:"run_at" jsonschema:"default=21:30,description=Daily run time in HH:MM (local)"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries" jsonschema:"default=3,description=Attempts per stage"`
	StageTimeout time.Duration `yaml:"stage_timeout" json:"stage_timeout" jsonschema:"default=10m,description=Per-attempt timeout for a stage"`
	DataDir      string        `yaml:"data_dir" json:"data_dir" jsonschema:"default=/data,description=Directory for intermediate artifacts"`
	OutputDir    string        `yaml:"output_dir" json:"output_dir" jsonschema:"default=/output,description=Directory for published artifacts"`
	Stages       []StageConfig `yaml:"stages" json:"stages" jsonschema:"description=Stage commands (defaults to collect/write/publish via own binary)"`
	TTSEndpoint  string        `yaml:"tts_endpoint" json:"tts_endpoint" jsonschema:"description=Text-to-speech service endpoint"`
	TTSTimeout   time.Duration `yaml:"tts_timeout" json:"tts_timeout" jsonschema:"default=5m,description=Timeout for audio synthesis"`
	FeedBaseURL  string        `yaml:"feed_base_url" json:"feed_base_url" jsonschema:"description=Public base URL for published episodes"`
	FeedTitle    string        `yaml:"feed_title" json:"feed_title" jsonschema:"default=Night Feed,description=Podcast feed title"`
	FeedDesc     string        `yaml:"feed_description" json:"feed_description" jsonschema:"default=Daily game news podcast,description=Podcast feed description"`
	MaxEpisodes  int           `yaml:"max_episodes" json:"max_episodes" jsonschema:"default=30,description=Episodes kept in the feed index"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// setDefaults fills zero values with sane defaults
func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:nightfeed.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Monitor.CheckInterval == 0 {
		c.Monitor.CheckInterval = 6 * time.Hour
	}
	if c.Monitor.MaxReviews == 0 {
		c.Monitor.MaxReviews = 20
	}
	if c.Monitor.MaxDiscussions == 0 {
		c.Monitor.MaxDiscussions = 20
	}
	if c.Monitor.FetchTimeout == 0 {
		c.Monitor.FetchTimeout = 30 * time.Second
	}

	if c.Summary.Model == "" {
		c.Summary.Model = "gpt-4o-mini"
	}
	if c.Summary.Interval == 0 {
		c.Summary.Interval = 24 * time.Hour
	}
	if c.Summary.LookbackDays == 0 {
		c.Summary.LookbackDays = 7
	}
	if c.Summary.MaxInputItems == 0 {
		c.Summary.MaxInputItems = 100
	}
	if c.Summary.MaxChars == 0 {
		c.Summary.MaxChars = 1800
	}
	if c.Summary.Temperature == 0 {
		c.Summary.Temperature = 0.7
	}
	if c.Summary.Timeout == 0 {
		c.Summary.Timeout = 60 * time.Second
	}

	if c.Collector.MaxItemsPerSource == 0 {
		c.Collector.MaxItemsPerSource = 50
	}
	if c.Collector.MaxTopSellers == 0 {
		c.Collector.MaxTopSellers = 30
	}
	if c.Collector.MaxTrending == 0 {
		c.Collector.MaxTrending = 20
	}
	if c.Collector.MaxHighlights == 0 {
		c.Collector.MaxHighlights = 20
	}
	if c.Collector.RankingsDaysBack == 0 {
		c.Collector.RankingsDaysBack = 7
	}
	if c.Collector.RetentionDays == 0 {
		c.Collector.RetentionDays = 30
	}
	if c.Collector.FetchTimeout == 0 {
		c.Collector.FetchTimeout = 30 * time.Second
	}

	if c.Writer.Model == "" {
		c.Writer.Model = "gpt-4o"
	}
	if c.Writer.MaxTokens == 0 {
		c.Writer.MaxTokens = 4000
	}
	if c.Writer.Temperature == 0 {
		c.Writer.Temperature = 0.7
	}
	if c.Writer.TargetMinutes == 0 {
		c.Writer.TargetMinutes = 12
	}
	if c.Writer.Timeout == 0 {
		c.Writer.Timeout = 120 * time.Second
	}

	if c.Pipeline.RunAt == "" {
		c.Pipeline.RunAt = "21:30"
	}
	if c.Pipeline.MaxRetries == 0 {
		c.Pipeline.MaxRetries = 3
	}
	if c.Pipeline.StageTimeout == 0 {
		c.Pipeline.StageTimeout = 10 * time.Minute
	}
	if c.Pipeline.DataDir == "" {
		c.Pipeline.DataDir = "/data"
	}
	if c.Pipeline.OutputDir == "" {
		c.Pipeline.OutputDir = "/output"
	}
	if c.Pipeline.TTSTimeout == 0 {
		c.Pipeline.TTSTimeout = 5 * time.Minute
	}
	if c.Pipeline.FeedTitle == "" {
		c.Pipeline.FeedTitle = "Night Feed"
	}
	if c.Pipeline.FeedDesc == "" {
		c.Pipeline.FeedDesc = "Daily game news podcast"
	}
	if c.Pipeline.MaxEpisodes == 0 {
		c.Pipeline.MaxEpisodes = 30
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate monitor config
	if cfg.Monitor.Enabled {
		if cfg.Monitor.AppID == 0 {
			return fmt.Errorf("monitor.app_id is required when monitoring is enabled")
		}
		if cfg.Monitor.CheckInterval < time.Minute {
			return fmt.Errorf("monitor.check_interval must be at least 1 minute")
		}
	}

	// validate summary config
	if cfg.Summary.Enabled {
		if cfg.Summary.Model == "" {
			return fmt.Errorf("summary.model is required when summaries are enabled")
		}
		if cfg.Summary.Temperature < 0 || cfg.Summary.Temperature > 2 {
			return fmt.Errorf("summary.temperature must be between 0 and 2")
		}
		if cfg.Summary.LookbackDays < 1 {
			return fmt.Errorf("summary.lookback_days must be at least 1")
		}
		if cfg.Summary.MaxChars < 100 {
			return fmt.Errorf("summary.max_chars must be at least 100")
		}
	}

	// validate collector config
	if cfg.Collector.RetentionDays < 1 {
		return fmt.Errorf("collector.retention_days must be at least 1")
	}
	for i, src := range cfg.Collector.Sources {
		if src.Name == "" {
			return fmt.Errorf("collector.sources[%d].name is required", i)
		}
		if src.URL == "" {
			return fmt.Errorf("collector.sources[%d].url is required", i)
		}
	}

	// validate pipeline config
	if _, _, err := ParseRunAt(cfg.Pipeline.RunAt); err != nil {
		return fmt.Errorf("pipeline.run_at: %w", err)
	}
	if cfg.Pipeline.MaxRetries < 1 {
		return fmt.Errorf("pipeline.max_retries must be at least 1")
	}
	if cfg.Pipeline.StageTimeout < time.Second {
		return fmt.Errorf("pipeline.stage_timeout must be at least 1 second")
	}
	for i, st := range cfg.Pipeline.Stages {
		if st.Name == "" {
			return fmt.Errorf("pipeline.stages[%d].name is required", i)
		}
		if len(st.Command) == 0 {
			return fmt.Errorf("pipeline.stages[%d].command is required", i)
		}
	}

	// validate notifications config
	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		return fmt.Errorf("notifications.webhook_url is required when notifications are enabled")
	}

	return nil
}

// ParseRunAt parses an "HH:MM" wall-clock time
func ParseRunAt(s string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, minute, nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetMonitorConfig returns monitoring configuration
func (c *Config) GetMonitorConfig() MonitorConfig {
	return c.Monitor
}

// GetSummaryConfig returns AI summary configuration
func (c *Config) GetSummaryConfig() SummaryConfig {
	return c.Summary
}

// GetCollectorConfig returns collector configuration
func (c *Config) GetCollectorConfig() CollectorConfig {
	return c.Collector
}

// GetWriterConfig returns script writer configuration
func (c *Config) GetWriterConfig() WriterConfig {
	return c.Writer
}

// GetPipelineConfig returns pipeline configuration
func (c *Config) GetPipelineConfig() PipelineConfig {
	return c.Pipeline
}
