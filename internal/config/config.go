// Load envs from .env
// Load YAML config
// Override with env vars, apply defaults, validate

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	MarkerPolicySkip = "skip"
	MarkerPolicyStop = "stop"
)

type Schedule struct {
	Cron     string `yaml:"cron"`
	Keyword  string `yaml:"keyword"`
	City     string `yaml:"city"`
	Kind     string `yaml:"kind"`
	MaxPages int    `yaml:"max_pages"`
}

type Config struct {
	//Target site
	BaseURL   string `yaml:"base_url" env:"SCOUT_BASE_URL"`
	UserAgent string `yaml:"user_agent"`

	//Fetching
	FetchMode    string        `yaml:"fetch_mode" env:"SCOUT_FETCH_MODE"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	Headless     bool          `yaml:"headless"`
	BrowserPages int           `yaml:"browser_pages"`

	//Pagination
	PageDelayMin        time.Duration `yaml:"page_delay_min"`
	PageDelayMax        time.Duration `yaml:"page_delay_max"`
	MaxConsecutiveEmpty int           `yaml:"max_consecutive_empty"`
	MarkerPolicy        string        `yaml:"marker_policy"`
	EnrichWorkers       int           `yaml:"enrich_workers"`
	ExcludeKeywords     []string      `yaml:"exclude_keywords"`

	//Export
	DownloadsDir  string `yaml:"downloads_dir"`
	ExportFormat  string `yaml:"export_format"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	//Server
	Port              string        `yaml:"port" env:"PORT"`
	MaxConcurrentRuns int           `yaml:"max_concurrent_runs"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	RunTTL            time.Duration `yaml:"run_ttl"`

	//Logging
	LogFile  string `yaml:"log_file" env:"LOG_FILE"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	//Optional integrations, disabled when empty
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL       string `yaml:"redis_url" env:"REDIS_URL"`
	NATSURL        string `yaml:"nats_url" env:"NATS_URL"`
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Schedules []Schedule `yaml:"schedules"`
}

// Load reads .env, then the YAML file at path (a missing file is not an
// error), then environment overrides, and returns a validated Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Headless: true}

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.BaseURL, "SCOUT_BASE_URL")
	overrideString(&c.FetchMode, "SCOUT_FETCH_MODE")
	overrideString(&c.MarkerPolicy, "SCOUT_MARKER_POLICY")
	overrideString(&c.ExportFormat, "SCOUT_EXPORT_FORMAT")
	overrideString(&c.DownloadsDir, "SCOUT_DOWNLOADS_DIR")
	overrideString(&c.Port, "PORT")
	overrideString(&c.LogFile, "LOG_FILE")
	overrideString(&c.LogLevel, "LOG_LEVEL")
	overrideString(&c.DatabaseURL, "DATABASE_URL")
	overrideString(&c.RedisURL, "REDIS_URL")
	overrideString(&c.NATSURL, "NATS_URL")
	overrideString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	overrideString(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}

	if v := os.Getenv("SCOUT_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCOUT_FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}

	if v := os.Getenv("SCOUT_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCOUT_HEADLESS: %w", err)
		}
		c.Headless = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.BaseURL, "https://internshala.com")
	setDefault(&c.UserAgent, "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	setDefault(&c.FetchMode, FetchModeHTTP)
	setDefault(&c.MarkerPolicy, MarkerPolicySkip)
	setDefault(&c.DownloadsDir, "downloads")
	setDefault(&c.ExportFormat, "xlsx")
	setDefault(&c.ScreenshotDir, "logs/screenshots")
	setDefault(&c.Port, "8000")
	setDefault(&c.LogFile, "logs/jobscout.log")
	setDefault(&c.LogLevel, "info")

	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = time.Second
	}
	if c.PageDelayMin == 0 && c.PageDelayMax == 0 {
		c.PageDelayMin = time.Second
		c.PageDelayMax = 3 * time.Second
	}
	if c.MaxConsecutiveEmpty == 0 {
		c.MaxConsecutiveEmpty = 3
	}
	if c.EnrichWorkers == 0 {
		c.EnrichWorkers = 4
	}
	if c.BrowserPages == 0 {
		c.BrowserPages = 2
	}
	if c.MaxConcurrentRuns == 0 {
		c.MaxConcurrentRuns = 2
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = 30 * time.Minute
	}
	if c.RunTTL == 0 {
		c.RunTTL = 24 * time.Hour
	}
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return fmt.Errorf("fetch_mode must be %q or %q, got %q", FetchModeHTTP, FetchModeBrowser, c.FetchMode)
	}
	if c.MarkerPolicy != MarkerPolicySkip && c.MarkerPolicy != MarkerPolicyStop {
		return fmt.Errorf("marker_policy must be %q or %q, got %q", MarkerPolicySkip, MarkerPolicyStop, c.MarkerPolicy)
	}
	if c.FetchTimeout < 10*time.Second || c.FetchTimeout > 15*time.Second {
		return fmt.Errorf("fetch_timeout must be between 10s and 15s, got %s", c.FetchTimeout)
	}
	if c.PageDelayMin < 0 || c.PageDelayMax < c.PageDelayMin {
		return fmt.Errorf("invalid page delay range [%s, %s]", c.PageDelayMin, c.PageDelayMax)
	}
	if c.MaxConsecutiveEmpty < 1 {
		return fmt.Errorf("max_consecutive_empty must be >= 1")
	}
	if c.EnrichWorkers < 1 || c.BrowserPages < 1 || c.MaxConcurrentRuns < 1 {
		return fmt.Errorf("enrich_workers, browser_pages and max_concurrent_runs must be >= 1")
	}
	switch c.ExportFormat {
	case "xlsx", "csv", "pdf":
	default:
		return fmt.Errorf("export_format must be xlsx, csv or pdf, got %q", c.ExportFormat)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
