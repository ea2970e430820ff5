package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv   = "NEWSDIGEST_CONFIG"
	databasePathEnv = "NEWSDIGEST_DB"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Retention  RetentionConfig  `yaml:"retention"`
	Sources    []SourceConfig   `yaml:"sources"`
	Families   []FamilyConfig   `yaml:"families"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GeminiConfig defines how to contact the Gemini API and how hard the
// global throttle brakes.
type GeminiConfig struct {
	Model              string `yaml:"model"`
	APIKey             string `yaml:"apiKey"`
	MinIntervalSeconds int    `yaml:"minIntervalSeconds"`
	BaseBackoffSeconds int    `yaml:"baseBackoffSeconds"`
	MaxRetries         int    `yaml:"maxRetries"`
}

// MinInterval resolves the configured throttle cooldown.
func (g GeminiConfig) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalSeconds) * time.Second
}

// BaseBackoff resolves the configured first retry delay.
func (g GeminiConfig) BaseBackoff() time.Duration {
	return time.Duration(g.BaseBackoffSeconds) * time.Second
}

// SchedulerConfig defines when refresh cycles run and the quiet-hours
// window during which scheduled runs are skipped.
type SchedulerConfig struct {
	IntervalMinutes int    `yaml:"intervalMinutes"`
	AutoRefresh     bool   `yaml:"autoRefresh"`
	Timezone        string `yaml:"timezone"`
	QuietStartHour  int    `yaml:"quietStartHour"`
	QuietEndHour    int    `yaml:"quietEndHour"`

	location *time.Location `yaml:"-"`
}

// Interval resolves the refresh period.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// RankingConfig bounds the selection stage.
type RankingConfig struct {
	MaxSelect int `yaml:"maxSelect"`
}

// EnrichmentConfig bounds prompt inputs and the failure fallback.
type EnrichmentConfig struct {
	FallbackChars int `yaml:"fallbackChars"`
	MaxComments   int `yaml:"maxComments"`
}

// RetentionConfig controls how long persisted articles are kept.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// Horizon resolves the retention window.
func (r RetentionConfig) Horizon() time.Duration {
	return time.Duration(r.Days) * 24 * time.Hour
}

// SourceConfig declares one upstream source seeded into storage at startup.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	URL      string `yaml:"url"`
	Family   string `yaml:"family"`
	Disabled bool   `yaml:"disabled"`
}

// FamilyConfig describes one independently refreshed source family.
type FamilyConfig struct {
	Name                string `yaml:"name"`
	Criteria            string `yaml:"criteria"`
	SkipPrefix          int    `yaml:"skipPrefix"`
	Workers             int    `yaml:"workers"`
	FetchDetail         bool   `yaml:"fetchDetail"`
	DiscussionSummaries bool   `yaml:"discussionSummaries"`
}

// Load reads YAML configuration (if present) over the defaults and applies
// environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Families) == 0 {
		cfg.Families = defaultConfig().Families
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Path: "newsdigest.db"},
		Gemini: GeminiConfig{
			Model:              "gemini-2.5-flash",
			MinIntervalSeconds: 10,
			BaseBackoffSeconds: 4,
			MaxRetries:         5,
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 120,
			AutoRefresh:     true,
			Timezone:        defaultTimezone,
			QuietStartHour:  23,
			QuietEndHour:    6,
			location:        tz,
		},
		Ranking:    RankingConfig{MaxSelect: 10},
		Enrichment: EnrichmentConfig{FallbackChars: 500, MaxComments: 50},
		Retention:  RetentionConfig{Days: 7},
		Families: []FamilyConfig{
			{Name: "rss", Criteria: "titles", Workers: 3, FetchDetail: true},
			{
				Name:                "community",
				Criteria:            "engagement",
				SkipPrefix:          3,
				Workers:             10,
				FetchDetail:         true,
				DiscussionSummaries: true,
			},
		},
	}
}
