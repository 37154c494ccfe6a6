package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone     = "UTC"
	configPathEnv       = "NEWSBRIEF_CONFIG"
	databaseDSNEnv      = "DATABASE_DSN"
	scoringEndpointEnv  = "SCORING_ENDPOINT"
	scoringAPIKeyEnv    = "SCORING_API_KEY"
	notifyWebhookURLEnv = "NOTIFY_WEBHOOK_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the document-store connection. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when ingestion runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// PipelineConfig bounds the harvest stage of each run.
type PipelineConfig struct {
	TimeWindowHours   int `yaml:"timeWindowHours"`
	MaxItemsPerSource int `yaml:"maxItemsPerSource"`
	Concurrency       int `yaml:"concurrency"`
}

// ScoringConfig defines how to contact the scoring oracle.
type ScoringConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	APIKey      string   `yaml:"apiKey"`
	MaxAttempts int      `yaml:"maxAttempts"`
	Topics      []string `yaml:"topics"`
}

// NotificationConfig wires the outbound webhook channel.
type NotificationConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	Channel    string `yaml:"channel"`
	Recipient  string `yaml:"recipient"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(scoringEndpointEnv); v != "" {
		c.Scoring.Endpoint = v
	}

	if v := os.Getenv(scoringAPIKeyEnv); v != "" {
		c.Scoring.APIKey = v
	}

	if v := os.Getenv(notifyWebhookURLEnv); v != "" {
		c.Notifications.WebhookURL = v
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

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Pipeline.TimeWindowHours > 0 {
		base.Pipeline.TimeWindowHours = override.Pipeline.TimeWindowHours
	}
	if override.Pipeline.MaxItemsPerSource > 0 {
		base.Pipeline.MaxItemsPerSource = override.Pipeline.MaxItemsPerSource
	}
	if override.Pipeline.Concurrency > 0 {
		base.Pipeline.Concurrency = override.Pipeline.Concurrency
	}

	if override.Scoring.Endpoint != "" {
		base.Scoring.Endpoint = override.Scoring.Endpoint
	}
	if override.Scoring.APIKey != "" {
		base.Scoring.APIKey = override.Scoring.APIKey
	}
	if override.Scoring.MaxAttempts > 0 {
		base.Scoring.MaxAttempts = override.Scoring.MaxAttempts
	}
	if len(override.Scoring.Topics) > 0 {
		base.Scoring.Topics = override.Scoring.Topics
	}

	if override.Notifications.WebhookURL != "" {
		base.Notifications.WebhookURL = override.Notifications.WebhookURL
	}
	if override.Notifications.Channel != "" {
		base.Notifications.Channel = override.Notifications.Channel
	}
	if override.Notifications.Recipient != "" {
		base.Notifications.Recipient = override.Notifications.Recipient
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Pipeline: PipelineConfig{
			TimeWindowHours:   24,
			MaxItemsPerSource: 50,
			Concurrency:       4,
		},
		Scoring: ScoringConfig{
			Endpoint:    "",
			MaxAttempts: 3,
			Topics:      []string{"artificial intelligence", "technology"},
		},
		Notifications: NotificationConfig{Channel: "webhook"},
		Logging:       LoggingConfig{Level: "info"},
	}
}
