package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Engine struct {
		Thresholds         map[int]float64 `yaml:"thresholds"`     // percent per window
		SanityCaps         map[int]float64 `yaml:"sanity_caps"`    // percent per window
		HighSeverity       map[int]float64 `yaml:"high_severity"`  // percent per window
		ExtremeMultiplier  float64         `yaml:"extreme_multiplier"`
		Cooldown           time.Duration   `yaml:"cooldown"`
		ReferenceTolerance time.Duration   `yaml:"reference_tolerance"`
		MaxTickReturn      float64         `yaml:"max_tick_return"`
		ZScoreLimit        float64         `yaml:"zscore_limit"`
		FlushInterval      time.Duration   `yaml:"flush_interval"`
		FlushBackoff       time.Duration   `yaml:"flush_backoff"`
		LedgerRetention    time.Duration   `yaml:"ledger_retention"`
		AlertBuffer        int             `yaml:"alert_buffer"`
	} `yaml:"engine"`
	Persistence struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"persistence"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		TicksTopic  string   `yaml:"ticks_topic"`
		AlertsTopic string   `yaml:"alerts_topic"`
		Consumer    struct {
			GroupID    string `yaml:"group_id"`
			Workers    int    `yaml:"workers"`
			BufferSize int    `yaml:"buffer_size"`
			MinBytes   int    `yaml:"min_bytes"`
			MaxBytes   int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Feed struct {
		URL            string        `yaml:"url"`
		APIKey         string        `yaml:"api_key"`
		Pairs          []string      `yaml:"pairs"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("FEED_PAIRS"); v != "" {
		c.Feed.Pairs = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TICKS_TOPIC"); v != "" {
		c.Kafka.TicksTopic = v
	}
	if v := os.Getenv("PERSISTENCE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Persistence.Enabled = b
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Feed.URL == "" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one tick source (feed.url or kafka.brokers) is required")
	}
	if c.Persistence.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when persistence is enabled")
	}
	for w, cap := range c.Engine.SanityCaps {
		if th, ok := c.Engine.Thresholds[w]; ok && cap <= th {
			return fmt.Errorf("engine.sanity_caps[%d] must exceed the threshold", w)
		}
	}
	return nil
}
