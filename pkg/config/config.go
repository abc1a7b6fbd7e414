package config

import (
	"fmt"
	"os"
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
		EdgeRateLimit   struct {
			Enabled bool    `yaml:"enabled"`
			Rate    float64 `yaml:"rate"`
			Burst   int     `yaml:"burst"`
		} `yaml:"edge_rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Cache struct {
		StaleFactor    int           `yaml:"stale_factor"`
		ReaperInterval time.Duration `yaml:"reaper_interval"`
	} `yaml:"cache"`
	RateLimit struct {
		Backend     string        `yaml:"backend"` // memory or redis
		MaxRequests int           `yaml:"max_requests"`
		Window      time.Duration `yaml:"window"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"ratelimit"`
	Providers struct {
		Primary   Provider `yaml:"primary"`
		Secondary Provider `yaml:"secondary"`
		Tertiary  Provider `yaml:"tertiary"`
	} `yaml:"providers"`
	TTL struct {
		Quote      time.Duration `yaml:"quote"`
		Historical time.Duration `yaml:"historical"`
		Sentiment  time.Duration `yaml:"sentiment"`
		News       time.Duration `yaml:"news"`
	} `yaml:"ttl"`
	History struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"history"`
	Events struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		BatchSize    int           `yaml:"batch_size"`
		Linger       time.Duration `yaml:"linger"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"events"`
	Stream struct {
		Enabled         bool          `yaml:"enabled"`
		Watchlist       []string      `yaml:"watchlist"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"stream"`
}

// Provider holds one upstream provider's connection settings.
type Provider struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
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

	c.applyDefaults()

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("PRIMARY_API_KEY"); v != "" {
		c.Providers.Primary.APIKey = v
	}
	if v := os.Getenv("SECONDARY_API_KEY"); v != "" {
		c.Providers.Secondary.APIKey = v
	}
	if v := os.Getenv("TERTIARY_API_KEY"); v != "" {
		c.Providers.Tertiary.APIKey = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Stream.Watchlist = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RateLimit.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.StaleFactor <= 0 {
		c.Cache.StaleFactor = 4
	}
	if c.Cache.ReaperInterval <= 0 {
		c.Cache.ReaperInterval = 5 * time.Minute
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 30
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.TTL.Quote <= 0 {
		c.TTL.Quote = 15 * time.Second
	}
	if c.TTL.Historical <= 0 {
		c.TTL.Historical = time.Hour
	}
	if c.TTL.Sentiment <= 0 {
		c.TTL.Sentiment = 5 * time.Minute
	}
	if c.TTL.News <= 0 {
		c.TTL.News = 30 * time.Minute
	}
	if c.Providers.Primary.Timeout <= 0 {
		c.Providers.Primary.Timeout = 5 * time.Second
	}
	if c.Providers.Secondary.Timeout <= 0 {
		c.Providers.Secondary.Timeout = 8 * time.Second
	}
	if c.Providers.Tertiary.Timeout <= 0 {
		c.Providers.Tertiary.Timeout = 12 * time.Second
	}
	if c.Stream.RefreshInterval <= 0 {
		c.Stream.RefreshInterval = 15 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
		return fmt.Errorf("ratelimit.backend must be 'memory' or 'redis', got '%s'", c.RateLimit.Backend)
	}
	if c.RateLimit.Backend == "redis" && c.RateLimit.Redis.Addr == "" {
		return fmt.Errorf("ratelimit.redis.addr is required for redis backend")
	}
	if c.Providers.Primary.BaseURL == "" {
		return fmt.Errorf("providers.primary.base_url is required")
	}
	if c.History.Enabled && c.History.Host == "" {
		return fmt.Errorf("history.host is required when history is enabled")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers cannot be empty when events are enabled")
	}
	if c.Stream.Enabled && len(c.Stream.Watchlist) == 0 {
		return fmt.Errorf("stream.watchlist cannot be empty when streaming is enabled")
	}
	return nil
}
