// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/campussearch/crawler/internal/crawler"
)

// Backend names accepted by ledger.backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Extract ExtractConfig `mapstructure:"extract"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlConfig governs the frontier and fetch pipeline for this process.
type CrawlConfig struct {
	Seeds               []string `mapstructure:"seeds"`
	Discipline          string   `mapstructure:"discipline"`
	MaxDepth            int      `mapstructure:"max_depth"`
	MaxPages            int      `mapstructure:"max_pages"`
	Concurrency         int      `mapstructure:"concurrency"`
	UserAgent           string   `mapstructure:"user_agent"`
	RespectRobots       bool     `mapstructure:"respect_robots"`
	FetchTimeoutSeconds int      `mapstructure:"fetch_timeout_seconds"`
	PerDomainRPS        float64  `mapstructure:"per_domain_rps"`
	PerDomainBurst      int      `mapstructure:"per_domain_burst"`
}

// LedgerConfig selects the dedup ledger backend and its connection
// parameters. The backend is chosen once at startup and fixed for the
// process's lifetime.
type LedgerConfig struct {
	Backend          string `mapstructure:"backend"`
	FilePath         string `mapstructure:"file_path"`
	SQLitePath       string `mapstructure:"sqlite_path"`
	RedisURL         string `mapstructure:"redis_url"`
	RedisKeyPrefix   string `mapstructure:"redis_key_prefix"`
	TTLSeconds       int    `mapstructure:"ttl_seconds"`
	OpTimeoutSeconds int    `mapstructure:"op_timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// ExtractConfig holds link admission patterns applied before candidates
// reach the frontier.
type ExtractConfig struct {
	AllowPatterns []string `mapstructure:"allow_patterns"`
	DenyPatterns  []string `mapstructure:"deny_patterns"`
}

// ServerConfig controls the status/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// AutomaticEnv only surfaces keys viper already knows about, so even
	// value-less keys need a default registered for CRAWLD_* overrides to
	// reach Unmarshal.
	v.SetDefault("crawl.seeds", []string{})
	v.SetDefault("crawl.discipline", string(crawler.DisciplineDepth))
	v.SetDefault("crawl.max_depth", 0)
	v.SetDefault("crawl.max_pages", 0)
	v.SetDefault("crawl.concurrency", 8)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (compatible; campus-crawler/1.0)")
	v.SetDefault("crawl.respect_robots", true)
	v.SetDefault("crawl.fetch_timeout_seconds", 15)
	v.SetDefault("crawl.per_domain_rps", 1)
	v.SetDefault("crawl.per_domain_burst", 1)
	v.SetDefault("ledger.backend", BackendRedis)
	v.SetDefault("ledger.file_path", "seen_urls.txt")
	v.SetDefault("ledger.sqlite_path", "shared_urls.db")
	v.SetDefault("ledger.redis_url", "redis://localhost:6379/0")
	v.SetDefault("ledger.redis_key_prefix", "crawler:dupefilter")
	v.SetDefault("ledger.ttl_seconds", 0)
	v.SetDefault("ledger.op_timeout_seconds", 5)
	v.SetDefault("ledger.max_retries", 3)
	v.SetDefault("ledger.backoff_initial_ms", 250)
	v.SetDefault("ledger.backoff_max_ms", 5000)
	v.SetDefault("extract.allow_patterns", []string{})
	v.SetDefault("extract.deny_patterns", []string{
		`/login`, `/logout`, `/admin`,
		`\.pdf$`, `\.jpg$`, `\.png$`, `\.gif$`,
		`\.zip$`, `\.doc$`, `\.docx$`,
	})
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Crawl.Seeds) == 0 {
		return fmt.Errorf("crawl.seeds must not be empty")
	}
	switch crawler.Discipline(c.Crawl.Discipline) {
	case crawler.DisciplineBreadth, crawler.DisciplineDepth:
	default:
		return fmt.Errorf("crawl.discipline must be %q or %q, got %q",
			crawler.DisciplineBreadth, crawler.DisciplineDepth, c.Crawl.Discipline)
	}
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0")
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0")
	}
	if c.Crawl.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.fetch_timeout_seconds must be > 0")
	}

	switch c.Ledger.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("ledger.backend must be one of memory, file, sqlite, redis; got %q", c.Ledger.Backend)
	}
	if c.Ledger.Backend == BackendFile && c.Ledger.FilePath == "" {
		return fmt.Errorf("ledger.file_path must be set for the file backend")
	}
	if c.Ledger.Backend == BackendSQLite && c.Ledger.SQLitePath == "" {
		return fmt.Errorf("ledger.sqlite_path must be set for the sqlite backend")
	}
	if c.Ledger.Backend == BackendRedis && c.Ledger.RedisURL == "" {
		return fmt.Errorf("ledger.redis_url must be set for the redis backend")
	}
	if c.Ledger.TTLSeconds < 0 {
		return fmt.Errorf("ledger.ttl_seconds must be >= 0")
	}
	if c.Ledger.TTLSeconds > 0 && c.Ledger.Backend != BackendRedis {
		return fmt.Errorf("ledger.ttl_seconds is only supported by the redis backend")
	}
	if c.Ledger.OpTimeoutSeconds <= 0 {
		return fmt.Errorf("ledger.op_timeout_seconds must be > 0")
	}
	if c.Ledger.MaxRetries < 0 {
		return fmt.Errorf("ledger.max_retries must be >= 0")
	}

	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// TraversalDiscipline returns the configured discipline as a typed value.
func (c CrawlConfig) TraversalDiscipline() crawler.Discipline {
	return crawler.Discipline(c.Discipline)
}

// FetchTimeout converts the fetch timeout to a duration.
func (c CrawlConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// TTL converts the claim expiry to a duration.
func (c LedgerConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// OpTimeout bounds each ledger backend call.
func (c LedgerConfig) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutSeconds) * time.Second
}

// BackoffInitial is the first claim-retry delay.
func (c LedgerConfig) BackoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialMs) * time.Millisecond
}

// BackoffMax caps the claim-retry delay.
func (c LedgerConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMs) * time.Millisecond
}
