package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// what location the day/week boundaries are computed in
	Timezone string `toml:"timezone"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StorageBackend string `toml:"storage_backend"`
	CacheEnabled   bool   `toml:"cache_enabled"`
	CacheSizeMB    int    `toml:"cache_size_mb"`
	CacheTTL       string `toml:"cache_ttl"`
	// redis
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`
	RedisKeyPrefix string `toml:"redis_key_prefix"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// sqlite
	SQLitePath string `toml:"sqlite_path"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// order notifications
	NotifyMode        string `toml:"notify_mode"`
	NotifyFunctionURL string `toml:"notify_function_url"`
	NotifyFromEmail   string `toml:"notify_from_email"`
	NotifyTimeout     string `toml:"notify_timeout"`
	// http
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	AllowedOrigins              []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		if cfg != nil {
			cfg.Environment = "development"
		}
	case "prod", "production":
		cfg = t.Production
		if cfg != nil {
			cfg.Environment = "production"
		}
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] table in config", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the validated table for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	return FromToml(&t, env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return FromToml(&t, env)
}

func FromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StorageBackend == "" {
		c.StorageBackend = BackendMemory
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.CacheSizeMB == 0 {
		c.CacheSizeMB = 8
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 10
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			errs = append(errs, errors.New("redis backend needs redis_host and redis_port"))
		}
	case BackendPostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			errs = append(errs, errors.New("postgres backend needs postgres_host and postgres_db_name"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite backend needs sqlite_path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend: %q", c.StorageBackend))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration(c.CacheTTL); err != nil {
		errs = append(errs, fmt.Errorf("cache_ttl: %w", err))
	}
	if _, err := parseDuration(c.NotifyTimeout); err != nil {
		errs = append(errs, fmt.Errorf("notify_timeout: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheTTLDuration is 0 (no expiry) when cache_ttl is not set.
func (c *Config) CacheTTLDuration() time.Duration {
	d, _ := parseDuration(c.CacheTTL)
	return d
}

func (c *Config) NotifyTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.NotifyTimeout)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
