package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Import     ImportConfig     `yaml:"import"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size" env:"WORKER_POOL_SIZE"`
}

// PushConfig holds the VAPID keys for web push notifications.
// Notifications are disabled when either key is empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" env:"VAPID_PUBLIC_KEY"`
	PrivateKey string `yaml:"vapid_private_key" env:"VAPID_PRIVATE_KEY"`
	Subject    string `yaml:"subject" env:"VAPID_SUBJECT"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether push notifications can be sent.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" env:"PORT"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string        `yaml:"driver" env:"DB_DRIVER"`
	DSN                    string        `yaml:"dsn" env:"DB_DSN"`
	MaxOpenConns           int           `yaml:"max_open_conns"`
	MaxIdleConns           int           `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int           `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string        `yaml:"log_level"`
	OpTimeoutSeconds       int           `yaml:"op_timeout_seconds" env:"DB_OP_TIMEOUT_SECONDS"`
	OpTimeout              time.Duration `yaml:"-"`
}

// RedisConfig enables distributed seat/employee locks when Address is set.
type RedisConfig struct {
	Address        string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db"`
	LockTTLSeconds int           `yaml:"lock_ttl_seconds"`
	LockTTL        time.Duration `yaml:"-"`
}

// ImportConfig controls spreadsheet uploads and reconciliation runs.
type ImportConfig struct {
	UploadDir   string `yaml:"upload_dir" env:"IMPORT_UPLOAD_DIR"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	SampleRows  int    `yaml:"sample_rows"`
	Actor       string `yaml:"actor"`

	// Uploads analyzed but never executed are removed after this long.
	StagedTTLMinutes int           `yaml:"staged_ttl_minutes"`
	StagedTTL        time.Duration `yaml:"-"`
}

// LogConfig selects the log level and output format ("json" or "text").
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads the configuration from the given path and applies
// environment overrides on top of it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables and defaults only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration suitable for local development against SQLite.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "file:seats.db?_foreign_keys=on"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.OpTimeoutSeconds <= 0 {
		cfg.Database.OpTimeoutSeconds = 10
	}
	cfg.Database.OpTimeout = time.Duration(cfg.Database.OpTimeoutSeconds) * time.Second

	if cfg.Redis.LockTTLSeconds <= 0 {
		cfg.Redis.LockTTLSeconds = 30
	}
	cfg.Redis.LockTTL = time.Duration(cfg.Redis.LockTTLSeconds) * time.Second

	if cfg.Import.UploadDir == "" {
		cfg.Import.UploadDir = "uploads"
	}
	if cfg.Import.MaxUploadMB <= 0 {
		cfg.Import.MaxUploadMB = 10
	}
	if cfg.Import.SampleRows <= 0 {
		cfg.Import.SampleRows = 5
	}
	if cfg.Import.Actor == "" {
		cfg.Import.Actor = "excel_import"
	}
	if cfg.Import.StagedTTLMinutes <= 0 {
		cfg.Import.StagedTTLMinutes = 60
	}
	cfg.Import.StagedTTL = time.Duration(cfg.Import.StagedTTLMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
