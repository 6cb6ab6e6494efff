// Configuration management
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the service configuration
type Config struct {
	Version string        `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Tracing TracingConfig `yaml:"tracing"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// ServerConfig represents HTTP server settings
type ServerConfig struct {
	HTTPAddr     string        `yaml:"http_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// DataConfig points at the two source CSV files
type DataConfig struct {
	ChargebacksPath  string `yaml:"chargebacks_path"`
	TransactionsPath string `yaml:"transactions_path"`
}

// CacheConfig represents the optional Redis response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"pool_size"`
	ReportTTL time.Duration `yaml:"report_ttl"`
}

// AuthConfig represents JWT authentication settings
type AuthConfig struct {
	Enabled   bool         `yaml:"enabled"`
	JWTSecret string       `yaml:"jwt_secret"`
	Users     []UserConfig `yaml:"users"`
}

// UserConfig is one statically configured dashboard user
type UserConfig struct {
	Email        string `yaml:"email"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	Role         string `yaml:"role"`          // admin, analyst, viewer
}

// TracingConfig represents OpenTelemetry settings
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
	Environment  string  `yaml:"environment"`
}

// LimitsConfig represents API rate limiting settings
type LimitsConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	MaxExportRows     int `yaml:"max_export_rows"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			HTTPAddr:     "0.0.0.0:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Data: DataConfig{
			ChargebacksPath:  "./data/chargebacks.csv",
			TransactionsPath: "./data/transactions_daily.csv",
		},
		Cache: CacheConfig{
			Enabled:   false,
			Addr:      "127.0.0.1:6379",
			PoolSize:  10,
			ReportTTL: 5 * time.Minute,
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			OTLPEndpoint: "127.0.0.1:4317",
			SampleRate:   1.0,
			Environment:  "development",
		},
		Limits: LimitsConfig{
			RequestsPerMinute: 600,
			MaxExportRows:     10000,
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	configPath := os.Getenv("INSIGHTS_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return loadFromFile(configPath)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// loadFromFile loads config from YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("INSIGHTS_HTTP_ADDR"); addr != "" {
		cfg.Server.HTTPAddr = addr
	}
	if path := os.Getenv("INSIGHTS_CHARGEBACKS_CSV"); path != "" {
		cfg.Data.ChargebacksPath = path
	}
	if path := os.Getenv("INSIGHTS_TRANSACTIONS_CSV"); path != "" {
		cfg.Data.TransactionsPath = path
	}
	if addr := os.Getenv("INSIGHTS_REDIS_ADDR"); addr != "" {
		cfg.Cache.Addr = addr
		cfg.Cache.Enabled = true
	}
	if secret := os.Getenv("INSIGHTS_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Data.ChargebacksPath == "" {
		return fmt.Errorf("data.chargebacks_path is required")
	}
	if c.Data.TransactionsPath == "" {
		return fmt.Errorf("data.transactions_path is required")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when cache is enabled")
	}
	if c.Limits.MaxExportRows <= 0 {
		return fmt.Errorf("limits.max_export_rows must be positive")
	}
	return nil
}
