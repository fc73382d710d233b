// Package config loads and validates tracker configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Auth           AuthConfig           `mapstructure:"auth"`
	DB             DBConfig             `mapstructure:"db"`
	CrawlerService CrawlerServiceConfig `mapstructure:"crawler_service"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	MaxBatch              int `mapstructure:"max_batch"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DBConfig controls access to Postgres. An empty DSN selects the in-memory store.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	Table                  string `mapstructure:"table"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeSeconds int    `mapstructure:"max_conn_lifetime_seconds"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// CrawlerServiceConfig points at the external crawl service.
type CrawlerServiceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Path           string `mapstructure:"path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// LoadEnvFile exports variables from a dotenv file into the process
// environment without overriding values already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CASETRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.max_batch", 500)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "court_cases")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_seconds", 0)
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("crawler_service.base_url", "")
	v.SetDefault("crawler_service.path", "/crawl-court-cases")
	v.SetDefault("crawler_service.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// bindLegacyEnv keeps the environment names used by earlier deployments working.
func bindLegacyEnv(v *viper.Viper) error {
	if err := v.BindEnv("crawler_service.base_url", "CASETRACKER_CRAWLER_SERVICE_BASE_URL", "TJ_CRAWLER_URL"); err != nil {
		return fmt.Errorf("bind crawler url env: %w", err)
	}
	if err := v.BindEnv("db.dsn", "CASETRACKER_DB_DSN", "DATABASE_URL"); err != nil {
		return fmt.Errorf("bind dsn env: %w", err)
	}
	if err := v.BindEnv("server.port", "CASETRACKER_SERVER_PORT", "PORT"); err != nil {
		return fmt.Errorf("bind port env: %w", err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("server.max_batch must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if strings.TrimSpace(c.CrawlerService.BaseURL) == "" {
		return fmt.Errorf("crawler_service.base_url is required")
	}
	if c.CrawlerService.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler_service.timeout_seconds must be > 0")
	}
	if c.DB.MinConns < 0 || c.DB.MaxConns < 0 {
		return fmt.Errorf("db.min_conns and db.max_conns must be >= 0")
	}
	if c.DB.MaxConns > 0 && c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("db.min_conns must not exceed db.max_conns")
	}
	return nil
}

// RequestTimeout is the per-request budget applied by the HTTP server.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// DispatchTimeout bounds one call to the crawl service.
func (c Config) DispatchTimeout() time.Duration {
	return time.Duration(c.CrawlerService.TimeoutSeconds) * time.Second
}

// MaxConnLifetime converts the pool lifetime setting into a duration.
func (c DBConfig) MaxConnLifetime() time.Duration {
	return time.Duration(c.MaxConnLifetimeSeconds) * time.Second
}
