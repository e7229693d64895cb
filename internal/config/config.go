// Package config provides configuration structures and loading logic for
// TraceLens.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the TraceLens service.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Tracing BackendConfig `mapstructure:"tracing"`
	Metrics BackendConfig `mapstructure:"metrics"`
	Cache   CacheConfig   `mapstructure:"cache"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// AppConfig defines application-level settings such as host and port.
type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// BackendConfig defines connection settings for a read-only backend API.
// The bearer token is read from the environment variable named by
// token_env; an empty token means requests go out unauthenticated.
type BackendConfig struct {
	URL      string `mapstructure:"url"`
	Timeout  string `mapstructure:"timeout"`
	TokenEnv string `mapstructure:"token_env"`
	Token    string `mapstructure:"-"`
}

// CacheConfig defines the live query refresh intervals per data class.
type CacheConfig struct {
	TraceRefresh   string `mapstructure:"trace_refresh"`
	MetricsRefresh string `mapstructure:"metrics_refresh"`
}

// CORSConfig defines browser origins allowed to call the dashboard API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GetTimeoutDuration returns the backend timeout as a time.Duration.
func (c *BackendConfig) GetTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetTraceRefreshDuration parses the trace refresh interval.
func (c *CacheConfig) GetTraceRefreshDuration() time.Duration {
	d, _ := time.ParseDuration(c.TraceRefresh)
	if d == 0 {
		return 10 * time.Second
	}
	return d
}

// GetMetricsRefreshDuration parses the metrics refresh interval.
func (c *CacheConfig) GetMetricsRefreshDuration() time.Duration {
	d, _ := time.ParseDuration(c.MetricsRefresh)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// Load loads configuration from config.yaml or environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/tracelens")

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	viper.SetDefault("app.host", "0.0.0.0")
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("tracing.timeout", "30s")
	viper.SetDefault("metrics.timeout", "30s")
	viper.SetDefault("cache.trace_refresh", "10s")
	viper.SetDefault("cache.metrics_refresh", "30s")
	viper.SetDefault("cors.allowed_origins", []string{"*"})

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Resolve bearer tokens from the environment if token_env is set
	if cfg.Tracing.TokenEnv != "" {
		cfg.Tracing.Token = os.Getenv(cfg.Tracing.TokenEnv)
	}
	if cfg.Metrics.TokenEnv != "" {
		cfg.Metrics.Token = os.Getenv(cfg.Metrics.TokenEnv)
	}

	return &cfg, nil
}
