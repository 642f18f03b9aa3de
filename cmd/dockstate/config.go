package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/artpar/dockstate/internal/core/compose"
	"github.com/artpar/dockstate/internal/core/reconcile"
	"github.com/artpar/dockstate/internal/shell/docker"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Docker     DockerConfig     `mapstructure:"docker"`
	Log        LogConfig        `mapstructure:"log"`
	Descriptor DescriptorConfig `mapstructure:"descriptor"`
	Images     ImagesConfig     `mapstructure:"images"`
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Host       string        `mapstructure:"host"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TLS        TLSConfig     `mapstructure:"tls"`
}

// TLSConfig holds Docker TLS client configuration.
type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CAFile             string `mapstructure:"ca_file"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// ClientConfig converts the section into docker client settings.
func (c DockerConfig) ClientConfig() docker.ClientConfig {
	return docker.ClientConfig{
		Host:       c.Host,
		APIVersion: c.APIVersion,
		Timeout:    c.Timeout,
		TLS: docker.TLSConfig{
			Enabled:            c.TLS.Enabled,
			CAFile:             c.TLS.CAFile,
			CertFile:           c.TLS.CertFile,
			KeyFile:            c.TLS.KeyFile,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify,
		},
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DescriptorConfig controls how check-running locates the compose file.
type DescriptorConfig struct {
	DefaultFile string   `mapstructure:"default_file"`
	Extensions  []string `mapstructure:"extensions"`
}

// ResolveOptions converts the section into compose resolution options.
func (c DescriptorConfig) ResolveOptions() compose.ResolveOptions {
	return compose.ResolveOptions{
		DefaultFile: c.DefaultFile,
		Extensions:  c.Extensions,
	}
}

// ImagesConfig controls image-plan behaviour.
type ImagesConfig struct {
	// MatchPolicy is "repository", "prefix" or "prefix-boundary".
	MatchPolicy string `mapstructure:"match_policy"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("docker.host", "")
	v.SetDefault("docker.api_version", "")
	v.SetDefault("docker.timeout", "0s")
	v.SetDefault("docker.tls.enabled", false)
	v.SetDefault("docker.tls.ca_file", "")
	v.SetDefault("docker.tls.cert_file", "")
	v.SetDefault("docker.tls.key_file", "")
	v.SetDefault("docker.tls.insecure_skip_verify", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "json")
	v.SetDefault("descriptor.default_file", compose.DefaultDescriptorFile)
	v.SetDefault("descriptor.extensions", compose.DefaultExtensions)
	v.SetDefault("images.match_policy", string(reconcile.MatchRepository))

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("DOCKSTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := reconcile.ParseMatchPolicy(cfg.Images.MatchPolicy); err != nil {
		return nil, fmt.Errorf("invalid images.match_policy: %w", err)
	}

	return &cfg, nil
}

// MatchPolicy returns the parsed image match policy.
// LoadConfig has already rejected unknown values.
func (c *Config) MatchPolicy() reconcile.MatchPolicy {
	policy, err := reconcile.ParseMatchPolicy(c.Images.MatchPolicy)
	if err != nil {
		return reconcile.MatchRepository
	}
	return policy
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w (stderr in production) because stdout carries the result.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
