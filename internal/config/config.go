// Package config loads chartdeck settings from a TOML file and the
// environment.
//
// Settings are resolved in three layers: built-in defaults, the config file
// ($XDG_CONFIG_HOME/chartdeck/config.toml unless a path is given) and a few
// CHARTDECK_* environment variables. A missing default config file is not an
// error; a missing explicit one is.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

const appName = "chartdeck"

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Environment variables that override file settings.
const (
	EnvStoreBackend = "CHARTDECK_STORE"
	EnvRedisURL     = "CHARTDECK_REDIS_URL"
	EnvMongoURI     = "CHARTDECK_MONGO_URI"
	EnvWebhookURL   = "CHARTDECK_WEBHOOK_URL"
	EnvServerAddr   = "CHARTDECK_ADDR"
)

// Config is the complete application configuration.
type Config struct {
	Chart  ChartConfig  `toml:"chart"`
	Export ExportConfig `toml:"export"`
	Store  StoreConfig  `toml:"store"`
	Notify NotifyConfig `toml:"notify"`
	Server ServerConfig `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// ChartConfig holds canvas and axis settings.
type ChartConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	StaleAxes string `toml:"stale_axes"`
}

// ExportConfig holds encoder settings.
type ExportConfig struct {
	Scale    float64 `toml:"scale"`
	PageSize string  `toml:"page_size"`
	Margin   float64 `toml:"margin"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`

	// KeyPrefix namespaces every key, so that several deployments can
	// share one Redis database.
	KeyPrefix string `toml:"key_prefix"`
}

// NotifyConfig configures usage event delivery.
type NotifyConfig struct {
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	WebhookURL    string   `toml:"webhook_url"`
	Timeout       Duration `toml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string ("30s", "720h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chart: ChartConfig{
			Width:     pipeline.DefaultWidth,
			Height:    pipeline.DefaultHeight,
			StaleAxes: string(axis.KeepStale),
		},
		Export: ExportConfig{
			Scale:    pipeline.DefaultScale,
			PageSize: export.DefaultPageSize,
			Margin:   export.DefaultMargin,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			TTL:     Duration{session.DefaultTTL},
		},
		Notify: NotifyConfig{
			MongoDatabase: "chartdeck",
			Timeout:       Duration{notify.DefaultAsyncTimeout},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 10 << 20,
		},
	}
}

// Load reads the configuration. An empty path reads the default config file
// if it exists. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			cfg.Path = path
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Notify.MongoURI = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		c.Notify.WebhookURL = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if _, err := axis.ParsePolicy(c.Chart.StaleAxes); err != nil {
		return fmt.Errorf("chart.stale_axes: %w", err)
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return fmt.Errorf("chart: size must not be negative")
	}
	if c.Export.Scale < 0 {
		return fmt.Errorf("export.scale must not be negative")
	}
	switch c.Store.Backend {
	case BackendFile, BackendRedis, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (must be one of: file, redis, memory, none)", c.Store.Backend)
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisURL == "" {
		return fmt.Errorf("store.redis_url is required for the redis backend")
	}
	return nil
}

// PipelineOptions returns pipeline options carrying the chart and export
// settings.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:  c.Chart.Width,
		Height: c.Chart.Height,
		Policy: c.Chart.StaleAxes,
		Scale:  c.Export.Scale,
	}
}

// ExportOptions returns encoder options for the export settings.
func (c *Config) ExportOptions() []export.Option {
	return []export.Option{
		export.WithScale(c.Export.Scale),
		export.WithPageSize(c.Export.PageSize),
		export.WithMargin(c.Export.Margin),
	}
}

// StoreDir returns the file store directory: store.dir when set, otherwise
// $XDG_CACHE_HOME/chartdeck (~/.cache/chartdeck).
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/chartdeck).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Encode writes c as TOML. Used by "chartdeck config" to print the
// effective configuration.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// String summarizes the backend selection for log output.
func (c *Config) String() string {
	return "store=" + c.Store.Backend +
		" mongo=" + strconv.FormatBool(c.Notify.MongoURI != "") +
		" webhook=" + strconv.FormatBool(c.Notify.WebhookURL != "")
}
