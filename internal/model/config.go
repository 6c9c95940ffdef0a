package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. NOTIFEED_API_BASE_URL.
const envPrefix = "NOTIFEED"

// APIConfig holds the connection settings for the platform REST API.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://api.example.com/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every single request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RateLimit is the outbound request budget in requests per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// FeedConfig holds polling and local flag settings.
type FeedConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// MaxFlagEntries caps each persisted flag list; 0 keeps everything.
	MaxFlagEntries int `mapstructure:"max_flag_entries" yaml:"max_flag_entries"`

	// RetryMaxAttempts is how many times a failed write is replayed
	// before it is dropped from the pending queue.
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	Language string `mapstructure:"language" yaml:"language"`

	// SiteURL is prefixed to article paths when opening a notification.
	SiteURL string `mapstructure:"site_url" yaml:"site_url"`

	// OpenCommand launches a URL (e.g. "xdg-open"). Empty shows the URL instead.
	OpenCommand string `mapstructure:"open_command" yaml:"open_command"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Feed    FeedConfig    `mapstructure:"feed" yaml:"feed"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ConfigDir returns ~/.config/notifeed, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifeed")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notifeed/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaults maps every config key to its default value. Registering each key
// is also what lets viper pick up NOTIFEED_* overrides during Unmarshal.
func defaults() map[string]interface{} {
	dir := ConfigDir()
	return map[string]interface{}{
		"api.base_url":            "http://localhost:8000/api",
		"api.timeout_sec":         30,
		"api.rate_limit":          5.0,
		"api.burst":               10,
		"feed.poll_interval_sec":  60,
		"feed.max_flag_entries":   500,
		"feed.retry_max_attempts": 5,
		"display.theme":           "default",
		"display.language":        "en",
		"display.site_url":        "http://localhost:3000",
		"display.open_command":    "",
		"storage.db_path":         filepath.Join(dir, "notifeed.db"),
		"log.level":               "info",
		"log.file":                filepath.Join(dir, "notifeed.log"),
		"metrics.listen_addr":     "",
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables override file values. A missing file is not an
// error; the defaults (plus any environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Feed.PollIntervalSec <= 0 {
		cfg.Feed.PollIntervalSec = 60
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	cfg.Display.SiteURL = strings.TrimRight(cfg.Display.SiteURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("feed", cfg.Feed)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("metrics", cfg.Metrics)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
