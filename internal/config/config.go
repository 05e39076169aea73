package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the alarm clock binaries.
type Config struct {
	// ListenAddress is the address the HTTP API binds to.
	ListenAddress string `yaml:"listen_addr"`
	// StoreFile is the path to the JSON file storing the alarm collection.
	StoreFile string `yaml:"store_file"`
	// LogLevel is the minimum level for log output (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for client HTTP calls.
	Timeout time.Duration `yaml:"timeout"`
	// ResyncInterval is how often the scheduler re-validates armed timers to
	// catch missed fires after suspend or clock adjustments.
	ResyncInterval time.Duration `yaml:"resync_interval"`
	// NtfyTopic is the optional ntfy.sh topic URL for push notifications
	// when an alarm fires. Empty disables the bridge.
	NtfyTopic string `yaml:"ntfy_topic"`
	// NtfyTimeout bounds each push notification request.
	NtfyTimeout time.Duration `yaml:"ntfy_timeout"`
	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty allows any origin, which suits a dashboard on the local network.
	CORSOrigins []string `yaml:"cors_origins"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStoreFilename is the default filename for the alarm store JSON.
	DefaultStoreFilename = "alarm-clock-alarms.json"

	// DefaultListenAddress binds the HTTP API on all interfaces.
	DefaultListenAddress = ":8090"

	// DefaultTimeout is the default duration for client HTTP calls.
	DefaultTimeout = 5 * time.Second

	// DefaultResyncInterval is how often armed timers are re-validated.
	DefaultResyncInterval = 30 * time.Second

	// DefaultNtfyTimeout bounds each push notification request.
	DefaultNtfyTimeout = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads configuration from the provided path and validates essential fields.
// A missing file yields the defaults, so the server runs without any setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := new(Config)
			if err = Validate(cfg); err != nil {
				return nil, err
			}

			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for anything left unset.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.StoreFile == "" {
		cfg.StoreFile = DefaultStoreFilename
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = DefaultResyncInterval
	}

	if cfg.NtfyTimeout <= 0 {
		cfg.NtfyTimeout = DefaultNtfyTimeout
	}

	if cfg.NtfyTopic == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.NtfyTopic); err != nil {
		return fmt.Errorf("invalid ntfy topic URI: %w", err)
	}

	return nil
}
