package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for the settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty settings are filled with defaults.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultStoreFilename, cfg.StoreFile)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultResyncInterval, cfg.ResyncInterval)

	// Bad listen address.
	cfg = &Config{ListenAddress: "bad:address"}
	require.Error(t, Validate(cfg))

	// Bad ntfy topic.
	cfg = &Config{NtfyTopic: "not a url"}
	require.Error(t, Validate(cfg))

	// Okay with topic.
	cfg = &Config{
		ListenAddress: "127.0.0.1:0",
		NtfyTopic:     "https://ntfy.sh/alarm-clock",
	}
	require.NoError(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ListenAddress:  "127.0.0.1:8090",
		StoreFile:      filepath.Join(dir, "alarms.json"),
		ResyncInterval: time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.StoreFile, loaded.StoreFile)
	require.Equal(t, time.Minute, loaded.ResyncInterval)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingFileUsesDefaults runs without any settings file present.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, "info", cfg.LogLevel)
}
