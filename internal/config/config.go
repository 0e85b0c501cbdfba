package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.gifttracker/config.toml.
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	LogLevel       string             `toml:"log_level"`
	AppURL         string             `toml:"app_url"`
	Remote         RemoteConfig       `toml:"remote"`
	Storage        StorageConfig      `toml:"storage"`
	Replay         ReplayConfig       `toml:"replay"`
	Connectivity   ConnectivityConfig `toml:"connectivity"`
	Status         StatusConfig       `toml:"status"`
}

// RemoteConfig locates the remote record store.
type RemoteConfig struct {
	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`
}

// StorageConfig selects the local snapshot backend: sqlite, bolt or memory.
type StorageConfig struct {
	Driver string `toml:"driver"`
}

// ReplayConfig tunes the outbox replay driver.
type ReplayConfig struct {
	Timeout  Duration `toml:"timeout"`
	Interval Duration `toml:"interval"`
}

// ConnectivityConfig tunes the reachability prober.
type ConnectivityConfig struct {
	ProbeInterval Duration `toml:"probe_interval"`
	ProbeTimeout  Duration `toml:"probe_timeout"`
	ForceOffline  bool     `toml:"force_offline"`
}

// StatusConfig tunes the status surface.
type StatusConfig struct {
	Notice Duration `toml:"notice"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// MemoryRemoteURL selects the in-process remote store.
const MemoryRemoteURL = "memory://"

// Duration is a time.Duration that reads and writes as a TOML string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Remote.URL == "" {
		c.Remote.URL = MemoryRemoteURL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Replay.Timeout.Duration <= 0 {
		c.Replay.Timeout.Duration = 30 * time.Second
	}
	if c.Replay.Interval.Duration <= 0 {
		c.Replay.Interval.Duration = 30 * time.Second
	}
	if c.Connectivity.ProbeInterval.Duration <= 0 {
		c.Connectivity.ProbeInterval.Duration = 5 * time.Second
	}
	if c.Connectivity.ProbeTimeout.Duration <= 0 {
		c.Connectivity.ProbeTimeout.Duration = 3 * time.Second
	}
	if c.Status.Notice.Duration <= 0 {
		c.Status.Notice.Duration = 4 * time.Second
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverBolt, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Remote.URL != MemoryRemoteURL &&
		!strings.HasPrefix(c.Remote.URL, "http://") && !strings.HasPrefix(c.Remote.URL, "https://") {
		return fmt.Errorf("remote url %q must be http(s) or %s", c.Remote.URL, MemoryRemoteURL)
	}
	return nil
}

// Load reads config from the given path. Returns nil config and error if file missing.
// Unset fields are filled with defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault is Load that falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
