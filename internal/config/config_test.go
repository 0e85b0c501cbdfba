package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "family"
	cfg.Remote.URL = "https://example.supabase.co"
	cfg.Storage.Driver = DriverBolt
	cfg.Replay.Timeout = Duration{10 * time.Second}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "family" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "family")
	}
	if loaded.Storage.Driver != DriverBolt {
		t.Errorf("Storage.Driver = %q, want %q", loaded.Storage.Driver, DriverBolt)
	}
	if loaded.Replay.Timeout.Duration != 10*time.Second {
		t.Errorf("Replay.Timeout = %v, want 10s", loaded.Replay.Timeout)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "default_profile = \"main\"\n[replay]\ninterval = \"1m\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Replay.Interval.Duration != time.Minute {
		t.Errorf("Replay.Interval = %v, want 1m", cfg.Replay.Interval)
	}
	if cfg.Replay.Timeout.Duration != 30*time.Second {
		t.Errorf("Replay.Timeout = %v, want 30s default", cfg.Replay.Timeout)
	}
	if cfg.Remote.URL != MemoryRemoteURL {
		t.Errorf("Remote.URL = %q, want %q", cfg.Remote.URL, MemoryRemoteURL)
	}
	if cfg.Status.Notice.Duration != 4*time.Second {
		t.Errorf("Status.Notice = %v, want 4s", cfg.Status.Notice)
	}
}

func TestLoadRejectsBadDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\ndriver = \"leveldb\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for unknown driver")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[replay]\ntimeout = \"soon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for bad duration")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
