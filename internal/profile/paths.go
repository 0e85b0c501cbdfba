package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.gifttracker, or $GIFTTRACKER_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("GIFTTRACKER_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gifttracker")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// SocketPath returns the giftd health socket path for a profile.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "giftd.sock")
}

// DaemonLockName is the lock file held by a running giftd.
const DaemonLockName = "LOCK"

// DrainLockName is the lease file that serialises outbox drains across processes.
const DrainLockName = "DRAIN"

// DrainLockPath returns the drain lease path for a profile.
func DrainLockPath(name string) string {
	return filepath.Join(Dir(name), DrainLockName)
}

// SQLitePath returns the sqlite snapshot store path.
func SQLitePath(name string) string {
	return filepath.Join(Dir(name), "queue.db")
}

// BoltPath returns the bbolt snapshot store path.
func BoltPath(name string) string {
	return filepath.Join(Dir(name), "queue.bolt")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "giftd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
