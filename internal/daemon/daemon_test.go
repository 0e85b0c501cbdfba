package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/config"
	"github.com/andrewpark3412/gift-tracking/internal/connectivity"
	"github.com/andrewpark3412/gift-tracking/internal/gateway"
	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/lock"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
)

// testHome points the profile tree at a short /tmp path to stay under the
// 104-char Unix socket limit on macOS.
func testHome(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "gifts-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv("GIFTTRACKER_HOME", dir)
	return dir
}

func testParams(t *testing.T, name string) Params {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Connectivity.ProbeInterval.Duration = 20 * time.Millisecond
	cfg.Connectivity.ProbeTimeout.Duration = 50 * time.Millisecond
	cfg.Replay.Interval.Duration = 50 * time.Millisecond
	return Params{Profile: name, Config: cfg, Logger: zap.NewNop()}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDaemonQueuesOfflineWritesAndReplays(t *testing.T) {
	testHome(t)
	p := testParams(t, "test")

	var (
		rs      RemoteStore
		svc     *household.Service
		monitor *connectivity.Monitor
	)
	app := fxtest.New(t, Daemon(p), fx.Populate(&rs, &svc, &monitor))
	app.RequireStart()
	defer app.RequireStop()

	mem, ok := rs.(*remote.Memory)
	if !ok {
		t.Fatalf("remote store = %T, want *remote.Memory", rs)
	}

	c, err := Dial(profile.SocketPath("test"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	check := func() DaemonHealth {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h, err := c.Check(ctx)
		if err != nil {
			t.Fatalf("Check() error: %v", err)
		}
		return h
	}

	waitFor(t, "initial health", func() bool {
		h := check()
		return h.Serving && h.Online && h.Drained
	})

	mem.SetUnreachable(true)
	waitFor(t, "monitor offline", func() bool { return !monitor.IsOnline() })

	gift, err := svc.CreateGift(context.Background(), household.NewGift{
		PersonID:    "p1",
		Description: "Desk lamp",
		Price:       35,
	})
	if err != nil {
		t.Fatalf("CreateGift() error: %v", err)
	}
	if !gateway.IsTemporaryID(gift.ID) {
		t.Fatalf("offline gift id = %q, want temporary id", gift.ID)
	}
	waitFor(t, "outbox not drained", func() bool { return !check().Drained })

	mem.SetUnreachable(false)
	waitFor(t, "replay", func() bool { return mem.Count(household.CollectionGifts) == 1 })
	waitFor(t, "outbox drained", func() bool {
		h := check()
		return h.Online && h.Drained
	})
}

func TestDaemonRefusesSecondInstance(t *testing.T) {
	testHome(t)
	p := testParams(t, "solo")

	app := fxtest.New(t, Daemon(p))
	app.RequireStart()
	defer app.RequireStop()

	second := fx.New(Daemon(p), fx.NopLogger)
	err := second.Err()
	if err == nil {
		t.Fatal("second daemon started on a locked profile")
	}

	if _, statErr := os.Stat(profile.SocketPath("solo")); statErr != nil {
		t.Fatalf("first daemon's socket removed: %v", statErr)
	}
}

func TestDaemonPinnedOffline(t *testing.T) {
	testHome(t)
	p := testParams(t, "pinned")
	p.Offline = true

	var monitor *connectivity.Monitor
	app := fxtest.New(t, Daemon(p), fx.Populate(&monitor))
	app.RequireStart()
	defer app.RequireStop()

	time.Sleep(100 * time.Millisecond)
	if monitor.IsOnline() {
		t.Fatal("pinned daemon went online")
	}
}

// TestNewServerUsesParamsSocket guards the fx graph: NewServer must resolve
// from typed params and honour an explicit socket path.
func TestNewServerUsesParamsSocket(t *testing.T) {
	dir := testHome(t)
	socketPath := filepath.Join(dir, "d.sock")

	lk, err := lock.Acquire(dir, profile.DaemonLockName)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	srv, err := NewServer(Params{Profile: "fxtest", SocketPath: socketPath}, lk, zap.NewNop(), health.NewServer())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}

	info, statErr := os.Stat(socketPath)
	if statErr != nil {
		t.Fatalf("socket not created at %s: %v", socketPath, statErr)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket perm = %o, want 600", perm)
	}

	srv.Stop(context.Background())
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket left behind after Stop: %v", err)
	}
}

func TestServerStopHonoursDeadline(t *testing.T) {
	dir := testHome(t)
	socketPath := filepath.Join(dir, "d.sock")
	if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	lk, err := lock.Acquire(dir, profile.DaemonLockName)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	srv, err := NewServer(Params{Profile: "fxtest", SocketPath: socketPath}, lk, zap.NewNop(), health.NewServer())
	if err != nil {
		t.Fatalf("NewServer() over leftover file failed: %v", err)
	}
	srv.Serve()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Stop(ctx)
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket left behind after Stop: %v", err)
	}
}
