package main

import (
	"context"
	"fmt"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/config"
	"github.com/andrewpark3412/gift-tracking/internal/connectivity"
	"github.com/andrewpark3412/gift-tracking/internal/daemon"
	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"github.com/andrewpark3412/gift-tracking/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// core is the offline stack assembled for one command. No background loops
// run; commands probe and drain explicitly.
type core struct {
	profile string
	cfg     *config.Config
	pinned  bool
	// holdReplay skips the closing replay for commands that manage the
	// queue themselves.
	holdReplay bool

	svc     *household.Service
	queue   *outbox.Queue
	driver  *outbox.Driver
	prober  *connectivity.Prober
	monitor *connectivity.Monitor
	surface *status.Surface
	bus     *bus.Bus
	logger  *zap.Logger
}

func loadSettings() (string, *config.Config, error) {
	name := profile.Resolve(profileFlag)
	if err := profile.ValidateName(name); err != nil {
		return "", nil, err
	}
	path := configFlag
	if path == "" {
		path = profile.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

// withCore builds the stack, probes connectivity, runs fn and then replays
// anything still queued if the remote store is reachable.
func withCore(ctx context.Context, fn func(ctx context.Context, c *core) error) error {
	name, cfg, err := loadSettings()
	if err != nil {
		return err
	}

	c := &core{profile: name, cfg: cfg, pinned: offlineFlag || cfg.Connectivity.ForceOffline}
	app := fx.New(
		daemon.Module(daemon.Params{Profile: name, Config: cfg, Offline: offlineFlag}),
		fx.NopLogger,
		fx.Populate(&c.svc, &c.queue, &c.driver, &c.prober, &c.monitor, &c.surface, &c.bus, &c.logger),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	if !c.pinned {
		c.prober.ProbeOnce(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runErr := fn(ctx, c)
	c.replay(ctx)
	return runErr
}

func (c *core) replay(ctx context.Context) {
	if c.holdReplay || !c.monitor.IsOnline() || c.queue.Reload(ctx) == 0 {
		return
	}
	res := c.driver.Drain(ctx)
	if res.Skipped {
		c.logger.Debug("replay skipped, another process is draining")
		return
	}
	c.logger.Info("replayed queued writes",
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("remaining", res.Remaining),
	)
}
