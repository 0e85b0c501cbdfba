package daemon

import (
	"context"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/config"
	"github.com/andrewpark3412/gift-tracking/internal/connectivity"
	"github.com/andrewpark3412/gift-tracking/internal/gateway"
	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/lock"
	"github.com/andrewpark3412/gift-tracking/internal/logging"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/andrewpark3412/gift-tracking/internal/status"
	"github.com/andrewpark3412/gift-tracking/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx modules.
type Params struct {
	Profile string
	Config  *config.Config
	// Offline pins connectivity offline regardless of probes.
	Offline bool
	// SocketPath overrides the health socket; empty = profile default.
	SocketPath string
	// Logger replaces the file logger; tests pass zap.NewNop().
	Logger *zap.Logger
}

// RemoteStore is a remote store that can also be read.
type RemoteStore interface {
	remote.Store
	remote.Reader
}

// Module provides the offline core for one profile: storage, queue,
// connectivity, gateway, household service and status surface. It starts
// nothing.
func Module(p Params) fx.Option {
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideKV,
			provideLease,
			provideRemote,
			provideMonitor,
			provideProber,
			provideQueue,
			provideDriver,
			provideGateway,
			provideService,
			provideSurface,
		),
	)
}

// Daemon adds the health server and starts every background loop.
func Daemon(p Params) fx.Option {
	return fx.Options(
		Module(p),
		fx.Provide(
			provideDaemonLock,
			provideHealth,
			NewHealthReporter,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile, p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideKV(lc fx.Lifecycle, p Params, logger *zap.Logger) (store.KV, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}

	var kv store.KV
	switch p.Config.Storage.Driver {
	case config.DriverSQLite:
		path := profile.SQLitePath(p.Profile)
		db, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		schema, err := db.Migrate()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if schema.Upgraded {
			logger.Info("kv schema upgraded", zap.Uint("version", schema.Version))
		} else {
			logger.Debug("kv schema current", zap.Uint("version", schema.Version))
		}
		kv = db
	case config.DriverBolt:
		b, err := store.OpenBolt(profile.BoltPath(p.Profile))
		if err != nil {
			return nil, err
		}
		kv = b
	case config.DriverMemory:
		logger.Warn("memory storage selected, queued writes will not survive a restart")
		kv = store.NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", p.Config.Storage.Driver)
	}
	logger.Debug("store initialized", zap.String("driver", p.Config.Storage.Driver))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return kv.Close()
		},
	})
	return kv, nil
}

func provideLease(p Params) outbox.Leaser {
	return lock.NewLease(profile.Dir(p.Profile), profile.DrainLockName)
}

func provideRemote(p Params, logger *zap.Logger) RemoteStore {
	rc := p.Config.Remote
	if rc.URL == config.MemoryRemoteURL {
		logger.Warn("using in-process remote store")
		return remote.NewMemory()
	}
	return remote.NewHTTPStore(rc.URL, rc.APIKey, rc.AccessToken)
}

func provideMonitor(p Params, b *bus.Bus, logger *zap.Logger) *connectivity.Monitor {
	m := connectivity.NewMonitor(false, b, logger)
	if p.Offline || p.Config.Connectivity.ForceOffline {
		logger.Info("connectivity pinned offline")
		m.ForceOffline()
	}
	return m
}

func provideProber(p Params, m *connectivity.Monitor, rs RemoteStore, logger *zap.Logger) *connectivity.Prober {
	cc := p.Config.Connectivity
	return connectivity.NewProber(m, rs, cc.ProbeInterval.Duration, cc.ProbeTimeout.Duration, logger)
}

func provideQueue(kv store.KV, lease outbox.Leaser, b *bus.Bus, logger *zap.Logger) *outbox.Queue {
	return outbox.NewQueue(context.Background(), kv, lease, b, logger)
}

func provideDriver(p Params, q *outbox.Queue, rs RemoteStore, m *connectivity.Monitor, b *bus.Bus, logger *zap.Logger) *outbox.Driver {
	rc := p.Config.Replay
	return outbox.NewDriver(q, outbox.RemoteExecutor(rs, rc.Timeout.Duration), m, b, rc.Interval.Duration, logger)
}

func provideGateway(rs RemoteStore, q *outbox.Queue, m *connectivity.Monitor, logger *zap.Logger) *gateway.Gateway {
	return gateway.New(rs, q, m, logger)
}

func provideService(gw *gateway.Gateway, rs RemoteStore) *household.Service {
	return household.NewService(gw, rs)
}

func provideSurface(p Params, q *outbox.Queue, m *connectivity.Monitor, kv store.KV, b *bus.Bus, logger *zap.Logger) *status.Surface {
	return status.NewSurface(q, m, kv, b, p.Config.Status.Notice.Duration, logger)
}

func provideDaemonLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile), profile.DaemonLockName)
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func registerLifecycle(
	lc fx.Lifecycle,
	srv *Server,
	lk *lock.Lock,
	prober *connectivity.Prober,
	monitor *connectivity.Monitor,
	driver *outbox.Driver,
	surface *status.Surface,
	reporter *HealthReporter,
	p Params,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pinned := p.Offline || p.Config.Connectivity.ForceOffline
			if !pinned {
				online := prober.ProbeOnce(ctx)
				logger.Info("initial connectivity", zap.Bool("online", online))
			}

			reporter.Start(context.Background())
			surface.Start(context.Background())
			driver.Start(context.Background())
			if !pinned {
				prober.Start(context.Background())
			}

			srv.Serve()

			logger.Info("daemon started", zap.Bool("online", monitor.IsOnline()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			prober.Stop()
			driver.Stop()
			surface.Stop()
			reporter.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
