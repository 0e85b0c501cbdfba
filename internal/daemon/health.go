package daemon

import (
	"context"
	"sync"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/status"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Health service names reported by giftd. The unnamed service tracks the
// process itself.
const (
	HealthConnectivity = "connectivity"
	HealthOutbox       = "outbox"
)

// HealthReporter mirrors status snapshots into the gRPC health service:
// connectivity is SERVING while online, outbox is SERVING while nothing is
// pending.
type HealthReporter struct {
	hs      *health.Server
	surface *status.Surface
	bus     *bus.Bus
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func provideHealth() *health.Server {
	return health.NewServer()
}

// NewHealthReporter creates a reporter over hs.
func NewHealthReporter(hs *health.Server, surface *status.Surface, b *bus.Bus, logger *zap.Logger) *HealthReporter {
	return &HealthReporter{hs: hs, surface: surface, bus: b, logger: logger}
}

// Start publishes the current snapshot and follows status changes.
func (r *HealthReporter) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	ch, unsub := r.bus.Subscribe(bus.StatusChanged, 16)

	r.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	r.apply(r.surface.Snapshot())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer unsub()
		for {
			select {
			case evt := <-ch:
				if snap, ok := evt.Payload.(status.Snapshot); ok {
					r.apply(snap)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop marks every service NOT_SERVING and waits for the loop to exit.
func (r *HealthReporter) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.hs.Shutdown()
}

func (r *HealthReporter) apply(snap status.Snapshot) {
	r.hs.SetServingStatus(HealthConnectivity, servingIf(snap.Online))
	r.hs.SetServingStatus(HealthOutbox, servingIf(snap.Pending == 0))
	r.logger.Debug("health updated",
		zap.Bool("online", snap.Online),
		zap.Int("pending", snap.Pending),
		zap.Bool("syncing", snap.Syncing),
	)
}

func servingIf(ok bool) healthpb.HealthCheckResponse_ServingStatus {
	if ok {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
