package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"go.uber.org/zap"
)

// OnlineChecker reports current connectivity.
type OnlineChecker interface {
	IsOnline() bool
}

// Driver decides when the queue is drained: on reconnect, on enqueue while
// online, and on a periodic safety-net tick.
type Driver struct {
	queue    *Queue
	exec     Executor
	online   OnlineChecker
	bus      *bus.Bus
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDriver creates a replay driver. interval <= 0 disables the periodic
// tick.
func NewDriver(q *Queue, exec Executor, online OnlineChecker, b *bus.Bus, interval time.Duration, logger *zap.Logger) *Driver {
	return &Driver{
		queue:    q,
		exec:     exec,
		online:   online,
		bus:      b,
		interval: interval,
		logger:   logger,
	}
}

// Start subscribes to reconnect and enqueue events and begins the loop. A
// non-empty queue is drained right away when already online.
func (d *Driver) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	onlineCh, unsubOnline := d.bus.Subscribe(bus.ConnectivityOnline, 16)
	enqueuedCh, unsubEnqueued := d.bus.Subscribe(bus.OutboxEnqueued, 64)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer unsubOnline()
		defer unsubEnqueued()

		if d.online.IsOnline() && d.queue.Len() > 0 {
			d.Drain(ctx)
		}
		d.loop(ctx, onlineCh, enqueuedCh)
	}()
}

// Stop stops the loop and waits for an in-flight pass to return.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

// Drain runs one pass and announces outbox.cleared when it emptied the
// queue.
func (d *Driver) Drain(ctx context.Context) DrainResult {
	res := d.queue.Drain(ctx, d.exec)
	if res.Skipped {
		return res
	}
	if res.Attempted > 0 && res.Remaining == 0 {
		d.logger.Info("offline queue cleared", zap.Int("replayed", res.Succeeded))
		d.bus.Emit(bus.OutboxCleared, res)
	}
	return res
}

func (d *Driver) loop(ctx context.Context, onlineCh, enqueuedCh <-chan bus.Event) {
	var tick <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-onlineCh:
			d.Drain(ctx)
		case <-enqueuedCh:
			if d.online.IsOnline() {
				d.Drain(ctx)
			}
		case <-tick:
			if d.online.IsOnline() && d.queue.Reload(ctx) > 0 {
				d.Drain(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}
