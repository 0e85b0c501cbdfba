package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProbeInterval = 5 * time.Second
	defaultProbeTimeout  = 3 * time.Second
)

// Pinger checks reachability of the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober feeds a Monitor from periodic pings.
type Prober struct {
	monitor  *Monitor
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProber creates a prober. Non-positive durations fall back to defaults.
func NewProber(m *Monitor, p Pinger, interval, timeout time.Duration, logger *zap.Logger) *Prober {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Prober{
		monitor:  m,
		pinger:   p,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// ProbeOnce pings once, records the result on the monitor and returns it.
// A probe interrupted by ctx itself leaves the monitor untouched.
func (p *Prober) ProbeOnce(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(pingCtx)
	if ctx.Err() != nil {
		return p.monitor.IsOnline()
	}
	if err != nil {
		p.logger.Debug("probe failed", zap.Error(err))
	}
	p.monitor.SetOnline(err == nil)
	return err == nil
}

// Start launches the probe loop. It returns immediately.
func (p *Prober) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.ProbeOnce(ctx)
			}
		}
	}()
}

// Stop stops the loop and waits for it to exit.
func (p *Prober) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}
