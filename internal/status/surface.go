// Package status folds connectivity and queue events into one snapshot for
// presentation layers.
package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/connectivity"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/store"
	"go.uber.org/zap"
)

// NoticeDismissedKey is the store key for the reconnect notice opt-out.
const NoticeDismissedKey = "reconnect_notice_dismissed"

const (
	defaultNotice       = 4 * time.Second
	defaultPollInterval = time.Second
)

// Snapshot is what a status bar renders.
type Snapshot struct {
	Online bool `json:"online"`
	// Reconnected is raised for a short notice window after coming back
	// online.
	Reconnected bool      `json:"reconnected"`
	Pending     int       `json:"pending"`
	Syncing     bool      `json:"syncing"`
	LastSync    time.Time `json:"last_sync,omitzero"`
	LastFailed  int       `json:"last_failed"`
}

// Counter reports the pending operation count, including operations queued
// by other processes.
type Counter interface {
	Reload(ctx context.Context) int
}

// Connectivity is the surface's view of the connectivity monitor.
type Connectivity interface {
	State() connectivity.State
	ClearWasOffline()
}

// Surface maintains the Snapshot.
type Surface struct {
	counter Counter
	conn    Connectivity
	kv      store.KV
	bus     *bus.Bus
	logger  *zap.Logger

	notice       time.Duration
	pollInterval time.Duration

	mu        sync.RWMutex
	snap      Snapshot
	dismissed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSurface creates a surface. notice <= 0 uses the default window.
func NewSurface(counter Counter, conn Connectivity, kv store.KV, b *bus.Bus, notice time.Duration, logger *zap.Logger) *Surface {
	if notice <= 0 {
		notice = defaultNotice
	}
	return &Surface{
		counter:      counter,
		conn:         conn,
		kv:           kv,
		bus:          b,
		logger:       logger,
		notice:       notice,
		pollInterval: defaultPollInterval,
	}
}

// Snapshot returns the current state.
func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh rebuilds the snapshot from its sources without waiting for events.
func (s *Surface) Refresh(ctx context.Context) Snapshot {
	st := s.conn.State()
	pending := s.counter.Reload(ctx)
	s.update(func(snap *Snapshot) {
		snap.Online = st.Online
		snap.Pending = pending
	})
	return s.Snapshot()
}

// NoticeDismissed reports whether the user opted out of reconnect notices.
func (s *Surface) NoticeDismissed(ctx context.Context) bool {
	v, err := s.kv.Get(ctx, NoticeDismissedKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read notice flag", zap.Error(err))
		}
		return false
	}
	return string(v) == "1"
}

// DismissNotice hides the current reconnect notice and stops future ones.
func (s *Surface) DismissNotice(ctx context.Context) error {
	if err := store.Put(ctx, s.kv, NoticeDismissedKey, []byte("1")); err != nil {
		return err
	}
	s.mu.Lock()
	s.dismissed = true
	s.mu.Unlock()
	s.update(func(snap *Snapshot) { snap.Reconnected = false })
	return nil
}

// Start begins tracking events. It returns immediately.
func (s *Surface) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	dismissed := s.NoticeDismissed(ctx)
	s.mu.Lock()
	s.dismissed = dismissed
	s.mu.Unlock()
	s.Refresh(ctx)

	connCh, unsubConn := s.bus.Subscribe("connectivity.", 16)
	outboxCh, unsubOutbox := s.bus.Subscribe("outbox.", 64)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubConn()
		defer unsubOutbox()
		s.loop(ctx, connCh, outboxCh)
	}()
}

// Stop stops the loop and waits for it to exit.
func (s *Surface) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Surface) loop(ctx context.Context, connCh, outboxCh <-chan bus.Event) {
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	var (
		noticeTimer *time.Timer
		noticeC     <-chan time.Time
	)
	defer func() {
		if noticeTimer != nil {
			noticeTimer.Stop()
		}
	}()

	for {
		select {
		case evt := <-connCh:
			if s.onConnectivity(evt) {
				if noticeTimer != nil {
					noticeTimer.Stop()
				}
				noticeTimer = time.NewTimer(s.notice)
				noticeC = noticeTimer.C
			}
		case evt := <-outboxCh:
			s.onOutbox(evt)
		case <-noticeC:
			noticeC = nil
			s.conn.ClearWasOffline()
			s.update(func(snap *Snapshot) { snap.Reconnected = false })
		case <-poll.C:
			pending := s.counter.Reload(ctx)
			s.update(func(snap *Snapshot) { snap.Pending = pending })
		case <-ctx.Done():
			return
		}
	}
}

// onConnectivity applies a connectivity event and reports whether a
// reconnect notice window should start.
func (s *Surface) onConnectivity(evt bus.Event) bool {
	st, _ := evt.Payload.(connectivity.State)
	s.mu.RLock()
	dismissed := s.dismissed
	s.mu.RUnlock()

	reconnected := evt.Kind == bus.ConnectivityOnline && st.WasOffline
	s.update(func(snap *Snapshot) {
		snap.Online = evt.Kind == bus.ConnectivityOnline
		snap.Reconnected = reconnected && !dismissed
		if reconnected {
			snap.Syncing = snap.Pending > 0
		}
	})
	return reconnected
}

func (s *Surface) onOutbox(evt bus.Event) {
	switch evt.Kind {
	case bus.OutboxEnqueued:
		if p, ok := evt.Payload.(outbox.Enqueued); ok {
			s.update(func(snap *Snapshot) { snap.Pending = p.Pending })
		}
	case bus.OutboxDrainStarted:
		s.update(func(snap *Snapshot) { snap.Syncing = true })
	case bus.OutboxDrained:
		if res, ok := evt.Payload.(outbox.DrainResult); ok {
			s.update(func(snap *Snapshot) {
				snap.Syncing = false
				snap.Pending = res.Remaining
				snap.LastSync = evt.Timestamp
				snap.LastFailed = res.Failed
			})
		}
	case bus.OutboxCleared, bus.OutboxReset:
		s.update(func(snap *Snapshot) {
			snap.Pending = 0
			snap.Syncing = false
		})
	}
}

// update applies fn and publishes status.changed when the snapshot moved.
func (s *Surface) update(fn func(*Snapshot)) {
	s.mu.Lock()
	before := s.snap
	fn(&s.snap)
	after := s.snap
	s.mu.Unlock()

	if after != before {
		s.bus.Emit(bus.StatusChanged, after)
	}
}
