// Package connectivity tracks whether the remote store can be reached.
package connectivity

import (
	"sync"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"go.uber.org/zap"
)

// State is a snapshot of the monitor.
type State struct {
	Online bool
	// WasOffline is raised on an offline to online transition and stays up
	// until a consumer calls ClearWasOffline.
	WasOffline bool
}

// Monitor is the single source of truth for connectivity. It makes no
// network calls; SetOnline is fed by a Prober or by the caller.
type Monitor struct {
	mu         sync.RWMutex
	online     bool
	wasOffline bool
	pinned     bool
	bus        *bus.Bus
	logger     *zap.Logger
}

// NewMonitor creates a monitor in the given initial state.
func NewMonitor(initial bool, b *bus.Bus, logger *zap.Logger) *Monitor {
	return &Monitor{
		online: initial,
		bus:    b,
		logger: logger,
	}
}

// IsOnline returns the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// WasOffline reports whether a reconnect has not been acknowledged yet.
func (m *Monitor) WasOffline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wasOffline
}

// ClearWasOffline acknowledges the last reconnect.
func (m *Monitor) ClearWasOffline() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wasOffline = false
}

// State returns a snapshot.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{Online: m.online, WasOffline: m.wasOffline}
}

// SetOnline records a connectivity observation. Only changes are published.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.pinned || m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	// A new offline window starts unacknowledged.
	m.wasOffline = online
	st := State{Online: m.online, WasOffline: m.wasOffline}
	m.mu.Unlock()

	if online {
		m.logger.Info("remote store reachable again")
		m.bus.Emit(bus.ConnectivityOnline, st)
	} else {
		m.logger.Warn("remote store unreachable, queuing writes")
		m.bus.Emit(bus.ConnectivityOffline, st)
	}
}

// ForceOffline pins the monitor offline; later observations are ignored.
func (m *Monitor) ForceOffline() {
	m.SetOnline(false)
	m.mu.Lock()
	m.pinned = true
	m.mu.Unlock()
}
