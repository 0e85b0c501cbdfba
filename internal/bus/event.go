package bus

import "time"

// Event kinds published by the offline core. Subscribers filter by prefix,
// so "outbox." receives every queue event.
const (
	ConnectivityOnline  = "connectivity.online"
	ConnectivityOffline = "connectivity.offline"

	OutboxEnqueued     = "outbox.enqueued"
	OutboxDrainStarted = "outbox.drain_started"
	OutboxDrained      = "outbox.drained"
	OutboxCleared      = "outbox.cleared"
	OutboxReset        = "outbox.reset"

	StatusChanged = "status.changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
