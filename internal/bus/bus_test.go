package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("outbox.", 10)
	defer unsub()

	b.Emit(OutboxEnqueued, "op-1")

	select {
	case evt := <-ch:
		if evt.Kind != OutboxEnqueued {
			t.Errorf("got kind %q, want %s", evt.Kind, OutboxEnqueued)
		}
		if evt.Payload != "op-1" {
			t.Errorf("payload = %v, want op-1", evt.Payload)
		}
		if evt.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("connectivity.", 10)
	defer unsub()

	b.Emit(OutboxDrained, nil)
	b.Emit(ConnectivityOnline, nil)

	select {
	case evt := <-ch:
		if evt.Kind != ConnectivityOnline {
			t.Errorf("got kind %q, want %s", evt.Kind, ConnectivityOnline)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("outbox.", 10)
	unsub()

	b.Emit(OutboxCleared, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("outbox.", 1)
	defer unsub()

	b.Emit(OutboxEnqueued, nil)
	// Dropped, the buffer is full.
	b.Emit(OutboxDrained, nil)

	evt := <-ch
	if evt.Kind != OutboxEnqueued {
		t.Errorf("got %q, want %s", evt.Kind, OutboxEnqueued)
	}
}

func TestNilBusPublish(t *testing.T) {
	var b *Bus
	b.Emit(StatusChanged, nil)
}
