// Package outbox holds mutations made while offline and replays them, in
// order, once the remote store is reachable again.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/lock"
	"github.com/andrewpark3412/gift-tracking/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotKey is the store key holding the JSON array of pending operations.
const SnapshotKey = "offline_operations_queue"

// Executor performs one operation against the remote store. A non-nil error
// keeps the operation queued.
type Executor func(ctx context.Context, op Operation) error

// Leaser guards a drain pass across processes sharing one snapshot.
type Leaser interface {
	Acquire() (release func() error, err error)
}

// DrainResult summarises one drain pass.
type DrainResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Remaining int
	// Skipped is set when the pass did not run because another pass, in
	// this process or another, was already draining.
	Skipped bool
}

// Enqueued is the payload of outbox.enqueued events.
type Enqueued struct {
	Operation Operation
	Pending   int
}

// DrainStarted is the payload of outbox.drain_started events.
type DrainStarted struct {
	Pending int
}

// Queue is the durable, ordered list of pending operations.
type Queue struct {
	kv     store.KV
	lease  Leaser
	bus    *bus.Bus
	logger *zap.Logger
	phase  *phaseMachine

	mu  sync.Mutex
	ops []Operation
	// dirty is set while the last snapshot write failed; the in-memory list
	// is then authoritative and snapshots are not read back.
	dirty bool

	now   func() time.Time
	newID func() string
}

// NewQueue creates a queue hydrated from the snapshot in kv. A missing,
// unreadable or corrupt snapshot yields an empty queue. lease may be nil.
func NewQueue(ctx context.Context, kv store.KV, lease Leaser, b *bus.Bus, logger *zap.Logger) *Queue {
	q := &Queue{
		kv:     kv,
		lease:  lease,
		bus:    b,
		logger: logger,
		phase:  newPhaseMachine(),
		now:    time.Now,
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	q.mu.Lock()
	q.reload(ctx)
	q.mu.Unlock()
	q.logger.Info("outbox hydrated", zap.Int("pending", len(q.ops)))
	return q
}

// Enqueue validates op, stamps it with a fresh ID and timestamp, appends it
// and persists the whole queue. Persistence failures are logged, not
// returned: the operation is kept in memory either way.
func (q *Queue) Enqueue(ctx context.Context, op Operation) (Operation, error) {
	if err := op.Validate(); err != nil {
		return Operation{}, err
	}
	op.ID = q.newID()
	op.Timestamp = q.now().UTC()
	op.Payload = maps.Clone(op.Payload)

	q.mu.Lock()
	q.mutate(ctx, func(ops []Operation) []Operation {
		return append(ops, op)
	})
	pending := len(q.ops)
	q.mu.Unlock()

	q.logger.Info("operation queued",
		zap.String("op_id", op.ID),
		zap.String("kind", string(op.Kind)),
		zap.String("target", op.Target()),
		zap.Int("pending", pending),
	)
	q.bus.Emit(bus.OutboxEnqueued, Enqueued{Operation: op, Pending: pending})
	return op, nil
}

// Len returns the number of pending operations known to this process.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Pending returns a copy of the pending operations in FIFO order.
func (q *Queue) Pending() []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.ops)
}

// Reload re-reads the snapshot, picking up operations queued by other
// processes, and returns the pending count.
func (q *Queue) Reload(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reload(ctx)
	return len(q.ops)
}

// Phase reports whether a drain pass is running.
func (q *Queue) Phase() Phase {
	return q.phase.Current()
}

// Clear discards every pending operation without replaying it.
func (q *Queue) Clear(ctx context.Context) {
	q.mu.Lock()
	discarded := len(q.ops)
	q.mutate(ctx, func([]Operation) []Operation {
		return nil
	})
	q.mu.Unlock()

	q.logger.Info("outbox cleared", zap.Int("discarded", discarded))
	q.bus.Emit(bus.OutboxReset, nil)
}

// Drain executes every pending operation in FIFO order, one at a time.
// Operations that succeed are removed; failed ones stay in their original
// order, followed by anything enqueued while the pass was running. A call
// made while a pass is already running returns immediately with Skipped.
//
// Cancelling ctx stops the pass before the next operation; operations not
// attempted stay queued.
func (q *Queue) Drain(ctx context.Context, exec Executor) DrainResult {
	if err := q.phase.Transition(Draining); err != nil {
		q.logger.Debug("drain already running")
		return DrainResult{Skipped: true, Remaining: q.Len()}
	}
	defer func() {
		_ = q.phase.Transition(Idle)
	}()

	if q.lease != nil {
		release, err := q.lease.Acquire()
		if err != nil {
			var held *lock.HeldError
			if errors.As(err, &held) {
				q.logger.Debug("drain lease held elsewhere", zap.Int("pid", held.PID))
			} else {
				q.logger.Warn("failed to acquire drain lease", zap.Error(err))
			}
			return DrainResult{Skipped: true, Remaining: q.Len()}
		}
		defer func() {
			if err := release(); err != nil {
				q.logger.Warn("failed to release drain lease", zap.Error(err))
			}
		}()
	}

	q.mu.Lock()
	q.reload(ctx)
	pending := slices.Clone(q.ops)
	q.mu.Unlock()

	if len(pending) == 0 {
		return DrainResult{}
	}

	q.logger.Info("draining outbox", zap.Int("pending", len(pending)))
	q.bus.Emit(bus.OutboxDrainStarted, DrainStarted{Pending: len(pending)})

	var res DrainResult
	done := make(map[string]bool, len(pending))
	for _, op := range pending {
		if ctx.Err() != nil {
			break
		}
		res.Attempted++
		if err := exec(ctx, op); err != nil {
			res.Failed++
			q.logger.Warn("replay failed, operation kept",
				zap.String("op_id", op.ID),
				zap.String("kind", string(op.Kind)),
				zap.String("target", op.Target()),
				zap.Error(err),
			)
			continue
		}
		res.Succeeded++
		done[op.ID] = true
		q.logger.Debug("operation replayed", zap.String("op_id", op.ID), zap.String("target", op.Target()))
	}

	q.mu.Lock()
	q.mutate(ctx, func(ops []Operation) []Operation {
		return slices.DeleteFunc(ops, func(op Operation) bool {
			return done[op.ID]
		})
	})
	res.Remaining = len(q.ops)
	q.mu.Unlock()

	q.logger.Info("outbox drained",
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("remaining", res.Remaining),
	)
	q.bus.Emit(bus.OutboxDrained, res)
	return res
}

// reload replaces the in-memory list with the snapshot unless the snapshot
// is known to be stale. Caller holds mu.
func (q *Queue) reload(ctx context.Context) {
	if q.dirty {
		return
	}
	data, err := q.kv.Get(ctx, SnapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		q.ops = nil
		return
	}
	if err != nil {
		q.logger.Warn("failed to read outbox snapshot", zap.Error(err))
		return
	}
	ops, err := decodeSnapshot(data)
	if err != nil {
		q.logger.Warn("ignoring corrupt outbox snapshot", zap.Error(err))
		if q.ops == nil {
			q.ops = []Operation{}
		}
		return
	}
	q.ops = q.keepValid(ops)
}

// mutate applies change to the snapshot inside one store transaction and
// mirrors the result in memory. When the write fails the change is applied
// to the in-memory list alone. The write ignores ctx cancellation: an
// operation the caller saw accepted, or one already replayed, must not be
// lost because the caller gave up. Caller holds mu.
func (q *Queue) mutate(ctx context.Context, change func([]Operation) []Operation) {
	ctx = context.WithoutCancel(ctx)
	var (
		next []Operation
		ran  bool
	)
	err := q.kv.Update(ctx, SnapshotKey, func(current []byte) ([]byte, error) {
		base := q.ops
		if !q.dirty {
			if persisted, err := decodeSnapshot(current); err == nil {
				base = q.keepValid(persisted)
			} else {
				q.logger.Warn("overwriting corrupt outbox snapshot", zap.Error(err))
			}
		}
		next = change(slices.Clone(base))
		ran = true
		if len(next) == 0 {
			return []byte("[]"), nil
		}
		return json.Marshal(next)
	})
	if err != nil {
		if !ran {
			next = change(slices.Clone(q.ops))
		}
		q.dirty = true
		q.logger.Warn("failed to persist outbox snapshot, keeping it in memory", zap.Error(err))
	} else {
		q.dirty = false
	}
	q.ops = next
}

func (q *Queue) keepValid(ops []Operation) []Operation {
	return slices.DeleteFunc(ops, func(op Operation) bool {
		if err := op.Validate(); err != nil || op.ID == "" {
			q.logger.Warn("dropping malformed queued operation", zap.String("op_id", op.ID), zap.Error(err))
			return true
		}
		return false
	})
}

func decodeSnapshot(data []byte) ([]Operation, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}
