package remote

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Call records one mutation received by a Memory store.
type Call struct {
	Method     string
	Collection string
	ID         string
	Data       Record
}

// Memory is an in-process Store used for local development and tests.
type Memory struct {
	mu          sync.Mutex
	rows        map[string]map[string]Record
	calls       []Call
	failNext    []error
	failWhen    func(Call) error
	unreachable bool
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]map[string]Record)}
}

// FailNext makes the next mutation return err. Calls stack in FIFO order.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = append(m.failNext, err)
}

// FailWhen installs a hook consulted on every mutation; a non-nil result is
// returned instead of applying the call.
func (m *Memory) FailWhen(fn func(Call) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWhen = fn
}

// SetUnreachable simulates a lost network path.
func (m *Memory) SetUnreachable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreachable = v
}

// Seed stores rec as-is. rec must carry a string "id".
func (m *Memory) Seed(collection string, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := rec["id"].(string)
	m.table(collection)[id] = maps.Clone(rec)
}

// Get returns a copy of the stored row.
func (m *Memory) Get(collection, id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[collection][id]
	return maps.Clone(rec), ok
}

// Count returns the number of rows in collection.
func (m *Memory) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[collection])
}

// Calls returns every mutation that reached the store, in order, including
// ones rejected by an injected failure.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Memory) Insert(ctx context.Context, collection string, data Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(ctx, Call{Method: http.MethodPost, Collection: collection, Data: maps.Clone(data)}); err != nil {
		return nil, err
	}

	rec := maps.Clone(data)
	if rec == nil {
		rec = Record{}
	}
	if id, _ := rec["id"].(string); id == "" {
		rec["id"] = uuid.NewString()
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	m.table(collection)[rec["id"].(string)] = rec
	return maps.Clone(rec), nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, updates Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(ctx, Call{Method: http.MethodPatch, Collection: collection, ID: id, Data: maps.Clone(updates)}); err != nil {
		return nil, err
	}

	rec, ok := m.rows[collection][id]
	if !ok {
		return nil, &Error{
			Status:  http.StatusNotAcceptable,
			Code:    codeNoRows,
			Message: "JSON object requested, multiple (or no) rows returned",
		}
	}
	maps.Copy(rec, updates)
	rec["id"] = id
	return maps.Clone(rec), nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(ctx, Call{Method: http.MethodDelete, Collection: collection, ID: id}); err != nil {
		return err
	}

	if _, ok := m.rows[collection][id]; !ok {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNoRows)
	}
	delete(m.rows[collection], id)
	return nil
}

// Select returns copies of matching rows ordered by created_at, then id.
func (m *Memory) Select(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return nil, fmt.Errorf("%w: memory store offline", ErrUnreachable)
	}

	var rows []Record
	for _, rec := range m.rows[collection] {
		if q.matches(rec) {
			rows = append(rows, maps.Clone(rec))
		}
	}
	slices.SortFunc(rows, func(a, b Record) int {
		if c := cmp.Compare(fmt.Sprint(a["created_at"]), fmt.Sprint(b["created_at"])); c != 0 {
			return c
		}
		return cmp.Compare(fmt.Sprint(a["id"]), fmt.Sprint(b["id"]))
	})
	return rows, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return ErrUnreachable
	}
	return nil
}

// admit records the call and returns any injected failure. Caller holds mu.
func (m *Memory) admit(ctx context.Context, call Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.unreachable {
		return fmt.Errorf("%w: memory store offline", ErrUnreachable)
	}
	m.calls = append(m.calls, call)
	if len(m.failNext) > 0 {
		err := m.failNext[0]
		m.failNext = m.failNext[1:]
		return err
	}
	if m.failWhen != nil {
		return m.failWhen(call)
	}
	return nil
}

func (m *Memory) table(collection string) map[string]Record {
	t, ok := m.rows[collection]
	if !ok {
		t = make(map[string]Record)
		m.rows[collection] = t
	}
	return t
}
