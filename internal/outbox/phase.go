package outbox

import (
	"fmt"
	"slices"
	"sync"
)

// Phase is the drain state of a Queue.
type Phase string

const (
	Idle     Phase = "IDLE"
	Draining Phase = "DRAINING"
)

// validTransitions defines allowed phase transitions. DRAINING has no edge
// to itself, which is what turns a concurrent Drain into a no-op.
var validTransitions = map[Phase][]Phase{
	Idle:     {Draining},
	Draining: {Idle},
}

type phaseMachine struct {
	mu      sync.Mutex
	current Phase
}

func newPhaseMachine() *phaseMachine {
	return &phaseMachine{current: Idle}
}

func (m *phaseMachine) Current() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *phaseMachine) Transition(to Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	m.current = to
	return nil
}
