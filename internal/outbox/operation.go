package outbox

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidOperation is returned for operations that could never replay.
var ErrInvalidOperation = errors.New("invalid operation")

// Kind is the mutation an Operation performs.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Operation is one pending mutation. Its JSON form is the persisted
// snapshot format.
type Operation struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Kind       Kind           `json:"kind"`
	Collection string         `json:"collection"`
	Payload    map[string]any `json:"payload"`
	RecordID   string         `json:"recordId,omitempty"`
}

// Validate checks the shape rules: inserts carry a payload and no record id,
// updates carry both, deletes carry only a record id.
func (op Operation) Validate() error {
	if op.Collection == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidOperation)
	}
	switch op.Kind {
	case KindInsert:
		if op.RecordID != "" {
			return fmt.Errorf("%w: insert into %s carries record id %q", ErrInvalidOperation, op.Collection, op.RecordID)
		}
		if op.Payload == nil {
			return fmt.Errorf("%w: insert into %s without payload", ErrInvalidOperation, op.Collection)
		}
	case KindUpdate:
		if op.RecordID == "" {
			return fmt.Errorf("%w: update of %s without record id", ErrInvalidOperation, op.Collection)
		}
		if op.Payload == nil {
			return fmt.Errorf("%w: update of %s/%s without payload", ErrInvalidOperation, op.Collection, op.RecordID)
		}
	case KindDelete:
		if op.RecordID == "" {
			return fmt.Errorf("%w: delete from %s without record id", ErrInvalidOperation, op.Collection)
		}
		if op.Payload != nil {
			return fmt.Errorf("%w: delete from %s/%s carries payload", ErrInvalidOperation, op.Collection, op.RecordID)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
	return nil
}

// Target renders the operation's target for logs, e.g. "gifts/9".
func (op Operation) Target() string {
	if op.RecordID == "" {
		return op.Collection
	}
	return op.Collection + "/" + op.RecordID
}
