// Package gateway is the single entry point for mutations. Each call either
// reaches the remote store or is queued with an optimistic result.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

// TempIDPrefix marks ids synthesized for inserts that are still queued.
const TempIDPrefix = "temp-"

// ErrInvalidPayload is returned for payloads that cannot be sent as JSON.
var ErrInvalidPayload = errors.New("invalid payload")

// Enqueuer accepts operations for later replay.
type Enqueuer interface {
	Enqueue(ctx context.Context, op outbox.Operation) (outbox.Operation, error)
}

// Connectivity is the gateway's view of the connectivity monitor.
type Connectivity interface {
	IsOnline() bool
	SetOnline(online bool)
}

// Gateway routes mutations to the remote store or the queue.
type Gateway struct {
	remote remote.Store
	queue  Enqueuer
	conn   Connectivity
	logger *zap.Logger

	newTempID func() string
}

// New creates a gateway.
func New(rs remote.Store, q Enqueuer, conn Connectivity, logger *zap.Logger) *Gateway {
	return &Gateway{
		remote: rs,
		queue:  q,
		conn:   conn,
		logger: logger,
		newTempID: func() string {
			return TempIDPrefix + uuid.Must(uuid.NewV7()).String()
		},
	}
}

// IsTemporaryID reports whether id was synthesized for a queued insert.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Insert creates a record. Offline, it returns data plus a temporary id.
func (g *Gateway) Insert(ctx context.Context, collection string, data remote.Record) (remote.Record, error) {
	op := outbox.Operation{Kind: outbox.KindInsert, Collection: collection, Payload: data}
	if err := check(op); err != nil {
		return nil, err
	}

	if g.conn.IsOnline() {
		rec, err := g.remote.Insert(ctx, collection, data)
		if !g.lostConnection(err) {
			return rec, err
		}
	}

	if _, err := g.queue.Enqueue(ctx, op); err != nil {
		return nil, err
	}
	rec := maps.Clone(data)
	rec["id"] = g.newTempID()
	return rec, nil
}

// Update applies a partial update. Offline, it returns only {id, ...updates};
// callers merge that into their cached record.
func (g *Gateway) Update(ctx context.Context, collection, id string, updates remote.Record) (remote.Record, error) {
	op := outbox.Operation{Kind: outbox.KindUpdate, Collection: collection, RecordID: id, Payload: updates}
	if err := check(op); err != nil {
		return nil, err
	}

	if g.conn.IsOnline() {
		rec, err := g.remote.Update(ctx, collection, id, updates)
		if !g.lostConnection(err) {
			return rec, err
		}
	}

	if _, err := g.queue.Enqueue(ctx, op); err != nil {
		return nil, err
	}
	rec := maps.Clone(updates)
	rec["id"] = id
	return rec, nil
}

// Delete removes a record.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	op := outbox.Operation{Kind: outbox.KindDelete, Collection: collection, RecordID: id}
	if err := check(op); err != nil {
		return err
	}

	if g.conn.IsOnline() {
		err := g.remote.Delete(ctx, collection, id)
		if !g.lostConnection(err) {
			return err
		}
	}

	_, err := g.queue.Enqueue(ctx, op)
	return err
}

// lostConnection reports whether err means the request never got an answer.
// The monitor is flipped offline so the call falls through to the queue;
// every other outcome, rejections included, goes back to the caller as is.
func (g *Gateway) lostConnection(err error) bool {
	if !errors.Is(err, remote.ErrUnreachable) {
		return false
	}
	g.logger.Warn("remote store became unreachable mid-call, queuing", zap.Error(err))
	g.conn.SetOnline(false)
	return true
}

func check(op outbox.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}
	if op.Payload == nil {
		return nil
	}
	if _, err := structpb.NewStruct(op.Payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
