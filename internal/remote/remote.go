// Package remote is the boundary to the household's hosted relational store.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Record is a single row as the remote store returns it.
type Record = map[string]any

// Store performs mutations against named collections.
type Store interface {
	Insert(ctx context.Context, collection string, data Record) (Record, error)
	Update(ctx context.Context, collection, id string, updates Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error

	// Ping reports whether the store can currently be reached.
	Ping(ctx context.Context) error
}

var (
	// ErrNotFound reports that the targeted record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRows reports a filtered update or delete that matched nothing. It
	// also matches ErrNotFound.
	ErrNoRows = fmt.Errorf("%w: no rows matched", ErrNotFound)

	// ErrUnreachable reports that the request never reached the store.
	ErrUnreachable = errors.New("remote store unreachable")
)

// Error is a rejection returned by the remote store.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, msg)
}

// Is matches ErrNotFound for 404 responses and PostgREST's zero-row code,
// and ErrNoRows for the zero-row code only.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == codeNoRows
	case ErrNoRows:
		return e.Code == codeNoRows
	}
	return false
}

const codeNoRows = "PGRST116"
