package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

// Bolt is a KV backed by a single bbolt file. bbolt holds an exclusive file
// lock while open, so only one process can use a profile's queue.bolt at a
// time.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the bbolt file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketKV).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		value = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Update runs fn inside a bbolt write transaction.
func (b *Bolt) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		// Values returned by bbolt are only valid for the life of the tx.
		current := bytes.Clone(bucket.Get([]byte(key)))
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			next = []byte{}
		}
		if err := bucket.Put([]byte(key), next); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	})
}

// Close closes the underlying file.
func (b *Bolt) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
