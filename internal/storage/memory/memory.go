// Package memory is an in-memory storage backend for tests and throwaway
// runs.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/tatianab/orb-cult/internal/storage"
)

// Backend keeps records in a map. Implements storage.Backend.
type Backend struct {
	mu      sync.Mutex
	records map[string][]byte
	closed  bool
}

// New returns an empty in-memory backend.
func New() *Backend {
	return &Backend{records: make(map[string][]byte)}
}

var errClosed = errors.New("memory backend closed")

func key(keyspace, id string) string { return keyspace + "/" + id }

// Load implements storage.Backend.
func (b *Backend) Load(_ context.Context, keyspace, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errClosed
	}
	data, ok := b.records[key(keyspace, id)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(data), nil
}

// Save implements storage.Backend.
func (b *Backend) Save(_ context.Context, keyspace, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	b.records[key(keyspace, id)] = slices.Clone(data)
	return nil
}

// Delete implements storage.Backend.
func (b *Backend) Delete(_ context.Context, keyspace, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	delete(b.records, key(keyspace, id))
	return nil
}

// Close implements storage.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Len returns the number of stored records.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
