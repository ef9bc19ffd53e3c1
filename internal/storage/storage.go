// Package storage is the progression store: the only component that
// touches durable storage. It exposes per-record get and merge on top of a
// pluggable key-value Backend, and serializes every read-modify-write on a
// record behind a per-id lock.
package storage

import (
	"context"
	"errors"
)

// Keyspaces held by the store.
const (
	KeyspaceCultists = "cultists"
	KeyspaceServers  = "servers"
	KeyspaceSessions = "sessions"
)

var (
	// ErrNotFound is returned by a Backend when a record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrStorageUnavailable wraps every failure to read, write, or decode
	// durable state. It is the only fatal error class of the engine.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotLocked is returned when a transaction touches a record it did
	// not lock.
	ErrNotLocked = errors.New("storage: record not locked by transaction")
)

// Backend is a durable key-value medium.
type Backend interface {
	// Load returns the record's bytes, or ErrNotFound.
	Load(ctx context.Context, keyspace, id string) ([]byte, error)
	// Save durably replaces the record.
	Save(ctx context.Context, keyspace, id string, data []byte) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, keyspace, id string) error
	Close() error
}

// Restorer is implemented by backends that keep a last-known-good copy of
// each record.
type Restorer interface {
	Restore(ctx context.Context, keyspace, id string) error
}
