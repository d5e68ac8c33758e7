// Package persist stores the serialized task list under a single key.
//
// A Backend is a small byte-level key-value store. The Adapter on top of it
// owns the payload format: it encodes the whole collection on every save and
// treats a missing or unreadable payload as an empty list on load.
package persist

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Backend.Get when the key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrSave wraps every failure to write the task list.
	ErrSave = errors.New("save tasks")
)

// Backend is a key-value store holding opaque payloads.
type Backend interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
