// Package store provides a keyed byte store with optional expiry.
//
// Backends:
//   - [File]: one JSON file per key under a directory, for the CLI
//   - [Memory]: a mutex-guarded map, for tests and single-process servers
//   - [Redis]: shared storage for multi-instance servers
//   - [Null]: stores nothing
//
// Keys are built by a [Keyer] so that callers never format keys by hand.
// Wrap a backend with [Instrument] to report hits, misses and writes to the
// registered observability hooks.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/chartdeck/pkg/observability"
)

// Store is a keyed byte store. A ttl of zero means the entry never expires.
type Store interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

type instrumented struct {
	Store
}

// Instrument wraps s so that Get and Set report to observability.Store().
// The key type passed to the hooks is the key's first colon-separated
// segment.
func Instrument(s Store) Store {
	return instrumented{s}
}

func (s instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.Store.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Store().OnStoreHit(ctx, keyType(key))
		} else {
			observability.Store().OnStoreMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (s instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := s.Store.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Store().OnStoreSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	t, _, _ := strings.Cut(key, ":")
	return t
}
