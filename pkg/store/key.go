package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer builds store keys.
type Keyer interface {
	// SessionKey is the key of a session's state record.
	SessionKey(id string) string

	// DatasetKey is the key of one uploaded dataset within a session.
	DatasetKey(sessionID, uploadID string) string
}

// DefaultKeyer produces "session:<id>" and "dataset:<session>:<upload>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SessionKey(id string) string { return "session:" + id }

func (DefaultKeyer) DatasetKey(sessionID, uploadID string) string {
	return "dataset:" + sessionID + ":" + uploadID
}

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend.
//
//	keyer := store.NewScopedKeyer(store.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SessionKey(id string) string {
	return k.prefix + k.inner.SessionKey(id)
}

func (k *ScopedKeyer) DatasetKey(sessionID, uploadID string) string {
	return k.prefix + k.inner.DatasetKey(sessionID, uploadID)
}
