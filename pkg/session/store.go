package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/store"
)

// Store persists session state and uploaded datasets in a store.Store.
type Store struct {
	mu    sync.Mutex
	store store.Store
	keyer store.Keyer
	ttl   time.Duration
}

// NewStore creates a session store. A nil keyer uses store.DefaultKeyer.
func NewStore(s store.Store, keyer store.Keyer, ttl time.Duration) *Store {
	if s == nil {
		s = store.NewNull()
	}
	if keyer == nil {
		keyer = store.NewDefaultKeyer()
	}
	return &Store{store: s, keyer: keyer, ttl: ttl}
}

// Load returns the state of session id, or an ErrCodeSessionNotFound error.
func (s *Store) Load(ctx context.Context, id string) (*State, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	data, ok, err := s.store.Get(ctx, s.keyer.SessionKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load session")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode session")
	}
	return &st, nil
}

// LoadOrCreate loads session id, or creates a new session when id is empty
// or unknown. The bool result reports whether a session was created; a
// created session is not saved until Save is called.
func (s *Store) LoadOrCreate(ctx context.Context, id string) (*State, bool, error) {
	if id != "" {
		st, err := s.Load(ctx, id)
		if err == nil {
			return st, false, nil
		}
		if !errors.Is(err, errors.ErrCodeSessionNotFound) {
			return nil, false, err
		}
	}
	st := New()
	if id != "" {
		st.ID = id
	}
	return st, true, nil
}

// Save writes st.
func (s *Store) Save(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session")
	}
	if err := s.store.Set(ctx, s.keyer.SessionKey(st.ID), data, s.ttl); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save session")
	}
	return nil
}

// Update loads (or creates) session id, calls fn and saves the result.
// Updates through one Store are serialised.
func (s *Store) Update(ctx context.Context, id string, fn func(*State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, err := s.LoadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete removes session id. Stored datasets expire on their own.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.keyer.SessionKey(id))
}

// SaveDataset stores the rows of an upload.
func (s *Store) SaveDataset(ctx context.Context, sessionID, uploadID string, d *dataset.Dataset) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode dataset")
	}
	if err := s.store.Set(ctx, s.keyer.DatasetKey(sessionID, uploadID), data, s.ttl); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save dataset")
	}
	return nil
}

// LoadDataset returns the rows of an upload, or an ErrCodeUploadNotFound
// error.
func (s *Store) LoadDataset(ctx context.Context, sessionID, uploadID string) (*dataset.Dataset, error) {
	data, ok, err := s.store.Get(ctx, s.keyer.DatasetKey(sessionID, uploadID))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load dataset")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeUploadNotFound, "upload %q not found", uploadID)
	}
	var d dataset.Dataset
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode dataset")
	}
	return &d, nil
}

// DeleteDataset removes the rows of an upload.
func (s *Store) DeleteDataset(ctx context.Context, sessionID, uploadID string) error {
	if err := s.store.Delete(ctx, s.keyer.DatasetKey(sessionID, uploadID)); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	return nil
}
