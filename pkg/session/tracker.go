package session

import (
	"context"

	"github.com/matzehuels/chartdeck/pkg/notify"
)

// Tracker applies usage events to one session and saves it.
// It implements notify.Notifier and notify.StatsSource.
type Tracker struct {
	store *Store
	id    string
}

// NewTracker creates a tracker for session id.
func NewTracker(s *Store, id string) *Tracker {
	return &Tracker{store: s, id: id}
}

// ID returns the tracked session ID.
func (t *Tracker) ID() string { return t.id }

// Notify applies e to the session state.
func (t *Tracker) Notify(ctx context.Context, e notify.Event) error {
	_, err := t.store.Update(ctx, t.id, func(st *State) error {
		st.Apply(e)
		return nil
	})
	return err
}

// Stats returns the session's dashboard statistics. An unknown session
// reports zero counters.
func (t *Tracker) Stats(ctx context.Context) (notify.Stats, error) {
	st, _, err := t.store.LoadOrCreate(ctx, t.id)
	if err != nil {
		return notify.Stats{}, err
	}
	return st.Stats(), nil
}

var (
	_ notify.Notifier    = (*Tracker)(nil)
	_ notify.StatsSource = (*Tracker)(nil)
)
