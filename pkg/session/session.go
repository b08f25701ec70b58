// Package session holds per-user application state: the upload history,
// usage counters and the most recent activity.
//
// State is an explicit value owned by whoever serves the user (a CLI
// invocation, an HTTP request) instead of process-wide globals. A [Store]
// persists it in any store.Store backend, reading it when a session starts
// and writing it after every mutation. A [Tracker] is a notify.Notifier that
// applies usage events to one session's state.
//
// # Usage
//
//	st := session.NewStore(store.NewMemory(), nil, session.DefaultTTL)
//	tracker := session.NewTracker(st, sessionID)
//	runner := pipeline.NewRunner(tracker, logger)
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/notify"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * 24 * time.Hour
)

// Upload is one entry of the upload history.
type Upload struct {
	ID         string    `json:"id"`
	Name       string    `json:"fileName"`
	UploadDate time.Time `json:"uploadDate"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	SizeKB     float64   `json:"fileSize"`
}

// Counters are the dashboard totals of one session.
type Counters struct {
	TotalFiles    int `json:"totalFiles"`
	ChartsCreated int `json:"chartsCreated"`
	Exports       int `json:"exports"`
	AIInsights    int `json:"aiInsights"`
}

// State is everything remembered about one session.
type State struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Uploads   []Upload       `json:"uploads"`
	Counters  Counters       `json:"counters"`
	Recent    []notify.Event `json:"recentActivity"`
}

// NewID returns a fresh random session or upload identifier.
func NewID() string { return uuid.NewString() }

// New creates an empty state with a fresh ID.
func New() *State {
	now := time.Now()
	return &State{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Uploads:   []Upload{},
		Recent:    []notify.Event{},
	}
}

// RecordUpload adds d to the front of the upload history and applies the
// matching upload event. The returned upload carries a fresh ID.
func (s *State) RecordUpload(d *dataset.Dataset) Upload {
	sum := dataset.Summarize(d)
	u := Upload{
		ID:         NewID(),
		Name:       d.Name,
		UploadDate: time.Now(),
		Rows:       sum.Rows,
		Columns:    sum.Columns,
		SizeKB:     sum.SizeKB,
	}
	s.Uploads = slices.Insert(s.Uploads, 0, u)
	s.Apply(notify.UploadRecorded(u.Name, u.Rows, u.Columns, u.SizeKB))
	return u
}

// Upload returns the history entry with the given ID.
func (s *State) Upload(id string) (Upload, bool) {
	i := slices.IndexFunc(s.Uploads, func(u Upload) bool { return u.ID == id })
	if i < 0 {
		return Upload{}, false
	}
	return s.Uploads[i], true
}

// DeleteUpload removes an entry from the history. Counters are not
// decremented. It reports whether the entry existed.
func (s *State) DeleteUpload(id string) bool {
	n := len(s.Uploads)
	s.Uploads = slices.DeleteFunc(s.Uploads, func(u Upload) bool { return u.ID == id })
	if len(s.Uploads) == n {
		return false
	}
	s.UpdatedAt = time.Now()
	return true
}

// Apply counts e and records it as the newest activity, keeping at most
// notify.RecentLimit entries.
func (s *State) Apply(e notify.Event) {
	switch e.Kind {
	case notify.TypeChart:
		s.Counters.ChartsCreated++
	case notify.TypeExport:
		s.Counters.Exports++
	case notify.TypeUpload:
		s.Counters.TotalFiles++
	case notify.TypeAI:
		s.Counters.AIInsights++
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.Recent = slices.Insert(s.Recent, 0, e)
	if len(s.Recent) > notify.RecentLimit {
		s.Recent = s.Recent[:notify.RecentLimit]
	}
	s.UpdatedAt = time.Now()
}

// Stats returns the dashboard view of s.
func (s *State) Stats() notify.Stats {
	return notify.Stats{
		TotalFiles:     s.Counters.TotalFiles,
		ChartsCreated:  s.Counters.ChartsCreated,
		AIInsights:     s.Counters.AIInsights,
		RecentActivity: slices.Clone(s.Recent),
	}
}
