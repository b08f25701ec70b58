// Package notify reports usage events (charts generated, exports completed,
// uploads recorded) to whatever activity sink the host wires in.
//
// Notification is fire-and-forget from the caller's point of view: the
// pipeline never fails because a [Notifier] did. Wrap sinks with [Safe] to
// log and swallow delivery errors, or with [Async] to deliver off the
// request path.
//
//	n := notify.Safe(notify.Multi(tracker, notify.NewHTTP(url)), logger)
//	n.Notify(ctx, notify.ChartGenerated(chart.KindBar, "sales"))
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Actions recorded in the activity log.
const (
	ActionGenerated = "Generated"
	ActionExported  = "Exported"
	ActionUploaded  = "Uploaded"
	ActionInsight   = "AI Analysis"
)

// Event types, stored as the activity "type".
const (
	TypeChart  = "chart"
	TypeExport = "export"
	TypeUpload = "upload"
	TypeAI     = "ai"
)

// Event is one usage record.
type Event struct {
	Action  string    `json:"action"`
	Name    string    `json:"name"`
	Kind    string    `json:"type"`
	Dataset string    `json:"dataset,omitempty"`
	At      time.Time `json:"at"`

	// Chart is the chart kind for chart events.
	Chart string `json:"chart,omitempty"`

	// Detail carries free text such as an insight description.
	Detail string `json:"detail,omitempty"`

	// Rows, Columns and SizeKB describe an uploaded dataset.
	Rows    int     `json:"rows,omitempty"`
	Columns int     `json:"columns,omitempty"`
	SizeKB  float64 `json:"fileSize,omitempty"`
}

// String formats e for logs.
func (e Event) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Action, e.Name, e.Kind)
}

// ChartGenerated is sent after chart data was built for dataset.
func ChartGenerated(kind, dataset string) Event {
	return Event{
		Action:  ActionGenerated,
		Name:    kind + " chart",
		Kind:    TypeChart,
		Chart:   kind,
		Dataset: dataset,
		At:      time.Now(),
	}
}

// ExportCompleted is sent after an artifact was encoded.
func ExportCompleted(filename, dataset string) Event {
	return Event{
		Action:  ActionExported,
		Name:    filename,
		Kind:    TypeExport,
		Dataset: dataset,
		At:      time.Now(),
	}
}

// UploadRecorded is sent after a dataset was stored.
func UploadRecorded(name string, rows, columns int, sizeKB float64) Event {
	return Event{
		Action:  ActionUploaded,
		Name:    name,
		Kind:    TypeUpload,
		Dataset: name,
		Rows:    rows,
		Columns: columns,
		SizeKB:  sizeKB,
		At:      time.Now(),
	}
}

// InsightLogged is sent after an analysis note was recorded for a dataset.
func InsightLogged(name, description string) Event {
	return Event{
		Action:  ActionInsight,
		Name:    name,
		Kind:    TypeAI,
		Dataset: name,
		Detail:  description,
		At:      time.Now(),
	}
}

// Stats summarises an activity log for the dashboard.
type Stats struct {
	TotalFiles     int     `json:"totalFiles"`
	ChartsCreated  int     `json:"chartsCreated"`
	AIInsights     int     `json:"aiInsights"`
	RecentActivity []Event `json:"recentActivity"`
}

// RecentLimit is the number of events reported in Stats.RecentActivity.
const RecentLimit = 5

// Notifier delivers usage events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// StatsSource reports dashboard statistics.
type StatsSource interface {
	Stats(ctx context.Context) (Stats, error)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, e Event) error

// Notify calls f(ctx, e).
func (f Func) Notify(ctx context.Context, e Event) error { return f(ctx, e) }

// Nop discards every event.
type Nop struct{}

// Notify returns nil.
func (Nop) Notify(context.Context, Event) error { return nil }

type multi []Notifier

// Multi delivers every event to each non-nil notifier in order and joins
// their errors. One failing notifier does not stop the others.
func Multi(ns ...Notifier) Notifier {
	var m multi
	for _, n := range ns {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
