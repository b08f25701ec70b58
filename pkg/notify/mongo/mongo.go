// Package mongo stores usage events in MongoDB and answers dashboard
// statistics from the same collections.
//
// Collections:
//
//   - activities: every event as {action, name, type, createdAt}
//   - charts:     chart events as {type, fileName, createdAt}
//   - files:      upload events as {fileName, rows, columns, fileSize, createdAt}
//   - insights:   insight events as {description, fileName, createdAt}
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
)

// Collection names.
const (
	Activities = "activities"
	Charts     = "charts"
	Files      = "files"
	Insights   = "insights"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "chartdeck"

// Activity is one document of the activities collection.
type Activity struct {
	Action    string    `bson:"action"`
	Name      string    `bson:"name"`
	Type      string    `bson:"type"`
	Dataset   string    `bson:"dataset,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Event converts a to a notify event.
func (a Activity) Event() notify.Event {
	return notify.Event{Action: a.Action, Name: a.Name, Kind: a.Type, Dataset: a.Dataset, At: a.CreatedAt}
}

type chartDoc struct {
	Type      string    `bson:"type"`
	FileName  string    `bson:"fileName"`
	CreatedAt time.Time `bson:"createdAt"`
}

type fileDoc struct {
	FileName  string    `bson:"fileName"`
	Rows      int       `bson:"rows"`
	Columns   int       `bson:"columns"`
	FileSize  float64   `bson:"fileSize"`
	CreatedAt time.Time `bson:"createdAt"`
}

type insightDoc struct {
	Description string    `bson:"description"`
	FileName    string    `bson:"fileName"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// collection is the subset of *mongo.Collection used here.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Sink is a notify.Notifier and notify.StatsSource backed by MongoDB.
type Sink struct {
	client     *mongo.Client
	activities collection
	charts     collection
	files      collection
	insights   collection
}

// Connect opens a client for uri and returns a sink on database db
// (DefaultDatabase when empty).
func Connect(ctx context.Context, uri, db string) (*Sink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	if db == "" {
		db = DefaultDatabase
	}
	s := New(client.Database(db))
	s.client = client
	return s, nil
}

// New returns a sink on an existing database handle.
func New(db *mongo.Database) *Sink {
	return &Sink{
		activities: db.Collection(Activities),
		charts:     db.Collection(Charts),
		files:      db.Collection(Files),
		insights:   db.Collection(Insights),
	}
}

// Close disconnects the client opened by Connect.
func (s *Sink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Notify records e in the activities collection and, depending on its type,
// in the charts, files or insights collection.
func (s *Sink) Notify(ctx context.Context, e notify.Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}

	var doc any
	var coll collection
	switch e.Kind {
	case notify.TypeChart:
		doc, coll = chartDoc{Type: e.Chart, FileName: e.Dataset, CreatedAt: at}, s.charts
	case notify.TypeUpload:
		doc, coll = fileDoc{FileName: e.Name, Rows: e.Rows, Columns: e.Columns, FileSize: e.SizeKB, CreatedAt: at}, s.files
	case notify.TypeAI:
		doc, coll = insightDoc{Description: e.Detail, FileName: e.Name, CreatedAt: at}, s.insights
	}
	if coll != nil {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "insert %s record", e.Kind)
		}
	}

	act := Activity{Action: e.Action, Name: e.Name, Type: e.Kind, Dataset: e.Dataset, CreatedAt: at}
	if _, err := s.activities.InsertOne(ctx, act); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "insert activity")
	}
	return nil
}

// Stats counts files, charts and insights and returns the newest
// activities.
func (s *Sink) Stats(ctx context.Context) (notify.Stats, error) {
	var st notify.Stats
	counts := []struct {
		coll collection
		dst  *int
	}{
		{s.files, &st.TotalFiles},
		{s.charts, &st.ChartsCreated},
		{s.insights, &st.AIInsights},
	}
	for _, c := range counts {
		n, err := c.coll.CountDocuments(ctx, bson.D{})
		if err != nil {
			return notify.Stats{}, errors.Wrap(errors.ErrCodeStorage, err, "count documents")
		}
		*c.dst = int(n)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(notify.RecentLimit)
	cur, err := s.activities.Find(ctx, bson.D{}, opts)
	if err != nil {
		return notify.Stats{}, errors.Wrap(errors.ErrCodeStorage, err, "find activities")
	}
	var acts []Activity
	if err := cur.All(ctx, &acts); err != nil {
		return notify.Stats{}, errors.Wrap(errors.ErrCodeStorage, err, "decode activities")
	}
	st.RecentActivity = make([]notify.Event, 0, len(acts))
	for _, a := range acts {
		st.RecentActivity = append(st.RecentActivity, a.Event())
	}
	return st, nil
}
