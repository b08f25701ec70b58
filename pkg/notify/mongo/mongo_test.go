package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/chartdeck/pkg/notify"
)

type fakeCollection struct {
	docs     []interface{}
	findOpts []*options.FindOptions
	err      error
}

func (f *fakeCollection) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, doc)
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error) {
	return int64(len(f.docs)), f.err
}

func (f *fakeCollection) Find(_ context.Context, _ interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func newFakeSink() (*Sink, map[string]*fakeCollection) {
	colls := map[string]*fakeCollection{
		Activities: {}, Charts: {}, Files: {}, Insights: {},
	}
	return &Sink{
		activities: colls[Activities],
		charts:     colls[Charts],
		files:      colls[Files],
		insights:   colls[Insights],
	}, colls
}

func TestNotifyRoutesByType(t *testing.T) {
	tests := []struct {
		event notify.Event
		coll  string
	}{
		{notify.ChartGenerated("bar", "sales"), Charts},
		{notify.UploadRecorded("sales.csv", 3, 2, 0.5), Files},
		{notify.InsightLogged("sales.csv", "sales peak in May"), Insights},
		{notify.ExportCompleted("sales-bar.png", "sales"), ""},
	}
	for _, tt := range tests {
		s, colls := newFakeSink()
		if err := s.Notify(context.Background(), tt.event); err != nil {
			t.Fatalf("Notify(%s) error: %v", tt.event, err)
		}
		if n := len(colls[Activities].docs); n != 1 {
			t.Errorf("Notify(%s) activities = %d, want 1", tt.event, n)
		}
		for name, c := range colls {
			if name == Activities {
				continue
			}
			want := 0
			if name == tt.coll {
				want = 1
			}
			if len(c.docs) != want {
				t.Errorf("Notify(%s) %s docs = %d, want %d", tt.event, name, len(c.docs), want)
			}
		}
	}
}

func TestNotifyChartDocument(t *testing.T) {
	s, colls := newFakeSink()
	if err := s.Notify(context.Background(), notify.ChartGenerated("doughnut", "sales")); err != nil {
		t.Fatal(err)
	}
	doc := colls[Charts].docs[0].(chartDoc)
	if doc.Type != "doughnut" || doc.FileName != "sales" {
		t.Errorf("chart doc = %+v, want type doughnut fileName sales", doc)
	}
	act := colls[Activities].docs[0].(Activity)
	if act.Action != notify.ActionGenerated || act.Name != "doughnut chart" || act.Type != notify.TypeChart {
		t.Errorf("activity = %+v", act)
	}
}

func TestNotifyError(t *testing.T) {
	s, colls := newFakeSink()
	colls[Activities].err = errors.New("down")
	if err := s.Notify(context.Background(), notify.ExportCompleted("a.png", "a")); err == nil {
		t.Error("Notify() error = nil, want storage error")
	}
}

func TestStats(t *testing.T) {
	s, colls := newFakeSink()
	ctx := context.Background()
	events := []notify.Event{
		notify.UploadRecorded("a.csv", 1, 1, 0.1),
		notify.ChartGenerated("bar", "a.csv"),
		notify.ChartGenerated("line", "a.csv"),
		notify.InsightLogged("a.csv", "x"),
	}
	for _, e := range events {
		e.At = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := s.Notify(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if st.TotalFiles != 1 || st.ChartsCreated != 2 || st.AIInsights != 1 {
		t.Errorf("Stats() = %+v, want files 1 charts 2 insights 1", st)
	}
	if len(st.RecentActivity) != 4 {
		t.Fatalf("RecentActivity len = %d, want 4", len(st.RecentActivity))
	}
	if got := st.RecentActivity[1]; got.Name != "bar chart" || got.Kind != notify.TypeChart {
		t.Errorf("RecentActivity[1] = %+v", got)
	}

	opts := colls[Activities].findOpts
	if len(opts) != 1 || opts[0].Limit == nil || *opts[0].Limit != notify.RecentLimit {
		t.Errorf("Find options = %+v, want limit %d", opts, notify.RecentLimit)
	}
}
