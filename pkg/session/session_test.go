package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/chartdeck/pkg/dataset"
	cderrors "github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/store"
)

func sample(name string) *dataset.Dataset {
	return dataset.New(name,
		dataset.RowOf("city", "A", "sales", 10.0),
		dataset.RowOf("city", "B", "sales", 5.0),
	)
}

func TestRecordUpload(t *testing.T) {
	st := New()
	first := st.RecordUpload(sample("a.csv"))
	second := st.RecordUpload(sample("b.csv"))

	if first.ID == "" || first.ID == second.ID {
		t.Errorf("upload IDs = %q, %q, want distinct", first.ID, second.ID)
	}
	if len(st.Uploads) != 2 || st.Uploads[0].Name != "b.csv" {
		t.Errorf("history = %+v, want newest first", st.Uploads)
	}
	if first.Rows != 2 || first.Columns != 2 {
		t.Errorf("upload = %+v, want 2 rows 2 columns", first)
	}
	if st.Counters.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", st.Counters.TotalFiles)
	}
	if st.Recent[0].Action != notify.ActionUploaded || st.Recent[0].Name != "b.csv" {
		t.Errorf("Recent[0] = %+v, want Uploaded b.csv", st.Recent[0])
	}
}

func TestDeleteUpload(t *testing.T) {
	st := New()
	u := st.RecordUpload(sample("a.csv"))

	if !st.DeleteUpload(u.ID) {
		t.Error("DeleteUpload(existing) = false")
	}
	if st.DeleteUpload(u.ID) {
		t.Error("DeleteUpload(deleted) = true")
	}
	if _, ok := st.Upload(u.ID); ok {
		t.Error("Upload found after delete")
	}
	if st.Counters.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d after delete, want 1", st.Counters.TotalFiles)
	}
}

func TestApply(t *testing.T) {
	st := New()
	events := []notify.Event{
		notify.ChartGenerated("bar", "a"),
		notify.ChartGenerated("line", "a"),
		notify.ExportCompleted("a-bar.png", "a"),
		notify.InsightLogged("a", "x"),
		notify.UploadRecorded("a", 1, 1, 0),
		notify.ChartGenerated("scatter", "a"),
		notify.ChartGenerated("doughnut", "a"),
	}
	for _, e := range events {
		st.Apply(e)
	}
	want := Counters{TotalFiles: 1, ChartsCreated: 4, Exports: 1, AIInsights: 1}
	if st.Counters != want {
		t.Errorf("Counters = %+v, want %+v", st.Counters, want)
	}
	if len(st.Recent) != notify.RecentLimit {
		t.Fatalf("len(Recent) = %d, want %d", len(st.Recent), notify.RecentLimit)
	}
	if st.Recent[0].Name != "doughnut chart" {
		t.Errorf("Recent[0] = %+v, want newest first", st.Recent[0])
	}

	stats := st.Stats()
	if stats.ChartsCreated != 4 || stats.AIInsights != 1 || stats.TotalFiles != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), nil, time.Hour)

	st := New()
	st.RecordUpload(sample("a.csv"))
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := s.Load(ctx, st.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.ID != st.ID || len(got.Uploads) != 1 || got.Counters != st.Counters {
		t.Errorf("Load() = %+v, want %+v", got, st)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore(store.NewMemory(), nil, 0)
	_, err := s.Load(context.Background(), "nope")
	if !cderrors.Is(err, cderrors.ErrCodeSessionNotFound) {
		t.Errorf("Load(missing) = %v, want session not found", err)
	}
	_, err = s.Load(context.Background(), "../etc")
	if !cderrors.Is(err, cderrors.ErrCodeInvalidInput) {
		t.Errorf("Load(invalid) = %v, want invalid input", err)
	}
}

func TestLoadOrCreate(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), nil, 0)

	st, created, err := s.LoadOrCreate(ctx, "")
	if err != nil || !created || st.ID == "" {
		t.Fatalf("LoadOrCreate(\"\") = %+v, %v, %v", st, created, err)
	}
	st, created, err = s.LoadOrCreate(ctx, "client-chosen")
	if err != nil || !created || st.ID != "client-chosen" {
		t.Fatalf("LoadOrCreate(client-chosen) = %+v, %v, %v", st, created, err)
	}
	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}
	_, created, _ = s.LoadOrCreate(ctx, "client-chosen")
	if created {
		t.Error("LoadOrCreate(saved) created a new session")
	}
}

func TestUpdateError(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), nil, 0)
	boom := errors.New("boom")
	if _, err := s.Update(ctx, "x", func(*State) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Update() = %v, want boom", err)
	}
	if _, err := s.Load(ctx, "x"); err == nil {
		t.Error("failed update was saved")
	}
}

func TestDatasets(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), nil, 0)
	d := sample("a.csv")

	if err := s.SaveDataset(ctx, "sess", "u1", d); err != nil {
		t.Fatalf("SaveDataset() error: %v", err)
	}
	got, err := s.LoadDataset(ctx, "sess", "u1")
	if err != nil {
		t.Fatalf("LoadDataset() error: %v", err)
	}
	if got.Name != "a.csv" || got.Len() != 2 || got.Rows[0].Get("city").Text() != "A" {
		t.Errorf("LoadDataset() = %+v", got)
	}
	if keys := got.Rows[0].Keys(); len(keys) != 2 || keys[0] != "city" {
		t.Errorf("row keys = %v, want [city sales]", keys)
	}

	if err := s.DeleteDataset(ctx, "sess", "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadDataset(ctx, "sess", "u1"); !cderrors.Is(err, cderrors.ErrCodeUploadNotFound) {
		t.Errorf("LoadDataset(deleted) = %v, want upload not found", err)
	}
}

func TestTracker(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), nil, 0)
	tr := NewTracker(s, "sess-1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Notify(ctx, notify.ChartGenerated("bar", "a")); err != nil {
				t.Errorf("Notify() error: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := tr.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.ChartsCreated != 10 {
		t.Errorf("ChartsCreated = %d, want 10", stats.ChartsCreated)
	}
	if len(stats.RecentActivity) != notify.RecentLimit {
		t.Errorf("len(RecentActivity) = %d, want %d", len(stats.RecentActivity), notify.RecentLimit)
	}
}

func TestTrackerStatsUnknownSession(t *testing.T) {
	tr := NewTracker(NewStore(store.NewMemory(), nil, 0), "fresh")
	stats, err := tr.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.ChartsCreated != 0 || len(stats.RecentActivity) != 0 {
		t.Errorf("Stats() = %+v, want zero", stats)
	}
}
