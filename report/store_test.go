package report

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "AlarmHistory.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_ReplaceDropsPreviousContents(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if ing, err := store.LastIngestion(ctx); err != nil || ing != nil {
		t.Fatalf("expected no ingestion on a fresh store, got %+v err=%v", ing, err)
	}

	ts := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	first := []AlarmEvent{
		{Timestamp: ts, AlarmType: "Proceso", AlarmCode: "A1", Message: "Alta", User: "ana"},
		{Timestamp: ts.Add(time.Minute), AlarmType: "Proceso", AlarmCode: "A2", Message: "Baja", User: "jsmith"},
		{Timestamp: ts.Add(2 * time.Minute), AlarmType: "Proceso", AlarmCode: "A1", Message: "Alta", User: "jsmith"},
	}
	if err := store.ReplaceAlarms(ctx, IngestionRecord{RunID: "run-1", Source: "a.csv"}, first); err != nil {
		t.Fatal(err)
	}
	counts, err := store.UserFrequency(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []Count{{"jsmith", 2}, {"ana", 1}}; !reflect.DeepEqual(counts, want) {
		t.Fatalf("got %v, want %v", counts, want)
	}

	second := []AlarmEvent{{Timestamp: ts, Message: "Reinicio", User: "maria"}}
	if err := store.ReplaceAlarms(ctx, IngestionRecord{RunID: "run-2", Source: "b.csv"}, second); err != nil {
		t.Fatal(err)
	}
	cached, err := store.Alarms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 || cached[0].User != "maria" || !cached[0].Timestamp.Equal(ts) {
		t.Fatalf("expected cache replaced by second ingestion, got %+v", cached)
	}
	ing, err := store.LastIngestion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ing == nil || ing.RunID != "run-2" || ing.Rows != 1 || ing.Source != "b.csv" {
		t.Fatalf("unexpected ingestion record: %+v", ing)
	}
	var n int64
	if err := store.db.Model(&IngestionRecord{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one ingestion record, got %d", n)
	}
}

func TestStore_ReplaceWithNoAlarms(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.ReplaceAlarms(ctx, IngestionRecord{RunID: "empty"}, nil); err != nil {
		t.Fatal(err)
	}
	counts, err := store.UserFrequency(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected no counts, got %v", counts)
	}
}
