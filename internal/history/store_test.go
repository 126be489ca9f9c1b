package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"voicetag/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, word := range []string{"buka", "tutup", "buka"} {
		err := store.Record(ctx, history.Record{
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Source:      "upload",
			Filename:    word + ".wav",
			Word:        word,
			Speaker:     "fikri",
			WordCode:    "A",
			SpeakerCode: "A",
			Prediction:  []float64{1, float64(i), 1},
			Duration:    1500 * time.Millisecond,
			Fingerprint: "abc123",
		})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	newest := records[0]
	if !newest.CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("expected newest first, got %v", newest.CreatedAt)
	}
	if newest.ID == "" || newest.Filename != "buka.wav" || newest.Fingerprint != "abc123" {
		t.Fatalf("unexpected record %#v", newest)
	}
	if !slices.Equal(newest.Prediction, []float64{1, 2, 1}) {
		t.Fatalf("unexpected prediction %v", newest.Prediction)
	}
	if newest.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %v", newest.Duration)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 records, got %d (%v)", n, err)
	}
}

func TestRecordWithoutOptionalFields(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, history.Record{Source: "recorder", Word: "tutup", Speaker: "fauzan", WordCode: "B", SpeakerCode: "B", Prediction: []float64{0, 0, 0}}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].Filename != "" || records[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := first.Record(context.Background(), history.Record{Source: "upload", Word: "buka", Speaker: "fikri", WordCode: "A", SpeakerCode: "A"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen should skip applied migrations: %v", err)
	}
	defer second.Close()
	n, err := second.Count(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected persisted record, got %d (%v)", n, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestListOrdersWithinOneSecond(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	whole := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	for _, at := range []time.Time{whole.Add(500 * time.Millisecond), whole, whole.Add(50 * time.Millisecond)} {
		if err := store.Record(ctx, history.Record{CreatedAt: at, Source: "upload", Word: "buka", Speaker: "fikri", WordCode: "A", SpeakerCode: "A"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []time.Time{whole.Add(500 * time.Millisecond), whole.Add(50 * time.Millisecond), whole}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if !records[i].CreatedAt.Equal(want[i]) {
			t.Fatalf("record %d: expected %v, got %v", i, want[i], records[i].CreatedAt)
		}
	}
}

func TestSchemaVersionTracksMigrations(t *testing.T) {
	store := openStore(t)
	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != history.LatestSchemaVersion() || version < 1 {
		t.Fatalf("expected schema v%d, got v%d", history.LatestSchemaVersion(), version)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), history.Record{Source: "upload", Word: "buka", Speaker: "fikri", WordCode: "A", SpeakerCode: "A"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump user_version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}

	info, err := history.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Version != 99 || info.Latest != history.LatestSchemaVersion() || info.Predictions != 1 {
		t.Fatalf("unexpected inspection %+v", info)
	}
}

func TestInspectMissingDatabase(t *testing.T) {
	if _, err := history.Inspect(context.Background(), filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("expected error for missing database")
	}
}
