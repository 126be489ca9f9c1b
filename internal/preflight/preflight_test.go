package preflight_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicetag/internal/assets"
	"voicetag/internal/history"
	"voicetag/internal/preflight"
	"voicetag/internal/testsupport"
)

type staticSource struct {
	a   *assets.Assets
	err error
}

func (s staticSource) Load() (*assets.Assets, error) { return s.a, s.err }

func TestCheckWritableDir(t *testing.T) {
	dir := t.TempDir()
	if r := preflight.CheckWritableDir("test", dir); !r.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", r.Detail)
	}

	pending := filepath.Join(dir, "a", "b")
	r := preflight.CheckWritableDir("test", pending)
	if !r.Passed || !strings.Contains(r.Detail, "will be created") {
		t.Fatalf("expected creatable dir to pass, got %+v", r)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := preflight.CheckWritableDir("test", file); r.Passed {
		t.Fatal("expected failure for file path")
	}
	if r := preflight.CheckWritableDir("test", ""); r.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckArtifact(t *testing.T) {
	paths := testsupport.WriteArtifacts(t, t.TempDir())

	r := preflight.CheckArtifact("Model artifact", paths.Model)
	if !r.Passed || !strings.Contains(r.Detail, "sha256") {
		t.Fatalf("expected pass with hash, got %+v", r)
	}

	r = preflight.CheckArtifact("Model artifact", filepath.Join(t.TempDir(), "missing.msgpack"))
	if r.Passed || !strings.Contains(r.Detail, "does not exist") {
		t.Fatalf("expected missing failure, got %+v", r)
	}

	if r := preflight.CheckArtifact("Model artifact", t.TempDir()); r.Passed {
		t.Fatal("expected failure for directory")
	}
}

func TestCheckFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	if r := preflight.CheckFFmpeg(cfg); !r.Passed {
		t.Fatalf("expected stubbed ffmpeg to pass, got %+v", r)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithEmptyPath())
	if r := preflight.CheckFFmpeg(cfg); r.Passed {
		t.Fatal("expected failure with empty PATH")
	}
}

func TestCheckHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "history.db")

	r := preflight.CheckHistory(ctx, path)
	if !r.Passed || !strings.Contains(r.Detail, "will be created") {
		t.Fatalf("expected pending database to pass, got %+v", r)
	}

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	if err := store.Record(ctx, history.Record{Source: "upload", Word: "buka", Speaker: "fikri", WordCode: "A", SpeakerCode: "A"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	r = preflight.CheckHistory(ctx, path)
	want := fmt.Sprintf("schema v%d, 1 predictions", history.LatestSchemaVersion())
	if !r.Passed || !strings.Contains(r.Detail, want) {
		t.Fatalf("expected %q in passing result, got %+v", want, r)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 42"); err != nil {
		t.Fatalf("bump user_version: %v", err)
	}
	_ = db.Close()

	r = preflight.CheckHistory(ctx, path)
	if r.Passed || !strings.Contains(r.Detail, "schema v42 is newer") {
		t.Fatalf("expected newer schema to fail, got %+v", r)
	}

	if r := preflight.CheckHistory(ctx, ""); r.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckAssets(t *testing.T) {
	loader := assets.NewLoader(testsupport.WriteArtifacts(t, t.TempDir()), nil)
	r := preflight.CheckAssets(context.Background(), loader)
	if !r.Passed || !strings.Contains(r.Detail, "5 selected features") {
		t.Fatalf("unexpected result %+v", r)
	}

	r = preflight.CheckAssets(context.Background(), staticSource{err: errors.New("boom")})
	if r.Passed || r.Detail != "boom" {
		t.Fatalf("unexpected failure result %+v", r)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllHealthyInstall(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifacts(), testsupport.WithStubbedBinaries())
	loader := assets.NewLoader(assets.PathsFromConfig(cfg), nil)

	results := preflight.RunAll(context.Background(), cfg, loader)
	// ffmpeg, three artifacts, state dir, history database, assets
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if preflight.Failed(results) {
		t.Fatal("Failed should be false when every check passes")
	}
}

func TestRunAllReportsMissingArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithHistoryDisabled())

	results := preflight.RunAll(context.Background(), cfg, nil)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if !preflight.Failed(results) {
		t.Fatal("expected failures for missing artifacts")
	}
}
