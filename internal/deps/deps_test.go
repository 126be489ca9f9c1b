package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckFFmpegResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, filepath.Join(binDir, "ffmpeg"), 0o755)
	t.Setenv("PATH", binDir)

	status := CheckFFmpeg("")
	if !status.Available {
		t.Fatalf("expected ffmpeg on PATH to be available, got detail %q", status.Detail)
	}
	if status.Command != filepath.Join(binDir, "ffmpeg") {
		t.Fatalf("expected resolved command, got %q", status.Command)
	}
}

func TestCheckFFmpegExplicitPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ffmpeg-good")
	writeStub(t, good, 0o755)
	notExec := filepath.Join(dir, "ffmpeg-plain")
	writeStub(t, notExec, 0o644)

	if status := CheckFFmpeg(good); !status.Available {
		t.Fatalf("expected explicit path to be available, got %q", status.Detail)
	}
	if status := CheckFFmpeg(notExec); status.Available {
		t.Fatal("expected non-executable file to be unavailable")
	}
	if status := CheckFFmpeg(filepath.Join(dir, "missing")); status.Available || status.Detail == "" {
		t.Fatalf("expected missing path to be unavailable, got %#v", status)
	}
}

func TestCheckFFmpegMissingFromPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	status := CheckFFmpeg("ffmpeg")
	if status.Available {
		t.Fatal("expected ffmpeg to be unavailable on empty PATH")
	}
	if status.Command != "ffmpeg" {
		t.Fatalf("unexpected command %q", status.Command)
	}
}

