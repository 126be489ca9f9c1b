package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicetag/internal/config"
)

func TestConsoleHandlerFormatsComponentAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	log := WithContext(ctx, NewComponentLogger(logger, "inference"))
	log.Info("prediction complete", String("word", "buka"), String("file", "my clip.wav"), Error(errors.New("boom")))

	line := buf.String()
	for _, want := range []string{
		" INFO inference: prediction complete",
		"[req 01234567]",
		"word=buka",
		`file="my clip.wav"`,
		"error=boom",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "request_id=") {
		t.Fatalf("prefix fields should not repeat as key/value pairs: %q", line)
	}
}

func TestConsoleHandlerRespectsLevelAndGroups(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.WithGroup("audio").Warn("slow transcode", Int("ms", 1500))
	if !strings.Contains(buf.String(), "audio.ms=1500") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestNewJSONWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "voicetag.log")

	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("loaded assets", String("fingerprint", "abc"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode json entry %q: %v", data, err)
	}
	if entry["level"] != "debug" || entry["msg"] != "loaded assets" || entry["fingerprint"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if _, ok := entry["source"].(string); !ok {
		t.Fatalf("debug level should include source, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesStateDirLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("unexpected log content %q", data)
	}
}

func TestRequestIDContextHelpers(t *testing.T) {
	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Fatal("expected no request id on empty context")
	}
	ctx := WithRequestID(context.Background(), "  ")
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Fatal("blank request id should be ignored")
	}
	ctx = WithRequestID(context.Background(), "abc")
	if id, ok := RequestIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("unexpected request id %q ok=%v", id, ok)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewComponentLogger(nil, "test")
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}
