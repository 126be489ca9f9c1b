package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voicetag/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Artifact paths point into <base>/models but nothing is written there unless
// WithArtifacts is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Model = filepath.Join(base, "models", "model.msgpack")
	cfgVal.Paths.Imputer = filepath.Join(base, "models", "imputer.msgpack")
	cfgVal.Paths.SelectedFeatures = filepath.Join(base, "models", "selected_features.msgpack")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Audio.TempDir = filepath.Join(base, "tmp")
	cfgVal.Server.Bind = "127.0.0.1:0"

	for _, dir := range []string{cfgVal.Paths.StateDir, cfgVal.Audio.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithArtifacts writes the standard test artifacts to the configured paths.
func WithArtifacts() ConfigOption {
	return func(b *configBuilder) {
		b.t.Helper()
		WriteArtifactsAt(b.t, b.cfg.Paths.Model, b.cfg.Paths.Imputer, b.cfg.Paths.SelectedFeatures)
	}
}

// WithHistoryDisabled turns off the prediction log.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		for _, name := range names {
			writeStub(b, name, "exit 0\n")
		}
	}
}

// WithFFmpegScript installs an ffmpeg stub running body under /bin/sh. The
// output path is the last argument, available as "$last" after the preamble.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		writeStub(b, "ffmpeg", "for last; do :; done\n"+body)
	}
}

// WithEmptyPath leaves PATH pointing at an empty directory so no external
// binary resolves.
func WithEmptyPath() ConfigOption {
	return func(b *configBuilder) {
		empty := filepath.Join(b.baseDir, "empty-bin")
		if err := os.MkdirAll(empty, 0o755); err != nil {
			b.t.Fatalf("mkdir empty bin dir: %v", err)
		}
		setPath(b.t, empty)
	}
}

func writeStub(b *configBuilder, name, body string) {
	b.t.Helper()
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	setPath(b.t, binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func setPath(t testing.TB, value string) {
	t.Helper()
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", value); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
