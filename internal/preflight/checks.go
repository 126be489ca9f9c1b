package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"voicetag/internal/config"
	"voicetag/internal/deps"
	"voicetag/internal/fileutil"
	"voicetag/internal/features"
	"voicetag/internal/history"
)

// CheckFFmpeg verifies the configured transcoder resolves to an executable.
func CheckFFmpeg(cfg *config.Config) Result {
	status := deps.CheckFFmpeg(cfg.FFmpegBinary())
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}

// CheckArtifact verifies a model artifact exists, is a regular readable
// file, and reports a short content hash so operators can tell builds apart.
func CheckArtifact(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	sum, err := fileutil.HashFile(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: hash: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (sha256 %s)", path, sum[:12])}
}

// CheckWritableDir verifies path is a writable directory. A directory that
// does not exist yet passes when its nearest existing parent is writable,
// since it is created on demand.
func CheckWritableDir(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case os.IsNotExist(err):
		parent := nearestExisting(path)
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}

// CheckHistory reports the prediction log's schema. A database that does not
// exist yet passes when its directory can be created; one written by a newer
// voicetag fails, since Open would refuse it.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "History database"
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		dir := CheckWritableDir(name, filepath.Dir(path))
		if !dir.Passed {
			return dir
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created at schema v%d)", path, history.LatestSchemaVersion())}
	}

	info, err := history.Inspect(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	switch {
	case info.Version > info.Latest:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema v%d is newer than supported v%d)", path, info.Version, info.Latest)}
	case info.Version < info.Latest:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d, upgrades to v%d on next open)", path, info.Version, info.Latest)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d, %d predictions)", path, info.Version, info.Predictions)}
	}
}

// CheckAssets loads the model bundle and reports its shape.
func CheckAssets(ctx context.Context, loader AssetSource) Result {
	const name = "Model assets"
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	a, err := loader.Load()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d selected features, %d extracted columns, %d outputs",
			len(a.SelectedFeatures), len(features.Names(a.FeatureConfig)), a.Classifier.NumOutputs()),
	}
}

func nearestExisting(path string) string {
	dir := filepath.Clean(path)
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
