package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"voicetag/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains model artifact locations and the state directory.
//
// Artifact paths are resolved relative to the working directory, matching the
// way the training side drops its exports next to the application.
type Paths struct {
	Model            string `toml:"model"`
	Imputer          string `toml:"imputer"`
	SelectedFeatures string `toml:"selected_features"`
	// FeaturesConfig is an optional YAML file restricting feature extraction.
	// Empty selects every feature in every domain.
	FeaturesConfig string `toml:"features_config"`
	StateDir       string `toml:"state_dir"`
}

// Audio contains configuration for input normalization.
type Audio struct {
	FFmpegBinary            string `toml:"ffmpeg_binary"`
	TranscodeTimeoutSeconds int    `toml:"transcode_timeout_seconds"`
	// TranscodeWAVUploads routes uploaded WAV files through ffmpeg instead of
	// decoding them in-process.
	TranscodeWAVUploads bool   `toml:"transcode_wav_uploads"`
	TempDir             string `toml:"temp_dir"`
}

// Labels names the two classes of each binary output.
type Labels struct {
	WordA    string `toml:"word_a"`
	WordB    string `toml:"word_b"`
	SpeakerA string `toml:"speaker_a"`
	SpeakerB string `toml:"speaker_b"`
}

// Server contains configuration for the HTTP front end.
type Server struct {
	Bind        string `toml:"bind"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// History contains configuration for the prediction log.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voicetag.
//
// Configuration sections by subsystem:
//   - Paths: model artifacts and the state directory
//   - Audio: ffmpeg transcoding of uploads
//   - Labels: human-readable names for the classifier outputs
//   - Server: HTTP bind address and upload limits
//   - History: SQLite prediction log
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Audio   Audio   `toml:"audio"`
	Labels  Labels  `toml:"labels"`
	Server  Server  `toml:"server"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voicetag/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voicetag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and the history database parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to transcode uploads.
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.Audio.FFmpegBinary); binary != "" {
		return binary
	}
	return defaultFFmpegBinary
}

// LockPath returns the single-instance lock file used by the HTTP server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "voicetag.lock")
}

// LogPath returns the log file written alongside console output.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "voicetag.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
