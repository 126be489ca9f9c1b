package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAudio(); err != nil {
		return err
	}
	c.normalizeLabels()
	c.normalizeServer()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Model) == "" {
		c.Paths.Model = defaultModelPath
	}
	if c.Paths.Model, err = expandPath(c.Paths.Model); err != nil {
		return fmt.Errorf("paths.model: %w", err)
	}
	if strings.TrimSpace(c.Paths.Imputer) == "" {
		c.Paths.Imputer = defaultImputerPath
	}
	if c.Paths.Imputer, err = expandPath(c.Paths.Imputer); err != nil {
		return fmt.Errorf("paths.imputer: %w", err)
	}
	if strings.TrimSpace(c.Paths.SelectedFeatures) == "" {
		c.Paths.SelectedFeatures = defaultSelectedFeaturesPath
	}
	if c.Paths.SelectedFeatures, err = expandPath(c.Paths.SelectedFeatures); err != nil {
		return fmt.Errorf("paths.selected_features: %w", err)
	}
	c.Paths.FeaturesConfig = strings.TrimSpace(c.Paths.FeaturesConfig)
	if c.Paths.FeaturesConfig, err = expandPath(c.Paths.FeaturesConfig); err != nil {
		return fmt.Errorf("paths.features_config: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() error {
	if value, ok := os.LookupEnv("VOICETAG_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Audio.FFmpegBinary = value
	}
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.TempDir = strings.TrimSpace(c.Audio.TempDir)
	if c.Audio.TempDir != "" {
		var err error
		if c.Audio.TempDir, err = expandPath(c.Audio.TempDir); err != nil {
			return fmt.Errorf("audio.temp_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLabels() {
	c.Labels.WordA = strings.ToLower(strings.TrimSpace(c.Labels.WordA))
	c.Labels.WordB = strings.ToLower(strings.TrimSpace(c.Labels.WordB))
	c.Labels.SpeakerA = strings.ToLower(strings.TrimSpace(c.Labels.SpeakerA))
	c.Labels.SpeakerB = strings.ToLower(strings.TrimSpace(c.Labels.SpeakerB))
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
