package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLabels(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TranscodeTimeoutSeconds < 0 {
		return errors.New("audio.transcode_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLabels() error {
	pairs := []struct {
		section string
		a, b    string
	}{
		{section: "word", a: c.Labels.WordA, b: c.Labels.WordB},
		{section: "speaker", a: c.Labels.SpeakerA, b: c.Labels.SpeakerB},
	}
	for _, pair := range pairs {
		if pair.a == "" || pair.b == "" {
			return fmt.Errorf("labels.%s_a and labels.%s_b must be set", pair.section, pair.section)
		}
		if pair.a == pair.b {
			return fmt.Errorf("labels.%s_a and labels.%s_b must differ (both %q)", pair.section, pair.section, pair.a)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
