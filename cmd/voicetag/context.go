package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"voicetag/internal/assets"
	"voicetag/internal/audio"
	"voicetag/internal/config"
	"voicetag/internal/history"
	"voicetag/internal/inference"
	"voicetag/internal/labels"
	"voicetag/internal/logging"
	"voicetag/internal/media/ffmpeg"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	loaderOnce sync.Once
	loader     *assets.Loader
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
		if c.loggerErr != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", c.loggerErr)
		}
	})
	return c.logger, c.loggerErr
}

// assetLoader returns the process-wide loader. Nothing is read until the
// first Load call.
func (c *commandContext) assetLoader() (*assets.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	c.loaderOnce.Do(func() {
		c.loader = assets.NewLoader(assets.PathsFromConfig(cfg), logger)
	})
	return c.loader, nil
}

// loadAssets loads the model bundle and fails the command when it cannot.
func (c *commandContext) loadAssets() (*assets.Loader, *assets.Assets, error) {
	loader, err := c.assetLoader()
	if err != nil {
		return nil, nil, err
	}
	bundle, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load model assets: %w", err)
	}
	return loader, bundle, nil
}

// openHistory opens the prediction log when enabled. The returned store is
// nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// newService wires an inference service. The returned close function
// releases the history store.
func (c *commandContext) newService() (*inference.Service, *history.Store, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	loader, _, err := c.loadAssets()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := c.openHistory()
	if err != nil {
		return nil, nil, nil, err
	}

	transcoder := ffmpeg.New(ffmpeg.Options{
		Binary:  cfg.FFmpegBinary(),
		Timeout: time.Duration(cfg.Audio.TranscodeTimeoutSeconds) * time.Second,
		TempDir: cfg.Audio.TempDir,
	}, logger)
	normalizer := audio.NewNormalizer(audio.Options{TranscodeWAVUploads: cfg.Audio.TranscodeWAVUploads}, transcoder, logger)

	var recorder inference.Recorder
	if store != nil {
		recorder = store
	}
	svc := inference.New(loader, normalizer, labels.NewInterpreter(cfg.Labels), recorder, logger)
	closeFn := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return svc, store, closeFn, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
