package config

const (
	defaultModelPath               = "model_suara.msgpack"
	defaultImputerPath             = "imputer.msgpack"
	defaultSelectedFeaturesPath    = "selected_features.msgpack"
	defaultStateDir                = "~/.local/share/voicetag"
	defaultHistoryFile             = "history.db"
	defaultFFmpegBinary            = "ffmpeg"
	defaultTranscodeTimeoutSeconds = 120
	defaultWordA                   = "buka"
	defaultWordB                   = "tutup"
	defaultSpeakerA                = "fikri"
	defaultSpeakerB                = "fauzan"
	defaultServerBind              = "127.0.0.1:8501"
	defaultMaxUploadMB             = 25
	defaultHistoryEnabled          = true
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Model:            defaultModelPath,
			Imputer:          defaultImputerPath,
			SelectedFeatures: defaultSelectedFeaturesPath,
			StateDir:         defaultStateDir,
		},
		Audio: Audio{
			FFmpegBinary:            defaultFFmpegBinary,
			TranscodeTimeoutSeconds: defaultTranscodeTimeoutSeconds,
		},
		Labels: Labels{
			WordA:    defaultWordA,
			WordB:    defaultWordB,
			SpeakerA: defaultSpeakerA,
			SpeakerB: defaultSpeakerB,
		},
		Server: Server{
			Bind:        defaultServerBind,
			MaxUploadMB: defaultMaxUploadMB,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
