package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"voicetag/internal/logging"
	"voicetag/internal/media/ffmpeg"
)

var (
	// ErrDecode indicates the bytes could not be decoded as audio.
	ErrDecode = errors.New("audio decode failed")
	// ErrEmptyInput indicates there was no audio to decode.
	ErrEmptyInput = errors.New("audio input is empty")
)

// Source identifies where raw audio bytes came from.
type Source string

const (
	// SourceUpload marks a user-supplied file of any container format.
	SourceUpload Source = "upload"
	// SourceRecorder marks a WAV buffer produced by an in-process recorder.
	SourceRecorder Source = "recorder"
)

// Hint describes raw input so the normalizer can pick a decode path.
type Hint struct {
	Filename string
	Source   Source
}

// Transcoder converts arbitrary audio bytes into WAV bytes.
type Transcoder interface {
	ToWAV(ctx context.Context, data []byte, filename string) ([]byte, error)
}

// Options controls normalization routing.
type Options struct {
	// TranscodeWAVUploads sends uploaded WAV files through the transcoder
	// instead of decoding them in-process.
	TranscodeWAVUploads bool
}

// Normalizer produces TargetSampleRate mono Signals from raw bytes.
type Normalizer struct {
	opts       Options
	transcoder Transcoder
	logger     *slog.Logger
}

// NewNormalizer constructs a Normalizer. A nil transcoder makes every
// non-WAV upload fail with ffmpeg.ErrNotFound.
func NewNormalizer(opts Options, transcoder Transcoder, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		opts:       opts,
		transcoder: transcoder,
		logger:     logging.NewComponentLogger(logger, "audio"),
	}
}

// Normalize decodes raw into a mono Signal at TargetSampleRate.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, hint Hint) (Signal, error) {
	if len(raw) == 0 {
		return Signal{}, ErrEmptyInput
	}
	log := logging.WithContext(ctx, n.logger)

	wavBytes := raw
	path := "direct"
	if n.needsTranscode(raw, hint) {
		if n.transcoder == nil {
			return Signal{}, fmt.Errorf("%w: no transcoder configured", ffmpeg.ErrNotFound)
		}
		path = "transcode"
		var err error
		wavBytes, err = n.transcoder.ToWAV(ctx, raw, hint.Filename)
		if err != nil {
			return Signal{}, err
		}
	}

	sig, err := DecodeWAV(wavBytes)
	if err != nil && n.decodeFallback(path, hint, err) {
		// RIFF uploads with codecs DecodeWAV does not read (ADPCM, mu-law,
		// MP3 in WAV) still convert through ffmpeg.
		log.Debug("direct WAV decode failed, transcoding", logging.Error(err))
		path = "transcode"
		wavBytes, err = n.transcoder.ToWAV(ctx, raw, hint.Filename)
		if err != nil {
			return Signal{}, err
		}
		sig, err = DecodeWAV(wavBytes)
	}
	if err != nil {
		return Signal{}, err
	}
	sourceRate := sig.SampleRate
	if sig.SampleRate != TargetSampleRate {
		resampled, err := Resample(sig.Samples, sig.SampleRate, TargetSampleRate)
		if err != nil {
			return Signal{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		sig = Signal{Samples: resampled, SampleRate: TargetSampleRate}
	}
	if len(sig.Samples) == 0 {
		return Signal{}, fmt.Errorf("%w: no samples after resampling", ErrEmptyInput)
	}

	log.Debug("audio normalized",
		logging.String("path", path),
		logging.String("source", string(hint.Source)),
		logging.Int("source_rate", sourceRate),
		logging.Int("samples", len(sig.Samples)),
		logging.Duration("duration", sig.Duration()),
	)
	return sig, nil
}

func (n *Normalizer) needsTranscode(raw []byte, hint Hint) bool {
	if hint.Source == SourceRecorder {
		return false
	}
	if !IsWAV(raw) {
		return true
	}
	return n.opts.TranscodeWAVUploads
}

func (n *Normalizer) decodeFallback(path string, hint Hint, err error) bool {
	return path == "direct" &&
		hint.Source != SourceRecorder &&
		n.transcoder != nil &&
		errors.Is(err, ErrDecode)
}
