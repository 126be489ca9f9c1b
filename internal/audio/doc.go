// Package audio turns raw upload or recorder bytes into the canonical mono
// 16 kHz floating-point Signal the feature pipeline consumes.
//
// WAV input is decoded in-process with go-audio/wav and resampled with a
// pure Go polyphase resampler. Every other container is handed to a
// Transcoder, normally internal/media/ffmpeg, whose WAV output then goes
// through the same decode path.
//
// Key types:
//   - Signal: mono samples in [-1, 1] plus their sample rate
//   - Normalizer: routes raw bytes to the direct or transcode path
//   - Hint: the filename and source kind of the raw bytes
//
// Error sentinels ErrDecode and ErrEmptyInput classify input problems;
// transcoder failures surface unchanged.
package audio
