// Package ffmpeg wraps the ffmpeg binary for turning arbitrary uploaded audio
// into 16 kHz mono WAV.
//
// This package has no voicetag-specific dependencies beyond logging and could
// be extracted as a standalone library.
//
// Key types:
//   - Transcoder: runs ffmpeg against per-request temp files
//   - ExitError: a non-zero ffmpeg exit with its captured stderr
//
// A missing binary is reported as ErrNotFound so callers can tell an install
// problem apart from a bad upload.
package ffmpeg
