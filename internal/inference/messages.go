package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voicetag/internal/assets"
	"voicetag/internal/audio"
	"voicetag/internal/labels"
	"voicetag/internal/media/ffmpeg"
	"voicetag/internal/pipeline"
)

// UserMessage renders err as text for the person who submitted the audio.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var exitErr *ffmpeg.ExitError
	var stageErr *pipeline.Error
	switch {
	case errors.Is(err, ffmpeg.ErrNotFound):
		return "FFmpeg not found. Make sure FFmpeg is installed."
	case errors.As(err, &exitErr):
		if msg := strings.TrimSpace(exitErr.Stderr); msg != "" {
			return fmt.Sprintf("FFmpeg could not convert the audio: %s", msg)
		}
		return fmt.Sprintf("FFmpeg could not convert the audio (exit status %d).", exitErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "Audio conversion timed out."
	case errors.Is(err, audio.ErrEmptyInput):
		return "No audio was received."
	case errors.Is(err, audio.ErrDecode):
		return "The audio could not be decoded."
	case errors.Is(err, assets.ErrArtifactMissing),
		errors.Is(err, assets.ErrMalformedArtifact),
		errors.Is(err, assets.ErrShapeMismatch):
		return fmt.Sprintf("The model is not available: %v", err)
	case errors.Is(err, labels.ErrShortVector):
		return "The model returned an unexpected result."
	case errors.As(err, &stageErr):
		return fmt.Sprintf("Prediction failed during %s: %v", stageErr.Stage, stageErr.Err)
	default:
		return fmt.Sprintf("Prediction failed: %v", err)
	}
}

// IsRequestError reports whether err belongs to a single request rather than
// to the server's setup.
func IsRequestError(err error) bool {
	var exitErr *ffmpeg.ExitError
	var stageErr *pipeline.Error
	switch {
	case errors.Is(err, assets.ErrArtifactMissing),
		errors.Is(err, assets.ErrMalformedArtifact),
		errors.Is(err, assets.ErrShapeMismatch):
		return false
	case errors.Is(err, ffmpeg.ErrNotFound),
		errors.As(err, &exitErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, audio.ErrEmptyInput),
		errors.Is(err, audio.ErrDecode),
		errors.As(err, &stageErr):
		return true
	default:
		return false
	}
}
