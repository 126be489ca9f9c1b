package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voicetag/internal/logging"
)

// OutputSampleRate is the sample rate ffmpeg is asked to produce.
const OutputSampleRate = 16000

// ErrNotFound indicates the configured ffmpeg binary could not be resolved.
var ErrNotFound = errors.New("ffmpeg binary not found")

// ExitError reports a non-zero ffmpeg exit.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with status %d: %s", e.Code, msg)
}

// Options configures a Transcoder.
type Options struct {
	Binary  string
	Timeout time.Duration
	// TempDir holds the per-request input and output files. Empty uses the
	// system temp dir.
	TempDir string
}

// Transcoder converts uploads to WAV by shelling out to ffmpeg.
type Transcoder struct {
	binary  string
	timeout time.Duration
	tempDir string
	logger  *slog.Logger
}

// New constructs a Transcoder.
func New(opts Options, logger *slog.Logger) *Transcoder {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{
		binary:  binary,
		timeout: opts.Timeout,
		tempDir: opts.TempDir,
		logger:  logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// ToWAV writes data to a temp file named after filename's extension, runs
// ffmpeg to produce <input>.wav at 16 kHz mono, and returns the WAV bytes.
// Both temp files are removed before returning.
func (t *Transcoder) ToWAV(ctx context.Context, data []byte, filename string) ([]byte, error) {
	resolved, err := exec.LookPath(t.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t.binary)
	}

	input, cleanup, err := t.writeInput(data, filename)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	output := input + ".wav"
	defer func() {
		_ = os.Remove(output)
	}()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-ac", "1",
		"-ar", strconv.Itoa(OutputSampleRate),
		output,
	}
	cmd := exec.CommandContext(ctx, resolved, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log := logging.WithContext(ctx, t.logger)
	started := time.Now()
	log.Debug("transcoding upload",
		logging.String("binary", resolved),
		logging.String("input", filepath.Base(input)),
		logging.Int("bytes", len(data)),
	)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg transcode: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, fmt.Errorf("ffmpeg transcode: %w", err)
	}

	wav, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read ffmpeg output: %w", err)
	}
	log.Debug("transcode complete",
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("wav_bytes", len(wav)),
	)
	return wav, nil
}

func (t *Transcoder) writeInput(data []byte, filename string) (string, func(), error) {
	ext := filepath.Ext(filepath.Base(strings.TrimSpace(filename)))
	if strings.ContainsAny(ext, `*/\`) {
		ext = ""
	}
	file, err := os.CreateTemp(t.tempDir, "voicetag-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp input: %w", err)
	}
	name := file.Name()
	cleanup := func() {
		_ = os.Remove(name)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp input: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp input: %w", err)
	}
	return name, cleanup, nil
}
