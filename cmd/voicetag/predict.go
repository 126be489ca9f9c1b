package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voicetag/internal/audio"
	"voicetag/internal/inference"
)

type predictResult struct {
	Input      string    `json:"input"`
	Status     string    `json:"status"`
	ID         string    `json:"id,omitempty"`
	Word       string    `json:"word,omitempty"`
	Speaker    string    `json:"speaker,omitempty"`
	Prediction []float64 `json:"prediction,omitempty"`
	DurationMS int64     `json:"durationMs,omitempty"`
	Message    string    `json:"message,omitempty"`
}

func newPredictCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var recording bool

	cmd := &cobra.Command{
		Use:   "predict FILE...",
		Short: "Classify the word and speaker in one or more audio files",
		Long: `Classify the word and speaker in one or more audio files.

Use "-" to read audio from stdin. Files that are not WAV are converted with
ffmpeg first. --recording treats every input as WAV produced by the
recorder and never invokes ffmpeg.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := ctx.newService()
			if err != nil {
				return err
			}
			defer closeFn()

			source := audio.SourceUpload
			if recording {
				source = audio.SourceRecorder
			}

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			results := make([]predictResult, 0, len(args))
			failed := 0
			for _, arg := range args {
				data, name, err := readInput(cmd.InOrStdin(), arg)
				if err != nil {
					return err
				}
				outcome, err := svc.Run(cmd.Context(), inference.Request{Data: data, Filename: name, Source: source})
				if err != nil {
					failed++
					msg := inference.UserMessage(err)
					results = append(results, predictResult{Input: arg, Status: "error", Message: msg})
					if !asJSON {
						fmt.Fprintf(errOut, "%s: %s\n", arg, msg)
					}
					continue
				}
				results = append(results, predictResult{
					Input:      arg,
					Status:     "ok",
					ID:         outcome.ID,
					Word:       outcome.Labels.Word,
					Speaker:    outcome.Labels.Speaker,
					Prediction: outcome.Prediction,
					DurationMS: outcome.Duration.Milliseconds(),
				})
				if !asJSON {
					word, speaker := outcome.Labels.Display()
					fmt.Fprintf(out, "%s: %s / %s\n", arg, word, speaker)
				}
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d predictions failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&recording, "recording", false, "Treat inputs as recorder WAV and skip ffmpeg")
	return cmd
}

// readInput returns the bytes of path, or of stdin when path is "-", along
// with the filename hint passed to the transcoder.
func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}
