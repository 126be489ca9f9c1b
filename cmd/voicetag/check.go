package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voicetag/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, model artifacts and state directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			loader, err := ctx.assetLoader()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, loader)
			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range checkLines(results, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}
