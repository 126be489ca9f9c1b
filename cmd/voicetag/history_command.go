package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voicetag/internal/history"
)

type historyRow struct {
	ID         string    `json:"id"`
	CreatedAt  string    `json:"createdAt"`
	Source     string    `json:"source"`
	Filename   string    `json:"filename,omitempty"`
	Word       string    `json:"word"`
	Speaker    string    `json:"speaker"`
	Prediction []float64 `json:"prediction"`
	DurationMS int64     `json:"durationMs"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("prediction history is disabled (history.enabled = false)")
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				rows := make([]historyRow, 0, len(records))
				for _, rec := range records {
					rows = append(rows, historyRow{
						ID:         rec.ID,
						CreatedAt:  rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
						Source:     rec.Source,
						Filename:   rec.Filename,
						Word:       rec.Word,
						Speaker:    rec.Speaker,
						Prediction: rec.Prediction,
						DurationMS: rec.Duration.Milliseconds(),
					})
				}
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No predictions recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Source", "File", "Word", "Speaker", "Raw"},
				historyTableRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				"",
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of predictions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func historyTableRows(records []history.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		filename := rec.Filename
		if filename == "" {
			filename = "-"
		}
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Source,
			filename,
			rec.Word,
			rec.Speaker,
			formatPrediction(rec.Prediction),
		})
	}
	return rows
}

func formatPrediction(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
