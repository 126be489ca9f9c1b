package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"voicetag/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBold  = "\x1b[1m"
)

// checkLines renders preflight results as an aligned report. The name column
// is as wide as the longest check name; a summary line closes the report.
func checkLines(results []preflight.Result, colorize bool) []string {
	width := 0
	for _, r := range results {
		width = max(width, len(r.Name))
	}

	title := "Preflight"
	if colorize {
		title = ansiBold + title + ansiReset
	}
	lines := make([]string, 0, len(results)+2)
	lines = append(lines, title)
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
		lines = append(lines, renderCheckLine(r, width, colorize))
	}
	lines = append(lines, fmt.Sprintf("%d of %d checks passed", passed, len(results)))
	return lines
}

func renderCheckLine(r preflight.Result, width int, colorize bool) string {
	mark, color := "pass", ansiGreen
	if !r.Passed {
		mark, color = "FAIL", ansiRed
	}
	if colorize {
		mark = color + mark + ansiReset
	}
	line := fmt.Sprintf("  %s  %-*s", mark, width, r.Name)
	if r.Detail != "" {
		line += "  " + r.Detail
	}
	return strings.TrimRight(line, " ")
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
