// Package main hosts the voicetag CLI entrypoint and command graph.
//
// The Cobra-based command tree classifies audio files from the terminal,
// serves the HTTP front end, prints preflight and feature diagnostics, lists
// prediction history, and scaffolds configuration. It centralizes config
// resolution, logger construction and model asset loading so subcommands can
// focus on presentation.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
