// Package config loads, normalizes, and validates voicetag configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOICETAG_FFMPEG. The Config type centralizes every knob the CLI and the HTTP
// front end need: where the model artifacts live, how uploads are transcoded,
// which label names the classifier's bits map to, and where prediction
// history is kept.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
