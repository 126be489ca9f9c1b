// Package features computes the named time-series features the voice models
// were trained on.
//
// The catalogue covers three domains (statistical, temporal and spectral) and
// uses tsfel column naming: a "0_" channel prefix, the feature's display name,
// and an "_<i>" suffix for features with several outputs, for example
// "0_Spectral centroid" or "0_MFCC_3".
//
// A Config selects which catalogue entries run and overrides their
// parameters. It can be loaded from YAML; Default enables everything.
//
// Degenerate input such as digital silence may yield NaN or ±Inf values.
// Extract reports them as-is; neutralizing them is the caller's job.
package features
