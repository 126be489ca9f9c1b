// Package preflight provides readiness checks for the transcoder, the model
// artifacts and the filesystem paths voicetag depends on.
//
// The "voicetag check" command prints every result, and "voicetag serve"
// runs the same checks before binding so a broken install fails at startup
// instead of on the first request. Checks gated by a config toggle are
// skipped when the feature is disabled.
package preflight
