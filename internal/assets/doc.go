// Package assets loads the model artifacts a prediction needs and keeps them
// for the life of the process.
//
// A Loader reads the classifier, imputer and selected-feature list once,
// cross-checks their shapes, and hands out the same immutable *Assets to
// every caller afterwards. A failed load is remembered too, so a broken
// deployment fails identically on every request instead of retrying disk
// reads.
package assets
