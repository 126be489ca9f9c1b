// Package pipeline turns a normalized audio signal into a raw prediction
// vector.
//
// The stages always run in the same order: extract the configured features,
// project them onto the column list the model was trained with, replace
// infinities with NaN, impute the missing values, then classify. Each failure
// is reported as an *Error naming the stage that produced it.
package pipeline
