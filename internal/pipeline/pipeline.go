package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"voicetag/internal/assets"
	"voicetag/internal/audio"
	"voicetag/internal/features"
)

// Stage names a pipeline step.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageProject  Stage = "project"
	StageSanitize Stage = "sanitize"
	StageImpute   Stage = "impute"
	StageClassify Stage = "classify"
)

// ErrNonFinite reports NaN or Inf values that survived imputation.
var ErrNonFinite = errors.New("non-finite value after imputation")

// Row is an ordered feature row aligned with the selected feature list.
type Row []float64

// Prediction is the classifier's raw output vector. Position 0 carries the
// word label and position 2 the speaker label.
type Prediction []float64

// Error wraps a failure with the stage it occurred in.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &Error{Stage: stage, Err: err}
}

// Predict runs the full feature and classification chain over sig.
func Predict(ctx context.Context, sig audio.Signal, a *assets.Assets) (Prediction, error) {
	if a == nil {
		return nil, stageErr(StageExtract, errors.New("model assets not loaded"))
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageExtract, err)
	}
	vec, err := features.Extract(a.FeatureConfig, sig.Samples, sig.SampleRate)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageProject, err)
	}
	row := Project(vec, a.SelectedFeatures)
	if len(row) == 0 {
		return nil, stageErr(StageProject, errors.New("no selected features"))
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageSanitize, err)
	}
	ReplaceInf(row)

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageImpute, err)
	}
	imputed, err := a.Imputer.Transform(row)
	if err != nil {
		return nil, stageErr(StageImpute, err)
	}
	if i, ok := firstNonFinite(imputed); ok {
		return nil, stageErr(StageImpute, fmt.Errorf("%w: column %d is %v", ErrNonFinite, i, imputed[i]))
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageClassify, err)
	}
	out, err := a.Classifier.Predict(imputed)
	if err != nil {
		return nil, stageErr(StageClassify, err)
	}
	return Prediction(out), nil
}

// Project lays vec out in the order of names. Names vec does not carry
// become NaN so the imputer can fill them.
func Project(vec features.Vector, names []string) Row {
	row := make(Row, len(names))
	for i, name := range names {
		v, ok := vec[name]
		if !ok {
			v = math.NaN()
		}
		row[i] = v
	}
	return row
}

// ReplaceInf rewrites positive and negative infinity as NaN in place.
func ReplaceInf(row Row) {
	for i, v := range row {
		if math.IsInf(v, 0) {
			row[i] = math.NaN()
		}
	}
}

func firstNonFinite(values []float64) (int, bool) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}
	return 0, false
}
