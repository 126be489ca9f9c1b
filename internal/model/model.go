package model

import (
	"errors"
	"fmt"
)

// ErrInputWidth indicates a row whose length does not match the model.
var ErrInputWidth = errors.New("input width mismatch")

// Classifier predicts one value per output for an imputed feature row.
type Classifier interface {
	Predict(row []float64) ([]float64, error)
	NumFeatures() int
	NumOutputs() int
}

// Imputer fills missing (NaN) entries of a feature row.
type Imputer interface {
	Transform(row []float64) ([]float64, error)
	NumFeaturesIn() int
	NumFeaturesOut() int
	// FeatureNames returns the column names seen at fit time, or nil when the
	// imputer was fitted without names.
	FeatureNames() []string
}

func checkWidth(kind string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: %w: got %d values, want %d", kind, ErrInputWidth, got, want)
	}
	return nil
}
