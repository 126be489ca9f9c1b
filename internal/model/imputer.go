package model

import (
	"errors"
	"fmt"
	"math"
)

// SimpleImputer replaces missing values with per-column statistics learned at
// fit time. A column whose statistic is NaN had no observed values during
// fitting; it is dropped from the output unless KeepEmptyFeatures is set, in
// which case its missing values become 0.
type SimpleImputer struct {
	Strategy          string    `msgpack:"strategy"`
	Statistics        []float64 `msgpack:"statistics"`
	FeatureNamesIn    []string  `msgpack:"feature_names_in,omitempty"`
	KeepEmptyFeatures bool      `msgpack:"keep_empty_features"`
}

// NumFeaturesIn implements Imputer.
func (s *SimpleImputer) NumFeaturesIn() int { return len(s.Statistics) }

// NumFeaturesOut implements Imputer.
func (s *SimpleImputer) NumFeaturesOut() int {
	if s.KeepEmptyFeatures {
		return len(s.Statistics)
	}
	n := 0
	for _, v := range s.Statistics {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// FeatureNames implements Imputer.
func (s *SimpleImputer) FeatureNames() []string {
	if len(s.FeatureNamesIn) == 0 {
		return nil
	}
	return append([]string(nil), s.FeatureNamesIn...)
}

// Transform implements Imputer. The input row is not modified.
func (s *SimpleImputer) Transform(row []float64) ([]float64, error) {
	if err := checkWidth("imputer", len(row), len(s.Statistics)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, s.NumFeaturesOut())
	for i, v := range row {
		fill := s.Statistics[i]
		if math.IsNaN(fill) {
			if !s.KeepEmptyFeatures {
				continue
			}
			fill = 0
		}
		if math.IsNaN(v) {
			v = fill
		}
		out = append(out, v)
	}
	return out, nil
}

// Validate checks the fitted state is self-consistent.
func (s *SimpleImputer) Validate() error {
	if len(s.Statistics) == 0 {
		return errors.New("imputer: no statistics")
	}
	for i, v := range s.Statistics {
		if math.IsInf(v, 0) {
			return fmt.Errorf("imputer: statistic %d is infinite", i)
		}
	}
	if len(s.FeatureNamesIn) > 0 && len(s.FeatureNamesIn) != len(s.Statistics) {
		return fmt.Errorf("imputer: %d feature names for %d statistics", len(s.FeatureNamesIn), len(s.Statistics))
	}
	if s.NumFeaturesOut() == 0 {
		return errors.New("imputer: every column is empty")
	}
	return nil
}
