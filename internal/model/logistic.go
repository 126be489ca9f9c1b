package model

import (
	"errors"
	"fmt"
)

// Logistic is a set of independent binary linear classifiers, one per
// output. Output o reports Classes[o][1] when its decision value is positive
// and Classes[o][0] otherwise.
type Logistic struct {
	Coef      [][]float64 `msgpack:"coef"`
	Intercept []float64   `msgpack:"intercept"`
	Classes   [][]float64 `msgpack:"classes"`
}

// NumFeatures implements Classifier.
func (l *Logistic) NumFeatures() int {
	if len(l.Coef) == 0 {
		return 0
	}
	return len(l.Coef[0])
}

// NumOutputs implements Classifier.
func (l *Logistic) NumOutputs() int { return len(l.Coef) }

// Predict implements Classifier.
func (l *Logistic) Predict(row []float64) ([]float64, error) {
	if err := checkWidth("logistic", len(row), l.NumFeatures()); err != nil {
		return nil, err
	}
	out := make([]float64, len(l.Coef))
	for o, coef := range l.Coef {
		z := l.Intercept[o]
		for i, w := range coef {
			z += w * row[i]
		}
		if z > 0 {
			out[o] = l.Classes[o][1]
		} else {
			out[o] = l.Classes[o][0]
		}
	}
	return out, nil
}

// Validate checks that every output has matching weights and two classes.
func (l *Logistic) Validate() error {
	if len(l.Coef) == 0 {
		return errors.New("logistic: no outputs")
	}
	width := len(l.Coef[0])
	if width == 0 {
		return errors.New("logistic: no features")
	}
	if len(l.Intercept) != len(l.Coef) || len(l.Classes) != len(l.Coef) {
		return errors.New("logistic: coef, intercept and classes differ in length")
	}
	for o := range l.Coef {
		if len(l.Coef[o]) != width {
			return fmt.Errorf("logistic: output %d has %d weights, want %d", o, len(l.Coef[o]), width)
		}
		if len(l.Classes[o]) != 2 {
			return fmt.Errorf("logistic: output %d has %d classes, want 2", o, len(l.Classes[o]))
		}
	}
	return nil
}
