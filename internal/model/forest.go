package model

import (
	"errors"
	"fmt"
)

// Tree is one fitted decision tree in flat array form. Node i is a leaf when
// ChildrenLeft[i] == -1; otherwise samples with row[Feature[i]] <=
// Threshold[i] go left. Value holds per-node class weights indexed by
// [node][output][class].
type Tree struct {
	ChildrenLeft  []int         `msgpack:"children_left"`
	ChildrenRight []int         `msgpack:"children_right"`
	Feature       []int         `msgpack:"feature"`
	Threshold     []float64     `msgpack:"threshold"`
	Value         [][][]float64 `msgpack:"value"`
}

// Forest is a multi-output random forest. Class probabilities are averaged
// across trees and each output reports the class label with the highest
// mean probability.
type Forest struct {
	NFeatures int `msgpack:"n_features"`
	// Classes lists the class labels of each output in the order used by
	// Tree.Value.
	Classes [][]float64 `msgpack:"classes"`
	Trees   []Tree      `msgpack:"trees"`
}

// NumFeatures implements Classifier.
func (f *Forest) NumFeatures() int { return f.NFeatures }

// NumOutputs implements Classifier.
func (f *Forest) NumOutputs() int { return len(f.Classes) }

// Predict implements Classifier.
func (f *Forest) Predict(row []float64) ([]float64, error) {
	if err := checkWidth("forest", len(row), f.NFeatures); err != nil {
		return nil, err
	}

	probs := make([][]float64, len(f.Classes))
	for o, classes := range f.Classes {
		probs[o] = make([]float64, len(classes))
	}
	for t := range f.Trees {
		leaf := f.Trees[t].leaf(row)
		for o, weights := range f.Trees[t].Value[leaf] {
			var total float64
			for _, w := range weights {
				total += w
			}
			if total == 0 {
				continue
			}
			for c, w := range weights {
				probs[o][c] += w / total
			}
		}
	}

	out := make([]float64, len(f.Classes))
	for o, p := range probs {
		best := 0
		for c := range p {
			if p[c] > p[best] {
				best = c
			}
		}
		out[o] = f.Classes[o][best]
	}
	return out, nil
}

func (t *Tree) leaf(row []float64) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if row[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

// Validate checks structural consistency so Predict never indexes out of
// range or loops.
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return errors.New("forest: n_features must be positive")
	}
	if len(f.Classes) == 0 {
		return errors.New("forest: no outputs")
	}
	for o, classes := range f.Classes {
		if len(classes) == 0 {
			return fmt.Errorf("forest: output %d has no classes", o)
		}
	}
	if len(f.Trees) == 0 {
		return errors.New("forest: no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, f.Classes); err != nil {
			return fmt.Errorf("forest: tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures int, classes [][]float64) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != len(classes) {
			return fmt.Errorf("node %d: value has %d outputs, want %d", i, len(t.Value[i]), len(classes))
		}
		for o := range classes {
			if len(t.Value[i][o]) != len(classes[o]) {
				return fmt.Errorf("node %d output %d: value has %d classes, want %d", i, o, len(t.Value[i][o]), len(classes[o]))
			}
		}
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 {
			continue
		}
		// Children always follow their parent in fitted trees; requiring it
		// rules out cycles.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, t.Feature[i])
		}
	}
	return nil
}
