package testsupport

import (
	"math"
	"path/filepath"
	"testing"

	"voicetag/internal/assets"
	"voicetag/internal/model"
)

// SelectedFeatures is the column list written by WriteArtifacts.
var SelectedFeatures = []string{
	"0_Root mean square",
	"0_Zero crossing rate",
	"0_Kurtosis",
	"0_Spectral centroid",
	"0_MFCC_0",
}

// LoudThreshold is the RMS split used by the test forest. Quieter signals
// predict word B and speaker A; louder ones predict word A and speaker B.
const LoudThreshold = 0.1

// TestForest returns the classifier written by WriteArtifacts.
func TestForest() *model.Forest {
	leaf := func(word, speaker int) [][]float64 {
		w := []float64{0, 0}
		w[word] = 4
		s := []float64{0, 0}
		s[speaker] = 4
		return [][]float64{w, {2, 2}, s}
	}
	return &model.Forest{
		NFeatures: len(SelectedFeatures),
		Classes:   [][]float64{{0, 1}, {0, 1}, {0, 1}},
		Trees: []model.Tree{{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{0, -2, -2},
			Threshold:     []float64{LoudThreshold, -2, -2},
			Value:         [][][]float64{{{4, 4}, {2, 2}, {4, 4}}, leaf(0, 1), leaf(1, 0)},
		}},
	}
}

// TestImputer returns the imputer written by WriteArtifacts.
func TestImputer() *model.SimpleImputer {
	return &model.SimpleImputer{
		Strategy:       "mean",
		Statistics:     []float64{0.05, 0.1, 3, 500, 0},
		FeatureNamesIn: append([]string(nil), SelectedFeatures...),
	}
}

// WriteArtifacts writes the test classifier, imputer and selected feature
// list into dir and returns their paths.
func WriteArtifacts(t testing.TB, dir string) assets.Paths {
	t.Helper()
	paths := assets.Paths{
		Model:            filepath.Join(dir, "model.msgpack"),
		Imputer:          filepath.Join(dir, "imputer.msgpack"),
		SelectedFeatures: filepath.Join(dir, "selected_features.msgpack"),
	}
	WriteArtifactsAt(t, paths.Model, paths.Imputer, paths.SelectedFeatures)
	return paths
}

// WriteArtifactsAt writes the test artifacts to explicit paths.
func WriteArtifactsAt(t testing.TB, modelPath, imputerPath, selectedPath string) {
	t.Helper()
	WriteClassifier(t, modelPath, TestForest())
	WriteImputer(t, imputerPath, TestImputer())
	WriteFeatureNames(t, selectedPath, SelectedFeatures)
}

// WriteClassifier encodes c to path.
func WriteClassifier(t testing.TB, path string, c model.Classifier) {
	t.Helper()
	data, err := model.EncodeClassifier(c)
	if err != nil {
		t.Fatalf("encode classifier: %v", err)
	}
	WriteBytes(t, path, data)
}

// WriteImputer encodes imp to path.
func WriteImputer(t testing.TB, path string, imp *model.SimpleImputer) {
	t.Helper()
	data, err := model.EncodeImputer(imp)
	if err != nil {
		t.Fatalf("encode imputer: %v", err)
	}
	WriteBytes(t, path, data)
}

// WriteFeatureNames encodes names to path.
func WriteFeatureNames(t testing.TB, path string, names []string) {
	t.Helper()
	data, err := assets.EncodeFeatureNames(names)
	if err != nil {
		t.Fatalf("encode feature names: %v", err)
	}
	WriteBytes(t, path, data)
}

// AllFinite reports whether every value is a finite number.
func AllFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
