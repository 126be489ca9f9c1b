package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrSignalTooShort indicates a signal with fewer than two samples.
var ErrSignalTooShort = errors.New("signal too short for feature extraction")

// Vector maps column names to feature values.
type Vector map[string]float64

// Info describes one catalogue entry.
type Info struct {
	Domain  Domain
	Name    string
	Columns []string
}

// Describe lists the features cfg enables along with their columns.
func Describe(cfg Config) []Info {
	enabled := cfg.enabled()
	out := make([]Info, 0, len(enabled))
	for _, ef := range enabled {
		out = append(out, Info{Domain: ef.def.domain, Name: ef.def.name, Columns: ef.def.columns(ef.params)})
	}
	return out
}

// Extract computes every feature cfg enables for samples taken at fs Hz.
// The result always carries every column Names(cfg) reports; values may be
// NaN or ±Inf for degenerate input.
func Extract(cfg Config, samples []float64, fs int) (Vector, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrSignalTooShort, len(samples))
	}
	if fs <= 0 {
		return nil, fmt.Errorf("feature extraction: invalid sample rate %d", fs)
	}

	f := newFrame(samples, fs)
	vec := Vector{}
	for _, ef := range cfg.enabled() {
		cols := ef.def.columns(ef.params)
		values := ef.def.compute(f, ef.params)
		if len(values) > len(cols) {
			return nil, fmt.Errorf("feature %s produced %d values for %d columns", describe(ef.def), len(values), len(cols))
		}
		for i, col := range cols {
			if i < len(values) {
				vec[col] = values[i]
			} else {
				vec[col] = math.NaN()
			}
		}
	}
	return vec, nil
}

// frame caches derived views of one signal shared across features.
type frame struct {
	x  []float64
	fs int

	sorted []float64
	diff   []float64

	spectrum *spectrum
	welch    *psd
}

func newFrame(samples []float64, fs int) *frame {
	return &frame{x: samples, fs: fs}
}

func (f *frame) n() int { return len(f.x) }

func (f *frame) sortedSamples() []float64 {
	if f.sorted == nil {
		f.sorted = append([]float64(nil), f.x...)
		sort.Float64s(f.sorted)
	}
	return f.sorted
}

func (f *frame) differences() []float64 {
	if f.diff == nil {
		f.diff = make([]float64, len(f.x)-1)
		for i := range f.diff {
			f.diff[i] = f.x[i+1] - f.x[i]
		}
	}
	return f.diff
}

func (f *frame) fft() *spectrum {
	if f.spectrum == nil {
		f.spectrum = magnitudeSpectrum(f.x, f.fs)
	}
	return f.spectrum
}

func (f *frame) psd() *psd {
	if f.welch == nil {
		f.welch = welchStdNormalized(f.x, f.fs)
	}
	return f.welch
}
