package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts mono samples from one rate to another. Equal rates return
// the input unchanged. The output always holds round(len*to/from) samples:
// the resampler's buffered tail is flushed, then padded with silence or
// trimmed to that length.
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("resample: invalid rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resample: create resampler: %w", err)
	}
	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample: flush: %w", err)
	}
	out = append(out, tail...)
	return fitLength(out, ResampledLength(len(samples), from, to)), nil
}

// ResampledLength is the sample count n samples at from Hz occupy at to Hz.
func ResampledLength(n, from, to int) int {
	return int(math.Round(float64(n) * float64(to) / float64(from)))
}

func fitLength(samples []float64, want int) []float64 {
	if len(samples) >= want {
		return samples[:want]
	}
	return append(samples, make([]float64, want-len(samples))...)
}
