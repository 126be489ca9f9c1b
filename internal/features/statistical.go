package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func absEnergy(f *frame) float64 {
	return floats.Dot(f.x, f.x)
}

// averagePower divides energy by the time span between first and last sample.
func averagePower(f *frame) float64 {
	span := float64(f.n()-1) / float64(f.fs)
	return absEnergy(f) / span
}

// ecdfY is the empirical CDF height at each sorted sample.
func ecdfY(n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = float64(i+1) / float64(n)
	}
	return y
}

func ecdf(f *frame, p Params) []float64 {
	d := p.Int("d", 10)
	y := ecdfY(f.n())
	if len(y) > d {
		y = y[:d]
	}
	return y
}

// percentileValue returns the largest sorted sample whose ECDF height is <= q.
func percentileValue(sorted []float64, q float64) float64 {
	y := ecdfY(len(sorted))
	value := math.NaN()
	for i, h := range y {
		if h <= q {
			value = sorted[i]
		}
	}
	return value
}

func ecdfPercentile(f *frame, p Params) []float64 {
	qs := p.Floats("percentile", []float64{0.2, 0.8})
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = percentileValue(f.sortedSamples(), q)
	}
	return out
}

func ecdfPercentileCount(f *frame, p Params) []float64 {
	qs := p.Floats("percentile", []float64{0.2, 0.8})
	y := ecdfY(f.n())
	out := make([]float64, len(qs))
	for i, q := range qs {
		count := 0
		for _, h := range y {
			if h <= q {
				count++
			}
		}
		out[i] = float64(count)
	}
	return out
}

// ecdfSlope is +Inf when both percentiles land on the same value.
func ecdfSlope(f *frame, p Params) []float64 {
	pInit := p.Float("p_init", 0.5)
	pEnd := p.Float("p_end", 0.75)
	xInit := percentileValue(f.sortedSamples(), pInit)
	xEnd := percentileValue(f.sortedSamples(), pEnd)
	if xInit == xEnd {
		return []float64{math.Inf(1)}
	}
	return []float64{(pEnd - pInit) / (xEnd - xInit)}
}

// entropy is the normalized Shannon entropy of the sample value distribution.
func entropy(f *frame, _ Params) []float64 {
	sorted := f.sortedSamples()
	n := float64(len(sorted))
	norm := math.Log2(n)
	if norm == 1 {
		return []float64{0}
	}
	var h float64
	for i := 0; i < len(sorted); {
		// NaN never equals itself, so each NaN forms its own run.
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		prob := float64(j-i) / n
		h -= prob * math.Log2(prob)
		i = j
	}
	if h == 0 {
		return []float64{0}
	}
	return []float64{h / norm}
}

// histogram counts samples in nbins equal bins over [-r, r]; the last bin is
// closed on the right and samples outside the range are ignored.
func histogram(f *frame, p Params) []float64 {
	nbins := p.Int("nbins", 10)
	r := p.Float("r", 1)
	counts := make([]float64, nbins)
	if nbins <= 0 || r <= 0 {
		return counts
	}
	width := 2 * r / float64(nbins)
	for _, v := range f.x {
		if math.IsNaN(v) || v < -r || v > r {
			continue
		}
		bin := int((v + r) / width)
		if bin >= nbins {
			bin = nbins - 1
		}
		counts[bin]++
	}
	return counts
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func interquartileRange(f *frame) float64 {
	s := f.sortedSamples()
	return quantile(s, 0.75) - quantile(s, 0.25)
}

// kurtosis is the biased Fisher kurtosis.
func kurtosis(f *frame) float64 {
	m2 := stat.Moment(2, f.x, nil)
	m4 := stat.Moment(4, f.x, nil)
	return m4/(m2*m2) - 3
}

// skewness is the biased sample skewness.
func skewness(f *frame) float64 {
	m2 := stat.Moment(2, f.x, nil)
	m3 := stat.Moment(3, f.x, nil)
	return m3 / math.Pow(m2, 1.5)
}

func maxValue(f *frame) float64 { return floats.Max(f.x) }

func minValue(f *frame) float64 { return floats.Min(f.x) }

func mean(f *frame) float64 { return stat.Mean(f.x, nil) }

func median(f *frame) float64 { return quantile(f.sortedSamples(), 0.5) }

func meanAbsDeviation(f *frame) float64 {
	m := mean(f)
	var sum float64
	for _, v := range f.x {
		sum += math.Abs(v - m)
	}
	return sum / float64(f.n())
}

func medianAbsDeviation(f *frame) float64 {
	med := median(f)
	dev := make([]float64, f.n())
	for i, v := range f.x {
		dev[i] = math.Abs(v - med)
	}
	return medianOf(dev)
}

func peakToPeak(f *frame) float64 {
	return math.Abs(maxValue(f) - minValue(f))
}

func rootMeanSquare(f *frame) float64 {
	return math.Sqrt(absEnergy(f) / float64(f.n()))
}

func stdDev(f *frame) float64 {
	return math.Sqrt(variance(f))
}

// variance is the population variance.
func variance(f *frame) float64 {
	_, v := stat.PopMeanVariance(f.x, nil)
	return v
}
