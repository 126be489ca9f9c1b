package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

// areaUnderCurve integrates |x| with the trapezoid rule.
func areaUnderCurve(f *frame) float64 {
	dt := 1 / float64(f.fs)
	var area float64
	for i := 0; i+1 < f.n(); i++ {
		area += 0.5 * dt * math.Abs(f.x[i]+f.x[i+1])
	}
	return area
}

// autocorrelation is the first lag at which the normalized autocorrelation
// drops below 1/e. A constant signal yields 0.
func autocorrelation(f *frame) float64 {
	n := f.n()
	m := mean(f)
	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	for i, v := range f.x {
		padded[i] = v - m
	}

	fft := fourier.NewFFT(size)
	coeffs := fft.Coefficients(nil, padded)
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		coeffs[i] = complex(re*re+im*im, 0)
	}
	acf := fft.Sequence(nil, coeffs)
	if acf[0] == 0 {
		return 0
	}
	threshold := 1 / math.E
	for lag := 1; lag < n; lag++ {
		if acf[lag]/acf[0] < threshold {
			return float64(lag)
		}
	}
	return float64(n)
}

// temporalCentroid is the energy-weighted mean time in seconds.
func temporalCentroid(f *frame) float64 {
	var weighted, total float64
	for i, v := range f.x {
		e := v * v
		weighted += float64(i) / float64(f.fs) * e
		total += e
	}
	if total == 0 || weighted == 0 {
		return 0
	}
	return weighted / total
}

func absolute(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}

func meanAbsDiff(f *frame) float64 { return stat.Mean(absolute(f.differences()), nil) }

func meanDiff(f *frame) float64 { return stat.Mean(f.differences(), nil) }

func medianAbsDiff(f *frame) float64 { return medianOf(absolute(f.differences())) }

func medianDiff(f *frame) float64 { return medianOf(f.differences()) }

func sumAbsDiff(f *frame) float64 { return floats.Sum(absolute(f.differences())) }

func turningPoints(d []float64, positive bool) float64 {
	count := 0
	for i := 0; i+1 < len(d); i++ {
		if positive && d[i] > 0 && d[i+1] < 0 {
			count++
		}
		if !positive && d[i] < 0 && d[i+1] > 0 {
			count++
		}
	}
	return float64(count)
}

func negativeTurningPoints(f *frame) float64 { return turningPoints(f.differences(), false) }

func positiveTurningPoints(f *frame) float64 { return turningPoints(f.differences(), true) }

// neighbourhoodPeaks counts samples strictly greater than their n neighbours
// on each side. Neighbours wrap around the signal ends.
func neighbourhoodPeaks(f *frame, p Params) []float64 {
	n := p.Int("n", 10)
	size := f.n()
	if n <= 0 || size <= 2*n {
		return []float64{0}
	}
	count := 0
	for i := n; i < size-n; i++ {
		peak := true
		for k := 1; k <= n && peak; k++ {
			left := f.x[(i-k+size)%size]
			right := f.x[(i+k)%size]
			peak = f.x[i] > left && f.x[i] > right
		}
		if peak {
			count++
		}
	}
	return []float64{float64(count)}
}

func signalDistance(f *frame) float64 {
	var dist float64
	for _, d := range f.differences() {
		dist += math.Sqrt(1 + d*d)
	}
	return dist
}

// slope fits a least-squares line against the sample index.
func slope(f *frame) float64 {
	t := make([]float64, f.n())
	for i := range t {
		t[i] = float64(i)
	}
	_, beta := stat.LinearRegression(t, f.x, nil, false)
	return beta
}

// zeroCrossingRate counts sign changes, including moves to and from zero.
func zeroCrossingRate(f *frame) float64 {
	count := 0
	for i := 0; i+1 < f.n(); i++ {
		if sign(f.x[i]) != sign(f.x[i+1]) {
			count++
		}
	}
	return float64(count)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
