package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// spectrum is the one-sided FFT magnitude of a signal with its bin
// frequencies spread evenly over [0, fs/2].
type spectrum struct {
	freq []float64
	mag  []float64
}

func magnitudeSpectrum(x []float64, fs int) *spectrum {
	n := len(x)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)
	bins := n/2 + 1
	s := &spectrum{freq: make([]float64, bins), mag: make([]float64, bins)}
	nyquist := float64(fs / 2)
	for k := 0; k < bins; k++ {
		s.mag[k] = cmplx.Abs(coeffs[k])
		if bins > 1 {
			s.freq[k] = nyquist * float64(k) / float64(bins-1)
		}
	}
	return s
}

// psd is a power spectral density estimate.
type psd struct {
	freq  []float64
	power []float64
}

// welchStdNormalized estimates the PSD of x scaled to unit standard deviation
// using a single Hann-windowed segment spanning the whole signal.
func welchStdNormalized(x []float64, fs int) *psd {
	n := len(x)
	sd := stat.PopStdDev(x, nil)
	m := stat.Mean(x, nil)

	window := make([]float64, n)
	var windowPower float64
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		windowPower += window[i] * window[i]
	}

	seg := make([]float64, n)
	for i, v := range x {
		seg[i] = (v - m) / nonZero(sd) * window[i]
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, seg)
	scale := 1 / (float64(fs) * windowPower)
	out := &psd{freq: make([]float64, len(coeffs)), power: make([]float64, len(coeffs))}
	for k, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		p *= scale
		nyquistBin := n%2 == 0 && k == len(coeffs)-1
		if k != 0 && !nyquistBin {
			p *= 2
		}
		out.power[k] = p
		out.freq[k] = float64(k) * float64(fs) / float64(n)
	}
	return out
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// fundamentalFrequency is the lowest-frequency spectral peak reaching 30% of
// the largest magnitude, after removing the DC offset.
func fundamentalFrequency(f *frame) float64 {
	m := mean(f)
	centred := make([]float64, f.n())
	for i, v := range f.x {
		centred[i] = v - m
	}
	s := magnitudeSpectrum(centred, f.fs)
	height := floats.Max(s.mag) * 0.3
	for _, idx := range findPeaks(s.mag) {
		if idx != 0 && s.mag[idx] >= height {
			return s.freq[idx]
		}
	}
	return 0
}

// findPeaks returns indices of local maxima in ascending order. Flat peaks
// report their middle sample.
func findPeaks(x []float64) []int {
	var peaks []int
	i := 1
	for i < len(x)-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < len(x)-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
				continue
			}
		}
		i++
	}
	return peaks
}

func nearestBin(freq []float64, target float64) int {
	best := 0
	for i, f := range freq {
		if math.Abs(f-target) < math.Abs(freq[best]-target) {
			best = i
		}
	}
	return best
}

// humanRangeEnergy is the share of spectral energy between 0.6 and 2.5 Hz.
func humanRangeEnergy(f *frame) float64 {
	s := f.fft()
	var all float64
	for _, v := range s.mag {
		all += v * v
	}
	if all == 0 {
		return 0
	}
	lo := nearestBin(s.freq, 0.6)
	hi := nearestBin(s.freq, 2.5)
	var band float64
	for i := lo; i < hi; i++ {
		band += s.mag[i] * s.mag[i]
	}
	return band / all
}

func cumulativeCrossing(freq, values []float64, fraction float64, strict bool) float64 {
	cum := make([]float64, len(values))
	floats.CumSum(cum, values)
	limit := cum[len(cum)-1] * fraction
	for i, c := range cum {
		if (strict && c > limit) || (!strict && c >= limit) {
			return freq[i]
		}
	}
	return freq[floats.MaxIdx(cum)]
}

func maxFrequency(f *frame) float64 {
	s := f.fft()
	return cumulativeCrossing(s.freq, s.mag, 0.95, true)
}

func medianFrequency(f *frame) float64 {
	s := f.fft()
	return cumulativeCrossing(s.freq, s.mag, 0.5, true)
}

func maxPowerSpectrum(f *frame) float64 {
	return floats.Max(f.psd().power)
}

// powerBandwidth is the width of the band holding 95% of the PSD, measured
// from both ends.
func powerBandwidth(f *frame) float64 {
	p := f.psd()
	total := floats.Sum(p.power)
	if total == 0 {
		return 0
	}
	limit := total * 0.95
	var cum float64
	lower := 0
	for i, v := range p.power {
		cum += v
		if cum >= limit {
			lower = i
			break
		}
	}
	cum = 0
	upper := 0
	for i := len(p.power) - 1; i >= 0; i-- {
		cum += p.power[i]
		if cum >= limit {
			upper = i
			break
		}
	}
	return math.Abs(p.freq[upper] - p.freq[lower])
}

func spectralCentroid(f *frame) float64 {
	s := f.fft()
	total := floats.Sum(s.mag)
	if total == 0 {
		return 0
	}
	return floats.Dot(s.freq, s.mag) / total
}

// spectralMoment is the normalized central moment of order k around the
// spectral centroid.
func spectralMoment(f *frame, k float64) float64 {
	s := f.fft()
	total := floats.Sum(s.mag)
	c := spectralCentroid(f)
	var sum float64
	for i, v := range s.mag {
		sum += math.Pow(s.freq[i]-c, k) * v / total
	}
	return sum
}

func spectralSpread(f *frame) float64 {
	if floats.Sum(f.fft().mag) == 0 {
		return 0
	}
	return math.Sqrt(spectralMoment(f, 2))
}

func spectralSkewness(f *frame) float64 {
	spread := spectralSpread(f)
	if spread == 0 {
		return 0
	}
	return spectralMoment(f, 3) / math.Pow(spread, 3)
}

func spectralKurtosis(f *frame) float64 {
	spread := spectralSpread(f)
	if spread == 0 {
		return 0
	}
	return spectralMoment(f, 4) / math.Pow(spread, 4)
}

func spectralDecrease(f *frame) float64 {
	mag := f.fft().mag
	if len(mag) < 2 {
		return 0
	}
	band := mag[1:]
	bandSum := floats.Sum(band)
	if bandSum == 0 {
		return 0
	}
	var num float64
	for i, v := range band {
		num += (v - mag[0]) / float64(i+1)
	}
	return num / bandSum
}

// spectralDistance compares the cumulative magnitude against a straight line
// from zero to its total.
func spectralDistance(f *frame) float64 {
	mag := f.fft().mag
	cum := make([]float64, len(mag))
	floats.CumSum(cum, mag)
	last := cum[len(cum)-1]
	var dist float64
	for i, c := range cum {
		var line float64
		if len(cum) > 1 {
			line = last * float64(i) / float64(len(cum)-1)
		}
		dist += line - c
	}
	return dist
}

func spectralEntropy(f *frame) float64 {
	m := mean(f)
	centred := make([]float64, f.n())
	for i, v := range f.x {
		centred[i] = v - m
	}
	s := magnitudeSpectrum(centred, f.fs)
	power := make([]float64, len(s.mag))
	for i, v := range s.mag {
		power[i] = v * v
	}
	total := floats.Sum(power)
	if total == 0 {
		return 0
	}
	var h float64
	size := 0
	for _, p := range power {
		if p == 0 {
			continue
		}
		prob := p / total
		h -= prob * math.Log2(prob)
		size++
	}
	if size <= 1 {
		return 0
	}
	return h / math.Log2(float64(size))
}

func spectralPositiveTurningPoints(f *frame) float64 {
	mag := f.fft().mag
	d := make([]float64, len(mag)-1)
	for i := range d {
		d[i] = mag[i+1] - mag[i]
	}
	return turningPoints(d, true)
}

func spectralRoll(f *frame, fraction float64) float64 {
	s := f.fft()
	return cumulativeCrossing(s.freq, s.mag, fraction, false)
}

func spectralRollOff(f *frame) float64 { return spectralRoll(f, 0.95) }

func spectralRollOn(f *frame) float64 { return spectralRoll(f, 0.05) }

func spectralSlope(f *frame) float64 {
	s := f.fft()
	sumMag := floats.Sum(s.mag)
	if sumMag == 0 {
		return 0
	}
	n := float64(len(s.freq))
	sumF := floats.Sum(s.freq)
	dotFF := floats.Dot(s.freq, s.freq)
	denom := n*dotFF - sumF*sumF
	if denom == 0 {
		return 0
	}
	num := (n*floats.Dot(s.freq, s.mag) - sumF*sumMag) / sumMag
	return num / denom
}

func spectralVariation(f *frame) float64 {
	mag := f.fft().mag
	if len(mag) < 2 {
		return 1
	}
	head, tail := mag[:len(mag)-1], mag[1:]
	cross := floats.Dot(head, tail)
	tailEnergy := floats.Dot(tail, tail)
	headEnergy := floats.Dot(head, head)
	if tailEnergy == 0 || headEnergy == 0 {
		return 1
	}
	return 1 - cross/(math.Sqrt(tailEnergy)*math.Sqrt(headEnergy))
}
