package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterBank builds nfilt triangular filters spanning 0 Hz to fs/2 over
// nfft/2+1 power spectrum bins.
func melFilterBank(nfilt, nfft, fs int) [][]float64 {
	bins := nfft/2 + 1
	highMel := hzToMel(float64(fs) / 2)
	edges := make([]float64, nfilt+2)
	for i := range edges {
		mel := highMel * float64(i) / float64(nfilt+1)
		edges[i] = math.Floor(float64(nfft+1) * melToHz(mel) / float64(fs))
	}

	bank := make([][]float64, nfilt)
	for m := 1; m <= nfilt; m++ {
		filter := make([]float64, bins)
		left, center, right := edges[m-1], edges[m], edges[m+1]
		for k := int(left); k < int(center) && k < bins; k++ {
			filter[k] = (float64(k) - left) / (center - left)
		}
		for k := int(center); k < int(right) && k < bins; k++ {
			filter[k] = (right - float64(k)) / (right - center)
		}
		bank[m-1] = filter
	}
	return bank
}

// logFilterBankEnergies applies pre-emphasis, takes the power spectrum of the
// first nfft samples (zero padded when shorter) and returns per-filter dB
// energies.
func logFilterBankEnergies(x []float64, fs int, preEmphasis float64, nfft, nfilt int) []float64 {
	frame := make([]float64, nfft)
	for i := 0; i < nfft && i < len(x); i++ {
		if i == 0 {
			frame[i] = x[0]
			continue
		}
		frame[i] = x[i] - preEmphasis*x[i-1]
	}

	coeffs := fourier.NewFFT(nfft).Coefficients(nil, frame)
	power := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mag := cmplx.Abs(c)
		power[k] = mag * mag / float64(nfft)
	}

	bank := melFilterBank(nfilt, nfft, fs)
	energies := make([]float64, nfilt)
	for m, filter := range bank {
		var e float64
		for k, w := range filter {
			e += w * power[k]
		}
		if e == 0 {
			e = epsilon
		}
		energies[m] = 20 * math.Log10(e)
	}
	return energies
}

// epsilon is the float64 machine epsilon, substituted for empty filter
// energies before taking logarithms.
const epsilon = 2.220446049250313e-16

// dctOrtho computes the orthonormal type-II DCT of x.
func dctOrtho(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(n)))
		}
		scale := math.Sqrt(2 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		out[k] = sum * scale
	}
	return out
}

// mfcc returns num_ceps mean-removed, liftered cepstral coefficients of the
// signal's first analysis frame, skipping the zeroth coefficient.
func mfcc(f *frame, p Params) []float64 {
	preEmphasis := p.Float("pre_emphasis", 0.97)
	nfft := p.Int("nfft", 512)
	nfilt := p.Int("nfilt", 40)
	numCeps := p.Int("num_ceps", 12)
	lifter := p.Float("cep_lifter", 22)

	out := make([]float64, numCeps)
	if nfft < 2 || nfilt < 1 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	cepstrum := dctOrtho(logFilterBankEnergies(f.x, f.fs, preEmphasis, nfft, nfilt))
	coeffs := cepstrum[1:]
	if len(coeffs) > numCeps {
		coeffs = coeffs[:numCeps]
	}

	var avg float64
	for _, c := range coeffs {
		avg += c
	}
	if len(coeffs) > 0 {
		avg /= float64(len(coeffs))
	}
	for i, c := range coeffs {
		lift := 1.0
		if lifter != 0 {
			lift = 1 + (lifter/2)*math.Sin(math.Pi*float64(i)/lifter)
		}
		out[i] = (c - (avg + 1e-8)) * lift
	}
	for i := len(coeffs); i < numCeps; i++ {
		out[i] = math.NaN()
	}
	return out
}
