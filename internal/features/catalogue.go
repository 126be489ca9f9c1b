package features

import (
	"fmt"
	"math"
	"strconv"
)

const channelPrefix = "0_"

type definition struct {
	domain   Domain
	name     string
	defaults Params
	// width reports the number of outputs for the given parameters. nil means
	// the feature is scalar.
	width   func(Params) int
	compute func(*frame, Params) []float64
}

func (d *definition) outputs(p Params) int {
	if d.width == nil {
		return 1
	}
	return d.width(p)
}

func (d *definition) columns(p Params) []string {
	n := d.outputs(p)
	if d.width == nil {
		return []string{channelPrefix + d.name}
	}
	cols := make([]string, n)
	for i := range cols {
		cols[i] = channelPrefix + d.name + "_" + strconv.Itoa(i)
	}
	return cols
}

// params overlays user overrides on the feature defaults.
func (d *definition) params(overrides Params) Params {
	merged := cloneParams(d.defaults)
	if merged == nil {
		merged = Params{}
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func scalar(fn func(*frame) float64) func(*frame, Params) []float64 {
	return func(f *frame, _ Params) []float64 { return []float64{fn(f)} }
}

var catalogue = []*definition{
	// statistical
	{domain: Statistical, name: "Absolute energy", compute: scalar(absEnergy)},
	{domain: Statistical, name: "Average power", compute: scalar(averagePower)},
	{domain: Statistical, name: "ECDF", defaults: Params{"d": 10}, width: intWidth("d"), compute: ecdf},
	{domain: Statistical, name: "ECDF Percentile", defaults: Params{"percentile": []float64{0.2, 0.8}}, width: listWidth("percentile"), compute: ecdfPercentile},
	{domain: Statistical, name: "ECDF Percentile Count", defaults: Params{"percentile": []float64{0.2, 0.8}}, width: listWidth("percentile"), compute: ecdfPercentileCount},
	{domain: Statistical, name: "ECDF Slope", defaults: Params{"p_init": 0.5, "p_end": 0.75}, compute: ecdfSlope},
	{domain: Statistical, name: "Entropy", defaults: Params{"prob": "standard"}, compute: entropy},
	{domain: Statistical, name: "Histogram", defaults: Params{"nbins": 10, "r": 1}, width: intWidth("nbins"), compute: histogram},
	{domain: Statistical, name: "Interquartile range", compute: scalar(interquartileRange)},
	{domain: Statistical, name: "Kurtosis", compute: scalar(kurtosis)},
	{domain: Statistical, name: "Max", compute: scalar(maxValue)},
	{domain: Statistical, name: "Mean", compute: scalar(mean)},
	{domain: Statistical, name: "Mean absolute deviation", compute: scalar(meanAbsDeviation)},
	{domain: Statistical, name: "Median", compute: scalar(median)},
	{domain: Statistical, name: "Median absolute deviation", compute: scalar(medianAbsDeviation)},
	{domain: Statistical, name: "Min", compute: scalar(minValue)},
	{domain: Statistical, name: "Peak to peak distance", compute: scalar(peakToPeak)},
	{domain: Statistical, name: "Root mean square", compute: scalar(rootMeanSquare)},
	{domain: Statistical, name: "Skewness", compute: scalar(skewness)},
	{domain: Statistical, name: "Standard deviation", compute: scalar(stdDev)},
	{domain: Statistical, name: "Variance", compute: scalar(variance)},

	// temporal
	{domain: Temporal, name: "Area under the curve", compute: scalar(areaUnderCurve)},
	{domain: Temporal, name: "Autocorrelation", compute: scalar(autocorrelation)},
	{domain: Temporal, name: "Centroid", compute: scalar(temporalCentroid)},
	{domain: Temporal, name: "Mean absolute diff", compute: scalar(meanAbsDiff)},
	{domain: Temporal, name: "Mean diff", compute: scalar(meanDiff)},
	{domain: Temporal, name: "Median absolute diff", compute: scalar(medianAbsDiff)},
	{domain: Temporal, name: "Median diff", compute: scalar(medianDiff)},
	{domain: Temporal, name: "Negative turning points", compute: scalar(negativeTurningPoints)},
	{domain: Temporal, name: "Neighbourhood peaks", defaults: Params{"n": 10}, compute: neighbourhoodPeaks},
	{domain: Temporal, name: "Positive turning points", compute: scalar(positiveTurningPoints)},
	{domain: Temporal, name: "Signal distance", compute: scalar(signalDistance)},
	{domain: Temporal, name: "Slope", compute: scalar(slope)},
	{domain: Temporal, name: "Sum absolute diff", compute: scalar(sumAbsDiff)},
	{domain: Temporal, name: "Zero crossing rate", compute: scalar(zeroCrossingRate)},

	// spectral
	{domain: Spectral, name: "Fundamental frequency", compute: scalar(fundamentalFrequency)},
	{domain: Spectral, name: "Human range energy", compute: scalar(humanRangeEnergy)},
	{domain: Spectral, name: "MFCC", defaults: Params{"pre_emphasis": 0.97, "nfft": 512, "nfilt": 40, "num_ceps": 12, "cep_lifter": 22}, width: intWidth("num_ceps"), compute: mfcc},
	{domain: Spectral, name: "Max power spectrum", compute: scalar(maxPowerSpectrum)},
	{domain: Spectral, name: "Maximum frequency", compute: scalar(maxFrequency)},
	{domain: Spectral, name: "Median frequency", compute: scalar(medianFrequency)},
	{domain: Spectral, name: "Power bandwidth", compute: scalar(powerBandwidth)},
	{domain: Spectral, name: "Spectral centroid", compute: scalar(spectralCentroid)},
	{domain: Spectral, name: "Spectral decrease", compute: scalar(spectralDecrease)},
	{domain: Spectral, name: "Spectral distance", compute: scalar(spectralDistance)},
	{domain: Spectral, name: "Spectral entropy", compute: scalar(spectralEntropy)},
	{domain: Spectral, name: "Spectral kurtosis", compute: scalar(spectralKurtosis)},
	{domain: Spectral, name: "Spectral positive turning points", compute: scalar(spectralPositiveTurningPoints)},
	{domain: Spectral, name: "Spectral roll-off", compute: scalar(spectralRollOff)},
	{domain: Spectral, name: "Spectral roll-on", compute: scalar(spectralRollOn)},
	{domain: Spectral, name: "Spectral skewness", compute: scalar(spectralSkewness)},
	{domain: Spectral, name: "Spectral slope", compute: scalar(spectralSlope)},
	{domain: Spectral, name: "Spectral spread", compute: scalar(spectralSpread)},
	{domain: Spectral, name: "Spectral variation", compute: scalar(spectralVariation)},
}

var catalogueIndex = func() map[Domain]map[string]*definition {
	idx := map[Domain]map[string]*definition{}
	for _, def := range catalogue {
		if idx[def.domain] == nil {
			idx[def.domain] = map[string]*definition{}
		}
		idx[def.domain][def.name] = def
	}
	return idx
}()

func lookup(domain Domain, name string) (*definition, bool) {
	def, ok := catalogueIndex[domain][name]
	return def, ok
}

func intWidth(key string) func(Params) int {
	return func(p Params) int { return p.Int(key, 0) }
}

func listWidth(key string) func(Params) int {
	return func(p Params) int { return len(p.Floats(key, nil)) }
}

// Int returns the integer parameter key, or def when absent or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	}
	return def
}

// Float returns the float parameter key, or def when absent or not numeric.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	}
	return def
}

// Floats returns a numeric list parameter. A single number is treated as a
// one-element list.
func (p Params) Floats(key string, def []float64) []float64 {
	switch v := p[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f := Params{"v": item}.Float("v", math.NaN())
			if math.IsNaN(f) {
				return def
			}
			out = append(out, f)
		}
		return out
	case int, int64, uint64, float64:
		return []float64{p.Float(key, 0)}
	}
	return def
}

// String returns the string parameter key, or def when absent.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

func describe(def *definition) string {
	return fmt.Sprintf("%s/%s", def.domain, def.name)
}
