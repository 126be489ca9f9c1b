package features

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func sineWave(n, fs int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(fs))
	}
	return out
}

func TestDefaultNamesUseChannelPrefix(t *testing.T) {
	cfg := Default()
	if cfg.Count() != len(catalogue) {
		t.Fatalf("expected every catalogue entry enabled, got %d of %d", cfg.Count(), len(catalogue))
	}

	names := Names(cfg)
	seen := map[string]bool{}
	for _, name := range names {
		if !strings.HasPrefix(name, "0_") {
			t.Fatalf("column %q missing channel prefix", name)
		}
		if seen[name] {
			t.Fatalf("duplicate column %q", name)
		}
		seen[name] = true
	}
	for _, want := range []string{"0_Mean", "0_Spectral centroid", "0_MFCC_0", "0_MFCC_11", "0_ECDF_9", "0_ECDF Percentile_1", "0_Histogram_9"} {
		if !seen[want] {
			t.Fatalf("expected column %q in default names", want)
		}
	}
	if seen["0_MFCC_12"] {
		t.Fatal("default MFCC should produce 12 coefficients")
	}
}

func TestExtractMatchesNames(t *testing.T) {
	cfg := Default()
	vec, err := Extract(cfg, sineWave(4000, 16000, 440), 16000)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	names := Names(cfg)
	if len(vec) != len(names) {
		t.Fatalf("expected %d columns, got %d", len(names), len(vec))
	}
	for _, name := range names {
		if _, ok := vec[name]; !ok {
			t.Fatalf("missing column %q", name)
		}
	}
}

func TestExtractStatisticalValues(t *testing.T) {
	cfg, err := ForDomain(Statistical)
	if err != nil {
		t.Fatalf("ForDomain: %v", err)
	}
	vec, err := Extract(cfg, []float64{1, 2, 3, 4}, 4)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := map[string]float64{
		"0_Mean":                    2.5,
		"0_Max":                     4,
		"0_Min":                     1,
		"0_Median":                  2.5,
		"0_Variance":                1.25,
		"0_Absolute energy":         30,
		"0_Average power":           40,
		"0_Root mean square":        math.Sqrt(7.5),
		"0_Interquartile range":     1.5,
		"0_Peak to peak distance":   3,
		"0_Entropy":                 1,
		"0_Mean absolute deviation": 1,
		"0_ECDF_0":                  0.25,
		"0_ECDF_3":                  1,
		"0_ECDF Percentile Count_0": 0,
		"0_ECDF Percentile Count_1": 3,
	}
	for name, expected := range want {
		if got := vec[name]; !near(got, expected, 1e-9) {
			t.Fatalf("%s: got %v want %v", name, got, expected)
		}
	}
	if !math.IsNaN(vec["0_ECDF_4"]) {
		t.Fatalf("ECDF beyond signal length should be NaN, got %v", vec["0_ECDF_4"])
	}
}

func TestExtractTemporalValues(t *testing.T) {
	cfg, err := ForDomain(Temporal)
	if err != nil {
		t.Fatalf("ForDomain: %v", err)
	}
	vec, err := Extract(cfg, []float64{1, -1, 1, -1, 1}, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := map[string]float64{
		"0_Zero crossing rate":      4,
		"0_Sum absolute diff":       8,
		"0_Mean diff":               0,
		"0_Positive turning points": 1,
		"0_Negative turning points": 2,
		"0_Area under the curve":    0,
	}
	for name, expected := range want {
		if got := vec[name]; !near(got, expected, 1e-9) {
			t.Fatalf("%s: got %v want %v", name, got, expected)
		}
	}

	vec, err = Extract(cfg, []float64{0, 1, 2, 3}, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := vec["0_Slope"]; !near(got, 1, 1e-9) {
		t.Fatalf("slope: got %v", got)
	}
}

func TestSpectralFeaturesOfPureTone(t *testing.T) {
	cfg, err := ForDomain(Spectral)
	if err != nil {
		t.Fatalf("ForDomain: %v", err)
	}
	vec, err := Extract(cfg, sineWave(1600, 16000, 1000), 16000)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, name := range []string{"0_Spectral centroid", "0_Fundamental frequency", "0_Median frequency", "0_Spectral roll-off"} {
		if got := vec[name]; !near(got, 1000, 20) {
			t.Fatalf("%s: got %v want ~1000", name, got)
		}
	}
	for i := 0; i < 12; i++ {
		name := "0_MFCC_" + strconv.Itoa(i)
		if v := vec[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s should be finite for a tone, got %v", name, v)
		}
	}
}

func TestSilenceYieldsNonFiniteValues(t *testing.T) {
	vec, err := Extract(Default(), make([]float64, 16000), 16000)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !math.IsNaN(vec["0_Kurtosis"]) {
		t.Fatalf("kurtosis of silence should be NaN, got %v", vec["0_Kurtosis"])
	}
	if !math.IsInf(vec["0_ECDF Slope"], 1) {
		t.Fatalf("ECDF slope of silence should be +Inf, got %v", vec["0_ECDF Slope"])
	}
	if vec["0_Spectral centroid"] != 0 || vec["0_Autocorrelation"] != 0 {
		t.Fatalf("guarded spectral values should be zero, got centroid=%v autocorr=%v", vec["0_Spectral centroid"], vec["0_Autocorrelation"])
	}
}

func TestNaNSampleDoesNotStallExtraction(t *testing.T) {
	x := sineWave(16000, 16000, 440)
	x[100] = math.NaN()

	f := newFrame(x, 16000)
	if got := histogram(f, Params{"nbins": 10, "r": 1.0}); totalCount(got) != 15999 {
		t.Fatalf("histogram should count every finite sample, got %v", got)
	}

	done := make(chan error, 1)
	go func() {
		entropy(newFrame(x, 16000), nil)
		_, err := Extract(Default(), x, 16000)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("extraction did not finish for a signal with a NaN sample")
	}
}

func totalCount(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	return total
}

func TestExtractRejectsShortSignal(t *testing.T) {
	if _, err := Extract(Default(), []float64{0.5}, 16000); !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("expected ErrSignalTooShort, got %v", err)
	}
	if _, err := Extract(Default(), []float64{0, 1}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestParseConfigYAML(t *testing.T) {
	data := []byte(`
statistical:
  Mean:
    use: "yes"
  Max:
    use: "no"
spectral:
  MFCC:
    use: true
    parameters:
      num_ceps: 5
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	names := Names(cfg)
	want := []string{"0_Mean", "0_MFCC_0", "0_MFCC_1", "0_MFCC_2", "0_MFCC_3", "0_MFCC_4"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected names %v", names)
	}

	vec, err := Extract(cfg, sineWave(1024, 16000, 300), 16000)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, ok := vec["0_Max"]; ok {
		t.Fatal("disabled feature should not be extracted")
	}
	if len(vec) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(vec))
	}
}

func TestParseConfigRejectsUnknownEntries(t *testing.T) {
	cases := map[string]string{
		"unknown domain":  "wavelet:\n  Foo:\n    use: yes\n",
		"unknown feature": "statistical:\n  Foo:\n    use: yes\n",
		"bad toggle":      "statistical:\n  Mean:\n    use: maybe\n",
		"zero width":      "spectral:\n  MFCC:\n    use: yes\n    parameters:\n      num_ceps: 0\n",
		"empty":           "{}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if got, want := len(Names(cfg)), len(Names(Default())); got != want {
		t.Fatalf("round trip changed column count: %d vs %d", got, want)
	}
}

func TestDescribeListsColumns(t *testing.T) {
	infos := Describe(Default())
	var found bool
	for _, info := range infos {
		if info.Name == "MFCC" {
			found = true
			if info.Domain != Spectral || len(info.Columns) != 12 {
				t.Fatalf("unexpected MFCC info %+v", info)
			}
		}
	}
	if !found {
		t.Fatal("MFCC missing from Describe output")
	}
}
