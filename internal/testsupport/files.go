package testsupport

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"voicetag/internal/audio"
)

// SineWave returns n samples of a 0.5 amplitude tone.
func SineWave(n, rate int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

// WAVBytes encodes samples as 16-bit mono WAV.
func WAVBytes(t testing.TB, samples []float64, rate int) []byte {
	t.Helper()
	data, err := audio.EncodeWAV(audio.Signal{Samples: samples, SampleRate: rate})
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return data
}

// Float32WAVBytes encodes samples as 32-bit IEEE float mono WAV, the layout
// browser recorders commonly emit. Values are stored as given, NaN included.
func Float32WAVBytes(samples []float32, rate int) []byte {
	var buf bytes.Buffer
	put := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	put(uint32(36 + 4*len(samples)))
	buf.WriteString("WAVEfmt ")
	put(uint32(16))
	put(uint16(3))
	put(uint16(1))
	put(uint32(rate))
	put(uint32(4 * rate))
	put(uint16(4))
	put(uint16(32))
	buf.WriteString("data")
	put(uint32(4 * len(samples)))
	put(samples)
	return buf.Bytes()
}

// WriteWAV writes samples to path as 16-bit mono WAV.
func WriteWAV(t testing.TB, path string, samples []float64, rate int) {
	t.Helper()
	WriteBytes(t, path, WAVBytes(t, samples, rate))
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DirEntries lists the names in dir, failing the test on error.
func DirEntries(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
