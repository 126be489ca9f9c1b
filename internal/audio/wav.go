package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// The extensible fmt chunk carries the real format tag in the first two
// bytes of the SubFormat GUID at offset 24.
const (
	extensibleSubFormatOffset = 24
	extensibleFmtMinSize      = 40
)

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

// DecodeWAV decodes a WAV byte buffer into a mono Signal at the file's native
// sample rate. Multi-channel audio is averaged down to one channel.
func DecodeWAV(data []byte) (Signal, error) {
	if len(data) == 0 {
		return Signal{}, ErrEmptyInput
	}
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return Signal{}, fmt.Errorf("%w: not a valid WAV file", ErrDecode)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if buf == nil || buf.Format == nil {
		return Signal{}, fmt.Errorf("%w: missing format chunk", ErrDecode)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return Signal{}, fmt.Errorf("%w: invalid channel count %d", ErrDecode, channels)
	}
	rate := buf.Format.SampleRate
	if rate <= 0 {
		return Signal{}, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, rate)
	}

	format := int(decoder.WavAudioFormat)
	if format == wavFormatExtensible {
		format, err = extensibleSubFormat(data)
		if err != nil {
			return Signal{}, err
		}
	}
	scale, err := sampleScaler(format, int(decoder.BitDepth))
	if err != nil {
		return Signal{}, err
	}

	frames := len(buf.Data) / channels
	if frames == 0 {
		return Signal{}, fmt.Errorf("%w: WAV contains no samples", ErrEmptyInput)
	}

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += scale(buf.Data[i*channels+c])
		}
		v := sum / float64(channels)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Signal{}, fmt.Errorf("%w: non-finite sample at frame %d", ErrDecode, i)
		}
		samples[i] = v
	}
	return Signal{Samples: samples, SampleRate: rate}, nil
}

func sampleScaler(format, bitDepth int) (func(int) float64, error) {
	switch format {
	case wavFormatFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("%w: unsupported float bit depth %d", ErrDecode, bitDepth)
		}
		return func(v int) float64 {
			return float64(math.Float32frombits(uint32(int32(v))))
		}, nil
	case wavFormatPCM:
		switch bitDepth {
		case 8:
			// 8-bit WAV is unsigned.
			return func(v int) float64 { return (float64(v) - 128) / 128 }, nil
		case 16, 24, 32:
			full := math.Exp2(float64(bitDepth - 1))
			return func(v int) float64 { return float64(v) / full }, nil
		default:
			return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported WAV encoding %d", ErrDecode, format)
	}
}

// extensibleSubFormat returns the format tag a WAVE_FORMAT_EXTENSIBLE file
// declares in its SubFormat GUID.
func extensibleSubFormat(data []byte) (int, error) {
	parser := riff.New(bytes.NewReader(data))
	if err := parser.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: extensible WAV without fmt chunk", ErrDecode)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}
		if chunk.Size < extensibleFmtMinSize {
			return 0, fmt.Errorf("%w: extensible fmt chunk is %d bytes", ErrDecode, chunk.Size)
		}
		header := make([]byte, extensibleFmtMinSize)
		if _, err := io.ReadFull(chunk, header); err != nil {
			return 0, fmt.Errorf("%w: read fmt chunk: %v", ErrDecode, err)
		}
		return int(binary.LittleEndian.Uint16(header[extensibleSubFormatOffset:])), nil
	}
}

// EncodeWAV writes sig as a 16-bit PCM mono WAV file. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(sig Signal) ([]byte, error) {
	if sig.SampleRate <= 0 {
		return nil, errors.New("encode wav: sample rate must be positive")
	}
	data := make([]int, len(sig.Samples))
	for i, v := range sig.Samples {
		switch {
		case math.IsNaN(v):
			v = 0
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		data[i] = int(math.Round(v * 32767))
	}

	out := &memFile{}
	encoder := wav.NewEncoder(out, sig.SampleRate, 16, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sig.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	return out.buf, nil
}

// memFile is the in-memory io.WriteSeeker the WAV encoder needs to patch
// chunk sizes after the data is written.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.pos = int(next)
	return next, nil
}
