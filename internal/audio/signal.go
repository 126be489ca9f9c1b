package audio

import "time"

// TargetSampleRate is the sample rate every normalized Signal carries.
const TargetSampleRate = 16000

// Signal is a mono sequence of samples in [-1, 1]. Treat it as read-only once
// constructed; downstream stages share the backing slice.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration reports the signal length.
func (s Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / float64(s.SampleRate) * float64(time.Second))
}
