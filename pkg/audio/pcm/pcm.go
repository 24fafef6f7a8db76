package pcm

import (
	"fmt"
	"time"
)

// L16Mono16K is audio/L16; rate=16000; channels=1, the format every
// waveform is normalized to before feature extraction.
var L16Mono16K = Format{SampleRate: 16000, Channels: 1}

// Format describes a 16-bit linear PCM layout.
type Format struct {
	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels.
	Channels int
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	return 16
}

// Samples returns the number of samples (per channel) in the given number
// of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels) / int64(f.Depth())
}

// SamplesInDuration returns the number of samples (per channel) in the given
// duration. One second at 16 kHz is exactly 16000 samples.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(int64(f.SampleRate) * int64(d) / int64(time.Second))
}

// Duration returns the duration of the given number of samples.
func (f Format) Duration(samples int) time.Duration {
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}

// Validate reports whether the format can be used for decoding or
// resampling.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("pcm: invalid sample rate %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("pcm: invalid channel count %d", f.Channels)
	}
	return nil
}

// String returns a human-readable string representation of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate, f.Channels)
}
