package pcm

// Fit returns a waveform of exactly n samples. Short input is right-padded
// with zeros; long input is truncated to its first n samples. The input
// slice is never modified.
func Fit(samples []float32, n int) []float32 {
	if n < 0 {
		n = 0
	}
	out := make([]float32, n)
	copy(out, samples)
	return out
}

// Downmix averages interleaved multi-channel samples into a mono waveform.
// A trailing partial frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	scale := 1 / float32(channels)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum * scale
	}
	return out
}

// Int16ToFloat32 converts little-endian 16-bit PCM bytes to samples in
// [-1, 1). A trailing odd byte is ignored.
func Int16ToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(b[i*2]) | int16(b[i*2+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToInt16 converts samples in [-1, 1] to little-endian 16-bit PCM
// bytes, clipping anything outside that range.
func Float32ToInt16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		var v int16
		switch {
		case s >= 1:
			v = 32767
		case s <= -1:
			v = -32768
		default:
			v = int16(s * 32767)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Clip is a decoded mono waveform at its native sample rate.
type Clip struct {
	SampleRate int
	Samples    []float32
}

// Format returns the mono format of the clip.
func (c *Clip) Format() Format {
	return Format{SampleRate: c.SampleRate, Channels: 1}
}
