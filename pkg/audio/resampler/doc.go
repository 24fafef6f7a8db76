// Package resampler converts mono waveforms between sample rates.
//
// It wraps github.com/tphakala/go-audio-resampling, a pure Go polyphase
// resampler, and guarantees an output length of exactly
// round(len(in) * dstRate / srcRate) samples so callers can rely on
// duration-preserving conversion.
//
// Example usage:
//
//	wave, err := resampler.Resample(clip.Samples, clip.SampleRate, 16000)
//	if err != nil {
//	    return err
//	}
package resampler
