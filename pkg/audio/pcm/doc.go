// Package pcm provides types and helpers for working with PCM waveforms.
//
// Waveforms are handled as mono []float32 slices normalized to [-1, 1].
// The Format type carries the sample rate and channel count and converts
// between durations, sample counts and 16-bit byte lengths.
//
// Example usage:
//
//	// Number of samples in one second of 16 kHz audio
//	n := pcm.L16Mono16K.SamplesInDuration(time.Second) // 16000
//
//	// Pad or truncate a decoded clip to exactly n samples
//	wave := pcm.Fit(clip, n)
package pcm
