// Package audio groups the audio front end of the wake-word trainer.
//
// Sub-packages:
//
//   - pcm: waveform helpers (fit, downmix, 16-bit conversion)
//   - codec/wav, codec/mp3: file decoders
//   - resampler: sample rate conversion
//   - loader: decode, resample and fit a file to a fixed-length waveform
//   - fbank: framing, windowing and mel filterbank energies
//   - mfcc: mel-frequency cepstral coefficients
//
// Example usage:
//
//	ld, _ := loader.New(loader.DefaultConfig())
//	wave, _ := ld.Load("friday-wav/001.wav")
//
//	ex, _ := mfcc.New(mfcc.DefaultConfig())
//	features := ex.Extract(wave) // [32][40]
package audio
