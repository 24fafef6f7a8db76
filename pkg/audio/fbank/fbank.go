// Package fbank computes mel power spectrograms, the spectral front-end of
// the MFCC extractor.
//
// Frames are centred: the signal is zero-padded by FFTSize/2 on both sides,
// windowed with a periodic Hann window of FFTSize samples and advanced by
// HopSize. The output is a [T][NumMels] matrix with time on the leading axis.
//
// Defaults for the wake word front-end:
//
//	SampleRate: 16000
//	FFTSize:    2048
//	HopSize:    512
//	NumMels:    128 between 0 and 8000 Hz
//	Scale:      Slaney, with area-normalised bands
package fbank

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Config controls mel filterbank extraction parameters.
type Config struct {
	SampleRate int     // audio sample rate in Hz
	FFTSize    int     // window and FFT length, a power of two
	HopSize    int     // hop length in samples
	NumMels    int     // number of mel bands
	LowFreq    float64 // lower edge of the first band
	HighFreq   float64 // upper edge of the last band
	Scale      MelScale
	AreaNorm   bool // scale each band by 2/width
}

// DefaultConfig returns the wake word front-end config.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		FFTSize:    2048,
		HopSize:    512,
		NumMels:    128,
		LowFreq:    0,
		HighFreq:   8000,
		Scale:      Slaney,
		AreaNorm:   true,
	}
}

// NumFrames returns the number of frames produced for n input samples:
// 1 + n/HopSize.
func (c Config) NumFrames(n int) int {
	if n < 0 {
		return 0
	}
	return n/c.HopSize + 1
}

// Extractor computes mel power spectrograms. It reuses scratch buffers, so
// an Extractor is not safe for concurrent use.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank []melFilter
	fft     *fourier.FFT

	frame  []float64
	coeffs []complex128
	power  []float64
}

// New creates an Extractor for cfg.
func New(cfg Config) *Extractor {
	half := cfg.FFTSize/2 + 1
	return &Extractor{
		cfg:     cfg,
		window:  hannWindow(cfg.FFTSize),
		melBank: filterBank(cfg),
		fft:     fourier.NewFFT(cfg.FFTSize),
		frame:   make([]float64, cfg.FFTSize),
		coeffs:  make([]complex128, half),
		power:   make([]float64, half),
	}
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Power returns the [NumFrames(len(wave))][NumMels] mel power spectrogram
// of wave, whose samples are expected in [-1, 1].
func (e *Extractor) Power(wave []float32) [][]float64 {
	cfg := e.cfg
	pad := cfg.FFTSize / 2
	signal := make([]float64, len(wave)+2*pad)
	for i, s := range wave {
		signal[pad+i] = float64(s)
	}

	out := make([][]float64, cfg.NumFrames(len(wave)))
	for t := range out {
		seg := signal[t*cfg.HopSize : t*cfg.HopSize+cfg.FFTSize]
		for i, s := range seg {
			e.frame[i] = s * e.window[i]
		}
		e.coeffs = e.fft.Coefficients(e.coeffs, e.frame)
		for k, c := range e.coeffs {
			e.power[k] = real(c)*real(c) + imag(c)*imag(c)
		}

		row := make([]float64, cfg.NumMels)
		for m, f := range e.melBank {
			row[m] = f.apply(e.power)
		}
		out[t] = row
	}
	return out
}

// CMVN normalises every column of features to zero mean and unit variance
// in place. Constant columns are only centred.
func CMVN(features [][]float32) {
	if len(features) == 0 {
		return
	}
	n := float64(len(features))
	for c := range features[0] {
		var sum, sq float64
		for _, row := range features {
			sum += float64(row[c])
		}
		mean := sum / n
		for _, row := range features {
			d := float64(row[c]) - mean
			sq += d * d
		}
		std := math.Max(math.Sqrt(sq/n), 1e-10)
		for _, row := range features {
			row[c] = float32((float64(row[c]) - mean) / std)
		}
	}
}
