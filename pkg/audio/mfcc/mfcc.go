// Package mfcc computes Mel-frequency cepstral coefficients.
//
// The pipeline is: centred STFT with a periodic Hann window, an
// area-normalised Slaney (or HTK) mel filterbank from pkg/audio/fbank, power
// to decibels with a top_db floor, and an
// orthonormal DCT-II over the mel axis. Only the first NumCoeffs
// coefficients are kept.
//
// Matrices are time-leading: Extract returns [frames][coeffs]. For one second
// of 16 kHz audio with the default config that is 32 x 40.
package mfcc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haivivi/wakeword/pkg/audio/fbank"
)

// Config controls MFCC extraction.
type Config struct {
	SampleRate int     `yaml:"sample_rate" json:"sample_rate"`
	NumCoeffs  int     `yaml:"num_coeffs" json:"num_coeffs"`
	FFTSize    int     `yaml:"fft_size" json:"fft_size"`
	HopSize    int     `yaml:"hop_size" json:"hop_size"`
	NumMels    int     `yaml:"num_mels" json:"num_mels"`
	LowFreq    float64 `yaml:"low_freq" json:"low_freq"`
	HighFreq   float64 `yaml:"high_freq" json:"high_freq"` // 0 means SampleRate/2
	HTK        bool    `yaml:"htk" json:"htk"`             // HTK mel scale instead of Slaney
	TopDB      float64 `yaml:"top_db" json:"top_db"`       // 0 disables the dynamic range floor
	Normalize  bool    `yaml:"normalize" json:"normalize"` // per-coefficient CMVN
}

// DefaultConfig returns 40 coefficients from 128 mel bands over 2048-point
// frames every 512 samples at 16 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		NumCoeffs:  40,
		FFTSize:    2048,
		HopSize:    512,
		NumMels:    128,
		TopDB:      80,
	}
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("mfcc: invalid sample rate %d", c.SampleRate)
	case c.FFTSize <= 0 || c.FFTSize&(c.FFTSize-1) != 0:
		return fmt.Errorf("mfcc: fft size %d is not a power of two", c.FFTSize)
	case c.HopSize <= 0:
		return fmt.Errorf("mfcc: invalid hop size %d", c.HopSize)
	case c.NumMels <= 0:
		return fmt.Errorf("mfcc: invalid mel count %d", c.NumMels)
	case c.NumCoeffs <= 0 || c.NumCoeffs > c.NumMels:
		return fmt.Errorf("mfcc: coefficient count %d must be in [1, %d]", c.NumCoeffs, c.NumMels)
	case c.highFreq() <= c.LowFreq:
		return fmt.Errorf("mfcc: frequency range [%g, %g] is empty", c.LowFreq, c.highFreq())
	}
	return nil
}

func (c Config) highFreq() float64 {
	if c.HighFreq <= 0 {
		return float64(c.SampleRate) / 2
	}
	return c.HighFreq
}

func (c Config) fbank() fbank.Config {
	return fbank.Config{
		SampleRate: c.SampleRate,
		FFTSize:    c.FFTSize,
		HopSize:    c.HopSize,
		NumMels:    c.NumMels,
		LowFreq:    c.LowFreq,
		HighFreq:   c.highFreq(),
		Scale:      c.scale(),
		AreaNorm:   true,
	}
}

func (c Config) scale() fbank.MelScale {
	if c.HTK {
		return fbank.HTK
	}
	return fbank.Slaney
}

// NumFrames returns the number of frames produced for n samples.
func (c Config) NumFrames(n int) int {
	return c.fbank().NumFrames(n)
}

// Fingerprint identifies every parameter that influences the output. Two
// configs with the same fingerprint produce identical matrices.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("mfcc2:sr=%d:n=%d:fft=%d:hop=%d:mels=%d/%s:f=%g-%g:topdb=%g:cmvn=%t",
		c.SampleRate, c.NumCoeffs, c.FFTSize, c.HopSize, c.NumMels, c.scale(),
		c.LowFreq, c.highFreq(), c.TopDB, c.Normalize)
}

// Extractor computes MFCC matrices. It is deterministic: the same samples
// always produce the same matrix. An Extractor is not safe for concurrent use.
type Extractor struct {
	cfg Config
	fb  *fbank.Extractor
	dct *mat.Dense // [NumMels x NumCoeffs]
}

// New creates an Extractor for cfg.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg: cfg,
		fb:  fbank.New(cfg.fbank()),
		dct: dctBasis(cfg.NumMels, cfg.NumCoeffs),
	}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract returns the [frames][NumCoeffs] MFCC matrix of wave.
func (e *Extractor) Extract(wave []float32) [][]float32 {
	power := e.fb.Power(wave)
	if len(power) == 0 {
		return nil
	}
	numFrames, numMels := len(power), e.cfg.NumMels

	db := make([]float64, 0, numFrames*numMels)
	peak := math.Inf(-1)
	for _, row := range power {
		for _, p := range row {
			v := powerToDB(p)
			if v > peak {
				peak = v
			}
			db = append(db, v)
		}
	}
	if e.cfg.TopDB > 0 {
		floor := peak - e.cfg.TopDB
		for i, v := range db {
			if v < floor {
				db[i] = floor
			}
		}
	}

	var cep mat.Dense
	cep.Mul(mat.NewDense(numFrames, numMels, db), e.dct)

	out := make([][]float32, numFrames)
	for t := range out {
		row := make([]float32, e.cfg.NumCoeffs)
		for k := range row {
			row[k] = float32(cep.At(t, k))
		}
		out[t] = row
	}
	if e.cfg.Normalize {
		fbank.CMVN(out)
	}
	return out
}

// powerToDB converts power to decibels relative to 1.0 with a 1e-10 floor.
func powerToDB(p float64) float64 {
	if p < 1e-10 {
		p = 1e-10
	}
	return 10 * math.Log10(p)
}
