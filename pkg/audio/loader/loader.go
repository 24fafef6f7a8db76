// Package loader turns audio files into fixed-length mono waveforms.
//
// A file is decoded by extension, downmixed to mono, resampled to the target
// rate and then padded with zeros or truncated so that every waveform holds
// exactly SampleRate * Duration samples.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/haivivi/wakeword/pkg/audio/codec/mp3"
	"github.com/haivivi/wakeword/pkg/audio/codec/wav"
	"github.com/haivivi/wakeword/pkg/audio/pcm"
	"github.com/haivivi/wakeword/pkg/audio/resampler"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("loader: unsupported audio format")

// Config controls waveform normalization.
type Config struct {
	SampleRate int           // target sample rate in Hz (default 16000)
	Duration   time.Duration // target clip length (default 1s)
}

// DefaultConfig returns 1 second of 16 kHz audio.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Duration:   time.Second,
	}
}

// TargetLength returns the number of samples in every loaded waveform.
func (c Config) TargetLength() int {
	return c.format().SamplesInDuration(c.Duration)
}

func (c Config) format() pcm.Format {
	return pcm.Format{SampleRate: c.SampleRate, Channels: 1}
}

// Validate checks that the config describes a non-empty waveform.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("loader: invalid sample rate %d", c.SampleRate)
	}
	if c.TargetLength() <= 0 {
		return fmt.Errorf("loader: duration %v yields no samples", c.Duration)
	}
	return nil
}

// Loader decodes and normalizes audio files.
type Loader struct {
	cfg Config
}

// New creates a Loader with the given config.
func New(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loader{cfg: cfg}, nil
}

// Config returns the loader configuration.
func (l *Loader) Config() Config {
	return l.cfg
}

// Supported reports whether path has an extension the loader can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3":
		return true
	}
	return false
}

// Load reads the file at path and returns a waveform of exactly
// TargetLength samples.
func (l *Loader) Load(path string) ([]float32, error) {
	clip, err := DecodeClipFile(path)
	if err != nil {
		return nil, err
	}
	return l.Normalize(clip)
}

// Decode normalizes an in-memory file whose type is given by its extension
// (".wav" or ".mp3").
func (l *Loader) Decode(r io.ReadSeeker, size int64, ext string) ([]float32, error) {
	clip, err := DecodeClip(r, size, ext)
	if err != nil {
		return nil, err
	}
	return l.Normalize(clip)
}

// Normalize resamples clip to the target rate and fits it to TargetLength.
func (l *Loader) Normalize(clip *pcm.Clip) ([]float32, error) {
	samples := clip.Samples
	if clip.SampleRate != l.cfg.SampleRate {
		var err error
		samples, err = resampler.Resample(samples, clip.SampleRate, l.cfg.SampleRate)
		if err != nil {
			return nil, err
		}
	}
	return pcm.Fit(samples, l.cfg.TargetLength()), nil
}

// DecodeClip decodes a file to a mono clip at its native sample rate.
func DecodeClip(r io.ReadSeeker, size int64, ext string) (*pcm.Clip, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wav.Decode(r, size)
	case ".mp3":
		return mp3.Decode(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// DecodeClipFile decodes the file at path to a mono clip at its native rate.
func DecodeClipFile(path string) (*pcm.Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.DecodeFile(path)
	case ".mp3":
		return mp3.DecodeFile(path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}
