// Package wav decodes and encodes RIFF/WAVE files with linear PCM samples.
//
// Decoding accepts any channel count and 8, 16, 24 or 32-bit samples and
// returns a mono pcm.Clip. Encoding always writes 16-bit mono.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cryptix/wav"

	"github.com/haivivi/wakeword/pkg/audio/pcm"
)

// ErrEmpty is returned when a file decodes to zero samples.
var ErrEmpty = errors.New("wav: no samples")

// Decode reads a WAV stream of the given total size and returns its samples
// downmixed to mono.
func Decode(r io.ReadSeeker, size int64) (*pcm.Clip, error) {
	rd, err := wav.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	info := rd.GetFile()
	bits := int(info.SignificantBits)
	channels := int(info.Channels)
	if info.SampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("wav: invalid format (rate=%d, channels=%d)", info.SampleRate, channels)
	}
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return nil, fmt.Errorf("wav: unsupported bit depth %d", bits)
	}

	scale := 1 / float32(int64(1)<<(bits-1))
	var interleaved []float32
	for {
		s, err := rd.ReadSample()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("wav: read sample: %w", err)
		}
		if bits == 8 {
			// 8-bit WAV is unsigned with a 128 midpoint.
			s -= 128
		} else if bits < 32 && s >= 1<<(bits-1) {
			// Raw little-endian samples come back without sign extension.
			s -= 1 << bits
		}
		interleaved = append(interleaved, float32(s)*scale)
	}
	if len(interleaved) == 0 {
		return nil, ErrEmpty
	}

	return &pcm.Clip{
		SampleRate: int(info.SampleRate),
		Samples:    pcm.Downmix(interleaved, channels),
	}, nil
}

// DecodeFile opens and decodes the WAV file at path.
func DecodeFile(path string) (*pcm.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	clip, err := Decode(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// WriteFile writes samples as a 16-bit mono WAV file at the given sample
// rate, creating or truncating path.
func WriteFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := wav.File{
		Channels:        1,
		SampleRate:      uint32(sampleRate),
		SignificantBits: 16,
	}
	w, err := meta.NewWriter(f)
	if err != nil {
		return fmt.Errorf("wav: create writer: %w", err)
	}

	data := pcm.Float32ToInt16(samples)
	for i := 0; i+1 < len(data); i += 2 {
		if err := w.WriteSample(data[i : i+2]); err != nil {
			w.Close()
			return fmt.Errorf("wav: write sample: %w", err)
		}
	}
	return w.Close()
}
