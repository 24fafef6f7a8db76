// Package mp3 decodes MPEG-1/2 Layer III audio.
//
// Decoding uses github.com/hajimehoshi/go-mp3, a pure Go decoder that always
// produces 16-bit little-endian stereo PCM. The output is downmixed to mono.
package mp3

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/haivivi/wakeword/pkg/audio/pcm"
)

// Decode reads an MP3 stream and returns its samples as a mono clip at the
// stream's native sample rate.
func Decode(r io.Reader) (*pcm.Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: open decoder: %w", err)
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: decode: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("mp3: no audio decoded")
	}
	return &pcm.Clip{
		SampleRate: dec.SampleRate(),
		Samples:    pcm.Downmix(pcm.Int16ToFloat32(data), 2),
	}, nil
}

// DecodeFile opens and decodes the MP3 file at path.
func DecodeFile(path string) (*pcm.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clip, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}
