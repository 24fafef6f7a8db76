package wav

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	in := make([]float32, 8000)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	if err := WriteFile(path, in, 16000); err != nil {
		t.Fatal(err)
	}

	clip, err := DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", clip.SampleRate)
	}
	if len(clip.Samples) != len(in) {
		t.Fatalf("samples = %d, want %d", len(clip.Samples), len(in))
	}
	for i := range in {
		if math.Abs(float64(clip.Samples[i]-in[i])) > 1e-3 {
			t.Fatalf("sample %d = %f, want %f", i, clip.Samples[i], in[i])
		}
	}
}

func TestDecodeKeepsRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "44k.wav")
	if err := WriteFile(path, make([]float32, 4410), 44100); err != nil {
		t.Fatal(err)
	}
	clip, err := DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", clip.SampleRate)
	}
	if len(clip.Samples) != 4410 {
		t.Errorf("samples = %d, want 4410", len(clip.Samples))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	data := []byte("this is definitely not a RIFF file")
	if _, err := Decode(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
