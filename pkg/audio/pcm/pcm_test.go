package pcm

import (
	"math"
	"testing"
	"time"
)

func TestSamplesInDuration(t *testing.T) {
	tests := []struct {
		format Format
		d      time.Duration
		want   int
	}{
		{L16Mono16K, time.Second, 16000},
		{L16Mono16K, 500 * time.Millisecond, 8000},
		{Format{SampleRate: 44100, Channels: 2}, time.Second, 44100},
		{Format{SampleRate: 22050, Channels: 1}, 20 * time.Millisecond, 441},
	}
	for _, tt := range tests {
		if got := tt.format.SamplesInDuration(tt.d); got != tt.want {
			t.Errorf("%s SamplesInDuration(%v) = %d, want %d", tt.format, tt.d, got, tt.want)
		}
	}
}

func TestBytesAndDuration(t *testing.T) {
	f := L16Mono16K
	if got := f.Samples(32000); got != 16000 {
		t.Errorf("Samples(32000) = %d, want 16000", got)
	}
	if got := f.Duration(8000); got != 500*time.Millisecond {
		t.Errorf("Duration(8000) = %v, want 500ms", got)
	}
}

func TestFormatValidate(t *testing.T) {
	if err := L16Mono16K.Validate(); err != nil {
		t.Fatalf("valid format rejected: %v", err)
	}
	if err := (Format{SampleRate: 0, Channels: 1}).Validate(); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if err := (Format{SampleRate: 16000}).Validate(); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestFit(t *testing.T) {
	const n = 16000
	for _, size := range []int{0, 1, 8000, n - 1, n, n + 1, 3 * n} {
		in := make([]float32, size)
		for i := range in {
			in[i] = 0.5
		}
		out := Fit(in, n)
		if len(out) != n {
			t.Fatalf("Fit(len=%d) length = %d, want %d", size, len(out), n)
		}
		for i := 0; i < n; i++ {
			want := float32(0)
			if i < size {
				want = 0.5
			}
			if out[i] != want {
				t.Fatalf("Fit(len=%d)[%d] = %f, want %f", size, i, out[i], want)
			}
		}
	}
}

func TestFitKeepsPrefix(t *testing.T) {
	in := []float32{1, 2, 3, 4, 5}
	out := Fit(in, 3)
	if len(out) != 3 || out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("Fit truncation = %v, want [1 2 3]", out)
	}
	out[0] = 9
	if in[0] != 1 {
		t.Fatal("Fit modified its input")
	}
}

func TestDownmix(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1, 0.25}
	mono := Downmix(stereo, 2)
	want := []float32{0.5, 0.5, 0}
	if len(mono) != len(want) {
		t.Fatalf("len = %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if mono[i] != want[i] {
			t.Errorf("mono[%d] = %f, want %f", i, mono[i], want[i])
		}
	}

	same := Downmix([]float32{0.1, 0.2}, 1)
	if len(same) != 2 || same[1] != 0.2 {
		t.Errorf("mono passthrough = %v", same)
	}
}

func TestInt16RoundTrip(t *testing.T) {
	in := make([]float32, 320)
	for i := range in {
		in[i] = float32(0.8 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	out := Int16ToFloat32(Float32ToInt16(in))
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1e-3 {
			t.Fatalf("sample %d: got %f, want %f", i, out[i], in[i])
		}
	}
}

func TestFloat32ToInt16Clips(t *testing.T) {
	b := Float32ToInt16([]float32{2, -2})
	hi := int16(b[0]) | int16(b[1])<<8
	lo := int16(b[2]) | int16(b[3])<<8
	if hi != 32767 || lo != -32768 {
		t.Fatalf("clipped = %d, %d", hi, lo)
	}
}

func TestPeak(t *testing.T) {
	if p := Peak([]float32{0.1, -0.7, 0.3}); p != 0.7 {
		t.Fatalf("Peak = %f, want 0.7", p)
	}
	if p := Peak(nil); p != 0 {
		t.Fatalf("Peak(nil) = %f", p)
	}
}
