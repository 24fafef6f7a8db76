package resampler

import (
	"math"
	"testing"
)

func sine(freq float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestNewRejectsInvalidRates(t *testing.T) {
	if _, err := New(0, 16000); err == nil {
		t.Error("expected error for zero source rate")
	}
	if _, err := New(16000, -1); err == nil {
		t.Error("expected error for negative destination rate")
	}
}

func TestOutputLength(t *testing.T) {
	tests := []struct {
		src, dst, n, want int
	}{
		{48000, 16000, 48000, 16000},
		{44100, 16000, 44100, 16000},
		{8000, 16000, 8000, 16000},
		{22050, 16000, 1000, 726},
	}
	for _, tt := range tests {
		r, err := New(tt.src, tt.dst)
		if err != nil {
			t.Fatal(err)
		}
		if got := r.OutputLength(tt.n); got != tt.want {
			t.Errorf("OutputLength(%d -> %d, %d) = %d, want %d", tt.src, tt.dst, tt.n, got, tt.want)
		}
	}
}

func TestResampleSameRateCopies(t *testing.T) {
	in := sine(440, 16000, 1600)
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	out[0] = 42
	if in[0] == 42 {
		t.Fatal("same-rate resample aliases its input")
	}
}

func TestResampleExactLength(t *testing.T) {
	for _, src := range []int{8000, 22050, 44100, 48000} {
		in := sine(440, src, src/2)
		out, err := Resample(in, src, 16000)
		if err != nil {
			t.Fatalf("%d Hz: %v", src, err)
		}
		if want := int(math.Round(float64(len(in)) * 16000 / float64(src))); len(out) != want {
			t.Errorf("%d Hz: len = %d, want %d", src, len(out), want)
		}
		for i, s := range out {
			if s > 1 || s < -1 || math.IsNaN(float64(s)) {
				t.Fatalf("%d Hz: sample %d out of range: %f", src, i, s)
			}
		}
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := Resample(nil, 48000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}

func rms(s []float32) float64 {
	var sum float64
	for _, v := range s {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(s)))
}

func zeroCrossings(s []float32) int {
	n := 0
	for i := 1; i < len(s); i++ {
		if (s[i-1] < 0) != (s[i] < 0) {
			n++
		}
	}
	return n
}

func TestResampleKeepsSine(t *testing.T) {
	for _, src := range []int{8000, 22050, 44100, 48000} {
		in := sine(440, src, src)
		out, err := Resample(in, src, 16000)
		if err != nil {
			t.Fatalf("%d Hz: %v", src, err)
		}
		// Both ends are real signal, so energy holds across the whole clip.
		want := 0.5 / math.Sqrt2
		if got := rms(out); math.Abs(got-want) > 0.03*want {
			t.Errorf("%d Hz: rms = %.4f, want %.4f", src, got, want)
		}
		if got := rms(out[:800]); math.Abs(got-want) > 0.05*want {
			t.Errorf("%d Hz: leading 50ms rms = %.4f, want %.4f", src, got, want)
		}
		if got := rms(out[len(out)-800:]); math.Abs(got-want) > 0.05*want {
			t.Errorf("%d Hz: trailing 50ms rms = %.4f, want %.4f", src, got, want)
		}
		// 440 Hz for one second crosses zero 880 times.
		if got := zeroCrossings(out); got < 876 || got > 884 {
			t.Errorf("%d Hz: zero crossings = %d, want ~880", src, got)
		}
	}
}

func TestResampleAlignsImpulse(t *testing.T) {
	for _, src := range []int{8000, 22050, 44100, 48000} {
		for _, pos := range []int{src / 10, src / 2, src - src/10} {
			in := make([]float32, src)
			in[pos] = 0.9
			out, err := Resample(in, src, 16000)
			if err != nil {
				t.Fatal(err)
			}
			peak := 0
			for i, v := range out {
				if math.Abs(float64(v)) > math.Abs(float64(out[peak])) {
					peak = i
				}
			}
			want := int(math.Round(float64(pos) * 16000 / float64(src)))
			if d := peak - want; d < -2 || d > 2 {
				t.Errorf("%d Hz impulse at %d: peak at %d, want %d", src, pos, peak, want)
			}
		}
	}
}
