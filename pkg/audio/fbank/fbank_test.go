package fbank

import (
	"math"
	"testing"
)

func sine(freq float64, n int) []float32 {
	pcm := make([]float32, n)
	for i := range pcm {
		pcm[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/16000))
	}
	return pcm
}

func TestHannWindow(t *testing.T) {
	w := hannWindow(2048)
	if w[0] != 0 {
		t.Errorf("w[0] = %f, want 0", w[0])
	}
	if math.Abs(w[1024]-1.0) > 1e-9 {
		t.Errorf("w[1024] = %f, want 1", w[1024])
	}
	// Periodic: symmetric around n/2, so w[1] == w[n-1].
	if math.Abs(w[1]-w[2047]) > 1e-12 {
		t.Errorf("w[1] = %g, w[2047] = %g, want equal", w[1], w[2047])
	}
}

func TestMelScales(t *testing.T) {
	tests := []struct {
		scale MelScale
		hz    float64
		mel   float64
	}{
		{HTK, 1000, 1000.0},
		{HTK, 0, 0},
		{Slaney, 0, 0},
		{Slaney, 500, 7.5},
		{Slaney, 1000, 15},
		{Slaney, 6400, 42},
	}
	for _, tt := range tests {
		mel := tt.scale.ToMel(tt.hz)
		if math.Abs(mel-tt.mel) > 0.5 {
			t.Errorf("%s ToMel(%g) = %f, want ~%g", tt.scale, tt.hz, mel, tt.mel)
		}
		if hz := tt.scale.ToHz(mel); math.Abs(hz-tt.hz) > 1e-6 {
			t.Errorf("%s ToHz(ToMel(%g)) = %f", tt.scale, tt.hz, hz)
		}
	}
}

func TestFilterBank(t *testing.T) {
	htk := DefaultConfig()
	htk.Scale = HTK
	htk.AreaNorm = false
	for _, cfg := range []Config{DefaultConfig(), htk} {
		bank := filterBank(cfg)
		if len(bank) != cfg.NumMels {
			t.Fatalf("%s: expected %d filters, got %d", cfg.Scale, cfg.NumMels, len(bank))
		}
		halfFFT := cfg.FFTSize/2 + 1
		for i, f := range bank {
			if f.start+len(f.weights) > halfFFT {
				t.Fatalf("%s filter %d: spans past bin %d", cfg.Scale, i, halfFFT)
			}
			peak := 0.0
			for _, w := range f.weights {
				if w < 0 {
					t.Fatalf("%s filter %d: negative weight %f", cfg.Scale, i, w)
				}
				peak = math.Max(peak, w)
			}
			if peak == 0 {
				t.Errorf("%s filter %d is all zeros", cfg.Scale, i)
			}
		}
	}
}

func TestFilterBankAreaNorm(t *testing.T) {
	cfg := DefaultConfig()
	edges := cfg.Scale.edges(cfg.NumMels, cfg.LowFreq, cfg.HighFreq)
	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	for m, f := range filterBank(cfg) {
		// A triangle of height 2/width has unit area.
		var area float64
		for _, w := range f.weights {
			area += w * binHz
		}
		width := edges[m+2] - edges[m]
		// Sampling error shrinks as the band spans more bins.
		if tol := 2 * binHz / width; math.Abs(area-1) > tol {
			t.Errorf("filter %d area = %f, want ~1 (tol %f)", m, area, tol)
		}
	}
}

func TestNumFrames(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct{ n, want int }{
		{16000, 32},
		{511, 1},
		{512, 2},
		{0, 1},
	}
	for _, tt := range tests {
		if got := cfg.NumFrames(tt.n); got != tt.want {
			t.Errorf("NumFrames(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPowerShape(t *testing.T) {
	cfg := DefaultConfig()
	ext := New(cfg)
	for _, n := range []int{16000, 300} {
		power := ext.Power(sine(440, n))
		if want := cfg.NumFrames(n); len(power) != want {
			t.Fatalf("n=%d: %d frames, want %d", n, len(power), want)
		}
		for i, row := range power {
			if len(row) != cfg.NumMels {
				t.Fatalf("n=%d frame %d: %d bands, want %d", n, i, len(row), cfg.NumMels)
			}
			for j, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
					t.Fatalf("n=%d power[%d][%d] = %g", n, i, j, v)
				}
			}
		}
	}
}

func TestPowerSilenceIsZero(t *testing.T) {
	for _, row := range New(DefaultConfig()).Power(make([]float32, 16000)) {
		for _, v := range row {
			if v != 0 {
				t.Fatalf("silence power = %g, want 0", v)
			}
		}
	}
}

func TestPowerPeaksNearTone(t *testing.T) {
	cfg := DefaultConfig()
	ext := New(cfg)
	power := ext.Power(sine(1000, 16000))

	// Pick a frame fully inside the signal and find its loudest mel band.
	row := power[len(power)/2]
	best := 0
	for m, v := range row {
		if v < 0 {
			t.Fatalf("negative power %f in band %d", v, m)
		}
		if v > row[best] {
			best = m
		}
	}
	// Band centre frequency of the loudest band should be near 1 kHz.
	centre := cfg.Scale.edges(cfg.NumMels, cfg.LowFreq, cfg.HighFreq)[best+1]
	if math.Abs(centre-1000) > 100 {
		t.Errorf("loudest band centre = %.1f Hz, want ~1000 Hz", centre)
	}
}

func TestCMVN(t *testing.T) {
	features := make([][]float32, 50)
	for i := range features {
		features[i] = []float32{float32(i), float32(i * i), float32(math.Sin(float64(i)))}
	}
	CMVN(features)

	// After CMVN, each dimension should have mean ~0 and std ~1
	numMels := len(features[0])
	for m := 0; m < numMels; m++ {
		sum := float64(0)
		for _, f := range features {
			sum += float64(f[m])
		}
		mean := sum / float64(len(features))
		if math.Abs(mean) > 0.01 {
			t.Errorf("mel[%d] mean = %f, want ~0", m, mean)
		}

		varSum := float64(0)
		for _, f := range features {
			d := float64(f[m]) - mean
			varSum += d * d
		}
		std := math.Sqrt(varSum / float64(len(features)))
		if math.Abs(std-1.0) > 0.01 {
			t.Errorf("mel[%d] std = %f, want ~1", m, std)
		}
	}
}

func TestCMVNConstantColumn(t *testing.T) {
	features := [][]float32{{3, 1}, {3, 2}, {3, 3}}
	CMVN(features)
	for i, row := range features {
		if row[0] != 0 {
			t.Errorf("row %d constant column = %f, want 0", i, row[0])
		}
	}
}

func BenchmarkPower(b *testing.B) {
	ext := New(DefaultConfig())
	pcm := sine(440, 16000)

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		_ = ext.Power(pcm)
	}
}
