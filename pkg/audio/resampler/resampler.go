package resampler

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// minPadding is the least amount of silence, in seconds of source audio,
// placed before and after a clip. It must exceed the filter's reach so the
// first and last samples are fully filtered.
const minPadding = 0.1

// Resampler converts mono float32 waveforms from one sample rate to another.
type Resampler struct {
	srcRate int
	dstRate int
	pad     int // source samples of silence on each side
}

// New creates a Resampler from srcRate to dstRate.
func New(srcRate, dstRate int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	// Padding is a whole number of rate periods so it maps to an integer
	// number of output samples.
	unit := srcRate / gcd(srcRate, dstRate)
	want := int(math.Ceil(float64(srcRate) * minPadding))
	pad := unit * ((want + unit - 1) / unit)
	return &Resampler{srcRate: srcRate, dstRate: dstRate, pad: pad}, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// OutputLength returns the number of samples produced for n input samples.
func (r *Resampler) OutputLength(n int) int {
	return int(math.Round(float64(n) * float64(r.dstRate) / float64(r.srcRate)))
}

// Process resamples a complete clip. The output has exactly OutputLength
// samples and input sample i lands at output sample round(i*dst/src).
// Identical rates return a copy of the input.
func (r *Resampler) Process(samples []float32) ([]float32, error) {
	if r.srcRate == r.dstRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}
	if len(samples) == 0 {
		return []float32{}, nil
	}

	start, err := r.offset()
	if err != nil {
		return nil, err
	}

	input := make([]float64, r.pad+len(samples)+r.pad)
	for i, s := range samples {
		input[r.pad+i] = float64(s)
	}
	output, err := r.run(input)
	if err != nil {
		return nil, err
	}

	want := r.OutputLength(len(samples))
	out := make([]float32, want)
	for i := 0; i < want && start+i < len(output); i++ {
		out[i] = float32(max(-1, min(1, output[start+i])))
	}
	return out, nil
}

// run pushes input through a fresh resampler and drains it.
func (r *Resampler) run(input []float64) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(r.srcRate),
		OutputRate: float64(r.dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}
	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush: %w", err)
	}
	return append(output, tail...), nil
}

type ratePair struct{ src, dst int }

// offsets caches, per rate pair, the output index holding the first real
// input sample.
var offsets sync.Map

// offset measures where source index r.pad lands in the filtered output by
// resampling a unit impulse placed there. The filter stages buffer a full
// window before emitting anything, so the shift is not simply the nominal
// latency.
func (r *Resampler) offset() (int, error) {
	key := ratePair{r.srcRate, r.dstRate}
	if v, ok := offsets.Load(key); ok {
		return v.(int), nil
	}

	impulse := make([]float64, 2*r.pad+1)
	impulse[r.pad] = 1
	output, err := r.run(impulse)
	if err != nil {
		return 0, err
	}
	peak := 0
	for i, v := range output {
		if math.Abs(v) > math.Abs(output[peak]) {
			peak = i
		}
	}
	offsets.Store(key, peak)
	return peak, nil
}

// Resample is a convenience wrapper that converts samples from srcRate to
// dstRate with high quality.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	r, err := New(srcRate, dstRate)
	if err != nil {
		return nil, err
	}
	return r.Process(samples)
}
