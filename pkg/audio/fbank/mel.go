package fbank

import "math"

// MelScale selects the Hz to mel mapping.
type MelScale int

const (
	// HTK is 2595 * log10(1 + f/700).
	HTK MelScale = iota
	// Slaney is linear below 1 kHz and logarithmic above, as in the
	// Auditory Toolbox and librosa's default.
	Slaney
)

func (s MelScale) String() string {
	if s == Slaney {
		return "slaney"
	}
	return "htk"
}

// Slaney scale constants: 200/3 Hz per mel up to 1 kHz (15 mel), then 27
// mels per factor of 6.4.
const (
	slaneyStep     = 200.0 / 3
	slaneyBreakHz  = 1000.0
	slaneyBreakMel = slaneyBreakHz / slaneyStep
)

var slaneyLogStep = math.Log(6.4) / 27

// ToMel converts hz to mels.
func (s MelScale) ToMel(hz float64) float64 {
	if s != Slaney {
		return 2595 * math.Log10(1+hz/700)
	}
	if hz < slaneyBreakHz {
		return hz / slaneyStep
	}
	return slaneyBreakMel + math.Log(hz/slaneyBreakHz)/slaneyLogStep
}

// ToHz converts mels to hz.
func (s MelScale) ToHz(mel float64) float64 {
	if s != Slaney {
		return 700 * (math.Pow(10, mel/2595) - 1)
	}
	if mel < slaneyBreakMel {
		return mel * slaneyStep
	}
	return slaneyBreakHz * math.Exp(slaneyLogStep*(mel-slaneyBreakMel))
}

// edges returns numMels+2 band edge frequencies in Hz, evenly spaced on the
// mel axis between low and high.
func (s MelScale) edges(numMels int, low, high float64) []float64 {
	lo, hi := s.ToMel(low), s.ToMel(high)
	step := (hi - lo) / float64(numMels+1)
	out := make([]float64, numMels+2)
	for i := range out {
		out[i] = s.ToHz(lo + float64(i)*step)
	}
	return out
}

// melFilter is one triangular band, stored from its first non-zero bin.
type melFilter struct {
	start   int
	weights []float64
}

func (f melFilter) apply(power []float64) float64 {
	var sum float64
	for i, w := range f.weights {
		sum += w * power[f.start+i]
	}
	return sum
}

// filterBank builds cfg.NumMels triangles over the fftSize/2+1 spectrum
// bins. Weights are evaluated at each bin's exact frequency. With areaNorm
// every triangle is scaled by 2/(right-left) so bands carry equal energy
// regardless of their width.
func filterBank(cfg Config) []melFilter {
	halfFFT := cfg.FFTSize/2 + 1
	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	edges := cfg.Scale.edges(cfg.NumMels, cfg.LowFreq, cfg.HighFreq)

	bank := make([]melFilter, cfg.NumMels)
	for m := range bank {
		left, centre, right := edges[m], edges[m+1], edges[m+2]
		gain := 1.0
		if cfg.AreaNorm {
			gain = 2 / (right - left)
		}
		first := max(0, int(math.Ceil(left/binHz)))
		var weights []float64
		for k := first; k < halfFFT; k++ {
			f := float64(k) * binHz
			if f >= right {
				break
			}
			w := math.Min((f-left)/(centre-left), (right-f)/(right-centre))
			weights = append(weights, gain*math.Max(0, w))
		}
		bank[m] = melFilter{start: first, weights: weights}
	}
	return bank
}

// hannWindow is the periodic Hann window used for STFT analysis.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
