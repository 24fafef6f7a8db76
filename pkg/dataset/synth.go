package dataset

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Synthetic configures generated Gaussian noise negatives.
type Synthetic struct {
	// PerPositive is the number of noise clips generated for every positive
	// example. 0 disables synthetic negatives.
	PerPositive int     `yaml:"per_positive" json:"per_positive"`
	Mean        float64 `yaml:"mean" json:"mean"`
	StdDev      float64 `yaml:"stddev" json:"stddev"`
	Seed        uint64  `yaml:"seed" json:"seed"`
}

// DefaultSynthetic returns one N(0, 0.01) noise clip per positive.
func DefaultSynthetic() Synthetic {
	return Synthetic{PerPositive: 1, Mean: 0, StdDev: 0.01, Seed: 1}
}

// Validate checks the synthetic settings.
func (s Synthetic) Validate() error {
	if s.PerPositive < 0 {
		return fmt.Errorf("dataset: synthetic per_positive must be >= 0, got %d", s.PerPositive)
	}
	if s.StdDev < 0 {
		return fmt.Errorf("dataset: synthetic stddev must be >= 0, got %g", s.StdDev)
	}
	return nil
}

// Generator produces noise waveforms from a seeded stream. Two generators
// with the same settings yield the same sequence of clips.
type Generator struct {
	dist distuv.Normal
}

// NewGenerator returns a Generator for s.
func (s Synthetic) NewGenerator() *Generator {
	return &Generator{dist: distuv.Normal{
		Mu:    s.Mean,
		Sigma: s.StdDev,
		Src:   rand.NewPCG(s.Seed, 0x5eed),
	}}
}

// Next returns a noise waveform of n samples.
func (g *Generator) Next(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(g.dist.Rand())
	}
	return out
}
