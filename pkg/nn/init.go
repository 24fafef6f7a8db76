package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer draws initial weights from a seeded stream.
type Initializer struct {
	src rand.Source
}

// NewInitializer returns an Initializer seeded with seed.
func NewInitializer(seed uint64) *Initializer {
	return &Initializer{src: rand.NewPCG(seed, 0x6e6e)}
}

// GlorotUniform fills w from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)).
func (in *Initializer) GlorotUniform(w []float64, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	u := distuv.Uniform{Min: -limit, Max: limit, Src: in.src}
	for i := range w {
		w[i] = u.Rand()
	}
}

// Source returns the underlying random source, for layers such as Dropout
// that need randomness during training.
func (in *Initializer) Source() rand.Source {
	return in.src
}
