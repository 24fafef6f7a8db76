package nn

import (
	"errors"
	"fmt"
)

// Sequential is a linear stack of layers.
type Sequential struct {
	Name   string
	Layers []Layer

	names         []string // restored layer names
	input, output Shape
	built         bool
}

// NewSequential returns an unbuilt network.
func NewSequential(name string, layers ...Layer) *Sequential {
	if name == "" {
		name = "sequential"
	}
	return &Sequential{Name: name, Layers: layers}
}

// FromSpecs reconstructs an unbuilt network from layer specs.
func FromSpecs(name string, specs []LayerSpec) (*Sequential, error) {
	layers := make([]Layer, len(specs))
	for i, spec := range specs {
		l, err := NewLayer(spec)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers[i] = l
	}
	s := NewSequential(name, layers...)
	s.names = make([]string, len(specs))
	for i, spec := range specs {
		s.names[i] = spec.Name
	}
	return s, nil
}

// Build allocates and initializes all parameters for a per-sample input
// shape. Layers are named Keras-style ("conv2d", "conv2d_1", ...) unless
// restored from specs.
func (s *Sequential) Build(input Shape, seed uint64) error {
	if len(s.Layers) == 0 {
		return errors.New("nn: sequential has no layers")
	}
	init := NewInitializer(seed)
	used := make(map[string]int)
	shape := append(Shape(nil), input...)
	for i, l := range s.Layers {
		name := ""
		if i < len(s.names) {
			name = s.names[i]
		}
		if name == "" {
			base := defaultName(l.Spec().Type)
			name = base
			if k := used[base]; k > 0 {
				name = fmt.Sprintf("%s_%d", base, k)
			}
			used[base]++
		}
		out, err := l.Build(name, shape, init)
		if err != nil {
			return err
		}
		shape = out
	}
	s.input = append(Shape(nil), input...)
	s.output = shape
	s.built = true
	return nil
}

// Built reports whether Build has succeeded.
func (s *Sequential) Built() bool { return s.built }

// InputShape returns the per-sample input shape.
func (s *Sequential) InputShape() Shape { return s.input }

// OutputShape returns the per-sample output shape.
func (s *Sequential) OutputShape() Shape { return s.output }

// Forward runs x through every layer. Set train to enable dropout and cache
// activations for Backward.
func (s *Sequential) Forward(x *Tensor, train bool) *Tensor {
	for _, l := range s.Layers {
		x = l.Forward(x, train)
	}
	return x
}

// Backward propagates dLoss/dOutput through the network, accumulating
// parameter gradients.
func (s *Sequential) Backward(grad *Tensor) {
	for i := len(s.Layers) - 1; i >= 0; i-- {
		grad = s.Layers[i].Backward(grad)
	}
}

// BackwardLogits is Backward for a gradient taken with respect to the input
// of the final sigmoid, as SigmoidCrossEntropy returns. The last layer must
// be a Dense with sigmoid activation; its activation derivative is skipped.
func (s *Sequential) BackwardLogits(grad *Tensor) error {
	last := len(s.Layers) - 1
	if last < 0 {
		return errors.New("nn: sequential has no layers")
	}
	d, ok := s.Layers[last].(*Dense)
	if !ok || d.Activation != Sigmoid {
		return fmt.Errorf("nn: %s: logit gradients need a sigmoid Dense output", s.Layers[last].Name())
	}
	grad = d.backwardLinear(grad)
	for i := last - 1; i >= 0; i-- {
		grad = s.Layers[i].Backward(grad)
	}
	return nil
}

// Params returns all trainable parameters in layer order, kernel before
// bias.
func (s *Sequential) Params() []*Param {
	var ps []*Param
	for _, l := range s.Layers {
		ps = append(ps, l.Params()...)
	}
	return ps
}

// ZeroGrad clears all parameter gradients.
func (s *Sequential) ZeroGrad() {
	for _, p := range s.Params() {
		p.ZeroGrad()
	}
}

// CountParams returns the total number of trainable values.
func (s *Sequential) CountParams() int {
	n := 0
	for _, p := range s.Params() {
		n += len(p.Value)
	}
	return n
}

// Specs returns the layer specs in order.
func (s *Sequential) Specs() []LayerSpec {
	specs := make([]LayerSpec, len(s.Layers))
	for i, l := range s.Layers {
		specs[i] = l.Spec()
	}
	return specs
}

// Predict returns the first output unit for each sample, in inference mode.
func (s *Sequential) Predict(x *Tensor) []float64 {
	y := s.Forward(x, false)
	units := s.output.Size()
	out := make([]float64, y.Batch())
	for i := range out {
		out[i] = y.Data[i*units]
	}
	return out
}
