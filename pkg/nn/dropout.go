package nn

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Dropout zeroes a Rate fraction of its inputs during training and scales
// the survivors by 1/(1-Rate). It is the identity at inference time.
type Dropout struct {
	Rate float64

	name string
	keep distuv.Bernoulli
	mask []float64
}

func (d *Dropout) Name() string { return d.name }

func (d *Dropout) Build(name string, in Shape, init *Initializer) (Shape, error) {
	if d.Rate < 0 || d.Rate >= 1 {
		return nil, fmt.Errorf("nn: %s: rate %g must be in [0, 1)", name, d.Rate)
	}
	d.name = name
	d.keep = distuv.Bernoulli{P: 1 - d.Rate, Src: init.Source()}
	return append(Shape(nil), in...), nil
}

func (d *Dropout) Forward(x *Tensor, train bool) *Tensor {
	if !train || d.Rate == 0 {
		d.mask = nil
		return x
	}
	scale := 1 / (1 - d.Rate)
	y := &Tensor{Shape: append(Shape(nil), x.Shape...), Data: make([]float64, len(x.Data))}
	d.mask = make([]float64, len(x.Data))
	for i, v := range x.Data {
		if d.keep.Rand() == 1 {
			d.mask[i] = scale
			y.Data[i] = v * scale
		}
	}
	return y
}

func (d *Dropout) Backward(grad *Tensor) *Tensor {
	if d.mask == nil {
		return grad
	}
	dx := &Tensor{Shape: append(Shape(nil), grad.Shape...), Data: make([]float64, len(grad.Data))}
	for i, g := range grad.Data {
		dx.Data[i] = g * d.mask[i]
	}
	return dx
}

func (d *Dropout) Params() []*Param { return nil }

func (d *Dropout) Spec() LayerSpec {
	return LayerSpec{Type: TypeDropout, Name: d.name, Rate: d.Rate}
}
