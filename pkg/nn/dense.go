package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer y = act(x W + b).
type Dense struct {
	Units      int
	Activation Activation

	name         string
	inFeatures   int
	kernel, bias *Param
	x, y         *Tensor
}

func (d *Dense) Name() string { return d.name }

func (d *Dense) Build(name string, in Shape, init *Initializer) (Shape, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("nn: %s: input must be flat, got %v", name, in)
	}
	if d.Units <= 0 {
		return nil, fmt.Errorf("nn: %s: invalid units %d", name, d.Units)
	}
	if d.Activation == "" {
		d.Activation = Linear
	}
	if err := d.Activation.validate(); err != nil {
		return nil, err
	}
	d.name = name
	d.inFeatures = in[0]
	d.kernel = newParam(name+"/kernel", in[0], d.Units)
	d.bias = newParam(name+"/bias", d.Units)
	init.GlorotUniform(d.kernel.Value, in[0], d.Units)
	return Shape{d.Units}, nil
}

func (d *Dense) Forward(x *Tensor, train bool) *Tensor {
	n := x.Batch()
	y := NewTensor(n, d.Units)
	out := mat.NewDense(n, d.Units, y.Data)
	out.Mul(mat.NewDense(n, d.inFeatures, x.Data), mat.NewDense(d.inFeatures, d.Units, d.kernel.Value))
	for i := range y.Data {
		y.Data[i] += d.bias.Value[i%d.Units]
	}
	d.Activation.apply(y.Data)
	if train {
		d.x, d.y = x, y
	}
	return y
}

func (d *Dense) Backward(grad *Tensor) *Tensor {
	d.Activation.backward(d.y.Data, grad.Data)
	return d.backwardLinear(grad)
}

// backwardLinear propagates a gradient taken before the activation.
func (d *Dense) backwardLinear(grad *Tensor) *Tensor {
	n := grad.Batch()
	g := mat.NewDense(n, d.Units, grad.Data)

	for i, v := range grad.Data {
		d.bias.Grad[i%d.Units] += v
	}
	dk := mat.NewDense(d.inFeatures, d.Units, d.kernel.Grad)
	var step mat.Dense
	step.Mul(mat.NewDense(n, d.inFeatures, d.x.Data).T(), g)
	dk.Add(dk, &step)

	dx := NewTensor(n, d.inFeatures)
	mat.NewDense(n, d.inFeatures, dx.Data).Mul(g, mat.NewDense(d.inFeatures, d.Units, d.kernel.Value).T())
	return dx
}

func (d *Dense) Params() []*Param { return []*Param{d.kernel, d.bias} }

func (d *Dense) Spec() LayerSpec {
	return LayerSpec{Type: TypeDense, Name: d.name, Units: d.Units, Activation: d.Activation}
}
