package nn

import (
	"fmt"
	"math"
)

// MaxPool2D takes the maximum over non-overlapping PoolH x PoolW windows.
// Trailing rows and columns that do not fill a window are dropped.
type MaxPool2D struct {
	PoolH, PoolW int

	name    string
	in, out Shape
	argmax  []int // input index of each output element
}

func (p *MaxPool2D) Name() string { return p.name }

func (p *MaxPool2D) Build(name string, in Shape, _ *Initializer) (Shape, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("nn: %s: input must be [H, W, C], got %v", name, in)
	}
	if p.PoolH <= 0 || p.PoolW <= 0 {
		return nil, fmt.Errorf("nn: %s: invalid pool %dx%d", name, p.PoolH, p.PoolW)
	}
	oh, ow := in[0]/p.PoolH, in[1]/p.PoolW
	if oh == 0 || ow == 0 {
		return nil, fmt.Errorf("nn: %s: pool %dx%d larger than input %v", name, p.PoolH, p.PoolW, in)
	}
	p.name = name
	p.in = in
	p.out = Shape{oh, ow, in[2]}
	return p.out, nil
}

func (p *MaxPool2D) Forward(x *Tensor, train bool) *Tensor {
	n := x.Batch()
	h, w, ch := p.in[0], p.in[1], p.in[2]
	oh, ow := p.out[0], p.out[1]
	y := NewTensor(n, oh, ow, ch)
	argmax := make([]int, len(y.Data))
	o := 0
	for b := 0; b < n; b++ {
		base := b * h * w * ch
		for i := 0; i < oh; i++ {
			for j := 0; j < ow; j++ {
				for c := 0; c < ch; c++ {
					best, bestIdx := math.Inf(-1), -1
					for di := 0; di < p.PoolH; di++ {
						for dj := 0; dj < p.PoolW; dj++ {
							idx := base + ((i*p.PoolH+di)*w+j*p.PoolW+dj)*ch + c
							if v := x.Data[idx]; v > best {
								best, bestIdx = v, idx
							}
						}
					}
					y.Data[o] = best
					argmax[o] = bestIdx
					o++
				}
			}
		}
	}
	if train {
		p.argmax = argmax
	}
	return y
}

func (p *MaxPool2D) Backward(grad *Tensor) *Tensor {
	dx := NewTensor(grad.Batch(), p.in[0], p.in[1], p.in[2])
	for o, g := range grad.Data {
		dx.Data[p.argmax[o]] += g
	}
	return dx
}

func (p *MaxPool2D) Params() []*Param { return nil }

func (p *MaxPool2D) Spec() LayerSpec {
	return LayerSpec{Type: TypeMaxPool2D, Name: p.name, Pool: [2]int{p.PoolH, p.PoolW}}
}

// Flatten reshapes [H, W, C] into [H*W*C] in row-major order.
type Flatten struct {
	name string
	in   Shape
}

func (f *Flatten) Name() string { return f.name }

func (f *Flatten) Build(name string, in Shape, _ *Initializer) (Shape, error) {
	f.name = name
	f.in = append(Shape(nil), in...)
	return Shape{in.Size()}, nil
}

func (f *Flatten) Forward(x *Tensor, _ bool) *Tensor {
	return &Tensor{Shape: Shape{x.Batch(), f.in.Size()}, Data: x.Data}
}

func (f *Flatten) Backward(grad *Tensor) *Tensor {
	return &Tensor{Shape: append(Shape{grad.Batch()}, f.in...), Data: grad.Data}
}

func (f *Flatten) Params() []*Param { return nil }

func (f *Flatten) Spec() LayerSpec { return LayerSpec{Type: TypeFlatten, Name: f.name} }
