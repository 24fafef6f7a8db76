// Package nn implements the small set of neural network layers needed to
// train a convolutional wake word classifier on the CPU.
//
// Tensors are dense float64 arrays in channels-last layout with a leading
// batch dimension: [N, H, W, C] for images and [N, F] for vectors. Weight
// layouts follow Keras (conv kernels [kh, kw, in, out], dense kernels
// [in, out]) so trained parameters can be exported without reordering.
//
// Matrix products use gonum.org/v1/gonum/mat; convolutions are lowered to
// matrix products with im2col.
package nn

import (
	"fmt"
	"strings"
)

// Shape is a tensor shape. Layer shapes omit the batch dimension.
type Shape []int

// Size returns the number of elements.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether s and o have the same dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Tensor is a dense row-major array whose first dimension is the batch.
type Tensor struct {
	Shape Shape
	Data  []float64
}

// NewTensor returns a zero tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	s := Shape(append([]int(nil), shape...))
	return &Tensor{Shape: s, Data: make([]float64, s.Size())}
}

// Batch returns the size of the leading dimension.
func (t *Tensor) Batch() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[0]
}

// Stack builds an [N, H, W, 1] tensor from N matrices of [H][W].
func Stack(samples [][][]float32) (*Tensor, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("nn: stack: no samples")
	}
	h := len(samples[0])
	if h == 0 {
		return nil, fmt.Errorf("nn: stack: empty sample")
	}
	w := len(samples[0][0])
	t := NewTensor(len(samples), h, w, 1)
	i := 0
	for n, m := range samples {
		if len(m) != h {
			return nil, fmt.Errorf("nn: stack: sample %d has %d rows, want %d", n, len(m), h)
		}
		for _, row := range m {
			if len(row) != w {
				return nil, fmt.Errorf("nn: stack: sample %d has %d columns, want %d", n, len(row), w)
			}
			for _, v := range row {
				t.Data[i] = float64(v)
				i++
			}
		}
	}
	return t, nil
}

// Param is a trainable parameter and its accumulated gradient.
type Param struct {
	Name  string // e.g. "conv2d/kernel"
	Shape Shape
	Value []float64
	Grad  []float64
}

func newParam(name string, shape ...int) *Param {
	s := Shape(shape)
	return &Param{
		Name:  name,
		Shape: s,
		Value: make([]float64, s.Size()),
		Grad:  make([]float64, s.Size()),
	}
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	clear(p.Grad)
}
