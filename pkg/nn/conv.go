package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Conv2D is a 2-D convolution with "valid" padding and stride 1.
type Conv2D struct {
	Filters    int
	KernelH    int
	KernelW    int
	Activation Activation

	name         string
	in, out      Shape // [H, W, C]
	kernel, bias *Param
	cols         *mat.Dense // im2col of the last training input
	y            *Tensor
}

func (c *Conv2D) Name() string { return c.name }

func (c *Conv2D) Build(name string, in Shape, init *Initializer) (Shape, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("nn: %s: input must be [H, W, C], got %v", name, in)
	}
	if c.Filters <= 0 || c.KernelH <= 0 || c.KernelW <= 0 {
		return nil, fmt.Errorf("nn: %s: invalid filters=%d kernel=%dx%d", name, c.Filters, c.KernelH, c.KernelW)
	}
	if c.Activation == "" {
		c.Activation = Linear
	}
	if err := c.Activation.validate(); err != nil {
		return nil, err
	}
	oh, ow := in[0]-c.KernelH+1, in[1]-c.KernelW+1
	if oh <= 0 || ow <= 0 {
		return nil, fmt.Errorf("nn: %s: kernel %dx%d larger than input %v", name, c.KernelH, c.KernelW, in)
	}
	c.name = name
	c.in = in
	c.out = Shape{oh, ow, c.Filters}
	c.kernel = newParam(name+"/kernel", c.KernelH, c.KernelW, in[2], c.Filters)
	c.bias = newParam(name+"/bias", c.Filters)
	patch := c.KernelH * c.KernelW
	init.GlorotUniform(c.kernel.Value, patch*in[2], patch*c.Filters)
	return c.out, nil
}

// im2col lays out every receptive field of x as a row of
// [kh * kw * cin] values in kernel order.
func (c *Conv2D) im2col(x *Tensor) *mat.Dense {
	n := x.Batch()
	h, w, cin := c.in[0], c.in[1], c.in[2]
	oh, ow := c.out[0], c.out[1]
	width := c.KernelH * c.KernelW * cin
	data := make([]float64, n*oh*ow*width)
	i := 0
	for b := 0; b < n; b++ {
		base := b * h * w * cin
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				for ky := 0; ky < c.KernelH; ky++ {
					off := base + ((y+ky)*w+xx)*cin
					// The kw*cin values of one kernel row are contiguous.
					i += copy(data[i:i+c.KernelW*cin], x.Data[off:off+c.KernelW*cin])
				}
			}
		}
	}
	return mat.NewDense(n*oh*ow, width, data)
}

func (c *Conv2D) Forward(x *Tensor, train bool) *Tensor {
	n := x.Batch()
	cols := c.im2col(x)
	k := mat.NewDense(c.kernel.Shape[0]*c.kernel.Shape[1]*c.kernel.Shape[2], c.Filters, c.kernel.Value)

	y := NewTensor(n, c.out[0], c.out[1], c.Filters)
	out := mat.NewDense(n*c.out[0]*c.out[1], c.Filters, y.Data)
	out.Mul(cols, k)
	for i := range y.Data {
		y.Data[i] += c.bias.Value[i%c.Filters]
	}
	c.Activation.apply(y.Data)
	if train {
		c.cols, c.y = cols, y
	}
	return y
}

func (c *Conv2D) Backward(grad *Tensor) *Tensor {
	n := grad.Batch()
	c.Activation.backward(c.y.Data, grad.Data)
	rows := n * c.out[0] * c.out[1]
	g := mat.NewDense(rows, c.Filters, grad.Data)

	for i, v := range grad.Data {
		c.bias.Grad[i%c.Filters] += v
	}
	width := c.KernelH * c.KernelW * c.in[2]
	var dk mat.Dense
	dk.Mul(c.cols.T(), g)
	raw := dk.RawMatrix()
	for r := 0; r < width; r++ {
		for f := 0; f < c.Filters; f++ {
			c.kernel.Grad[r*c.Filters+f] += raw.Data[r*raw.Stride+f]
		}
	}

	k := mat.NewDense(width, c.Filters, c.kernel.Value)
	var dcols mat.Dense
	dcols.Mul(g, k.T())
	return c.col2im(&dcols, n)
}

// col2im scatters patch gradients back onto the input positions.
func (c *Conv2D) col2im(dcols *mat.Dense, n int) *Tensor {
	h, w, cin := c.in[0], c.in[1], c.in[2]
	oh, ow := c.out[0], c.out[1]
	dx := NewTensor(n, h, w, cin)
	raw := dcols.RawMatrix()
	row := 0
	for b := 0; b < n; b++ {
		base := b * h * w * cin
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				src := raw.Data[row*raw.Stride : row*raw.Stride+raw.Cols]
				j := 0
				for ky := 0; ky < c.KernelH; ky++ {
					off := base + ((y+ky)*w+xx)*cin
					for q := 0; q < c.KernelW*cin; q++ {
						dx.Data[off+q] += src[j]
						j++
					}
				}
				row++
			}
		}
	}
	return dx
}

func (c *Conv2D) Params() []*Param { return []*Param{c.kernel, c.bias} }

func (c *Conv2D) Spec() LayerSpec {
	return LayerSpec{
		Type:       TypeConv2D,
		Name:       c.name,
		Filters:    c.Filters,
		Kernel:     [2]int{c.KernelH, c.KernelW},
		Activation: c.Activation,
	}
}
