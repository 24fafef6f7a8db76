package nn

import "fmt"

// Layer is one stage of a Sequential network.
//
// Forward caches whatever Backward needs, so calls must alternate
// Forward(train=true) then Backward for the same batch.
type Layer interface {
	// Name is the unique layer name within the network, e.g. "conv2d_1".
	Name() string

	// Build allocates parameters for the given per-sample input shape and
	// returns the per-sample output shape.
	Build(name string, in Shape, init *Initializer) (Shape, error)

	Forward(x *Tensor, train bool) *Tensor

	// Backward takes dLoss/dOutput, accumulates parameter gradients and
	// returns dLoss/dInput.
	Backward(grad *Tensor) *Tensor

	Params() []*Param

	// Spec describes the layer's hyperparameters.
	Spec() LayerSpec
}

// Layer types as stored in LayerSpec.Type.
const (
	TypeConv2D    = "Conv2D"
	TypeMaxPool2D = "MaxPooling2D"
	TypeFlatten   = "Flatten"
	TypeDense     = "Dense"
	TypeDropout   = "Dropout"
)

// LayerSpec is the serializable description of a layer.
type LayerSpec struct {
	Type       string     `msgpack:"type" json:"type"`
	Name       string     `msgpack:"name" json:"name"`
	Filters    int        `msgpack:"filters,omitempty" json:"filters,omitempty"`
	Kernel     [2]int     `msgpack:"kernel,omitempty" json:"kernel,omitempty"`
	Pool       [2]int     `msgpack:"pool,omitempty" json:"pool,omitempty"`
	Units      int        `msgpack:"units,omitempty" json:"units,omitempty"`
	Rate       float64    `msgpack:"rate,omitempty" json:"rate,omitempty"`
	Activation Activation `msgpack:"activation,omitempty" json:"activation,omitempty"`
}

// NewLayer constructs an unbuilt layer from its spec.
func NewLayer(spec LayerSpec) (Layer, error) {
	switch spec.Type {
	case TypeConv2D:
		return &Conv2D{Filters: spec.Filters, KernelH: spec.Kernel[0], KernelW: spec.Kernel[1], Activation: spec.Activation}, nil
	case TypeMaxPool2D:
		return &MaxPool2D{PoolH: spec.Pool[0], PoolW: spec.Pool[1]}, nil
	case TypeFlatten:
		return &Flatten{}, nil
	case TypeDense:
		return &Dense{Units: spec.Units, Activation: spec.Activation}, nil
	case TypeDropout:
		return &Dropout{Rate: spec.Rate}, nil
	}
	return nil, fmt.Errorf("nn: unknown layer type %q", spec.Type)
}

// defaultName returns the Keras-style base name for a layer type.
func defaultName(typ string) string {
	switch typ {
	case TypeConv2D:
		return "conv2d"
	case TypeMaxPool2D:
		return "max_pooling2d"
	case TypeFlatten:
		return "flatten"
	case TypeDense:
		return "dense"
	case TypeDropout:
		return "dropout"
	}
	return "layer"
}
