package nn

import (
	"fmt"
	"math"
)

// Activation is an element-wise function fused into Conv2D and Dense.
type Activation string

const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Sigmoid Activation = "sigmoid"
)

func (a Activation) validate() error {
	switch a {
	case Linear, ReLU, Sigmoid:
		return nil
	}
	return fmt.Errorf("nn: unknown activation %q", a)
}

// apply transforms x in place.
func (a Activation) apply(x []float64) {
	switch a {
	case ReLU:
		for i, v := range x {
			if v < 0 {
				x[i] = 0
			}
		}
	case Sigmoid:
		for i, v := range x {
			x[i] = sigmoid(v)
		}
	}
}

// backward multiplies grad in place by the derivative, expressed in terms of
// the activation output y.
func (a Activation) backward(y, grad []float64) {
	switch a {
	case ReLU:
		for i, v := range y {
			if v <= 0 {
				grad[i] = 0
			}
		}
	case Sigmoid:
		for i, v := range y {
			grad[i] *= v * (1 - v)
		}
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
