package nn

import "math"

// Epsilon is the probability clip applied to the loss value.
const Epsilon = 1e-7

// BinaryCrossEntropy returns the mean loss of predicted probabilities p
// against 0/1 targets y, and dLoss/dp. Probabilities are clipped to
// [Epsilon, 1-Epsilon] so both stay finite.
func BinaryCrossEntropy(p, y []float64) (float64, []float64) {
	n := float64(len(p))
	grad := make([]float64, len(p))
	var loss float64
	for i, v := range p {
		c := min(max(v, Epsilon), 1-Epsilon)
		loss -= y[i]*math.Log(c) + (1-y[i])*math.Log(1-c)
		grad[i] = (v - y[i]) / (c * (1 - c)) / n
	}
	return loss / n, grad
}

// SigmoidCrossEntropy returns the same loss as BinaryCrossEntropy for
// probabilities p produced by a sigmoid, but the gradient is taken with
// respect to the sigmoid's input: (p - y) / n. It stays non-zero when p has
// saturated to 0 or 1. Pass it to Sequential.BackwardLogits.
func SigmoidCrossEntropy(p, y []float64) (float64, []float64) {
	loss, _ := BinaryCrossEntropy(p, y)
	n := float64(len(p))
	grad := make([]float64, len(p))
	for i, v := range p {
		grad[i] = (v - y[i]) / n
	}
	return loss, grad
}
