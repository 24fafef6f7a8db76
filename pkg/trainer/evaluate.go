package trainer

import (
	"fmt"

	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/nn"
)

// Threshold is the probability at or above which a prediction counts as the
// wake word.
const Threshold = 0.5

// evalBatch bounds memory use during evaluation.
const evalBatch = 64

// Metrics summarises a network's performance on a dataset.
type Metrics struct {
	Loss      float64 `yaml:"loss" json:"loss"`
	Accuracy  float64 `yaml:"accuracy" json:"accuracy"`
	Precision float64 `yaml:"precision" json:"precision"`
	Recall    float64 `yaml:"recall" json:"recall"`

	TruePositives  int `yaml:"true_positives" json:"true_positives"`
	FalsePositives int `yaml:"false_positives" json:"false_positives"`
	TrueNegatives  int `yaml:"true_negatives" json:"true_negatives"`
	FalseNegatives int `yaml:"false_negatives" json:"false_negatives"`
}

// Map returns the metrics as a flat name -> value map.
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"loss":            m.Loss,
		"accuracy":        m.Accuracy,
		"precision":       m.Precision,
		"recall":          m.Recall,
		"true_positives":  float64(m.TruePositives),
		"false_positives": float64(m.FalsePositives),
		"true_negatives":  float64(m.TrueNegatives),
		"false_negatives": float64(m.FalseNegatives),
	}
}

// Evaluate computes loss and classification metrics of net on ds in
// inference mode. An empty dataset returns dataset.ErrEmptyDataset.
func Evaluate(net *nn.Sequential, ds *dataset.Dataset) (Metrics, error) {
	var m Metrics
	if ds.Len() == 0 {
		return m, fmt.Errorf("trainer: evaluate: %w", dataset.ErrEmptyDataset)
	}
	if err := checkInput(net, ds); err != nil {
		return m, err
	}

	var lossSum float64
	idx := make([]int, 0, evalBatch)
	for lo := 0; lo < ds.Len(); lo += evalBatch {
		hi := min(lo+evalBatch, ds.Len())
		idx = idx[:0]
		for i := lo; i < hi; i++ {
			idx = append(idx, i)
		}
		x, y, err := batch(ds, idx)
		if err != nil {
			return m, err
		}
		p := net.Predict(x)
		loss, _ := nn.BinaryCrossEntropy(p, y)
		lossSum += loss * float64(len(y))
		for i := range p {
			switch predicted, actual := p[i] >= Threshold, y[i] == 1; {
			case predicted && actual:
				m.TruePositives++
			case predicted && !actual:
				m.FalsePositives++
			case !predicted && !actual:
				m.TrueNegatives++
			default:
				m.FalseNegatives++
			}
		}
	}

	n := float64(ds.Len())
	m.Loss = lossSum / n
	m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / n
	if d := m.TruePositives + m.FalsePositives; d > 0 {
		m.Precision = float64(m.TruePositives) / float64(d)
	}
	if d := m.TruePositives + m.FalseNegatives; d > 0 {
		m.Recall = float64(m.TruePositives) / float64(d)
	}
	return m, nil
}

// Predict returns the wake word probability of each feature matrix.
func Predict(net *nn.Sequential, features ...[][]float32) ([]float64, error) {
	if len(features) == 0 {
		return nil, nil
	}
	x, err := nn.Stack(features)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if !net.InputShape().Equal(x.Shape[1:]) {
		return nil, fmt.Errorf("trainer: features %v do not match network input %v", x.Shape[1:], net.InputShape())
	}
	return net.Predict(x), nil
}
