// Package trainer fits and evaluates networks on labelled datasets using
// mini-batch gradient descent with Adam and binary cross-entropy.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/nn"
)

// Config controls training.
type Config struct {
	Epochs       int     `yaml:"epochs" json:"epochs"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	Shuffle      bool    `yaml:"shuffle" json:"shuffle"`
	Seed         uint64  `yaml:"seed" json:"seed"`
}

// DefaultConfig returns 20 epochs of batch 32 at learning rate 0.001.
func DefaultConfig() Config {
	return Config{
		Epochs:       20,
		BatchSize:    32,
		LearningRate: 0.001,
		Shuffle:      true,
		Seed:         1,
	}
}

// Validate checks the training settings.
func (c Config) Validate() error {
	switch {
	case c.Epochs <= 0:
		return fmt.Errorf("trainer: epochs must be positive, got %d", c.Epochs)
	case c.BatchSize <= 0:
		return fmt.Errorf("trainer: batch size must be positive, got %d", c.BatchSize)
	case c.LearningRate <= 0:
		return fmt.Errorf("trainer: learning rate must be positive, got %g", c.LearningRate)
	}
	return nil
}

// Epoch is the training record of one pass over the data.
type Epoch struct {
	Epoch       int           `yaml:"epoch" json:"epoch"`
	Loss        float64       `yaml:"loss" json:"loss"`
	Accuracy    float64       `yaml:"accuracy" json:"accuracy"`
	Steps       int           `yaml:"steps" json:"steps"` // optimizer updates so far
	ValLoss     *float64      `yaml:"val_loss,omitempty" json:"val_loss,omitempty"`
	ValAccuracy *float64      `yaml:"val_accuracy,omitempty" json:"val_accuracy,omitempty"`
	Duration    time.Duration `yaml:"duration" json:"duration"`
}

// History is the per-epoch record of a Fit call.
type History []Epoch

// Last returns the final epoch, or the zero Epoch if h is empty.
func (h History) Last() Epoch {
	if len(h) == 0 {
		return Epoch{}
	}
	return h[len(h)-1]
}

// Trainer runs Fit and Evaluate.
type Trainer struct {
	cfg Config
	log *slog.Logger
}

// New returns a Trainer. A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{cfg: cfg, log: logger}, nil
}

// Fit trains net on train for the configured number of epochs. If
// validation is non-empty it is evaluated after every epoch. Fit rejects an
// empty training set with dataset.ErrEmptyDataset before touching the
// network. Cancellation is checked between batches.
func (t *Trainer) Fit(ctx context.Context, net *nn.Sequential, train, validation *dataset.Dataset) (History, error) {
	if train.Len() == 0 {
		return nil, fmt.Errorf("trainer: fit: %w", dataset.ErrEmptyDataset)
	}
	if err := checkInput(net, train); err != nil {
		return nil, err
	}

	opt := nn.NewAdam(t.cfg.LearningRate)
	rng := rand.New(rand.NewPCG(t.cfg.Seed, 0x7a11))
	order := make([]int, train.Len())
	for i := range order {
		order[i] = i
	}

	history := make(History, 0, t.cfg.Epochs)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		start := time.Now()
		if t.cfg.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var lossSum float64
		var correct int
		for lo := 0; lo < len(order); lo += t.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			hi := min(lo+t.cfg.BatchSize, len(order))
			x, y, err := batch(train, order[lo:hi])
			if err != nil {
				return history, err
			}

			net.ZeroGrad()
			out := net.Forward(x, true)
			loss, grad := nn.SigmoidCrossEntropy(out.Data, y)
			if err := net.BackwardLogits(&nn.Tensor{Shape: nn.Shape{len(y), 1}, Data: grad}); err != nil {
				return history, err
			}
			opt.Step(net.Params())

			lossSum += loss * float64(len(y))
			correct += countCorrect(out.Data, y)
		}

		rec := Epoch{
			Epoch:    epoch,
			Loss:     lossSum / float64(len(order)),
			Accuracy: float64(correct) / float64(len(order)),
			Steps:    opt.Iterations(),
		}
		attrs := []any{"epoch", epoch, "of", t.cfg.Epochs, "steps", rec.Steps, "loss", rec.Loss, "accuracy", rec.Accuracy}
		if validation.Len() > 0 {
			m, err := Evaluate(net, validation)
			if err != nil {
				return history, err
			}
			rec.ValLoss, rec.ValAccuracy = &m.Loss, &m.Accuracy
			attrs = append(attrs, "val_loss", m.Loss, "val_accuracy", m.Accuracy)
		}
		rec.Duration = time.Since(start)
		history = append(history, rec)
		t.log.Info("epoch", append(attrs, "duration", rec.Duration.Round(time.Millisecond))...)
	}
	return history, nil
}

func checkInput(net *nn.Sequential, ds *dataset.Dataset) error {
	frames, coeffs := ds.Shape()
	want := nn.Shape{frames, coeffs, 1}
	if !net.InputShape().Equal(want) {
		return fmt.Errorf("trainer: dataset shape %v does not match network input %v", want, net.InputShape())
	}
	return nil
}

// batch stacks the selected examples into an input tensor and target vector.
func batch(ds *dataset.Dataset, idx []int) (*nn.Tensor, []float64, error) {
	feats := make([][][]float32, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		ex := ds.Examples[j]
		feats[i] = ex.Features
		if ex.Label == dataset.Positive {
			y[i] = 1
		}
	}
	x, err := nn.Stack(feats)
	if err != nil {
		return nil, nil, fmt.Errorf("trainer: %w", err)
	}
	return x, y, nil
}

func countCorrect(p, y []float64) int {
	n := 0
	for i := range p {
		if (p[i] >= Threshold) == (y[i] == 1) {
			n++
		}
	}
	return n
}
