// Package model defines the wake word network topology and its native
// on-disk format.
//
// The native format is a single msgpack document holding the layer specs,
// the trained weights as float32, the feature settings the network expects
// and the evaluation metrics of the run that produced it.
package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/wakeword/pkg/nn"
)

const (
	// FormatName identifies the native format on the converter command line.
	FormatName = "wakeword-msgpack"

	// FormatTag is written into every file and checked on load.
	FormatTag = FormatName + "/v1"
)

// ErrFormat is returned when a file is not a native model.
var ErrFormat = errors.New("model: unrecognized format")

// New returns the fixed wake word network built for a per-sample input
// shape of [frames, coeffs, 1]:
//
//	Conv2D(32, 3x3, relu) -> MaxPool(2x2) -> Conv2D(64, 3x3, relu) ->
//	MaxPool(2x2) -> Flatten -> Dense(64, relu) -> Dropout(0.5) ->
//	Dense(1, sigmoid)
func New(input nn.Shape, seed uint64) (*nn.Sequential, error) {
	net := nn.NewSequential("sequential",
		&nn.Conv2D{Filters: 32, KernelH: 3, KernelW: 3, Activation: nn.ReLU},
		&nn.MaxPool2D{PoolH: 2, PoolW: 2},
		&nn.Conv2D{Filters: 64, KernelH: 3, KernelW: 3, Activation: nn.ReLU},
		&nn.MaxPool2D{PoolH: 2, PoolW: 2},
		&nn.Flatten{},
		&nn.Dense{Units: 64, Activation: nn.ReLU},
		&nn.Dropout{Rate: 0.5},
		&nn.Dense{Units: 1, Activation: nn.Sigmoid},
	)
	if err := net.Build(input, seed); err != nil {
		return nil, fmt.Errorf("model: build for input %v: %w", input, err)
	}
	return net, nil
}

// InputShape returns the network input shape for feature matrices of
// frames x coeffs.
func InputShape(frames, coeffs int) nn.Shape {
	return nn.Shape{frames, coeffs, 1}
}

// Features records how inputs to the network must be produced.
type Features struct {
	SampleRate  int    `msgpack:"sample_rate" json:"sample_rate"`
	DurationMS  int64  `msgpack:"duration_ms" json:"duration_ms"`
	NumCoeffs   int    `msgpack:"num_coeffs" json:"num_coeffs"`
	Fingerprint string `msgpack:"fingerprint" json:"fingerprint"`
}

// Weight is one named parameter tensor.
type Weight struct {
	Name  string    `msgpack:"name"`
	Shape []int     `msgpack:"shape"`
	Data  []float32 `msgpack:"data"`
}

// File is the native model document.
type File struct {
	Format    string             `msgpack:"format"`
	RunID     string             `msgpack:"run_id"`
	CreatedAt time.Time          `msgpack:"created_at"`
	Name      string             `msgpack:"name"`
	Features  Features           `msgpack:"features"`
	Input     []int              `msgpack:"input"`
	Layers    []nn.LayerSpec     `msgpack:"layers"`
	Weights   []Weight           `msgpack:"weights"`
	Metrics   map[string]float64 `msgpack:"metrics,omitempty"`
}

// Snapshot captures a built network's topology and current weights.
func Snapshot(net *nn.Sequential, features Features) (*File, error) {
	if !net.Built() {
		return nil, errors.New("model: network is not built")
	}
	f := &File{
		Format:    FormatTag,
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Name:      net.Name,
		Features:  features,
		Input:     append([]int(nil), net.InputShape()...),
		Layers:    net.Specs(),
	}
	for _, p := range net.Params() {
		w := Weight{Name: p.Name, Shape: append([]int(nil), p.Shape...), Data: make([]float32, len(p.Value))}
		for i, v := range p.Value {
			w.Data[i] = float32(v)
		}
		f.Weights = append(f.Weights, w)
	}
	return f, nil
}

// Network rebuilds the network described by f and loads its weights.
func (f *File) Network() (*nn.Sequential, error) {
	net, err := nn.FromSpecs(f.Name, f.Layers)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if err := net.Build(nn.Shape(f.Input), 0); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	params := net.Params()
	if len(params) != len(f.Weights) {
		return nil, fmt.Errorf("model: %d weight tensors, network has %d", len(f.Weights), len(params))
	}
	for i, p := range params {
		w := f.Weights[i]
		if w.Name != p.Name || !p.Shape.Equal(w.Shape) || len(w.Data) != len(p.Value) {
			return nil, fmt.Errorf("model: weight %d is %s%v, want %s%v", i, w.Name, nn.Shape(w.Shape), p.Name, p.Shape)
		}
		for j, v := range w.Data {
			p.Value[j] = float64(v)
		}
	}
	return net, nil
}

// CountParams returns the number of weight values.
func (f *File) CountParams() int {
	n := 0
	for _, w := range f.Weights {
		n += len(w.Data)
	}
	return n
}

// Encode writes f to w.
func Encode(w io.Writer, f *File) error {
	if err := msgpack.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("model: encode: %w", err)
	}
	return nil
}

// Decode reads a native model from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if f.Format != FormatTag {
		return nil, fmt.Errorf("%w: tag %q, want %q", ErrFormat, f.Format, FormatTag)
	}
	return &f, nil
}

// Save writes f to path, creating or truncating it.
func Save(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Load reads the native model at path.
func Load(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	f, err := Decode(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
