// Package tfjs writes models in the TensorFlow.js layers format.
//
// A converted model is a directory holding model.json (the Keras topology
// plus a weights manifest) and one or more binary shard files of
// little-endian float32 weights, which tf.loadLayersModel loads directly in
// a browser.
package tfjs

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/haivivi/wakeword/pkg/model"
	"github.com/haivivi/wakeword/pkg/nn"
)

// ModelFile is the name of the topology file inside a model directory.
const ModelFile = "model.json"

// DefaultShardSize is the maximum size of one weight shard in bytes.
const DefaultShardSize = 4 << 20

// Options controls conversion.
type Options struct {
	// ShardSize caps each weight file. 0 means DefaultShardSize.
	ShardSize int

	// GeneratedBy and ConvertedBy are recorded in model.json.
	GeneratedBy string
	ConvertedBy string
}

// Model is the model.json document.
type Model struct {
	Format          string          `json:"format"`
	GeneratedBy     string          `json:"generatedBy,omitempty"`
	ConvertedBy     string          `json:"convertedBy,omitempty"`
	ModelTopology   Topology        `json:"modelTopology"`
	WeightsManifest []ManifestGroup `json:"weightsManifest"`
	UserDefined     map[string]any  `json:"userDefinedMetadata,omitempty"`
}

// Topology is the Keras model config.
type Topology struct {
	ClassName    string        `json:"class_name"`
	Config       SequentialCfg `json:"config"`
	KerasVersion string        `json:"keras_version"`
	Backend      string        `json:"backend"`
}

// SequentialCfg is the config of a Keras Sequential model.
type SequentialCfg struct {
	Name   string  `json:"name"`
	Layers []Layer `json:"layers"`
}

// Layer is one Keras layer entry.
type Layer struct {
	ClassName string         `json:"class_name"`
	Config    map[string]any `json:"config"`
}

// ManifestGroup lists the shard files and the weights they hold, in order.
type ManifestGroup struct {
	Paths   []string      `json:"paths"`
	Weights []WeightEntry `json:"weights"`
}

// WeightEntry describes one weight tensor in the concatenated shards.
type WeightEntry struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
}

// Write converts f into a TF.js layers model under dir, creating dir if
// needed.
func Write(dir string, f *model.File, opts Options) error {
	if opts.ShardSize <= 0 {
		opts.ShardSize = DefaultShardSize
	}
	opts.ShardSize -= opts.ShardSize % 4
	if opts.ShardSize == 0 {
		return errors.New("tfjs: shard size smaller than one float32")
	}

	layers, err := topology(f)
	if err != nil {
		return err
	}

	var payload []byte
	entries := make([]WeightEntry, len(f.Weights))
	for i, w := range f.Weights {
		entries[i] = WeightEntry{Name: w.Name, Shape: append([]int(nil), w.Shape...), DType: "float32"}
		for _, v := range w.Data {
			payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(v))
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	numShards := max(1, (len(payload)+opts.ShardSize-1)/opts.ShardSize)
	paths := make([]string, numShards)
	for k := range numShards {
		paths[k] = fmt.Sprintf("group1-shard%dof%d.bin", k+1, numShards)
		lo := k * opts.ShardSize
		hi := min(lo+opts.ShardSize, len(payload))
		if err := os.WriteFile(filepath.Join(dir, paths[k]), payload[lo:hi], 0o644); err != nil {
			return err
		}
	}

	doc := Model{
		Format:      "layers-model",
		GeneratedBy: opts.GeneratedBy,
		ConvertedBy: opts.ConvertedBy,
		ModelTopology: Topology{
			ClassName:    "Sequential",
			Config:       SequentialCfg{Name: f.Name, Layers: layers},
			KerasVersion: "2.15.0",
			Backend:      "tensorflow",
		},
		WeightsManifest: []ManifestGroup{{Paths: paths, Weights: entries}},
		UserDefined: map[string]any{
			"run_id":   f.RunID,
			"features": f.Features,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("tfjs: encode %s: %w", ModelFile, err)
	}
	return os.WriteFile(filepath.Join(dir, ModelFile), data, 0o644)
}

// topology maps layer specs to Keras layer configs.
func topology(f *model.File) ([]Layer, error) {
	layers := make([]Layer, 0, len(f.Layers))
	for i, spec := range f.Layers {
		cfg := map[string]any{
			"name":      spec.Name,
			"trainable": true,
			"dtype":     "float32",
		}
		if i == 0 {
			cfg["batch_input_shape"] = append([]any{nil}, intsToAny(f.Input)...)
		}
		switch spec.Type {
		case nn.TypeConv2D:
			cfg["filters"] = spec.Filters
			cfg["kernel_size"] = spec.Kernel
			cfg["strides"] = [2]int{1, 1}
			cfg["padding"] = "valid"
			cfg["data_format"] = "channels_last"
			cfg["dilation_rate"] = [2]int{1, 1}
			cfg["activation"] = string(spec.Activation)
			cfg["use_bias"] = true
			cfg["kernel_initializer"] = glorotUniform()
			cfg["bias_initializer"] = zeros()
		case nn.TypeMaxPool2D:
			cfg["pool_size"] = spec.Pool
			cfg["strides"] = spec.Pool
			cfg["padding"] = "valid"
			cfg["data_format"] = "channels_last"
		case nn.TypeFlatten:
			cfg["data_format"] = "channels_last"
		case nn.TypeDense:
			cfg["units"] = spec.Units
			cfg["activation"] = string(spec.Activation)
			cfg["use_bias"] = true
			cfg["kernel_initializer"] = glorotUniform()
			cfg["bias_initializer"] = zeros()
		case nn.TypeDropout:
			cfg["rate"] = spec.Rate
		default:
			return nil, fmt.Errorf("tfjs: layer %s: unsupported type %q", spec.Name, spec.Type)
		}
		layers = append(layers, Layer{ClassName: spec.Type, Config: cfg})
	}
	return layers, nil
}

func glorotUniform() map[string]any {
	return map[string]any{"class_name": "GlorotUniform", "config": map[string]any{"seed": nil}}
}

func zeros() map[string]any {
	return map[string]any{"class_name": "Zeros", "config": map[string]any{}}
}

func intsToAny(s []int) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// Loaded is a parsed TF.js model directory.
type Loaded struct {
	Model   Model
	Weights map[string][]float32
}

// Read parses model.json in dir and loads every weight tensor from its
// shards.
func Read(dir string) (*Loaded, error) {
	data, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tfjs: parse %s: %w", ModelFile, err)
	}
	if m.Format != "layers-model" {
		return nil, fmt.Errorf("tfjs: unsupported format %q", m.Format)
	}

	out := &Loaded{Model: m, Weights: make(map[string][]float32)}
	for _, group := range m.WeightsManifest {
		var payload []byte
		for _, p := range group.Paths {
			b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
			if err != nil {
				return nil, err
			}
			payload = append(payload, b...)
		}
		off := 0
		for _, w := range group.Weights {
			if w.DType != "float32" {
				return nil, fmt.Errorf("tfjs: weight %s: unsupported dtype %q", w.Name, w.DType)
			}
			n := nn.Shape(w.Shape).Size()
			if off+4*n > len(payload) {
				return nil, fmt.Errorf("tfjs: weight %s: %w", w.Name, io.ErrUnexpectedEOF)
			}
			vals := make([]float32, n)
			for i := range vals {
				vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off+4*i:]))
			}
			out.Weights[w.Name] = vals
			off += 4 * n
		}
	}
	return out, nil
}
