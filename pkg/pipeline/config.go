package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/haivivi/wakeword/pkg/artifact"
	"github.com/haivivi/wakeword/pkg/audio/loader"
	"github.com/haivivi/wakeword/pkg/audio/mfcc"
	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/export"
	"github.com/haivivi/wakeword/pkg/trainer"
)

// Config holds every setting of a training run. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	Sources   dataset.Sources   `yaml:"sources" json:"sources"`
	Audio     Audio             `yaml:"audio" json:"audio"`
	Features  mfcc.Config       `yaml:"features" json:"features"`
	Synthetic dataset.Synthetic `yaml:"synthetic" json:"synthetic"`
	Split     Split             `yaml:"split" json:"split"`
	Train     trainer.Config    `yaml:"train" json:"train"`
	Model     Model             `yaml:"model" json:"model"`
	Output    Output            `yaml:"output" json:"output"`
	Cache     Cache             `yaml:"cache" json:"cache"`
}

// Audio controls waveform normalization.
type Audio struct {
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`
	DurationMS int `yaml:"duration_ms" json:"duration_ms"`
}

// Loader returns the equivalent loader config.
func (a Audio) Loader() loader.Config {
	return loader.Config{
		SampleRate: a.SampleRate,
		Duration:   time.Duration(a.DurationMS) * time.Millisecond,
	}
}

// Split controls the train/test partition.
type Split struct {
	Strategy dataset.Strategy `yaml:"strategy" json:"strategy" jsonschema:"stratified or ordinal"`
	Ratio    float64          `yaml:"ratio" json:"ratio" jsonschema:"fraction of examples used for training"`
}

// Model controls network initialization.
type Model struct {
	Seed uint64 `yaml:"seed" json:"seed"`
}

// Converter kinds.
const (
	ConverterExec    = "exec"
	ConverterBuiltin = "builtin"
)

// Converter selects how the native model is transcoded to TF.js.
type Converter struct {
	// Kind is "exec" (external process) or "builtin" (in-process).
	Kind string `yaml:"kind" json:"kind"`

	// Command and Args configure the external process. An empty Command
	// runs this binary's convert subcommand.
	Command string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Output controls where artifacts go.
type Output struct {
	// URI is a directory, file:// URI or s3://bucket/prefix.
	URI       string             `yaml:"uri" json:"uri"`
	S3        artifact.S3Options `yaml:"s3,omitempty" json:"s3,omitempty"`
	Names     export.Names       `yaml:"names" json:"names"`
	Converter Converter          `yaml:"converter" json:"converter"`

	// StagingDir keeps intermediate files; empty uses a temporary directory.
	StagingDir string `yaml:"staging_dir,omitempty" json:"staging_dir,omitempty"`
}

// Cache configures the on-disk feature cache.
type Cache struct {
	// Dir enables the cache when non-empty.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// DefaultConfig reproduces the reference training run: positives from
// ./friday-wav, one second of 16 kHz audio, 40 MFCCs, one noise negative per
// positive, a stratified 80/20 split, 20 epochs of batch 32, and artifacts
// written to the working directory.
func DefaultConfig() Config {
	return Config{
		Sources:   dataset.Sources{Positive: []string{"friday-wav"}, Extensions: dataset.DefaultExtensions()},
		Audio:     Audio{SampleRate: 16000, DurationMS: 1000},
		Features:  mfcc.DefaultConfig(),
		Synthetic: dataset.DefaultSynthetic(),
		Split:     Split{Strategy: dataset.Stratified, Ratio: dataset.DefaultRatio},
		Train:     trainer.DefaultConfig(),
		Model:     Model{Seed: 1},
		Output: Output{
			URI:       ".",
			Names:     export.DefaultNames(),
			Converter: Converter{Kind: ConverterExec},
		},
	}
}

// Validate checks the whole config and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sources.Positive) == 0 {
		errs = append(errs, errors.New("sources.positive: at least one source is required"))
	}
	if err := c.Audio.Loader().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.Features.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("features: %w", err))
	}
	if c.Features.SampleRate != c.Audio.SampleRate {
		errs = append(errs, fmt.Errorf("features.sample_rate %d must equal audio.sample_rate %d",
			c.Features.SampleRate, c.Audio.SampleRate))
	}
	if err := c.Synthetic.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("synthetic: %w", err))
	}
	if _, _, err := dataset.Split(&dataset.Dataset{}, c.Split.Strategy, c.Split.Ratio); err != nil {
		errs = append(errs, fmt.Errorf("split: %w", err))
	}
	if err := c.Train.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("train: %w", err))
	}
	if c.Output.URI == "" {
		errs = append(errs, errors.New("output.uri: required"))
	}
	if c.Output.Names.Model == "" || c.Output.Names.TFJS == "" {
		errs = append(errs, errors.New("output.names: model and tfjs names are required"))
	}
	switch c.Output.Converter.Kind {
	case ConverterExec, ConverterBuiltin:
	default:
		errs = append(errs, fmt.Errorf("output.converter.kind: unknown converter %q", c.Output.Converter.Kind))
	}
	return errors.Join(errs...)
}
