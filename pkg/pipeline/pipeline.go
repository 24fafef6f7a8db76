// Package pipeline runs the complete wake word training flow:
//
//	build dataset -> split -> build model -> fit -> evaluate ->
//	save native model -> convert to TF.js -> publish
//
// Stages run strictly in sequence. The first failure aborts the run and no
// stage is retried.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/wakeword/pkg/artifact"
	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/export"
	"github.com/haivivi/wakeword/pkg/featcache"
	"github.com/haivivi/wakeword/pkg/model"
	"github.com/haivivi/wakeword/pkg/tfjs"
	"github.com/haivivi/wakeword/pkg/trainer"
)

// Result summarises a completed run.
type Result struct {
	RunID     string            `yaml:"run_id" json:"run_id"`
	Examples  dataset.Counts    `yaml:"examples" json:"examples"`
	Train     dataset.Counts    `yaml:"train" json:"train"`
	Test      dataset.Counts    `yaml:"test" json:"test"`
	Frames    int               `yaml:"frames" json:"frames"`
	Coeffs    int               `yaml:"coeffs" json:"coeffs"`
	Params    int               `yaml:"params" json:"params"`
	History   trainer.History   `yaml:"history" json:"history"`
	Metrics   *trainer.Metrics  `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Artifacts *export.Artifacts `yaml:"artifacts" json:"artifacts"`
	Duration  time.Duration     `yaml:"duration" json:"duration"`
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithStore overrides the artifact store derived from Output.URI.
func WithStore(s artifact.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithConverter overrides the converter derived from Output.Converter.
func WithConverter(c export.Converter) Option {
	return func(p *Pipeline) { p.converter = c }
}

// WithCache overrides the feature cache derived from Cache.Dir. The caller
// keeps ownership and closes it.
func WithCache(c featcache.Store) Option {
	return func(p *Pipeline) { p.cache = c }
}

// Pipeline is a configured training run.
type Pipeline struct {
	cfg       Config
	log       *slog.Logger
	store     artifact.Store
	converter export.Converter
	cache     featcache.Store
}

// New validates cfg and returns a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid config: %w", err)
	}
	p := &Pipeline{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run executes every stage in order.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := p.cfg

	store := p.store
	if store == nil {
		s, err := artifact.New(cfg.Output.URI, cfg.Output.S3)
		if err != nil {
			return nil, err
		}
		store = s
	}

	cache := p.cache
	if cache == nil && cfg.Cache.Dir != "" {
		c, err := featcache.NewBadger(featcache.BadgerOptions{Dir: cfg.Cache.Dir, Logger: p.log})
		if err != nil {
			return nil, err
		}
		defer c.Close()
		cache = c
	}

	builder, err := dataset.NewBuilder(dataset.BuilderOptions{
		Loader:    cfg.Audio.Loader(),
		Features:  cfg.Features,
		Synthetic: cfg.Synthetic,
		Cache:     cache,
		Logger:    p.log,
	})
	if err != nil {
		return nil, err
	}
	ds, err := builder.Build(ctx, cfg.Sources)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: sources %v: %w", cfg.Sources.Positive, err)
	}

	train, test, err := dataset.Split(ds, cfg.Split.Strategy, cfg.Split.Ratio)
	if err != nil {
		return nil, err
	}
	p.log.Info("dataset split", "strategy", cfg.Split.Strategy, "train", train.Len(), "test", test.Len())

	frames, coeffs := ds.Shape()
	net, err := model.New(model.InputShape(frames, coeffs), cfg.Model.Seed)
	if err != nil {
		return nil, err
	}
	p.log.Info("model built", "input", net.InputShape(), "params", net.CountParams())

	tr, err := trainer.New(cfg.Train, p.log)
	if err != nil {
		return nil, err
	}
	history, err := tr.Fit(ctx, net, train, test)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Examples: ds.Counts(),
		Train:    train.Counts(),
		Test:     test.Counts(),
		Frames:   frames,
		Coeffs:   coeffs,
		Params:   net.CountParams(),
		History:  history,
	}
	if test.Len() > 0 {
		m, err := trainer.Evaluate(net, test)
		if err != nil {
			return nil, err
		}
		res.Metrics = &m
		p.log.Info("test evaluation", "loss", m.Loss, "accuracy", m.Accuracy, "precision", m.Precision, "recall", m.Recall)
	} else {
		p.log.Warn("test partition is empty; skipping evaluation")
	}

	f, err := model.Snapshot(net, model.Features{
		SampleRate:  cfg.Audio.SampleRate,
		DurationMS:  int64(cfg.Audio.DurationMS),
		NumCoeffs:   cfg.Features.NumCoeffs,
		Fingerprint: builder.Fingerprint(),
	})
	if err != nil {
		return nil, err
	}
	if res.Metrics != nil {
		f.Metrics = res.Metrics.Map()
	}
	res.RunID = f.RunID

	converter := p.converter
	if converter == nil {
		converter = newConverter(cfg.Output.Converter)
	}
	exp := &export.Exporter{
		Store:      store,
		Converter:  converter,
		Names:      cfg.Output.Names,
		StagingDir: cfg.Output.StagingDir,
		Logger:     p.log,
	}
	arts, err := exp.Export(ctx, f)
	if err != nil {
		return nil, err
	}
	res.Artifacts = arts
	res.Duration = time.Since(start)
	return res, nil
}

func newConverter(c Converter) export.Converter {
	if c.Kind == ConverterBuiltin {
		return &export.Builtin{Options: tfjs.Options{GeneratedBy: "wakeword", ConvertedBy: "wakeword builtin converter"}}
	}
	return &export.Exec{Command: c.Command, Args: c.Args}
}
