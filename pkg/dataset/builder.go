package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haivivi/wakeword/pkg/audio/loader"
	"github.com/haivivi/wakeword/pkg/audio/mfcc"
	"github.com/haivivi/wakeword/pkg/featcache"
)

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	Loader    loader.Config
	Features  mfcc.Config
	Synthetic Synthetic

	// Cache, if set, stores feature matrices across runs.
	Cache featcache.Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Builder loads recordings, extracts features and labels them.
type Builder struct {
	loader    *loader.Loader
	extractor *mfcc.Extractor
	synthetic Synthetic
	cache     featcache.Store
	log       *slog.Logger
}

// NewBuilder validates opts and returns a Builder.
func NewBuilder(opts BuilderOptions) (*Builder, error) {
	if opts.Loader.SampleRate != opts.Features.SampleRate {
		return nil, fmt.Errorf("dataset: loader rate %d Hz does not match feature rate %d Hz",
			opts.Loader.SampleRate, opts.Features.SampleRate)
	}
	if err := opts.Synthetic.Validate(); err != nil {
		return nil, err
	}
	ld, err := loader.New(opts.Loader)
	if err != nil {
		return nil, err
	}
	ex, err := mfcc.New(opts.Features)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		loader:    ld,
		extractor: ex,
		synthetic: opts.Synthetic,
		cache:     opts.Cache,
		log:       logger,
	}, nil
}

// Fingerprint identifies the waveform and feature settings. Matrices built
// with equal fingerprints are interchangeable.
func (b *Builder) Fingerprint() string {
	cfg := b.loader.Config()
	return fmt.Sprintf("wave:sr=%d:dur=%s/%s", cfg.SampleRate, cfg.Duration, b.extractor.Config().Fingerprint())
}

// Features returns the MFCC matrix of the recording at path.
func (b *Builder) Features(ctx context.Context, path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var key featcache.Key
	if b.cache != nil {
		key = featcache.KeyFor(data, b.Fingerprint())
		m, err := b.cache.Get(ctx, key)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, featcache.ErrNotFound) {
			b.log.Warn("feature cache read failed", "path", path, "error", err)
		}
	}

	wave, err := b.loader.Decode(bytes.NewReader(data), int64(len(data)), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := b.extractor.Extract(wave)

	if b.cache != nil {
		if err := b.cache.Put(ctx, key, m); err != nil {
			b.log.Warn("feature cache write failed", "path", path, "error", err)
		}
	}
	return m, nil
}

// Build loads every source and returns the labelled dataset: positives in
// source order, then real negatives, then Synthetic.PerPositive noise clips
// for each positive. Any unreadable file aborts the build.
//
// An empty positive source yields an empty dataset, not an error; callers
// that need examples check Len or Validate.
func (b *Builder) Build(ctx context.Context, src Sources) (*Dataset, error) {
	positives, negatives, err := src.Resolve()
	if err != nil {
		return nil, err
	}
	b.log.Info("building dataset", "positive_files", len(positives), "negative_files", len(negatives))

	ds := &Dataset{Examples: make([]Example, 0, len(positives)*(1+b.synthetic.PerPositive)+len(negatives))}
	if err := b.appendFiles(ctx, ds, positives, Positive); err != nil {
		return nil, err
	}
	if err := b.appendFiles(ctx, ds, negatives, Negative); err != nil {
		return nil, err
	}

	gen := b.synthetic.NewGenerator()
	n := b.loader.Config().TargetLength()
	for i := 0; i < len(positives)*b.synthetic.PerPositive; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds.Append(Example{
			Features: b.extractor.Extract(gen.Next(n)),
			Label:    Negative,
			Source:   fmt.Sprintf("synthetic:%d", i),
		})
	}

	counts := ds.Counts()
	frames, coeffs := ds.Shape()
	b.log.Info("dataset built",
		"examples", ds.Len(),
		"positive", counts.Positive,
		"negative", counts.Negative,
		"frames", frames,
		"coeffs", coeffs)
	return ds, nil
}

func (b *Builder) appendFiles(ctx context.Context, ds *Dataset, files []string, label Label) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := b.Features(ctx, path)
		if err != nil {
			return fmt.Errorf("dataset: load %s example: %w", label, err)
		}
		b.log.Debug("loaded", "path", path, "label", label)
		ds.Append(Example{Features: m, Label: label, Source: path})
	}
	return nil
}
