package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/pipeline"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakeword.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := pipeline.DefaultConfig()
	if cfg.Train != def.Train || cfg.Audio != def.Audio {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeFile(t, `
sources:
  positive: [a, b]
  negative: [noise]
split:
  strategy: ordinal
train:
  epochs: 5
output:
  uri: s3://models/friday
  converter:
    kind: builtin
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Sources.Positive; len(got) != 2 || got[1] != "b" {
		t.Errorf("positive = %v", got)
	}
	if cfg.Split.Strategy != dataset.Ordinal {
		t.Errorf("strategy = %q", cfg.Split.Strategy)
	}
	if cfg.Split.Ratio != dataset.DefaultRatio {
		t.Errorf("ratio = %v, want default %v", cfg.Split.Ratio, dataset.DefaultRatio)
	}
	if cfg.Train.Epochs != 5 || cfg.Train.BatchSize != 32 {
		t.Errorf("train = %+v", cfg.Train)
	}
	if cfg.Output.Names.Model != "friday-wake-word-model.msgpack" {
		t.Errorf("names lost defaults: %+v", cfg.Output.Names)
	}
	if cfg.Output.Converter.Kind != pipeline.ConverterBuiltin {
		t.Errorf("converter = %q", cfg.Output.Converter.Kind)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Features.NumCoeffs != 40 {
		t.Errorf("num_coeffs = %d, want 40", cfg.Features.NumCoeffs)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown top-level key", "model_name: friday\n"},
		{"unknown nested key", "train:\n  epoch: 5\n"},
		{"wrong type", "train:\n  epochs: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := pipeline.DefaultConfig()
	cfg.Train.Epochs = 7
	cfg.Sources.Negative = []string{"kitchen"}
	if err := Write(path, cfg, false); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Train.Epochs != 7 || len(got.Sources.Negative) != 1 {
		t.Errorf("round trip = %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("round-tripped config invalid: %v", err)
	}

	err = Write(path, cfg, false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Write over existing = %v", err)
	}
	if err := Write(path, cfg, true); err != nil {
		t.Errorf("Write force: %v", err)
	}
}
