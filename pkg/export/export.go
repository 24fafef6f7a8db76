// Package export persists a trained model and transcodes it to the TF.js
// layers format.
//
// Transcoding is delegated to a Converter. Exec runs an external converter
// process and reports any failure as a *ConversionError wrapping
// ErrConversionFailed; Builtin converts in-process.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haivivi/wakeword/pkg/artifact"
	"github.com/haivivi/wakeword/pkg/model"
)

// ErrConversionFailed is wrapped by every converter failure.
var ErrConversionFailed = errors.New("export: conversion failed")

// ConversionError describes a failed conversion.
type ConversionError struct {
	Command  string // command line, empty for in-process conversion
	ExitCode int    // process exit status; -1 if the process never ran
	Output   string // combined stdout and stderr
	Err      error
}

func (e *ConversionError) Error() string {
	msg := ErrConversionFailed.Error()
	if e.Command != "" {
		msg += fmt.Sprintf(": %s", e.Command)
	}
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversionFailed}
	}
	return []error{ErrConversionFailed, e.Err}
}

// Converter turns the native model file at src into a TF.js model
// directory at dstDir.
type Converter interface {
	Convert(ctx context.Context, src, dstDir string) error
}

// Names are the artifact names of an export.
type Names struct {
	Model string `yaml:"model" json:"model"` // native model file
	TFJS  string `yaml:"tfjs" json:"tfjs"`   // TF.js model directory
}

// DefaultNames returns the names used by the browser demo.
func DefaultNames() Names {
	return Names{
		Model: "friday-wake-word-model.msgpack",
		TFJS:  "friday-tfjs-model",
	}
}

// Artifacts are the published locations of an export.
type Artifacts struct {
	Model string `yaml:"model" json:"model"`
	TFJS  string `yaml:"tfjs" json:"tfjs"`
}

// Exporter stages, converts and publishes models.
type Exporter struct {
	Store     artifact.Store
	Converter Converter
	Names     Names

	// StagingDir holds intermediate files. Empty uses a temporary directory
	// that is removed afterwards.
	StagingDir string

	Logger *slog.Logger
}

// Export writes f in the native format, converts it, and publishes both
// results to the store. Any failure aborts the export; nothing is retried.
func (e *Exporter) Export(ctx context.Context, f *model.File) (*Artifacts, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	names := e.Names
	if names.Model == "" || names.TFJS == "" {
		names = DefaultNames()
	}

	staging := e.StagingDir
	if staging == "" {
		dir, err := os.MkdirTemp("", "wakeword-export-*")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		staging = dir
	} else if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, err
	}

	modelPath := filepath.Join(staging, names.Model)
	if err := model.Save(modelPath, f); err != nil {
		return nil, fmt.Errorf("export: save model: %w", err)
	}
	logger.Info("model saved", "path", modelPath, "params", f.CountParams())

	tfjsDir := filepath.Join(staging, names.TFJS)
	if err := os.RemoveAll(tfjsDir); err != nil {
		return nil, err
	}
	if err := e.Converter.Convert(ctx, modelPath, tfjsDir); err != nil {
		return nil, err
	}
	logger.Info("model converted", "dir", tfjsDir)

	if err := artifact.Publish(ctx, e.Store, modelPath, names.Model); err != nil {
		return nil, fmt.Errorf("export: publish model: %w", err)
	}
	if err := artifact.Publish(ctx, e.Store, tfjsDir, names.TFJS); err != nil {
		return nil, fmt.Errorf("export: publish tfjs model: %w", err)
	}
	out := &Artifacts{Model: e.Store.URI(names.Model), TFJS: e.Store.URI(names.TFJS)}
	logger.Info("artifacts published", "model", out.Model, "tfjs", out.TFJS)
	return out, nil
}
