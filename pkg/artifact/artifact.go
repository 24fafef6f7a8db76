// Package artifact stores training outputs: the native model file and the
// converted TF.js model directory.
//
// A Store is addressed by forward-slash names relative to its root. Local
// stores write under a filesystem directory; S3 stores write objects under a
// bucket prefix, so a run can publish straight to the bucket a web app
// serves models from.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that are absolute, empty, or step
// outside the store root.
var ErrInvalidName = errors.New("artifact: invalid name")

func checkName(name string) error {
	if !fs.ValidPath(name) || name == "." {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return nil
}

// Store is a minimal file-oriented artifact store.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Create opens name for writing, truncating any existing artifact.
	// Parent directories are created automatically. The caller must close
	// the writer to flush data.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Open opens name for reading. A missing artifact returns an error
	// wrapping os.ErrNotExist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Remove deletes name. Removing a missing artifact is not an error.
	Remove(ctx context.Context, name string) error

	// URI returns a human-readable location for name.
	URI(name string) string
}

// S3Options configures S3 stores created by New.
type S3Options struct {
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"-"`
	UsePathStyle    bool   `yaml:"use_path_style,omitempty" json:"use_path_style,omitempty"`
}

// New returns the store for uri: "s3://bucket/prefix" for S3, "file:///dir"
// or a plain path for the local filesystem.
func New(uri string, opts S3Options) (Store, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("artifact: %q has no bucket", uri)
		}
		return NewS3(newS3Client(opts), bucket, strings.Trim(prefix, "/")), nil
	case strings.HasPrefix(uri, "file://"):
		return NewLocal(strings.TrimPrefix(uri, "file://"))
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("artifact: unsupported scheme in %q", uri)
	}
	return NewLocal(uri)
}

// Publish copies the file or directory tree at local into store under
// name. Directory contents keep their relative layout.
func Publish(ctx context.Context, store Store, local, name string) error {
	fi, err := os.Stat(local)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return publishFile(ctx, store, local, name)
	}
	return filepath.WalkDir(local, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(local, p)
		if err != nil {
			return err
		}
		return publishFile(ctx, store, p, path.Join(name, filepath.ToSlash(rel)))
	})
}

func publishFile(ctx context.Context, store Store, local, name string) error {
	in, err := os.Open(local)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("artifact: create %s: %w", name, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("artifact: write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("artifact: write %s: %w", name, err)
	}
	return nil
}
