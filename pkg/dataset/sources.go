package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/haivivi/wakeword/pkg/audio/loader"
)

// Sources lists where positive and negative recordings come from. Each entry
// is either a directory, scanned non-recursively in name order, or a single
// file used as-is.
type Sources struct {
	Positive []string `yaml:"positive" json:"positive"`
	Negative []string `yaml:"negative,omitempty" json:"negative,omitempty"`

	// Extensions limits directory scans to these file extensions
	// (case-insensitive, with leading dot). Empty means DefaultExtensions.
	// Files named directly are always used.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// DefaultExtensions returns the extensions scanned when Sources.Extensions
// is empty. Other formats the loader decodes, such as ".mp3", must be listed
// explicitly.
func DefaultExtensions() []string { return []string{".wav"} }

// Resolve expands directories into file lists.
func (s Sources) Resolve() (positive, negative []string, err error) {
	if positive, err = s.expand(s.Positive); err != nil {
		return nil, nil, err
	}
	if negative, err = s.expand(s.Negative); err != nil {
		return nil, nil, err
	}
	return positive, negative, nil
}

func (s Sources) expand(entries []string) ([]string, error) {
	var files []string
	for _, entry := range entries {
		fi, err := os.Stat(entry)
		if err != nil {
			return nil, fmt.Errorf("dataset: source: %w", err)
		}
		if !fi.IsDir() {
			files = append(files, entry)
			continue
		}
		dirEntries, err := os.ReadDir(entry)
		if err != nil {
			return nil, fmt.Errorf("dataset: source: %w", err)
		}
		// os.ReadDir returns entries sorted by filename.
		for _, de := range dirEntries {
			if de.IsDir() || !s.accepts(de.Name()) {
				continue
			}
			files = append(files, filepath.Join(entry, de.Name()))
		}
	}
	return files, nil
}

func (s Sources) accepts(name string) bool {
	if !loader.Supported(name) {
		return false
	}
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}
