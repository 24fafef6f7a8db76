package cli

import (
	"os"
	"path/filepath"
)

// DefaultBaseDir is the per-user directory name under $HOME.
const DefaultBaseDir = ".wakeword"

// Paths provides access to the per-user wakeword directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a Paths for the current user
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.wakeword)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// CacheDir returns the cache directory (~/.wakeword/cache)
func (p *Paths) CacheDir() string {
	return filepath.Join(p.BaseDir(), "cache")
}

// FeatureCacheDir returns the feature cache database directory
// (~/.wakeword/cache/features)
func (p *Paths) FeatureCacheDir() string {
	return filepath.Join(p.CacheDir(), "features")
}

// StagingDir returns the directory for intermediate export files
// (~/.wakeword/staging/<run>)
func (p *Paths) StagingDir(run string) string {
	return filepath.Join(p.BaseDir(), "staging", run)
}
