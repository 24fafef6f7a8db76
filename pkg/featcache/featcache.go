// Package featcache caches MFCC matrices keyed by audio content and feature
// configuration.
//
// A cache entry is addressed by the SHA-256 digest of the source file bytes
// together with the fingerprint of the loader and extractor settings that
// produced it, so editing a recording or changing any feature parameter
// misses the cache instead of returning stale features.
//
// The package includes a BadgerDB-backed implementation for reuse across
// training runs and an in-memory implementation for tests.
package featcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when a key has no cached features.
var ErrNotFound = errors.New("featcache: not found")

// Key addresses one cached feature matrix.
type Key struct {
	Digest      string // hex SHA-256 of the source bytes
	Fingerprint string // feature configuration fingerprint
}

// KeyFor returns the key for data extracted with the given fingerprint.
func KeyFor(data []byte, fingerprint string) Key {
	sum := sha256.Sum256(data)
	return Key{Digest: hex.EncodeToString(sum[:]), Fingerprint: fingerprint}
}

// String returns the storage form of the key.
func (k Key) String() string {
	return k.Fingerprint + "/" + k.Digest
}

// ParseKey is the inverse of Key.String. Fingerprints may contain slashes;
// digests never do.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return Key{}, fmt.Errorf("featcache: malformed key %q", s)
	}
	return Key{Fingerprint: s[:i], Digest: s[i+1:]}, nil
}

// Stats maps each fingerprint to its number of cached matrices.
type Stats map[string]int

// Total returns the number of entries across all fingerprints.
func (s Stats) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Store persists feature matrices.
type Store interface {
	// Get returns the cached matrix for key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([][]float32, error)

	// Put stores a matrix, overwriting any existing entry.
	Put(ctx context.Context, key Key, features [][]float32) error

	// Stats counts entries per fingerprint.
	Stats(ctx context.Context) (Stats, error)

	// Prune deletes every entry whose fingerprint is not keep and returns
	// how many were removed. An empty keep clears the store.
	Prune(ctx context.Context, keep string) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// entry is the msgpack wire form of a matrix: row-major data plus its
// dimensions.
type entry struct {
	Rows int       `msgpack:"r"`
	Cols int       `msgpack:"c"`
	Data []float32 `msgpack:"d"`
}

func encode(features [][]float32) ([]byte, error) {
	e := entry{Rows: len(features)}
	if e.Rows > 0 {
		e.Cols = len(features[0])
	}
	e.Data = make([]float32, 0, e.Rows*e.Cols)
	for i, row := range features {
		if len(row) != e.Cols {
			return nil, fmt.Errorf("featcache: ragged matrix: row %d has %d columns, want %d", i, len(row), e.Cols)
		}
		e.Data = append(e.Data, row...)
	}
	return msgpack.Marshal(&e)
}

func decode(b []byte) ([][]float32, error) {
	var e entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("featcache: decode: %w", err)
	}
	if e.Rows < 0 || e.Cols < 0 || len(e.Data) != e.Rows*e.Cols {
		return nil, fmt.Errorf("featcache: corrupt entry (%dx%d, %d values)", e.Rows, e.Cols, len(e.Data))
	}
	out := make([][]float32, e.Rows)
	for i := range out {
		out[i] = e.Data[i*e.Cols : (i+1)*e.Cols : (i+1)*e.Cols]
	}
	return out, nil
}
