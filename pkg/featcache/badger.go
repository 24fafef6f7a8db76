package featcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger warnings and errors. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewBadger opens a BadgerDB-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("featcache: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(slogLogger{logger.With("component", "badger")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("featcache: open %s: %w", opts.Dir, err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([][]float32, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key.String()))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(val)
}

func (b *Badger) Put(_ context.Context, key Key, features [][]float32) error {
	val, err := encode(features)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key.String()), val)
	})
}

// keys returns every stored key. Values are not read.
func (b *Badger) keys() ([]Key, error) {
	var keys []Key
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			k, err := ParseKey(string(it.Item().Key()))
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return nil
	})
	return keys, err
}

func (b *Badger) Stats(context.Context) (Stats, error) {
	keys, err := b.keys()
	if err != nil {
		return nil, err
	}
	st := make(Stats)
	for _, k := range keys {
		st[k.Fingerprint]++
	}
	return st, nil
}

func (b *Badger) Prune(ctx context.Context, keep string) (int, error) {
	if keep == "" {
		st, err := b.Stats(ctx)
		if err != nil {
			return 0, err
		}
		return st.Total(), b.db.DropAll()
	}
	keys, err := b.keys()
	if err != nil {
		return 0, err
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	n := 0
	for _, k := range keys {
		if k.Fingerprint == keep {
			continue
		}
		if err := wb.Delete([]byte(k.String())); err != nil {
			return 0, err
		}
		n++
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// slogLogger routes badger messages to slog, dropping debug and info
// chatter.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Errorf(f string, v ...interface{}) {
	s.l.Error(fmt.Sprintf(f, v...))
}

func (s slogLogger) Warningf(f string, v ...interface{}) {
	s.l.Warn(fmt.Sprintf(f, v...))
}

func (slogLogger) Infof(string, ...interface{})  {}
func (slogLogger) Debugf(string, ...interface{}) {}

var _ Store = (*Badger)(nil)
