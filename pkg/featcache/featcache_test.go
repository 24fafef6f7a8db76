package featcache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/haivivi/wakeword/pkg/featcache"
)

func newBadgerStore(t *testing.T) featcache.Store {
	t.Helper()
	s, err := featcache.NewBadger(featcache.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func matrix(rows, cols int) [][]float32 {
	m := make([][]float32, rows)
	for i := range m {
		m[i] = make([]float32, cols)
		for j := range m[i] {
			m[i][j] = float32(i*cols+j) * 0.5
		}
	}
	return m
}

func testStore(t *testing.T, s featcache.Store) {
	ctx := context.Background()
	key := featcache.KeyFor([]byte("RIFF...."), "mfcc2:n=40")

	if _, err := s.Get(ctx, key); !errors.Is(err, featcache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := matrix(32, 40)
	if err := s.Put(ctx, key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 32 || len(got[0]) != 40 {
		t.Fatalf("shape = %dx%d, want 32x40", len(got), len(got[0]))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}

	// Same content under another fingerprint is a different entry.
	other := featcache.KeyFor([]byte("RIFF...."), "mfcc2:n=13")
	if _, err := s.Get(ctx, other); !errors.Is(err, featcache.ErrNotFound) {
		t.Fatalf("fingerprint not part of key: %v", err)
	}

	// Overwrite.
	if err := s.Put(ctx, key, matrix(2, 3)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if len(got) != 2 || len(got[0]) != 3 {
		t.Fatalf("shape after overwrite = %dx%d, want 2x3", len(got), len(got[0]))
	}
}

func testPrune(t *testing.T, s featcache.Store) {
	ctx := context.Background()
	const current, stale = "wave:sr=16000:dur=1s/mfcc2:n=40", "wave:sr=16000:dur=1s/mfcc1:n=40"
	for i, clip := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, featcache.KeyFor([]byte(clip), current), matrix(1, 1)); err != nil {
			t.Fatal(err)
		}
		if i < 2 {
			if err := s.Put(ctx, featcache.KeyFor([]byte(clip), stale), matrix(1, 1)); err != nil {
				t.Fatal(err)
			}
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st[current] != 3 || st[stale] != 2 || st.Total() != 5 {
		t.Fatalf("stats = %v", st)
	}

	n, err := s.Prune(ctx, current)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	if _, err := s.Get(ctx, featcache.KeyFor([]byte("a"), current)); err != nil {
		t.Fatalf("current entry pruned: %v", err)
	}
	if _, err := s.Get(ctx, featcache.KeyFor([]byte("a"), stale)); !errors.Is(err, featcache.ErrNotFound) {
		t.Fatalf("stale entry survived: %v", err)
	}

	if n, err := s.Prune(ctx, ""); err != nil || n != 3 {
		t.Fatalf("clear = %d, %v; want 3", n, err)
	}
	if st, _ := s.Stats(ctx); st.Total() != 0 {
		t.Fatalf("stats after clear = %v", st)
	}
}

func TestBadger(t *testing.T) {
	testStore(t, newBadgerStore(t))
	testPrune(t, newBadgerStore(t))
}

func TestMemory(t *testing.T) {
	testStore(t, featcache.NewMemory())
	testPrune(t, featcache.NewMemory())
}

func TestParseKey(t *testing.T) {
	k := featcache.KeyFor([]byte("abc"), "wave:sr=16000/mfcc2:n=40")
	got, err := featcache.ParseKey(k.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != k {
		t.Fatalf("ParseKey(%q) = %+v, want %+v", k.String(), got, k)
	}
	if _, err := featcache.ParseKey("no-slash"); err == nil {
		t.Fatal("expected error for key without separator")
	}
}

func TestBadgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := featcache.KeyFor([]byte("clip"), "fp")

	s, err := featcache.NewBadger(featcache.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := s.Put(ctx, key, matrix(4, 4)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = featcache.NewBadger(featcache.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got[3][3] != matrix(4, 4)[3][3] {
		t.Fatalf("value after reopen = %v", got[3][3])
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := featcache.NewBadger(featcache.BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}

func TestRaggedMatrix(t *testing.T) {
	s := featcache.NewMemory()
	err := s.Put(context.Background(), featcache.Key{Digest: "d"}, [][]float32{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected error for ragged matrix")
	}
}

func TestKeyFor(t *testing.T) {
	a := featcache.KeyFor([]byte("abc"), "fp")
	b := featcache.KeyFor([]byte("abc"), "fp")
	c := featcache.KeyFor([]byte("abd"), "fp")
	if a != b {
		t.Fatal("same input produced different keys")
	}
	if a == c {
		t.Fatal("different content produced the same key")
	}
	const sha = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if a.Digest != sha {
		t.Fatalf("digest = %s, want %s", a.Digest, sha)
	}
}
