package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func readAll(t *testing.T, s Store, name string) string {
	t.Helper()
	r, err := s.Open(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestLocalCreateAndOpen(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	w, err := s.Create(ctx, "friday-tfjs-model/model.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "{}"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, s, "friday-tfjs-model/model.json"); got != "{}" {
		t.Fatalf("got %q", got)
	}
	if want := filepath.Join(s.Root(), "friday-tfjs-model", "model.json"); s.URI("friday-tfjs-model/model.json") != want {
		t.Fatalf("URI = %s, want %s", s.URI("friday-tfjs-model/model.json"), want)
	}
}

func TestLocalOpenNotExist(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Open(context.Background(), "no-such-file")
	if !os.IsNotExist(err) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLocalExistsAndRemove(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "dir/a.bin")
	if err != nil || ok {
		t.Fatalf("Exists before create = %v, %v", ok, err)
	}
	w, err := s.Create(ctx, "dir/a.bin")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if ok, _ := s.Exists(ctx, "dir/a.bin"); !ok {
		t.Fatal("expected file to exist")
	}

	if err := s.Remove(ctx, "dir"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "dir/a.bin"); ok {
		t.Fatal("expected directory removal to remove contents")
	}
	if err := s.Remove(ctx, "ghost"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
}

func TestLocalCreateIsAtomic(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	w, err := s.Create(ctx, "model.msgpack")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "partial")
	if ok, _ := s.Exists(ctx, "model.msgpack"); ok {
		t.Fatal("artifact visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, s, "model.msgpack"); got != "partial" {
		t.Fatalf("got %q", got)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("root holds %d entries, want only the artifact", len(entries))
	}
}

func TestLocalRejectsEscapingNames(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	for _, name := range []string{"../outside", "/abs/path", "", "a/../../b"} {
		if _, err := s.Create(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create(%q) err = %v, want ErrInvalidName", name, err)
		}
		if _, err := s.Exists(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Exists(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestNewLocalCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := NewLocal(dir); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestPublishTree(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"model.json":           `{"format":"layers-model"}`,
		"group1-shard1of1.bin": "\x00\x00\x80\x3f",
		"sub/extra.txt":        "x",
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(src, filepath.FromSlash(name)), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := newTestLocal(t)
	if err := Publish(context.Background(), s, src, "friday-tfjs-model"); err != nil {
		t.Fatal(err)
	}
	for name, want := range files {
		if got := readAll(t, s, "friday-tfjs-model/"+name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestPublishFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "model.msgpack")
	if err := os.WriteFile(src, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, _ := newTestS3(t)
	if err := Publish(context.Background(), store, src, "friday-wake-word-model.msgpack"); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, store, "friday-wake-word-model.msgpack"); got != "weights" {
		t.Fatalf("got %q", got)
	}
	if err := Publish(context.Background(), store, filepath.Join(t.TempDir(), "missing"), "x"); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not exist", err)
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		uri     string
		wantErr bool
		check   func(Store) bool
	}{
		{uri: dir, check: func(s Store) bool { l, ok := s.(*Local); return ok && l.Root() == dir }},
		{uri: "file://" + dir, check: func(s Store) bool { _, ok := s.(*Local); return ok }},
		{uri: "s3://models/wakeword/friday", check: func(s Store) bool {
			return s.URI("model.json") == "s3://models/wakeword/friday/model.json"
		}},
		{uri: "s3://models", check: func(s Store) bool { return s.URI("a") == "s3://models/a" }},
		{uri: "s3:///prefix", wantErr: true},
		{uri: "gs://bucket", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			s, err := New(tt.uri, S3Options{Region: "us-west-2"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(s) {
				t.Fatalf("unexpected store %#v", s)
			}
		})
	}
}
