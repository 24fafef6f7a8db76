package tfjs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/wakeword/pkg/model"
)

func snapshot(t *testing.T) *model.File {
	t.Helper()
	net, err := model.New(model.InputShape(32, 40), 1)
	if err != nil {
		t.Fatal(err)
	}
	f, err := model.Snapshot(net, model.Features{SampleRate: 16000, DurationMS: 1000, NumCoeffs: 40})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestWriteRead(t *testing.T) {
	f := snapshot(t)
	dir := filepath.Join(t.TempDir(), "friday-tfjs-model")
	if err := Write(dir, f, Options{GeneratedBy: "test"}); err != nil {
		t.Fatal(err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model.Format != "layers-model" || got.Model.ModelTopology.ClassName != "Sequential" {
		t.Fatalf("header = %q / %q", got.Model.Format, got.Model.ModelTopology.ClassName)
	}
	if paths := got.Model.WeightsManifest[0].Paths; len(paths) != 1 || paths[0] != "group1-shard1of1.bin" {
		t.Fatalf("paths = %v", paths)
	}
	layers := got.Model.ModelTopology.Config.Layers
	if len(layers) != 8 || layers[0].ClassName != "Conv2D" || layers[7].ClassName != "Dense" {
		t.Fatalf("layers = %+v", layers)
	}
	shape, ok := layers[0].Config["batch_input_shape"].([]any)
	if !ok || len(shape) != 4 || shape[0] != nil || shape[1] != float64(32) || shape[2] != float64(40) {
		t.Fatalf("batch_input_shape = %v", layers[0].Config["batch_input_shape"])
	}

	if len(got.Weights) != len(f.Weights) {
		t.Fatalf("%d weights, want %d", len(got.Weights), len(f.Weights))
	}
	for _, w := range f.Weights {
		vals := got.Weights[w.Name]
		if len(vals) != len(w.Data) {
			t.Fatalf("%s: %d values, want %d", w.Name, len(vals), len(w.Data))
		}
		for i := range vals {
			if vals[i] != w.Data[i] {
				t.Fatalf("%s[%d] = %v, want %v", w.Name, i, vals[i], w.Data[i])
			}
		}
	}
}

func TestWriteShards(t *testing.T) {
	f := snapshot(t)
	dir := t.TempDir()
	const shard = 256 << 10
	if err := Write(dir, f, Options{ShardSize: shard}); err != nil {
		t.Fatal(err)
	}
	total := 4 * f.CountParams()
	want := (total + shard - 1) / shard

	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	paths := got.Model.WeightsManifest[0].Paths
	if len(paths) != want {
		t.Fatalf("%d shards, want %d", len(paths), want)
	}
	var size int64
	for _, p := range paths {
		fi, err := os.Stat(filepath.Join(dir, p))
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() > shard {
			t.Fatalf("%s is %d bytes, over %d", p, fi.Size(), shard)
		}
		size += fi.Size()
	}
	if size != int64(total) {
		t.Fatalf("shards hold %d bytes, want %d", size, total)
	}
	last := f.Weights[len(f.Weights)-1]
	if got.Weights[last.Name][0] != last.Data[0] {
		t.Fatal("weight across shard boundary corrupted")
	}
}

func TestModelJSONKeys(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, snapshot(t), Options{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"format", "modelTopology", "weightsManifest"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("model.json missing %q", key)
		}
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(t.TempDir()); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not exist", err)
	}
}

func TestReadTruncatedShard(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, snapshot(t), Options{}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "group1-shard1of1.bin"), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(dir); err == nil {
		t.Fatal("expected error for truncated shard")
	}
}
