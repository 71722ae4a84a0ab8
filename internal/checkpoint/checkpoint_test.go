package checkpoint

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/metrics"
	"github.com/born-ml/asp/internal/safetensors"
	"github.com/born-ml/asp/internal/tensor"
)

func randomEntry(t *testing.T, seed int64, shape ...int) safetensors.Entry {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, tensor.Shape(shape).NumElements())
	for i := range data {
		data[i] = float32(rng.Float64()) + 0.01
	}
	w, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return safetensors.EncodeFloat32(w)
}

func testCheckpoint(t *testing.T) map[string]safetensors.Entry {
	t.Helper()
	return map[string]safetensors.Entry{
		"encoder.fc1.weight":  randomEntry(t, 1, 16, 8),
		"encoder.fc1.bias":    randomEntry(t, 2, 16),
		"encoder.conv.weight": randomEntry(t, 3, 8, 8, 3, 3),
		"encoder.head.weight": randomEntry(t, 4, 2, 16),
		"norm.weight":         randomEntry(t, 5, 16),
		"embed.weight":        {DType: safetensors.I32, Shape: []int{4, 4}, Data: make([]byte, 64)},
	}
}

type fakeRecorder struct {
	mu  sync.Mutex
	got map[metrics.Outcome]int
}

func (f *fakeRecorder) ObserveParam(_ string, outcome metrics.Outcome, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.got == nil {
		f.got = make(map[metrics.Outcome]int)
	}
	f.got[outcome]++
}

func outcomes(results []Result) map[string]metrics.Outcome {
	out := make(map[string]metrics.Outcome, len(results))
	for _, r := range results {
		out[r.Name] = r.Outcome
	}
	return out
}

func TestPrune(t *testing.T) {
	rec := &fakeRecorder{}
	p, err := NewPruner(asp.NewRegistry(), Options{Prune: asp.DefaultPruneConfig(), Recorder: rec})
	require.NoError(t, err)

	entries := testCheckpoint(t)
	out, masks, results, err := p.Prune(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, map[string]metrics.Outcome{
		"encoder.conv.weight": metrics.Pruned,
		"encoder.fc1.weight":  metrics.Pruned,
		"encoder.head.weight": metrics.Skipped,
		"embed.weight":        metrics.Excluded,
	}, outcomes(results))
	assert.Equal(t, "embed.weight", results[0].Name, "results are sorted")
	assert.Equal(t, map[metrics.Outcome]int{metrics.Pruned: 2, metrics.Skipped: 1, metrics.Excluded: 1}, rec.got)

	assert.Len(t, out, len(entries))
	assert.Equal(t, entries["encoder.fc1.bias"], out["encoder.fc1.bias"])
	assert.Equal(t, entries["embed.weight"], out["embed.weight"])
	assert.Len(t, masks, 3)
	assert.Contains(t, masks, "encoder.fc1.weight"+MaskSuffix)

	for _, name := range []string{"encoder.fc1.weight", "encoder.conv.weight"} {
		w, err := safetensors.DecodeFloat32(out[name])
		require.NoError(t, err)
		assert.InDelta(t, 0.5, asp.Density(w), 1e-9, name)
		ok, err := asp.CheckPruned(w, asp.Check1D, 2, 4)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}

func TestPruneExclude(t *testing.T) {
	cfg := asp.DefaultPruneConfig()
	p, err := NewPruner(asp.NewRegistry(), Options{Prune: cfg, Exclude: []string{"encoder.conv.*"}})
	require.NoError(t, err)

	entries := testCheckpoint(t)
	out, _, results, err := p.Prune(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, metrics.Excluded, outcomes(results)["encoder.conv.weight"])
	assert.Equal(t, entries["encoder.conv.weight"], out["encoder.conv.weight"])
}

func TestPruneRegistryResolution(t *testing.T) {
	reg := asp.NewRegistry()
	calls := make(chan string, 4)
	keep := asp.CustomPruner(func(_ context.Context, w *tensor.Tensor[float32], _, _ int, _ asp.MaskAlgo, name string) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
		calls <- name
		return w.Clone(), tensor.OnesLike(w), nil
	})
	require.NoError(t, reg.Register(asp.LayerName("encoder.fc1.weight"), keep))

	p, err := NewPruner(reg, Options{Prune: asp.DefaultPruneConfig()})
	require.NoError(t, err)
	_, _, results, err := p.Prune(context.Background(), testCheckpoint(t))
	require.NoError(t, err)

	close(calls)
	var names []string
	for name := range calls {
		names = append(names, name)
	}
	assert.Equal(t, []string{"encoder.fc1.weight"}, names)
	assert.Equal(t, metrics.Skipped, outcomes(results)["encoder.fc1.weight"])
	assert.Equal(t, metrics.Pruned, outcomes(results)["encoder.conv.weight"])
}

func TestPruneFailure(t *testing.T) {
	reg := asp.NewRegistry()
	boom := errors.New("boom")
	require.NoError(t, reg.Register(asp.LayerName("conv2d"), asp.CustomPruner(
		func(context.Context, *tensor.Tensor[float32], int, int, asp.MaskAlgo, string) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
			return nil, nil, boom
		})))

	p, err := NewPruner(reg, Options{Prune: asp.DefaultPruneConfig()})
	require.NoError(t, err)
	_, _, _, err = p.Prune(context.Background(), testCheckpoint(t))
	assert.ErrorIs(t, err, boom)
}

func TestNewPrunerErrors(t *testing.T) {
	reg := asp.NewRegistry()

	_, err := NewPruner(reg, Options{Prune: asp.PruneConfig{N: 3, M: 2, Algo: asp.Mask1D}})
	assert.ErrorIs(t, err, asp.ErrInvalidPattern)

	_, err = NewPruner(reg, Options{Prune: asp.PruneConfig{N: 2, M: 4, Algo: "mask_3d"}})
	assert.ErrorIs(t, err, asp.ErrUnknownMaskAlgo)

	_, err = NewPruner(reg, Options{Prune: asp.DefaultPruneConfig(), Exclude: []string{"["}})
	assert.Error(t, err)
}

func TestLayerTypeForRank(t *testing.T) {
	for rank, want := range map[int]string{2: "linear", 4: "conv2d"} {
		got, ok := LayerTypeForRank(rank)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := LayerTypeForRank(3)
	assert.False(t, ok)
}

func TestPruneFileAndCheckFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "model.safetensors")
	out := filepath.Join(dir, "pruned.safetensors")
	maskOut := filepath.Join(dir, "masks.safetensors")
	require.NoError(t, safetensors.WriteFile(in, testCheckpoint(t), map[string]string{"format": "pt"}))

	before, err := CheckFile(in, asp.Check1D, 2, 4)
	require.NoError(t, err)
	for _, r := range before {
		if r.Outcome == metrics.Pruned {
			assert.False(t, r.Valid, r.Name)
		}
	}

	cfg := asp.DefaultPruneConfig()
	cfg.Algo = asp.Mask2DBest
	p, err := NewPruner(asp.NewRegistry(), Options{Prune: cfg})
	require.NoError(t, err)
	_, err = p.PruneFile(context.Background(), in, out, maskOut)
	require.NoError(t, err)

	after, err := CheckFile(out, asp.Check2D, 2, 4)
	require.NoError(t, err)
	require.Len(t, after, 3, "the I32 weight is not checked")
	for _, r := range after {
		assert.True(t, r.Valid, r.Name)
	}

	_, meta, err := ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "pt", meta["format"])
	assert.Equal(t, "2:4", meta[MetaPattern])
	assert.Equal(t, "mask_2d_best", meta[MetaAlgo])
	assert.Len(t, meta[MetaRunID], 36)

	masks, _, err := ReadFile(maskOut)
	require.NoError(t, err)
	assert.Len(t, masks, 3)

	_, err = CheckFile(filepath.Join(dir, "missing.safetensors"), asp.Check1D, 2, 4)
	assert.Error(t, err)
}

func TestZeroSizeWeights(t *testing.T) {
	entries := testCheckpoint(t)
	entries["adapter.weight"] = safetensors.Entry{DType: safetensors.F32, Shape: []int{0, 8}}
	entries["adapter.conv.weight"] = safetensors.Entry{DType: safetensors.F32, Shape: []int{8, 8, 0, 3}}

	p, err := NewPruner(asp.NewRegistry(), Options{Prune: asp.DefaultPruneConfig()})
	require.NoError(t, err)
	out, masks, results, err := p.Prune(context.Background(), entries)
	require.NoError(t, err)

	got := outcomes(results)
	assert.Equal(t, metrics.Skipped, got["adapter.weight"])
	assert.Equal(t, metrics.Skipped, got["adapter.conv.weight"])
	assert.Equal(t, metrics.Pruned, got["encoder.fc1.weight"], "other weights are still pruned")
	assert.Equal(t, entries["adapter.weight"], out["adapter.weight"])
	assert.NotContains(t, masks, "adapter.weight"+MaskSuffix)

	checked, err := Check(entries, asp.Check1D, 2, 4)
	require.NoError(t, err)
	for _, r := range checked {
		if r.Name == "adapter.weight" || r.Name == "adapter.conv.weight" {
			assert.True(t, r.Valid, r.Name)
			assert.Equal(t, metrics.Skipped, r.Outcome, r.Name)
			assert.Equal(t, 1.0, r.Density, r.Name)
		}
	}

	path := filepath.Join(t.TempDir(), "adapter.safetensors")
	require.NoError(t, safetensors.WriteFile(path, entries, nil))
	_, err = CheckFile(path, asp.Check1D, 2, 4)
	require.NoError(t, err)
}
