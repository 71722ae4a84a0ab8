package asp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/asp/internal/metrics"
	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/optim"
	"github.com/born-ml/asp/internal/tensor"
)

type recordedParam struct {
	layer   string
	outcome metrics.Outcome
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedParam
}

func (r *fakeRecorder) ObserveParam(layer string, outcome metrics.Outcome, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedParam{layer, outcome})
}

func (r *fakeRecorder) count(outcome metrics.Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.seen {
		if p.outcome == outcome {
			n++
		}
	}
	return n
}

// testModel: linear_0 [16,8], conv2d_0 [8,8,3,3], layer_norm_0, linear_1 [2,16] (too small to prune).
func testModel() *nn.Sequential {
	return nn.NewSequential(
		nn.NewLinear(8, 16),
		nn.NewConv2D(8, 8, 3, 3, true),
		nn.NewLayerNorm(16, 1e-5),
		nn.NewLinear(16, 2),
	)
}

func TestSparsifier_IsSupported(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(LayerName("encoder_qkv"), DefaultPruner()))
	sp := NewSparsifier(reg)

	tests := []struct {
		name string
		want bool
	}{
		{"linear_0.weight", true},
		{"linear_12.w_0", true},
		{"fc_0.w_0", true},
		{"conv2d_3.weight", true},
		{"linear_0.bias", false},
		{"fc_0.b_0", false},
		{"layer_norm_0.gamma", false},
		{"layer_norm_0.weight", false},
		{"linear", true},
		{"encoder_qkv", true},
		{"linear_0.weight_asp_mask", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sp.IsSupported(tt.name), tt.name)
	}

	sp.SetExcludedLayers("linear_0", "conv2d_3.weight")
	assert.False(t, sp.IsSupported("linear_0.weight"))
	assert.False(t, sp.IsSupported("conv2d_3.weight"))
	assert.True(t, sp.IsSupported("linear_1.weight"))

	sp.ResetExcludedLayers()
	assert.True(t, sp.IsSupported("linear_0.weight"))
}

func TestSparsifier_PrunerFor(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(LayerName("linear_1"), CustomPruner(keepAll)))
	sp := NewSparsifier(reg)

	assert.True(t, sp.PrunerFor("linear_0.weight").IsDefault())
	assert.False(t, sp.PrunerFor("linear_1.weight").IsDefault())
	assert.True(t, sp.PrunerFor("unknown_7.weight").IsDefault())

	require.NoError(t, reg.Register(LayerName("linear"), CustomPruner(keepAll)))
	assert.False(t, sp.PrunerFor("linear_0.weight").IsDefault())
}

func TestSparsifier_PruneModel(t *testing.T) {
	ctx, logs := captureLogs(t)
	model := testModel()
	rec := &fakeRecorder{}
	sp := NewSparsifier(NewRegistry(), WithRecorder(rec))

	before := map[string]*tensor.Tensor[float32]{}
	for _, np := range nn.NamedParameters(model) {
		before[np.Name] = np.Param.Tensor().Clone()
	}

	masks, err := sp.PruneModel(ctx, model, PruneConfig{N: 2, M: 4, Algo: Mask1D, WithMask: true, Workers: 2})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"linear_0.weight", "conv2d_0.weight", "linear_1.weight"}, keys(masks))
	assert.Equal(t, masks, sp.Masks())

	for _, np := range nn.NamedParameters(model) {
		w := np.Param.Tensor()
		switch np.Name {
		case "linear_0.weight", "conv2d_0.weight":
			assert.InDelta(t, 0.5, Density(w), 1e-9, np.Name)
			assert.True(t, w.Equal(before[np.Name].Mul(masks[np.Name])), np.Name)
		default:
			assert.True(t, w.Equal(before[np.Name]), "%s must be untouched", np.Name)
		}
	}

	assert.Equal(t, 2, rec.count(metrics.Pruned))
	assert.Equal(t, 1, rec.count(metrics.Skipped))
	assert.Equal(t, 5, rec.count(metrics.Excluded))
	assert.Contains(t, logs.String(), "linear_1.weight is not pruned")
	assert.Contains(t, logs.String(), "model pruned")
}

func TestSparsifier_PruneModel_Excluded(t *testing.T) {
	model := testModel()
	sp := NewSparsifier(NewRegistry())
	sp.SetExcludedLayers("conv2d_0")

	masks, err := sp.PruneModel(context.Background(), model, DefaultPruneConfig())
	require.NoError(t, err)

	assert.NotContains(t, masks, "conv2d_0.weight")
	assert.Contains(t, masks, "linear_0.weight")
}

func TestSparsifier_PruneModel_WithoutMasks(t *testing.T) {
	sp := NewSparsifier(NewRegistry())
	cfg := DefaultPruneConfig()
	cfg.WithMask = false

	masks, err := sp.PruneModel(context.Background(), testModel(), cfg)
	require.NoError(t, err)
	assert.Len(t, masks, 3)
	assert.Empty(t, sp.Masks())
}

func TestSparsifier_PruneModel_CustomPruner(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(LayerTypeOf[*nn.Conv2D](), CustomPruner(keepAll)))
	model := testModel()
	conv := model.Children()[1].(*nn.Conv2D)
	before := conv.Weight().Tensor().Clone()

	_, err := NewSparsifier(reg).PruneModel(context.Background(), model, DefaultPruneConfig())
	require.NoError(t, err)
	assert.True(t, conv.Weight().Tensor().Equal(before))
}

func TestSparsifier_PruneModel_Errors(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	require.NoError(t, reg.Register(LayerName("linear"), CustomPruner(
		func(context.Context, *tensor.Tensor[float32], int, int, MaskAlgo, string) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
			return nil, nil, boom
		})))
	sp := NewSparsifier(reg)

	_, err := sp.PruneModel(context.Background(), testModel(), DefaultPruneConfig())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sp.Masks())

	_, err = sp.PruneModel(context.Background(), testModel(), PruneConfig{N: 5, M: 4, Algo: Mask1D})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = sp.PruneModel(context.Background(), testModel(), PruneConfig{N: 2, M: 4, Algo: "mask_9d"})
	assert.ErrorIs(t, err, ErrUnknownMaskAlgo)
}

func TestDecorate_KeepsWeightsSparse(t *testing.T) {
	model := testModel()
	sp := NewSparsifier(NewRegistry())
	_, err := sp.PruneModel(context.Background(), model, DefaultPruneConfig())
	require.NoError(t, err)

	params := nn.AllParameters(model)
	for _, p := range params {
		p.SetGrad(tensor.Full[float32](p.Tensor().Shape(), 1))
	}

	opt := Decorate(optim.NewSGD(params, optim.SGDConfig{LR: 0.1}), sp, model)
	opt.Step()
	opt.ZeroGrad()

	for name, mask := range sp.Masks() {
		for _, np := range nn.NamedParameters(model) {
			if np.Name != name {
				continue
			}
			for i, keep := range mask.Data() {
				if keep == 0 {
					assert.Zero(t, np.Param.Tensor().Data()[i], "%s[%d] must stay pruned", name, i)
				}
			}
		}
	}

	ln := model.Children()[2].(*nn.LayerNorm)
	assert.InDelta(t, 0.9, ln.Gamma.Tensor().Data()[0], 1e-6, "unmasked parameters still train")
	assert.Nil(t, params[0].Grad())
}

func TestApplyMasks_ShapeMismatch(t *testing.T) {
	sp := NewSparsifier(NewRegistry())
	_, err := sp.PruneModel(context.Background(), testModel(), DefaultPruneConfig())
	require.NoError(t, err)

	err = sp.ApplyMasks(nn.NewSequential(nn.NewLinear(4, 4)))
	assert.Error(t, err)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDecorate_ReportsMaskErrors(t *testing.T) {
	model := testModel()
	sp := NewSparsifier(NewRegistry())
	_, err := sp.PruneModel(context.Background(), model, DefaultPruneConfig())
	require.NoError(t, err)

	opt := Decorate(optim.NewSGD(nn.AllParameters(model), optim.SGDConfig{LR: 0.1}), sp, model)
	opt.Step()
	assert.NoError(t, opt.Err())

	other := nn.NewSequential(nn.NewLinear(4, 4))
	broken := Decorate(optim.NewSGD(nn.AllParameters(other), optim.SGDConfig{LR: 0.1}), sp, other)
	broken.Step()
	assert.Error(t, broken.Err())

	ctx, logs := captureLogs(t)
	err = broken.StepContext(ctx)
	require.Error(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &event))
	assert.Equal(t, "error", event["level"])
	assert.Equal(t, "re-applying sparsity masks", event["message"])
}
