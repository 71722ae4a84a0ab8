package asp

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/tensor"
)

// keepAll is a custom pruner that leaves weights dense.
func keepAll(_ context.Context, w *tensor.Tensor[float32], _, _ int, _ MaskAlgo, _ string) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
	return w.Clone(), tensor.OnesLike(w), nil
}

type MultiHeadAttention struct {
	qkv *nn.Parameter
}

func (a *MultiHeadAttention) Parameters() []*nn.Parameter { return []*nn.Parameter{a.qkv} }

func TestNewRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"conv2d", "fc", "linear"}, reg.Names())
	assert.Equal(t, 3, reg.Len())

	for _, name := range []string{"fc", "linear", "conv2d"} {
		p, ok := reg.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, p.IsDefault())
	}

	_, ok := reg.Lookup("layer_norm")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(LayerName("conv2d"), DefaultPruner()))
	p, ok := reg.Lookup("conv2d")
	require.True(t, ok)
	assert.True(t, p.IsDefault())

	require.NoError(t, reg.Register(LayerName("conv2d"), CustomPruner(keepAll)))
	p, ok = reg.Lookup("conv2d")
	require.True(t, ok)
	assert.False(t, p.IsDefault())
	assert.Equal(t, reflect.ValueOf(keepAll).Pointer(), reflect.ValueOf(p.Func()).Pointer())
	assert.Equal(t, 3, reg.Len(), "re-registering overwrites")
}

func TestRegistry_RefsResolveToSameName(t *testing.T) {
	tests := []struct {
		name string
		ref  LayerRef
	}{
		{"by name", LayerName("multi_head_attention")},
		{"by value", LayerOf(&MultiHeadAttention{})},
		{"by type", LayerType(reflect.TypeOf(&MultiHeadAttention{}))},
		{"by elem type", LayerType(reflect.TypeFor[MultiHeadAttention]())},
		{"by type param", LayerTypeOf[*MultiHeadAttention]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Register(tt.ref, CustomPruner(keepAll)))

			p, ok := reg.Lookup("multi_head_attention")
			require.True(t, ok)
			assert.False(t, p.IsDefault())
			assert.Equal(t, "multi_head_attention", tt.ref.String())
		})
	}
}

func TestRegistry_InvalidRefs(t *testing.T) {
	var nilLinear *nn.Linear

	tests := []struct {
		name string
		ref  LayerRef
	}{
		{"zero value", LayerRef{}},
		{"empty name", LayerName("")},
		{"nil layer", LayerOf(nil)},
		{"typed nil layer", LayerOf(nilLinear)},
		{"nil type", LayerType(nil)},
		{"not a layer", LayerType(reflect.TypeFor[string]())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tt.ref, DefaultPruner())
			assert.ErrorIs(t, err, ErrInvalidLayer)
			assert.Equal(t, 3, reg.Len())
			assert.Equal(t, "<invalid layer>", tt.ref.String())
		})
	}
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, reg.Register(LayerName(fmt.Sprintf("layer_%d", i)), DefaultPruner()))
			_, _ = reg.Lookup("linear")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 67, reg.Len())
}

func TestPruner_DefaultDispatch(t *testing.T) {
	w := randomWeight(t, 4, 8, 8)

	pruned, mask, err := DefaultPruner().Prune(context.Background(), w, 4, 2, Mask1D, "linear_0.weight")
	require.NoError(t, err)
	assert.Equal(t, 32, mask.CountNonZero())
	assert.Equal(t, 32, pruned.CountNonZero())

	pruned, mask, err = CustomPruner(keepAll).Prune(context.Background(), w, 4, 2, Mask1D, "linear_0.weight")
	require.NoError(t, err)
	assert.True(t, pruned.Equal(w))
	assert.Equal(t, 64, mask.CountNonZero())

	assert.True(t, CustomPruner(nil).IsDefault())
}
