package asp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/born-ml/asp/internal/tensor"
)

// Pruner is the pruning function bound to a layer type: either the default
// pruner or a custom PruneFunc. The zero value is the default pruner.
type Pruner struct {
	custom PruneFunc
}

// DefaultPruner returns the Pruner that runs DefaultPrune.
func DefaultPruner() Pruner {
	return Pruner{}
}

// CustomPruner returns a Pruner running fn. A nil fn yields the default pruner.
func CustomPruner(fn PruneFunc) Pruner {
	return Pruner{custom: fn}
}

// IsDefault reports whether p runs DefaultPrune.
func (p Pruner) IsDefault() bool {
	return p.custom == nil
}

// Func returns the function p runs.
func (p Pruner) Func() PruneFunc {
	if p.custom == nil {
		return DefaultPrune[float32]
	}
	return p.custom
}

// Prune runs the bound function.
func (p Pruner) Prune(
	ctx context.Context,
	weight *tensor.Tensor[float32],
	m, n int,
	algo MaskAlgo,
	paramName string,
) (pruned, mask *tensor.Tensor[float32], err error) {
	return p.Func()(ctx, weight, m, n, algo, paramName)
}

// Built-in layer types pruned with DefaultPrune.
var builtinLayers = []string{"fc", "linear", "conv2d"}

// Registry maps canonical layer type names to pruners. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	pruners map[string]Pruner
}

// NewRegistry returns a registry with fc, linear and conv2d bound to the default pruner.
func NewRegistry() *Registry {
	r := &Registry{pruners: make(map[string]Pruner, len(builtinLayers))}
	for _, name := range builtinLayers {
		r.pruners[name] = DefaultPruner()
	}
	return r
}

// Register binds the layer type ref refers to with p, replacing any earlier binding.
//
//	reg.Register(asp.LayerName("conv2d"), asp.DefaultPruner())
//	reg.Register(asp.LayerTypeOf[*MyAttention](), asp.CustomPruner(pruneQKV))
func (r *Registry) Register(ref LayerRef, p Pruner) error {
	name, err := ref.CanonicalName()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	r.mu.Lock()
	r.pruners[name] = p
	r.mu.Unlock()
	return nil
}

// Lookup returns the pruner bound to a canonical name.
func (r *Registry) Lookup(name string) (Pruner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pruners[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.pruners))
	for name := range r.pruners {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pruners)
}
