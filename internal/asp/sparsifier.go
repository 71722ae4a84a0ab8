package asp

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/asp/internal/metrics"
	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/tensor"
)

// maskSuffix marks mask parameters, which are never pruned themselves.
const maskSuffix = "asp_mask"

// PruneConfig controls one PruneModel run.
type PruneConfig struct {
	N, M     int
	Algo     MaskAlgo
	WithMask bool // Keep masks so Decorate can enforce them during training.
	Workers  int  // Parameters pruned concurrently; 0 means GOMAXPROCS.
}

// DefaultPruneConfig returns 2:4 sparsity with 1-D masks.
func DefaultPruneConfig() PruneConfig {
	return PruneConfig{N: 2, M: 4, Algo: Mask1D, WithMask: true}
}

// Sparsifier prunes the supported parameters of a model and tracks their masks.
// It is safe for concurrent use.
type Sparsifier struct {
	registry *Registry
	recorder metrics.Recorder

	mu       sync.RWMutex
	excluded map[string]struct{}
	masks    map[string]*tensor.Tensor[float32]
}

// Option configures a Sparsifier.
type Option func(*Sparsifier)

// WithRecorder sets the recorder that observes every visited parameter.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Sparsifier) {
		s.recorder = r
	}
}

// NewSparsifier creates a Sparsifier resolving pruners through reg.
func NewSparsifier(reg *Registry, opts ...Option) *Sparsifier {
	s := &Sparsifier{
		registry: reg,
		recorder: metrics.Nop{},
		excluded: make(map[string]struct{}),
		masks:    make(map[string]*tensor.Tensor[float32]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the Sparsifier resolves pruners through.
func (s *Sparsifier) Registry() *Registry {
	return s.registry
}

// SetExcludedLayers keeps the named layers ("linear_2") or parameters
// ("linear_2.weight") dense. Names accumulate across calls.
func (s *Sparsifier) SetExcludedLayers(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.excluded[name] = struct{}{}
	}
}

// ResetExcludedLayers clears every exclusion.
func (s *Sparsifier) ResetExcludedLayers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.excluded)
}

func (s *Sparsifier) isExcluded(paramName string) bool {
	layer, _ := nn.SplitParamName(paramName)

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, byParam := s.excluded[paramName]
	_, byLayer := s.excluded[layer]
	return byParam || byLayer
}

// IsSupported reports whether PruneModel would prune the named parameter.
//
// A parameter is supported when it is not excluded, is not a mask, and either
// its full name is registered, or it is a weight ("weight" or "w_*") whose
// layer name ("linear_0") or layer type ("linear") is registered.
func (s *Sparsifier) IsSupported(paramName string) bool {
	if s.isExcluded(paramName) || strings.Contains(paramName, maskSuffix) {
		return false
	}
	if _, ok := s.registry.Lookup(paramName); ok {
		return true
	}

	layer, local := nn.SplitParamName(paramName)
	if local == "" || !isWeight(local) {
		return false
	}
	if _, ok := s.registry.Lookup(layer); ok {
		return true
	}
	_, ok := s.registry.Lookup(nn.LayerTypeOf(layer))
	return ok
}

func isWeight(local string) bool {
	return local == "weight" || strings.HasPrefix(local, "w_")
}

// PrunerFor resolves the pruner for a parameter: by full name, then layer
// name, then layer type, falling back to the default pruner.
func (s *Sparsifier) PrunerFor(paramName string) Pruner {
	if p, ok := s.registry.Lookup(paramName); ok {
		return p
	}
	layer, _ := nn.SplitParamName(paramName)
	if p, ok := s.registry.Lookup(layer); ok {
		return p
	}
	if p, ok := s.registry.Lookup(nn.LayerTypeOf(layer)); ok {
		return p
	}
	return DefaultPruner()
}

// PruneModel prunes every supported parameter of model in place and returns the
// masks computed in this run, keyed by parameter name.
//
// Parameters are pruned concurrently. The first failure cancels the remaining
// work and is returned; parameters already pruned keep their new values.
// Masks are stored on the Sparsifier when cfg.WithMask is set.
func (s *Sparsifier) PruneModel(ctx context.Context, model nn.Layer, cfg PruneConfig) (map[string]*tensor.Tensor[float32], error) {
	if err := validatePattern(cfg.N, cfg.M); err != nil {
		return nil, err
	}
	if _, err := ParseMaskAlgo(string(cfg.Algo)); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := zerolog.Ctx(ctx)
	var (
		mu    sync.Mutex
		masks = make(map[string]*tensor.Tensor[float32])
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, np := range nn.NamedParameters(model) {
		layerType := nn.LayerTypeOf(np.Layer)
		if !s.IsSupported(np.Name) {
			s.recorder.ObserveParam(layerType, metrics.Excluded, Density(np.Param.Tensor()))
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mask, outcome, err := s.pruneParam(gctx, np, cfg)
			if err != nil {
				s.recorder.ObserveParam(layerType, metrics.Failed, Density(np.Param.Tensor()))
				return err
			}
			s.recorder.ObserveParam(layerType, outcome, Density(np.Param.Tensor()))
			log.Debug().
				Str("param", np.Name).
				Str("outcome", string(outcome)).
				Float64("density", Density(np.Param.Tensor())).
				Msg("parameter visited")

			mu.Lock()
			masks[np.Name] = mask
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.WithMask {
		s.mu.Lock()
		for name, mask := range masks {
			s.masks[name] = mask
		}
		s.mu.Unlock()
	}

	log.Info().
		Int("params", len(masks)).
		Str("pattern", fmt.Sprintf("%d:%d", cfg.N, cfg.M)).
		Str("algo", string(cfg.Algo)).
		Msg("model pruned")
	return masks, nil
}

func (s *Sparsifier) pruneParam(ctx context.Context, np nn.NamedParameter, cfg PruneConfig) (*tensor.Tensor[float32], metrics.Outcome, error) {
	weight := np.Param.Tensor()
	pruned, mask, err := s.PrunerFor(np.Name).Prune(ctx, weight, cfg.M, cfg.N, cfg.Algo, np.Name)
	if err != nil {
		return nil, "", err
	}
	if pruned == nil || mask == nil {
		return nil, "", fmt.Errorf("prune %s: pruner returned no result", np.Name)
	}
	if err := np.Param.SetTensor(pruned); err != nil {
		return nil, "", fmt.Errorf("prune %s: %w", np.Name, err)
	}

	outcome := metrics.Pruned
	if mask.CountNonZero() == mask.NumElements() {
		outcome = metrics.Skipped
	}
	return mask, outcome, nil
}

// Masks returns a copy of the stored masks keyed by parameter name.
func (s *Sparsifier) Masks() map[string]*tensor.Tensor[float32] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*tensor.Tensor[float32], len(s.masks))
	for name, mask := range s.masks {
		out[name] = mask
	}
	return out
}

// Mask returns the stored mask of a parameter.
func (s *Sparsifier) Mask(paramName string) (*tensor.Tensor[float32], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mask, ok := s.masks[paramName]
	return mask, ok
}

// ApplyMasks multiplies every stored mask into the matching parameter of model.
// It returns an error if a masked parameter is missing or changed shape.
func (s *Sparsifier) ApplyMasks(model nn.Layer) error {
	params := make(map[string]*nn.Parameter)
	for _, np := range nn.NamedParameters(model) {
		params[np.Name] = np.Param
	}

	var errs []error
	for name, mask := range s.Masks() {
		p, ok := params[name]
		if !ok {
			errs = append(errs, fmt.Errorf("apply mask: parameter %s not found", name))
			continue
		}
		if !p.Tensor().Shape().Equal(mask.Shape()) {
			errs = append(errs, fmt.Errorf("apply mask: parameter %s has shape %v, mask %v",
				name, p.Tensor().Shape(), mask.Shape()))
			continue
		}
		data := p.Tensor().Data()
		for i, keep := range mask.Data() {
			data[i] *= keep
		}
	}
	return errors.Join(errs...)
}
