// Package checkpoint applies N:M pruning to the weights stored in SafeTensors
// checkpoints.
//
// Tensors carry no layer types, so the layer type is inferred from rank: 2-D
// weights are "linear", 4-D weights are "conv2d". A tensor is pruned when its
// name ends in "weight", it is F32, it matches no exclude pattern, and either
// its full name or its inferred layer type is registered.
package checkpoint

import (
	"context"
	"fmt"
	"maps"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/metrics"
	"github.com/born-ml/asp/internal/safetensors"
	"github.com/born-ml/asp/internal/tensor"
)

// MaskSuffix is appended to a weight's name for its entry in the mask file.
const MaskSuffix = ".asp_mask"

// Options controls a pruning run.
type Options struct {
	Prune    asp.PruneConfig
	Exclude  []string // path.Match patterns on tensor names
	Recorder metrics.Recorder
}

// Result describes one tensor visited by Prune or Check.
type Result struct {
	Name      string
	LayerType string
	Shape     []int
	Outcome   metrics.Outcome
	Density   float64
	Valid     bool // satisfies the pattern; set by Check only
}

// LayerTypeForRank returns the layer type inferred for a weight of the given rank.
func LayerTypeForRank(rank int) (string, bool) {
	switch rank {
	case 2:
		return "linear", true
	case 4:
		return "conv2d", true
	default:
		return "", false
	}
}

// Pruner prunes checkpoint weights with pruners resolved through a registry.
type Pruner struct {
	registry *asp.Registry
	opts     Options
}

// NewPruner validates opts and returns a Pruner.
func NewPruner(reg *asp.Registry, opts Options) (*Pruner, error) {
	if opts.Prune.N <= 0 || opts.Prune.N > opts.Prune.M {
		return nil, fmt.Errorf("%w: n=%d, m=%d", asp.ErrInvalidPattern, opts.Prune.N, opts.Prune.M)
	}
	if _, err := asp.ParseMaskAlgo(string(opts.Prune.Algo)); err != nil {
		return nil, err
	}
	for _, pattern := range opts.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}
	return &Pruner{registry: reg, opts: opts}, nil
}

func (p *Pruner) excluded(name string) bool {
	for _, pattern := range p.opts.Exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// resolve returns the pruner for a candidate tensor, or false if it stays dense.
func (p *Pruner) resolve(name string, e safetensors.Entry) (asp.Pruner, string, bool) {
	layerType, ok := LayerTypeForRank(len(e.Shape))
	if !ok || e.DType != safetensors.F32 || !strings.HasSuffix(name, "weight") || p.excluded(name) {
		return asp.Pruner{}, layerType, false
	}
	if pr, ok := p.registry.Lookup(name); ok {
		return pr, layerType, true
	}
	pr, ok := p.registry.Lookup(layerType)
	return pr, layerType, ok
}

// Prune returns a copy of entries with every eligible weight pruned, the masks
// keyed by "<name>.asp_mask", and one Result per weight-like tensor in name order.
// Entries that are not pruned are carried over unchanged.
func (p *Pruner) Prune(ctx context.Context, entries map[string]safetensors.Entry) (map[string]safetensors.Entry, map[string]safetensors.Entry, []Result, error) {
	workers := p.opts.Prune.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		out     = maps.Clone(entries)
		masks   = make(map[string]safetensors.Entry)
		results []Result
	)
	record := func(r Result) {
		p.opts.Recorder.ObserveParam(r.LayerType, r.Outcome, r.Density)
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for name, e := range entries {
		pr, layerType, ok := p.resolve(name, e)
		if !ok {
			if layerType != "" && strings.HasSuffix(name, "weight") {
				record(Result{Name: name, LayerType: layerType, Shape: e.Shape, Outcome: metrics.Excluded, Density: rawDensity(e)})
			}
			continue
		}
		if isEmpty(e) {
			// Zero-size weights are carried over without decoding.
			record(Result{Name: name, LayerType: layerType, Shape: e.Shape, Outcome: metrics.Skipped, Density: 1})
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pruned, mask, err := p.pruneEntry(gctx, pr, name, e)
			if err != nil {
				record(Result{Name: name, LayerType: layerType, Shape: e.Shape, Outcome: metrics.Failed, Density: rawDensity(e)})
				return err
			}

			outcome := metrics.Pruned
			if mask.CountNonZero() == mask.NumElements() {
				outcome = metrics.Skipped
			}
			record(Result{Name: name, LayerType: layerType, Shape: e.Shape, Outcome: outcome, Density: asp.Density(pruned)})

			mu.Lock()
			out[name] = safetensors.EncodeFloat32(pruned)
			masks[name+MaskSuffix] = safetensors.EncodeFloat32(mask)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	sortResults(results)
	zerolog.Ctx(ctx).Info().
		Int("tensors", len(entries)).
		Int("pruned", len(masks)).
		Str("pattern", fmt.Sprintf("%d:%d", p.opts.Prune.N, p.opts.Prune.M)).
		Str("algo", string(p.opts.Prune.Algo)).
		Msg("checkpoint pruned")
	return out, masks, results, nil
}

func (p *Pruner) pruneEntry(ctx context.Context, pr asp.Pruner, name string, e safetensors.Entry) (pruned, mask *tensor.Tensor[float32], err error) {
	w, err := safetensors.DecodeFloat32(e)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", name, err)
	}
	cfg := p.opts.Prune
	pruned, mask, err = pr.Prune(ctx, w, cfg.M, cfg.N, cfg.Algo, name)
	if err != nil {
		return nil, nil, err
	}
	if pruned == nil || mask == nil {
		return nil, nil, fmt.Errorf("prune %s: pruner returned no result", name)
	}
	if !pruned.Shape().Equal(w.Shape()) {
		return nil, nil, fmt.Errorf("prune %s: pruner changed shape %v to %v", name, w.Shape(), pruned.Shape())
	}
	return pruned, mask, nil
}

// Check reports the density of every F32 weight of rank 2 or 4 and whether it
// satisfies the N:M pattern under method.
func Check(entries map[string]safetensors.Entry, method asp.CheckMethod, n, m int) ([]Result, error) {
	results := make([]Result, 0, len(entries))
	for name, e := range entries {
		layerType, ok := LayerTypeForRank(len(e.Shape))
		if !ok || e.DType != safetensors.F32 || !strings.HasSuffix(name, "weight") {
			continue
		}
		if isEmpty(e) {
			results = append(results, Result{Name: name, LayerType: layerType, Shape: e.Shape, Outcome: metrics.Skipped, Density: 1, Valid: true})
			continue
		}
		w, err := safetensors.DecodeFloat32(e)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		valid, err := asp.CheckPruned(w, method, n, m)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", name, err)
		}

		outcome := metrics.Pruned
		if asp.IsExempt(w.Shape(), m) {
			outcome = metrics.Skipped
		}
		results = append(results, Result{
			Name:      name,
			LayerType: layerType,
			Shape:     e.Shape,
			Outcome:   outcome,
			Density:   asp.Density(w),
			Valid:     valid,
		})
	}
	sortResults(results)
	return results, nil
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
}

// isEmpty reports whether an entry has a zero dimension. Empty weights count as dense.
func isEmpty(e safetensors.Entry) bool {
	n, err := safetensors.NumElements(e.Shape)
	return err == nil && n == 0
}

// rawDensity is the non-zero fraction of an F32 entry, or 1 for other dtypes.
func rawDensity(e safetensors.Entry) float64 {
	w, err := safetensors.DecodeFloat32(e)
	if err != nil {
		return 1
	}
	return asp.Density(w)
}
