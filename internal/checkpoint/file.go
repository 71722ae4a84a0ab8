package checkpoint

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/safetensors"
)

// Metadata keys written to pruned checkpoints.
const (
	MetaPattern = "asp.pattern"
	MetaAlgo    = "asp.algo"
	MetaRunID   = "asp.run_id"
)

// PruneFile prunes the checkpoint at in and writes it to out. When maskOut is
// set the masks are written there as a separate checkpoint. Both files carry
// the pattern, algorithm and a fresh run ID in their metadata.
func (p *Pruner) PruneFile(ctx context.Context, in, out, maskOut string) ([]Result, error) {
	runID := uuid.NewString()
	log := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = log.WithContext(ctx)

	entries, meta, err := ReadFile(in)
	if err != nil {
		return nil, err
	}

	pruned, masks, results, err := p.Prune(ctx, entries)
	if err != nil {
		return nil, err
	}

	meta = maps.Clone(meta)
	if meta == nil {
		meta = make(map[string]string, 3)
	}
	meta[MetaPattern] = fmt.Sprintf("%d:%d", p.opts.Prune.N, p.opts.Prune.M)
	meta[MetaAlgo] = string(p.opts.Prune.Algo)
	meta[MetaRunID] = runID

	if err := safetensors.WriteFile(out, pruned, meta); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}
	if maskOut != "" {
		if err := safetensors.WriteFile(maskOut, masks, meta); err != nil {
			return nil, fmt.Errorf("write %s: %w", maskOut, err)
		}
	}
	log.Info().Str("in", in).Str("out", out).Str("masks", maskOut).Msg("checkpoint written")
	return results, nil
}

// CheckFile runs Check on the checkpoint at path.
func CheckFile(path string, method asp.CheckMethod, n, m int) ([]Result, error) {
	entries, _, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Check(entries, method, n, m)
}

// ReadFile loads every entry and the metadata of a checkpoint.
func ReadFile(path string) (map[string]safetensors.Entry, map[string]string, error) {
	r, err := safetensors.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	entries, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, r.Metadata(), nil
}
