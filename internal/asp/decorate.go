package asp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/optim"
)

// SparseOptimizer wraps an optimizer so that every step leaves the pruned
// weights of a model sparse: after the wrapped Step, the Sparsifier's masks are
// multiplied back into the parameters.
type SparseOptimizer struct {
	optim.Optimizer
	sparsifier *Sparsifier
	model      nn.Layer
	err        error
}

// Decorate returns opt wrapped so that pruned weights of model stay sparse during training.
//
//	masks, _ := sp.PruneModel(ctx, model, asp.DefaultPruneConfig())
//	opt := asp.Decorate(optim.NewSGD(nn.AllParameters(model), optim.SGDConfig{LR: 0.01}), sp, model)
func Decorate(opt optim.Optimizer, s *Sparsifier, model nn.Layer) *SparseOptimizer {
	return &SparseOptimizer{Optimizer: opt, sparsifier: s, model: model}
}

// Step runs the wrapped step and re-applies the masks. A failure to re-apply
// is kept for Err.
func (o *SparseOptimizer) Step() {
	o.err = o.StepContext(context.Background())
}

// StepContext is Step that returns the mask error and logs it to zerolog.Ctx(ctx).
// A failure is only possible when the model changed after pruning.
func (o *SparseOptimizer) StepContext(ctx context.Context) error {
	o.Optimizer.Step()
	if err := o.sparsifier.ApplyMasks(o.model); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("re-applying sparsity masks")
		return err
	}
	return nil
}

// Err returns the mask error of the last Step, or nil.
func (o *SparseOptimizer) Err() error {
	return o.err
}
