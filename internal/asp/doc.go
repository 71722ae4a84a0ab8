// Package asp implements automatic N:M structured sparsity for Born models.
//
// An N:M pattern keeps N non-zero elements in every block of M contiguous
// elements along the pruned dimension, the layout sparse matrix-multiply
// hardware (e.g. 2:4 sparse tensor cores) accelerates.
//
// The package provides:
//   - Mask generation (mask_1d, mask_2d_greedy, mask_2d_best) and checking
//   - DefaultPrune: the pruning routine used for fc, linear and conv2d layers
//   - Registry: layer type name -> pruning function, safe for concurrent use
//   - Sparsifier: prunes whole models, tracks masks and excluded layers
//   - Decorate: wraps an optimizer so pruned weights stay sparse while training
//
// Example:
//
//	reg := asp.NewRegistry()
//	sp := asp.NewSparsifier(reg)
//	sp.SetExcludedLayers("linear_2")
//	masks, err := sp.PruneModel(ctx, model, asp.PruneConfig{N: 2, M: 4, Algo: asp.Mask1D, WithMask: true})
//
// Warnings are written to the zerolog logger carried by the context (zerolog.Ctx).
package asp
