// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package asp provides automatic N:M structured sparsity for Born models.
//
// An N:M pattern keeps N non-zero elements in every block of M contiguous
// elements along the pruned dimension. 2:4 is the default.
//
// # Basic Usage
//
//	model := nn.NewSequential(nn.NewLinear(64, 128), nn.NewLinear(128, 10))
//
//	sp := asp.NewSparsifier(asp.NewRegistry())
//	sp.SetExcludedLayers("linear_1") // keep the classifier dense
//	if _, err := sp.PruneModel(ctx, model, asp.DefaultPruneConfig()); err != nil {
//	    return err
//	}
//
//	opt := asp.Decorate(optim.NewSGD(nn.AllParameters(model), optim.SGDConfig{LR: 0.01}), sp, model)
//
// # Custom layers
//
// Layer types are registered by canonical name. Built-in entries are fc,
// linear and conv2d. Custom layers can reuse the default pruner or supply
// their own:
//
//	reg := asp.NewRegistry()
//	reg.Register(asp.LayerTypeOf[*MyAttention](), asp.CustomPruner(pruneQKV))
//
// Weights whose pruned dimension is smaller than M are left dense and a
// warning is written to the zerolog logger carried by the context.
package asp
