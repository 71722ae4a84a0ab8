// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and parameters that sparsity pruning walks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Conv2D, LayerNorm
//   - Containers: Sequential
//   - Parameter with gradient storage
//   - Naming: CanonicalName, TypeName, NamedParameters
//
// # Basic Usage
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewLayerNorm(128, 1e-5),
//	    nn.NewLinear(128, 10),
//	)
//
//	for _, np := range nn.NamedParameters(model) {
//	    fmt.Println(np.Name) // linear_0.weight, linear_0.bias, layer_norm_0.gamma, ...
//	}
//
// # Naming
//
// Layer type names are canonicalized from Go type names to snake_case:
// Linear is "linear", LayerNorm is "layer_norm", Conv2D is "conv2d".
// NamedParameters numbers layers per type in depth-first order, so the
// second Linear of a model is "linear_1" and its weight "linear_1.weight".
package nn
