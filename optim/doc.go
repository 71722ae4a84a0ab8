// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Optimizer interface for custom optimizers
//
// Optimizers read gradients from nn.Parameter.Grad and skip parameters that
// have none. Wrap an optimizer with asp.Decorate to keep pruned weights sparse.
//
// # Basic Usage
//
//	model := nn.NewLinear(784, 10)
//	optimizer := optim.NewSGD(
//	    nn.AllParameters(model),
//	    optim.SGDConfig{LR: 0.01, Momentum: 0.9},
//	)
//
//	// ... compute gradients and set them with param.SetGrad ...
//	optimizer.Step()
//	optimizer.ZeroGrad()
package optim
