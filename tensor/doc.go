// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors that weights and masks are stored in.
//
// # Overview
//
// Tensors are row-major and generic over float32 and float64. The package provides:
//   - Creation: Zeros, Ones, OnesLike, Full, FromSlice
//   - Layout: Transpose (NumPy axis semantics), Reshape
//   - Element-wise Mul and non-zero counting
//
// # Basic Usage
//
//	w, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    return err
//	}
//	wT := w.Transpose()           // shape [3, 2]
//	m := tensor.OnesLike(w)       // all-ones mask
//	pruned := w.Mul(m)
//
// # Panics
//
// Invalid shapes, bad axis permutations and shape mismatches in Mul are
// programmer errors and panic. FromSlice reports them as errors instead.
package tensor
