// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/asp/internal/tensor"
)

// DType is a constraint for tensor element types: float32 or float64.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense row-major tensor with element type T.
type Tensor[T DType] = tensor.Tensor[T]

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3})
func Zeros[T DType](shape Shape) *Tensor[T] {
	return tensor.Zeros[T](shape)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape) *Tensor[T] {
	return tensor.Ones[T](shape)
}

// OnesLike creates a tensor of ones with the shape of t.
func OnesLike[T DType](t *Tensor[T]) *Tensor[T] {
	return tensor.OnesLike(t)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14)
func Full[T DType](shape Shape, value T) *Tensor[T] {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor from a Go slice. The data is copied.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3})
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape)
}
