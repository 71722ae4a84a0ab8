// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package asp

import (
	"context"
	"reflect"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/metrics"
	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/optim"
	"github.com/born-ml/asp/internal/tensor"
)

// MaskAlgo selects how a sparsity mask is computed.
type MaskAlgo = asp.MaskAlgo

// Mask algorithms.
const (
	Mask1D       = asp.Mask1D
	Mask2DGreedy = asp.Mask2DGreedy
	Mask2DBest   = asp.Mask2DBest
)

// CheckMethod selects how an N:M pattern is verified.
type CheckMethod = asp.CheckMethod

// Check methods.
const (
	Check1D = asp.Check1D
	Check2D = asp.Check2D
)

// Errors.
var (
	ErrInvalidPattern       = asp.ErrInvalidPattern
	ErrUnsupportedRank      = asp.ErrUnsupportedRank
	ErrUnknownMaskAlgo      = asp.ErrUnknownMaskAlgo
	ErrUnknownCheckMethod   = asp.ErrUnknownCheckMethod
	ErrPatternSpaceTooLarge = asp.ErrPatternSpaceTooLarge
	ErrSparsityCheck        = asp.ErrSparsityCheck
	ErrInvalidLayer         = asp.ErrInvalidLayer
)

// ParseMaskAlgo validates an algorithm name.
func ParseMaskAlgo(s string) (MaskAlgo, error) {
	return asp.ParseMaskAlgo(s)
}

// CheckingMethodFor returns the check method matching a mask algorithm.
func CheckingMethodFor(algo MaskAlgo) CheckMethod {
	return asp.CheckingMethodFor(algo)
}

// CreateMask computes an N:M mask for t.
func CreateMask[T tensor.DType](t *tensor.Tensor[T], algo MaskAlgo, n, m int) (*tensor.Tensor[T], error) {
	return asp.CreateMask(t, algo, n, m)
}

// CheckSparsity reports whether t satisfies the N:M pattern under method.
func CheckSparsity[T tensor.DType](t *tensor.Tensor[T], method CheckMethod, n, m int) (bool, error) {
	return asp.CheckSparsity(t, method, n, m)
}

// Density returns the fraction of non-zero elements of t.
func Density[T tensor.DType](t *tensor.Tensor[T]) float64 {
	return asp.Density(t)
}

// PruneFunc computes the pruned weight and its mask for one parameter.
type PruneFunc = asp.PruneFunc

// DefaultPrune prunes a 2-D or 4-D weight to an N:M pattern.
func DefaultPrune[T tensor.DType](
	ctx context.Context,
	weight *tensor.Tensor[T],
	m, n int,
	algo MaskAlgo,
	paramName string,
) (pruned, mask *tensor.Tensor[T], err error) {
	return asp.DefaultPrune(ctx, weight, m, n, algo, paramName)
}

// Registry

// Pruner is the pruning function bound to a layer type.
type Pruner = asp.Pruner

// DefaultPruner returns the Pruner that runs DefaultPrune.
func DefaultPruner() Pruner {
	return asp.DefaultPruner()
}

// CustomPruner returns a Pruner running fn.
func CustomPruner(fn PruneFunc) Pruner {
	return asp.CustomPruner(fn)
}

// Registry maps canonical layer type names to pruners.
type Registry = asp.Registry

// NewRegistry returns a registry with fc, linear and conv2d bound to the default pruner.
func NewRegistry() *Registry {
	return asp.NewRegistry()
}

// LayerRef identifies a layer type for registration.
type LayerRef = asp.LayerRef

// LayerName refers to a layer type by its canonical name.
func LayerName(name string) LayerRef {
	return asp.LayerName(name)
}

// LayerOf refers to the type of a layer value.
func LayerOf(l nn.Layer) LayerRef {
	return asp.LayerOf(l)
}

// LayerType refers to a layer type.
func LayerType(t reflect.Type) LayerRef {
	return asp.LayerType(t)
}

// LayerTypeOf refers to the layer type L.
func LayerTypeOf[L nn.Layer]() LayerRef {
	return asp.LayerTypeOf[L]()
}

// Model pruning

// PruneConfig controls one PruneModel run.
type PruneConfig = asp.PruneConfig

// DefaultPruneConfig returns 2:4 sparsity with 1-D masks.
func DefaultPruneConfig() PruneConfig {
	return asp.DefaultPruneConfig()
}

// Sparsifier prunes the supported parameters of a model and tracks their masks.
type Sparsifier = asp.Sparsifier

// Option configures a Sparsifier.
type Option = asp.Option

// NewSparsifier creates a Sparsifier resolving pruners through reg.
func NewSparsifier(reg *Registry, opts ...Option) *Sparsifier {
	return asp.NewSparsifier(reg, opts...)
}

// Recorder receives one observation per parameter visited by PruneModel.
type Recorder = metrics.Recorder

// Outcome describes what happened to one parameter during PruneModel.
type Outcome = metrics.Outcome

// Pruning outcomes.
const (
	Pruned   = metrics.Pruned
	Skipped  = metrics.Skipped
	Excluded = metrics.Excluded
	Failed   = metrics.Failed
)

// WithRecorder sets the metrics recorder of a Sparsifier.
func WithRecorder(r Recorder) Option {
	return asp.WithRecorder(r)
}

// SparseOptimizer is an optimizer that keeps pruned weights sparse.
type SparseOptimizer = asp.SparseOptimizer

// Decorate wraps opt so that pruned weights of model stay sparse during training.
func Decorate(opt optim.Optimizer, s *Sparsifier, model nn.Layer) *SparseOptimizer {
	return asp.Decorate(opt, s, model)
}
