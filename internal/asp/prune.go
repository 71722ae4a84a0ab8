package asp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/born-ml/asp/internal/tensor"
)

// PruneFunc computes the pruned weight and its mask for one parameter.
//
// m and n describe the N:M pattern, algo the mask algorithm, and paramName
// identifies the parameter in logs and errors. Implementations must not modify
// weight. Every function registered for a layer type has this signature.
type PruneFunc func(
	ctx context.Context,
	weight *tensor.Tensor[float32],
	m, n int,
	algo MaskAlgo,
	paramName string,
) (pruned, mask *tensor.Tensor[float32], err error)

// DefaultPrune prunes a 2-D [out, in] or 4-D [out, in, kh, kw] weight to an N:M pattern.
//
// The mask is computed on the transposed weight and transposed back. Sparse
// matmul kernels compute D = A x B with the sparse operand A pruned along its k
// dimension; weights act as A = W^T, and the mask kernels work row-major on the
// last dimension, so pruning W^T row-wise prunes W along its first dimension
// (rank 2) or its input channels (rank 4).
//
// Weights whose pruned dimension is smaller than m are returned unpruned with an
// all-ones mask, and a warning is logged to zerolog.Ctx(ctx).
//
// The pruned weight is verified before returning; a weight that does not pass
// the check yields an error wrapping ErrSparsityCheck. weight is never modified.
func DefaultPrune[T tensor.DType](
	ctx context.Context,
	weight *tensor.Tensor[T],
	m, n int,
	algo MaskAlgo,
	paramName string,
) (pruned, mask *tensor.Tensor[T], err error) {
	if err := validatePattern(n, m); err != nil {
		return nil, nil, fmt.Errorf("prune %s: %w", paramName, err)
	}

	shape := weight.Shape()
	if len(shape) != 2 && len(shape) != 4 {
		return nil, nil, fmt.Errorf("prune %s: %w: %dD weight %v (want 2D or 4D)",
			paramName, ErrUnsupportedRank, len(shape), shape)
	}

	pruned = weight.Clone()
	mask = tensor.OnesLike(pruned)

	// The target sparse kernels need at least m elements along the pruned dimension.
	if dim, size := prunedDim(shape); size < m {
		zerolog.Ctx(ctx).Warn().
			Str("param", paramName).
			Ints("shape", shape.Ints()).
			Int("m", m).
			Msgf("%s is not pruned because the %s dimension of %v is smaller than %d", paramName, dim, shape, m)
		return pruned, mask, nil
	}

	checked := CheckingMethodFor(algo)

	maskT, err := CreateMask(weight.Transpose(), algo, n, m)
	if err != nil {
		return nil, nil, fmt.Errorf("prune %s: %w", paramName, err)
	}
	mask = maskT.Transpose()
	pruned = weight.Mul(mask)

	ok, err := CheckSparsity(pruned.Transpose(), checked, n, m)
	if err != nil {
		return nil, nil, fmt.Errorf("prune %s: %w", paramName, err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: pruning %s weight matrix failed (%d:%d, %s)",
			ErrSparsityCheck, paramName, n, m, checked)
	}

	return pruned, mask, nil
}

// prunedDim names and sizes the dimension DefaultPrune prunes along.
func prunedDim(shape tensor.Shape) (string, int) {
	if len(shape) == 4 {
		return "second", shape[1]
	}
	return "first", shape[0]
}

// IsExempt reports whether DefaultPrune leaves a weight of this shape dense.
func IsExempt(shape tensor.Shape, m int) bool {
	_, size := prunedDim(shape)
	return size < m
}

// CheckPruned reports whether a weight laid out like DefaultPrune's input
// satisfies the N:M pattern along the pruned dimension. Exempt weights pass.
func CheckPruned[T tensor.DType](weight *tensor.Tensor[T], method CheckMethod, n, m int) (bool, error) {
	if err := validatePattern(n, m); err != nil {
		return false, err
	}
	shape := weight.Shape()
	if len(shape) != 2 && len(shape) != 4 {
		return false, fmt.Errorf("%w: %dD weight %v (want 2D or 4D)", ErrUnsupportedRank, len(shape), shape)
	}
	if IsExempt(shape, m) {
		return true, nil
	}
	return CheckSparsity(weight.Transpose(), method, n, m)
}
