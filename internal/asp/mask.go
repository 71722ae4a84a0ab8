package asp

import (
	"fmt"

	"github.com/born-ml/asp/internal/parallel"
	"github.com/born-ml/asp/internal/tensor"
)

// kernelConfig drives the block loops of every mask kernel.
var kernelConfig = parallel.DefaultConfig()

// CreateMask computes an N:M sparsity mask for t with the given algorithm.
//
// Masks are computed row-major on a 2-D view of t:
//   - rank 1 [a]          -> [1, a]
//   - rank 2 [a, b]       -> [a, b]
//   - rank 3 [a, b, c]    -> [a*b, c]
//   - rank 4 [a, b, c, d] -> permuted to [a, b, d, c], then [a*b*d, c]
//
// The result has t's shape and dtype and holds only 0 and 1.
func CreateMask[T tensor.DType](t *tensor.Tensor[T], algo MaskAlgo, n, m int) (*tensor.Tensor[T], error) {
	if err := validatePattern(n, m); err != nil {
		return nil, err
	}

	view, restore, err := matrixView(t)
	if err != nil {
		return nil, err
	}

	var mask matrix
	switch algo {
	case Mask1D:
		mask = mask1D(view, n, m, kernelConfig)
	case Mask2DGreedy:
		mask = mask2DGreedy(view, n, m, kernelConfig)
	case Mask2DBest:
		mask, err = mask2DBest(view, n, m, kernelConfig)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaskAlgo, algo)
	}

	return restore(mask), nil
}

// CheckSparsity reports whether t satisfies the N:M pattern under the given
// check method, using the same 2-D view as CreateMask.
func CheckSparsity[T tensor.DType](t *tensor.Tensor[T], method CheckMethod, n, m int) (bool, error) {
	if err := validatePattern(n, m); err != nil {
		return false, err
	}

	view, _, err := matrixView(t)
	if err != nil {
		return false, err
	}

	switch method {
	case Check1D:
		return check1D(view, n, m), nil
	case Check2D:
		return check2D(view, n, m, kernelConfig), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCheckMethod, method)
	}
}

// Density returns the fraction of non-zero elements in t.
func Density[T tensor.DType](t *tensor.Tensor[T]) float64 {
	return float64(t.CountNonZero()) / float64(t.NumElements())
}

// matrixView flattens t to the 2-D layout the kernels use and returns a
// function that turns a kernel result back into a tensor shaped like t.
func matrixView[T tensor.DType](t *tensor.Tensor[T]) (matrix, func(matrix) *tensor.Tensor[T], error) {
	shape := t.Shape()
	switch len(shape) {
	case 1, 2, 3:
		cols := shape[len(shape)-1]
		rows := t.NumElements() / cols
		restore := func(mask matrix) *tensor.Tensor[T] {
			return fromMatrix[T](mask, shape)
		}
		return matrix{rows: rows, cols: cols, data: t.Float64s()}, restore, nil
	case 4:
		permuted := t.Transpose(0, 1, 3, 2)
		view := matrix{
			rows: shape[0] * shape[1] * shape[3],
			cols: shape[2],
			data: permuted.Float64s(),
		}
		restore := func(mask matrix) *tensor.Tensor[T] {
			return fromMatrix[T](mask, permuted.Shape()).Transpose(0, 1, 3, 2)
		}
		return view, restore, nil
	default:
		return matrix{}, nil, fmt.Errorf("%w: %dD tensor %v (supported: 1D-4D)", ErrUnsupportedRank, len(shape), shape)
	}
}

func fromMatrix[T tensor.DType](a matrix, shape tensor.Shape) *tensor.Tensor[T] {
	out := tensor.Zeros[T](shape)
	data := out.Data()
	for i, v := range a.data {
		data[i] = T(v)
	}
	return out
}
