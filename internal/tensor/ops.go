package tensor

import "fmt"

// Transpose permutes the tensor's dimensions and returns a new tensor.
// With no axes, all dimensions are reversed (W.T for matrices).
// Panics on an invalid permutation.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 3, 4, 5})
//	x.Transpose().Shape()           // [5, 4, 3, 2]
//	x.Transpose(0, 1, 3, 2).Shape() // [2, 3, 5, 4]
func (t *Tensor[T]) Transpose(axes ...int) *Tensor[T] {
	axes, err := normalizeAxes(t.Rank(), axes)
	if err != nil {
		panic(err.Error())
	}
	newShape, err := t.shape.Permute(axes...)
	if err != nil {
		panic(err.Error())
	}

	result := newTensor(make([]T, len(t.data)), newShape)
	transposeData(result, t, axes)
	return result
}

// transposeData walks the output in row-major order, tracking the matching source offset.
func transposeData[T DType](dst, src *Tensor[T], axes []int) {
	ndim := len(axes)
	if ndim == 0 {
		copy(dst.data, src.data)
		return
	}

	// srcStride[i] is the source stride of output dimension i.
	srcStride := make([]int, ndim)
	for i, ax := range axes {
		srcStride[i] = src.stride[ax]
	}

	idx := make([]int, ndim)
	off := 0
	for i := range dst.data {
		dst.data[i] = src.data[off]
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			off += srcStride[d]
			if idx[d] < dst.shape[d] {
				break
			}
			off -= idx[d] * srcStride[d]
			idx[d] = 0
		}
	}
}

// Reshape returns a copy of the tensor with a new shape.
// Panics if the number of elements changes.
func (t *Tensor[T]) Reshape(dims ...int) *Tensor[T] {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, t.NumElements(), shape, shape.NumElements()))
	}

	buf := make([]T, len(t.data))
	copy(buf, t.data)
	return newTensor(buf, shape)
}

// Mul multiplies two tensors of the same shape element-wise.
// Panics on shape mismatch.
func (t *Tensor[T]) Mul(other *Tensor[T]) *Tensor[T] {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("mul: shape mismatch %v vs %v", t.shape, other.shape))
	}

	result := newTensor(make([]T, len(t.data)), t.shape)
	for i, v := range t.data {
		result.data[i] = v * other.data[i]
	}
	return result
}

// CountNonZero returns the number of non-zero elements.
func (t *Tensor[T]) CountNonZero() int {
	n := 0
	for _, v := range t.data {
		if v != 0 {
			n++
		}
	}
	return n
}
