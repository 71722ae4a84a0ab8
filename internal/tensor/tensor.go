package tensor

import "fmt"

// Tensor is a dense, row-major tensor with element type T.
//
// Example:
//
//	w := tensor.Zeros[float32](tensor.Shape{8, 4})
//	w.Set(1.5, 0, 2)
//	wT := w.Transpose() // shape [4, 8]
type Tensor[T DType] struct {
	shape  Shape
	stride []int
	data   []T
}

// newTensor wraps data without copying it. Callers guarantee len(data) matches shape.
func newTensor[T DType](data []T, shape Shape) *Tensor[T] {
	return &Tensor[T]{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   data,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	buf := make([]T, len(data))
	copy(buf, data)
	return newTensor(buf, shape), nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Rank returns the number of dimensions.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// DType returns the tensor's data type.
func (t *Tensor[T]) DType() DataType {
	var dummy T
	return inferDataType(dummy)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return t.shape.NumElements()
}

// Data returns the tensor's backing slice.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// Float64s returns a float64 copy of the tensor's elements.
func (t *Tensor[T]) Float64s() []float64 {
	out := make([]float64, len(t.data))
	for i, v := range t.data {
		out[i] = float64(v)
	}
	return out
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) At(indices ...int) T {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor[T]) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}

	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		off += idx * t.stride[i]
	}
	return off
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	buf := make([]T, len(t.data))
	copy(buf, t.data)
	return newTensor(buf, t.shape)
}

// Equal reports whether both tensors have the same shape and elements.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if other == nil || !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.shape)
}
