package tensor

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4})
func Zeros[T DType](shape Shape) *Tensor[T] {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return newTensor(make([]T, shape.NumElements()), shape)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape) *Tensor[T] {
	return Full[T](shape, 1)
}

// OnesLike creates a tensor of ones with the shape of t.
func OnesLike[T DType](t *Tensor[T]) *Tensor[T] {
	return Ones[T](t.Shape())
}

// Full creates a tensor filled with a specific value.
func Full[T DType](shape Shape, value T) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}
