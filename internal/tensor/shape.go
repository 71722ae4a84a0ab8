package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid: all dimensions > 0 and an element
// count that fits in an int.
func (s Shape) Validate() error {
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
		if n > math.MaxInt/dim {
			return fmt.Errorf("shape %v overflows the element count", []int(s))
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// stride[i] is the product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Permute returns the shape with its dimensions reordered by axes.
// Without axes the dimensions are reversed.
func (s Shape) Permute(axes ...int) (Shape, error) {
	axes, err := normalizeAxes(len(s), axes)
	if err != nil {
		return nil, err
	}
	out := make(Shape, len(s))
	for i, ax := range axes {
		out[i] = s[ax]
	}
	return out, nil
}

// Ints returns the shape as a plain int slice, for logging.
func (s Shape) Ints() []int {
	return []int(s.Clone())
}

// normalizeAxes validates a permutation, defaulting to full reversal.
func normalizeAxes(ndim int, axes []int) ([]int, error) {
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
		return axes, nil
	}

	if len(axes) != ndim {
		return nil, fmt.Errorf("transpose: axes length %d != ndim %d", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			return nil, fmt.Errorf("transpose: invalid axis %d for %dD tensor", ax, ndim)
		}
		if seen[ax] {
			return nil, fmt.Errorf("transpose: duplicate axis %d", ax)
		}
		seen[ax] = true
	}
	return axes, nil
}
