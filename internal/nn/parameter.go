package nn

import (
	"fmt"

	"github.com/born-ml/asp/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	weight := nn.NewParameter("weight", tensor.Zeros[float32](tensor.Shape{8, 4}))
//	w := weight.Tensor()
type Parameter struct {
	name   string                   // Local parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[float32] // The parameter tensor
	grad   *tensor.Tensor[float32] // Gradient tensor, nil until set
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor[float32]) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor[float32] {
	return p.tensor
}

// SetTensor replaces the parameter's values.
// The new tensor must have the same shape as the current one.
func (p *Parameter) SetTensor(t *tensor.Tensor[float32]) error {
	if !p.tensor.Shape().Equal(t.Shape()) {
		return fmt.Errorf("parameter %s: shape %v does not match %v", p.name, t.Shape(), p.tensor.Shape())
	}
	p.tensor = t
	return nil
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been set.
func (p *Parameter) Grad() *tensor.Tensor[float32] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter) SetGrad(grad *tensor.Tensor[float32]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
