// Package optim implements optimization algorithms over nn parameters.
//
// Gradients are read from each parameter's Grad(); parameters without a
// gradient are left untouched.
//
// Example usage:
//
//	opt := optim.NewSGD(nn.AllParameters(model), optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//	// ... set gradients ...
//	opt.Step()
//	opt.ZeroGrad()
package optim

import "github.com/born-ml/asp/internal/nn"

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// Parameters returns the parameters being optimized.
	Parameters() []*nn.Parameter
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}
