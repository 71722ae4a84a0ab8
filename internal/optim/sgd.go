package optim

import (
	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter]*tensor.Tensor[float32]
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor[float32]),
	}
}

// Step performs a single optimization step.
// Parameters with no gradient are skipped.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		update := grad.Data()
		if s.momentum != 0 {
			update = s.updateVelocity(param, grad)
		}

		data := param.Tensor().Data()
		for i := range data {
			data[i] -= s.lr * update[i]
		}
	}
}

// updateVelocity computes velocity = momentum * velocity + grad and returns it.
func (s *SGD) updateVelocity(param *nn.Parameter, grad *tensor.Tensor[float32]) []float32 {
	velocity, ok := s.velocities[param]
	if !ok {
		velocity = grad.Clone()
		s.velocities[param] = velocity
		return velocity.Data()
	}

	v := velocity.Data()
	for i, g := range grad.Data() {
		v[i] = s.momentum*v[i] + g
	}
	return v
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// Parameters returns the parameters being optimized.
func (s *SGD) Parameters() []*nn.Parameter {
	return s.params
}
