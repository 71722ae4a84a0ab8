package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/asp/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer with a bias.
func NewLinear(inFeatures, outFeatures int) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})
	bias := tensor.Zeros[float32](tensor.Shape{outFeatures})

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}
}

// Forward computes x @ W.T + b for a [batch, in_features] input.
func (l *Linear) Forward(input *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		return nil, fmt.Errorf("linear: expected input [batch, %d], got %v", l.inFeatures, shape)
	}
	batch := shape[0]

	x := mat.NewDense(batch, l.inFeatures, input.Float64s())
	w := mat.NewDense(l.outFeatures, l.inFeatures, l.weight.Tensor().Float64s())

	var y mat.Dense
	y.Mul(x, w.T())

	bias := l.bias.Tensor().Data()
	out := make([]float32, 0, batch*l.outFeatures)
	for i := 0; i < batch; i++ {
		for j := 0; j < l.outFeatures; j++ {
			out = append(out, float32(y.At(i, j))+bias[j])
		}
	}
	return tensor.FromSlice(out, tensor.Shape{batch, l.outFeatures})
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}
