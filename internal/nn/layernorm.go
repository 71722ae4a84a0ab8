package nn

import "github.com/born-ml/asp/internal/tensor"

// LayerNorm holds the scale and shift of a layer normalization over the last dimension.
// Its parameters are 1-D and are never pruned.
type LayerNorm struct {
	Gamma   *Parameter // learnable scale [d_model]
	Beta    *Parameter // learnable shift [d_model]
	Epsilon float32
}

// NewLayerNorm creates a LayerNorm with gamma set to ones and beta to zeros.
func NewLayerNorm(normalizedShape int, epsilon float32) *LayerNorm {
	return &LayerNorm{
		Gamma:   NewParameter("gamma", tensor.Ones[float32](tensor.Shape{normalizedShape})),
		Beta:    NewParameter("beta", tensor.Zeros[float32](tensor.Shape{normalizedShape})),
		Epsilon: epsilon,
	}
}

// Parameters returns [gamma, beta].
func (ln *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{ln.Gamma, ln.Beta}
}
