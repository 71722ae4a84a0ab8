package nn

// Sequential is a container that holds layers in order.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewLayerNorm(128, 1e-5),
//	    nn.NewLinear(128, 10),
//	)
type Sequential struct {
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Add appends a layer.
func (s *Sequential) Add(l Layer) {
	s.layers = append(s.layers, l)
}

// Parameters returns nothing; a Sequential owns no parameters directly.
func (s *Sequential) Parameters() []*Parameter {
	return nil
}

// Children returns the contained layers in order.
func (s *Sequential) Children() []Layer {
	return s.layers
}
