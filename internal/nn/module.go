// Package nn implements the layer and parameter model that sparsity tooling walks.
//
// This package provides:
//   - Layer interface: anything that owns trainable parameters
//   - Container interface: layers that hold child layers
//   - Parameter: a named float32 tensor with an optional gradient
//   - Linear, Conv2D, LayerNorm layers and the Sequential container
//   - Canonical layer naming (LayerNorm -> layer_norm) and parameter naming
//
// Design inspired by PyTorch's nn.Module but reduced to what pruning needs.
package nn

// Layer is the base interface for all neural network components.
//
// Parameters returns every trainable parameter the layer owns directly.
// Containers return nothing here and expose their children instead.
type Layer interface {
	Parameters() []*Parameter
}

// Container is a layer that holds child layers.
type Container interface {
	Layer
	Children() []Layer
}
