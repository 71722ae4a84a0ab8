// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"reflect"

	"github.com/born-ml/asp/internal/nn"
	"github.com/born-ml/asp/internal/tensor"
)

// Layer is implemented by every module that owns parameters.
type Layer = nn.Layer

// Container is a Layer with child layers.
type Container = nn.Container

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor[float32]) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer with weight [out, in].
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128)
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// Conv2D represents a 2D convolutional layer with weight [out, in, kh, kw].
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(1, 32, 3, 3, true) // in_channels=1, out_channels=32, kernel=3x3, useBias=true
func NewConv2D(inChannels, outChannels, kernelH, kernelW int, useBias bool) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, useBias)
}

// LayerNorm represents layer normalization over the last dimension.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a new layer normalization layer.
func NewLayerNorm(normalizedShape int, epsilon float32) *LayerNorm {
	return nn.NewLayerNorm(normalizedShape, epsilon)
}

// Sequential is a container running its layers in order.
type Sequential = nn.Sequential

// NewSequential creates a container from layers.
func NewSequential(layers ...Layer) *Sequential {
	return nn.NewSequential(layers...)
}

// Naming

// NamedParameter pairs a parameter with its model-unique name.
type NamedParameter = nn.NamedParameter

// CanonicalName converts a Go type name to its snake_case layer type name.
func CanonicalName(typeName string) string {
	return nn.CanonicalName(typeName)
}

// TypeName returns the canonical name of a layer's concrete type.
func TypeName(l Layer) string {
	return nn.TypeName(l)
}

// TypeNameOf returns the canonical name of a layer type.
func TypeNameOf(t reflect.Type) string {
	return nn.TypeNameOf(t)
}

// NamedParameters returns every parameter under root with its unique name.
func NamedParameters(root Layer) []NamedParameter {
	return nn.NamedParameters(root)
}

// AllParameters returns every parameter under root.
func AllParameters(root Layer) []*Parameter {
	return nn.AllParameters(root)
}
