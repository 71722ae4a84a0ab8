package nn

import (
	"fmt"

	"github.com/born-ml/asp/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels] (optional)
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels] or nil
}

// NewConv2D creates a new 2D convolutional layer with Xavier initialization.
func NewConv2D(inChannels, outChannels, kernelH, kernelW int, useBias bool) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}

	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	weightShape := tensor.Shape{outChannels, inChannels, kernelH, kernelW}

	c := &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		weight:      NewParameter("weight", Xavier(fanIn, fanOut, weightShape)),
	}
	if useBias {
		c.bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outChannels}))
	}
	return c
}

// Parameters returns [weight, bias] or [weight] without bias.
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias != nil {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// Weight returns the weight parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// KernelSize returns [kernel_h, kernel_w].
func (c *Conv2D) KernelSize() [2]int {
	return c.kernelSize
}
