package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/asp/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
// Drawn values are never exactly zero, so freshly initialized layers start dense.
func Xavier(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor[float32] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape)
	data := t.Data()
	for i := range data {
		v := 0.0
		for v == 0 {
			//nolint:gosec // Using math/rand for weight initialization (not security-critical)
			v = (rand.Float64()*2.0 - 1.0) * bound
		}
		data[i] = float32(v)
	}
	return t
}
