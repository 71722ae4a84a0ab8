package safetensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/asp/internal/tensor"
)

// DecodeFloat32 converts an F32 entry into a tensor.
func DecodeFloat32(e Entry) (*tensor.Tensor[float32], error) {
	if e.DType != F32 {
		return nil, fmt.Errorf("%w: %s, want %s", ErrUnsupportedType, e.DType, F32)
	}

	numel, err := NumElements(e.Shape)
	if err != nil {
		return nil, err
	}
	shape := tensor.Shape(e.Shape)
	if len(e.Data) != numel*4 {
		return nil, fmt.Errorf("%w: %d bytes for shape %v", ErrSizeMismatch, len(e.Data), e.Shape)
	}

	data := make([]float32, len(e.Data)/4)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(e.Data[i*4:]))
	}
	return tensor.FromSlice(data, shape)
}

// EncodeFloat32 converts a tensor into an F32 entry.
func EncodeFloat32(t *tensor.Tensor[float32]) Entry {
	data := t.Data()
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return Entry{DType: F32, Shape: t.Shape().Ints(), Data: raw}
}
