package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataType(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "float64", Float64.String())

	type weight float64
	assert.Equal(t, Float32, inferDataType(float32(0)))
	assert.Equal(t, Float64, inferDataType(float64(0)))
	assert.Equal(t, Float64, inferDataType(weight(0)))
}

func TestFromSlice(t *testing.T) {
	src := []float32{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(src, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 2, x.Rank())
	assert.Equal(t, float32(6), x.At(1, 2))

	src[0] = 100
	assert.Equal(t, float32(1), x.At(0, 0), "FromSlice must copy its input")

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)

	_, err = FromSlice([]float32{}, Shape{0, 2})
	assert.Error(t, err)

	_, err = FromSlice([]float32{}, Shape{1 << 62, 4})
	assert.Error(t, err, "element count overflows")
}

func TestCreation(t *testing.T) {
	z := Zeros[float64](Shape{2, 2})
	assert.Equal(t, 0, z.CountNonZero())

	o := Ones[float32](Shape{3, 2})
	assert.Equal(t, 6, o.CountNonZero())

	like := OnesLike(z)
	assert.Equal(t, Shape{2, 2}, like.Shape())
	assert.Equal(t, []float64{1, 1, 1, 1}, like.Data())

	assert.Panics(t, func() { Zeros[float32](Shape{2, -1}) })
}

func TestClone_IsDeep(t *testing.T) {
	x := Ones[float32](Shape{2, 2})
	c := x.Clone()
	c.Set(5, 0, 0)

	assert.Equal(t, float32(1), x.At(0, 0))
	assert.Equal(t, float32(5), c.At(0, 0))
	assert.False(t, x.Equal(c))
}

func TestTranspose2D(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	xT := x.Transpose()
	assert.Equal(t, Shape{3, 2}, xT.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, xT.Data())
	assert.True(t, xT.Transpose().Equal(x))
}

func TestTranspose4D(t *testing.T) {
	shape := Shape{2, 3, 4, 5}
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = float64(i)
	}
	x, err := FromSlice(data, shape)
	require.NoError(t, err)

	rev := x.Transpose()
	assert.Equal(t, Shape{5, 4, 3, 2}, rev.Shape())
	assert.Equal(t, x.At(1, 2, 3, 4), rev.At(4, 3, 2, 1))
	assert.Equal(t, x.At(0, 1, 2, 3), rev.At(3, 2, 1, 0))

	swapped := x.Transpose(0, 1, 3, 2)
	assert.Equal(t, Shape{2, 3, 5, 4}, swapped.Shape())
	assert.Equal(t, x.At(1, 0, 3, 2), swapped.At(1, 0, 2, 3))
	assert.True(t, swapped.Transpose(0, 1, 3, 2).Equal(x))
}

func TestTranspose_InvalidAxes(t *testing.T) {
	x := Zeros[float32](Shape{2, 3})
	assert.Panics(t, func() { x.Transpose(0) })
	assert.Panics(t, func() { x.Transpose(0, 0) })
	assert.Panics(t, func() { x.Transpose(0, 2) })
}

func TestReshape(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	r := x.Reshape(3, 2)
	assert.Equal(t, Shape{3, 2}, r.Shape())
	assert.Equal(t, x.Data(), r.Data())

	r.Set(0, 0, 0)
	assert.Equal(t, float32(1), x.At(0, 0))

	assert.Panics(t, func() { x.Reshape(4, 2) })
}

func TestMul(t *testing.T) {
	a, _ := FromSlice([]float32{1, -2, 3, 4}, Shape{2, 2})
	b, _ := FromSlice([]float32{0, 1, 1, 0}, Shape{2, 2})

	c := a.Mul(b)
	assert.Equal(t, []float32{0, -2, 3, 0}, c.Data())
	assert.Equal(t, Float32, c.DType())
	assert.Equal(t, 2, c.CountNonZero())

	assert.Panics(t, func() { a.Mul(Zeros[float32](Shape{4})) })
}

func TestFloat64s(t *testing.T) {
	x, _ := FromSlice([]float32{0.5, -1}, Shape{2})
	assert.Equal(t, []float64{0.5, -1}, x.Float64s())
}
