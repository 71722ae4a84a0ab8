package safetensors

import "fmt"

// DType is a SafeTensors dtype string.
type DType string

// SafeTensors dtypes.
const (
	F16  DType = "F16"
	BF16 DType = "BF16"
	F32  DType = "F32"
	F64  DType = "F64"
	I8   DType = "I8"
	I16  DType = "I16"
	I32  DType = "I32"
	I64  DType = "I64"
	U8   DType = "U8"
	Bool DType = "BOOL"
)

// Size returns the byte size of one element.
func (d DType) Size() (int, error) {
	switch d {
	case U8, I8, Bool:
		return 1, nil
	case F16, BF16, I16:
		return 2, nil
	case F32, I32:
		return 4, nil
	case F64, I64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, d)
	}
}
