package asp

import "fmt"

// MaskAlgo selects how a sparsity mask is computed.
type MaskAlgo string

// Supported mask algorithms.
const (
	// Mask1D keeps the N largest magnitudes in every M-element block of each row.
	Mask1D MaskAlgo = "mask_1d"
	// Mask2DGreedy keeps large magnitudes in every MxM block, at most N per row and column.
	Mask2DGreedy MaskAlgo = "mask_2d_greedy"
	// Mask2DBest picks, per MxM block, the N-per-row-and-column pattern keeping the most magnitude.
	Mask2DBest MaskAlgo = "mask_2d_best"
)

// CheckMethod selects how an N:M pattern is verified.
type CheckMethod string

// Supported check methods.
const (
	Check1D CheckMethod = "check_1d"
	Check2D CheckMethod = "check_2d"
)

// ParseMaskAlgo parses a mask algorithm name.
func ParseMaskAlgo(s string) (MaskAlgo, error) {
	switch algo := MaskAlgo(s); algo {
	case Mask1D, Mask2DGreedy, Mask2DBest:
		return algo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMaskAlgo, s)
	}
}

// CheckingMethodFor returns the check method matching a mask algorithm.
// 1-D masks are checked row-wise; both 2-D algorithms are checked block-wise.
func CheckingMethodFor(algo MaskAlgo) CheckMethod {
	if algo == Mask1D {
		return Check1D
	}
	return Check2D
}

// String implements fmt.Stringer.
func (a MaskAlgo) String() string { return string(a) }

// String implements fmt.Stringer.
func (c CheckMethod) String() string { return string(c) }
