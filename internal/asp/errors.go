package asp

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidPattern       = errors.New("invalid N:M pattern")
	ErrUnsupportedRank      = errors.New("unsupported tensor rank")
	ErrUnknownMaskAlgo      = errors.New("unknown mask algorithm")
	ErrUnknownCheckMethod   = errors.New("unknown check method")
	ErrPatternSpaceTooLarge = errors.New("pattern space too large for exhaustive search")
	ErrSparsityCheck        = errors.New("sparsity check failed")
	ErrInvalidLayer         = errors.New("invalid layer reference")
)

// validatePattern requires 0 < n <= m.
func validatePattern(n, m int) error {
	if m <= 0 || n <= 0 || n > m {
		return fmt.Errorf("%w: n=%d, m=%d (need 0 < n <= m)", ErrInvalidPattern, n, m)
	}
	return nil
}
