package asp

import (
	"cmp"
	"math"
	"slices"
)

// matrix is the row-major 2-D view every mask kernel works on.
type matrix struct {
	rows, cols int
	data       []float64
}

func newMatrix(rows, cols int) matrix {
	return matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (a matrix) row(r int) []float64 {
	return a.data[r*a.cols : (r+1)*a.cols]
}

// magnitude returns |a[r][c]|, or 0 outside the matrix (zero padding).
func (a matrix) magnitude(r, c int) float64 {
	if r >= a.rows || c >= a.cols {
		return 0
	}
	return math.Abs(a.data[r*a.cols+c])
}

func (a matrix) inBounds(r, c int) bool {
	return r < a.rows && c < a.cols
}

// rankByMagnitude fills order with 0..len(mags)-1 sorted by decreasing
// magnitude. Ties keep the lower index first so results are deterministic.
func rankByMagnitude(mags []float64, order []int) {
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(mags[b], mags[a])
	})
}
