package asp

import "github.com/born-ml/asp/internal/parallel"

// mask1D keeps the n largest magnitudes of every m-element block in each row.
// A short trailing block is padded with zeros, so it keeps at most n real entries.
func mask1D(a matrix, n, m int, cfg parallel.Config) matrix {
	mask := newMatrix(a.rows, a.cols)

	parallel.For(a.rows, func(r int) {
		mags := make([]float64, m)
		order := make([]int, m)
		out := mask.row(r)
		for start := 0; start < a.cols; start += m {
			for k := range mags {
				mags[k] = a.magnitude(r, start+k)
			}
			rankByMagnitude(mags, order)
			for _, k := range order[:n] {
				if start+k < a.cols {
					out[start+k] = 1
				}
			}
		}
	}, cfg)

	return mask
}

// check1D reports whether every m-element block of every row has at most n non-zeros.
func check1D(a matrix, n, m int) bool {
	for r := 0; r < a.rows; r++ {
		row := a.row(r)
		for start := 0; start < a.cols; start += m {
			nonZero := 0
			for _, v := range row[start:min(start+m, a.cols)] {
				if v != 0 {
					nonZero++
				}
			}
			if nonZero > n {
				return false
			}
		}
	}
	return true
}
