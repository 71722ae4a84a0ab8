package asp

import (
	"sync/atomic"

	"github.com/born-ml/asp/internal/parallel"
)

// mask2DGreedy visits the entries of every m x m tile by decreasing magnitude
// and keeps an entry while its row and column both hold fewer than n kept entries.
// The matrix is zero-padded to whole tiles; padding never appears in the mask.
func mask2DGreedy(a matrix, n, m int, cfg parallel.Config) matrix {
	mask := newMatrix(a.rows, a.cols)

	parallel.ForTiles(a.rows, a.cols, m, func(r0, c0 int) {
		mags := make([]float64, m*m)
		for k := range mags {
			mags[k] = a.magnitude(r0+k/m, c0+k%m)
		}
		order := make([]int, m*m)
		rankByMagnitude(mags, order)

		rowCount := make([]int, m)
		colCount := make([]int, m)
		for _, k := range order {
			i, j := k/m, k%m
			if rowCount[i] == n || colCount[j] == n {
				continue
			}
			rowCount[i]++
			colCount[j]++
			if a.inBounds(r0+i, c0+j) {
				mask.data[(r0+i)*a.cols+c0+j] = 1
			}
		}
	}, cfg)

	return mask
}

// mask2DBest applies, to every m x m tile, the valid pattern that keeps the
// largest total magnitude. The first best pattern wins ties.
func mask2DBest(a matrix, n, m int, cfg parallel.Config) (matrix, error) {
	patterns, err := validPatterns(n, m)
	if err != nil {
		return matrix{}, err
	}

	mask := newMatrix(a.rows, a.cols)
	parallel.ForTiles(a.rows, a.cols, m, func(r0, c0 int) {
		mags := make([]float64, m*m)
		for k := range mags {
			mags[k] = a.magnitude(r0+k/m, c0+k%m)
		}

		best, bestScore := 0, -1.0
		for p, pattern := range patterns {
			score := 0.0
			for _, k := range pattern {
				score += mags[k]
			}
			if score > bestScore {
				best, bestScore = p, score
			}
		}

		for _, k := range patterns[best] {
			i, j := k/m, k%m
			if a.inBounds(r0+i, c0+j) {
				mask.data[(r0+i)*a.cols+c0+j] = 1
			}
		}
	}, cfg)

	return mask, nil
}

// check2D reports whether every row and column of every m x m tile has at most n non-zeros.
func check2D(a matrix, n, m int, cfg parallel.Config) bool {
	var violated atomic.Bool

	parallel.ForTiles(a.rows, a.cols, m, func(r0, c0 int) {
		rowCount := make([]int, m)
		colCount := make([]int, m)
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				if !a.inBounds(r0+i, c0+j) || a.data[(r0+i)*a.cols+c0+j] == 0 {
					continue
				}
				rowCount[i]++
				colCount[j]++
			}
		}
		for k := 0; k < m; k++ {
			if rowCount[k] > n || colCount[k] > n {
				violated.Store(true)
				return
			}
		}
	}, cfg)

	return !violated.Load()
}
