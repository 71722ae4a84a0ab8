package asp

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/combin"
)

// maxPatternCandidates bounds the Cartesian search in validPatterns.
// 8:1 (8^8 candidates) is the largest common configuration that fits.
const maxPatternCandidates = 1 << 24

type patternKey struct{ n, m int }

// patternCache memoizes validPatterns; the result only depends on (n, m).
var patternCache sync.Map // patternKey -> [][]int

// validPatterns returns every m x m 0/1 pattern with exactly n ones in each row
// and each column. A pattern is the list of its flat (row*m + col) one positions.
//
// Rows are drawn from the n-subsets of m columns; the Cartesian product of m
// such rows is filtered down to the products whose column sums are all n.
func validPatterns(n, m int) ([][]int, error) {
	key := patternKey{n: n, m: m}
	if cached, ok := patternCache.Load(key); ok {
		return cached.([][]int), nil
	}

	rowChoices := combin.Combinations(m, n)
	candidates := math.Pow(float64(len(rowChoices)), float64(m))
	if candidates > maxPatternCandidates {
		return nil, fmt.Errorf("%w: %d:%d has %.0f candidates (limit %d)",
			ErrPatternSpaceTooLarge, n, m, candidates, maxPatternCandidates)
	}

	lens := make([]int, m)
	for i := range lens {
		lens[i] = len(rowChoices)
	}

	var patterns [][]int
	gen := combin.NewCartesianGenerator(lens)
	product := make([]int, m)
	colSum := make([]int, m)
	for gen.Next() {
		gen.Product(product)

		clear(colSum)
		valid := true
		for _, choice := range product {
			for _, col := range rowChoices[choice] {
				colSum[col]++
				if colSum[col] > n {
					valid = false
				}
			}
		}
		if !valid {
			continue
		}

		pattern := make([]int, 0, n*m)
		for row, choice := range product {
			for _, col := range rowChoices[choice] {
				pattern = append(pattern, row*m+col)
			}
		}
		patterns = append(patterns, pattern)
	}

	actual, _ := patternCache.LoadOrStore(key, patterns)
	return actual.([][]int), nil
}
