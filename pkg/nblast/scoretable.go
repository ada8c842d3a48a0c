package nblast

import (
	"fmt"
	"sort"
)

// ScoreTable is an empirically-derived lookup table mapping (distance,
// |dot|) bins to a score. dist_upper and dot_upper must be strictly
// ascending and non-empty; a value falls in the bin of the first threshold
// strictly greater than it, so a value equal to a threshold falls in the
// next bin, values below the first threshold fall in bin 0, and the last
// bin absorbs every value from the second-to-last threshold upward. Cells
// are in dot-major (row = distance bin, column = dot bin) order: len(Cells)
// must equal
// len(DistUpper) * len(DotUpper).
type ScoreTable struct {
	DistUpper []float64
	DotUpper  []float64
	Cells     []float64
}

// BuildScoreFunction packages a ScoreTable into a ScoreFunc. Fails with
// ErrTableDimensionMismatch if the cell count does not match the product of
// the threshold vector lengths.
func BuildScoreFunction(table ScoreTable) (ScoreFunc, error) {
	if len(table.Cells) != len(table.DistUpper)*len(table.DotUpper) {
		return nil, fmt.Errorf("%w: %d cells, expected %d*%d=%d",
			ErrTableDimensionMismatch, len(table.Cells), len(table.DistUpper), len(table.DotUpper),
			len(table.DistUpper)*len(table.DotUpper))
	}
	distUpper := append([]float64(nil), table.DistUpper...)
	dotUpper := append([]float64(nil), table.DotUpper...)
	cells := append([]float64(nil), table.Cells...)
	numDotBins := len(dotUpper)

	return func(dd DistDot) float64 {
		row := findBin(dd.Dist, distUpper)
		col := findBin(dd.Dot, dotUpper)
		return cells[row*numDotBins+col]
	}, nil
}

// findBin locates the smallest i such that v < upper[i], clamped so that
// values above the largest threshold collapse into the last bin. upper must
// be non-empty and strictly ascending. Binary search keeps this O(log n).
func findBin(v float64, upper []float64) int {
	last := len(upper) - 1

	// sort.Search returns the smallest i with upper[i] > v: an exact match
	// v == upper[i] lands one bin past i (the bin it bounds), and any other
	// v lands in the bin of the first threshold strictly exceeding it.
	// Values above every threshold produce i == len(upper), clamped below.
	i := sort.Search(len(upper), func(i int) bool {
		return upper[i] > v
	})
	if i > last {
		return last
	}
	return i
}
