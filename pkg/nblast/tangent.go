package nblast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TangentFromPoints estimates a unit tangent from exactly NeighborhoodSize
// points: the centroid is subtracted, the resulting 3xN matrix of centered
// column vectors M is used to form the symmetric 3x3 inertia matrix M*Mt,
// and the tangent is the eigenvector of M*Mt with the largest eigenvalue,
// normalized to unit length. Sign is arbitrary; callers only ever compare
// tangents via AbsDot.
//
// Returns ErrTangentEstimationFailed if the eigendecomposition does not
// yield a finite, non-degenerate principal axis (e.g. exactly coincident
// points leaving the inertia matrix all zero). Colinear points are not
// degenerate: their principal axis is the line they lie on.
func TangentFromPoints(points []Point) (Tangent, error) {
	if len(points) != NeighborhoodSize {
		return Tangent{}, fmt.Errorf("nblast: tangent estimation requires exactly %d points, got %d", NeighborhoodSize, len(points))
	}

	centered := CenterPoints(points)

	// M is 3x5: each column is a centered point.
	m := mat.NewDense(3, NeighborhoodSize, nil)
	for col, p := range centered {
		m.Set(0, col, p[0])
		m.Set(1, col, p[1])
		m.Set(2, col, p[2])
	}

	// inertia = M * Mt, symmetric 3x3.
	var inertiaDense mat.Dense
	inertiaDense.Mul(m, m.T())
	inertia := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			inertia.SetSym(i, j, inertiaDense.At(i, j))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(inertia, true); !ok {
		return Tangent{}, fmt.Errorf("%w: eigendecomposition did not converge", ErrTangentEstimationFailed)
	}

	values := eig.Values(nil)
	maxIdx, maxVal := 0, math.Inf(-1)
	for i, v := range values {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	if !(maxVal > 0) {
		return Tangent{}, fmt.Errorf("%w: neighborhood points are coincident", ErrTangentEstimationFailed)
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	raw := [3]float64{vectors.At(0, maxIdx), vectors.At(1, maxIdx), vectors.At(2, maxIdx)}
	tangent, ok := normalizeVector(raw)
	if !ok {
		return Tangent{}, fmt.Errorf("%w: principal axis not finite", ErrTangentEstimationFailed)
	}
	return tangent, nil
}

// tangentsFromIndex computes, for every point in the index, the tangent
// estimated from its NeighborhoodSize nearest neighbors (including itself).
// The returned slice is aligned with the index's original point order.
func tangentsFromIndex(index *spatialIndex, points []Point) ([]Tangent, error) {
	tangents := make([]Tangent, len(points))
	for i, p := range points {
		neighbors := index.kNearest(p, NeighborhoodSize)
		neighborPoints := make([]Point, len(neighbors))
		for j, nb := range neighbors {
			neighborPoints[j] = points[nb.idx]
		}
		t, err := TangentFromPoints(neighborPoints)
		if err != nil {
			return nil, fmt.Errorf("nblast: point %d: %w", i, err)
		}
		tangents[i] = t
	}
	return tangents, nil
}
