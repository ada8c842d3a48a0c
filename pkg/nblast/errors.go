package nblast

import "errors"

// Sentinel errors returned by construction-time operations. Query-time
// operations on well-formed neurons never fail; out-of-range indices
// produce an absent result (ok=false / nil), not an error.
var (
	// ErrTooFewPoints is returned when a neuron is constructed from fewer
	// points than the fixed neighborhood size (NeighborhoodSize).
	ErrTooFewPoints = errors.New("nblast: fewer than 5 points")

	// ErrTangentEstimationFailed is returned when the eigendecomposition of
	// a point's local neighborhood does not yield a finite principal axis.
	ErrTangentEstimationFailed = errors.New("nblast: tangent estimation failed")

	// ErrTableDimensionMismatch is returned when a score table's cell count
	// does not equal the product of its threshold vector lengths.
	ErrTableDimensionMismatch = errors.New("nblast: score table dimension mismatch")
)
