package nblast

import "math"

// PointCloudStats summarizes the raw geometry of a neuron's points, useful
// for sanity-checking input data before it is spent on tangent estimation
// (e.g. flagging a neuron whose points coincide, which can make tangent
// estimation fail with ErrTangentEstimationFailed).
type PointCloudStats struct {
	Count       int
	Centroid    Point
	MeanRadius  float64 // mean distance from centroid
	MaxRadius   float64 // max distance from centroid (bounding-sphere radius)
	BoundingMin Point
	BoundingMax Point
}

// ComputePointCloudStats summarizes points. Returns the zero value for an
// empty slice.
func ComputePointCloudStats(points []Point) PointCloudStats {
	if len(points) == 0 {
		return PointCloudStats{}
	}

	centroid := Centroid(points)
	min, max := points[0], points[0]
	var radiusSum, maxRadius float64

	for _, p := range points {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
		r := math.Sqrt(p.SquaredDistance(centroid))
		radiusSum += r
		if r > maxRadius {
			maxRadius = r
		}
	}

	return PointCloudStats{
		Count:       len(points),
		Centroid:    centroid,
		MeanRadius:  radiusSum / float64(len(points)),
		MaxRadius:   maxRadius,
		BoundingMin: min,
		BoundingMax: max,
	}
}

// TangentCoherence reports the mean absolute dot product between each
// tangent and its spatial nearest neighbor's tangent, a cheap proxy for how
// "smooth" a reconstructed skeleton is. Values close to 1 indicate a
// coherent, cable-like structure; values close to 0 indicate a tangent
// field that varies sharply between adjacent points (noisy input, or a
// highly branched region where NeighborhoodSize mixes unrelated branches).
func TangentCoherence(index *spatialIndex, points []Point, tangents []Tangent) float64 {
	if len(points) < 2 {
		return 1.0
	}
	var sum float64
	for i, p := range points {
		neighbors := index.kNearest(p, 2) // self + nearest other point
		var other int
		switch {
		case len(neighbors) < 2:
			other = i
		case neighbors[0].idx == i:
			other = neighbors[1].idx
		default:
			other = neighbors[0].idx
		}
		sum += tangents[i].AbsDot(tangents[other])
	}
	return sum / float64(len(points))
}

// Descriptor is a small, fixed-size summary of a target neuron used by the
// approximate shortlist (pkg/neighbor) instead of its full point cloud.
// It never participates in exact scoring.
type Descriptor struct {
	Centroid     Point
	MeanTangent  Tangent
	BoundRadius  float64
	PointCount   int
}

// ComputeDescriptor builds a Descriptor from a neuron's points and tangents.
func ComputeDescriptor(points []Point, tangents []Tangent) Descriptor {
	stats := ComputePointCloudStats(points)

	var sum [3]float64
	for _, t := range tangents {
		sum[0] += t[0]
		sum[1] += t[1]
		sum[2] += t[2]
	}
	mean := Tangent{}
	if n := float64(len(tangents)); n > 0 {
		mean = Tangent{sum[0] / n, sum[1] / n, sum[2] / n}
	}
	// Re-normalize: the arithmetic mean of unit vectors is not itself unit
	// length in general, and a zero mean (tangents cancelling out) is a
	// legitimate outcome for a descriptor, not an error.
	if normed, ok := normalizeVector([3]float64(mean)); ok {
		mean = normed
	}

	return Descriptor{
		Centroid:    stats.Centroid,
		MeanTangent: mean,
		BoundRadius: stats.MaxRadius,
		PointCount:  stats.Count,
	}
}

// Vector returns the descriptor as a flat 7-dimensional vector (centroid
// xyz, mean tangent xyz, bounding radius), suitable for feeding to a
// generic ANN index. Point count is deliberately excluded: it has a very
// different scale than the spatial components and would dominate distance
// computations if included unweighted.
func (d Descriptor) Vector() []float32 {
	return []float32{
		float32(d.Centroid[0]), float32(d.Centroid[1]), float32(d.Centroid[2]),
		float32(d.MeanTangent[0]), float32(d.MeanTangent[1]), float32(d.MeanTangent[2]),
		float32(d.BoundRadius),
	}
}
