package nblast

import "math"

// Point is a point in 3D space sampled along a neuron's arbor. It carries no
// identity beyond its index within a neuron's point array.
type Point [3]float64

// Tangent is a unit-length 3-vector estimating the local direction of the
// arbor at a sampled point. Its sign is not semantically meaningful —
// downstream code always takes the absolute value of dot products.
type Tangent [3]float64

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

// SquaredDistance returns the squared Euclidean distance between p and q.
func (p Point) SquaredDistance(q Point) float64 {
	dx, dy, dz := p[0]-q[0], p[1]-q[1], p[2]-q[2]
	return dx*dx + dy*dy + dz*dz
}

// Centroid returns the mean of the given points. An empty slice yields NaN
// coordinates; callers only ever invoke it on a non-empty neighborhood.
func Centroid(points []Point) Point {
	var sum Point
	for _, p := range points {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := float64(len(points))
	return Point{sum[0] / n, sum[1] / n, sum[2] / n}
}

// CenterPoints subtracts the centroid of points from each point, returning a
// new slice of the same length: translation is removed before estimating a
// local principal axis.
func CenterPoints(points []Point) []Point {
	centroid := Centroid(points)
	centered := make([]Point, len(points))
	for i, p := range points {
		centered[i] = p.Sub(centroid)
	}
	return centered
}

// Dot returns the dot product of two tangents.
func (t Tangent) Dot(u Tangent) float64 {
	return t[0]*u[0] + t[1]*u[1] + t[2]*u[2]
}

// AbsDot returns |t . u|, the quantity the scoring function consumes.
func (t Tangent) AbsDot(u Tangent) float64 {
	d := t.Dot(u)
	if d < 0 {
		return -d
	}
	return d
}

// Norm returns the Euclidean length of t.
func (t Tangent) Norm() float64 {
	return math.Sqrt(t[0]*t[0] + t[1]*t[1] + t[2]*t[2])
}

// normalizeVector returns v scaled to unit length, and whether the result is
// finite and non-degenerate (norm bounded away from zero).
func normalizeVector(v [3]float64) (Tangent, bool) {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Tangent{}, false
	}
	t := Tangent{v[0] / n, v[1] / n, v[2] / n}
	for _, c := range t {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Tangent{}, false
		}
	}
	return t, true
}
