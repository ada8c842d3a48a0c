package nblast

import (
	"fmt"
	"math"
)

// DistDot is the pair (nearest-neighbor distance, |tangent dot product|)
// consumed by a scoring function.
type DistDot struct {
	Dist float64
	Dot  float64
}

// defaultDistDot is the DistDot used to compute a neuron's self-hit: a
// point exactly coincident with a target point whose tangent is perfectly
// aligned with the query's tangent.
var defaultDistDot = DistDot{Dist: 0, Dot: 1}

// ScoreFunc maps a (distance, |dot|) observation to a real-valued score.
type ScoreFunc func(DistDot) float64

// QueryNeuron is an immutable ordered point array with an aligned tangent
// array. A TargetNeuron is always also a valid QueryNeuron.
type QueryNeuron interface {
	// Len returns the number of points in the neuron.
	Len() int

	// Query accumulates, over every point p in this neuron, the score
	// function evaluated at target's nearest match for p. The result is
	// asymmetric in general: Query(t) != t.Query(this).
	Query(target TargetNeuron, scoreFn ScoreFunc) float64

	// SelfHit returns |neuron| * scoreFn({dist: 0, dot: 1}), the
	// theoretical maximum score.
	SelfHit(scoreFn ScoreFunc) float64

	// Points returns a copy of the neuron's points, in original insertion
	// order.
	Points() []Point

	// Tangents returns a copy of the neuron's tangents, aligned with Points.
	Tangents() []Tangent
}

// TargetNeuron is a QueryNeuron that can additionally answer nearest-match
// queries, i.e. it has been indexed for fast nearest-neighbor lookup.
type TargetNeuron interface {
	QueryNeuron

	// NearestMatchDistDot finds the single nearest stored point to point,
	// and returns the distance to it along with the absolute dot product
	// between the stored tangent at that point and the given tangent.
	// Infallible on a non-empty target.
	NearestMatchDistDot(point Point, tangent Tangent) DistDot
}

// QueryPointTangents is a query-only neuron: a point array and aligned
// tangent array with no spatial index of its own. Construction still builds
// a spatial index to estimate tangents, so it costs the same as an
// IndexedNeuron; the index is dropped afterwards, so it holds less memory
// and can only be queried against other neurons, never serve as a target.
type QueryPointTangents struct {
	points   []Point
	tangents []Tangent
}

// NewQueryNeuron builds a QueryPointTangents from raw points, estimating a
// tangent at every point from its NeighborhoodSize nearest neighbors.
// Fails with ErrTooFewPoints or ErrTangentEstimationFailed.
func NewQueryNeuron(points []Point) (*QueryPointTangents, error) {
	index, err := newSpatialIndex(points)
	if err != nil {
		return nil, err
	}
	tangents, err := tangentsFromIndex(index, points)
	if err != nil {
		return nil, err
	}
	return &QueryPointTangents{points: append([]Point(nil), points...), tangents: tangents}, nil
}

func (q *QueryPointTangents) Len() int { return len(q.points) }

func (q *QueryPointTangents) Query(target TargetNeuron, scoreFn ScoreFunc) float64 {
	var total float64
	for i, p := range q.points {
		total += scoreFn(target.NearestMatchDistDot(p, q.tangents[i]))
	}
	return total
}

func (q *QueryPointTangents) SelfHit(scoreFn ScoreFunc) float64 {
	return float64(len(q.points)) * scoreFn(defaultDistDot)
}

func (q *QueryPointTangents) Points() []Point {
	out := make([]Point, len(q.points))
	copy(out, q.points)
	return out
}

func (q *QueryPointTangents) Tangents() []Tangent {
	out := make([]Tangent, len(q.tangents))
	copy(out, q.tangents)
	return out
}

// IndexedNeuron is an immutable target neuron: a spatial index over N >= 5
// points plus an ordered tangent array aligned with the index's point
// identities (len(points) == len(tangents) == N). It satisfies both
// QueryNeuron and TargetNeuron.
type IndexedNeuron struct {
	index    *spatialIndex
	points   []Point
	tangents []Tangent
}

// NewTargetNeuron builds an IndexedNeuron from raw points, estimating a
// tangent at every point from its NeighborhoodSize nearest neighbors within
// the newly built index. Fails with ErrTooFewPoints or
// ErrTangentEstimationFailed.
func NewTargetNeuron(points []Point) (*IndexedNeuron, error) {
	index, err := newSpatialIndex(points)
	if err != nil {
		return nil, err
	}
	tangents, err := tangentsFromIndex(index, points)
	if err != nil {
		return nil, err
	}
	return &IndexedNeuron{
		index:    index,
		points:   append([]Point(nil), points...),
		tangents: tangents,
	}, nil
}

// NewTargetNeuronWithTangents builds an IndexedNeuron from points and
// pre-computed tangents, skipping tangent estimation entirely. Tangents are
// used as provided and assumed to already be unit length — the caller's
// contract, not re-validated here. Fails only with ErrTooFewPoints, or if
// the two slices differ in length.
func NewTargetNeuronWithTangents(points []Point, tangents []Tangent) (*IndexedNeuron, error) {
	if len(points) != len(tangents) {
		return nil, fmt.Errorf("nblast: %d points but %d tangents", len(points), len(tangents))
	}
	index, err := newSpatialIndex(points)
	if err != nil {
		return nil, err
	}
	return &IndexedNeuron{
		index:    index,
		points:   append([]Point(nil), points...),
		tangents: append([]Tangent(nil), tangents...),
	}, nil
}

func (n *IndexedNeuron) Len() int { return len(n.points) }

func (n *IndexedNeuron) Query(target TargetNeuron, scoreFn ScoreFunc) float64 {
	var total float64
	for i, p := range n.points {
		total += scoreFn(target.NearestMatchDistDot(p, n.tangents[i]))
	}
	return total
}

func (n *IndexedNeuron) SelfHit(scoreFn ScoreFunc) float64 {
	return float64(len(n.points)) * scoreFn(defaultDistDot)
}

// Points returns the neuron's points in original insertion order (the order
// they were supplied in at construction, not the kd-tree's internal
// layout).
func (n *IndexedNeuron) Points() []Point {
	out := make([]Point, len(n.points))
	copy(out, n.points)
	return out
}

func (n *IndexedNeuron) Tangents() []Tangent {
	out := make([]Tangent, len(n.tangents))
	copy(out, n.tangents)
	return out
}

func (n *IndexedNeuron) NearestMatchDistDot(point Point, tangent Tangent) DistDot {
	res := n.index.nearest(point)
	matchTangent := n.tangents[res.idx]
	return DistDot{
		Dist: math.Sqrt(res.sqDist),
		Dot:  matchTangent.AbsDot(tangent),
	}
}
