package nblast

import "testing"

func gridPoints() []Point {
	// A simple 3x3 grid in the z=0 plane, plus one off-plane point, so
	// there are enough points to exercise k-NN with k=5.
	return []Point{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 1, 0}, {1, 1, 0}, {2, 1, 0},
		{0, 2, 0}, {1, 2, 0}, {2, 2, 0},
		{1, 1, 5},
	}
}

func TestNewSpatialIndexTooFewPoints(t *testing.T) {
	_, err := newSpatialIndex([]Point{{0, 0, 0}, {1, 0, 0}})
	if err == nil {
		t.Fatal("expected ErrTooFewPoints")
	}
}

func TestNearestExactMatch(t *testing.T) {
	points := gridPoints()
	idx, err := newSpatialIndex(points)
	if err != nil {
		t.Fatalf("newSpatialIndex: %v", err)
	}
	res := idx.nearest(Point{1, 1, 0})
	if res.idx != 4 || !almostEqual(res.sqDist, 0, 1e-12) {
		t.Fatalf("nearest({1,1,0}) = %+v, want idx=4 sqDist=0", res)
	}
}

func TestNearestClosestNeighbor(t *testing.T) {
	points := gridPoints()
	idx, err := newSpatialIndex(points)
	if err != nil {
		t.Fatalf("newSpatialIndex: %v", err)
	}
	res := idx.nearest(Point{0.1, 0.1, 0})
	if points[res.idx] != (Point{0, 0, 0}) {
		t.Fatalf("nearest({0.1,0.1,0}) = point %v, want {0,0,0}", points[res.idx])
	}
}

func TestKNearestCount(t *testing.T) {
	points := gridPoints()
	idx, err := newSpatialIndex(points)
	if err != nil {
		t.Fatalf("newSpatialIndex: %v", err)
	}
	results := idx.kNearest(Point{1, 1, 0}, NeighborhoodSize)
	if len(results) != NeighborhoodSize {
		t.Fatalf("kNearest returned %d results, want %d", len(results), NeighborhoodSize)
	}
	// Ascending order.
	for i := 1; i < len(results); i++ {
		if results[i].sqDist < results[i-1].sqDist {
			t.Fatalf("kNearest results not ascending: %+v", results)
		}
	}
	// Closest must be the exact match itself.
	if results[0].idx != 4 {
		t.Fatalf("closest result idx = %d, want 4", results[0].idx)
	}
}

func TestKNearestMoreThanAvailable(t *testing.T) {
	points := gridPoints()
	idx, err := newSpatialIndex(points)
	if err != nil {
		t.Fatalf("newSpatialIndex: %v", err)
	}
	results := idx.kNearest(Point{1, 1, 0}, len(points)+10)
	if len(results) != len(points) {
		t.Fatalf("kNearest(k > n) returned %d, want %d", len(results), len(points))
	}
}

func TestKNearestZeroK(t *testing.T) {
	points := gridPoints()
	idx, err := newSpatialIndex(points)
	if err != nil {
		t.Fatalf("newSpatialIndex: %v", err)
	}
	if results := idx.kNearest(Point{0, 0, 0}, 0); results != nil {
		t.Fatalf("kNearest(k=0) = %v, want nil", results)
	}
}
