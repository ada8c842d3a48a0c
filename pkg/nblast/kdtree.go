package nblast

import (
	"container/heap"
	"fmt"
	"sort"
)

// NeighborhoodSize is the fixed k used by the tangent estimator (point
// itself plus its 4 closest others). Changing it is a design-level change:
// it is baked into the 3x5 neighbor matrix used in the eigendecomposition
// and into the minimum-points precondition below, not a runtime parameter.
const NeighborhoodSize = 5

// spatialIndex is a bulk-loaded 3D kd-tree supporting exact 1-NN and k-NN
// queries with squared Euclidean distance. Each stored element carries both
// its coordinates and its original index in the input array, so a tangent
// array can be indexed in lock-step without coupling tangent storage to the
// tree's internal layout.
type spatialIndex struct {
	root *kdNode
	n    int
}

type kdNode struct {
	idx         int // index into the original points slice
	point       Point
	axis        int
	left, right *kdNode
}

// newSpatialIndex bulk-loads a kd-tree over points. Construction fails if
// there are fewer than NeighborhoodSize points.
func newSpatialIndex(points []Point) (*spatialIndex, error) {
	if len(points) < NeighborhoodSize {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	idxs := make([]int, len(points))
	for i := range idxs {
		idxs[i] = i
	}
	root := buildKDNode(points, idxs, 0)
	return &spatialIndex{root: root, n: len(points)}, nil
}

// buildKDNode builds a balanced kd-tree by cycling the split axis and
// splitting on the median, mirroring the median-split construction used by
// the pack's reference kd-tree backend. idxs is consumed (sorted in place
// per recursive call, sliced for children).
func buildKDNode(points []Point, idxs []int, depth int) *kdNode {
	if len(idxs) == 0 {
		return nil
	}
	axis := depth % 3
	sort.Slice(idxs, func(i, j int) bool {
		return points[idxs[i]][axis] < points[idxs[j]][axis]
	})
	mid := len(idxs) / 2
	medianIdx := idxs[mid]

	node := &kdNode{idx: medianIdx, point: points[medianIdx], axis: axis}
	node.left = buildKDNode(points, append([]int(nil), idxs[:mid]...), depth+1)
	node.right = buildKDNode(points, append([]int(nil), idxs[mid+1:]...), depth+1)
	return node
}

// nnResult is a single nearest-neighbor hit: the original index of the
// stored point and the squared distance to the query.
type nnResult struct {
	idx    int
	sqDist float64
}

// nearest returns the single nearest stored point to query, by squared
// Euclidean distance. Infallible on a well-formed (non-empty) index.
func (idx *spatialIndex) nearest(query Point) nnResult {
	best := nnResult{idx: -1, sqDist: maxFloat}
	var search func(n *kdNode)
	search = func(n *kdNode) {
		if n == nil {
			return
		}
		d := query.SquaredDistance(n.point)
		if d < best.sqDist {
			best = nnResult{idx: n.idx, sqDist: d}
		}
		diff := query[n.axis] - n.point[n.axis]
		near, far := n.left, n.right
		if diff >= 0 {
			near, far = n.right, n.left
		}
		search(near)
		if diff*diff <= best.sqDist {
			search(far)
		}
	}
	search(idx.root)
	return best
}

// kNearest returns the k nearest stored points to query, in ascending
// distance order (ties broken arbitrarily). If k >= the number of stored
// points, all points are returned.
func (idx *spatialIndex) kNearest(query Point, k int) []nnResult {
	if k <= 0 {
		return nil
	}
	h := &nnMaxHeap{}
	var search func(n *kdNode)
	search = func(n *kdNode) {
		if n == nil {
			return
		}
		d := query.SquaredDistance(n.point)
		if h.Len() < k {
			heap.Push(h, nnResult{idx: n.idx, sqDist: d})
		} else if d < (*h)[0].sqDist {
			(*h)[0] = nnResult{idx: n.idx, sqDist: d}
			heap.Fix(h, 0)
		}
		diff := query[n.axis] - n.point[n.axis]
		near, far := n.left, n.right
		if diff >= 0 {
			near, far = n.right, n.left
		}
		search(near)
		threshold := maxFloat
		if h.Len() == k {
			threshold = (*h)[0].sqDist
		}
		if diff*diff <= threshold {
			search(far)
		}
	}
	search(idx.root)

	out := make([]nnResult, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(nnResult)
	}
	return out
}

const maxFloat = 1.7976931348623157e+308

// nnMaxHeap is a bounded max-heap over squared distance, used to maintain
// the k closest candidates seen so far during a k-NN search.
type nnMaxHeap []nnResult

func (h nnMaxHeap) Len() int            { return len(h) }
func (h nnMaxHeap) Less(i, j int) bool  { return h[i].sqDist > h[j].sqDist }
func (h nnMaxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nnMaxHeap) Push(x interface{}) { *h = append(*h, x.(nnResult)) }
func (h *nnMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
