package neighbor

import (
	"container/heap"
	"sort"
)

// beamSearch runs a greedy best-first search across the whole graph,
// starting from seeds and following neighbor edges until ef candidates
// converge on a local optimum. exclude marks node ids to skip entirely
// (e.g. the node currently being inserted, which has no edges yet).
//
// There is no per-layer descent here: with one flat graph, a handful of
// random seeds already land close enough to the query that greedy
// expansion converges in a few hops, the same guarantee a hierarchy of
// layers exists to provide at much larger scale.
func (g *Graph) beamSearch(query []float32, seeds []uint64, ef int, exclude map[uint64]bool) []candidate {
	visited := make(map[uint64]bool, ef)
	frontier := &minHeap{}
	best := &maxHeap{}

	for _, seedID := range seeds {
		if visited[seedID] || exclude[seedID] {
			continue
		}
		visited[seedID] = true

		seedNode := g.getNode(seedID)
		if seedNode == nil {
			continue
		}
		dist := g.distance(query, seedNode.descriptor)
		heap.Push(frontier, candidate{id: seedID, distance: dist})
		heap.Push(best, candidate{id: seedID, distance: dist})
	}

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(candidate)
		if best.Len() >= ef && current.distance > best.worst().distance {
			break
		}

		currentNode := g.getNode(current.id)
		if currentNode == nil {
			continue
		}

		for _, neighborID := range currentNode.Neighbors() {
			if visited[neighborID] || exclude[neighborID] {
				continue
			}
			visited[neighborID] = true

			neighborNode := g.getNode(neighborID)
			if neighborNode == nil {
				continue
			}

			dist := g.distance(query, neighborNode.descriptor)
			if best.Len() < ef || dist < best.worst().distance {
				heap.Push(frontier, candidate{id: neighborID, distance: dist})
				heap.Push(best, candidate{id: neighborID, distance: dist})
				if best.Len() > ef {
					heap.Pop(best)
				}
			}
		}
	}

	out := make([]candidate, best.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(best).(candidate)
	}
	return out
}

// closestCandidates returns the m smallest-distance candidates, sorted
// nearest first.
func closestCandidates(candidates []candidate, m int) []candidate {
	sorted := append([]candidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].distance < sorted[j].distance })
	if len(sorted) > m {
		sorted = sorted[:m]
	}
	return sorted
}
