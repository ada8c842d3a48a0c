package neighbor

import "fmt"

// Hit is one shortlist result: the internal node id and its distance to
// the query descriptor.
type Hit struct {
	ID       uint64
	Distance float32
}

// Search returns the approximate k nearest descriptors to query, starting
// a beam search from a small rotating set of entry points rather than
// descending through a hierarchy of layers. efSearch controls the
// accuracy/speed tradeoff; it is raised to k if smaller.
func (g *Graph) Search(query []float32, k int, efSearch int) ([]Hit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("neighbor: query descriptor cannot be empty")
	}

	g.mu.RLock()
	if g.dimension == 0 {
		g.mu.RUnlock()
		return nil, fmt.Errorf("neighbor: graph is empty")
	}
	if len(query) != g.dimension {
		g.mu.RUnlock()
		return nil, fmt.Errorf("neighbor: query dimension mismatch: expected %d, got %d", g.dimension, len(query))
	}
	if len(g.entryPoints) == 0 {
		g.mu.RUnlock()
		return nil, fmt.Errorf("neighbor: graph has no entry points")
	}
	if efSearch < k {
		efSearch = k
	}
	seeds := g.sampleEntryPointsLocked()
	g.mu.RUnlock()

	// beamSearch already returns at most efSearch candidates, nearest first.
	candidates := g.beamSearch(query, seeds, efSearch, nil)

	hits := make([]Hit, 0, k)
	for i := 0; i < len(candidates) && i < k; i++ {
		hits = append(hits, Hit{ID: candidates[i].id, Distance: candidates[i].distance})
	}
	return hits, nil
}

// KNNSearch searches with a conservative default efSearch.
func (g *Graph) KNNSearch(query []float32, k int) ([]Hit, error) {
	efSearch := k * 2
	if efSearch < 50 {
		efSearch = 50
	}
	return g.Search(query, k, efSearch)
}

// Descriptor returns a copy of the descriptor stored under id.
func (g *Graph) Descriptor(id uint64) ([]float32, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodes[id]
	if n == nil {
		return nil, fmt.Errorf("neighbor: node %d not found", id)
	}

	out := make([]float32, len(n.descriptor))
	copy(out, n.descriptor)
	return out, nil
}

// Delete removes a descriptor from the graph.
func (g *Graph) Delete(id uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodes[id]
	if n == nil {
		return fmt.Errorf("neighbor: node %d not found", id)
	}

	for _, neighborID := range n.Neighbors() {
		if neighborNode := g.nodes[neighborID]; neighborNode != nil {
			neighborNode.RemoveNeighbor(id)
		}
	}
	delete(g.nodes, id)

	for i, epID := range g.entryPoints {
		if epID == id {
			g.entryPoints = append(g.entryPoints[:i], g.entryPoints[i+1:]...)
			break
		}
	}
	if len(g.entryPoints) == 0 {
		for otherID := range g.nodes {
			g.entryPoints = append(g.entryPoints, otherID)
			if len(g.entryPoints) >= g.seedCount {
				break
			}
		}
	}

	return nil
}
