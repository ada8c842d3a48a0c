package neighbor

import "sync"

// node is one descriptor vector plus its proximity-graph edges. There is
// only ever one layer: a tenant's shortlist rarely holds more than a few
// thousand descriptors, small enough that a flat graph with a handful of
// random entry points reaches any node in a few hops without needing a
// hierarchy of coarser layers on top.
type node struct {
	id         uint64
	descriptor []float32

	mu        sync.RWMutex
	neighbors []uint64
}

func newNode(id uint64, descriptor []float32) *node {
	return &node{id: id, descriptor: descriptor}
}

func (n *node) Neighbors() []uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]uint64, len(n.neighbors))
	copy(out, n.neighbors)
	return out
}

func (n *node) SetNeighbors(neighbors []uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.neighbors = append([]uint64(nil), neighbors...)
}

func (n *node) AddNeighbor(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, existing := range n.neighbors {
		if existing == id {
			return
		}
	}
	n.neighbors = append(n.neighbors, id)
}

func (n *node) RemoveNeighbor(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.neighbors {
		if existing == id {
			n.neighbors[i] = n.neighbors[len(n.neighbors)-1]
			n.neighbors = n.neighbors[:len(n.neighbors)-1]
			return
		}
	}
}
