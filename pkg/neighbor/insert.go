package neighbor

import "fmt"

// Insert adds a descriptor vector to the graph, returning its internal id.
func (g *Graph) Insert(descriptor []float32) (uint64, error) {
	if len(descriptor) == 0 {
		return 0, fmt.Errorf("neighbor: cannot insert an empty descriptor")
	}

	g.mu.Lock()
	if g.dimension == 0 {
		g.dimension = len(descriptor)
	} else if len(descriptor) != g.dimension {
		g.mu.Unlock()
		return 0, fmt.Errorf("neighbor: descriptor dimension mismatch: expected %d, got %d",
			g.dimension, len(descriptor))
	}

	id := g.nodeCounter
	g.nodeCounter++
	newNode := newNode(id, descriptor)

	if len(g.nodes) == 0 {
		g.nodes[id] = newNode
		g.entryPoints = []uint64{id}
		g.mu.Unlock()
		return id, nil
	}

	seeds := g.sampleEntryPointsLocked()
	g.nodes[id] = newNode
	switch {
	case len(g.entryPoints) < g.seedCount:
		g.entryPoints = append(g.entryPoints, id)
	case g.rnd.Intn(g.seedCount*4) == 0:
		// Occasionally rotate in a fresh entry point so the seed set
		// doesn't stay anchored to whichever nodes happened to arrive
		// first, which would bias where later searches start from.
		g.entryPoints[g.rnd.Intn(len(g.entryPoints))] = id
	}
	g.mu.Unlock()

	found := g.beamSearch(descriptor, seeds, g.ef, map[uint64]bool{id: true})
	for _, c := range closestCandidates(found, g.m) {
		neighborNode := g.getNode(c.id)
		if neighborNode == nil {
			continue
		}
		newNode.AddNeighbor(c.id)
		neighborNode.AddNeighbor(id)
		g.pruneNeighbors(neighborNode)
	}

	return id, nil
}

// pruneNeighbors keeps at most M connections, evicting the farthest first.
func (g *Graph) pruneNeighbors(n *node) {
	neighbors := n.Neighbors()
	if len(neighbors) <= g.m {
		return
	}

	scored := make([]candidate, 0, len(neighbors))
	for _, neighborID := range neighbors {
		neighborNode := g.getNode(neighborID)
		if neighborNode != nil {
			scored = append(scored, candidate{id: neighborID, distance: g.distanceFn(n.descriptor, neighborNode.descriptor)})
		}
	}

	kept := closestCandidates(scored, g.m)
	ids := make([]uint64, len(kept))
	for i, c := range kept {
		ids[i] = c.id
	}
	n.SetNeighbors(ids)
}
