package neighbor

import "fmt"

// Index maps nblast.NeuronIndex values onto a Graph, so callers never see
// raw internal graph ids. It is the entry point pkg/nblast.Arena uses.
type Index struct {
	graph    *Graph
	toGraph  map[uint64]uint64 // neuron index -> graph node id
	toNeuron map[uint64]uint64 // graph node id -> neuron index
}

// NewIndex creates an empty shortlist index.
func NewIndex(cfg Config) *Index {
	return &Index{
		graph:    NewGraph(cfg),
		toGraph:  make(map[uint64]uint64),
		toNeuron: make(map[uint64]uint64),
	}
}

// Add inserts a neuron's descriptor vector under its arena index.
func (idx *Index) Add(neuronIndex uint64, descriptor []float32) error {
	if _, exists := idx.toGraph[neuronIndex]; exists {
		return fmt.Errorf("neighbor: neuron %d already indexed", neuronIndex)
	}

	nodeID, err := idx.graph.Insert(descriptor)
	if err != nil {
		return err
	}

	idx.toGraph[neuronIndex] = nodeID
	idx.toNeuron[nodeID] = neuronIndex
	return nil
}

// AddBatch inserts many neuron descriptors concurrently, preserving the
// pairing between neuronIndices[i] and descriptors[i]. Meant for building
// a shortlist over neurons an arena already holds, where inserting one at a
// time would serialize work the underlying graph can do in parallel.
func (idx *Index) AddBatch(neuronIndices []uint64, descriptors [][]float32) error {
	if len(neuronIndices) != len(descriptors) {
		return fmt.Errorf("neighbor: neuronIndices and descriptors length mismatch: %d vs %d",
			len(neuronIndices), len(descriptors))
	}
	for _, neuronIndex := range neuronIndices {
		if _, exists := idx.toGraph[neuronIndex]; exists {
			return fmt.Errorf("neighbor: neuron %d already indexed", neuronIndex)
		}
	}

	result := idx.graph.BatchInsert(descriptors)
	if result.FailureCount > 0 {
		return fmt.Errorf("neighbor: batch insert failed for %d of %d descriptors: %w",
			result.FailureCount, result.TotalProcessed, result.Errors[0])
	}

	for i, neuronIndex := range neuronIndices {
		nodeID := result.NodeIDs[i]
		idx.toGraph[neuronIndex] = nodeID
		idx.toNeuron[nodeID] = neuronIndex
	}
	return nil
}

// Suggestion is one approximate shortlist entry.
type Suggestion struct {
	NeuronIndex uint64
	Distance    float32
}

// Query returns up to k approximate nearest neighbors of the descriptor
// stored for neuronIndex, excluding neuronIndex itself.
func (idx *Index) Query(neuronIndex uint64, k int, efSearch int) ([]Suggestion, error) {
	nodeID, exists := idx.toGraph[neuronIndex]
	if !exists {
		return nil, fmt.Errorf("neighbor: neuron %d not indexed", neuronIndex)
	}

	descriptor, err := idx.graph.Descriptor(nodeID)
	if err != nil {
		return nil, err
	}

	hits, err := idx.graph.Search(descriptor, k+1, efSearch)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, k)
	for _, h := range hits {
		neuron, ok := idx.toNeuron[h.ID]
		if !ok || neuron == neuronIndex {
			continue
		}
		suggestions = append(suggestions, Suggestion{NeuronIndex: neuron, Distance: h.Distance})
		if len(suggestions) == k {
			break
		}
	}
	return suggestions, nil
}

// Size returns the number of descriptors held.
func (idx *Index) Size() int64 { return idx.graph.Size() }
