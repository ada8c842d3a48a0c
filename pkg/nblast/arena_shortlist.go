package nblast

import (
	"fmt"

	"github.com/nblast/nblast/pkg/neighbor"
)

// Suggestion is one approximate shortlist entry returned by SuggestSimilar.
type Suggestion struct {
	Index    NeuronIndex
	Distance float32
}

// EnableShortlist turns on the approximate neuron shortlist for this arena,
// indexing every neuron currently held under its descriptor vector. It is
// purely an optional convenience: disabled by default, and never consulted
// by Query, Batch, or AllVsAll.
func (a *Arena) EnableShortlist(cfg neighbor.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := neighbor.NewIndex(cfg)
	if len(a.entries) > 0 {
		neuronIndices := make([]uint64, len(a.entries))
		descriptors := make([][]float32, len(a.entries))
		for i, e := range a.entries {
			neuronIndices[i] = uint64(i)
			descriptors[i] = descriptorFor(e.neuron).Vector()
		}
		if err := idx.AddBatch(neuronIndices, descriptors); err != nil {
			return fmt.Errorf("nblast: shortlist index build failed: %w", err)
		}
	}
	a.shortlist = idx
	return nil
}

// ShortlistEnabled reports whether EnableShortlist has been called.
func (a *Arena) ShortlistEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.shortlist != nil
}

// SuggestSimilar returns up to k approximate nearest neighbors of the
// neuron at idx by coarse descriptor distance. It does not compute or
// approximate an NBLAST DistDot score; a caller that needs an exact score
// must still call Query or Batch on the returned candidates.
func (a *Arena) SuggestSimilar(idx NeuronIndex, k int) ([]Suggestion, error) {
	a.mu.RLock()
	shortlist := a.shortlist
	a.mu.RUnlock()

	if shortlist == nil {
		return nil, fmt.Errorf("nblast: shortlist not enabled for this arena")
	}

	efSearch := k * 4
	if efSearch < 50 {
		efSearch = 50
	}
	hits, err := shortlist.Query(uint64(idx), k, efSearch)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, len(hits))
	for i, h := range hits {
		suggestions[i] = Suggestion{Index: NeuronIndex(h.NeuronIndex), Distance: h.Distance}
	}
	return suggestions, nil
}

func descriptorFor(n TargetNeuron) Descriptor {
	return ComputeDescriptor(n.Points(), n.Tangents())
}
