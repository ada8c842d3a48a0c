package nblast

import (
	"sync"

	"github.com/nblast/nblast/pkg/neighbor"
)

// NeuronIndex is a stable, monotonically-increasing identifier handed back
// by Arena.Add.
type NeuronIndex int

// PairKey identifies one ordered (query, target) entry in a batch result.
type PairKey struct {
	Query  NeuronIndex
	Target NeuronIndex
}

type arenaEntry struct {
	neuron   TargetNeuron
	selfHit  float64
	metadata map[string]interface{}
}

// Arena owns an append-only collection of target neurons and a single
// scoring function shared across all queries. Self-hits are computed
// eagerly at insertion time and cached, since they are needed O(N^2) times
// during all-vs-all normalization and cannot change once a neuron is
// immutable.
type Arena struct {
	mu        sync.RWMutex
	entries   []arenaEntry
	scoreFn   ScoreFunc
	shortlist *neighbor.Index
}

// NewArena creates an arena that scores every pair of neurons with scoreFn.
func NewArena(scoreFn ScoreFunc) *Arena {
	return &Arena{scoreFn: scoreFn}
}

// Add assigns the next monotonic index to neuron, computes and caches its
// self-hit, and returns the index. The arena owns neuron thereafter.
func (a *Arena) Add(neuron TargetNeuron) NeuronIndex {
	return a.AddWithMetadata(neuron, nil)
}

// AddWithMetadata is Add, additionally attaching caller-owned metadata used
// by Filter-based selection in batch/all-vs-all queries (see filter.go).
// The metadata itself never affects scoring.
func (a *Arena) AddWithMetadata(neuron TargetNeuron, metadata map[string]interface{}) NeuronIndex {
	a.mu.Lock()
	defer a.mu.Unlock()

	selfHit := neuron.SelfHit(a.scoreFn)
	idx := NeuronIndex(len(a.entries))
	a.entries = append(a.entries, arenaEntry{neuron: neuron, selfHit: selfHit, metadata: metadata})

	if a.shortlist != nil {
		// Best-effort: a shortlist add failure (e.g. a malformed descriptor)
		// never blocks ingestion of the authoritative neuron itself.
		_ = a.shortlist.Add(uint64(idx), descriptorFor(neuron).Vector())
	}

	return idx
}

// Len returns the number of neurons held by the arena.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

func (a *Arena) get(idx NeuronIndex) (arenaEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if idx < 0 || int(idx) >= len(a.entries) {
		return arenaEntry{}, false
	}
	return a.entries[idx], true
}

// SelfHit returns the cached self-hit for idx, or ok=false if idx is out of
// range.
func (a *Arena) SelfHit(idx NeuronIndex) (float64, bool) {
	e, ok := a.get(idx)
	if !ok {
		return 0, false
	}
	return e.selfHit, true
}

// Points returns a copy of the points stored at idx, in original insertion
// order, or ok=false if idx is out of range.
func (a *Arena) Points(idx NeuronIndex) ([]Point, bool) {
	e, ok := a.get(idx)
	if !ok {
		return nil, false
	}
	return e.neuron.Points(), true
}

// Tangents returns a copy of the tangents stored at idx, or ok=false if idx
// is out of range.
func (a *Arena) Tangents(idx NeuronIndex) ([]Tangent, bool) {
	e, ok := a.get(idx)
	if !ok {
		return nil, false
	}
	return e.neuron.Tangents(), true
}

// Metadata returns the metadata attached at AddWithMetadata time, or
// ok=false if idx is out of range (a neuron added via Add has nil
// metadata but ok=true).
func (a *Arena) Metadata(idx NeuronIndex) (map[string]interface{}, bool) {
	e, ok := a.get(idx)
	if !ok {
		return nil, false
	}
	return e.metadata, true
}

// Query returns the directional or symmetrized score between the neurons at
// qIdx and tIdx, or ok=false if either index is out of range.
//
//   - score = score(neuron[qIdx], neuron[tIdx], f)
//   - if normalized: score /= selfHit[qIdx]
//   - if symmetric: score2 = score(neuron[tIdx], neuron[qIdx], f), optionally
//     normalized by selfHit[tIdx]; score = (score + score2) / 2
func (a *Arena) Query(qIdx, tIdx NeuronIndex, normalized, symmetric bool) (float64, bool) {
	q, ok := a.get(qIdx)
	if !ok {
		return 0, false
	}
	t, ok := a.get(tIdx)
	if !ok {
		return 0, false
	}
	return a.queryEntries(q, t, normalized, symmetric), true
}

func (a *Arena) queryEntries(q, t arenaEntry, normalized, symmetric bool) float64 {
	score := q.neuron.Query(t.neuron, a.scoreFn)
	if normalized {
		score /= q.selfHit
	}
	if symmetric {
		score2 := t.neuron.Query(q.neuron, a.scoreFn)
		if normalized {
			score2 /= t.selfHit
		}
		score = (score + score2) / 2
	}
	return score
}

// Batch computes Query(q, t, normalized, symmetric) for every (q, t) in the
// cartesian product of queries and targets. Out-of-range indices produce no
// entry. Same-index pairs and (for symmetric queries) the reverse of an
// already-computed pair are answered without an extra scoring call. The
// returned map has at most len(queries)*len(targets) entries.
func (a *Arena) Batch(queries, targets []NeuronIndex, normalized, symmetric bool) map[PairKey]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[PairKey]float64, len(queries)*len(targets))
	for _, q := range queries {
		qEntry, qOK := a.entryLocked(q)
		if !qOK {
			continue
		}
		for _, t := range targets {
			key := PairKey{Query: q, Target: t}
			if _, exists := out[key]; exists {
				continue
			}

			if q == t {
				if normalized {
					out[key] = 1.0
				} else {
					out[key] = qEntry.selfHit
				}
				continue
			}

			if symmetric {
				if reversed, ok := out[PairKey{Query: t, Target: q}]; ok {
					out[key] = reversed
					continue
				}
			}

			tEntry, tOK := a.entryLocked(t)
			if !tOK {
				continue
			}
			out[key] = a.queryEntries(qEntry, tEntry, normalized, symmetric)
		}
	}
	return out
}

func (a *Arena) entryLocked(idx NeuronIndex) (arenaEntry, bool) {
	if idx < 0 || int(idx) >= len(a.entries) {
		return arenaEntry{}, false
	}
	return a.entries[idx], true
}

// AllVsAll is equivalent to Batch(everyIndex, everyIndex, normalized, symmetric).
func (a *Arena) AllVsAll(normalized, symmetric bool) map[PairKey]float64 {
	a.mu.RLock()
	n := len(a.entries)
	a.mu.RUnlock()

	all := make([]NeuronIndex, n)
	for i := range all {
		all[i] = NeuronIndex(i)
	}
	return a.Batch(all, all, normalized, symmetric)
}
