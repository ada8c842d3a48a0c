package nblast

import (
	"strings"
	"sync"
	"unicode"
)

// LabelIndex is a minimal inverted index over neuron names/labels, letting
// a caller resolve a free-text query (e.g. a cell-type name from a lab
// notebook) to the set of arena indices worth feeding into Query or Batch.
// Neuron labels are short identifiers, not prose, so there is no
// term-frequency weighting or document-length normalization here — those
// would add noise rather than signal at this scale. This index only ever
// answers "which neurons mention this token", leaving ranking to the
// caller.
type LabelIndex struct {
	mu       sync.RWMutex
	postings map[string]map[NeuronIndex]struct{}
	labels   map[NeuronIndex]string
}

// NewLabelIndex creates an empty label index.
func NewLabelIndex() *LabelIndex {
	return &LabelIndex{
		postings: make(map[string]map[NeuronIndex]struct{}),
		labels:   make(map[NeuronIndex]string),
	}
}

func tokenizeLabel(label string) []string {
	return strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Set assigns label to idx, replacing any label previously set for idx.
func (l *LabelIndex) Set(idx NeuronIndex, label string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.labels[idx]; ok {
		for _, tok := range tokenizeLabel(old) {
			if set, ok := l.postings[tok]; ok {
				delete(set, idx)
				if len(set) == 0 {
					delete(l.postings, tok)
				}
			}
		}
	}

	l.labels[idx] = label
	for _, tok := range tokenizeLabel(label) {
		set, ok := l.postings[tok]
		if !ok {
			set = make(map[NeuronIndex]struct{})
			l.postings[tok] = set
		}
		set[idx] = struct{}{}
	}
}

// Label returns the label set for idx, if any.
func (l *LabelIndex) Label(idx NeuronIndex) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	label, ok := l.labels[idx]
	return label, ok
}

// Search returns every index whose label contains all tokens of query,
// sorted ascending. A query with no letter or digit tokens returns nil.
func (l *LabelIndex) Search(query string) []NeuronIndex {
	tokens := tokenizeLabel(query)
	if len(tokens) == 0 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var candidates map[NeuronIndex]struct{}
	for i, tok := range tokens {
		set, ok := l.postings[tok]
		if !ok {
			return nil
		}
		if i == 0 {
			candidates = make(map[NeuronIndex]struct{}, len(set))
			for idx := range set {
				candidates[idx] = struct{}{}
			}
			continue
		}
		for idx := range candidates {
			if _, ok := set[idx]; !ok {
				delete(candidates, idx)
			}
		}
	}

	out := make([]NeuronIndex, 0, len(candidates))
	for idx := range candidates {
		out = append(out, idx)
	}
	sortIndices(out)
	return out
}

func sortIndices(idxs []NeuronIndex) {
	for i := 1; i < len(idxs); i++ {
		key := idxs[i]
		j := i - 1
		for j >= 0 && idxs[j] > key {
			idxs[j+1] = idxs[j]
			j--
		}
		idxs[j+1] = key
	}
}
