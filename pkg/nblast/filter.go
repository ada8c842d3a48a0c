package nblast

// Filter is a predicate over a neuron's metadata, used to restrict which
// arena entries participate in a Batch or AllVsAll call, specialized to the
// string-keyed metadata map attached via Arena.AddWithMetadata.
type Filter interface {
	Match(metadata map[string]interface{}) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(metadata map[string]interface{}) bool

// Match implements Filter.
func (f FilterFunc) Match(metadata map[string]interface{}) bool { return f(metadata) }

// And matches when every sub-filter matches.
type And []Filter

// Match implements Filter.
func (a And) Match(metadata map[string]interface{}) bool {
	for _, f := range a {
		if !f.Match(metadata) {
			return false
		}
	}
	return true
}

// Or matches when any sub-filter matches. An empty Or matches nothing.
type Or []Filter

// Match implements Filter.
func (o Or) Match(metadata map[string]interface{}) bool {
	for _, f := range o {
		if f.Match(metadata) {
			return true
		}
	}
	return false
}

// Not inverts a sub-filter.
type Not struct{ Filter Filter }

// Match implements Filter.
func (n Not) Match(metadata map[string]interface{}) bool { return !n.Filter.Match(metadata) }

// Equals matches when metadata[Key] == Value, using Go equality. A neuron
// with no such key never matches.
type Equals struct {
	Key   string
	Value interface{}
}

// Match implements Filter.
func (e Equals) Match(metadata map[string]interface{}) bool {
	v, ok := metadata[e.Key]
	if !ok {
		return false
	}
	return v == e.Value
}

// Exists matches when metadata contains Key, regardless of value.
type Exists struct{ Key string }

// Match implements Filter.
func (e Exists) Match(metadata map[string]interface{}) bool {
	_, ok := metadata[e.Key]
	return ok
}

// InSet matches when metadata[Key] equals one of Values.
type InSet struct {
	Key    string
	Values []interface{}
}

// Match implements Filter.
func (s InSet) Match(metadata map[string]interface{}) bool {
	v, ok := metadata[s.Key]
	if !ok {
		return false
	}
	for _, candidate := range s.Values {
		if v == candidate {
			return true
		}
	}
	return false
}

// SelectIndices returns, in ascending order, every NeuronIndex in the arena
// whose metadata matches filter. A nil filter selects everything.
func (a *Arena) SelectIndices(filter Filter) []NeuronIndex {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []NeuronIndex
	for i, e := range a.entries {
		if filter == nil || filter.Match(e.metadata) {
			out = append(out, NeuronIndex(i))
		}
	}
	return out
}

// FilteredBatch restricts queries and targets to those matching
// queryFilter and targetFilter respectively (nil means unrestricted), then
// runs Batch over the resulting index sets.
func (a *Arena) FilteredBatch(queryFilter, targetFilter Filter, normalized, symmetric bool) map[PairKey]float64 {
	queries := a.SelectIndices(queryFilter)
	targets := a.SelectIndices(targetFilter)
	return a.Batch(queries, targets, normalized, symmetric)
}
