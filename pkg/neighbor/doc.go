// Package neighbor provides an approximate nearest-neighbor shortlist over
// neuron descriptor vectors (see nblast.Descriptor), built as a single-layer
// navigable small-world proximity graph searched from a handful of random
// entry points.
//
// This index is explicitly non-authoritative: it never computes or
// approximates an NBLAST DistDot score. It exists purely to shortlist
// candidate neurons by coarse shape similarity before an exact,
// deterministic nblast.Arena query narrows the shortlist down. Any caller
// that needs an exact score must still go through the Arena.
package neighbor
