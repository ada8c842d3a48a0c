// Package nblast computes NBLAST-style morphological similarity scores
// between neuron skeletons represented as 3D point clouds.
//
// A neuron enters the package as an already-parsed array of points; this
// package owns the geometric-and-scoring kernel only: local tangent
// estimation, an exact nearest-neighbor spatial index, a score-table driven
// scoring function, and an arena for pairwise and all-vs-all comparisons.
// File parsing, persistence, CLI/bindings and progress reporting are the
// caller's concern.
package nblast
