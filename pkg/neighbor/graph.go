package neighbor

import (
	"math/rand"
	"sync"
	"time"
)

// Graph is a single-layer navigable small-world proximity graph over
// descriptor vectors: the approximate shortlist index backing Index. A
// shortlist only ever indexes one tenant's neuron descriptors, so it is
// built for hundreds to low thousands of 7-dimensional vectors, not the
// million-scale collections a hierarchical index earns its complexity on.
// A flat graph reached from a small rotating set of random entry points
// gives comparable recall at that scale with far less bookkeeping.
type Graph struct {
	m         int // neighbor edges kept per node
	ef        int // candidate list size during construction
	seedCount int // entry points sampled at the start of each search

	distanceFn DistanceFunc

	mu          sync.RWMutex
	nodes       map[uint64]*node
	entryPoints []uint64
	nodeCounter uint64
	dimension   int
	rnd         *rand.Rand
}

// Config configures a new Graph.
type Config struct {
	M              int
	EfConstruction int
	SeedCount      int
	DistanceFn     DistanceFunc
}

// DefaultConfig returns recommended defaults for shortlisting over 7-dim
// descriptor vectors, where small neighbor lists and a few entry points
// already give good recall.
func DefaultConfig() Config {
	return Config{
		M:              8,
		EfConstruction: 64,
		SeedCount:      4,
		DistanceFn:     EuclideanDistance,
	}
}

// NewGraph creates an empty Graph.
func NewGraph(cfg Config) *Graph {
	if cfg.M <= 0 {
		cfg.M = 8
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = 64
	}
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = 4
	}
	if cfg.DistanceFn == nil {
		cfg.DistanceFn = EuclideanDistance
	}

	return &Graph{
		m:          cfg.M,
		ef:         cfg.EfConstruction,
		seedCount:  cfg.SeedCount,
		distanceFn: cfg.DistanceFn,
		nodes:      make(map[uint64]*node),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Size returns the number of descriptors held by the graph.
func (g *Graph) Size() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int64(len(g.nodes))
}

func (g *Graph) getNode(id uint64) *node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

func (g *Graph) distance(a, b []float32) float32 { return g.distanceFn(a, b) }

// sampleEntryPointsLocked returns a copy of the current entry point set.
// Callers must hold g.mu.
func (g *Graph) sampleEntryPointsLocked() []uint64 {
	seeds := make([]uint64, len(g.entryPoints))
	copy(seeds, g.entryPoints)
	return seeds
}
