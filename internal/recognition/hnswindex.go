package recognition

import (
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter for the identity graph.
const hnswMaxNeighbors = 16

// IdentityIndex is an approximate-nearest-neighbor index over registry
// entries, used for near-duplicate lookups at registration time and the
// similar-identities endpoint. Classification does not use it: the exact
// ordered scan in Matcher is what guarantees the stable tie-break.
type IdentityIndex struct {
	mu       sync.RWMutex
	graph    *hnsw.Graph[string]
	entries  map[string]Identity // keyed by identity UID
	path     string
	upToDate uint64 // registry version the index was last built from
}

// NewIdentityIndex creates an empty index.
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{entries: make(map[string]Identity)}
}

func newIdentityGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance
	return g
}

// BuildFromSnapshot rebuilds the index from a registry snapshot.
func (ix *IdentityIndex) BuildFromSnapshot(snapshot []Identity, version uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	g := newIdentityGraph()
	entries := make(map[string]Identity, len(snapshot))
	for _, id := range snapshot {
		if len(id.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id.UID, id.Embedding))
		entries[id.UID] = id
	}

	ix.graph = g
	ix.entries = entries
	ix.upToDate = version
}

// Add inserts a single identity into the index.
func (ix *IdentityIndex) Add(id Identity, version uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.graph == nil {
		ix.graph = newIdentityGraph()
	}
	ix.graph.Add(hnsw.MakeNode(id.UID, id.Embedding))
	ix.entries[id.UID] = id
	ix.upToDate = version
}

// Version returns the registry version the index was last synced to.
func (ix *IdentityIndex) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.upToDate
}

// Search returns up to k identities nearest to the query, with exact
// Euclidean distances recomputed from the node embeddings.
func (ix *IdentityIndex) Search(query []float32, k int) ([]Identity, []float64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, nil, fmt.Errorf("%w: identity index not built", ErrNotReady)
	}

	neighbors := ix.graph.Search(query, k)

	ids := make([]Identity, 0, len(neighbors))
	distances := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		id, ok := ix.entries[n.Key]
		if !ok {
			continue
		}
		ids = append(ids, id)
		distances = append(distances, EuclideanDistance(query, n.Value))
	}
	return ids, distances, nil
}

// Count returns the number of indexed identities.
func (ix *IdentityIndex) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// SetPath sets the file path used by Save.
func (ix *IdentityIndex) SetPath(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.path = path
}

// Save persists the graph to the configured path. A nil graph removes
// any stale file instead.
func (ix *IdentityIndex) Save() error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.path == "" {
		return nil
	}
	if ix.graph == nil {
		_ = os.Remove(ix.path)
		return nil
	}

	f, err := os.Create(ix.path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	if err := ix.graph.Export(f); err != nil {
		return fmt.Errorf("exporting identity graph: %w", err)
	}
	return nil
}
