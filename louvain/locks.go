package louvain

import "sync"

// VertexLocks is the cautious-locking protocol's lock table: one mutex per
// vertex. A vertex body acquires write-locks on itself and every neighbor,
// always in sorted id order, before reading any curr_comm -- this is what
// guarantees the local_map/counter scan observes a consistent snapshot.
type VertexLocks struct {
	mu []sync.Mutex
}

// NewVertexLocks allocates one mutex per vertex.
func NewVertexLocks(numVertices int) *VertexLocks {
	return &VertexLocks{mu: make([]sync.Mutex, numVertices)}
}

// AcquireSorted locks every id in ids, which must already be sorted
// ascending and deduplicated, and returns a release function. Sorted
// acquisition order across all callers is what prevents deadlock between
// two vertex bodies that share a neighbor.
func (l *VertexLocks) AcquireSorted(ids []uint32) (release func()) {
	for _, id := range ids {
		l.mu[id].Lock()
	}
	return func() {
		for i := len(ids) - 1; i >= 0; i-- {
			l.mu[ids[i]].Unlock()
		}
	}
}

// SortedNeighborhood returns v and its distinct neighbor ids, sorted
// ascending, ready to hand to AcquireSorted. Self-loops are folded in
// (v appears once regardless of how many self-edges exist).
func SortedNeighborhood(v uint32, neighbors []uint32) []uint32 {
	seen := make(map[uint32]bool, len(neighbors)+1)
	ids := make([]uint32, 0, len(neighbors)+1)
	seen[v] = true
	ids = append(ids, v)
	for _, n := range neighbors {
		if !seen[n] {
			seen[n] = true
			ids = append(ids, n)
		}
	}
	insertionSortUint32(ids)
	return ids
}

func insertionSortUint32(a []uint32) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
