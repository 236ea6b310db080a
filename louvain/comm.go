package louvain

import (
	"sync/atomic"

	"github.com/go-graph-tools/louvain-worklist/enforce"
)

// CommTable is the parallel array of per-community aggregates. In phase 1,
// vertex id == initial community id, so the table has exactly NumVertices
// entries; a contracted phase would shrink it to the number of surviving
// communities (see Driver's single-phase decision in the design notes).
type CommTable struct {
	size     []atomic.Int64
	degreeWt []atomic.Int64
}

// NewCommTable allocates an empty table with one record per vertex.
func NewCommTable(numVertices int) *CommTable {
	return &CommTable{
		size:     make([]atomic.Int64, numVertices),
		degreeWt: make([]atomic.Int64, numVertices),
	}
}

func (t *CommTable) Size(c uint32) int64       { return t.size[c].Load() }
func (t *CommTable) DegreeWeight(c uint32) int64 { return t.degreeWt[c].Load() }

// Init sets community c's aggregates directly; used only during the
// once-per-phase initialization pass, before any concurrent access begins.
func (t *CommTable) Init(c uint32, size, degreeWt int64) {
	t.size[c].Store(size)
	t.degreeWt[c].Store(degreeWt)
}

// Move performs the atomic migration pair: subtract (1, degreeWt) from
// community from and add it to community to. The two operations are not a
// single transaction -- an observer between them may see Σ size off by
// one -- but each individual add/subtract is atomic, and the per-iteration
// post-pass recomputes modularity from vertex-indexed state rather than
// from a snapshot of this table, so the gap is never load-bearing.
func (t *CommTable) Move(from, to uint32, degreeWt int64) {
	newFromSize := t.size[from].Add(-1)
	newFromDeg := t.degreeWt[from].Add(-degreeWt)
	enforce.ENFORCE(newFromSize >= 0, "community size went negative on migration")
	enforce.ENFORCE(newFromDeg >= 0, "community degree weight went negative on migration")

	t.size[to].Add(1)
	t.degreeWt[to].Add(degreeWt)
}

// SumDegreeWeight returns Σ_c degree_wt(c), used by the community-sum
// invariant check: it must equal Σ_v degree_wt(v) at every quiescent
// barrier.
func (t *CommTable) SumDegreeWeight() int64 {
	var sum int64
	for i := range t.degreeWt {
		sum += t.degreeWt[i].Load()
	}
	return sum
}

// SumSize returns Σ_c size(c), which must equal the vertex count at every
// quiescent barrier -- every vertex, isolated or not, is a member of
// exactly one community throughout a phase.
func (t *CommTable) SumSize() int64 {
	var sum int64
	for i := range t.size {
		sum += t.size[i].Load()
	}
	return sum
}

// Sizes returns every community's current size as a float64 slice, sized
// to the table regardless of how many communities actually survive --
// callers that want only non-empty communities must filter themselves.
// Intended for reporting (e.g. utils.FindTopNInArray), not the hot path.
func (t *CommTable) Sizes() []float64 {
	out := make([]float64, len(t.size))
	for i := range t.size {
		out[i] = float64(t.size[i].Load())
	}
	return out
}

// SumSquaredDegreeWeight returns a2_x = Σ_c (degree_wt(c))^2, used directly
// in the modularity formula.
func (t *CommTable) SumSquaredDegreeWeight() float64 {
	var sum float64
	for i := range t.degreeWt {
		d := float64(t.degreeWt[i].Load())
		sum += d * d
	}
	return sum
}
