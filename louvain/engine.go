// Package louvain implements the parallel Louvain community-detection
// engine: per-vertex best-target selection under cautious locking, atomic
// community migration, and the modularity convergence test that drives the
// iteration loop. Vertex work is scheduled through the worklist package's
// chunked, work-stealing adaptor, so the two systems this module pairs --
// scheduler and algorithm -- share a single dispatch path end to end.
package louvain

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/go-graph-tools/louvain-worklist/csr"
	"github.com/go-graph-tools/louvain-worklist/enforce"
	"github.com/go-graph-tools/louvain-worklist/worklist"
)

// Isolated is the bit pattern stored into a vertex's cluster assignment to
// mark it as having no community at all (degree zero). It is exactly the
// two's-complement encoding of -1, matching the convention the vertex
// assignment array uses throughout.
const Isolated = ^uint64(0)

// Engine holds the mutable state of one Louvain phase: the graph view it
// operates over, the community aggregate table, and the per-vertex lock
// table used by the cautious-locking protocol. A phase's degree_wt and
// curr_comm live directly on csr.Graph's Node payload.
type Engine struct {
	g     *csr.Graph
	comm  *CommTable
	locks *VertexLocks
	m2    int64
	alpha float64
}

// NewEngine initializes a fresh phase over g: curr_comm(v) = prev_comm(v)
// = v, degree_wt(v) is the sum of v's incident edge weights, and the
// community table starts with one singleton community per vertex. Self-loop
// weight is counted once per self-loop edge (the CSR builder stores each
// self-loop once, not twice), so it contributes to degree_wt exactly as any
// other incident edge would.
func NewEngine(g *csr.Graph) *Engine {
	e := &Engine{
		g:     g,
		comm:  NewCommTable(g.NumVertices()),
		locks: NewVertexLocks(g.NumVertices()),
	}

	var m2 int64
	g.ForEachVertex(func(v uint32) {
		var degWt int64
		for _, edge := range g.Edges(v) {
			degWt += int64(edge.Weight)
		}
		g.Nodes[v].PrevComm = uint64(v)
		g.Nodes[v].CurrComm = uint64(v)
		g.Nodes[v].DegreeWeight = uint64(degWt)
		e.comm.Init(v, 1, degWt)
		m2 += degWt
	})
	e.m2 = m2
	if m2 > 0 {
		e.alpha = 1.0 / float64(m2)
	}
	log.Warn().Msg("input graph is assumed symmetric with no duplicate edges; the loader is responsible and the engine does not check")
	log.Debug().Int("vertices", g.NumVertices()).Int64("m2", m2).Msg("louvain phase initialized")
	return e
}

// localMap is scoped to a single vertex body invocation; index 0 is always
// reserved for the vertex's own current community, per the scan protocol.
type localMap struct {
	index   map[uint32]int
	counter []int64
}

func newLocalMap(selfComm uint32) *localMap {
	lm := &localMap{index: map[uint32]int{selfComm: 0}, counter: []int64{0}}
	return lm
}

func (lm *localMap) add(comm uint32, weight int64) {
	idx, ok := lm.index[comm]
	if !ok {
		idx = len(lm.counter)
		lm.index[comm] = idx
		lm.counter = append(lm.counter, 0)
	}
	lm.counter[idx] += weight
}

// vertexBody runs the cautious-locking gain computation and, if
// profitable, the atomic migration for a single vertex. It assumes the
// caller already holds the sorted neighborhood locks for v.
func (e *Engine) vertexBody(v uint32) {
	x := uint32(e.g.Nodes[v].CurrComm)
	edges := e.g.Edges(v)

	lm := newLocalMap(x)
	var selfLoopWt int64
	for _, edge := range edges {
		// A self-loop's own community is always x, so it folds into
		// counter[0] like any same-community edge; selfLoopWt is tracked
		// separately so it can be subtracted back out of eix below.
		if edge.Dst == v {
			selfLoopWt += int64(edge.Weight)
		}
		neighborComm := uint32(e.g.Nodes[edge.Dst].CurrComm)
		lm.add(neighborComm, int64(edge.Weight))
	}

	degV := int64(e.g.Nodes[v].DegreeWeight)
	eix := lm.counter[0] - selfLoopWt
	aX := float64(e.comm.DegreeWeight(x)) - float64(degV)

	best := x
	bestGain := 0.0
	for comm, idx := range lm.index {
		// Staying in x is the implicit baseline (gain 0); never recompute
		// or displace it from inside the loop.
		if comm == x {
			continue
		}
		ay := float64(e.comm.DegreeWeight(comm))
		eiy := lm.counter[idx]
		gain := 2*e.alpha*(float64(eiy)-float64(eix)) + 2*float64(degV)*(aX-ay)*e.alpha*e.alpha

		if gain > bestGain || (gain == bestGain && gain != 0 && comm < best) {
			bestGain = gain
			best = comm
		}
	}

	if best != x && e.comm.Size(x) == 1 && e.comm.Size(best) == 1 && best > x {
		best = x
	}

	if best == x {
		return
	}
	e.comm.Move(x, best, degV)
	e.g.Nodes[v].CurrComm = uint64(best)
}

// RunIteration performs one full parallel-for pass: every vertex attempts
// its best-target migration under cautious locking, scheduled across
// numWorkers via a chunked work-stealing worklist; a second pass then
// recomputes each vertex's internal-edge weight against the settled
// community assignment, and the resulting e_xx feeds the modularity
// computed for this iteration.
func (e *Engine) RunIteration(numWorkers int) (exx int64, q float64) {
	iq := worklist.NewInitialQueue[uint32](numWorkers)
	adaptor := worklist.NewChunkedAdaptor[uint32](iq, numWorkers)
	vertices := make([]uint32, 0, e.g.NumVertices())
	e.g.ForEachVertex(func(v uint32) { vertices = append(vertices, v) })
	adaptor.PushiRange(vertices)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(worker int) {
			defer wg.Done()
			for {
				v, ok := adaptor.Pop(worker)
				if !ok {
					return
				}
				e.migrateOne(v)
			}
		}(w)
	}
	wg.Wait()

	exx = e.recomputeInternalWeights(numWorkers)
	a2x := e.comm.SumSquaredDegreeWeight()
	q = e.alpha*float64(exx) - e.alpha*e.alpha*a2x
	return exx, q
}

// migrateOne acquires the cautious-locking neighborhood for v, sorted by
// id to match every other caller's acquisition order, and runs the gain
// computation and migration under that protection.
func (e *Engine) migrateOne(v uint32) {
	edges := e.g.Edges(v)
	neighbors := make([]uint32, len(edges))
	for i, edge := range edges {
		neighbors[i] = edge.Dst
	}
	ids := SortedNeighborhood(v, neighbors)
	release := e.locks.AcquireSorted(ids)
	defer release()

	e.vertexBody(v)
}

// recomputeInternalWeights fills cluster_wt_internal for every vertex from
// the now-settled community assignment and returns e_xx, their sum. Each
// vertex writes only its own slot, so no locking is needed here -- curr_comm
// reads are stable once RunIteration's migration pass has returned.
func (e *Engine) recomputeInternalWeights(numWorkers int) int64 {
	n := e.g.NumVertices()
	partials := make([]int64, numWorkers)

	var wg sync.WaitGroup
	chunk := (n + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			continue
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			var sum int64
			for v := start; v < end; v++ {
				vertex := uint32(v)
				myComm := e.g.Nodes[vertex].CurrComm
				var internal int64
				for _, edge := range e.g.Edges(vertex) {
					if e.g.Nodes[edge.Dst].CurrComm == myComm {
						internal += int64(edge.Weight)
					}
				}
				e.g.Nodes[vertex].ClusterWeightInner = uint64(internal)
				sum += internal
			}
			partials[worker] = sum
		}(w, start, end)
	}
	wg.Wait()

	var total int64
	for _, p := range partials {
		total += p
	}
	return total
}

// CommTable exposes the engine's community aggregates, primarily for tests
// that check the community-sum invariant.
func (e *Engine) CommTable() *CommTable { return e.comm }

// CheckInvariant verifies the community-sum invariant: Σ_v degree_wt(v)
// equals Σ_c degree_wt(c), and Σ_c size(c) equals the vertex count. Every
// vertex, including degree-0 ones, is a member of exactly one community
// throughout a phase -- Isolated only ever marks a slot in the
// cluster-assignment array (set by vertex-following and by Run's final
// pass), never curr_comm itself. A violation is a migration bug, not a recoverable condition.
func (e *Engine) CheckInvariant() {
	var sumDeg int64
	e.g.ForEachVertex(func(v uint32) {
		sumDeg += int64(e.g.Nodes[v].DegreeWeight)
	})
	enforce.ENFORCE(sumDeg == e.comm.SumDegreeWeight(), "community degree weight invariant violated")
	enforce.ENFORCE(int64(e.g.NumVertices()) == e.comm.SumSize(), "community size invariant violated")
}
