package louvain

import (
	"github.com/rs/zerolog/log"

	"github.com/go-graph-tools/louvain-worklist/csr"
	"github.com/go-graph-tools/louvain-worklist/utils"
)

// Options configures a Driver run; it mirrors the CLI surface directly so
// cmd/louvain can build one straight from flag values.
type Options struct {
	EnableVF   bool
	CThreshold float64
	MaxIters   int
	NumWorkers int
}

// DefaultOptions returns the engine's documented defaults.
func DefaultOptions() Options {
	return Options{
		EnableVF:   false,
		CThreshold: 0.01,
		MaxIters:   100,
		NumWorkers: 1,
	}
}

// Result carries the outcome of a Driver run: the final per-vertex cluster
// assignment, the modularity achieved, and the iteration count spent
// getting there.
type Result struct {
	Clusters   []uint64
	Modularity float64
	Iterations int
	Followed   int
}

// Run runs the single-phase Louvain loop to convergence. Multi-phase
// contraction -- collapsing each settled community into a super-vertex and
// re-running the engine on the contracted graph -- is not implemented: the
// driver runs exactly one phase and reports that phase's result. See
// DESIGN.md for the rationale; renumberClustersContiguously, which would
// only matter once a second phase exists, is likewise omitted.
func Run(g *csr.Graph, opts Options) Result {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}

	clusters := make([]uint64, g.NumVertices())
	g.ForEachVertex(func(v uint32) { clusters[v] = uint64(v) })

	followed := 0
	if opts.EnableVF {
		followed = RunVertexFollowing(g, clusters)
	}

	engine := NewEngine(g)
	recordPhaseStart(g.NumVertices(), g.NumEdges())

	var watch utils.Watch
	watch.Start()

	var qPrev float64
	iter := 0
	for ; iter < opts.MaxIters; iter++ {
		exx, q := engine.RunIteration(opts.NumWorkers)
		recordIteration(q)
		log.Info().Int("iter", iter).Int64("e_xx", exx).
			Float64("a2_x", engine.comm.SumSquaredDegreeWeight()).
			Float64("Q", q).
			Dur("elapsed", watch.Elapsed()).
			Msg("louvain iteration")

		if q-qPrev < opts.CThreshold {
			qPrev = q
			iter++
			break
		}
		qPrev = q
	}

	engine.CheckInvariant()

	// VF's pin (clusters[v] = host's raw id, set while the host's own
	// community was still unsettled) only ever mattered as a seed: the
	// engine processes every vertex unconditionally, so a followed
	// vertex's own CurrComm keeps converging right alongside its host's
	// and is always the fresher value. Isolation is the one VF outcome
	// that must survive past this point, and it's recomputed here rather
	// than trusted from the pin so it holds even when VF never ran.
	g.ForEachVertex(func(v uint32) {
		if g.Degree(v) == 0 {
			clusters[v] = Isolated
			return
		}
		clusters[v] = g.Nodes[v].CurrComm
	})

	return Result{
		Clusters:   clusters,
		Modularity: qPrev,
		Iterations: iter,
		Followed:   followed,
	}
}
