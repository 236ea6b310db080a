package louvain

import "github.com/go-graph-tools/louvain-worklist/csr"

// RunVertexFollowing performs a single sequential pass over all vertices,
// before the first Louvain phase ever runs: degree-0 vertices are marked
// Isolated, and degree-1 vertices are collapsed into their one neighbor. It
// writes into clusters (which must be sized to g.NumVertices() and
// pre-filled with csr.Node.CurrComm-style defaults by the caller) and
// returns the number of degree-1 vertices collapsed; isolated vertices are
// not counted.
//
// It does not touch the graph's topology -- a collapsed vertex still has
// its original edges for the phase that follows; only its final cluster
// assignment is pinned early.
func RunVertexFollowing(g *csr.Graph, clusters []uint64) (followed int) {
	g.ForEachVertex(func(v uint32) {
		switch deg := g.Degree(v); {
		case deg == 0:
			clusters[v] = Isolated

		case deg == 1:
			edges := g.Edges(v)
			d := edges[0].Dst
			if d == v {
				// A lone self-loop is degree 1 but has no distinct
				// neighbor to follow; leave it to the engine.
				return
			}
			if g.Degree(d) > 1 || v > d {
				clusters[v] = uint64(d)
				followed++
			}
		}
	})
	return followed
}
