// Package csr implements the Graph View consumed by the Louvain engine: an
// immutable compressed-sparse-row adjacency with a mutable per-vertex
// payload and per-edge weight. The engine only ever reads topology and
// edge weight through this package; it never mutates either.
package csr

// Node is the per-vertex payload carried across a Louvain phase. It starts
// life as a zero value and is filled in once by the engine's
// initialization step.
type Node struct {
	PrevComm           uint64
	CurrComm           uint64
	DegreeWeight       uint64
	ClusterWeightInner uint64
}

// Edge is a single out-edge: destination vertex id and its weight. The
// loader is responsible for ensuring the graph is symmetric and free of
// duplicate edges; the engine warns but does not verify this, matching the
// source's "external collaborator" contract for graph ingestion.
type Edge struct {
	Dst    uint32
	Weight uint32
}

// Graph is a read-shared, symmetric, weighted CSR adjacency plus a mutable
// per-vertex Node payload array. Topology and edge weight never change
// after Build; only the Nodes slice mutates, and only through the engine's
// cautious-locking protocol.
type Graph struct {
	// offsets has len(Nodes)+1 entries; offsets[v]..offsets[v+1] indexes
	// into edges for vertex v's out-edges.
	offsets []uint32
	edges   []Edge
	Nodes   []Node
}

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return len(g.Nodes) }

// NumEdges returns the total directed edge count (each undirected edge
// counted twice, once from each endpoint, per the symmetric convention; a
// self-loop is stored and counted once).
func (g *Graph) NumEdges() int { return len(g.edges) }

// Degree returns the out-degree of vertex v.
func (g *Graph) Degree(v uint32) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// Edges returns the out-edges of vertex v. The returned slice aliases the
// graph's storage and must not be mutated or retained past a graph rebuild.
func (g *Graph) Edges(v uint32) []Edge {
	return g.edges[g.offsets[v]:g.offsets[v+1]]
}

// ForEachVertex calls fn for every vertex id in [0, NumVertices).
func (g *Graph) ForEachVertex(fn func(v uint32)) {
	for v := uint32(0); v < uint32(len(g.Nodes)); v++ {
		fn(v)
	}
}

// Builder accumulates a symmetric weighted edge list and compiles it into a
// CSR Graph. Building is single-threaded and happens once, before any
// parallel phase begins; the compiled Graph's topology is then immutable.
type Builder struct {
	numVertices uint32
	srcs        []uint32
	dsts        []uint32
	weights     []uint32
}

// NewBuilder starts a builder for a graph with the given vertex count.
// Vertex ids must be in [0, numVertices).
func NewBuilder(numVertices uint32) *Builder {
	return &Builder{numVertices: numVertices}
}

// AddDirected records a single directed edge src->dst with the given
// weight. Callers building a symmetric (undirected) graph should call this
// twice per logical edge, once in each direction -- see AddUndirected.
func (b *Builder) AddDirected(src, dst, weight uint32) {
	b.srcs = append(b.srcs, src)
	b.dsts = append(b.dsts, dst)
	b.weights = append(b.weights, weight)
}

// AddUndirected records both directions of an undirected edge. Self-loops
// (src == dst) are recorded once, matching the self-loop-weight convention
// the modularity gain formula relies on (see louvain.Engine.vertexBody).
func (b *Builder) AddUndirected(src, dst, weight uint32) {
	b.AddDirected(src, dst, weight)
	if src != dst {
		b.AddDirected(dst, src, weight)
	}
}

// Build compiles the accumulated edge list into an immutable CSR Graph.
func (b *Builder) Build() *Graph {
	degree := make([]uint32, b.numVertices+1)
	for _, s := range b.srcs {
		degree[s+1]++
	}
	for i := uint32(0); i < b.numVertices; i++ {
		degree[i+1] += degree[i]
	}
	offsets := degree

	edges := make([]Edge, len(b.srcs))
	cursor := make([]uint32, b.numVertices)
	copy(cursor, offsets[:b.numVertices])
	for i, s := range b.srcs {
		pos := cursor[s]
		edges[pos] = Edge{Dst: b.dsts[i], Weight: b.weights[i]}
		cursor[s]++
	}

	return &Graph{
		offsets: offsets,
		edges:   edges,
		Nodes:   make([]Node, b.numVertices),
	}
}
