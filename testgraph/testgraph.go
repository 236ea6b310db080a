// Package testgraph builds small synthetic graphs for exercising the
// louvain package, using gonum's graph primitives as the intermediate
// representation before compiling down to a csr.Graph.
package testgraph

import (
	"math/rand"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/go-graph-tools/louvain-worklist/csr"
)

// fromWeighted compiles a gonum WeightedUndirectedGraph with n contiguous
// node ids [0, n) into a csr.Graph. Self-loops carry their own weight;
// every other edge is added once and symmetrized by the builder.
func fromWeighted(n int, g *simple.WeightedUndirectedGraph) *csr.Graph {
	b := csr.NewBuilder(uint32(n))
	edges := g.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		b.AddUndirected(uint32(e.From().ID()), uint32(e.To().ID()), uint32(e.Weight()))
	}
	return b.Build()
}

// Triangle builds K3 with unit edge weights (scenario: single dense
// community, tie-break settles on vertex 0).
func Triangle() *csr.Graph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := int64(0); i < 3; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := int64(0); i < 3; i++ {
		j := (i + 1) % 3
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), 1))
	}
	return fromWeighted(3, g)
}

// TwoTrianglesBridged builds two disjoint triangles {0,1,2} and {3,4,5}
// joined by a single unit edge 2-3 (scenario: engine must keep two
// communities rather than merging everything).
func TwoTrianglesBridged() *csr.Graph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := int64(0); i < 6; i++ {
		g.AddNode(simple.Node(i))
	}
	tri := func(a, b, c int64) {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(a), simple.Node(b), 1))
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(b), simple.Node(c), 1))
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(c), simple.Node(a), 1))
	}
	tri(0, 1, 2)
	tri(3, 4, 5)
	g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(2), simple.Node(3), 1))
	return fromWeighted(6, g)
}

// Star builds a star with center 0 and n-1 unit-weight leaves.
func Star(n int) *csr.Graph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := int64(0); i < int64(n); i++ {
		g.AddNode(simple.Node(i))
	}
	for leaf := int64(1); leaf < int64(n); leaf++ {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(0), simple.Node(leaf), 1))
	}
	return fromWeighted(n, g)
}

// Path builds a path 0-1-...-(n-1) with unit weights.
func Path(n int) *csr.Graph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := int64(0); i < int64(n); i++ {
		g.AddNode(simple.Node(i))
	}
	for i := int64(0); i < int64(n)-1; i++ {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(i+1), 1))
	}
	return fromWeighted(n, g)
}

// RandomSparse builds a gnp-style random undirected graph over n vertices
// with independent edge probability p and unit weights, seeded by seed for
// reproducibility across test runs.
func RandomSparse(n int, p float64, seed int64) *csr.Graph {
	r := rand.New(rand.NewSource(seed))
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := int64(0); i < int64(n); i++ {
		g.AddNode(simple.Node(i))
	}
	for i := int64(0); i < int64(n); i++ {
		for j := i + 1; j < int64(n); j++ {
			if r.Float64() < p {
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), 1))
			}
		}
	}
	return fromWeighted(n, g)
}
