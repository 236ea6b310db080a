package csr

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-graph-tools/louvain-worklist/enforce"
	"github.com/go-graph-tools/louvain-worklist/utils"
)

// LoadEdgeList reads a whitespace-separated edge list ("src dst [weight]",
// one edge per line, comments starting with '#' ignored) and compiles it
// into a symmetric weighted Graph. A missing weight defaults to 1. The
// input is assumed undirected: each line contributes both directions, so
// the file itself need only list one direction per edge.
func LoadEdgeList(path string) *Graph {
	file := utils.OpenFile(path)
	defer file.Close()

	maxVertex := uint32(0)
	type rawEdge struct {
		src, dst, weight uint32
	}
	var raw []rawEdge

	scanner := utils.FastFileLines{Buf: make([]byte, 1<<20)}
	fields := make([]string, 3)
	for {
		line := scanner.Scan(file)
		if line == nil {
			break
		}
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		text := strings.TrimSpace(string(line))
		if text == "" {
			continue
		}
		fields[0], fields[1], fields[2] = fieldSentinel, fieldSentinel, fieldSentinel
		utils.FastFields(fields, line)
		enforce.ENFORCE(fields[0] != fieldSentinel && fields[1] != fieldSentinel, "edge line must have at least src and dst: "+text)

		src := utils.ToIntStr(fields[0])
		dst := utils.ToIntStr(fields[1])
		weight := uint32(1)
		if fields[2] != fieldSentinel {
			weight = utils.ToIntStr(fields[2])
		}

		raw = append(raw, rawEdge{src: src, dst: dst, weight: weight})
		if src > maxVertex {
			maxVertex = src
		}
		if dst > maxVertex {
			maxVertex = dst
		}
	}

	b := NewBuilder(maxVertex + 1)
	var seen utils.Bitmap
	seen.Grow(maxVertex)
	for _, e := range raw {
		b.AddUndirected(e.src, e.dst, e.weight)
		seen.QuickSet(e.src)
		seen.QuickSet(e.dst)
	}

	g := b.Build()
	log.Info().Int("vertices", g.NumVertices()).Int("edges", g.NumEdges()).
		Int("isolated", g.NumVertices()-popcount(seen)).Str("path", path).Msg("loaded graph")
	return g
}

// popcount counts the vertex ids that appeared in at least one edge line.
func popcount(b utils.Bitmap) int {
	n := 0
	for _, word := range b {
		n += bits.OnesCount64(word)
	}
	return n
}

// fieldSentinel marks a fields slot as unwritten by utils.FastFields, which
// reports how many fields it found only implicitly, by how far it writes.
const fieldSentinel = "\x00"

// WriteClusters writes the final community assignment, one "vertex comm"
// pair per line, matching the plain text format the rest of the toolchain
// (and a human skimming results) expects.
func WriteClusters(path string, comm []uint64) {
	f := utils.CreateFile(path)
	defer f.Close()

	var sb strings.Builder
	for v, c := range comm {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(c, 10))
		sb.WriteByte('\n')
	}
	_, err := f.WriteString(sb.String())
	enforce.ENFORCE(err)
}
