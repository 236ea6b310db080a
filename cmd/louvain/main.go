package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/go-graph-tools/louvain-worklist/cmd/common"
	"github.com/go-graph-tools/louvain-worklist/csr"
	"github.com/go-graph-tools/louvain-worklist/enforce"
	"github.com/go-graph-tools/louvain-worklist/louvain"
	"github.com/go-graph-tools/louvain-worklist/utils"
)

func main() {
	algoPtr := flag.String("algo", "Naive", "Algorithm selector (only \"Naive\" is meaningful)")
	vfPtr := flag.Bool("enable_VF", false, "Run the vertex-following preprocessor before the first phase")
	thresholdPtr := flag.Float64("c_threshold", 0.01, "Modularity-gain convergence threshold")
	workersPtr := flag.Int("t", 8, "Worker count")
	outPtr := flag.String("o", "", "Path to write the final cluster assignment (skipped if empty)")
	pprofPtr := flag.Bool("pprof", false, "Serve pprof and /metrics on 0.0.0.0:6060")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: louvain [flags] <graph-file>")
		os.Exit(1)
	}
	graphPath := flag.Arg(0)

	enforce.ENFORCE(*algoPtr == "Naive", "algo: only \"Naive\" is meaningful")

	if *pprofPtr {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Msg(http.ListenAndServe("0.0.0.0:6060", nil).Error())
		}()
	}

	g := csr.LoadEdgeList(graphPath)

	opts := louvain.DefaultOptions()
	opts.EnableVF = *vfPtr
	opts.CThreshold = *thresholdPtr
	opts.NumWorkers = *workersPtr

	res := louvain.Run(g, opts)

	graphName := common.ExtractGraphName(graphPath)
	log.Info().Str("graph", graphName).
		Int("iterations", res.Iterations).
		Float64("modularity", res.Modularity).
		Int("vertices_followed", res.Followed).
		Msg("louvain converged")

	reportTopCommunities(res.Clusters)

	if *outPtr != "" {
		csr.WriteClusters(*outPtr, res.Clusters)
		log.Info().Str("path", *outPtr).Msg("wrote cluster assignment")
	}
}

// reportTopCommunities logs the five largest communities by vertex count
// and the median community size, skipping isolated vertices entirely.
func reportTopCommunities(clusters []uint64) {
	counts := make(map[uint64]int, len(clusters))
	for _, c := range clusters {
		if c == louvain.Isolated {
			continue
		}
		counts[c]++
	}
	if len(counts) == 0 {
		return
	}

	sizes := make([]float64, 0, len(counts))
	for _, n := range counts {
		sizes = append(sizes, float64(n))
	}

	// FindTopNInArray returns largest-first.
	top := utils.FindTopNInArray(sizes, 5)
	for i, p := range top {
		log.Info().Int("rank", i+1).Float64("size", p.Second).Msg("largest community")
	}
	log.Info().Int("communities", len(counts)).Float64("median_size", utils.Median(sizes)).Msg("community size summary")
}
