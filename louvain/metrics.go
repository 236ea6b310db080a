package louvain

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the driver's iteration-level statistics for scraping.
// It is registered once into the default registry; cmd/louvain decides
// whether to actually serve /metrics.
var (
	iterationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "louvain",
		Name:      "iterations_total",
		Help:      "Number of parallel-for passes the engine has run.",
	})
	modularityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "louvain",
		Name:      "modularity",
		Help:      "Modularity Q after the most recently completed iteration.",
	})
	verticesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "louvain",
		Name:      "phase_vertices",
		Help:      "Vertex count of the graph the current phase is operating on.",
	})
	edgesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "louvain",
		Name:      "phase_edges",
		Help:      "Directed edge count of the graph the current phase is operating on.",
	})
)

func init() {
	prometheus.MustRegister(iterationsTotal, modularityGauge, verticesGauge, edgesGauge)
}

func recordPhaseStart(numVertices, numEdges int) {
	verticesGauge.Set(float64(numVertices))
	edgesGauge.Set(float64(numEdges))
}

func recordIteration(q float64) {
	iterationsTotal.Inc()
	modularityGauge.Set(q)
}
