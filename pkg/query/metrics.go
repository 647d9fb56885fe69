package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

var (
	// Query metrics
	queryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ephem_query_duration_seconds",
			Help:    "Time taken to query and reduce all nodes",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	queryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ephem_query_total",
			Help: "Total number of query attempts",
		},
		[]string{"status"}, // success or error
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ephem_query_stage_duration_seconds",
			Help:    "Time taken by individual cluster reads",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"stage"}, // nodes, stats, images
	)

	nodesReported = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ephem_nodes_reported",
			Help: "Number of nodes in the last successful report",
		},
	)

	// Report metrics, replaced after each successful query
	podUsageBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ephem_pod_usage_bytes",
			Help: "Ephemeral storage used by a pod",
		},
		[]string{"node", "pod"},
	)

	nodeImageBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ephem_node_image_bytes",
			Help: "Total size of container images present on a node",
		},
		[]string{"node"},
	)
)

// recordReport replaces the report gauges with the values of results.
// Nodes and pods absent from results disappear from the export.
func recordReport(results report.ResultSet) {
	podUsageBytes.Reset()
	nodeImageBytes.Reset()

	for _, n := range results {
		for _, p := range n.PodUsage {
			podUsageBytes.WithLabelValues(n.Node, p.Pod).Set(float64(p.UsedBytes))
		}
		nodeImageBytes.WithLabelValues(n.Node).Set(float64(n.TotalImageSize))
	}
	nodesReported.Set(float64(len(results)))
}
