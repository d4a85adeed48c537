package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ritzau/dystonia-kg/pkg/ingest"
	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

// Recorder holds the metrics of one run
type Recorder struct {
	RowsTotal         *prometheus.CounterVec
	SkippedEdgesTotal prometheus.Counter
	GraphNodes        prometheus.Gauge
	GraphEdges        prometheus.Gauge
	Triples           *prometheus.GaugeVec
	StageDuration     *prometheus.GaugeVec
	LastRunTimestamp  prometheus.Gauge

	registry *prometheus.Registry
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.RowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dystonia_kg_rows_total",
			Help: "Table rows read, by table kind",
		},
		[]string{"kind"},
	)

	r.SkippedEdgesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "dystonia_kg_skipped_edges_total",
			Help: "Edge rows dropped because an endpoint was not loaded",
		},
	)

	r.GraphNodes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dystonia_kg_graph_nodes",
			Help: "Nodes in the assembled graph",
		},
	)

	r.GraphEdges = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dystonia_kg_graph_edges",
			Help: "Edges in the assembled graph",
		},
	)

	r.Triples = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dystonia_kg_ontology_triples",
			Help: "Ontology triples written, by pass",
		},
		[]string{"pass"},
	)

	r.StageDuration = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dystonia_kg_stage_duration_seconds",
			Help: "Wall time of each pipeline stage",
		},
		[]string{"stage"},
	)

	r.LastRunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dystonia_kg_last_run_timestamp_seconds",
			Help: "Unix time the run finished",
		},
	)

	return r
}

// ObserveAssembly records table and graph sizes.
func (r *Recorder) ObserveAssembly(res *ingest.Result) {
	for _, s := range res.NodeStats {
		r.RowsTotal.WithLabelValues("node").Add(float64(s.Rows))
	}
	for _, s := range res.EdgeStats {
		r.RowsTotal.WithLabelValues("edge").Add(float64(s.Rows))
	}
	r.SkippedEdgesTotal.Add(float64(len(res.Skipped)))
	r.GraphNodes.Set(float64(res.Graph.NodeCount()))
	r.GraphEdges.Set(float64(res.Graph.EdgeCount()))
}

// ObserveSchema records the number of declaration triples.
func (r *Recorder) ObserveSchema(triples int) {
	r.Triples.WithLabelValues("schema").Set(float64(triples))
}

// ObserveProjection records the triples of each projection pass.
func (r *Recorder) ObserveProjection(c ontology.Counts) {
	r.Triples.WithLabelValues("individual").Set(float64(c.Individuals))
	r.Triples.WithLabelValues("data").Set(float64(c.DataProperties))
	r.Triples.WithLabelValues("relation").Set(float64(c.Relations))
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile stamps the run and writes every metric in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	r.LastRunTimestamp.SetToCurrentTime()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
