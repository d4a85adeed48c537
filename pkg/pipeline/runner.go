package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ritzau/dystonia-kg/pkg/config"
	"github.com/ritzau/dystonia-kg/pkg/export"
	"github.com/ritzau/dystonia-kg/pkg/finder"
	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/ingest"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/metrics"
	"github.com/ritzau/dystonia-kg/pkg/ontology"
	"github.com/ritzau/dystonia-kg/pkg/output"
)

const stages = 5

// Runner executes one batch run: assemble the graph from the input tables,
// export it, project the ontology and export that.
type Runner struct {
	cfg     *config.Config
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg, metrics: metrics.NewRecorder(), logger: logging.New("pipeline")}
}

// Run performs every stage in order and returns the run summary. The first
// failing stage aborts the run.
func (r *Runner) Run(ctx context.Context) (*output.Report, error) {
	start := time.Now()
	report := &output.Report{RunID: logging.GetRunID(ctx)}

	r.stage(ctx, 1, "Resolving input tables")
	tables, err := r.inputs()
	if err != nil {
		return report, err
	}
	report.NodeFiles, report.EdgeFiles = len(tables.Nodes), len(tables.Edges)

	r.stage(ctx, 2, "Assembling graph")
	t := time.Now()
	res, err := ingest.NewAssembler().Assemble(ctx, tables.Nodes, tables.Edges)
	if err != nil {
		return report, fmt.Errorf("assembling graph: %w", err)
	}
	r.metrics.ObserveStage("assemble", time.Since(t))
	r.metrics.ObserveAssembly(res)
	report.Graph = res.Graph.Stats()
	report.Skipped = res.Skipped

	exp := export.New(r.cfg.OutDir, export.ImageOptions{
		Width:      r.cfg.Image.Width,
		Height:     r.cfg.Image.Height,
		Iterations: r.cfg.Image.Iterations,
	})

	r.stage(ctx, 3, "Exporting graph")
	t = time.Now()
	written, err := exp.ExportGraph(ctx, res.Graph, export.GraphTargets{
		GraphML: r.cfg.GraphFile,
		Image:   r.cfg.ImageFile,
		DOT:     r.cfg.DOTFile,
	})
	report.Written = append(report.Written, written...)
	if err != nil {
		return report, err
	}
	r.metrics.ObserveStage("export_graph", time.Since(t))

	r.stage(ctx, 4, "Building ontology")
	t = time.Now()
	schema, err := r.schema()
	if err != nil {
		return report, err
	}
	report.SchemaWarnings = schema.Validate()
	for _, msg := range report.SchemaWarnings {
		r.logger.WarnContext(ctx, "Schema", append(logging.Attrs(ctx), "warning", msg)...)
	}

	opts := ontology.Options{
		Base:             ontology.Namespace(r.cfg.Ontology.BaseIRI),
		ObjectProperties: ontology.Namespace(r.cfg.Ontology.ObjectPropertyIRI),
		NullPolicy:       ontology.NullPolicy(r.cfg.Ontology.NullPolicy),
		MissingLiteral:   r.cfg.Ontology.MissingLiteral,
		NullLiteral:      r.cfg.Ontology.NullLiteral,
		Orientation:      graph.Orientation(r.cfg.Ontology.EdgeOrientation),
	}
	prefixes := ontology.DefaultPrefixes(r.cfg.Ontology.BaseIRI, r.cfg.Ontology.ObjectPropertyIRI)

	store := ontology.NewStore()
	declared := ontology.BuildSchema(store, schema, opts.Base, prefixes)
	r.metrics.ObserveSchema(declared)
	report.Projection = ontology.NewProjector(schema, opts).Project(ctx, res.Graph, store)
	r.metrics.ObserveProjection(report.Projection)
	report.Triples = store.Len()
	r.metrics.ObserveStage("project", time.Since(t))

	r.stage(ctx, 5, "Exporting ontology")
	t = time.Now()
	written, err = exp.ExportOntology(ctx, store, prefixes, export.OntologyTargets{
		Turtle:   r.cfg.OntologyFile,
		NTriples: r.cfg.NTriplesFile,
	})
	report.Written = append(report.Written, written...)
	if err != nil {
		return report, err
	}
	r.metrics.ObserveStage("export_ontology", time.Since(t))

	if r.cfg.MetricsFile != "" {
		path := exp.Path(r.cfg.MetricsFile)
		if err := r.metrics.WriteTextfile(path); err != nil {
			return report, err
		}
		report.Written = append(report.Written, path)
	}

	report.Duration = time.Since(start)
	r.logger.InfoContext(ctx, "Run complete",
		append(logging.Attrs(ctx), "durationMs", report.Duration.Milliseconds(), "triples", report.Triples)...)
	return report, nil
}

func (r *Runner) stage(ctx context.Context, n int, msg string) {
	r.logger.InfoContext(ctx, fmt.Sprintf("[%d/%d] %s...", n, stages, msg), logging.Attrs(ctx)...)
}

func (r *Runner) inputs() (finder.Tables, error) {
	if r.cfg.Discover {
		tables, err := finder.DiscoverTables(r.cfg.DataDir)
		if err != nil {
			return tables, err
		}
		if len(tables.Nodes) == 0 {
			return tables, fmt.Errorf("no node tables found in %s", r.cfg.DataDir)
		}
		return tables, nil
	}

	nodes, err := finder.ResolveFiles(r.cfg.DataDir, r.cfg.NodeFiles)
	if err != nil {
		return finder.Tables{}, err
	}
	edges, err := finder.ResolveFiles(r.cfg.DataDir, r.cfg.EdgeFiles)
	if err != nil {
		return finder.Tables{}, err
	}
	return finder.Tables{Nodes: nodes, Edges: edges}, nil
}

func (r *Runner) schema() (*ontology.Schema, error) {
	if r.cfg.Ontology.SchemaFile == "" {
		return ontology.DefaultSchema(), nil
	}
	return ontology.LoadSchema(r.cfg.Ontology.SchemaFile)
}
