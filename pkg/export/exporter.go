package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

// GraphTargets names the graph outputs. An empty name skips that output.
type GraphTargets struct {
	GraphML string
	Image   string
	DOT     string
}

// OntologyTargets names the ontology outputs. An empty name skips that
// output.
type OntologyTargets struct {
	Turtle   string
	NTriples string
}

type output struct {
	name  string
	write func(io.Writer) error
}

// Exporter writes outputs below one directory.
type Exporter struct {
	outDir string
	image  ImageOptions
	logger *slog.Logger
}

// New creates an exporter writing into outDir. Relative target names are
// resolved against it.
func New(outDir string, image ImageOptions) *Exporter {
	return &Exporter{outDir: outDir, image: image, logger: logging.New("export")}
}

// ExportGraph writes the graph outputs and returns the written paths.
func (e *Exporter) ExportGraph(ctx context.Context, g *graph.AttributedGraph, t GraphTargets) ([]string, error) {
	steps := []output{
		{t.GraphML, func(w io.Writer) error { return WriteGraphML(w, g) }},
		{t.Image, func(w io.Writer) error { return RenderPNG(w, g, e.image) }},
		{t.DOT, func(w io.Writer) error { return WriteDOT(w, g, "dystonia") }},
	}
	return e.run(ctx, steps)
}

// ExportOntology writes the ontology outputs and returns the written paths.
func (e *Exporter) ExportOntology(ctx context.Context, store *ontology.Store, prefixes ontology.Prefixes, t OntologyTargets) ([]string, error) {
	steps := []output{
		{t.Turtle, func(w io.Writer) error { return WriteTurtle(w, store, prefixes) }},
		{t.NTriples, func(w io.Writer) error { return WriteNTriples(w, store) }},
	}
	return e.run(ctx, steps)
}

func (e *Exporter) run(ctx context.Context, steps []output) ([]string, error) {
	var written []string
	for _, step := range steps {
		if step.name == "" {
			continue
		}
		path := e.Path(step.name)
		if err := writeFile(path, step.write); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		e.logger.DebugContext(ctx, "Wrote output", append(logging.Attrs(ctx), "path", path)...)
		written = append(written, path)
	}
	return written, nil
}

// Path resolves an output name against the output directory.
func (e *Exporter) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.outDir, name)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}
