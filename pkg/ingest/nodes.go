package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

// FileStats summarises one node table.
type FileStats struct {
	File    string
	Rows    int
	Created int
	Updated int
	Skipped int
}

// NodeLoader upserts node tables into a graph.
type NodeLoader struct {
	graph  *graph.AttributedGraph
	logger *slog.Logger
}

// NewNodeLoader creates a loader writing into g.
func NewNodeLoader(g *graph.AttributedGraph) *NodeLoader {
	return &NodeLoader{graph: g, logger: logging.New("ingest")}
}

// Load reads each file in order. The first failing file aborts the load.
func (l *NodeLoader) Load(ctx context.Context, files []string) ([]FileStats, error) {
	stats := make([]FileStats, 0, len(files))
	for _, file := range files {
		s, err := l.LoadFile(ctx, file)
		if err != nil {
			return stats, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// LoadFile reads one node table.
func (l *NodeLoader) LoadFile(ctx context.Context, file string) (FileStats, error) {
	table, err := ReadTable(file)
	if err != nil {
		return FileStats{File: file}, fmt.Errorf("reading node table: %w", err)
	}
	return l.LoadTable(ctx, table)
}

// LoadTable upserts every row of an already parsed table. The first column
// must be node_name; every other column becomes an attribute.
func (l *NodeLoader) LoadTable(ctx context.Context, table *Table) (FileStats, error) {
	stats := FileStats{File: table.Path}
	if len(table.Header) == 0 || table.Header[0] != model.ColumnNodeName {
		return stats, fmt.Errorf("%s: first column must be %q: %w",
			table.Path, model.ColumnNodeName, model.ErrMissingColumn)
	}

	for r, row := range table.Rows {
		stats.Rows++
		name := table.Text(r, 0)
		if name == "" {
			stats.Skipped++
			l.logger.WarnContext(ctx, "Skipping node row without name",
				append(logging.Attrs(ctx), "file", table.Path, "line", table.Lines[r])...)
			continue
		}

		attrs := make(model.Attributes, len(table.Header)-1)
		for c := 1; c < len(table.Header); c++ {
			attrs[table.Header[c]] = row[c]
		}

		if l.graph.UpsertNode(name, attrs) {
			stats.Created++
		} else {
			stats.Updated++
			l.logger.Log(ctx, logging.LevelTrace, "Merged node attributes",
				"node", name, "file", table.Path, "line", table.Lines[r])
		}
	}

	l.logger.InfoContext(ctx, "Loaded node table",
		append(logging.Attrs(ctx),
			"file", table.Path, "rows", stats.Rows, "new", stats.Created, "updated", stats.Updated)...)
	return stats, nil
}
