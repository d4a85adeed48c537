package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

// EdgeStats summarises one edge table.
type EdgeStats struct {
	File    string
	Rows    int
	Added   int
	Merged  int
	Skipped int
}

// EdgeLoader adds edge tables to a graph whose nodes are already loaded.
type EdgeLoader struct {
	graph  *graph.AttributedGraph
	logger *slog.Logger
}

// NewEdgeLoader creates a loader writing into g.
func NewEdgeLoader(g *graph.AttributedGraph) *EdgeLoader {
	return &EdgeLoader{graph: g, logger: logging.New("ingest")}
}

// Load reads each file in order, collecting a skip record for every row
// naming a node that does not exist.
func (l *EdgeLoader) Load(ctx context.Context, files []string) ([]EdgeStats, []model.SkipRecord, error) {
	stats := make([]EdgeStats, 0, len(files))
	var skipped []model.SkipRecord
	for _, file := range files {
		s, skips, err := l.LoadFile(ctx, file)
		skipped = append(skipped, skips...)
		if err != nil {
			return stats, skipped, err
		}
		stats = append(stats, s)
	}
	return stats, skipped, nil
}

// LoadFile reads one edge table.
func (l *EdgeLoader) LoadFile(ctx context.Context, file string) (EdgeStats, []model.SkipRecord, error) {
	table, err := ReadTable(file)
	if err != nil {
		return EdgeStats{File: file}, nil, fmt.Errorf("reading edge table: %w", err)
	}
	return l.LoadTable(ctx, table)
}

// LoadTable adds every row of an already parsed table. The table needs
// source and target columns; edge_name is optional.
func (l *EdgeLoader) LoadTable(ctx context.Context, table *Table) (EdgeStats, []model.SkipRecord, error) {
	stats := EdgeStats{File: table.Path}

	src, dst := table.Index(model.ColumnSource), table.Index(model.ColumnTarget)
	for _, col := range []struct {
		name  string
		index int
	}{{model.ColumnSource, src}, {model.ColumnTarget, dst}} {
		if col.index < 0 {
			return stats, nil, fmt.Errorf("%s: column %q: %w", table.Path, col.name, model.ErrMissingColumn)
		}
	}
	label := table.Index(model.ColumnEdgeName)

	var skipped []model.SkipRecord
	for r, row := range table.Rows {
		stats.Rows++
		source, target := table.Text(r, src), table.Text(r, dst)

		attrs := model.Attributes{}
		if label >= 0 {
			attrs[model.ColumnEdgeName] = row[label]
		}

		added, err := l.graph.AddEdge(source, target, attrs)
		if errors.Is(err, model.ErrUnknownNode) {
			rec := model.SkipRecord{File: table.Path, Line: table.Lines[r], Source: source, Target: target}
			skipped = append(skipped, rec)
			stats.Skipped++
			l.logger.WarnContext(ctx, "Skipping edge with unknown endpoint",
				append(logging.Attrs(ctx),
					"file", rec.File, "line", rec.Line, "source", rec.Source, "target", rec.Target)...)
			continue
		}
		if err != nil {
			return stats, skipped, fmt.Errorf("%s:%d: %w", table.Path, table.Lines[r], err)
		}
		if added {
			stats.Added++
			continue
		}
		stats.Merged++
		if label < 0 {
			// a table without labels resets the label to absent
			if e, ok := l.graph.Edge(source, target); ok {
				delete(e.Attrs, model.ColumnEdgeName)
			}
		}
	}

	l.logger.InfoContext(ctx, "Loaded edge table",
		append(logging.Attrs(ctx),
			"file", table.Path, "rows", stats.Rows, "added", stats.Added,
			"merged", stats.Merged, "skipped", stats.Skipped)...)
	return stats, skipped, nil
}
