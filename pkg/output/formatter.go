package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/model"
	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

// maxListedSkips bounds the skip records printed in full.
const maxListedSkips = 10

// Report is the summary of one run.
type Report struct {
	RunID          string
	NodeFiles      int
	EdgeFiles      int
	Graph          graph.Stats
	Triples        int
	Projection     ontology.Counts
	SchemaWarnings []string
	Skipped        []model.SkipRecord
	Written        []string
	Duration       time.Duration
}

// PrintRunReport prints a colored summary of a run
func PrintRunReport(w io.Writer, r Report) {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Dystonia Knowledge Graph - Run Report")
	bold.Fprintln(w, "=====================================")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Inputs: %d node table(s), %d edge table(s)\n", r.NodeFiles, r.EdgeFiles)
	fmt.Fprintf(w, "Graph: %d nodes, %d edges, %d component(s)\n", r.Graph.Nodes, r.Graph.Edges, r.Graph.Components)
	if r.Graph.SelfLoops > 0 || r.Graph.Isolated > 0 {
		fmt.Fprintf(w, "       %d self loop(s), %d isolated node(s)\n", r.Graph.SelfLoops, r.Graph.Isolated)
	}
	fmt.Fprintf(w, "Ontology: %d triples (%d individuals, %d data values, %d relations)\n",
		r.Triples, r.Projection.Individuals, r.Projection.DataProperties, r.Projection.Relations)
	fmt.Fprintln(w)

	if len(r.Graph.BySupranode) > 0 {
		bold.Fprintln(w, "NODES BY SUPRANODE:")
		for _, c := range graph.SortedCounts(r.Graph.BySupranode) {
			cyan.Fprintf(w, "  %-14s", c.Key)
			fmt.Fprintf(w, " %d\n", c.Count)
		}
		fmt.Fprintln(w)
	}

	if len(r.SchemaWarnings) > 0 {
		yellow.Fprintf(w, "Schema warnings: %d\n", len(r.SchemaWarnings))
		for _, msg := range r.SchemaWarnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
		fmt.Fprintln(w)
	}

	if len(r.Skipped) == 0 {
		green.Fprintln(w, "Skipped edges: 0")
	} else {
		yellow.Fprintf(w, "Skipped edges: %d (endpoint not loaded)\n", len(r.Skipped))
		for i, s := range r.Skipped {
			if i == maxListedSkips {
				fmt.Fprintf(w, "  ... %d more\n", len(r.Skipped)-maxListedSkips)
				break
			}
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	fmt.Fprintln(w)

	for _, path := range r.Written {
		green.Fprintf(w, "✓ ")
		fmt.Fprintf(w, "%s has been written\n", path)
	}
	if r.Duration > 0 {
		fmt.Fprintf(w, "Completed in %s\n", r.Duration.Round(time.Millisecond))
	}
}
