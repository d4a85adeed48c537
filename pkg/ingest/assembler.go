package ingest

import (
	"context"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

// Result is the outcome of one assembly.
type Result struct {
	Graph     *graph.AttributedGraph
	NodeStats []FileStats
	EdgeStats []EdgeStats
	Skipped   []model.SkipRecord
}

// Assembler builds a graph from node tables followed by edge tables.
type Assembler struct{}

// NewAssembler creates an assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble loads every node file, then every edge file, into a fresh graph.
// Edges are only loaded once all nodes are known, so an edge file may cite
// nodes from any node file.
func (a *Assembler) Assemble(ctx context.Context, nodeFiles, edgeFiles []string) (*Result, error) {
	g := graph.New()
	res := &Result{Graph: g}

	nodeStats, err := NewNodeLoader(g).Load(ctx, nodeFiles)
	res.NodeStats = nodeStats
	if err != nil {
		return res, err
	}

	edgeStats, skipped, err := NewEdgeLoader(g).Load(ctx, edgeFiles)
	res.EdgeStats = edgeStats
	res.Skipped = skipped
	if err != nil {
		return res, err
	}
	return res, nil
}
