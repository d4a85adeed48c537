package export

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph/encoding/dot"

	"github.com/ritzau/dystonia-kg/pkg/graph"
)

// WriteDOT writes the topology of g in Graphviz syntax. Self loops are not
// part of the underlying simple graph and are not written.
func WriteDOT(w io.Writer, g *graph.AttributedGraph, name string) error {
	b, err := dot.Marshal(g.Undirected(), name, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dot: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
