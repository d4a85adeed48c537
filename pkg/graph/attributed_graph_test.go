package graph

import (
	"errors"
	"testing"

	"github.com/ritzau/dystonia-kg/pkg/model"
)

func gene(name string) model.Attributes {
	return model.Attributes{
		model.AttrSupranode: model.StringValue("gene"),
		model.AttrCategory:  model.StringValue("instance"),
	}
}

func TestNewGraph(t *testing.T) {
	g := New()
	if g == nil {
		t.Fatal("New() returned nil")
	}

	if g.NodeCount() != 0 {
		t.Errorf("New graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestUpsertNode(t *testing.T) {
	g := New()

	if created := g.UpsertNode("TOR1A", gene("TOR1A")); !created {
		t.Error("first upsert should create the node")
	}

	node, exists := g.Node("TOR1A")
	if !exists {
		t.Fatal("Node not found in graph")
	}
	if node.Supranode() != "gene" {
		t.Errorf("Expected supranode gene, got %q", node.Supranode())
	}
	if !node.IsInstance() {
		t.Error("Expected node to be an instance")
	}
}

func TestUpsertNodeLastWriteWins(t *testing.T) {
	g := New()

	g.UpsertNode("TOR1A", model.Attributes{
		"gene_MIM":          model.IntValue(605204),
		model.AttrSupranode: model.StringValue("gene"),
	})
	created := g.UpsertNode("TOR1A", model.Attributes{
		"gene_MIM":            model.IntValue(128100),
		"chromosome_location": model.StringValue("9q34.11"),
	})

	if created {
		t.Error("second upsert should not create a node")
	}
	if g.NodeCount() != 1 {
		t.Fatalf("Expected 1 node, got %d", g.NodeCount())
	}

	node, _ := g.Node("TOR1A")
	if v, _ := node.Attr("gene_MIM"); !v.Equal(model.IntValue(128100)) {
		t.Errorf("gene_MIM = %v, want 128100", v)
	}
	if node.Supranode() != "gene" {
		t.Error("merge dropped supranode")
	}
	if _, ok := node.Attr("chromosome_location"); !ok {
		t.Error("merge did not add chromosome_location")
	}
}

func TestUpsertNodeCopiesAttributes(t *testing.T) {
	g := New()
	attrs := gene("GCH1")
	g.UpsertNode("GCH1", attrs)

	attrs["supranode"] = model.StringValue("protein")

	node, _ := g.Node("GCH1")
	if node.Supranode() != "gene" {
		t.Error("graph node shares the caller's attribute map")
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.UpsertNode("TOR1A", gene("TOR1A"))
	g.UpsertNode("P_TOR1A", nil)

	created, err := g.AddEdge("TOR1A", "P_TOR1A", model.Attributes{"edge_name": model.StringValue("codes_for")})
	if err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if !created {
		t.Error("Expected a new edge")
	}

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	if edges[0].Source.Name != "TOR1A" || edges[0].Target.Name != "P_TOR1A" {
		t.Errorf("Expected edge TOR1A-P_TOR1A, got %s-%s", edges[0].Source.Name, edges[0].Target.Name)
	}
	if label, _ := edges[0].Label(); label.String() != "codes_for" {
		t.Errorf("Expected label codes_for, got %v", label)
	}

	if !g.Undirected().HasEdgeBetween(edges[0].Source.ID(), edges[0].Target.ID()) {
		t.Error("gonum graph is missing the edge")
	}
}

func TestAddEdgeDuplicatesCollapse(t *testing.T) {
	g := New()
	g.UpsertNode("A", nil)
	g.UpsertNode("B", nil)

	_, _ = g.AddEdge("A", "B", model.Attributes{"edge_name": model.StringValue("first")})
	created, err := g.AddEdge("B", "A", model.Attributes{"edge_name": model.StringValue("second")})
	if err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if created {
		t.Error("reversed duplicate should merge, not create")
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("Expected 1 edge, got %d", g.EdgeCount())
	}

	edge, ok := g.Edge("B", "A")
	if !ok {
		t.Fatal("Edge lookup failed in reverse orientation")
	}
	if edge.Source.Name != "A" {
		t.Errorf("orientation should follow the first row, got source %s", edge.Source.Name)
	}
	if label, _ := edge.Label(); label.String() != "second" {
		t.Errorf("label = %v, want second", label)
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	g := New()
	g.UpsertNode("A", nil)

	_, err := g.AddEdge("A", "Z", nil)
	if !errors.Is(err, model.ErrUnknownNode) {
		t.Fatalf("Expected ErrUnknownNode, got %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("Expected 0 edges, got %d", g.EdgeCount())
	}
}

func TestAddSelfLoop(t *testing.T) {
	g := New()
	g.UpsertNode("A", nil)

	if _, err := g.AddEdge("A", "A", nil); err != nil {
		t.Fatalf("AddEdge() self loop error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("Expected 1 edge, got %d", g.EdgeCount())
	}
	if g.Undirected().Edges().Len() != 0 {
		t.Error("self loop should not reach the gonum graph")
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	names := []string{"phenotype", "HP:0001332", "TOR1A", "DYT1"}
	for _, n := range names {
		g.UpsertNode(n, nil)
	}
	g.UpsertNode("HP:0001332", nil)

	nodes := g.Nodes()
	for i, n := range nodes {
		if n.Name != names[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, n.Name, names[i])
		}
	}
}

func TestStats(t *testing.T) {
	g := New()
	g.UpsertNode("TOR1A", gene("TOR1A"))
	g.UpsertNode("P1", model.Attributes{model.AttrSupranode: model.StringValue("protein")})
	g.UpsertNode("DYT1", model.Attributes{model.AttrSupranode: model.StringValue("disease")})
	g.UpsertNode("lonely", nil)
	_, _ = g.AddEdge("TOR1A", "P1", model.Attributes{"edge_name": model.StringValue("codes_for")})
	_, _ = g.AddEdge("TOR1A", "DYT1", model.Attributes{"edge_name": model.StringValue("causes")})
	_, _ = g.AddEdge("DYT1", "DYT1", nil)

	s := g.Stats()
	if s.Nodes != 4 || s.Edges != 3 {
		t.Errorf("Stats nodes/edges = %d/%d, want 4/3", s.Nodes, s.Edges)
	}
	if s.SelfLoops != 1 {
		t.Errorf("SelfLoops = %d, want 1", s.SelfLoops)
	}
	if s.Isolated != 1 {
		t.Errorf("Isolated = %d, want 1", s.Isolated)
	}
	if s.Components != 2 {
		t.Errorf("Components = %d, want 2", s.Components)
	}
	if s.BySupranode["gene"] != 1 || s.BySupranode["(none)"] != 1 {
		t.Errorf("BySupranode = %v", s.BySupranode)
	}
	if s.ByLabel["(none)"] != 1 || s.ByLabel["codes_for"] != 1 {
		t.Errorf("ByLabel = %v", s.ByLabel)
	}
}

func TestSortedCounts(t *testing.T) {
	got := SortedCounts(map[string]int{"b": 2, "a": 2, "c": 5})
	want := []string{"c", "a", "b"}
	for i, c := range got {
		if c.Key != want[i] {
			t.Errorf("SortedCounts()[%d] = %s, want %s", i, c.Key, want[i])
		}
	}
}

func TestEdgeOriented(t *testing.T) {
	g := New()
	g.UpsertNode("TOR1A", gene("TOR1A"))
	g.UpsertNode("O14656", nil)
	if _, err := g.AddEdge("O14656", "TOR1A", nil); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e, _ := g.Edge("TOR1A", "O14656")

	tests := []struct {
		orientation    Orientation
		source, target string
	}{
		{OrientFirstRow, "O14656", "TOR1A"},
		{OrientNodeOrder, "TOR1A", "O14656"},
		{"", "O14656", "TOR1A"},
	}
	for _, tt := range tests {
		source, target := e.Oriented(tt.orientation)
		if source.Name != tt.source || target.Name != tt.target {
			t.Errorf("Oriented(%q) = %s -> %s, want %s -> %s",
				tt.orientation, source.Name, target.Name, tt.source, tt.target)
		}
	}
}
