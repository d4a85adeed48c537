package graph

import (
	"fmt"

	"github.com/ritzau/dystonia-kg/pkg/model"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
)

// Node is a named vertex carrying the attributes copied from the node tables.
type Node struct {
	Name  string
	Attrs model.Attributes
	id    int64
}

// ID implements gonum's graph.Node.
func (n *Node) ID() int64 { return n.id }

// DOTID implements dot.Node so exported DOT uses node names.
func (n *Node) DOTID() string { return n.Name }

// Attributes implements encoding.Attributer for DOT export.
func (n *Node) Attributes() []encoding.Attribute {
	return toEncoding(n.Attrs)
}

// Attr returns the named attribute.
func (n *Node) Attr(key string) (model.Value, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// Category returns the category tag, or "" when absent or not a string.
func (n *Node) Category() string { return n.text(model.AttrCategory) }

// Supranode returns the supranode tag, or "" when absent or not a string.
func (n *Node) Supranode() string { return n.text(model.AttrSupranode) }

// IsInstance reports whether the node stands for an individual.
func (n *Node) IsInstance() bool { return n.Category() == model.CategoryInstance }

func (n *Node) text(key string) string {
	v, ok := n.Attrs[key]
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

// Edge joins two nodes. Source and Target keep the orientation of the row
// that first introduced the edge; the graph itself is undirected.
type Edge struct {
	Source *Node
	Target *Node
	Attrs  model.Attributes
}

// From implements gonum's graph.Edge.
func (e *Edge) From() gonum.Node { return e.Source }

// To implements gonum's graph.Edge.
func (e *Edge) To() gonum.Node { return e.Target }

// ReversedEdge implements gonum's graph.Edge.
func (e *Edge) ReversedEdge() gonum.Edge {
	return &Edge{Source: e.Target, Target: e.Source, Attrs: e.Attrs}
}

// Orientation selects which endpoint of an undirected edge is written as
// the source.
type Orientation string

const (
	// OrientFirstRow keeps the orientation of the row that created the edge.
	OrientFirstRow Orientation = "first-row"
	// OrientNodeOrder puts the endpoint that was loaded first at the source.
	OrientNodeOrder Orientation = "node-order"
)

// Oriented returns the endpoints of e under o.
func (e *Edge) Oriented(o Orientation) (source, target *Node) {
	if o == OrientNodeOrder && e.Target.id < e.Source.id {
		return e.Target, e.Source
	}
	return e.Source, e.Target
}

// Attributes implements encoding.Attributer for DOT export.
func (e *Edge) Attributes() []encoding.Attribute {
	return toEncoding(e.Attrs)
}

// Label returns the edge_name attribute. ok is false when the source table
// had no edge_name column.
func (e *Edge) Label() (model.Value, bool) {
	v, ok := e.Attrs[model.ColumnEdgeName]
	return v, ok
}

// AttributedGraph is a simple undirected graph keyed by node name.
// Nodes and edges iterate in insertion order.
type AttributedGraph struct {
	graph  *simple.UndirectedGraph
	nodes  map[string]*Node
	order  []*Node
	edges  map[pairKey]*Edge
	eorder []*Edge
	nextID int64
}

type pairKey struct{ lo, hi int64 }

func keyFor(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// New creates an empty graph.
func New() *AttributedGraph {
	return &AttributedGraph{
		graph: simple.NewUndirectedGraph(),
		nodes: make(map[string]*Node),
		edges: make(map[pairKey]*Edge),
	}
}

// UpsertNode adds the named node or merges attrs into the existing one,
// last write winning per key. It reports whether the node was created.
func (g *AttributedGraph) UpsertNode(name string, attrs model.Attributes) bool {
	if node, exists := g.nodes[name]; exists {
		node.Attrs.Merge(attrs)
		return false
	}

	node := &Node{Name: name, Attrs: attrs.Clone(), id: g.nextID}
	g.nextID++
	g.nodes[name] = node
	g.order = append(g.order, node)
	g.graph.AddNode(node)
	return true
}

// HasNode reports whether name has been loaded.
func (g *AttributedGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns the named node.
func (g *AttributedGraph) Node(name string) (*Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// AddEdge joins source and target. Both must already exist. A repeated
// pair, in either orientation, merges attrs into the existing edge. It
// reports whether a new edge was created.
func (g *AttributedGraph) AddEdge(source, target string, attrs model.Attributes) (bool, error) {
	from, ok := g.nodes[source]
	if !ok {
		return false, fmt.Errorf("edge %s -> %s: source: %w", source, target, model.ErrUnknownNode)
	}
	to, ok := g.nodes[target]
	if !ok {
		return false, fmt.Errorf("edge %s -> %s: target: %w", source, target, model.ErrUnknownNode)
	}

	key := keyFor(from.id, to.id)
	if edge, exists := g.edges[key]; exists {
		edge.Attrs.Merge(attrs)
		return false, nil
	}

	edge := &Edge{Source: from, Target: to, Attrs: attrs.Clone()}
	g.edges[key] = edge
	g.eorder = append(g.eorder, edge)

	// gonum's simple graphs reject self edges; loops are tracked here only.
	if from.id != to.id {
		g.graph.SetEdge(edge)
	}
	return true, nil
}

// Edge returns the edge between a and b in either orientation.
func (g *AttributedGraph) Edge(a, b string) (*Edge, bool) {
	from, ok := g.nodes[a]
	if !ok {
		return nil, false
	}
	to, ok := g.nodes[b]
	if !ok {
		return nil, false
	}
	edge, ok := g.edges[keyFor(from.id, to.id)]
	return edge, ok
}

// Nodes returns all nodes in insertion order.
func (g *AttributedGraph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in insertion order.
func (g *AttributedGraph) Edges() []*Edge {
	out := make([]*Edge, len(g.eorder))
	copy(out, g.eorder)
	return out
}

// NodeCount returns the number of nodes.
func (g *AttributedGraph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges, self loops included.
func (g *AttributedGraph) EdgeCount() int { return len(g.eorder) }

// Undirected returns the underlying gonum graph. Self loops are not part of it.
func (g *AttributedGraph) Undirected() *simple.UndirectedGraph {
	return g.graph
}

func toEncoding(attrs model.Attributes) []encoding.Attribute {
	keys := sortedKeys(attrs)
	out := make([]encoding.Attribute, 0, len(keys))
	for _, k := range keys {
		v := attrs[k]
		if v.IsNull() {
			continue
		}
		out = append(out, encoding.Attribute{Key: k, Value: v.String()})
	}
	return out
}
