package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

const graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

// GraphML document structure, modelled after the layout networkx writes.
type graphMLDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr,omitempty"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// keyTable assigns GraphML key ids per (domain, attribute) in first-seen
// order and infers one attr.type per key.
type keyTable struct {
	keys  []graphMLKey
	index map[string]int
	kinds []map[model.Kind]bool
}

func newKeyTable() *keyTable {
	return &keyTable{index: make(map[string]int)}
}

func (kt *keyTable) observe(domain, name string, v model.Value) string {
	k := domain + "\x00" + name
	i, ok := kt.index[k]
	if !ok {
		i = len(kt.keys)
		kt.index[k] = i
		kt.keys = append(kt.keys, graphMLKey{ID: fmt.Sprintf("d%d", i), For: domain, AttrName: name})
		kt.kinds = append(kt.kinds, make(map[model.Kind]bool))
	}
	if !v.IsNull() {
		kt.kinds[i][v.Kind()] = true
	}
	return kt.keys[i].ID
}

func (kt *keyTable) finish() []graphMLKey {
	for i := range kt.keys {
		kt.keys[i].AttrType = attrType(kt.kinds[i])
	}
	return kt.keys
}

func attrType(kinds map[model.Kind]bool) string {
	switch {
	case len(kinds) == 1 && kinds[model.KindInt]:
		return "long"
	case len(kinds) == 1 && kinds[model.KindBool]:
		return "boolean"
	case len(kinds) > 0 && !kinds[model.KindString] && !kinds[model.KindBool]:
		return "double"
	}
	return "string"
}

func graphMLText(v model.Value) string {
	if v.IsNull() {
		return ""
	}
	if b, ok := v.Bool(); ok {
		return strconv.FormatBool(b)
	}
	return v.String()
}

func dataFor(kt *keyTable, domain string, attrs model.Attributes) []graphMLData {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([]graphMLData, 0, len(names))
	for _, name := range names {
		v := attrs[name]
		data = append(data, graphMLData{Key: kt.observe(domain, name, v), Value: graphMLText(v)})
	}
	return data
}

// WriteGraphML serializes g with every node and edge attribute. Null
// values are written as empty data elements.
func WriteGraphML(w io.Writer, g *graph.AttributedGraph) error {
	kt := newKeyTable()
	doc := graphMLDoc{
		Xmlns: graphMLNamespace,
		Graph: graphMLGraph{EdgeDefault: "undirected"},
	}

	for _, n := range g.Nodes() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphMLNode{ID: n.Name, Data: dataFor(kt, "node", n.Attrs)})
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			Source: e.Source.Name,
			Target: e.Target.Name,
			Data:   dataFor(kt, "edge", e.Attrs),
		})
	}
	doc.Keys = kt.finish()

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding graphml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadGraphML parses a document written by WriteGraphML. Values are typed
// by their key's attr.type; empty data elements read as null.
func ReadGraphML(r io.Reader) (*graph.AttributedGraph, error) {
	var doc graphMLDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse graphml: %w", err)
	}

	keys := make(map[string]graphMLKey, len(doc.Keys))
	for _, k := range doc.Keys {
		keys[k.ID] = k
	}
	decode := func(data []graphMLData) (model.Attributes, error) {
		attrs := make(model.Attributes, len(data))
		for _, d := range data {
			k, ok := keys[d.Key]
			if !ok {
				return nil, fmt.Errorf("graphml: undeclared key %q", d.Key)
			}
			v, err := parseGraphMLValue(d.Value, k.AttrType)
			if err != nil {
				return nil, fmt.Errorf("graphml: key %s (%s): %w", k.ID, k.AttrName, err)
			}
			attrs[k.AttrName] = v
		}
		return attrs, nil
	}

	g := graph.New()
	for _, n := range doc.Graph.Nodes {
		attrs, err := decode(n.Data)
		if err != nil {
			return nil, err
		}
		g.UpsertNode(n.ID, attrs)
	}
	for _, e := range doc.Graph.Edges {
		attrs, err := decode(e.Data)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddEdge(e.Source, e.Target, attrs); err != nil {
			return nil, fmt.Errorf("graphml: %w", err)
		}
	}
	return g, nil
}

func parseGraphMLValue(text, attrType string) (model.Value, error) {
	if text == "" {
		return model.NullValue(), nil
	}
	switch attrType {
	case "int", "long":
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(i), nil
	case "float", "double":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return model.Value{}, err
		}
		return model.FloatValue(f), nil
	case "boolean":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(b), nil
	}
	return model.StringValue(text), nil
}
