package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/model"
	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

func sampleGraph(t *testing.T) *graph.AttributedGraph {
	t.Helper()
	g := graph.New()
	g.UpsertNode("TOR1A", model.Attributes{
		"category":  model.StringValue("instance"),
		"supranode": model.StringValue("gene"),
		"gene_MIM":  model.FloatValue(605204),
		"rank":      model.IntValue(1),
		"curated":   model.BoolValue(true),
	})
	g.UpsertNode("Torsin-1A", model.Attributes{
		"category":  model.StringValue("instance"),
		"supranode": model.StringValue("protein"),
		"gene_MIM":  model.NullValue(),
		"rank":      model.IntValue(2),
		"curated":   model.BoolValue(false),
	})
	g.UpsertNode("dystonia 1", model.Attributes{
		"category":  model.StringValue("instance"),
		"supranode": model.StringValue("disease"),
	})
	if _, err := g.AddEdge("TOR1A", "Torsin-1A", model.Attributes{"edge_name": model.StringValue("codes_for")}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge("dystonia 1", "TOR1A", model.Attributes{"edge_name": model.NullValue()}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGraphMLRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	if err := WriteGraphML(&buf, g); err != nil {
		t.Fatalf("WriteGraphML: %v", err)
	}
	back, err := ReadGraphML(&buf)
	if err != nil {
		t.Fatalf("ReadGraphML: %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("read %d nodes and %d edges, want %d and %d",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for i, n := range g.Nodes() {
		got := back.Nodes()[i]
		if got.Name != n.Name || len(got.Attrs) != len(n.Attrs) {
			t.Errorf("node %d = %s with %d attrs, want %s with %d", i, got.Name, len(got.Attrs), n.Name, len(n.Attrs))
			continue
		}
		for k, v := range n.Attrs {
			if !v.Equal(got.Attrs[k]) {
				t.Errorf("%s.%s = %v, want %v", n.Name, k, got.Attrs[k], v)
			}
		}
	}
	for i, e := range g.Edges() {
		got := back.Edges()[i]
		if got.Source.Name != e.Source.Name || got.Target.Name != e.Target.Name {
			t.Errorf("edge %d = %s -> %s, want %s -> %s", i, got.Source.Name, got.Target.Name, e.Source.Name, e.Target.Name)
		}
		want, _ := e.Label()
		if label, ok := got.Label(); !ok || !want.Equal(label) {
			t.Errorf("edge %d label = %v (present %v), want %v", i, label, ok, want)
		}
	}
}

func TestGraphMLKeyTypes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraphML(&buf, sampleGraph(t)); err != nil {
		t.Fatalf("WriteGraphML: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") {
		t.Errorf("missing XML header: %.40q", out)
	}
	for _, want := range []string{
		`edgedefault="undirected"`,
		`attr.name="rank" attr.type="long"`,
		`attr.name="gene_MIM" attr.type="double"`,
		`attr.name="curated" attr.type="boolean"`,
		`for="edge" attr.name="edge_name" attr.type="string"`,
		">605204.0</data>",
		">true</data>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GraphML output missing %s", want)
		}
	}
}

func TestReadGraphMLErrors(t *testing.T) {
	tests := map[string]string{
		"not xml":        "nope",
		"undeclared key": `<graphml><graph><node id="a"><data key="d9">x</data></node></graph></graphml>`,
		"bad long":       `<graphml><key id="d0" for="node" attr.name="n" attr.type="long"/><graph><node id="a"><data key="d0">x</data></node></graph></graphml>`,
		"unknown node":   `<graphml><graph><node id="a"/><edge source="a" target="b"/></graph></graphml>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadGraphML(strings.NewReader(doc)); err == nil {
				t.Error("ReadGraphML() expected an error")
			}
		})
	}
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDOT(&buf, sampleGraph(t), "dystonia"); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"graph dystonia {", "TOR1A", `"dystonia 1"`, "--"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %s:\n%s", want, out)
		}
	}
}

func TestColorFor(t *testing.T) {
	if ColorFor("gene").R != 0xff || ColorFor("protein").B != 0xff {
		t.Errorf("gene = %v, protein = %v", ColorFor("gene"), ColorFor("protein"))
	}
	pairs := [][2]string{
		{"gene", model.SupranodeGene},
		{"phenotype", "inheritance"},
		{"CC", "MF"},
	}
	for _, p := range pairs {
		if ColorFor(p[0]) != ColorFor(p[1]) {
			t.Errorf("ColorFor(%q) = %v, ColorFor(%q) = %v, want equal", p[0], ColorFor(p[0]), p[1], ColorFor(p[1]))
		}
	}
	for _, s := range []string{"unknown", ""} {
		if ColorFor(s) != colorGray {
			t.Errorf("ColorFor(%q) = %v, want gray", s, ColorFor(s))
		}
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	opts := ImageOptions{Width: 120, Height: 80, Iterations: 10}
	if err := RenderPNG(&buf, sampleGraph(t), opts); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("image is %dx%d, want 120x80", b.Dx(), b.Dy())
	}

	buf.Reset()
	if err := RenderPNG(&buf, graph.New(), opts); err != nil {
		t.Errorf("empty graph should render a blank canvas: %v", err)
	}
}

func sampleStore() *ontology.Store {
	s := ontology.NewStore()
	ontology.BuildSchema(s, ontology.DefaultSchema(), ontology.DefaultBase,
		ontology.DefaultPrefixes(ontology.DefaultBase, ontology.DefaultObjectProperties))
	ex := ontology.Namespace(ontology.DefaultBase)
	s.Add(ontology.Triple{Subject: ex.Term("dystonia 1"), Predicate: ontology.RDFType, Object: ex.Term("disease")})
	s.Add(ontology.Triple{Subject: ex.Term("TOR1A"), Predicate: ex.Term("gene_MIM"), Object: ontology.Literal("605204.0")})
	s.Add(ontology.Triple{
		Subject:   ex.Term("TOR1A"),
		Predicate: ontology.Namespace(ontology.DefaultObjectProperties).Term("codes_for"),
		Object:    ex.Term("Torsin-1A"),
	})
	s.Add(ontology.Triple{Subject: ex.Term("Torsin-1A"), Predicate: ex.Term("protein_name"), Object: ontology.Literal(`Torsin "1A" é`)})
	s.Add(ontology.Triple{Subject: ex.Term("dystonia 1"), Predicate: ex.Term("disease_name"), Object: ontology.LangLiteral("torsion dystonia", "en")})
	return s
}

func checkSameTriples(t *testing.T, want, got *ontology.Store) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Errorf("read %d triples, want %d", got.Len(), want.Len())
	}
	for _, tr := range want.Triples() {
		if !got.Has(tr) {
			t.Errorf("missing %s", tr)
		}
	}
}

func TestTurtleRoundTrip(t *testing.T) {
	store := sampleStore()
	prefixes := ontology.DefaultPrefixes(ontology.DefaultBase, ontology.DefaultObjectProperties)

	var buf bytes.Buffer
	if err := WriteTurtle(&buf, store, prefixes); err != nil {
		t.Fatalf("WriteTurtle: %v", err)
	}
	if want := "@prefix objprop: <http://example.org/object_properties#> ."; !strings.Contains(buf.String(), want) {
		t.Errorf("Turtle output missing %q", want)
	}

	back, err := ReadTurtle(&buf)
	if err != nil {
		t.Fatalf("ReadTurtle: %v", err)
	}
	checkSameTriples(t, store, back)
}

func TestNTriplesRoundTrip(t *testing.T) {
	store := sampleStore()

	var buf bytes.Buffer
	if err := WriteNTriples(&buf, store); err != nil {
		t.Fatalf("WriteNTriples: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != store.Len() {
		t.Errorf("wrote %d lines, want %d", n, store.Len())
	}

	back, err := ReadNTriples(&buf)
	if err != nil {
		t.Fatalf("ReadNTriples: %v", err)
	}
	checkSameTriples(t, store, back)
}

func TestReadNTriplesEscapes(t *testing.T) {
	doc := `<http://example.org/P> <http://example.org/protein_name> "caf\u00e9"^^<http://www.w3.org/2001/XMLSchema#string> .
<http://example.org/P> <http://example.org/note> "tab\there \U0001F9EC \'q\'" .
<http://example.org/P> <http://example.org/label> "Dystonie"@de .
`
	store, err := ReadNTriples(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadNTriples: %v", err)
	}

	p := ontology.IRI("http://example.org/P")
	tests := []struct {
		predicate string
		want      ontology.Term
	}{
		{"protein_name", ontology.Literal("café")},
		{"note", ontology.Literal("tab\there \U0001F9EC 'q'")},
		{"label", ontology.LangLiteral("Dystonie", "de")},
	}
	for _, tt := range tests {
		got := store.Objects(p, ontology.IRI("http://example.org/"+tt.predicate))
		if !slices.Equal(got, []ontology.Term{tt.want}) {
			t.Errorf("%s = %#v, want %#v", tt.predicate, got, tt.want)
		}
	}
}

func TestExporterWritesTargets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	e := New(dir, ImageOptions{Width: 64, Height: 64, Iterations: 5})
	ctx := context.Background()

	written, err := e.ExportGraph(ctx, sampleGraph(t), GraphTargets{GraphML: "g.graphml", Image: "g.png"})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if want := []string{filepath.Join(dir, "g.graphml"), filepath.Join(dir, "g.png")}; !slices.Equal(written, want) {
		t.Errorf("ExportGraph wrote %v, want %v", written, want)
	}

	written, err = e.ExportOntology(ctx, sampleStore(), nil, OntologyTargets{NTriples: "o.nt"})
	if err != nil {
		t.Fatalf("ExportOntology: %v", err)
	}
	if len(written) != 1 {
		t.Errorf("ExportOntology wrote %v, want one file", written)
	}

	for _, name := range []string{"g.graphml", "g.png", "o.nt"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("stat %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "dystonia.owl")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("turtle target was empty and should not be written, stat err = %v", err)
	}
}

func TestExporterReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(blocker, DefaultImageOptions())
	if _, err := e.ExportOntology(context.Background(), sampleStore(), nil, OntologyTargets{Turtle: "o.ttl"}); err == nil {
		t.Error("ExportOntology into a file path should fail")
	}
}
