package ontology

import (
	"context"
	"log/slog"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

// NullPolicy controls triples for absent or null values.
type NullPolicy string

const (
	// NullEmit writes a placeholder literal.
	NullEmit NullPolicy = "emit"
	// NullOmit writes nothing.
	NullOmit NullPolicy = "omit"
)

// Options configures a Projector.
type Options struct {
	Base             Namespace
	ObjectProperties Namespace
	NullPolicy       NullPolicy
	MissingLiteral   string // text used for an absent attribute
	NullLiteral      string // text used for an empty cell
	Orientation      graph.Orientation
}

// DefaultOptions returns the namespaces and placeholders of the reference
// ontology.
func DefaultOptions() Options {
	return Options{
		Base:             DefaultBase,
		ObjectProperties: DefaultObjectProperties,
		NullPolicy:       NullEmit,
		MissingLiteral:   "None",
		NullLiteral:      "nan",
		Orientation:      graph.OrientFirstRow,
	}
}

// Counts reports what one projection wrote.
type Counts struct {
	Individuals    int
	DataProperties int
	Relations      int
	Omitted        int // placeholders suppressed by NullOmit or a rule
	Untyped        int // instances without a supranode
}

// Projector maps an assembled graph onto ontology triples.
type Projector struct {
	schema *Schema
	opts   Options
	logger *slog.Logger
}

// NewProjector creates a projector using the data rules of schema.
func NewProjector(schema *Schema, opts Options) *Projector {
	return &Projector{schema: schema, opts: opts, logger: logging.New("ontology")}
}

// Project writes individuals, data property values and relations for g
// into store.
func (p *Projector) Project(ctx context.Context, g *graph.AttributedGraph, store *Store) Counts {
	var c Counts
	p.individuals(ctx, g, store, &c)
	p.dataProperties(g, store, &c)
	p.relations(g, store, &c)

	p.logger.InfoContext(ctx, "Projected graph",
		append(logging.Attrs(ctx),
			"individuals", c.Individuals, "dataProperties", c.DataProperties,
			"relations", c.Relations, "omitted", c.Omitted)...)
	return c
}

func (p *Projector) individuals(ctx context.Context, g *graph.AttributedGraph, store *Store, c *Counts) {
	for _, n := range g.Nodes() {
		if !n.IsInstance() {
			continue
		}
		supranode := n.Supranode()
		if supranode == "" {
			c.Untyped++
			p.logger.WarnContext(ctx, "Skipping instance without supranode",
				append(logging.Attrs(ctx), "node", n.Name)...)
			continue
		}
		if store.Add(Triple{p.opts.Base.Term(n.Name), RDFType, p.opts.Base.Term(supranode)}) {
			c.Individuals++
		}
	}
}

func (p *Projector) dataProperties(g *graph.AttributedGraph, store *Store, c *Counts) {
	for _, n := range g.Nodes() {
		rule, ok := p.schema.Rule(n.Supranode())
		if !ok {
			continue
		}
		subject := p.opts.Base.Term(n.Name)
		for _, attr := range rule.Attributes {
			v, present := n.Attr(attr)
			if !present && rule.OmitMissing {
				c.Omitted++
				continue
			}
			text, ok := p.literal(v, present)
			if !ok {
				c.Omitted++
				continue
			}
			if store.Add(Triple{subject, p.opts.Base.Term(attr), Literal(text)}) {
				c.DataProperties++
			}
		}
	}
}

func (p *Projector) relations(g *graph.AttributedGraph, store *Store, c *Counts) {
	for _, e := range g.Edges() {
		label, present := e.Label()
		name, ok := p.literal(label, present)
		if !ok {
			c.Omitted++
			continue
		}
		source, target := e.Oriented(p.opts.Orientation)
		t := Triple{
			Subject:   p.opts.Base.Term(source.Name),
			Predicate: p.opts.ObjectProperties.Term(name),
			Object:    p.opts.Base.Term(target.Name),
		}
		if store.Add(t) {
			c.Relations++
		}
	}
}

// literal renders a value, substituting placeholders for absent and null
// values. ok is false when the placeholder is suppressed.
func (p *Projector) literal(v model.Value, present bool) (string, bool) {
	switch {
	case !present:
		return p.opts.MissingLiteral, p.opts.NullPolicy != NullOmit
	case v.IsNull():
		return p.opts.NullLiteral, p.opts.NullPolicy != NullOmit
	}
	return v.String(), true
}

