package ontology

import (
	"gonum.org/v1/gonum/graph/formats/rdf"
)

// Store is a set of triples. Triples iterate in insertion order and are
// mirrored into a gonum RDF graph for querying.
type Store struct {
	graph   *rdf.Graph
	triples []Triple
	seen    map[Triple]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		graph: rdf.NewGraph(),
		seen:  make(map[Triple]bool),
	}
}

// Add inserts t, reporting whether it was new.
func (s *Store) Add(t Triple) bool {
	if s.seen[t] {
		return false
	}
	s.seen[t] = true
	s.triples = append(s.triples, t)
	s.graph.AddStatement(t.Statement())
	return true
}

// Has reports whether t is in the store.
func (s *Store) Has(t Triple) bool { return s.seen[t] }

// Len returns the number of distinct triples.
func (s *Store) Len() int { return len(s.triples) }

// Triples returns a copy of the triples in insertion order.
func (s *Store) Triples() []Triple {
	out := make([]Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Objects returns every object o such that (subject, predicate, o) is in
// the store.
func (s *Store) Objects(subject, predicate Term) []Term {
	from, ok := s.graph.TermFor(subject.NTriples())
	if !ok {
		return nil
	}
	want := predicate.NTriples()
	var out []Term
	for _, o := range s.graph.Query(from).Out(func(st *rdf.Statement) bool {
		return st.Predicate.Value == want
	}).Result() {
		term, err := termFromRDF(o)
		if err == nil {
			out = append(out, term)
		}
	}
	return out
}

// Subjects returns every subject typed as class.
func (s *Store) Subjects(class Term) []Term {
	var out []Term
	for _, t := range s.triples {
		if t.Predicate == RDFType && t.Object == class {
			out = append(out, t.Subject)
		}
	}
	return out
}

// Statement converts t to a gonum RDF statement with unassigned ids.
func (t Triple) Statement() *rdf.Statement {
	return &rdf.Statement{
		Subject:   rdf.Term{Value: t.Subject.NTriples()},
		Predicate: rdf.Term{Value: t.Predicate.NTriples()},
		Object:    rdf.Term{Value: t.Object.NTriples()},
	}
}

// TripleFromStatement converts a decoded statement. Graph labels are
// ignored.
func TripleFromStatement(st *rdf.Statement) (Triple, error) {
	var t Triple
	var err error
	if t.Subject, err = termFromRDF(st.Subject); err != nil {
		return Triple{}, err
	}
	if t.Predicate, err = termFromRDF(st.Predicate); err != nil {
		return Triple{}, err
	}
	if t.Object, err = termFromRDF(st.Object); err != nil {
		return Triple{}, err
	}
	return t, nil
}
