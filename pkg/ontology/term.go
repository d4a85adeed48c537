package ontology

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

// ErrBadTerm indicates a serialized term could not be parsed.
var ErrBadTerm = errors.New("malformed term")

// RDFLangString is the datatype of language-tagged literals.
const RDFLangString = RDF + "langString"

// TermKind distinguishes IRIs from literals.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindLiteral
)

// Term is an RDF term. Literals carry a datatype IRI; language-tagged
// literals have datatype rdf:langString and a Lang.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(iri string) Term { return Term{Kind: KindIRI, Value: iri} }

// Literal returns an xsd:string literal.
func Literal(text string) Term {
	return Term{Kind: KindLiteral, Value: text, Datatype: XSD + "string"}
}

// LangLiteral returns a literal tagged with language lang.
func LangLiteral(text, lang string) Term {
	return Term{Kind: KindLiteral, Value: text, Datatype: RDFLangString, Lang: lang}
}

// RDF converts t to an escaped gonum RDF term. IRIs must be absolute.
func (t Term) RDF() (rdf.Term, error) {
	if t.Kind == KindIRI {
		return rdf.NewIRITerm(t.Value)
	}
	if t.Lang != "" {
		return rdf.NewLiteralTerm(t.Value, "@"+t.Lang)
	}
	return rdf.NewLiteralTerm(t.Value, t.Datatype)
}

// NTriples renders t in N-Triples syntax. A term rdf.NewIRITerm rejects is
// written with its value bracketed as is.
func (t Term) NTriples() string {
	term, err := t.RDF()
	if err != nil {
		return "<" + t.Value + ">"
	}
	return term.Value
}

func (t Term) String() string { return t.NTriples() }

// Triple is one subject-predicate-object statement.
type Triple struct {
	Subject, Predicate, Object Term
}

func (t Triple) String() string {
	return t.Subject.NTriples() + " " + t.Predicate.NTriples() + " " + t.Object.NTriples() + " ."
}

// ParseTerm reads a term in N-Triples syntax. Untyped literals are read as
// xsd:string. Blank nodes are not supported.
func ParseTerm(s string) (Term, error) {
	return termFromRDF(rdf.Term{Value: s})
}

func termFromRDF(term rdf.Term) (Term, error) {
	text, qual, kind, err := term.Parts()
	if err != nil {
		return Term{}, fmt.Errorf("%w: %s: %v", ErrBadTerm, term.Value, err)
	}
	switch kind {
	case rdf.IRI:
		return IRI(text), nil
	case rdf.Literal:
		switch {
		case qual == "":
			return Literal(text), nil
		case qual[0] == '@':
			return LangLiteral(text, qual[1:]), nil
		}
		return Term{Kind: KindLiteral, Value: text, Datatype: qual}, nil
	}
	return Term{}, fmt.Errorf("%w: unsupported %s term %s", ErrBadTerm, kind, term.Value)
}
