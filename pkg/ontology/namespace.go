package ontology

import (
	"fmt"
	"strings"
)

// Vocabulary namespaces.
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	OWL  = "http://www.w3.org/2002/07/owl#"
	XSD  = "http://www.w3.org/2001/XMLSchema#"

	DefaultBase             = "http://example.org/"
	DefaultObjectProperties = "http://example.org/object_properties#"
)

// Well known terms.
var (
	RDFType         = IRI(RDF + "type")
	RDFProperty     = IRI(RDF + "Property")
	RDFSDomain      = IRI(RDFS + "domain")
	RDFSRange       = IRI(RDFS + "range")
	OWLClass        = IRI(OWL + "Class")
	OWLObjectProp   = IRI(OWL + "ObjectProperty")
	OWLDatatypeProp = IRI(OWL + "DatatypeProperty")
	XSDString       = IRI(XSD + "string")
)

// Namespace is an IRI prefix that local names are appended to.
type Namespace string

// Term returns the IRI term for local, escaping it as needed.
func (ns Namespace) Term(local string) Term {
	return IRI(string(ns) + EscapeLocal(local))
}

// Prefixes are the bindings written to serialized ontologies.
type Prefixes map[string]string

// DefaultPrefixes returns the bindings for the vocabularies plus the two
// data namespaces.
func DefaultPrefixes(base, objprop string) Prefixes {
	return Prefixes{
		"rdf":     RDF,
		"rdfs":    RDFS,
		"owl":     OWL,
		"xsd":     XSD,
		"ex":      base,
		"objprop": objprop,
	}
}

// Expand resolves a prefixed name such as xsd:string. Names without a
// known prefix are placed in fallback.
func (p Prefixes) Expand(name string, fallback Namespace) Term {
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		if ns, known := p[prefix]; known {
			return Namespace(ns).Term(local)
		}
	}
	return fallback.Term(name)
}

// EscapeLocal percent-encodes every byte of s outside ASCII letters,
// digits and "_-.:". A leading '-' or '.' and a trailing '.' are encoded
// too so the result is also a valid prefixed-name local part.
func EscapeLocal(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		keep := isAlnum(c) || c == '_' || c == ':' ||
			((c == '-' || c == '.') && i > 0 && !(c == '.' && i == len(s)-1))
		if keep {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
