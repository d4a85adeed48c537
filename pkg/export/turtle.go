package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/knakk/rdf"

	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

// WriteTurtle serializes the store as Turtle. Prefix declarations for
// prefixes are written first; terms themselves are written as full IRIs.
func WriteTurtle(w io.Writer, store *ontology.Store, prefixes ontology.Prefixes) error {
	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", name, prefixes[name]); err != nil {
			return err
		}
	}
	if len(names) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	for _, t := range store.Triples() {
		triple, err := toKnakk(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(triple); err != nil {
			return fmt.Errorf("encoding turtle: %w", err)
		}
	}
	return enc.Close()
}

// ReadTurtle parses a Turtle document into a new store.
func ReadTurtle(r io.Reader) (*ontology.Store, error) {
	triples, err := rdf.NewTripleDecoder(r, rdf.Turtle).DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("decoding turtle: %w", err)
	}

	store := ontology.NewStore()
	for _, t := range triples {
		triple, err := fromKnakk(t)
		if err != nil {
			return nil, err
		}
		store.Add(triple)
	}
	return store, nil
}

func toKnakk(t ontology.Triple) (rdf.Triple, error) {
	subj, err := rdf.NewIRI(t.Subject.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("subject %s: %w", t.Subject, err)
	}
	pred, err := rdf.NewIRI(t.Predicate.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate %s: %w", t.Predicate, err)
	}

	var obj rdf.Object
	switch {
	case t.Object.Kind == ontology.KindIRI:
		iri, err := rdf.NewIRI(t.Object.Value)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("object %s: %w", t.Object, err)
		}
		obj = iri
	case t.Object.Lang != "":
		lit, err := rdf.NewLangLiteral(t.Object.Value, t.Object.Lang)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("object %s: %w", t.Object, err)
		}
		obj = lit
	default:
		dt, err := rdf.NewIRI(t.Object.Datatype)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("datatype %s: %w", t.Object.Datatype, err)
		}
		obj = rdf.NewTypedLiteral(t.Object.Value, dt)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func fromKnakk(t rdf.Triple) (ontology.Triple, error) {
	subj, err := termFromKnakk(t.Subj)
	if err != nil {
		return ontology.Triple{}, err
	}
	pred, err := termFromKnakk(t.Pred)
	if err != nil {
		return ontology.Triple{}, err
	}
	obj, err := termFromKnakk(t.Obj)
	if err != nil {
		return ontology.Triple{}, err
	}
	return ontology.Triple{Subject: subj, Predicate: pred, Object: obj}, nil
}

func termFromKnakk(term rdf.Term) (ontology.Term, error) {
	switch v := term.(type) {
	case rdf.IRI:
		return ontology.IRI(v.String()), nil
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return ontology.LangLiteral(v.String(), lang), nil
		}
		lit := ontology.Literal(v.String())
		if dt := v.DataType.String(); dt != "" {
			lit.Datatype = dt
		}
		return lit, nil
	}
	return ontology.Term{}, fmt.Errorf("%w: unsupported term %s", ontology.ErrBadTerm, term)
}
