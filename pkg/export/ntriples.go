package export

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/ritzau/dystonia-kg/pkg/ontology"
)

// WriteNTriples writes one statement per line in insertion order.
func WriteNTriples(w io.Writer, store *ontology.Store) error {
	for _, t := range store.Triples() {
		if _, err := fmt.Fprintln(w, t.Statement()); err != nil {
			return err
		}
	}
	return nil
}

// ReadNTriples parses an N-Triples document into a new store.
func ReadNTriples(r io.Reader) (*ontology.Store, error) {
	store := ontology.NewStore()
	dec := rdf.NewDecoder(r)
	for {
		st, err := dec.Unmarshal()
		if errors.Is(err, io.EOF) {
			return store, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding n-triples: %w", err)
		}
		t, err := ontology.TripleFromStatement(st)
		if err != nil {
			return nil, err
		}
		store.Add(t)
	}
}
