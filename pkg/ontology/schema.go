package ontology

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// ErrInvalidSchema indicates a schema table that cannot be emitted.
var ErrInvalidSchema = errors.New("invalid schema")

// PropertyKind selects the rdf:type triple emitted for a property.
type PropertyKind string

const (
	KindDatatype PropertyKind = "datatype"
	KindObject   PropertyKind = "object"
	KindRDF      PropertyKind = "rdf"
	KindUntyped  PropertyKind = "untyped"
)

// Property is one declared property with its domain and range.
type Property struct {
	Name   string       `yaml:"name"`
	Kind   PropertyKind `yaml:"kind"`
	Domain string       `yaml:"domain"`
	Range  string       `yaml:"range"`
}

// DataRule lists the attributes copied onto individuals of a supranode.
// With OmitMissing set, absent attributes produce no triple.
type DataRule struct {
	Supranode   string   `yaml:"supranode"`
	Attributes  []string `yaml:"attributes"`
	OmitMissing bool     `yaml:"omit_missing"`
}

// Schema is the declarative ontology table.
type Schema struct {
	Classes    []string   `yaml:"classes"`
	Properties []Property `yaml:"properties"`
	DataRules  []DataRule `yaml:"data_rules"`
}

// DefaultSchema returns the built-in table.
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded schema: %v", err))
	}
	return s
}

// LoadSchema reads a schema table from a YAML file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchema decodes a YAML schema table. Unknown fields are rejected.
func ParseSchema(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	for i, p := range s.Properties {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: property %d has no name", ErrInvalidSchema, i)
		}
		switch p.Kind {
		case KindDatatype, KindObject, KindRDF, KindUntyped:
		default:
			return nil, fmt.Errorf("%w: property %q: unknown kind %q", ErrInvalidSchema, p.Name, p.Kind)
		}
	}
	for i, r := range s.DataRules {
		if r.Supranode == "" {
			return nil, fmt.Errorf("%w: data rule %d has no supranode", ErrInvalidSchema, i)
		}
	}
	return &s, nil
}

// Validate reports declarations that are suspicious but emittable, such
// as domains naming undeclared classes or properties declared twice.
func (s *Schema) Validate() []string {
	classes := make(map[string]bool, len(s.Classes))
	for _, c := range s.Classes {
		classes[c] = true
	}

	var warnings []string
	seen := make(map[string]int)
	for _, p := range s.Properties {
		seen[p.Name]++
		if seen[p.Name] == 2 {
			warnings = append(warnings, fmt.Sprintf("property %q is declared more than once", p.Name))
		}
		if p.Domain != "" && !classes[p.Domain] {
			warnings = append(warnings, fmt.Sprintf("property %q: domain %q is not a declared class", p.Name, p.Domain))
		}
		if p.Kind != KindDatatype && p.Range != "" && !classes[p.Range] {
			warnings = append(warnings, fmt.Sprintf("property %q: range %q is not a declared class", p.Name, p.Range))
		}
	}
	for _, r := range s.DataRules {
		for _, attr := range r.Attributes {
			if seen[attr] == 0 {
				warnings = append(warnings, fmt.Sprintf("data rule %q: attribute %q is not a declared property", r.Supranode, attr))
			}
		}
	}
	return warnings
}

// Rule returns the data rule for a supranode.
func (s *Schema) Rule(supranode string) (DataRule, bool) {
	for _, r := range s.DataRules {
		if r.Supranode == supranode {
			return r, true
		}
	}
	return DataRule{}, false
}

// BuildSchema emits the class and property declarations into store and
// returns the number of new triples. Names resolve in base unless they
// carry a known prefix.
func BuildSchema(store *Store, s *Schema, base Namespace, prefixes Prefixes) int {
	added := 0
	add := func(t Triple) {
		if store.Add(t) {
			added++
		}
	}

	for _, c := range s.Classes {
		add(Triple{prefixes.Expand(c, base), RDFType, OWLClass})
	}

	for _, p := range s.Properties {
		prop := base.Term(p.Name)
		switch p.Kind {
		case KindDatatype:
			add(Triple{prop, RDFType, OWLDatatypeProp})
		case KindObject:
			add(Triple{prop, RDFType, OWLObjectProp})
		case KindRDF:
			add(Triple{prop, RDFType, RDFProperty})
		}
		if p.Domain != "" {
			add(Triple{prop, RDFSDomain, prefixes.Expand(p.Domain, base)})
		}
		if p.Range != "" {
			add(Triple{prop, RDFSRange, prefixes.Expand(p.Range, base)})
		}
	}
	return added
}
