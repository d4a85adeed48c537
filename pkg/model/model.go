package model

import (
	"errors"
	"fmt"
)

// Column and attribute names with fixed meaning in the source tables.
const (
	ColumnNodeName = "node_name"
	ColumnSource   = "source"
	ColumnTarget   = "target"
	ColumnEdgeName = "edge_name"

	AttrCategory  = "category"
	AttrSupranode = "supranode"
)

// Category values.
const (
	CategoryClass    = "class"
	CategoryInstance = "instance"
)

// Supranode values known to the default schema.
const (
	SupranodeGene        = "gene"
	SupranodeProtein     = "protein"
	SupranodeDisease     = "disease"
	SupranodePhenotype   = "phenotype"
	SupranodeInheritance = "inheritance"
	SupranodeCC          = "CC"
	SupranodeMF          = "MF"
	SupranodeBP          = "BP"
)

var (
	// ErrMissingColumn indicates a source table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnknownNode indicates an edge cites a node that was never loaded.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMalformedTable indicates a source table could not be parsed.
	ErrMalformedTable = errors.New("malformed table")
)

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Clone returns a shallow copy of a.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into a, overwriting existing keys.
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		a[k] = v
	}
}

// SkipRecord describes an edge row that was dropped because an endpoint
// was not among the loaded nodes.
type SkipRecord struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s SkipRecord) String() string {
	return fmt.Sprintf("%s:%d %s -> %s", s.File, s.Line, s.Source, s.Target)
}
