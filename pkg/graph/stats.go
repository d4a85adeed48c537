package graph

import (
	"sort"

	"github.com/ritzau/dystonia-kg/pkg/model"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats summarizes an assembled graph.
type Stats struct {
	Nodes       int
	Edges       int
	SelfLoops   int
	Isolated    int
	Components  int
	BySupranode map[string]int
	ByLabel     map[string]int
}

// Stats computes node and edge counts, grouping nodes by supranode and
// edges by label.
func (g *AttributedGraph) Stats() Stats {
	s := Stats{
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		BySupranode: make(map[string]int),
		ByLabel:     make(map[string]int),
	}

	degree := make(map[int64]int, len(g.order))
	for _, e := range g.eorder {
		degree[e.Source.id]++
		degree[e.Target.id]++
		if e.Source.id == e.Target.id {
			s.SelfLoops++
		}
		label := "(none)"
		if v, ok := e.Label(); ok && !v.IsNull() {
			label = v.String()
		}
		s.ByLabel[label]++
	}

	for _, n := range g.order {
		sup := n.Supranode()
		if sup == "" {
			sup = "(none)"
		}
		s.BySupranode[sup]++
		if degree[n.id] == 0 {
			s.Isolated++
		}
	}

	s.Components = len(topo.ConnectedComponents(g.graph))
	return s
}

func sortedKeys(attrs model.Attributes) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count is one entry of a grouped tally.
type Count struct {
	Key   string
	Count int
}

// SortedCounts returns the entries of m ordered by descending count, then key.
func SortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, c := range m {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
