package finder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Suffixes that classify a CSV file during discovery.
var (
	NodeSuffixes = []string{"_nodes.csv", "_GO_CC.csv", "_GO_MF.csv", "_GO_BP.csv"}
	EdgeSuffixes = []string{"_edges.csv"}
)

// Tables is the set of input tables for one run.
type Tables struct {
	Nodes []string
	Edges []string
}

// ResolveFiles joins each name onto dir and checks that it exists. Absolute
// names are used as given.
func ResolveFiles(dir string, names []string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := name
		if !filepath.IsAbs(name) {
			path = filepath.Join(dir, name)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input table: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input table %s is a directory", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DiscoverTables lists the node and edge tables directly inside dir,
// sorted by name. Subdirectories are not searched.
func DiscoverTables(dir string) (Tables, error) {
	var tables Tables

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		switch {
		case hasAnySuffix(name, NodeSuffixes):
			tables.Nodes = append(tables.Nodes, path)
		case hasAnySuffix(name, EdgeSuffixes):
			tables.Edges = append(tables.Edges, path)
		}
		return nil
	})
	if err != nil {
		return Tables{}, fmt.Errorf("discovering tables in %s: %w", dir, err)
	}

	sort.Strings(tables.Nodes)
	sort.Strings(tables.Edges)
	return tables, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
