package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrInvalid indicates a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "dystonia-kg.toml"
	envPrefix   = "DYSTONIA_KG_"
)

// DefaultNodeFiles are the node tables of the dystonia data set, in load
// order.
var DefaultNodeFiles = []string{
	"dystonia_nodes.csv",
	"dystonia_proteins_nodes.csv",
	"dystonia_genes_nodes.csv",
	"dystonia_diseases_nodes.csv",
	"dystonia_phenotypes_nodes.csv",
	"dystonia_inheritance_nodes.csv",
	"dystonia_proteins_GO_CC.csv",
	"dystonia_proteins_GO_MF.csv",
	"dystonia_proteins_GO_BP.csv",
}

// DefaultEdgeFiles are the edge tables of the dystonia data set, in load
// order.
var DefaultEdgeFiles = []string{
	"dystonia_edges.csv",
	"dystonia_phenotypes_edges.csv",
	"dystonia_gene_to_protein_edges.csv",
	"dystonia_disease_caused_by_gene_edges.csv",
	"dystonia_diseases_is_a_disease_edges.csv",
	"dystonia_inheritance_edges.csv",
	"dystonia_protein_GO_edges.csv",
}

// Config holds all configuration for one run
type Config struct {
	DataDir      string   `koanf:"data-dir" validate:"required"`
	OutDir       string   `koanf:"out-dir" validate:"required"`
	NodeFiles    []string `koanf:"node-files" validate:"dive,required"`
	EdgeFiles    []string `koanf:"edge-files" validate:"dive,required"`
	Discover     bool     `koanf:"discover"`
	GraphFile    string   `koanf:"graph-file" validate:"required"`
	ImageFile    string   `koanf:"image-file"`
	OntologyFile string   `koanf:"ontology-file" validate:"required"`
	NTriplesFile string   `koanf:"ntriples-file"`
	DOTFile      string   `koanf:"dot-file"`
	MetricsFile  string   `koanf:"metrics-file"`
	ConfigFile   string   `koanf:"config"`
	Verbosity    string   `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn warning error"`
	VerboseCnt   int      `koanf:"verbose" validate:"gte=0"`
	LogJSON      bool     `koanf:"log-json"`

	Ontology OntologyConfig `koanf:"ontology"`
	Image    ImageConfig    `koanf:"image"`
}

// OntologyConfig controls the ontology projection.
type OntologyConfig struct {
	BaseIRI           string `koanf:"base-iri" validate:"required,uri"`
	ObjectPropertyIRI string `koanf:"object-property-iri" validate:"required,uri"`
	NullPolicy        string `koanf:"null-policy" validate:"oneof=emit omit"`
	MissingLiteral    string `koanf:"missing-literal"`
	NullLiteral       string `koanf:"null-literal"`
	EdgeOrientation   string `koanf:"edge-orientation" validate:"oneof=first-row node-order"`
	SchemaFile        string `koanf:"schema-file"`
}

// ImageConfig sizes the rendered visualization.
type ImageConfig struct {
	Width      int `koanf:"width" validate:"min=16,max=20000"`
	Height     int `koanf:"height" validate:"min=16,max=20000"`
	Iterations int `koanf:"iterations" validate:"gte=0"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"data-dir":      "data",
		"out-dir":       "out",
		"node-files":    DefaultNodeFiles,
		"edge-files":    DefaultEdgeFiles,
		"discover":      false,
		"graph-file":    "dystonia_graph.graphml",
		"image-file":    "low_resolution_dystonia_graph.png",
		"ontology-file": "dystonia.owl",
		"ntriples-file": "",
		"dot-file":      "",
		"metrics-file":  "",
		"config":        "",
		"verbosity":     "",
		"verbose":       0,
		"log-json":      false,
		"ontology": map[string]interface{}{
			"base-iri":            "http://example.org/",
			"object-property-iri": "http://example.org/object_properties#",
			"null-policy":         "emit",
			"missing-literal":     "None",
			"null-literal":        "nan",
			"edge-orientation":    "first-row",
			"schema-file":         "",
		},
		"image": map[string]interface{}{
			"width":      1500,
			"height":     1500,
			"iterations": 100,
		},
	}
}

// RegisterFlags adds one flag per configuration key to f.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("data-dir", "data", "Directory holding the input tables")
	f.String("out-dir", "out", "Directory the outputs are written to")
	f.StringSlice("node-files", DefaultNodeFiles, "Node tables, relative to --data-dir")
	f.StringSlice("edge-files", DefaultEdgeFiles, "Edge tables, relative to --data-dir")
	f.Bool("discover", false, "Find *_nodes.csv and *_edges.csv tables in --data-dir instead of using the file lists")
	f.String("graph-file", "dystonia_graph.graphml", "GraphML output")
	f.String("image-file", "low_resolution_dystonia_graph.png", "PNG output, empty to skip")
	f.String("ontology-file", "dystonia.owl", "Turtle ontology output")
	f.String("ntriples-file", "", "N-Triples ontology output, empty to skip")
	f.String("dot-file", "", "Graphviz output, empty to skip")
	f.String("metrics-file", "", "Prometheus textfile output, empty to skip")
	f.String("config", "", "Config file (toml or yaml), default "+DefaultFile+" when present")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.Bool("log-json", false, "Write logs as JSON")

	f.String("ontology.base-iri", "http://example.org/", "Namespace of classes, individuals and data properties")
	f.String("ontology.object-property-iri", "http://example.org/object_properties#", "Namespace of relation predicates")
	f.String("ontology.null-policy", "emit", "Absent or empty values: emit a placeholder or omit the triple")
	f.String("ontology.missing-literal", "None", "Placeholder for an absent attribute")
	f.String("ontology.null-literal", "nan", "Placeholder for an empty cell")
	f.String("ontology.edge-orientation", "first-row", "Relation direction: first-row keeps the row that created the edge, node-order starts at the node loaded first")
	f.String("ontology.schema-file", "", "YAML schema table replacing the built-in one")

	f.Int("image.width", 1500, "Image width in pixels")
	f.Int("image.height", 1500, "Image height in pixels")
	f.Int("image.iterations", 100, "Layout iterations")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file. An explicit path must exist; the default is optional.
	path, explicit := configPath(f)
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	// 3. Environment Variables
	// Prefix: DYSTONIA_KG_, "__" nests and "_" becomes "-"
	// (e.g., DYSTONIA_KG_ONTOLOGY__NULL_POLICY=omit)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.NodeFiles = splitList(cfg.NodeFiles)
	cfg.EdgeFiles = splitList(cfg.EdgeFiles)
	if path != "" {
		cfg.ConfigFile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the input file lists.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !c.Discover && len(c.NodeFiles) == 0 {
		return fmt.Errorf("%w: no node files and discovery disabled", ErrInvalid)
	}
	return nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f != nil {
		if fl := f.Lookup("config"); fl != nil && fl.Value.String() != "" {
			return fl.Value.String(), true
		}
	}
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p, true
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, false
	}
	return "", false
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	}
	return toml.Parser()
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	s = strings.ReplaceAll(s, "__", ".")
	return strings.ReplaceAll(s, "_", "-")
}

// splitList expands comma separated entries, as lists arrive from the
// environment as a single string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
