package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlBundle represents the intermediate structure for parsing YAML
// policy bundles. It matches the YAML structure before transformation to
// schema types.
type yamlBundle struct {
	PolicyID     string          `yaml:"policy_id"`
	Title        string          `yaml:"title"`
	Version      string          `yaml:"version"`
	Jurisdiction string          `yaml:"jurisdiction"`
	Description  string          `yaml:"description"`
	Criteria     []yamlCriterion `yaml:"criteria"`

	// Internal tracking
	node *yaml.Node // Original YAML node for line numbers
}

// yamlCriterion represents an intermediate criterion structure.
type yamlCriterion struct {
	ID               string         `yaml:"id"`
	Name             string         `yaml:"name"`
	Kind             string         `yaml:"kind"`
	Required         bool           `yaml:"required"`
	AlternativeGroup string         `yaml:"alternative_group"`
	Parameters       yamlParameters `yaml:"parameters"`
}

// yamlParameters represents intermediate kind-specific parameters.
type yamlParameters struct {
	Fact            string   `yaml:"fact"`
	WindowDays      int      `yaml:"window_days"`
	Comparator      string   `yaml:"comparator"`
	Threshold       float64  `yaml:"threshold"`
	Min             float64  `yaml:"min"`
	Max             float64  `yaml:"max"`
	CodePrefixes    []string `yaml:"code_prefixes"`
	ConfidenceFloor float64  `yaml:"confidence_floor"`
}

// parseYAMLFile reads and parses a YAML file into the intermediate structure.
func parseYAMLFile(path string) (*yamlBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data)
}

// parseYAMLBytes parses YAML bytes into the intermediate structure.
// It keeps the original node so criterion line numbers survive decoding.
func parseYAMLBytes(data []byte) (*yamlBundle, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var bundle yamlBundle
	if err := node.Decode(&bundle); err != nil {
		return nil, err
	}

	bundle.node = &node
	return &bundle, nil
}

// criterionNodes returns the YAML nodes of the criteria sequence entries,
// indexed to match yamlBundle.Criteria. Returns nil if the document does
// not have the expected shape.
func (b *yamlBundle) criterionNodes() []*yaml.Node {
	if b.node == nil || len(b.node.Content) == 0 {
		return nil
	}

	doc := b.node.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	// Mapping nodes alternate key, value.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "criteria" && doc.Content[i+1].Kind == yaml.SequenceNode {
			return doc.Content[i+1].Content
		}
	}

	return nil
}
