package structure

import (
	"fmt"

	"bayesview/domain/core"

	"gopkg.in/yaml.v3"
)

// File is the YAML structure document
type File struct {
	Edges []yaml.Node `yaml:"edges"`
}

func parseYAML(data []byte) ([][]string, error) {
	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, core.NewMalformedStructureError(fmt.Sprintf("invalid YAML: %v", err))
	}

	edges := make([][]string, 0, len(doc.Edges))
	for i, node := range doc.Edges {
		if node.Kind != yaml.SequenceNode {
			return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d (line %d) is not a sequence", i, node.Line))
		}
		names := make([]string, 0, len(node.Content))
		for _, member := range node.Content {
			// only plain or quoted strings; numbers and booleans are rejected
			if member.Kind != yaml.ScalarNode || member.ShortTag() != "!!str" {
				return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d (line %d) has a non-string member", i, member.Line))
			}
			names = append(names, member.Value)
		}
		edges = append(edges, names)
	}
	return edges, nil
}
