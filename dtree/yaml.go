package dtree

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML device tree with the same shape as the JSON form:
//
//	ce-armv7-timer@0:
//	  clock-frequency: 24000000
//	  interrupt: 30
//
// Nodes are returned in document order.
func LoadYAML(data []byte) ([]Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotObject
	}

	var nodes []Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		body := root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("node %s: %w", name, ErrNotObject)
		}

		props := make(map[string]Value, len(body.Content)/2)
		for j := 0; j+1 < len(body.Content); j += 2 {
			var v any
			if err := body.Content[j+1].Decode(&v); err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
			props[body.Content[j].Value] = normalizeYAML(v)
		}
		nodes = append(nodes, NewMapNode(name, props))
	}
	return nodes, nil
}

// LoadYAMLFile reads and parses a YAML device tree file
func LoadYAMLFile(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadYAML(data)
}

func normalizeYAML(v any) Value {
	switch i := v.(type) {
	case int:
		return int64(i)
	case uint64:
		return int64(i)
	}
	return v
}
