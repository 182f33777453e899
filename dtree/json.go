package dtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON parses a JSON device tree. The top level is an object whose keys
// are node names and whose values are property objects:
//
//	{
//	  "ce-armv7-timer@0": { "clock-frequency": 24000000, "interrupt": 30 }
//	}
//
// Nodes are returned in document order.
func LoadJSON(data []byte) ([]Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	var nodes []Node
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)

		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		if raw == nil {
			return nil, fmt.Errorf("node %s: %w", name, ErrNotObject)
		}

		props := make(map[string]Value, len(raw))
		for k, v := range raw {
			props[k] = normalizeJSON(v)
		}
		nodes = append(nodes, NewMapNode(name, props))
	}
	return nodes, nil
}

// LoadJSONFile reads and parses a JSON device tree file
func LoadJSONFile(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadJSON(data)
}

func normalizeJSON(v any) Value {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}
