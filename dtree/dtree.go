// Package dtree is a device-tree style configuration reader.
//
// A tree is a flat list of nodes named "driver@id". Each node carries typed
// properties that drivers read with defaults, so an absent key never aborts a
// probe by itself; the driver decides which keys are required.
package dtree

import (
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Value is a raw property value as decoded by a backend.
// Integers are int64, strings are string, booleans are bool.
type Value any

// Node is one device-tree node
type Node interface {
	// Name returns the full node name, e.g. "ce-armv7-timer@0"
	Name() string

	// Lookup returns the raw value of a property
	Lookup(key string) (Value, bool)
}

var (
	ErrUnknownFormat = errors.New("unknown device tree format")
	ErrNotObject     = errors.New("device tree node is not an object")
)

// ReadName returns the driver part of a node name (before '@')
func ReadName(n Node) string {
	name := n.Name()
	if i := strings.IndexByte(name, '@'); i >= 0 {
		return name[:i]
	}
	return name
}

// ReadID returns the numeric id after '@', or -1 if there is none
func ReadID(n Node) int {
	name := n.Name()
	i := strings.IndexByte(name, '@')
	if i < 0 {
		return -1
	}
	id, err := strconv.Atoi(name[i+1:])
	if err != nil || id < 0 {
		return -1
	}
	return id
}

// ReadInt reads a 32-bit integer property, returning def if absent, not an
// integer, or outside the int32 range
func ReadInt(n Node, key string, def int) int {
	v, ok := readInteger(n, key)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return def
	}
	return int(v)
}

// ReadLong reads a 64-bit integer property, returning def if absent or not an integer
func ReadLong(n Node, key string, def int64) int64 {
	v, ok := readInteger(n, key)
	if !ok {
		return def
	}
	return v
}

// ReadString reads a string property
func ReadString(n Node, key string, def string) string {
	v, ok := n.Lookup(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// ReadBool reads a boolean property
func ReadBool(n Node, key string, def bool) bool {
	v, ok := n.Lookup(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	}
	return def
}

func readInteger(n Node, key string) (int64, bool) {
	v, ok := n.Lookup(key)
	if !ok {
		return 0, false
	}
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case uint32:
		return int64(i), true
	case float64:
		// JSON numbers without a fractional part
		if i == float64(int64(i)) {
			return int64(i), true
		}
	case string:
		// Accept "0x..." literals, as hand-written trees often use them
		if p, err := strconv.ParseInt(i, 0, 64); err == nil {
			return p, true
		}
	}
	return 0, false
}

// MapNode is a node backed by a property map
type MapNode struct {
	NodeName   string
	Properties map[string]Value
}

// NewMapNode creates a node from a name and properties
func NewMapNode(name string, props map[string]Value) *MapNode {
	if props == nil {
		props = make(map[string]Value)
	}
	return &MapNode{NodeName: name, Properties: props}
}

func (m *MapNode) Name() string {
	return m.NodeName
}

func (m *MapNode) Lookup(key string) (Value, bool) {
	v, ok := m.Properties[key]
	return v, ok
}

// Load reads a device tree file, choosing the backend by extension:
// .json, .yaml/.yml or .dtb.
func Load(path string) ([]Node, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSONFile(path)
	case ".yaml", ".yml":
		return LoadYAMLFile(path)
	case ".dtb":
		return LoadFDTFile(path)
	}
	return nil, ErrUnknownFormat
}
