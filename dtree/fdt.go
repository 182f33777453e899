package dtree

import (
	"encoding/binary"
	"os"

	"github.com/u-root/u-root/pkg/dt"
)

// fdtNode adapts a flattened device tree node
type fdtNode struct {
	node *dt.Node
}

// FromFDTNode wraps a u-root device tree node
func FromFDTNode(n *dt.Node) Node {
	return &fdtNode{node: n}
}

func (f *fdtNode) Name() string {
	return f.node.Name
}

// Lookup decodes a property from its cells. A single cell reads as an
// integer, two cells as a 64-bit integer, a NUL-terminated value as a
// string and an empty value as a boolean flag.
func (f *fdtNode) Lookup(key string) (Value, bool) {
	p, ok := f.node.LookProperty(key)
	if !ok {
		return nil, false
	}

	switch {
	case len(p.Value) == 0:
		return true, true
	case len(p.Value) == 4:
		v, err := p.AsU32()
		if err != nil {
			return nil, false
		}
		return int64(int32(v)), true
	case len(p.Value) == 8:
		return int64(binary.BigEndian.Uint64(p.Value)), true
	case p.Value[len(p.Value)-1] == 0:
		return string(p.Value[:len(p.Value)-1]), true
	}
	return nil, false
}

// LoadFDT returns the device nodes of a parsed flattened device tree:
// every node that carries an "interrupt" or "compatible" property.
func LoadFDT(fdt *dt.FDT) ([]Node, error) {
	var nodes []Node
	err := fdt.RootNode.Walk(func(n *dt.Node) error {
		if _, ok := n.LookProperty("interrupt"); ok {
			nodes = append(nodes, FromFDTNode(n))
			return nil
		}
		if _, ok := n.LookProperty("compatible"); ok && n != fdt.RootNode {
			nodes = append(nodes, FromFDTNode(n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// LoadFDTFile reads a DTB produced by dtc
func LoadFDTFile(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fdt, err := dt.ReadFDT(f)
	if err != nil {
		return nil, err
	}
	return LoadFDT(fdt)
}
