// Package tree provides an in-memory syntax tree that satisfies the
// language interfaces. Hosts with their own parser implement those
// interfaces directly; tree serves replay scenarios, tests and simple
// integrations that ship pre-parsed structure.
package tree

import (
	"github.com/felixgeelhaar/suggest-go/domain/language"
)

// Node is one syntax element. Offsets are half-open: [Start, End).
type Node struct {
	NodeKind    string  `json:"kind" yaml:"kind"`
	NodeName    string  `json:"name,omitempty" yaml:"name,omitempty"`
	StartOffset int     `json:"start" yaml:"start"`
	EndOffset   int     `json:"end" yaml:"end"`
	Nodes       []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	parent *Node
}

// New creates a node and adopts children.
func New(kind string, start, end int, children ...*Node) *Node {
	n := &Node{
		NodeKind:    kind,
		StartOffset: start,
		EndOffset:   end,
		Nodes:       children,
	}
	n.link()
	return n
}

// Named sets the declared name of n and returns it.
func (n *Node) Named(name string) *Node {
	n.NodeName = name
	return n
}

// link sets parent pointers for the whole subtree.
func (n *Node) link() {
	for _, c := range n.Nodes {
		c.parent = n
		c.link()
	}
}

// Kind implements language.Node.
func (n *Node) Kind() string { return n.NodeKind }

// Start implements language.Node.
func (n *Node) Start() int { return n.StartOffset }

// End implements language.Node.
func (n *Node) End() int { return n.EndOffset }

// Name implements language.Named.
func (n *Node) Name() string { return n.NodeName }

// Parent implements language.Node.
func (n *Node) Parent() language.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children implements language.Node.
func (n *Node) Children() []language.Node {
	out := make([]language.Node, len(n.Nodes))
	for i, c := range n.Nodes {
		out[i] = c
	}
	return out
}

// covers reports whether offset lies inside n.
func (n *Node) covers(offset int) bool {
	return offset >= n.StartOffset && offset < n.EndOffset
}

// File is a parsed source file backed by a Node tree.
type File struct {
	FilePath string `json:"path" yaml:"path"`
	Root     *Node  `json:"root" yaml:"root"`
}

// NewFile creates a file and links the tree's parent pointers. Call it (or
// Link) after decoding a File from YAML or JSON.
func NewFile(path string, root *Node) *File {
	f := &File{FilePath: path, Root: root}
	f.Link()
	return f
}

// Link sets parent pointers for the whole tree.
func (f *File) Link() {
	if f.Root != nil {
		f.Root.parent = nil
		f.Root.link()
	}
}

// Path implements language.File.
func (f *File) Path() string { return f.FilePath }

// ElementAt implements language.File. It returns the deepest node covering
// offset.
func (f *File) ElementAt(offset int) language.Node {
	if f.Root == nil || !f.Root.covers(offset) {
		return nil
	}
	cur := f.Root
	for {
		next := (*Node)(nil)
		for _, c := range cur.Nodes {
			if c.covers(offset) {
				next = c
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

var (
	_ language.Named = (*Node)(nil)
	_ language.File  = (*File)(nil)
)
