// Package diag builds the diagnostic parse tree: a labeled tree that
// mirrors grammar productions for tracing and carries no semantics.
//
// A tree only grows. Passes append children while they walk the AST and
// nothing rewrites a node once the pass that owns it has finished.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Node is a labeled tree node. Leaves hold source lexemes; inner nodes
// hold grammar symbols such as "statement_full" or "expression".
type Node struct {
	Label    string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// New returns a node with the given children.
func New(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// Add appends one leaf per label.
func (n *Node) Add(labels ...string) {
	for _, label := range labels {
		n.Children = append(n.Children, &Node{Label: label})
	}
}

// Child appends an empty node and returns it for the caller to fill.
func (n *Node) Child(label string) *Node {
	child := &Node{Label: label}
	n.Children = append(n.Children, child)
	return child
}

// Append attaches existing subtrees.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Leaves returns the labels of all leaves in depth-first order.
func (n *Node) Leaves() []string {
	var out []string
	n.Walk(func(node *Node, depth int) {
		if node.IsLeaf() {
			out = append(out, node.Label)
		}
	})
	return out
}

// Walk calls fn for n and every descendant in pre-order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Find returns the first node in pre-order whose label equals label.
func (n *Node) Find(label string) *Node {
	if n.Label == label {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(label); found != nil {
			return found
		}
	}
	return nil
}

// String renders the tree one node per line, indented by depth.
func (n *Node) String() string {
	var sb strings.Builder
	n.Walk(func(node *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(node.Label)
		sb.WriteByte('\n')
	})
	return sb.String()
}

// Artifact is the serialized form of one pass's tree.
type Artifact struct {
	Run  string `json:"run"`
	Pass string `json:"pass"`
	Tree *Node  `json:"tree"`
}

// Write encodes the artifact as indented JSON.
func Write(w io.Writer, a Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode %s tree: %w", a.Pass, err)
	}
	return nil
}

// WriteFile writes the artifact to path, creating parent directories.
func WriteFile(path string, a Artifact) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
