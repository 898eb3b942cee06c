// Package hierarchy models the sheet tree of a hierarchical KiCad design:
// which sheet files have a template layout (a room), where each one is
// instantiated, and which instances are enabled for replication.
package hierarchy

import (
	"errors"
	"strings"
)

var (
	// ErrRootSchematic is returned when the root schematic cannot be read.
	ErrRootSchematic = errors.New("root schematic unusable")

	// ErrSheetCycle is returned when a sheet file includes itself.
	ErrSheetCycle = errors.New("sheet hierarchy contains a cycle")
)

// Logger receives the hierarchy's diagnostics.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Instance is one placement of a sheet file inside the design.
type Instance struct {
	Name     string // Sheetname
	UUID     string // sheet symbol uuid
	UUIDPath string // "/uuid/uuid/..." from the root
	Enabled  bool
	Room     *Room
	Parent   *Branch
}

// Node is either a *Branch or a *Leaf.
type Node interface {
	Name() string
	UUIDPath() string
	Parent() *Branch

	node()
}

// Branch is a sheet without its own layout. It groups the nodes below it
// and never replicates.
type Branch struct {
	name     string
	uuidPath string
	parent   *Branch
	Sheet    *SheetFile
	Children []Node
}

func (b *Branch) Name() string     { return b.name }
func (b *Branch) UUIDPath() string { return b.uuidPath }
func (b *Branch) Parent() *Branch  { return b.parent }
func (b *Branch) node()            {}

// Leaf is a sheet instance whose sheet file has a usable layout.
type Leaf struct {
	Instance *Instance
}

func (l *Leaf) Name() string     { return l.Instance.Name }
func (l *Leaf) UUIDPath() string { return l.Instance.UUIDPath }
func (l *Leaf) Parent() *Branch  { return l.Instance.Parent }
func (l *Leaf) node()            {}

// Walk visits n and everything below it in pre-order. Returning false from
// fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if b, ok := n.(*Branch); ok {
		for _, child := range b.Children {
			Walk(child, fn)
		}
	}
}

// Leaves returns every leaf at or below n.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	Walk(n, func(n Node) bool {
		if l, ok := n.(*Leaf); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// EnabledLeaves returns the leaves at or below n that are enabled.
func EnabledLeaves(n Node) []*Leaf {
	var out []*Leaf
	for _, l := range Leaves(n) {
		if l.Instance.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// HasValidBoard reports whether n is a leaf or has one below it.
func HasValidBoard(n Node) bool {
	switch v := n.(type) {
	case *Leaf:
		return true
	case *Branch:
		for _, child := range v.Children {
			if HasValidBoard(child) {
				return true
			}
		}
	}
	return false
}

// State is the checkbox state of a node.
type State int

const (
	Unchecked State = iota
	Checked
	Mixed
)

func (s State) String() string {
	switch s {
	case Checked:
		return "[x]"
	case Mixed:
		return "[-]"
	}
	return "[ ]"
}

// StateOf returns a leaf's enabled state, or the aggregate of a branch's
// leaves.
func StateOf(n Node) State {
	leaves := Leaves(n)
	enabled := 0
	for _, l := range leaves {
		if l.Instance.Enabled {
			enabled++
		}
	}
	switch {
	case enabled == 0:
		return Unchecked
	case enabled == len(leaves):
		return Checked
	}
	return Mixed
}

// SetEnabled enables or disables a leaf, or every leaf below a branch.
func SetEnabled(n Node, enabled bool) {
	for _, l := range Leaves(n) {
		l.Instance.Enabled = enabled
	}
}

// Find returns the node with the given uuid path, or the node whose name
// path ("Top/Channel A") matches.
func Find(root Node, key string) (Node, bool) {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.UUIDPath() == key || NamePath(n) == key {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// NamePath returns the slash separated sheet names from below the root to n.
func NamePath(n Node) string {
	var parts []string
	for cur := n; cur != nil; {
		p := cur.Parent()
		if p == nil {
			break
		}
		parts = append([]string{cur.Name()}, parts...)
		cur = p
	}
	return strings.Join(parts, "/")
}
