// Package kicadsexp provides a lightweight streaming S-expression parser
// and writer for KiCad files. Unlike general-purpose sexp libraries, this
// parser can handle arbitrarily large files by streaming, and the tree it
// produces can be edited in place and written back.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp represents an S-expression node.
// It is either an atom (Symbol or String) or a *List.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the source representation
	String() string
}

// Symbol represents a bare atom (keyword, number, identifier)
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// QString represents a quoted string atom. The value is stored unescaped.
type QString string

func (s QString) IsLeaf() bool   { return true }
func (s QString) String() string { return quote(string(s)) }

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

// NewList builds a list from the given elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Name returns the leading symbol of the list, or "" if there is none.
func (l *List) Name() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Set replaces the element at index. Out of range indexes are ignored.
func (l *List) Set(index int, s Sexp) {
	if index < 0 || index >= len(l.elements) {
		return
	}
	l.elements[index] = s
}

// Append adds elements at the end of the list.
func (l *List) Append(s ...Sexp) {
	l.elements = append(l.elements, s...)
}

// Insert places s at index, shifting later elements.
func (l *List) Insert(index int, s Sexp) {
	if index < 0 {
		index = 0
	}
	if index >= len(l.elements) {
		l.elements = append(l.elements, s)
		return
	}
	l.elements = append(l.elements, nil)
	copy(l.elements[index+1:], l.elements[index:])
	l.elements[index] = s
}

// Truncate drops every element from index onwards.
func (l *List) Truncate(index int) {
	if index < 0 || index >= len(l.elements) {
		return
	}
	for i := index; i < len(l.elements); i++ {
		l.elements[i] = nil
	}
	l.elements = l.elements[:index]
}

// Remove deletes the element at index.
func (l *List) Remove(index int) {
	if index < 0 || index >= len(l.elements) {
		return
	}
	copy(l.elements[index:], l.elements[index+1:])
	l.elements[len(l.elements)-1] = nil
	l.elements = l.elements[:len(l.elements)-1]
}

// RemoveNode deletes the first element that is the given node (pointer
// identity). It reports whether anything was removed.
func (l *List) RemoveNode(node *List) bool {
	for i, elem := range l.elements {
		if sub, ok := elem.(*List); ok && sub == node {
			l.Remove(i)
			return true
		}
	}
	return false
}

// IndexOf returns the index of node within the list, or -1.
func (l *List) IndexOf(node *List) int {
	for i, elem := range l.elements {
		if sub, ok := elem.(*List); ok && sub == node {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the list.
func (l *List) Clone() *List {
	out := &List{elements: make([]Sexp, len(l.elements))}
	for i, elem := range l.elements {
		if sub, ok := elem.(*List); ok {
			out.elements[i] = sub.Clone()
			continue
		}
		out.elements[i] = elem
	}
	return out
}

// Atom returns the textual value of an atom, unquoted.
func Atom(s Sexp) (string, bool) {
	switch v := s.(type) {
	case Symbol:
		return string(v), true
	case QString:
		return string(v), true
	}
	return "", false
}

// Parse parses S-expressions from an io.Reader.
func Parse(r io.Reader) ([]Sexp, error) {
	parser := NewParser(r)
	return parser.ParseAll()
}

// ParseString parses S-expressions from a string (convenience function)
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
