// Package sexp provides navigation and editing helpers over kicadsexp trees
// shared by the board and schematic code.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// FindNode searches for a child list with the given key (first symbol)
// Example: FindNode(fp, "at") finds (at 100 50) in a footprint
func FindNode(l *kicadsexp.List, key string) (*kicadsexp.List, bool) {
	if l == nil {
		return nil, false
	}
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Name() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given key
func FindAllNodes(l *kicadsexp.List, key string) []*kicadsexp.List {
	var results []*kicadsexp.List
	if l == nil {
		return results
	}
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Name() == key {
			results = append(results, sub)
		}
	}
	return results
}

// Children returns every child list, in file order.
func Children(l *kicadsexp.List) []*kicadsexp.List {
	var results []*kicadsexp.List
	for _, item := range l.Items() {
		if sub, ok := item.(*kicadsexp.List); ok {
			results = append(results, sub)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(l *kicadsexp.List) []kicadsexp.Sexp {
	items := l.Items()
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// Typed value extraction helpers

// GetString extracts an atom value at the given index in a list.
// Index 0 is the key, 1 is first value, etc.
func GetString(l *kicadsexp.List, index int) (string, error) {
	if index < 0 || index >= l.Len() {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, l.Len())
	}
	v, ok := kicadsexp.Atom(l.Get(index))
	if !ok {
		return "", fmt.Errorf("expected atom at index %d, got list", index)
	}
	return v, nil
}

// GetFloat extracts a float64 value at the given index
func GetFloat(l *kicadsexp.List, index int) (float64, error) {
	str, err := GetString(l, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(l *kicadsexp.List, index int) (int, error) {
	str, err := GetString(l, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// GetNodeString returns the first value of the child node key, e.g. the
// "F.Cu" in (layer "F.Cu").
func GetNodeString(l *kicadsexp.List, key string) (string, bool) {
	node, ok := FindNode(l, key)
	if !ok {
		return "", false
	}
	v, err := GetString(node, 1)
	return v, err == nil
}

// GetNodeFloat returns the first value of the child node key as a float.
func GetNodeFloat(l *kicadsexp.List, key string) (float64, bool) {
	node, ok := FindNode(l, key)
	if !ok {
		return 0, false
	}
	v, err := GetFloat(node, 1)
	return v, err == nil
}

// Domain-specific extraction helpers

// GetPoint extracts the X,Y coordinates of an (at X Y [angle]), (start X Y),
// (xy X Y) or similar node, converting millimetres to nanometres.
func GetPoint(l *kicadsexp.List) (geom.Point, error) {
	x, err := GetFloat(l, 1)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%s: x: %w", l.Name(), err)
	}
	y, err := GetFloat(l, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%s: y: %w", l.Name(), err)
	}
	return geom.PointMM(x, y), nil
}

// GetAngle extracts the optional angle of an (at X Y angle) node. Missing
// angles are zero.
func GetAngle(l *kicadsexp.List) geom.Angle {
	if l.Len() < 4 {
		return 0
	}
	v, err := GetFloat(l, 3)
	if err != nil {
		return 0
	}
	return geom.Angle(v)
}

// SetPoint rewrites the X,Y values of a coordinate node in place.
func SetPoint(l *kicadsexp.List, p geom.Point) {
	x := kicadsexp.Symbol(geom.FormatMM(p.X))
	y := kicadsexp.Symbol(geom.FormatMM(p.Y))
	for l.Len() < 3 {
		l.Append(kicadsexp.Symbol("0"))
	}
	l.Set(1, x)
	l.Set(2, y)
}

// SetAngle rewrites the angle of an (at X Y [angle]) node. A zero angle is
// dropped, the way KiCad writes it.
func SetAngle(l *kicadsexp.List, a geom.Angle) {
	a = a.Normalize()
	if a == 0 {
		if l.Len() >= 4 {
			if _, err := GetFloat(l, 3); err == nil {
				l.Remove(3)
			}
		}
		return
	}
	for l.Len() < 3 {
		l.Append(kicadsexp.Symbol("0"))
	}
	sym := kicadsexp.Symbol(a.Format())
	if l.Len() >= 4 {
		if _, err := GetFloat(l, 3); err == nil {
			l.Set(3, sym)
			return
		}
	}
	l.Insert(3, sym)
}

// SetNodeValue sets the first value of the child node key, creating the
// node at the end of l when it is missing.
func SetNodeValue(l *kicadsexp.List, key string, value kicadsexp.Sexp) *kicadsexp.List {
	node, ok := FindNode(l, key)
	if !ok {
		node = kicadsexp.NewList(kicadsexp.Symbol(key), value)
		l.Append(node)
		return node
	}
	if node.Len() < 2 {
		node.Append(value)
	} else {
		node.Set(1, value)
	}
	return node
}

// RemoveNodes deletes every child list named key and returns how many went.
func RemoveNodes(l *kicadsexp.List, key string) int {
	n := 0
	for _, node := range FindAllNodes(l, key) {
		if l.RemoveNode(node) {
			n++
		}
	}
	return n
}

// HasSymbol checks if a list contains a specific bare symbol
func HasSymbol(l *kicadsexp.List, symbol string) bool {
	for _, item := range l.Items() {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	l, ok := s.(*kicadsexp.List)
	if !ok {
		return "", fmt.Errorf("expected list, got leaf")
	}
	if name := l.Name(); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("list has no leading symbol")
}

// GetUUID extracts an item's identifier from its (uuid "...") node or, for
// files written before KiCad 7, its (tstamp ...) node.
func GetUUID(l *kicadsexp.List) (string, bool) {
	for _, key := range []string{"uuid", "tstamp"} {
		if v, ok := GetNodeString(l, key); ok {
			return v, true
		}
	}
	return "", false
}

// SetUUID replaces the identifier stored in the uuid or tstamp node.
func SetUUID(l *kicadsexp.List, id string) {
	for _, key := range []string{"uuid", "tstamp"} {
		if node, ok := FindNode(l, key); ok {
			node.Set(1, kicadsexp.QString(id))
			return
		}
	}
	l.Append(kicadsexp.NewList(kicadsexp.Symbol("uuid"), kicadsexp.QString(id)))
}
