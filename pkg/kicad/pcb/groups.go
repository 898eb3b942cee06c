package pcb

import (
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Group is a named set of board items, stored as
// (group "name" (uuid X) (members "a" "b" ...)). KiCad 6 and 7 files use
// (id X) in place of (uuid X).
type Group struct {
	item
}

func (g *Group) Kind() Kind { return KindGroup }

func (g *Group) UUID() string {
	if id, ok := sexp.GetUUID(g.node); ok {
		return id
	}
	id, _ := sexp.GetNodeString(g.node, "id")
	return id
}

// Name returns the group name; unnamed groups return "".
func (g *Group) Name() string {
	if v, ok := g.node.Get(1).(kicadsexp.QString); ok {
		return string(v)
	}
	return ""
}

// Members returns the identifiers of the group's members.
func (g *Group) Members() []string {
	node, ok := sexp.FindNode(g.node, "members")
	if !ok {
		return nil
	}
	var out []string
	for _, v := range sexp.GetListItems(node) {
		if id, ok := kicadsexp.Atom(v); ok {
			out = append(out, id)
		}
	}
	return out
}

// Has reports whether id is a member.
func (g *Group) Has(id string) bool {
	for _, m := range g.Members() {
		if m == id {
			return true
		}
	}
	return false
}

// Items resolves the members to the board's items. Unknown identifiers
// are skipped.
func (g *Group) Items() []Item {
	if g.board == nil {
		return nil
	}
	var out []Item
	for _, id := range g.Members() {
		if it, ok := g.board.LookupUUID(id); ok {
			out = append(out, it)
		}
	}
	return out
}

// AddItem lists the item as a member. Adding a member twice is a no-op;
// the result reports whether the membership changed.
func (g *Group) AddItem(it Item) bool {
	id := it.UUID()
	if id == "" || g.Has(id) {
		return false
	}
	node, ok := sexp.FindNode(g.node, "members")
	if !ok {
		node = kicadsexp.NewList(kicadsexp.Symbol("members"))
		g.node.Append(node)
	}
	node.Append(kicadsexp.QString(id))
	return true
}

// RemoveItem drops the item from the member list.
func (g *Group) RemoveItem(it Item) bool {
	return g.removeMember(it.UUID())
}

func (g *Group) removeMember(id string) bool {
	node, ok := sexp.FindNode(g.node, "members")
	if !ok || id == "" {
		return false
	}
	removed := false
	for i := node.Len() - 1; i > 0; i-- {
		if v, ok := kicadsexp.Atom(node.Get(i)); ok && v == id {
			node.Remove(i)
			removed = true
		}
	}
	return removed
}
