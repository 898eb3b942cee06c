package pcb

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// uuidTokenVersion is the first file version (KiCad 8) that writes
// (uuid ...) for every item; older files use (tstamp ...) on tracks and
// (id ...) on groups.
const uuidTokenVersion = 20240108

// Board represents a complete KiCad PCB. It wraps the parsed file tree:
// items read from it keep their node, so anything not touched is written
// back unchanged.
type Board struct {
	Version    int          // File format version
	Generator  string       // Generator info (e.g., "pcbnew")
	Nets       []Net        // Electrical nets
	Footprints []*Footprint // Component footprints
	Tracks     []*Track     // Segments, arcs and vias
	Drawings   []*Drawing   // Board level shapes and texts
	Zones      []*Zone      // Copper and keepout zones
	Groups     []*Group     // Grouped elements

	path   string
	root   *kicadsexp.List
	nets   *NetMap
	items  map[*kicadsexp.List]Item
	byUUID map[string]Item
	byPath map[string]*Footprint
}

// Path returns the file the board was loaded from, if any.
func (b *Board) Path() string { return b.path }

// Root returns the kicad_pcb node.
func (b *Board) Root() *kicadsexp.List { return b.root }

// Items returns every item on the board in file order.
func (b *Board) Items() []Item {
	var out []Item
	for _, node := range sexp.Children(b.root) {
		if it, ok := b.items[node]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Refresh rebuilds the item lists and lookup indexes from the file tree.
// Wrappers of nodes that are still present are reused.
func (b *Board) Refresh() {
	b.index()
}

func (b *Board) index() {
	old := b.items
	b.items = make(map[*kicadsexp.List]Item)
	b.byUUID = make(map[string]Item)
	b.byPath = make(map[string]*Footprint)
	b.Nets = b.Nets[:0]
	b.Footprints = nil
	b.Tracks = nil
	b.Drawings = nil
	b.Zones = nil
	b.Groups = nil

	for _, node := range sexp.Children(b.root) {
		if node.Name() == "net" {
			num, err := sexp.GetInt(node, 1)
			if err != nil {
				continue
			}
			name, _ := sexp.GetString(node, 2)
			b.Nets = append(b.Nets, Net{Number: num, Name: name})
			continue
		}

		it, known := old[node]
		if !known {
			kind, ok := kindOf(node.Name())
			if !ok {
				continue
			}
			it = wrap(kind, node)
		}
		it.base().board = b
		b.track(it)
	}
	b.nets = NewNetMap(b.Nets)
}

// wrap builds the typed item for a node of the given kind.
func wrap(kind Kind, node *kicadsexp.List) Item {
	base := item{node: node}
	switch kind {
	case KindFootprint:
		return &Footprint{item: base}
	case KindSegment, KindArc, KindVia:
		return &Track{item: base, kind: kind}
	case KindShape, KindText:
		return &Drawing{item: base, kind: kind}
	case KindZone:
		return &Zone{item: base}
	default:
		return &Group{item: base}
	}
}

// track records an attached item in the lists and indexes.
func (b *Board) track(it Item) {
	b.items[it.Node()] = it
	if id := it.UUID(); id != "" {
		b.byUUID[id] = it
	}
	switch v := it.(type) {
	case *Footprint:
		b.Footprints = append(b.Footprints, v)
		if p := v.Path(); p != "" {
			b.byPath[p] = v
		}
	case *Track:
		b.Tracks = append(b.Tracks, v)
	case *Drawing:
		b.Drawings = append(b.Drawings, v)
	case *Zone:
		b.Zones = append(b.Zones, v)
	case *Group:
		b.Groups = append(b.Groups, v)
	}
}

// idKey returns the token this board's version uses for item identifiers.
func (b *Board) idKey(kind Kind) string {
	if b.Version >= uuidTokenVersion {
		return "uuid"
	}
	if kind == KindGroup {
		return "id"
	}
	return "tstamp"
}

// Add attaches a detached item to the board. Items without an identifier
// get a fresh one so that groups can refer to them.
func (b *Board) Add(it Item) error {
	if it.Board() != nil {
		return fmt.Errorf("%s %s is already on a board", it.Kind(), it.UUID())
	}
	if it.UUID() == "" {
		it.Node().Append(kicadsexp.NewList(
			kicadsexp.Symbol(b.idKey(it.Kind())),
			kicadsexp.QString(uuid.NewString()),
		))
	}
	if _, dup := b.byUUID[it.UUID()]; dup {
		return fmt.Errorf("%s %s: duplicate identifier", it.Kind(), it.UUID())
	}

	b.root.Insert(b.insertIndex(it.Kind()), it.Node())
	it.base().board = b
	b.track(it)
	return nil
}

// insertIndex keeps KiCad's file layout: a new item goes after the last
// item of the same kind, otherwise before the groups at the end of the file.
func (b *Board) insertIndex(kind Kind) int {
	last, firstGroup := -1, -1
	for i, elem := range b.root.Items() {
		node, ok := elem.(*kicadsexp.List)
		if !ok {
			continue
		}
		k, ok := kindOf(node.Name())
		if !ok {
			continue
		}
		if k == kind {
			last = i
		}
		if k == KindGroup && firstGroup < 0 {
			firstGroup = i
		}
	}
	switch {
	case last >= 0:
		return last + 1
	case firstGroup >= 0:
		return firstGroup
	default:
		return b.root.Len()
	}
}

// Remove deletes an item from the board and from every group listing it.
// It reports whether the item was on this board.
func (b *Board) Remove(it Item) bool {
	if it.Board() != b || !b.root.RemoveNode(it.Node()) {
		return false
	}
	id := it.UUID()
	for _, g := range b.Groups {
		g.removeMember(id)
	}

	delete(b.items, it.Node())
	if id != "" {
		delete(b.byUUID, id)
	}
	switch v := it.(type) {
	case *Footprint:
		b.Footprints = removeFrom(b.Footprints, v)
		if b.byPath[v.Path()] == v {
			delete(b.byPath, v.Path())
		}
	case *Track:
		b.Tracks = removeFrom(b.Tracks, v)
	case *Drawing:
		b.Drawings = removeFrom(b.Drawings, v)
	case *Zone:
		b.Zones = removeFrom(b.Zones, v)
	case *Group:
		b.Groups = removeFrom(b.Groups, v)
	}
	it.base().board = nil
	return true
}

func removeFrom[T comparable](list []T, v T) []T {
	for i := range list {
		if list[i] == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// LookupUUID finds an attached item by identifier.
func (b *Board) LookupUUID(id string) (Item, bool) {
	it, ok := b.byUUID[id]
	return it, ok
}

// FindFootprintByPath returns the footprint whose hierarchical path is
// exactly path ("/sheet-uuid/.../symbol-uuid").
func (b *Board) FindFootprintByPath(path string) (*Footprint, bool) {
	fp, ok := b.byPath[path]
	return fp, ok
}

// FindFootprintByReference returns the first footprint with the given
// reference designator.
func (b *Board) FindFootprintByReference(ref string) (*Footprint, bool) {
	for _, fp := range b.Footprints {
		if fp.Reference() == ref {
			return fp, true
		}
	}
	return nil, false
}

// FindNet returns a net by number
func (b *Board) FindNet(code int) (*Net, bool) {
	return b.nets.GetByNumber(code)
}

// NoNet returns the board's unconnected net (number 0).
func (b *Board) NoNet() *Net {
	if n, ok := b.nets.GetByNumber(0); ok {
		return n
	}
	return &Net{Number: 0}
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	if n, ok := b.nets.GetByName(name); ok {
		return n
	}
	return nil
}

// FindGroup returns the first group with the given name.
func (b *Board) FindGroup(name string) (*Group, bool) {
	for _, g := range b.Groups {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// NewGroup creates an empty named group and attaches it to the board.
func (b *Board) NewGroup(name string) (*Group, error) {
	node := kicadsexp.NewList(
		kicadsexp.Symbol("group"),
		kicadsexp.QString(name),
		kicadsexp.NewList(kicadsexp.Symbol(b.idKey(KindGroup)), kicadsexp.QString(uuid.NewString())),
		kicadsexp.NewList(kicadsexp.Symbol("members")),
	)
	g := &Group{item: item{node: node}}
	if err := b.Add(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ParentGroup returns the group listing the item as a member, if any.
func (b *Board) ParentGroup(it Item) (*Group, bool) {
	id := it.UUID()
	if id == "" {
		return nil, false
	}
	for _, g := range b.Groups {
		if g.Has(id) {
			return g, true
		}
	}
	return nil, false
}
