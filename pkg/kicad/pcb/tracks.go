package pcb

import (
	"strconv"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Track is a copper segment, arc or via.
//
// Vias have a single (at x y) location; Start, End and their setters all
// address it.
type Track struct {
	item
	kind Kind
}

func (t *Track) Kind() Kind { return t.kind }

// IsVia reports whether the track is a via
func (t *Track) IsVia() bool { return t.kind == KindVia }

func (t *Track) point(key string) geom.Point {
	if t.kind == KindVia {
		key = "at"
	}
	node, ok := sexp.FindNode(t.node, key)
	if !ok {
		return geom.Point{}
	}
	p, _ := sexp.GetPoint(node)
	return p
}

func (t *Track) setPoint(key string, p geom.Point) {
	if t.kind == KindVia {
		key = "at"
	}
	node, ok := sexp.FindNode(t.node, key)
	if !ok {
		node = kicadsexp.NewList(kicadsexp.Symbol(key))
		t.node.Insert(1, node)
	}
	sexp.SetPoint(node, p)
}

// Start returns the start point (the location for vias)
func (t *Track) Start() geom.Point { return t.point("start") }

// End returns the end point (the location for vias)
func (t *Track) End() geom.Point { return t.point("end") }

// Mid returns the arc midpoint; zero for other kinds.
func (t *Track) Mid() geom.Point {
	if t.kind != KindArc {
		return geom.Point{}
	}
	return t.point("mid")
}

// SetStart moves the start point
func (t *Track) SetStart(p geom.Point) { t.setPoint("start", p) }

// SetEnd moves the end point
func (t *Track) SetEnd(p geom.Point) { t.setPoint("end", p) }

// SetMid moves the midpoint of an arc. Other kinds ignore it.
func (t *Track) SetMid(p geom.Point) {
	if t.kind == KindArc {
		t.setPoint("mid", p)
	}
}

// Layer returns the copper layer of a segment or arc; vias return their
// first layer.
func (t *Track) Layer() string {
	if layer, ok := sexp.GetNodeString(t.node, "layer"); ok {
		return layer
	}
	layer, _ := sexp.GetNodeString(t.node, "layers")
	return layer
}

// Net returns the track's net number, 0 when unconnected.
func (t *Track) Net() int {
	node, ok := sexp.FindNode(t.node, "net")
	if !ok {
		return 0
	}
	n, err := sexp.GetInt(node, 1)
	if err != nil {
		return 0
	}
	return n
}

// SetNet connects the track to net n.
func (t *Track) SetNet(n *Net) {
	sexp.SetNodeValue(t.node, "net", kicadsexp.Symbol(strconv.Itoa(n.Number)))
}

// IsFree reports whether a via is free (not tied to a pad's net).
func (t *Track) IsFree() bool {
	if t.kind != KindVia {
		return false
	}
	if sexp.HasSymbol(t.node, "free") {
		return true
	}
	node, ok := sexp.FindNode(t.node, "free")
	if !ok {
		return false
	}
	v, err := sexp.GetString(node, 1)
	return err != nil || v == "yes"
}

// SetFree sets the free flag of a via.
func (t *Track) SetFree(free bool) {
	if t.kind != KindVia {
		return
	}
	sexp.RemoveNodes(t.node, "free")
	for i := t.node.Len() - 1; i > 0; i-- {
		if sym, ok := t.node.Get(i).(kicadsexp.Symbol); ok && sym == "free" {
			t.node.Remove(i)
		}
	}
	if !free {
		return
	}
	flag := kicadsexp.NewList(kicadsexp.Symbol("free"))
	if t.board != nil && t.board.Version >= uuidTokenVersion {
		flag.Append(kicadsexp.Symbol("yes"))
	}
	t.node.Append(flag)
}

// Duplicate returns a detached deep copy with a fresh identifier.
func (t *Track) Duplicate() *Track {
	return &Track{item: duplicate(&t.item), kind: t.kind}
}
