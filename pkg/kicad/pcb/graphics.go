package pcb

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Drawing is a board level shape (gr_line, gr_rect, gr_circle, gr_arc,
// gr_poly, gr_curve) or text (gr_text, gr_text_box).
type Drawing struct {
	item
	kind Kind
}

func (d *Drawing) Kind() Kind { return d.kind }

// Shape returns the node name, e.g. "gr_line".
func (d *Drawing) Shape() string { return d.node.Name() }

// Layer returns the drawing's layer name.
func (d *Drawing) Layer() string {
	layer, _ := sexp.GetNodeString(d.node, "layer")
	return layer
}

// Position returns the drawing's reference point: the text anchor, the
// circle centre, the first corner of a polygon or the start point.
func (d *Drawing) Position() geom.Point {
	for _, key := range []string{"at", "center", "start"} {
		if node, ok := sexp.FindNode(d.node, key); ok {
			if p, err := sexp.GetPoint(node); err == nil {
				return p
			}
		}
	}
	if p, ok := firstPoint(d.node); ok {
		return p
	}
	return geom.Point{}
}

// SetPosition moves the drawing so its reference point lands on p.
func (d *Drawing) SetPosition(p geom.Point) {
	d.Move(p.Sub(d.Position()))
}

// Move shifts every point of the drawing.
func (d *Drawing) Move(delta geom.Point) {
	moveCoords(d.node, delta)
}

// Rotate turns the drawing about center. Text angles follow the rotation.
// A rectangle turned by anything other than a quarter turn becomes a
// polygon, since rectangles are axis aligned.
func (d *Drawing) Rotate(center geom.Point, a geom.Angle) {
	if a.IsZero() {
		return
	}
	if !isCardinal(a) {
		switch d.node.Name() {
		case "gr_rect":
			rectToPoly(d.node)
			d.node.Set(0, kicadsexp.Symbol("gr_poly"))
		case "gr_text_box":
			rectToPoly(d.node)
		}
	}
	rotateCoords(d.node, center, a)

	if d.node.Name() == "gr_text_box" {
		angle := geom.Angle(0)
		if v, ok := sexp.GetNodeFloat(d.node, "angle"); ok {
			angle = geom.Angle(v)
		}
		sexp.SetNodeValue(d.node, "angle", kicadsexp.Symbol((angle + a).Normalize().Format()))
	}
}

// Duplicate returns a detached deep copy with a fresh identifier.
func (d *Drawing) Duplicate() *Drawing {
	return &Drawing{item: duplicate(&d.item), kind: d.kind}
}

func duplicate(it *item) item {
	node := it.node.Clone()
	if _, ok := sexp.GetUUID(node); ok {
		sexp.SetUUID(node, uuid.NewString())
	}
	return item{node: node}
}

func isCardinal(a geom.Angle) bool {
	switch a.Normalize() {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// isCoordNode reports whether a node holds a single X,Y pair.
func isCoordNode(name string) bool {
	switch name {
	case "at", "start", "end", "mid", "center", "xy":
		return true
	}
	return false
}

// moveCoords shifts every coordinate below l by delta.
func moveCoords(l *kicadsexp.List, delta geom.Point) {
	for _, child := range sexp.Children(l) {
		if isCoordNode(child.Name()) {
			if p, err := sexp.GetPoint(child); err == nil {
				sexp.SetPoint(child, p.Add(delta))
			}
			continue
		}
		moveCoords(child, delta)
	}
}

// rotateCoords turns every coordinate below l about center and adds the
// angle to (at x y angle) orientations.
func rotateCoords(l *kicadsexp.List, center geom.Point, a geom.Angle) {
	for _, child := range sexp.Children(l) {
		if !isCoordNode(child.Name()) {
			rotateCoords(child, center, a)
			continue
		}
		p, err := sexp.GetPoint(child)
		if err != nil {
			continue
		}
		sexp.SetPoint(child, geom.RotateAbout(p, center, a))
		if child.Name() == "at" {
			sexp.SetAngle(child, sexp.GetAngle(child)+a)
		}
	}
}

// firstPoint returns the first (xy ...) point found below l.
func firstPoint(l *kicadsexp.List) (geom.Point, bool) {
	for _, child := range sexp.Children(l) {
		if child.Name() == "xy" {
			if p, err := sexp.GetPoint(child); err == nil {
				return p, true
			}
			continue
		}
		if p, ok := firstPoint(child); ok {
			return p, true
		}
	}
	return geom.Point{}, false
}

// rectToPoly replaces (start) and (end) corners with a four point outline.
func rectToPoly(l *kicadsexp.List) {
	startNode, ok1 := sexp.FindNode(l, "start")
	endNode, ok2 := sexp.FindNode(l, "end")
	if !ok1 || !ok2 {
		return
	}
	s, err1 := sexp.GetPoint(startNode)
	e, err2 := sexp.GetPoint(endNode)
	if err1 != nil || err2 != nil {
		return
	}

	pts := kicadsexp.NewList(kicadsexp.Symbol("pts"))
	for _, p := range []geom.Point{s, {X: e.X, Y: s.Y}, e, {X: s.X, Y: e.Y}} {
		xy := kicadsexp.NewList(kicadsexp.Symbol("xy"))
		sexp.SetPoint(xy, p)
		pts.Append(xy)
	}
	l.Set(l.IndexOf(startNode), pts)
	l.RemoveNode(endNode)
}
