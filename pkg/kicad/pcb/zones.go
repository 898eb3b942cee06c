package pcb

import (
	"strconv"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Zone is a copper fill or keepout area.
type Zone struct {
	item
}

func (z *Zone) Kind() Kind { return KindZone }

// Position returns the first corner of the zone outline.
func (z *Zone) Position() geom.Point {
	if poly, ok := sexp.FindNode(z.node, "polygon"); ok {
		if p, ok := firstPoint(poly); ok {
			return p
		}
	}
	p, _ := firstPoint(z.node)
	return p
}

// Move shifts the outline and any filled polygons by delta.
func (z *Zone) Move(delta geom.Point) {
	moveCoords(z.node, delta)
}

// Rotate turns the outline and any filled polygons about center.
func (z *Zone) Rotate(center geom.Point, a geom.Angle) {
	if a.IsZero() {
		return
	}
	rotateCoords(z.node, center, a)
}

// Net returns the zone's net number, 0 when unconnected.
func (z *Zone) Net() int {
	node, ok := sexp.FindNode(z.node, "net")
	if !ok {
		return 0
	}
	n, err := sexp.GetInt(node, 1)
	if err != nil {
		return 0
	}
	return n
}

// NetName returns the net name stored on the zone.
func (z *Zone) NetName() string {
	name, _ := sexp.GetNodeString(z.node, "net_name")
	return name
}

// SetNet connects the zone to n, keeping net and net_name in step.
func (z *Zone) SetNet(n *Net) {
	sexp.SetNodeValue(z.node, "net", kicadsexp.Symbol(strconv.Itoa(n.Number)))
	sexp.SetNodeValue(z.node, "net_name", kicadsexp.QString(n.Name))
}

// Layers returns the zone's layer or layers.
func (z *Zone) Layers() []string {
	var out []string
	for _, key := range []string{"layer", "layers"} {
		if node, ok := sexp.FindNode(z.node, key); ok {
			for _, v := range sexp.GetListItems(node) {
				if s, ok := kicadsexp.Atom(v); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// Duplicate returns a detached deep copy with a fresh identifier.
func (z *Zone) Duplicate() *Zone {
	return &Zone{item: duplicate(&z.item)}
}
