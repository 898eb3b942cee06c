// Package replicate copies a template layout onto each instance of its
// sheet in the target board.
package replicate

import "github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"

// Placement is anything with a board position and orientation.
type Placement interface {
	Position() geom.Point
	Orientation() geom.Angle
}

// Transform maps template coordinates onto a target instance. It is the
// rigid motion that takes the template anchor onto the target anchor.
type Transform struct {
	from      geom.Point
	to        geom.Point
	fromAngle geom.Angle
	toAngle   geom.Angle
}

// NewTransform captures both anchors. Later changes to the anchors do not
// affect the transform.
func NewTransform(template, target Placement) Transform {
	return Transform{
		from:      template.Position(),
		to:        target.Position(),
		fromAngle: template.Orientation(),
		toAngle:   target.Orientation(),
	}
}

// Rotation is the angle the template turns by.
func (t Transform) Rotation() geom.Angle {
	return (t.toAngle - t.fromAngle).Normalize()
}

// Translate maps a template position to the target.
func (t Transform) Translate(p geom.Point) geom.Point {
	return geom.Rotate(p.Sub(t.from), t.toAngle-t.fromAngle).Add(t.to)
}

// Orient maps a template angle to the target, in [0, 360).
func (t Transform) Orient(a geom.Angle) geom.Angle {
	return (a - t.fromAngle + t.toAngle).Normalize()
}
