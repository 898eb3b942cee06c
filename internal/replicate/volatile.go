package replicate

import (
	"fmt"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// ClearVolatile deletes the tracks, vias, drawings and zones of a managed
// group from the board. Footprints and the group itself stay. It returns
// the number of removed items.
func ClearVolatile(board *pcb.Board, group *pcb.Group) int {
	removed := 0
	for _, it := range group.Items() {
		if !it.Kind().IsVolatile() {
			continue
		}
		if board.Remove(it) {
			removed++
		}
	}
	return removed
}

// CopyTraces recreates the template's segments, arcs and vias on the
// target, re-homed onto the target's nets.
func CopyTraces(template *pcb.Board, xf Transform, nets *NetMap, c *Custodian) (int, error) {
	for i, src := range template.Tracks {
		t := src.Duplicate()
		if err := c.board.Add(t); err != nil {
			return i, fmt.Errorf("failed to add %s: %w", src.Kind(), err)
		}
		t.SetNet(nets.Resolve(c.board, src.Net()))

		t.SetStart(xf.Translate(src.Start()))
		if t.IsVia() {
			t.SetFree(false)
		} else {
			t.SetEnd(xf.Translate(src.End()))
			t.SetMid(xf.Translate(src.Mid()))
		}
		c.Move(t)
	}
	return len(template.Tracks), nil
}

// CopyDrawings recreates the template's board graphics on the target.
func CopyDrawings(template *pcb.Board, xf Transform, c *Custodian) (int, error) {
	for i, src := range template.Drawings {
		d := src.Duplicate()
		if err := c.board.Add(d); err != nil {
			return i, fmt.Errorf("failed to add %s: %w", src.Shape(), err)
		}

		d.SetPosition(xf.Translate(src.Position()))
		d.Rotate(d.Position(), xf.Orient(0))
		c.Move(d)
	}
	return len(template.Drawings), nil
}

// CopyZones recreates the template's zones on the target, re-homed onto
// the target's nets.
func CopyZones(template *pcb.Board, xf Transform, nets *NetMap, c *Custodian) (int, error) {
	for i, src := range template.Zones {
		z := src.Duplicate()
		z.SetNet(nets.Resolve(c.board, src.Net()))
		if err := c.board.Add(z); err != nil {
			return i, fmt.Errorf("failed to add zone: %w", err)
		}

		z.Move(z.Position().Neg())
		z.Move(xf.Translate(src.Position()))
		z.Rotate(z.Position(), xf.Orient(geom.Angle(0)))
		c.Move(z)
	}
	return len(template.Zones), nil
}
