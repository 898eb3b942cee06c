package pcb

import "github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"

// GetBoundingBox calculates the bounding box of a footprint
// Includes all pads with their positions relative to footprint position
func (fp *Footprint) GetBoundingBox() geom.BoundingBox {
	var bbox geom.BoundingBox

	pads := fp.Pads()
	for _, pad := range pads {
		// Get absolute pad position
		absPos := pad.Position()

		// Expand by pad size (approximate as rectangle)
		size := pad.Size()
		halfWidth := size.X / 2
		halfHeight := size.Y / 2

		bbox.Expand(geom.Point{X: absPos.X - halfWidth, Y: absPos.Y - halfHeight})
		bbox.Expand(geom.Point{X: absPos.X + halfWidth, Y: absPos.Y + halfHeight})
	}

	// If no pads, at least include footprint position
	if len(pads) == 0 {
		bbox.Expand(fp.Position())
	}

	return bbox
}

// GetBoundingBox calculates the bounding box of the board's footprints,
// tracks and drawings
func (b *Board) GetBoundingBox() geom.BoundingBox {
	var bbox geom.BoundingBox

	for _, fp := range b.Footprints {
		fpBBox := fp.GetBoundingBox()
		if !fpBBox.IsEmpty() {
			bbox.Expand(fpBBox.Min)
			bbox.Expand(fpBBox.Max)
		}
	}

	for _, track := range b.Tracks {
		bbox.Expand(track.Start())
		bbox.Expand(track.End())
	}

	for _, d := range b.Drawings {
		bbox.Expand(d.Position())
	}

	for _, z := range b.Zones {
		bbox.Expand(z.Position())
	}

	return bbox
}
