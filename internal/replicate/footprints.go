package replicate

import (
	"github.com/OpenTraceLab/hierpcb/internal/config"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// inBounds reports whether a template footprint takes part in replication.
// Footprints left of or above the origin are template-only parts.
func inBounds(fp *pcb.Footprint) bool {
	p := fp.Position()
	return p.X >= 0 && p.Y >= 0
}

// footprintSync places the target footprints of one instance and builds
// the net map from their pads.
type footprintSync struct {
	resolver *Resolver
	xf       Transform
	custody  *Custodian
	padMatch string
	skipOOB  bool
	nets     *NetMap
	report   *Report
	log      Logger
}

// run synchronises every template footprint in file order and returns the
// number of footprints placed.
func (s *footprintSync) run(template *pcb.Board) int {
	placed := 0
	for _, src := range template.Footprints {
		if s.skipOOB && !inBounds(src) {
			s.log.Debug("template footprint out of bounds, not replicated", "reference", src.Reference())
			continue
		}
		dst, ok := s.resolver.Resolve(src)
		if !ok {
			s.report.warn("footprint not found in target",
				"reference", src.Reference(), "path", s.resolver.Path(src))
			continue
		}
		s.place(src, dst)
		s.copyFields(src, dst)
		s.matchPads(src, dst)
		s.custody.Move(dst)
		s.log.Debug("footprint placed",
			"reference", dst.Reference(), "path", dst.Path(), "position", dst.Position(), "orientation", dst.Orientation())
		placed++
	}
	return placed
}

// place copies side, local rule overrides, position and orientation.
// Position and orientation go first so that fields are placed relative to
// the final footprint frame.
func (s *footprintSync) place(src, dst *pcb.Footprint) {
	if src.IsFlipped() != dst.IsFlipped() {
		dst.Flip()
	}
	dst.SetLocalSettings(src.LocalSettings())
	dst.SetPosition(s.xf.Translate(src.Position()))
	dst.SetOrientation(s.xf.Orient(src.Orientation()))
}

// copyFields places the target's fields like the template's, matched by
// name. The reference text of the target is kept.
func (s *footprintSync) copyFields(src, dst *pcb.Footprint) {
	srcFields, dstFields := src.Fields(), dst.Fields()
	if len(srcFields) != len(dstFields) {
		s.report.warn("field count differs, fields not placed",
			"reference", dst.Reference(), "template", len(srcFields), "target", len(dstFields))
		return
	}

	ref := dst.Reference()
	for _, f := range dstFields {
		tf, ok := src.FieldByName(f.Name())
		if !ok {
			s.report.warn("field missing in template",
				"reference", ref, "field", f.Name())
			continue
		}
		f.SetPosition(s.xf.Translate(tf.Position()))
		f.SetOrientation(s.xf.Orient(tf.Orientation()))
	}
	dst.SetReference(ref)
}

// matchPads records the net of every template pad against its target pad.
func (s *footprintSync) matchPads(src, dst *pcb.Footprint) {
	srcPads, dstPads := src.Pads(), dst.Pads()

	if s.padMatch == config.PadMatchNumber {
		byNumber := make(map[string][]*pcb.Pad)
		for _, p := range dstPads {
			byNumber[p.Number()] = append(byNumber[p.Number()], p)
		}
		for _, p := range srcPads {
			candidates := byNumber[p.Number()]
			if len(candidates) == 0 {
				s.report.warn("pad missing in target",
					"reference", dst.Reference(), "pad", p.Number())
				continue
			}
			s.nets.Record(p.Net(), candidates[0].Net())
			byNumber[p.Number()] = candidates[1:]
		}
		return
	}

	if len(dstPads) < len(srcPads) {
		s.report.warn("target footprint has fewer pads",
			"reference", dst.Reference(), "template", len(srcPads), "target", len(dstPads))
	}
	for i, p := range srcPads {
		if i >= len(dstPads) {
			break
		}
		s.nets.Record(p.Net(), dstPads[i].Net())
	}
}
