package pcb

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Footprint is a placed component.
//
// Child coordinates (pads, texts, graphics) are stored relative to the
// footprint and unrotated, while pad and text angles are stored absolute.
// Zones inside a footprint use board coordinates.
type Footprint struct {
	item
}

func (fp *Footprint) Kind() Kind { return KindFootprint }

// Name returns the library identifier, e.g. "Resistor_SMD:R_0603".
func (fp *Footprint) Name() string {
	v, _ := sexp.GetString(fp.node, 1)
	return v
}

// Path returns the hierarchical path "/sheet-uuid/.../symbol-uuid" that
// ties the footprint to its schematic symbol.
func (fp *Footprint) Path() string {
	p, _ := sexp.GetNodeString(fp.node, "path")
	return p
}

// Layer returns the footprint side, F.Cu or B.Cu.
func (fp *Footprint) Layer() string {
	layer, _ := sexp.GetNodeString(fp.node, "layer")
	return layer
}

// IsFlipped reports whether the footprint sits on the bottom side.
func (fp *Footprint) IsFlipped() bool {
	return fp.Layer() == "B.Cu"
}

func (fp *Footprint) at() *kicadsexp.List {
	node, ok := sexp.FindNode(fp.node, "at")
	if !ok {
		node = kicadsexp.NewList(kicadsexp.Symbol("at"), kicadsexp.Symbol("0"), kicadsexp.Symbol("0"))
		fp.node.Append(node)
	}
	return node
}

// Position returns the footprint origin.
func (fp *Footprint) Position() geom.Point {
	p, _ := sexp.GetPoint(fp.at())
	return p
}

// Orientation returns the footprint rotation.
func (fp *Footprint) Orientation() geom.Angle {
	return sexp.GetAngle(fp.at()).Normalize()
}

// SetPosition moves the footprint origin to p.
func (fp *Footprint) SetPosition(p geom.Point) {
	delta := p.Sub(fp.Position())
	sexp.SetPoint(fp.at(), p)
	for _, zone := range sexp.FindAllNodes(fp.node, "zone") {
		moveCoords(zone, delta)
	}
}

// SetOrientation rotates the footprint about its origin to angle a. The
// absolute angles of pads and texts turn with it.
func (fp *Footprint) SetOrientation(a geom.Angle) {
	delta := a - fp.Orientation()
	sexp.SetAngle(fp.at(), a)
	if delta.IsZero() {
		return
	}
	for _, child := range sexp.Children(fp.node) {
		switch child.Name() {
		case "pad", "fp_text", "property":
			if at, ok := sexp.FindNode(child, "at"); ok {
				sexp.SetAngle(at, sexp.GetAngle(at)+delta)
			}
		case "zone":
			rotateCoords(child, fp.Position(), delta)
		}
	}
}

// TransformPosition converts a footprint-local position into board
// coordinates.
func (fp *Footprint) TransformPosition(local geom.Point) geom.Point {
	return geom.Rotate(local, fp.Orientation()).Add(fp.Position())
}

// localPosition converts board coordinates into the footprint frame.
func (fp *Footprint) localPosition(abs geom.Point) geom.Point {
	return geom.Rotate(abs.Sub(fp.Position()), -fp.Orientation())
}

// Flip moves the footprint to the other side of the board, mirroring it
// top to bottom about its own origin.
func (fp *Footprint) Flip() {
	origin := fp.Position()
	own := fp.at()
	for _, child := range sexp.Children(fp.node) {
		switch {
		case child == own:
		case child.Name() == "zone":
			mirrorAbsolute(child, origin.Y)
		case child.Name() == "model":
		default:
			mirrorLocal(child)
		}
	}
	sexp.SetAngle(own, -fp.Orientation())
	swapLayers(fp.node)
}

// mirrorLocal negates the Y of every coordinate below l, the angle of
// (at x y angle) nodes, and toggles text mirroring.
func mirrorLocal(l *kicadsexp.List) {
	if isCoordNode(l.Name()) {
		if p, err := sexp.GetPoint(l); err == nil {
			sexp.SetPoint(l, geom.Point{X: p.X, Y: -p.Y})
		}
		if l.Name() == "at" {
			sexp.SetAngle(l, -sexp.GetAngle(l))
		}
		return
	}
	if l.Name() == "effects" {
		toggleMirror(l)
		return
	}
	for _, child := range sexp.Children(l) {
		mirrorLocal(child)
	}
}

// mirrorAbsolute mirrors board coordinates about the horizontal line y.
func mirrorAbsolute(l *kicadsexp.List, y int64) {
	for _, child := range sexp.Children(l) {
		if isCoordNode(child.Name()) {
			if p, err := sexp.GetPoint(child); err == nil {
				sexp.SetPoint(child, geom.Point{X: p.X, Y: 2*y - p.Y})
			}
			continue
		}
		mirrorAbsolute(child, y)
	}
}

// toggleMirror flips the mirror flag in an (effects ... (justify ...)) node.
func toggleMirror(effects *kicadsexp.List) {
	justify, ok := sexp.FindNode(effects, "justify")
	if !ok {
		effects.Append(kicadsexp.NewList(kicadsexp.Symbol("justify"), kicadsexp.Symbol("mirror")))
		return
	}
	for i := 1; i < justify.Len(); i++ {
		if sym, ok := justify.Get(i).(kicadsexp.Symbol); ok && sym == "mirror" {
			justify.Remove(i)
			if justify.Len() == 1 {
				effects.RemoveNode(justify)
			}
			return
		}
	}
	justify.Append(kicadsexp.Symbol("mirror"))
}

// swapLayers exchanges front and back layer names below l.
func swapLayers(l *kicadsexp.List) {
	for _, child := range sexp.Children(l) {
		if child.Name() != "layer" && child.Name() != "layers" {
			swapLayers(child)
			continue
		}
		for i := 1; i < child.Len(); i++ {
			switch v := child.Get(i).(type) {
			case kicadsexp.QString:
				child.Set(i, kicadsexp.QString(flipLayerName(string(v))))
			case kicadsexp.Symbol:
				child.Set(i, kicadsexp.Symbol(flipLayerName(string(v))))
			}
		}
	}
}

func flipLayerName(name string) string {
	switch {
	case strings.HasPrefix(name, "F."):
		return "B." + name[2:]
	case strings.HasPrefix(name, "B."):
		return "F." + name[2:]
	}
	return name
}

// Local setting tokens. KiCad 8 renamed the paste ratio on footprints.
var (
	clearanceKeys   = []string{"clearance"}
	maskMarginKeys  = []string{"solder_mask_margin"}
	pasteMarginKeys = []string{"solder_paste_margin"}
	pasteRatioKeys  = []string{"solder_paste_ratio", "solder_paste_margin_ratio"}
	zoneConnectKeys = []string{"zone_connect"}
)

func (fp *Footprint) findSetting(keys []string) (*kicadsexp.List, bool) {
	for _, key := range keys {
		if node, ok := sexp.FindNode(fp.node, key); ok {
			return node, true
		}
	}
	return nil, false
}

func (fp *Footprint) floatSetting(keys []string) *float64 {
	node, ok := fp.findSetting(keys)
	if !ok {
		return nil
	}
	v, err := sexp.GetFloat(node, 1)
	if err != nil {
		return nil
	}
	return &v
}

// LocalSettings returns the footprint's design rule overrides.
func (fp *Footprint) LocalSettings() LocalSettings {
	s := LocalSettings{
		Clearance:         fp.floatSetting(clearanceKeys),
		SolderMaskMargin:  fp.floatSetting(maskMarginKeys),
		SolderPasteMargin: fp.floatSetting(pasteMarginKeys),
		SolderPasteRatio:  fp.floatSetting(pasteRatioKeys),
	}
	if node, ok := fp.findSetting(zoneConnectKeys); ok {
		if v, err := sexp.GetInt(node, 1); err == nil {
			s.ZoneConnect = &v
		}
	}
	return s
}

// SetLocalSettings writes the overrides; nil fields are removed.
func (fp *Footprint) SetLocalSettings(s LocalSettings) {
	fp.setFloat(clearanceKeys, s.Clearance)
	fp.setFloat(maskMarginKeys, s.SolderMaskMargin)
	fp.setFloat(pasteMarginKeys, s.SolderPasteMargin)
	fp.setFloat(pasteRatioKeys, s.SolderPasteRatio)

	var zc *kicadsexp.Symbol
	if s.ZoneConnect != nil {
		v := kicadsexp.Symbol(strconv.Itoa(*s.ZoneConnect))
		zc = &v
	}
	fp.setSetting(zoneConnectKeys, zc)
}

func (fp *Footprint) setFloat(keys []string, v *float64) {
	if v == nil {
		fp.setSetting(keys, nil)
		return
	}
	sym := kicadsexp.Symbol(strconv.FormatFloat(*v, 'f', -1, 64))
	fp.setSetting(keys, &sym)
}

// setSetting replaces, inserts or removes a single value setting. New
// settings go right after the footprint's (at ...) node.
func (fp *Footprint) setSetting(keys []string, v *kicadsexp.Symbol) {
	node, ok := fp.findSetting(keys)
	switch {
	case v == nil && ok:
		fp.node.RemoveNode(node)
	case v == nil:
	case ok:
		node.Set(1, *v)
	default:
		idx := fp.node.IndexOf(fp.at()) + 1
		fp.node.Insert(idx, kicadsexp.NewList(kicadsexp.Symbol(keys[0]), *v))
	}
}

// Pads returns the footprint's pads in file order.
func (fp *Footprint) Pads() []*Pad {
	var pads []*Pad
	for _, node := range sexp.FindAllNodes(fp.node, "pad") {
		pads = append(pads, &Pad{node: node, fp: fp})
	}
	return pads
}

// Fields returns the placed text fields: every property carrying a
// position and the reference and value texts of older files.
func (fp *Footprint) Fields() []*Field {
	var fields []*Field
	for _, child := range sexp.Children(fp.node) {
		switch child.Name() {
		case "property":
			if _, ok := sexp.FindNode(child, "at"); !ok {
				continue
			}
			name, err := sexp.GetString(child, 1)
			if err != nil {
				continue
			}
			fields = append(fields, &Field{node: child, fp: fp, name: name})
		case "fp_text":
			kind, _ := sexp.GetString(child, 1)
			switch kind {
			case "reference":
				fields = append(fields, &Field{node: child, fp: fp, name: "Reference"})
			case "value":
				fields = append(fields, &Field{node: child, fp: fp, name: "Value"})
			}
		}
	}
	return fields
}

// FieldByName returns the field with the given name.
func (fp *Footprint) FieldByName(name string) (*Field, bool) {
	for _, f := range fp.Fields() {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// Reference returns the reference designator (e.g., "R1").
func (fp *Footprint) Reference() string {
	if f, ok := fp.FieldByName("Reference"); ok {
		return f.Text()
	}
	for _, prop := range sexp.FindAllNodes(fp.node, "property") {
		if name, _ := sexp.GetString(prop, 1); name == "Reference" {
			ref, _ := sexp.GetString(prop, 2)
			return ref
		}
	}
	return ""
}

// SetReference sets the reference designator everywhere it is stored.
func (fp *Footprint) SetReference(ref string) {
	for _, child := range sexp.Children(fp.node) {
		name, _ := sexp.GetString(child, 1)
		if (child.Name() == "property" && name == "Reference") ||
			(child.Name() == "fp_text" && name == "reference") {
			if child.Len() > 2 {
				child.Set(2, kicadsexp.QString(ref))
			}
		}
	}
}

// Value returns the component value.
func (fp *Footprint) Value() string {
	if f, ok := fp.FieldByName("Value"); ok {
		return f.Text()
	}
	return ""
}

// Pad is a footprint pad
type Pad struct {
	node *kicadsexp.List
	fp   *Footprint
}

// Number returns the pad number or name, e.g. "1" or "A3".
func (p *Pad) Number() string {
	v, _ := sexp.GetString(p.node, 1)
	return v
}

// Net returns the pad's net number, 0 when unconnected.
func (p *Pad) Net() int {
	node, ok := sexp.FindNode(p.node, "net")
	if !ok {
		return 0
	}
	n, err := sexp.GetInt(node, 1)
	if err != nil {
		return 0
	}
	return n
}

// NetName returns the pad's net name.
func (p *Pad) NetName() string {
	node, ok := sexp.FindNode(p.node, "net")
	if !ok {
		return ""
	}
	name, _ := sexp.GetString(node, 2)
	return name
}

// Position returns the pad centre in board coordinates.
func (p *Pad) Position() geom.Point {
	node, ok := sexp.FindNode(p.node, "at")
	if !ok {
		return p.fp.Position()
	}
	local, _ := sexp.GetPoint(node)
	return p.fp.TransformPosition(local)
}

// Size returns the pad's width and height.
func (p *Pad) Size() geom.Point {
	node, ok := sexp.FindNode(p.node, "size")
	if !ok {
		return geom.Point{}
	}
	s, _ := sexp.GetPoint(node)
	return s
}

// Field is a footprint text field such as Reference or Value.
type Field struct {
	node *kicadsexp.List
	fp   *Footprint
	name string
}

// Name returns the field name
func (f *Field) Name() string { return f.name }

// Text returns the field's text
func (f *Field) Text() string {
	v, _ := sexp.GetString(f.node, 2)
	return v
}

// SetText replaces the field's text
func (f *Field) SetText(text string) {
	if f.node.Len() > 2 {
		f.node.Set(2, kicadsexp.QString(text))
	}
}

// Position returns the field anchor in board coordinates.
func (f *Field) Position() geom.Point {
	node, ok := sexp.FindNode(f.node, "at")
	if !ok {
		return f.fp.Position()
	}
	local, _ := sexp.GetPoint(node)
	return f.fp.TransformPosition(local)
}

// SetPosition places the field anchor at a board coordinate.
func (f *Field) SetPosition(p geom.Point) {
	node, ok := sexp.FindNode(f.node, "at")
	if !ok {
		return
	}
	sexp.SetPoint(node, f.fp.localPosition(p))
}

// Orientation returns the text angle as shown on the board.
func (f *Field) Orientation() geom.Angle {
	node, ok := sexp.FindNode(f.node, "at")
	if !ok {
		return 0
	}
	return sexp.GetAngle(node).Normalize()
}

// SetOrientation sets the text angle as shown on the board.
func (f *Field) SetOrientation(a geom.Angle) {
	if node, ok := sexp.FindNode(f.node, "at"); ok {
		sexp.SetAngle(node, a)
	}
}
