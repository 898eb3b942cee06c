package pcb

import (
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Kind identifies the type of a board item.
type Kind int

const (
	KindFootprint Kind = iota
	KindSegment
	KindArc
	KindVia
	KindShape
	KindText
	KindZone
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindFootprint:
		return "footprint"
	case KindSegment:
		return "segment"
	case KindArc:
		return "arc"
	case KindVia:
		return "via"
	case KindShape:
		return "shape"
	case KindText:
		return "text"
	case KindZone:
		return "zone"
	case KindGroup:
		return "group"
	}
	return "unknown"
}

// IsVolatile reports whether items of this kind carry no identity across
// edits (tracks, vias, drawings and zones).
func (k Kind) IsVolatile() bool {
	switch k {
	case KindSegment, KindArc, KindVia, KindShape, KindText, KindZone:
		return true
	}
	return false
}

// kindOf maps a top level node name to its item kind.
func kindOf(name string) (Kind, bool) {
	switch name {
	case "footprint":
		return KindFootprint, true
	case "segment":
		return KindSegment, true
	case "arc":
		return KindArc, true
	case "via":
		return KindVia, true
	case "gr_line", "gr_rect", "gr_circle", "gr_arc", "gr_poly", "gr_curve":
		return KindShape, true
	case "gr_text", "gr_text_box":
		return KindText, true
	case "zone":
		return KindZone, true
	case "group":
		return KindGroup, true
	}
	return 0, false
}

// Item is anything placed on a board that has its own node in the file.
type Item interface {
	Kind() Kind
	// UUID returns the item's identifier, or "" when the file holds none.
	UUID() string
	// Node returns the backing s-expression. Edits to it are edits to the board.
	Node() *kicadsexp.List
	// Board returns the owning board, or nil for a detached item.
	Board() *Board

	base() *item
}

// item is the state shared by every board item.
type item struct {
	node  *kicadsexp.List
	board *Board
}

func (it *item) Node() *kicadsexp.List { return it.node }
func (it *item) Board() *Board         { return it.board }
func (it *item) base() *item           { return it }

func (it *item) UUID() string {
	id, _ := sexp.GetUUID(it.node)
	return id
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		// Only index non-empty names
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// IsUnconnected checks if a net number represents an unconnected net
// In KiCad, net 0 is reserved for unconnected pins
func (nm *NetMap) IsUnconnected(num int) bool {
	return num == 0
}

// LocalSettings are the per-footprint overrides of board design rules.
// Nil fields are unset in the file.
type LocalSettings struct {
	Clearance         *float64 // mm
	SolderMaskMargin  *float64 // mm
	SolderPasteMargin *float64 // mm
	SolderPasteRatio  *float64
	ZoneConnect       *int
}
