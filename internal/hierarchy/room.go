package hierarchy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/schematic"
)

var errEmptyRoom = errors.New("board has no footprint with a schematic path")

// SheetFile is one schematic file of the design. Every instance of the
// file shares it, and with it the file's Room.
type SheetFile struct {
	Path      string // absolute .kicad_sch path
	Schematic *schematic.Schematic
	Room      *Room // nil when the sheet has no usable layout
}

// BoardPath returns the layout that belongs to a sheet file.
func BoardPath(sheetPath string) string {
	return strings.TrimSuffix(sheetPath, filepath.Ext(sheetPath)) + ".kicad_pcb"
}

// Room is the template layout of one sheet file.
type Room struct {
	SheetPath  string
	BoardPath  string
	Board      *pcb.Board
	Candidates []*pcb.Footprint // footprints that can serve as anchor
	Instances  []*Instance

	key    string
	anchor *pcb.Footprint
	log    Logger
}

// loadRoom reads the layout next to sheet. A missing, unreadable or empty
// layout returns an error and the sheet has no room.
func loadRoom(sheet *SheetFile, log Logger) (*Room, error) {
	boardPath := BoardPath(sheet.Path)
	if _, err := os.Stat(boardPath); err != nil {
		return nil, err
	}
	board, err := pcb.ParseFile(boardPath)
	if err != nil {
		return nil, err
	}

	r := &Room{
		SheetPath: sheet.Path,
		BoardPath: boardPath,
		Board:     board,
		key:       sheet.Path,
		log:       log,
	}
	if sheet.Schematic != nil && sheet.Schematic.UUID != "" {
		r.key = sheet.Schematic.UUID
	}
	for _, fp := range board.Footprints {
		if fp.Path() != "" && fp.Reference() != "" {
			r.Candidates = append(r.Candidates, fp)
		}
	}
	if len(r.Candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", boardPath, errEmptyRoom)
	}
	r.anchor = r.DefaultAnchor()
	return r, nil
}

// Key identifies the room in the persisted store.
func (r *Room) Key() string { return r.key }

// Anchor returns the selected anchor footprint of the template.
func (r *Room) Anchor() *pcb.Footprint { return r.anchor }

// AnchorRefs lists the references of every anchor candidate.
func (r *Room) AnchorRefs() []string {
	refs := make([]string, len(r.Candidates))
	for i, fp := range r.Candidates {
		refs[i] = fp.Reference()
	}
	return refs
}

// SetAnchor selects the anchor by reference. An unknown reference selects
// the first candidate and reports false. Footprints without a path are
// never candidates.
func (r *Room) SetAnchor(ref string) bool {
	for _, fp := range r.Candidates {
		if fp.Reference() == ref {
			r.anchor = fp
			return true
		}
	}
	r.anchor = r.Candidates[0]
	r.log.Warn("anchor not found, using first footprint",
		"room", r.SheetPath, "requested", ref, "anchor", r.anchor.Reference())
	return false
}

// DefaultAnchor picks the candidate with the smallest pad area, then the
// rarest reference prefix, then the first reference alphabetically.
func (r *Room) DefaultAnchor() *pcb.Footprint {
	prefixCount := make(map[string]int)
	for _, fp := range r.Candidates {
		prefixCount[refPrefix(fp.Reference())]++
	}

	type scored struct {
		fp     *pcb.Footprint
		area   int64
		prefix int
		ref    string
	}
	list := make([]scored, len(r.Candidates))
	for i, fp := range r.Candidates {
		list[i] = scored{
			fp:     fp,
			area:   fp.GetBoundingBox().Area(),
			prefix: prefixCount[refPrefix(fp.Reference())],
			ref:    fp.Reference(),
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.area != b.area {
			return a.area < b.area
		}
		if a.prefix != b.prefix {
			return a.prefix < b.prefix
		}
		return a.ref < b.ref
	})
	return list[0].fp
}

// refPrefix returns the leading letters of a reference ("U" for "U12").
func refPrefix(ref string) string {
	i := strings.IndexFunc(ref, func(r rune) bool { return !unicode.IsLetter(r) })
	if i < 0 {
		return ref
	}
	return ref[:i]
}
