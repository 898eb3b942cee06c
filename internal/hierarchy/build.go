package hierarchy

import (
	"fmt"
	"path/filepath"

	"github.com/OpenTraceLab/hierpcb/internal/config"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/schematic"
)

// Hierarchy is the sheet tree of a design rooted at its top schematic.
type Hierarchy struct {
	Root      *Branch
	RootSheet *SheetFile
	BoardPath string  // the design's own layout, target of every run
	Rooms     []*Room // in discovery order

	sheets map[string]*SheetFile
	paths  map[string]*Instance
	log    Logger
}

// Build reads the root schematic and every sheet below it. Sheets whose
// layout is missing or unusable become branches; branches with no layout
// anywhere below them are dropped.
func Build(rootSchematic string, log Logger) (*Hierarchy, error) {
	abs, err := filepath.Abs(rootSchematic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootSchematic, err)
	}
	sch, err := schematic.ParseFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootSchematic, abs, err)
	}

	h := &Hierarchy{
		RootSheet: &SheetFile{Path: abs, Schematic: sch},
		BoardPath: BoardPath(abs),
		sheets:    make(map[string]*SheetFile),
		paths:     make(map[string]*Instance),
		log:       log,
	}
	h.sheets[abs] = h.RootSheet
	h.Root = &Branch{name: "Root", Sheet: h.RootSheet}

	stack := map[string]bool{abs: true}
	if err := h.expand(h.Root, stack); err != nil {
		return nil, err
	}

	log.Info("hierarchy loaded",
		"root", abs, "sheets", len(h.sheets), "rooms", len(h.Rooms), "instances", len(Leaves(h.Root)))
	return h, nil
}

func (h *Hierarchy) expand(parent *Branch, stack map[string]bool) error {
	dir := filepath.Dir(parent.Sheet.Path)
	for _, sheet := range parent.Sheet.Schematic.Sheets {
		if sheet.FileName == "" {
			h.log.Warn("sheet without file name", "sheet", sheet.Name, "parent", parent.Sheet.Path)
			continue
		}
		childPath := filepath.Clean(filepath.Join(dir, sheet.FileName))
		if stack[childPath] {
			return fmt.Errorf("%w: %s", ErrSheetCycle, childPath)
		}

		sf := h.sheet(childPath)
		if sf == nil {
			continue
		}
		uuidPath := parent.uuidPath + "/" + sheet.UUID

		if sf.Room != nil {
			inst := &Instance{
				Name:     sheet.Name,
				UUID:     sheet.UUID,
				UUIDPath: uuidPath,
				Room:     sf.Room,
				Parent:   parent,
			}
			if other, dup := h.paths[uuidPath]; dup {
				h.log.Warn("duplicate sheet instance uuid, instances share their settings",
					"path", uuidPath, "sheet", inst.Name, "other", other.Name)
			} else {
				h.paths[uuidPath] = inst
			}
			sf.Room.Instances = append(sf.Room.Instances, inst)
			parent.Children = append(parent.Children, &Leaf{Instance: inst})
			continue
		}

		child := &Branch{name: sheet.Name, uuidPath: uuidPath, parent: parent, Sheet: sf}
		stack[childPath] = true
		err := h.expand(child, stack)
		delete(stack, childPath)
		if err != nil {
			return err
		}
		if HasValidBoard(child) {
			parent.Children = append(parent.Children, child)
		}
	}
	return nil
}

// sheet returns the cached sheet file for path, loading it on first use.
// nil means the schematic could not be read.
func (h *Hierarchy) sheet(path string) *SheetFile {
	if sf, ok := h.sheets[path]; ok {
		return sf
	}

	sch, err := schematic.ParseFile(path)
	if err != nil {
		h.log.Error("failed to read sheet", "path", path, "error", err)
		h.sheets[path] = nil
		return nil
	}
	sf := &SheetFile{Path: path, Schematic: sch}
	h.sheets[path] = sf

	room, err := loadRoom(sf, h.log)
	if err != nil {
		h.log.Info("sheet has no layout", "path", path, "reason", err)
		return sf
	}
	sf.Room = room
	h.Rooms = append(h.Rooms, room)
	return sf
}

// Leaves returns every instance leaf of the design.
func (h *Hierarchy) Leaves() []*Leaf { return Leaves(h.Root) }

// Load applies the persisted enabled flags and anchors. Instances not in
// the store stay disabled.
func (h *Hierarchy) Load(store *config.Store) {
	for _, l := range h.Leaves() {
		l.Instance.Enabled = store.Bool(config.EnabledKey(l.Instance.UUIDPath), false)
	}
	for _, r := range h.Rooms {
		if ref := store.String(config.AnchorKey(r.Key()), ""); ref != "" {
			r.SetAnchor(ref)
		}
	}
}

// Save writes the enabled flags and anchors to the store and saves it.
func (h *Hierarchy) Save(store *config.Store) error {
	for _, l := range h.Leaves() {
		if err := store.Set(config.EnabledKey(l.Instance.UUIDPath), l.Instance.Enabled); err != nil {
			return err
		}
	}
	for _, r := range h.Rooms {
		if err := store.Set(config.AnchorKey(r.Key()), r.Anchor().Reference()); err != nil {
			return err
		}
	}
	return store.Save()
}
