package replicate

import (
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// GetOrCreate returns the board's group with the given name, creating it
// when missing.
func GetOrCreate(board *pcb.Board, name string) (*pcb.Group, error) {
	if g, ok := board.FindGroup(name); ok {
		return g, nil
	}
	return board.NewGroup(name)
}

// Custodian keeps the items of one instance in its managed group.
type Custodian struct {
	board *pcb.Board
	group *pcb.Group
}

func NewCustodian(board *pcb.Board, group *pcb.Group) *Custodian {
	return &Custodian{board: board, group: group}
}

// Group returns the managed group.
func (c *Custodian) Group() *pcb.Group { return c.group }

// Move takes the item out of any other group and adds it to the managed
// group. It reports whether the membership changed.
func (c *Custodian) Move(it pcb.Item) bool {
	changed := false
	for _, g := range c.board.Groups {
		if g != c.group && g.Has(it.UUID()) {
			g.RemoveItem(it)
			changed = true
		}
	}
	if c.group.AddItem(it) {
		changed = true
	}
	return changed
}
