package replicate

import "github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"

// NetMap maps template net numbers to target net numbers. It is built
// from matched pads during one instance run.
type NetMap struct {
	codes map[int]int
}

func NewNetMap() *NetMap {
	return &NetMap{codes: make(map[int]int)}
}

// Record maps a template net to a target net. The last record wins.
func (m *NetMap) Record(template, target int) {
	m.codes[template] = target
}

// Len returns the number of mapped nets.
func (m *NetMap) Len() int { return len(m.codes) }

// Lookup returns the target net number, or 0 when the template net was
// never seen on a matched pad.
func (m *NetMap) Lookup(template int) int {
	return m.codes[template]
}

// Resolve returns the target board's net for a template net. Unknown nets
// resolve to the board's unconnected net.
func (m *NetMap) Resolve(board *pcb.Board, template int) *pcb.Net {
	if n, ok := board.FindNet(m.Lookup(template)); ok {
		return n
	}
	return board.NoNet()
}
