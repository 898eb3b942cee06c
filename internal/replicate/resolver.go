package replicate

import (
	"strings"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// QualifiedPath joins an instance uuid path and a footprint path from the
// template board into the footprint's path on the target board.
func QualifiedPath(prefix, fragment string) string {
	p := prefix + "/" + fragment
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Resolver finds the target counterparts of template footprints for one
// instance.
type Resolver struct {
	board  *pcb.Board
	prefix string
}

// NewResolver returns a resolver for the instance at uuidPath.
func NewResolver(board *pcb.Board, uuidPath string) *Resolver {
	return &Resolver{board: board, prefix: uuidPath}
}

// Path returns the target path of a template footprint.
func (r *Resolver) Path(template *pcb.Footprint) string {
	return QualifiedPath(r.prefix, template.Path())
}

// Resolve returns the target footprint of a template footprint. A miss is
// normal: the instance may not have been updated from the schematic yet.
func (r *Resolver) Resolve(template *pcb.Footprint) (*pcb.Footprint, bool) {
	if template.Path() == "" {
		return nil, false
	}
	return r.board.FindFootprintByPath(r.Path(template))
}
