package replicate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/hierpcb/internal/hierarchy"
	"github.com/OpenTraceLab/hierpcb/internal/logger"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// templateBoard is the layout of amp.kicad_sch. newProject anchors it on
// U1; TP1 sits outside the positive quadrant and is never replicated.
const templateBoard = `(kicad_pcb (version 20221018) (generator pcbnew)
  (net 0 "")
  (net 1 "SIG")
  (net 2 "GND")
  (footprint "P:IC" (layer "F.Cu") (tstamp "tpl-u1") (at 10 10)
    (path "/u1")
    (fp_text reference "U1" (at 0 -2) (layer "F.SilkS") (effects (font (size 1 1))))
    (fp_text value "IC" (at 0 2) (layer "F.Fab") (effects (font (size 1 1))))
    (pad "1" smd rect (at -1 0) (size 2 2) (layers "F.Cu") (net 1 "SIG"))
    (pad "2" smd rect (at 1 0) (size 2 2) (layers "F.Cu") (net 2 "GND")))
  (footprint "R:R_0603" (layer "F.Cu") (tstamp "tpl-r1") (at 20 10)
    (path "/r1")
    (fp_text reference "R1" (at 0 -1.5) (layer "F.SilkS") (effects (font (size 1 1))))
    (fp_text value "10k" (at 0 1.5) (layer "F.Fab") (effects (font (size 1 1))))
    (pad "1" smd rect (at -1 0) (size 1 1) (layers "F.Cu") (net 1 "SIG"))
    (pad "2" smd rect (at 1 0) (size 1 1) (layers "F.Cu") (net 2 "GND")))
  (footprint "TP:Pad" (layer "F.Cu") (tstamp "tpl-tp1") (at -5 -5)
    (path "/tp1")
    (fp_text reference "TP1" (at 0 -1) (layer "F.SilkS") (effects (font (size 1 1))))
    (pad "1" smd circle (at 0 0) (size 0.5 0.5) (layers "F.Cu") (net 1 "SIG")))
  (gr_line (start 10 5) (end 20 5) (layer "F.SilkS") (width 0.12) (tstamp "tpl-d1"))
  (segment (start 10 10) (end 15 10) (width 0.25) (layer "F.Cu") (net 1) (tstamp "tpl-s1"))
  (via (at 15 10) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (free) (net 1) (tstamp "tpl-v1"))
  (zone (net 2) (net_name "GND") (layer "F.Cu") (tstamp "tpl-z1")
    (polygon (pts (xy 10 12) (xy 20 12) (xy 20 14) (xy 10 14))))
)`

func targetFootprint(id, lib, ref, value, path string, x, y, angle float64, nets ...int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  (footprint %q (layer \"F.Cu\") (uuid %q) (at %g %g %g)\n", lib, id, x, y, angle)
	fmt.Fprintf(&sb, "    (property \"Reference\" %q (at 0 -3 %g) (layer \"F.SilkS\") (effects (font (size 1 1))))\n", ref, angle)
	fmt.Fprintf(&sb, "    (property \"Value\" %q (at 0 3 %g) (layer \"F.Fab\") (effects (font (size 1 1))))\n", value, angle)
	if path != "" {
		fmt.Fprintf(&sb, "    (path %q)\n", path)
	}
	for i, n := range nets {
		fmt.Fprintf(&sb, "    (pad \"%d\" smd rect (at %d 0 %g) (size 1 1) (layers \"F.Cu\") (net %d))\n", i+1, 2*i-1, angle, n)
	}
	sb.WriteString("  )\n")
	return sb.String()
}

// targetBoard places two instances of amp: A at (100, 100) unrotated and
// B at (200, 100) turned by 90 degrees.
func targetBoard(footprints ...string) string {
	return `(kicad_pcb (version 20240108) (generator "pcbnew")
  (net 0 "")
  (net 1 "/A/SIG")
  (net 2 "GND")
  (net 3 "/B/SIG")
` + strings.Join(footprints, "") + ")\n"
}

var (
	fpUA = targetFootprint("t-ua", "P:IC", "U1", "IC", "/sa/u1", 100, 100, 0, 1, 2)
	fpRA = targetFootprint("t-ra", "R:R_0603", "R1", "10k", "/sa/r1", 0, 0, 0, 1, 2)
	fpUB = targetFootprint("t-ub", "P:IC", "U2", "IC", "/sb/u1", 200, 100, 90, 3, 2)
	fpRB = targetFootprint("t-rb", "R:R_0603", "R2", "10k", "/sb/r1", 5, 5, 0, 3, 2)
)

func sheetSymbol(uuid, name, file string) string {
	return fmt.Sprintf(`(sheet (at 10 10) (size 20 10) (uuid %q)
		(property "Sheetname" %q (at 10 9 0))
		(property "Sheetfile" %q (at 10 21 0)))`, uuid, name, file)
}

// project is a loaded design ready to be replicated.
type project struct {
	dir       string
	hierarchy *hierarchy.Hierarchy
	board     *pcb.Board
	engine    *Engine
}

func newProject(t *testing.T, target string) *project {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"root.kicad_sch": `(kicad_sch (version 20231120) (generator "eeschema") (uuid "root")
			` + sheetSymbol("sa", "A", "amp.kicad_sch") + `
			` + sheetSymbol("sb", "B", "amp.kicad_sch") + `)`,
		"amp.kicad_sch":  `(kicad_sch (version 20231120) (generator "eeschema") (uuid "amp"))`,
		"amp.kicad_pcb":  templateBoard,
		"root.kicad_pcb": target,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	log := logger.NewNop()
	h, err := hierarchy.Build(filepath.Join(dir, "root.kicad_sch"), log)
	require.NoError(t, err)
	require.Len(t, h.Rooms, 1)
	require.True(t, h.Rooms[0].SetAnchor("U1"))
	board, err := pcb.ParseFile(h.BoardPath)
	require.NoError(t, err)

	return &project{
		dir:       dir,
		hierarchy: h,
		board:     board,
		engine:    NewEngine(board, nil, log),
	}
}

func (p *project) enable(t *testing.T, key string) {
	t.Helper()
	n, ok := hierarchy.Find(p.hierarchy.Root, key)
	require.True(t, ok, "no node %s", key)
	hierarchy.SetEnabled(n, true)
}

func (p *project) footprint(t *testing.T, path string) *pcb.Footprint {
	t.Helper()
	fp, ok := p.board.FindFootprintByPath(path)
	require.True(t, ok, "no footprint %s", path)
	return fp
}

func (p *project) group(t *testing.T, uuidPath string) *pcb.Group {
	t.Helper()
	g, ok := p.board.FindGroup("hierpcb:" + uuidPath)
	require.True(t, ok, "no group for %s", uuidPath)
	return g
}

func mustBoard(t *testing.T, input string) *pcb.Board {
	t.Helper()
	b, err := pcb.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return b
}

var idPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// snapshot renders every board item with generated identifiers masked, in
// a stable order.
func snapshot(b *pcb.Board) []string {
	var out []string
	for _, it := range b.Items() {
		out = append(out, idPattern.ReplaceAllString(it.Node().String(), "ID"))
	}
	sort.Strings(out)
	return out
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
