package hierarchy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/hierpcb/internal/config"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

type recorder struct {
	warnings []string
	errors   []string
}

func (r *recorder) Info(string, ...interface{})         {}
func (r *recorder) Warn(msg string, _ ...interface{})  { r.warnings = append(r.warnings, msg) }
func (r *recorder) Error(msg string, _ ...interface{}) { r.errors = append(r.errors, msg) }

func sheetSymbol(uuid, name, file string) string {
	return fmt.Sprintf(`(sheet (at 10 10) (size 20 10) (uuid "%s")
		(property "Sheetname" "%s" (at 10 9 0))
		(property "Sheetfile" "%s" (at 10 21 0)))`, uuid, name, file)
}

func schematicFile(uuid string, sheets ...string) string {
	out := fmt.Sprintf("(kicad_sch (version 20231120) (generator \"eeschema\") (uuid \"%s\")\n", uuid)
	for _, s := range sheets {
		out += s + "\n"
	}
	return out + ")"
}

const ampBoard = `(kicad_pcb (version 20221018) (generator pcbnew)
  (net 0 "")
  (net 1 "IN")
  (footprint "R:R_0603" (layer "F.Cu") (tstamp "fr1") (at 10 10)
    (path "/a/r1")
    (fp_text reference "R1" (at 0 -1.5) (layer "F.SilkS") (effects (font (size 1 1))))
    (pad "1" smd rect (at -1 0) (size 1 1) (layers "F.Cu") (net 1 "IN"))
    (pad "2" smd rect (at 1 0) (size 1 1) (layers "F.Cu") (net 0 "")))
  (footprint "P:SOIC8" (layer "F.Cu") (tstamp "fu1") (at 20 10)
    (path "/a/u1")
    (fp_text reference "U1" (at 0 -4) (layer "F.SilkS") (effects (font (size 1 1))))
    (pad "1" smd rect (at -3 -2) (size 1.5 0.6) (layers "F.Cu") (net 1 "IN"))
    (pad "8" smd rect (at 3 2) (size 1.5 0.6) (layers "F.Cu") (net 0 "")))
  (footprint "R:R_0603" (layer "F.Cu") (tstamp "fr2") (at 30 10)
    (path "/a/r2")
    (fp_text reference "R2" (at 0 -1.5) (layer "F.SilkS") (effects (font (size 1 1))))
    (pad "1" smd rect (at -1 0) (size 1 1) (layers "F.Cu") (net 0 "")))
  (footprint "MH:Hole" (layer "F.Cu") (tstamp "fh1") (at 40 10)
    (fp_text reference "H1" (at 0 -3) (layer "F.SilkS") (effects (font (size 1 1)))))
)`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// design lays out:
//
//	root
//	  A -> amp        (leaf)
//	  B -> amp        (leaf)
//	  C -> empty      (no layout, no children: pruned)
//	  D -> group      (no layout)
//	       E -> amp   (leaf)
func design(t *testing.T) string {
	return writeFiles(t, map[string]string{
		"root.kicad_sch": schematicFile("root-uuid",
			sheetSymbol("sa", "A", "amp.kicad_sch"),
			sheetSymbol("sb", "B", "amp.kicad_sch"),
			sheetSymbol("sc", "C", "empty.kicad_sch"),
			sheetSymbol("sd", "D", "group.kicad_sch"),
		),
		"amp.kicad_sch":   schematicFile("amp-uuid"),
		"amp.kicad_pcb":   ampBoard,
		"empty.kicad_sch": schematicFile("empty-uuid"),
		"group.kicad_sch": schematicFile("group-uuid", sheetSymbol("se", "E", "amp.kicad_sch")),
	})
}

func TestBuild(t *testing.T) {
	dir := design(t)
	log := &recorder{}

	h, err := Build(filepath.Join(dir, "root.kicad_sch"), log)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "root.kicad_pcb"), h.BoardPath)
	require.Len(t, h.Rooms, 1, "one room per sheet file")
	room := h.Rooms[0]
	assert.Equal(t, "amp-uuid", room.Key())
	assert.Equal(t, filepath.Join(dir, "amp.kicad_pcb"), room.BoardPath)
	assert.Len(t, room.Instances, 3)
	assert.ElementsMatch(t, []string{"R1", "U1", "R2"}, room.AnchorRefs(), "footprints without a path are not candidates")

	require.Len(t, h.Root.Children, 3, spew.Sdump(h.Root.Children))
	a, ok := h.Root.Children[0].(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "/sa", a.UUIDPath())
	assert.Equal(t, "A", a.Name())
	assert.Same(t, h.Root, a.Parent())

	d, ok := h.Root.Children[2].(*Branch)
	require.True(t, ok, "D has a layout below it")
	require.Len(t, d.Children, 1)
	e := d.Children[0].(*Leaf)
	assert.Equal(t, "/sd/se", e.UUIDPath())
	assert.Equal(t, "D/E", NamePath(e))
	assert.Same(t, room, e.Instance.Room)

	_, found := Find(h.Root, "/sc")
	assert.False(t, found, "C has nothing to replicate")
	assert.Empty(t, log.errors)
}

func TestBuildRootErrors(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.kicad_sch"), &recorder{})
	assert.ErrorIs(t, err, ErrRootSchematic)

	dir := writeFiles(t, map[string]string{"root.kicad_sch": "(kicad_pcb (version 20221018))"})
	_, err = Build(filepath.Join(dir, "root.kicad_sch"), &recorder{})
	assert.ErrorIs(t, err, ErrRootSchematic)
}

func TestBuildCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.kicad_sch": schematicFile("r", sheetSymbol("s1", "Loop", "loop.kicad_sch")),
		"loop.kicad_sch": schematicFile("l", sheetSymbol("s2", "Again", "loop.kicad_sch")),
	})
	_, err := Build(filepath.Join(dir, "root.kicad_sch"), &recorder{})
	assert.ErrorIs(t, err, ErrSheetCycle)
}

func TestBuildDegradesOnBadSheets(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.kicad_sch": schematicFile("r",
			sheetSymbol("s1", "Broken", "broken.kicad_sch"),
			sheetSymbol("s2", "Missing", "missing.kicad_sch"),
			sheetSymbol("s3", "NoParts", "noparts.kicad_sch"),
			sheetSymbol("s4", "Good", "amp.kicad_sch"),
		),
		"broken.kicad_sch":  "(kicad_sch (version",
		"noparts.kicad_sch": schematicFile("n"),
		"noparts.kicad_pcb": "(kicad_pcb (version 20221018) (generator pcbnew) (net 0 \"\"))",
		"amp.kicad_sch":     schematicFile("amp-uuid"),
		"amp.kicad_pcb":     ampBoard,
	})
	log := &recorder{}

	h, err := Build(filepath.Join(dir, "root.kicad_sch"), log)
	require.NoError(t, err)

	require.Len(t, h.Leaves(), 1)
	assert.Equal(t, "Good", h.Leaves()[0].Name())
	assert.Len(t, log.errors, 2, "broken and missing sheets are reported")
}

func TestBuildDuplicateInstancePath(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.kicad_sch": schematicFile("r",
			sheetSymbol("same", "One", "amp.kicad_sch"),
			sheetSymbol("same", "Two", "amp.kicad_sch"),
		),
		"amp.kicad_sch": schematicFile("amp-uuid"),
		"amp.kicad_pcb": ampBoard,
	})
	log := &recorder{}

	h, err := Build(filepath.Join(dir, "root.kicad_sch"), log)
	require.NoError(t, err)
	assert.Len(t, h.Leaves(), 2)
	assert.Len(t, log.warnings, 1)
}

func TestDefaultAnchor(t *testing.T) {
	h, err := Build(filepath.Join(design(t), "root.kicad_sch"), &recorder{})
	require.NoError(t, err)

	room := h.Rooms[0]
	assert.Equal(t, "R2", room.Anchor().Reference(), "smallest pad area wins")

	assert.True(t, room.SetAnchor("U1"))
	assert.Equal(t, "U1", room.Anchor().Reference())
}

func anchorFootprint(ref string, padW, padH float64) string {
	return fmt.Sprintf(`  (footprint "X:X" (layer "F.Cu") (tstamp "t-%s") (at 0 0)
    (path "/%s")
    (fp_text reference "%s" (at 0 -2) (layer "F.SilkS") (effects (font (size 1 1))))
    (pad "1" smd rect (at 0 0) (size %g %g) (layers "F.Cu") (net 0 "")))
`, ref, ref, ref, padW, padH)
}

func TestDefaultAnchorTieBreaks(t *testing.T) {
	tests := []struct {
		name       string
		footprints []string
		want       string
	}{
		{
			name: "smallest area",
			footprints: []string{
				anchorFootprint("U1", 3, 3),
				anchorFootprint("C1", 0.5, 0.5),
				anchorFootprint("R1", 1, 1),
			},
			want: "C1",
		},
		{
			name: "rarest prefix on equal area",
			footprints: []string{
				anchorFootprint("R1", 1, 1),
				anchorFootprint("R2", 1, 1),
				anchorFootprint("D1", 1, 1),
			},
			want: "D1",
		},
		{
			name: "alphabetical on equal area and prefix count",
			footprints: []string{
				anchorFootprint("R2", 1, 1),
				anchorFootprint("C7", 1, 1),
				anchorFootprint("L3", 1, 1),
			},
			want: "C7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "(kicad_pcb (version 20221018) (generator pcbnew)\n  (net 0 \"\")\n" +
				strings.Join(tt.footprints, "") + ")"
			board, err := pcb.Parse(strings.NewReader(input))
			require.NoError(t, err)

			room := &Room{Board: board, Candidates: board.Footprints, log: &recorder{}}
			assert.Equal(t, tt.want, room.DefaultAnchor().Reference(), spew.Sdump(room.AnchorRefs()))
		})
	}
}

func TestAnchorFallback(t *testing.T) {
	log := &recorder{}
	h, err := Build(filepath.Join(design(t), "root.kicad_sch"), log)
	require.NoError(t, err)

	room := h.Rooms[0]
	assert.False(t, room.SetAnchor("X99"))
	assert.Same(t, room.Candidates[0], room.Anchor())
	assert.Len(t, log.warnings, 1)
}

func TestRefPrefix(t *testing.T) {
	assert.Equal(t, "U", refPrefix("U12"))
	assert.Equal(t, "TP", refPrefix("TP3"))
	assert.Equal(t, "J", refPrefix("J"))
	assert.Equal(t, "", refPrefix("1A"))
}

func TestSelectionState(t *testing.T) {
	h, err := Build(filepath.Join(design(t), "root.kicad_sch"), &recorder{})
	require.NoError(t, err)

	assert.Equal(t, Unchecked, StateOf(h.Root))
	assert.Empty(t, EnabledLeaves(h.Root))

	d, ok := Find(h.Root, "D")
	require.True(t, ok)
	SetEnabled(d, true)
	assert.Equal(t, Checked, StateOf(d))
	assert.Equal(t, Mixed, StateOf(h.Root))
	assert.Equal(t, "[-]", StateOf(h.Root).String())

	SetEnabled(h.Root, true)
	assert.Equal(t, Checked, StateOf(h.Root))
	assert.Len(t, EnabledLeaves(h.Root), 3)

	a, ok := Find(h.Root, "/sa")
	require.True(t, ok)
	SetEnabled(a, false)
	assert.Equal(t, Unchecked, StateOf(a))
	assert.Len(t, EnabledLeaves(h.Root), 2)
}

func TestStoreLoadSave(t *testing.T) {
	dir := design(t)
	storePath := config.StorePath(filepath.Join(dir, "root.kicad_pcb"))

	h, err := Build(filepath.Join(dir, "root.kicad_sch"), &recorder{})
	require.NoError(t, err)
	b, _ := Find(h.Root, "/sb")
	SetEnabled(b, true)
	h.Rooms[0].SetAnchor("R1")

	store, err := config.Open(storePath)
	require.NoError(t, err)
	require.NoError(t, h.Save(store))

	again, err := Build(filepath.Join(dir, "root.kicad_sch"), &recorder{})
	require.NoError(t, err)
	reopened, err := config.Open(storePath)
	require.NoError(t, err)
	again.Load(reopened)

	enabled := EnabledLeaves(again.Root)
	require.Len(t, enabled, 1)
	assert.Equal(t, "/sb", enabled[0].UUIDPath())
	assert.Equal(t, "R1", again.Rooms[0].Anchor().Reference())
}

func TestHasValidBoard(t *testing.T) {
	empty := &Branch{name: "x"}
	assert.False(t, HasValidBoard(empty))

	leaf := &Leaf{Instance: &Instance{Name: "l"}}
	outer := &Branch{name: "o", Children: []Node{&Branch{name: "i", Children: []Node{leaf}}}}
	assert.True(t, HasValidBoard(outer))
	assert.Len(t, Leaves(outer), 1)
}
