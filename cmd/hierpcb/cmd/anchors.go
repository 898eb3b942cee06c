package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/geom"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors <board_file>",
	Short: "List sheet layouts and their anchor footprints",
	Long: `List every sheet file that has a layout, the footprints that can anchor it
and the selected anchor (marked with *).

The anchor is the footprint whose position and rotation on the board
decide where each instance of the layout goes. Change it with
"hierpcb apply --anchor file=REF".`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchors,
}

func init() {
	rootCmd.AddCommand(anchorsCmd)
}

func runAnchors(cmd *cobra.Command, args []string) error {
	p, err := openProject(args[0], false)
	if err != nil {
		return err
	}
	defer p.log.Sync()

	out := cmd.OutOrStdout()
	if len(p.hier.Rooms) == 0 {
		fmt.Fprintln(out, "No sheet layouts found")
		return nil
	}
	for _, r := range p.hier.Rooms {
		fmt.Fprintf(out, "%s (%d instance(s))\n", filepath.Base(r.SheetPath), len(r.Instances))
		fmt.Fprintf(out, "  Layout: %s\n", r.BoardPath)
		for _, fp := range r.Candidates {
			mark := " "
			if fp == r.Anchor() {
				mark = "*"
			}
			bbox := fp.GetBoundingBox()
			fmt.Fprintf(out, "  %s %-8s %-24s %d pads, %.2f x %.2f mm\n",
				mark, fp.Reference(), fp.Name(), len(fp.Pads()),
				geom.ToMM(bbox.Width()), geom.ToMM(bbox.Height()))
		}
	}
	return nil
}
