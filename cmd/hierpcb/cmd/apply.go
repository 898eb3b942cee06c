package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/hierpcb/internal/hierarchy"
	"github.com/OpenTraceLab/hierpcb/internal/replicate"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

var (
	enableNodes  []string
	disableNodes []string
	enableAll    bool
	anchorRefs   []string
	outputFile   string
	dryRun       bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <board_file>",
	Short: "Replicate sheet layouts onto the board",
	Long: `Replicate the layout of every enabled sheet instance onto the design's board.

Instances are selected by uuid path ("/3f2a.../91bc...") or by sheet name
path ("Channel A" or "Power/Regulator"). Selecting a sheet without a layout
of its own selects every instance below it. Selections and anchors are
remembered in <board>.projinst.json.

Footprints keep their identity and are only moved. Tracks, vias, drawings
and zones in an instance's group are deleted and recreated on every run.

Examples:
  # Replicate everything
  hierpcb apply board.kicad_pcb --all

  # Enable one instance, disable another
  hierpcb apply board.kicad_pcb --enable "Channel A" --disable "Channel B"

  # Use U3 as the anchor for amp.kicad_sch
  hierpcb apply board.kicad_pcb --anchor amp.kicad_sch=U3

  # Write the result elsewhere
  hierpcb apply board.kicad_pcb -o out.kicad_pcb`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringSliceVar(&enableNodes, "enable", nil,
		"enable instances (uuid path or sheet name path)")
	applyCmd.Flags().StringSliceVar(&disableNodes, "disable", nil,
		"disable instances (uuid path or sheet name path)")
	applyCmd.Flags().BoolVar(&enableAll, "all", false,
		"enable every instance")
	applyCmd.Flags().StringSliceVar(&anchorRefs, "anchor", nil,
		"anchor footprint per sheet file, as file=REF")
	applyCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"write the board to this file instead of in place")
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"run without writing the board or the saved selection")
}

func runApply(cmd *cobra.Command, args []string) error {
	p, err := openProject(args[0], !dryRun)
	if err != nil {
		return err
	}
	defer p.log.Sync()

	if err := p.applySelection(); err != nil {
		return err
	}
	if err := p.applyAnchors(); err != nil {
		return err
	}

	board, err := pcb.ParseFile(p.boardPath)
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	engine := replicate.NewEngine(board, p.settings, p.log)
	report, err := engine.ApplyChildren(p.hier.Root)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}
	printReport(cmd, report)

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run: nothing written")
		return nil
	}

	target := p.boardPath
	if outputFile != "" {
		target = outputFile
	}
	if err := board.SaveAs(target); err != nil {
		return fmt.Errorf("error writing board: %w", err)
	}
	if err := p.hier.Save(p.store); err != nil {
		return fmt.Errorf("error saving selection: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
	return nil
}

func (p *project) applySelection() error {
	if enableAll {
		hierarchy.SetEnabled(p.hier.Root, true)
	}
	for _, sel := range []struct {
		keys    []string
		enabled bool
	}{{enableNodes, true}, {disableNodes, false}} {
		for _, key := range sel.keys {
			n, ok := hierarchy.Find(p.hier.Root, key)
			if !ok {
				return fmt.Errorf("no sheet instance %q", key)
			}
			hierarchy.SetEnabled(n, sel.enabled)
		}
	}
	return nil
}

func (p *project) applyAnchors() error {
	for _, arg := range anchorRefs {
		file, ref, ok := strings.Cut(arg, "=")
		if !ok || file == "" || ref == "" {
			return fmt.Errorf("invalid --anchor %q (want file=REF)", arg)
		}
		room, found := p.room(file)
		if !found {
			return fmt.Errorf("no sheet layout %q", file)
		}
		room.SetAnchor(ref)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *replicate.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replicated %d instance(s)", r.Instances)
	if r.Skipped > 0 {
		fmt.Fprintf(out, ", skipped %d", r.Skipped)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Footprints placed: %d\n", r.Footprints)
	fmt.Fprintf(out, "  Tracks/vias:       %d\n", r.Traces)
	fmt.Fprintf(out, "  Drawings:          %d\n", r.Drawings)
	fmt.Fprintf(out, "  Zones:             %d\n", r.Zones)
	fmt.Fprintf(out, "  Items replaced:    %d\n", r.Removed)

	if len(r.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}
