package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/hierpcb/internal/hierarchy"
)

var showPaths bool

var treeCmd = &cobra.Command{
	Use:   "tree <board_file>",
	Short: "Show the sheet hierarchy",
	Long: `Print the sheets that can be replicated, with their saved state:

  [x] enabled   [ ] disabled   [-] some instances below enabled

Sheets with nothing to replicate below them are not shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVarP(&showPaths, "paths", "p", false, "show uuid paths")
}

func runTree(cmd *cobra.Command, args []string) error {
	p, err := openProject(args[0], false)
	if err != nil {
		return err
	}
	defer p.log.Sync()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", hierarchy.StateOf(p.hier.Root), filepath.Base(p.hier.RootSheet.Path))
	for _, child := range p.hier.Root.Children {
		printNode(out, child, 1)
	}
	if len(p.hier.Root.Children) == 0 {
		fmt.Fprintln(out, "  (no sheet with a layout)")
	}
	return nil
}

func printNode(out io.Writer, n hierarchy.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s %s", indent, hierarchy.StateOf(n), n.Name())
	if l, ok := n.(*hierarchy.Leaf); ok {
		line += fmt.Sprintf("  (%s, anchor %s)",
			filepath.Base(l.Instance.Room.SheetPath), l.Instance.Room.Anchor().Reference())
	}
	if showPaths {
		line += "  " + n.UUIDPath()
	}
	fmt.Fprintln(out, line)

	if b, ok := n.(*hierarchy.Branch); ok {
		for _, child := range b.Children {
			printNode(out, child, depth+1)
		}
	}
}
