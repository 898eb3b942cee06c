package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose      bool
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "hierpcb",
	Short: "Hierarchical PCB layout replication for KiCad",
	Long: `hierpcb copies the layout of a hierarchical sheet onto every place the
sheet is used in a KiCad design.

Each sheet file can have a layout of its own next to it (amp.kicad_sch ->
amp.kicad_pcb). For every enabled instance of the sheet, hierpcb places the
instance's footprints like the template's, then recreates the template's
tracks, vias, drawings and zones inside a group owned by that instance.

Examples:
  hierpcb tree board.kicad_pcb                        # Show sheets and their state
  hierpcb anchors board.kicad_pcb                     # Show anchor footprints
  hierpcb apply board.kicad_pcb --all                 # Replicate every instance
  hierpcb apply board.kicad_pcb --enable "Channel A"  # Enable one instance and run`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "YAML settings file")
}
