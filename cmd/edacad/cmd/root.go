package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "edacad",
	Short: "OpenTraceCAD - KiCad design file tools",
	Long: `OpenTraceCAD (edacad) reads, validates and rewrites KiCad design
files through a lossless typed document model:
  - PCB layouts (.kicad_pcb)
  - Schematics (.kicad_sch)
  - Custom design rules (.kicad_dru)

Examples:
  edacad pcb info board.kicad_pcb      # Show board summary
  edacad sch info top.kicad_sch        # Show schematic summary
  edacad fmt --check board.kicad_pcb   # Verify canonical formatting
  edacad rules check rules.kicad_dru   # Validate design rules
  edacad check myproject/              # Run DRC/ERC via kicad-cli`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: edacad.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
