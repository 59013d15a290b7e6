package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/pcb"
)

var pcbCmd = &cobra.Command{
	Use:   "pcb",
	Short: "KiCad PCB file operations",
	Long:  `Commands for working with KiCad PCB files (.kicad_pcb)`,
}

var pcbInfoCmd = &cobra.Command{
	Use:   "info <board_file>",
	Short: "Show PCB file summary",
	Long: `Parse a PCB file and display its layer stack, net table and
entity counts, along with any diagnostics found while reading.`,
	Args: cobra.ExactArgs(1),
	RunE: runPCBInfo,
}

func init() {
	rootCmd.AddCommand(pcbCmd)
	pcbCmd.AddCommand(pcbInfoCmd)
}

func runPCBInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	board, diags, err := pcb.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}
	printDiagnostics(diags)

	fmt.Printf("Board: %s\n", filename)
	fmt.Printf("  Version: %s\n", board.Version)
	fmt.Printf("  Generator: %s\n", board.Generator)
	fmt.Printf("  Layers: %d\n", len(board.Layers))
	fmt.Printf("  Nets: %d\n", len(board.Nets))
	fmt.Printf("  Footprints: %d\n", len(board.Footprints))
	fmt.Printf("  Segments: %d\n", len(board.Segments))
	fmt.Printf("  Vias: %d\n", len(board.Vias))
	fmt.Printf("  Zones: %d\n", len(board.Zones))

	if verbose {
		fmt.Println("\nLayer stack:")
		for _, l := range board.Layers {
			if l.UserName != "" {
				fmt.Printf("  %3d  %-12s %-8s (%s)\n", l.Ordinal.Int(), l.Name, l.Type, l.UserName)
			} else {
				fmt.Printf("  %3d  %-12s %s\n", l.Ordinal.Int(), l.Name, l.Type)
			}
		}

		nets := make([]pcb.Net, len(board.Nets))
		copy(nets, board.Nets)
		sort.Slice(nets, func(i, j int) bool { return nets[i].Number.Int() < nets[j].Number.Int() })
		fmt.Println("\nNets:")
		for _, n := range nets {
			fmt.Printf("  %3d  %s\n", n.Number.Int(), n.Name)
		}
	}

	if resolved := board.Resolve(); len(resolved) > 0 {
		fmt.Println()
		printDiagnostics(resolved)
	}
	return nil
}
