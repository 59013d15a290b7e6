package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/schematic"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "KiCad schematic file operations",
	Long:  `Commands for working with KiCad schematic files (.kicad_sch)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic_file>",
	Short: "Show schematic file summary",
	Long: `Parse a schematic file and display its symbols, sheets and
entity counts, along with any diagnostics found while reading.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchInfo,
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	sch, diags, err := schematic.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}
	printDiagnostics(diags)

	fmt.Printf("Schematic: %s\n", filename)
	fmt.Printf("  Version: %s\n", sch.Version)
	fmt.Printf("  Generator: %s\n", sch.Generator)
	fmt.Printf("  Library symbols: %d\n", len(sch.LibSymbols))
	fmt.Printf("  Symbols: %d\n", len(sch.Symbols))
	fmt.Printf("  Wires: %d\n", len(sch.Wires))
	fmt.Printf("  Junctions: %d\n", len(sch.Junctions))
	fmt.Printf("  Labels: %d\n", len(sch.Labels)+len(sch.GlobalLabels)+len(sch.HierLabels))
	fmt.Printf("  Sheets: %d\n", len(sch.Sheets))

	if verbose {
		refs := make([]string, 0, len(sch.Symbols))
		for _, sym := range sch.Symbols {
			if ref := sym.Reference(); ref != "" {
				refs = append(refs, fmt.Sprintf("%-8s %-24s %s", ref, sym.LibID, sym.Value()))
			}
		}
		sort.Strings(refs)
		fmt.Println("\nSymbols:")
		for _, line := range refs {
			fmt.Printf("  %s\n", line)
		}

		if len(sch.Sheets) > 0 {
			fmt.Println("\nSheets:")
			for _, sheet := range sch.Sheets {
				fmt.Printf("  %-24s %s\n", sheet.Name(), sheet.File())
			}
		}
	}

	if resolved := sch.Resolve(); len(resolved) > 0 {
		fmt.Println()
		printDiagnostics(resolved)
	}
	return nil
}

func printDiagnostics(diags sexp.Diagnostics) {
	for _, diag := range diags {
		fmt.Printf("%s\n", diag)
	}
}
