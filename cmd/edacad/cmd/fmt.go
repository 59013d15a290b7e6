package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/schematic"
)

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>...",
	Short: "Rewrite design files in canonical form",
	Long: `Parse each file into the typed document model and write it back,
normalizing indentation and construct layout. The rewrite is lossless:
numeric formatting, optional fields and unknown constructs all
round-trip unchanged.

With --check no file is written; a non-zero exit reports files whose
on-disk form differs from the canonical form.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "report files that are not canonically formatted, write nothing")
}

func runFmt(cmd *cobra.Command, args []string) error {
	dirty := 0
	for _, filename := range args {
		changed, err := formatFile(filename)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		if changed {
			dirty++
			fmt.Println(filename)
		}
	}
	if fmtCheck && dirty > 0 {
		return fmt.Errorf("%d file(s) not canonically formatted", dirty)
	}
	return nil
}

func formatFile(filename string) (changed bool, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return false, err
	}
	src := string(data)

	var out string
	switch filepath.Ext(filename) {
	case ".kicad_pcb":
		board, diags, err := pcb.Parse(src)
		if err != nil {
			return false, err
		}
		if diags.HasErrors() {
			printDiagnostics(diags)
			return false, fmt.Errorf("refusing to rewrite a file with construct errors")
		}
		out, err = board.Serialize()
		if err != nil {
			return false, err
		}
	case ".kicad_sch":
		sch, diags, err := schematic.Parse(src)
		if err != nil {
			return false, err
		}
		if diags.HasErrors() {
			printDiagnostics(diags)
			return false, fmt.Errorf("refusing to rewrite a file with construct errors")
		}
		out, err = sch.Serialize()
		if err != nil {
			return false, err
		}
	case ".kicad_dru":
		dr, diags, err := rules.Parse(src)
		if err != nil {
			return false, err
		}
		if diags.HasErrors() {
			printDiagnostics(diags)
			return false, fmt.Errorf("refusing to rewrite a file with construct errors")
		}
		out = dr.Serialize()
	default:
		return false, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}

	if out == src {
		return false, nil
	}
	if fmtCheck {
		return true, nil
	}
	if err := os.WriteFile(filename, []byte(out), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
