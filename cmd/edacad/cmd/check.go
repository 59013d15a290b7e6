package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/checker"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
)

var checkLevel string

var checkCmd = &cobra.Command{
	Use:   "check <project_or_file>",
	Short: "Run DRC/ERC through kicad-cli",
	Long: `Run KiCad's rule checks and summarize the reports. A project
directory or .kicad_pro file checks both the board and the schematic;
a .kicad_pcb or .kicad_sch checks only its own kind.

Requires kicad-cli; set kicad_cli in edacad.toml if it is not on PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkLevel, "level", "", "minimum severity to report: ignore, warning or error (default from config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	level := rules.Severity(checkLevel)
	if checkLevel == "" {
		level = rules.Severity(cfg.Checker.Level)
	}
	if !level.Valid() {
		return fmt.Errorf("invalid level %q", checkLevel)
	}

	c := &checker.Checker{CLIPath: cfg.KicadCLI}
	res, err := c.Check(cmd.Context(), args[0], level)
	if err != nil {
		return err
	}

	total := 0
	if res.DRC != nil {
		n := len(res.DRC.Violations) + len(res.DRC.UnconnectedItems) + len(res.DRC.SchematicParity)
		total += n
		fmt.Printf("DRC: %d violation(s)\n", n)
		printViolations(res.DRC.Violations)
		printViolations(res.DRC.UnconnectedItems)
		printViolations(res.DRC.SchematicParity)
	}
	if res.ERC != nil {
		n := len(res.ERC.Violations())
		total += n
		fmt.Printf("ERC: %d violation(s)\n", n)
		for _, sheet := range res.ERC.Sheets {
			if len(sheet.Violations) == 0 {
				continue
			}
			fmt.Printf("  sheet %s:\n", sheet.Path)
			printViolations(sheet.Violations)
		}
	}
	if total > 0 {
		return fmt.Errorf("%d violation(s) found", total)
	}
	fmt.Println("No violations found")
	return nil
}

func printViolations(vs []checker.Violation) {
	for _, v := range vs {
		fmt.Printf("  [%s] %s: %s\n", v.Severity, v.Type, v.Description)
		if verbose {
			for _, item := range v.Items {
				fmt.Printf("      %s at (%.4f, %.4f)\n", item.Description, item.Pos.X, item.Pos.Y)
			}
		}
	}
}
