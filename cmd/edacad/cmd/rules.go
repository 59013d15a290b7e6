package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/layers"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Custom design rule operations",
	Long:  `Commands for working with KiCad custom design rule files (.kicad_dru)`,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <rules_file>",
	Short: "Validate a design rule file",
	Long: `Parse a design rule file, then parse every rule's condition
expression and verify layer references against the canonical layer
table. Exit status is non-zero if any rule is malformed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesCheck,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	filename := args[0]

	dr, diags, err := rules.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("error parsing rules: %w", err)
	}
	printDiagnostics(diags)

	bad := 0
	for _, r := range dr.Rules {
		if _, err := r.Condition(); err != nil {
			fmt.Printf("rule %q: %v\n", r.Name, err)
			bad++
		}
		if r.Layer != "" && r.Layer != "outer" && r.Layer != "inner" && !layers.IsCanonical(r.Layer) && !layers.IsWildcard(r.Layer) {
			fmt.Printf("rule %q: unknown layer %q\n", r.Name, r.Layer)
		}
	}

	fmt.Printf("%s: %d rule(s)", filename, len(dr.Rules))
	if diags.HasErrors() || bad > 0 {
		fmt.Printf(", %d invalid\n", bad)
		return fmt.Errorf("rule check failed")
	}
	fmt.Println(", all valid")
	return nil
}
