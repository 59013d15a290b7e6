package checker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
)

// Checker invokes kicad-cli to run rule checks against design files.
type Checker struct {
	// CLIPath is the kicad-cli binary to invoke. Empty means look up
	// "kicad-cli" on PATH.
	CLIPath string
}

func (c *Checker) cli() string {
	if c.CLIPath != "" {
		return c.CLIPath
	}
	return "kicad-cli"
}

func (c *Checker) run(ctx context.Context, subcommand []string, input string) ([]byte, error) {
	out, err := os.CreateTemp("", "rc-report-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	args := append(subcommand, input, "--format", "json", "-o", outPath)
	cmd := exec.CommandContext(ctx, c.cli(), args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	// kicad-cli exits non-zero when violations exist; the report is
	// still written, so only a missing report is treated as failure.
	runErr := cmd.Run()

	data, err := os.ReadFile(outPath)
	if err != nil || len(data) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("kicad-cli failed: %w: %s", runErr, stderr.String())
		}
		return nil, fmt.Errorf("kicad-cli produced no report: %w", err)
	}
	return data, nil
}

// RunDRC runs the board design rule check and loads its report.
func (c *Checker) RunDRC(ctx context.Context, boardPath string) (*DRCReport, error) {
	data, err := c.run(ctx, []string{"pcb", "drc"}, boardPath)
	if err != nil {
		return nil, err
	}
	return DecodeDRCReport(data)
}

// RunERC runs the schematic electrical rule check and loads its report.
func (c *Checker) RunERC(ctx context.Context, schematicPath string) (*ERCReport, error) {
	data, err := c.run(ctx, []string{"sch", "erc"}, schematicPath)
	if err != nil {
		return nil, err
	}
	return DecodeERCReport(data)
}

// Result bundles the reports produced by Check.
type Result struct {
	Source       string
	Level        rules.Severity
	KicadVersion string
	DRC          *DRCReport
	ERC          *ERCReport
}

// Check runs every applicable rule check for path. A project file or
// directory checks both board and schematic; a .kicad_pcb or
// .kicad_sch checks just its own kind. Violations below level are
// dropped from the reports.
func (c *Checker) Check(ctx context.Context, path string, level rules.Severity) (*Result, error) {
	p := path
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		matches, _ := filepath.Glob(filepath.Join(p, "*.kicad_pro"))
		if len(matches) == 0 {
			return nil, fmt.Errorf("no KiCad project file in %s", p)
		}
		p = matches[0]
	}

	ext := filepath.Ext(p)
	base := strings.TrimSuffix(p, ext)
	boardPath := base + ".kicad_pcb"
	schPath := base + ".kicad_sch"
	checkBoth := ext == ".kicad_pro"

	res := &Result{Source: path, Level: level}
	if _, err := os.Stat(boardPath); err == nil && (checkBoth || ext == ".kicad_pcb") {
		drc, err := c.RunDRC(ctx, boardPath)
		if err != nil {
			return nil, err
		}
		drc.FilterByLevel(level)
		res.DRC = drc
		res.KicadVersion = drc.KicadVersion
	}
	if _, err := os.Stat(schPath); err == nil && (checkBoth || ext == ".kicad_sch") {
		erc, err := c.RunERC(ctx, schPath)
		if err != nil {
			return nil, err
		}
		erc.FilterByLevel(level)
		res.ERC = erc
		if res.KicadVersion == "" {
			res.KicadVersion = erc.KicadVersion
		}
	}
	if res.DRC == nil && res.ERC == nil {
		return nil, fmt.Errorf("no .kicad_pcb or .kicad_sch file found for %s", path)
	}
	return res, nil
}
