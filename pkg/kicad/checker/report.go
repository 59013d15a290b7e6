// Package checker runs KiCad's design and electrical rule checks
// through kicad-cli and loads the JSON reports it writes. The report
// schemas are fixed upstream (drc.v1 / erc.v1); this package treats
// them as external records and only validates, never authors them.
package checker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
)

// Coordinate is a point in the report's coordinate units.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AffectedItem is one design object implicated in a violation.
type AffectedItem struct {
	UUID        string     `json:"uuid"`
	Description string     `json:"description"`
	Pos         Coordinate `json:"pos"`
}

// Violation is one reported rule violation.
type Violation struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Severity    rules.Severity `json:"severity"`
	Items       []AffectedItem `json:"items"`
}

// Sheet groups ERC violations by schematic sheet.
type Sheet struct {
	UUIDPath   string      `json:"uuid_path"`
	Path       string      `json:"path"`
	Violations []Violation `json:"violations"`
}

// ReportTime accepts the timestamp spellings different KiCad versions
// put in reports.
type ReportTime struct {
	time.Time
}

var reportTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

func (t *ReportTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range reportTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized report timestamp %q", s)
}

func (t ReportTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// DRCReport is a kicad-cli board DRC report (drc.v1 schema).
type DRCReport struct {
	Schema           string      `json:"$schema,omitempty"`
	Source           string      `json:"source"`
	Date             ReportTime  `json:"date"`
	KicadVersion     string      `json:"kicad_version"`
	Violations       []Violation `json:"violations"`
	UnconnectedItems []Violation `json:"unconnected_items"`
	SchematicParity  []Violation `json:"schematic_parity"`
	CoordinateUnits  string      `json:"coordinate_units"`
}

// ERCReport is a kicad-cli schematic ERC report (erc.v1 schema).
type ERCReport struct {
	Schema          string     `json:"$schema,omitempty"`
	Source          string     `json:"source"`
	Date            ReportTime `json:"date"`
	KicadVersion    string     `json:"kicad_version"`
	Sheets          []Sheet    `json:"sheets"`
	CoordinateUnits string     `json:"coordinate_units,omitempty"`
}

// Violations flattens the per-sheet violation lists.
func (r *ERCReport) Violations() []Violation {
	var all []Violation
	for _, sheet := range r.Sheets {
		all = append(all, sheet.Violations...)
	}
	return all
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// LoadDRCReport reads a DRC JSON report file.
func LoadDRCReport(path string) (*DRCReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return DecodeDRCReport(data)
}

// DecodeDRCReport parses DRC report JSON.
func DecodeDRCReport(data []byte) (*DRCReport, error) {
	var r DRCReport
	if err := decodeStrict(data, &r); err != nil {
		return nil, fmt.Errorf("invalid DRC report: %w", err)
	}
	return &r, nil
}

// LoadERCReport reads an ERC JSON report file.
func LoadERCReport(path string) (*ERCReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return DecodeERCReport(data)
}

// DecodeERCReport parses ERC report JSON.
func DecodeERCReport(data []byte) (*ERCReport, error) {
	var r ERCReport
	if err := decodeStrict(data, &r); err != nil {
		return nil, fmt.Errorf("invalid ERC report: %w", err)
	}
	return &r, nil
}

// filterViolations keeps violations at or above level, most severe
// first, preserving order within a severity.
func filterViolations(vs []Violation, level rules.Severity) []Violation {
	kept := make([]Violation, 0, len(vs))
	for _, v := range vs {
		if v.Severity.AtLeast(level) {
			kept = append(kept, v)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return !kept[j].Severity.AtLeast(kept[i].Severity)
	})
	return kept
}

// FilterByLevel drops violations below level from every list.
func (r *DRCReport) FilterByLevel(level rules.Severity) {
	r.Violations = filterViolations(r.Violations, level)
	r.UnconnectedItems = filterViolations(r.UnconnectedItems, level)
	r.SchematicParity = filterViolations(r.SchematicParity, level)
}

// FilterByLevel drops violations below level from every sheet.
func (r *ERCReport) FilterByLevel(level rules.Severity) {
	for i := range r.Sheets {
		r.Sheets[i].Violations = filterViolations(r.Sheets[i].Violations, level)
	}
}
