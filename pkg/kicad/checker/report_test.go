package checker

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/rules"
)

const sampleDRC = `{
  "$schema": "https://schemas.kicad.org/drc.v1.json",
  "source": "demo.kicad_pcb",
  "date": "2024-03-14T09:26:53+0100",
  "kicad_version": "7.0.10",
  "violations": [
    {
      "type": "clearance",
      "description": "Clearance violation (netclass 'Default' clearance 0.2000 mm; actual 0.1500 mm)",
      "severity": "error",
      "items": [
        {
          "uuid": "f1a2b3c4-d5e6-4f01-9a8b-7c6d5e4f0102",
          "description": "Track [GND] on F.Cu",
          "pos": {
            "x": 100.05,
            "y": 80.2
          }
        }
      ]
    },
    {
      "type": "silk_over_copper",
      "description": "Silkscreen clipped by solder mask",
      "severity": "warning",
      "items": []
    }
  ],
  "unconnected_items": [
    {
      "type": "unconnected_items",
      "description": "Missing connection between items",
      "severity": "error",
      "items": []
    }
  ],
  "schematic_parity": [],
  "coordinate_units": "mm"
}`

const sampleERC = `{
  "$schema": "https://schemas.kicad.org/erc.v1.json",
  "source": "demo.kicad_sch",
  "date": "2024-03-14 09:26:53",
  "kicad_version": "7.0.10",
  "sheets": [
    {
      "uuid_path": "/e63e39d7-6ac0-4a7d-8a73-58a0b43e8a4b",
      "path": "/",
      "violations": [
        {
          "type": "pin_not_connected",
          "description": "Pin not connected",
          "severity": "error",
          "items": []
        },
        {
          "type": "lib_symbol_issues",
          "description": "Symbol differs from library",
          "severity": "warning",
          "items": []
        }
      ]
    }
  ],
  "coordinate_units": "mm"
}`

func TestDecodeDRCReport(t *testing.T) {
	r, err := DecodeDRCReport([]byte(sampleDRC))
	if err != nil {
		t.Fatalf("DecodeDRCReport failed: %v", err)
	}
	if r.Source != "demo.kicad_pcb" || r.KicadVersion != "7.0.10" {
		t.Errorf("header = %q %q", r.Source, r.KicadVersion)
	}
	if r.Date.Year() != 2024 {
		t.Errorf("date = %v", r.Date)
	}
	if len(r.Violations) != 2 || len(r.UnconnectedItems) != 1 {
		t.Fatalf("got %d violations, %d unconnected", len(r.Violations), len(r.UnconnectedItems))
	}
	v := r.Violations[0]
	if v.Type != "clearance" || v.Severity != rules.SeverityError {
		t.Errorf("violation 0 = %+v", v)
	}
	if len(v.Items) != 1 || v.Items[0].Pos.X != 100.05 {
		t.Errorf("violation 0 items = %+v", v.Items)
	}
}

func TestDecodeERCReport(t *testing.T) {
	r, err := DecodeERCReport([]byte(sampleERC))
	if err != nil {
		t.Fatalf("DecodeERCReport failed: %v", err)
	}
	if len(r.Sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(r.Sheets))
	}
	if r.Sheets[0].Path != "/" {
		t.Errorf("sheet path = %q", r.Sheets[0].Path)
	}
	all := r.Violations()
	if len(all) != 2 {
		t.Fatalf("flattened violations = %d, want 2", len(all))
	}
	if all[0].Type != "pin_not_connected" {
		t.Errorf("violation 0 = %+v", all[0])
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	bad := `{"source": "x.kicad_pcb", "date": "2024-03-14 09:26:53", "kicad_version": "7.0", "violations": [], "unconnected_items": [], "schematic_parity": [], "coordinate_units": "mm", "surprise": 1}`
	if _, err := DecodeDRCReport([]byte(bad)); err == nil {
		t.Fatal("expected unknown field to be rejected")
	} else if !strings.Contains(err.Error(), "invalid DRC report") {
		t.Errorf("error = %v", err)
	}
}

func TestReportTimeLayouts(t *testing.T) {
	layouts := []string{
		`"2024-03-14T09:26:53+01:00"`,
		`"2024-03-14T09:26:53+0100"`,
		`"2024-03-14 09:26:53"`,
	}
	for _, raw := range layouts {
		var rt ReportTime
		if err := rt.UnmarshalJSON([]byte(raw)); err != nil {
			t.Errorf("UnmarshalJSON(%s) failed: %v", raw, err)
			continue
		}
		if rt.Day() != 14 {
			t.Errorf("UnmarshalJSON(%s) = %v", raw, rt)
		}
	}
	var rt ReportTime
	if err := rt.UnmarshalJSON([]byte(`"yesterday"`)); err == nil {
		t.Error("expected an error for an unrecognized timestamp")
	}
}

func TestFilterByLevel(t *testing.T) {
	r, err := DecodeDRCReport([]byte(sampleDRC))
	if err != nil {
		t.Fatalf("DecodeDRCReport failed: %v", err)
	}
	r.FilterByLevel(rules.SeverityError)
	if len(r.Violations) != 1 || r.Violations[0].Severity != rules.SeverityError {
		t.Errorf("violations after filter = %+v", r.Violations)
	}
	if len(r.UnconnectedItems) != 1 {
		t.Errorf("unconnected after filter = %+v", r.UnconnectedItems)
	}
}

func TestFilterSortsBySeverity(t *testing.T) {
	vs := []Violation{
		{Type: "a", Severity: rules.SeverityWarning},
		{Type: "b", Severity: rules.SeverityError},
		{Type: "c", Severity: rules.SeverityWarning},
		{Type: "d", Severity: rules.SeverityError},
	}
	got := filterViolations(vs, rules.SeverityIgnore)
	wantOrder := []string{"b", "d", "a", "c"}
	for i, w := range wantOrder {
		if got[i].Type != w {
			t.Fatalf("order = %v, want %v", got, wantOrder)
		}
	}
}
