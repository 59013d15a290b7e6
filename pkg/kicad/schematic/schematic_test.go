package schematic

import (
	"strings"
	"testing"
)

const smallSchematic = `(kicad_sch
  (version 20211123)
  (generator eeschema)
  (uuid e63e39d7-6ac0-4a7d-8a73-58a0b43e8a4b)
  (paper "A4")
  (lib_symbols
    (symbol "Device:R"
      (pin_names
        (offset 0)
      )
      (in_bom yes)
      (on_board yes)
      (property "Reference" "R"
        (id 0)
        (at 2.032 0 90)
      )
      (symbol "R_0_1"
        (rectangle
          (start -1.016 -2.54)
          (end 1.016 2.54)
          (stroke
            (width 0.254)
            (type default)
          )
          (fill
            (type none)
          )
        )
      )
      (symbol "R_1_1"
        (pin passive line
          (at 0 3.81 270)
          (length 1.27)
          (name "~"
            (effects
              (font
                (size 1.27 1.27)
              )
            )
          )
          (number "1"
            (effects
              (font
                (size 1.27 1.27)
              )
            )
          )
        )
      )
    )
  )
  (junction
    (at 100 50)
    (diameter 0)
    (color 0 0 0 0)
  )
  (wire
    (pts
      (xy 100 50)
      (xy 110 50)
    )
    (stroke
      (width 0)
      (type default)
    )
    (uuid 0b6230fe-9a61-4bd6-8fd0-b6fe02e0f90c)
  )
  (label "NET1"
    (at 105 50 0)
    (effects
      (font
        (size 1.27 1.27)
      )
    )
    (uuid 41f162cf-8bbf-4e1f-83b8-17a9e4e6a8f7)
  )
  (global_label "IO"
    (shape input)
    (fields_autoplaced)
    (at 120 50 0)
    (uuid 6dd1d0a1-8b2f-4b9a-9d3f-0c2b5f6e7a81)
  )
  (symbol
    (lib_id "Device:R")
    (at 100 60 0)
    (unit 1)
    (in_bom yes)
    (on_board yes)
    (uuid 287c22c8-4b8f-4a9e-8f39-3d1c0a9b7e55)
    (property "Reference" "R1"
      (at 102 60 0)
    )
    (property "Value" "10k"
      (at 102 62 0)
    )
    (pin "1"
      (uuid 12ad616a-6e14-40ad-8bb7-43c1a1a8ba82)
    )
    (pin "2"
      (uuid 6b0b8a2b-30ee-4ba3-939c-9b7a0e9b8f10)
    )
    (instances
      (project "demo"
        (path "/e63e39d7-6ac0-4a7d-8a73-58a0b43e8a4b"
          (reference "R1")
          (unit 1)
        )
      )
    )
  )
  (sheet_instances
    (path "/"
      (page "1")
    )
  )
)
`

func TestParseSchematic(t *testing.T) {
	s, diags, err := Parse(smallSchematic)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if s.Version.Int() != 20211123 {
		t.Errorf("version = %s", s.Version)
	}
	if s.Generator != "eeschema" {
		t.Errorf("generator = %q", s.Generator)
	}
	if s.UUID == nil || s.UUID.Value != "e63e39d7-6ac0-4a7d-8a73-58a0b43e8a4b" {
		t.Errorf("uuid = %+v", s.UUID)
	}

	if len(s.LibSymbols) != 1 {
		t.Fatalf("got %d lib symbols, want 1", len(s.LibSymbols))
	}
	ls := s.LibSymbols[0]
	if ls.Name != "Device:R" {
		t.Errorf("lib symbol name = %q", ls.Name)
	}
	if ls.PinNames == nil || ls.PinNames.Offset == nil || ls.PinNames.Offset.Value() != 0 {
		t.Errorf("pin_names = %+v", ls.PinNames)
	}
	if ls.InBOM == nil || !*ls.InBOM {
		t.Error("in_bom not mapped")
	}
	if len(ls.Units) != 2 {
		t.Fatalf("got %d units, want 2", len(ls.Units))
	}
	if len(ls.Units[0].Rectangles) != 1 {
		t.Errorf("unit 0 = %+v", ls.Units[0])
	}
	pins := ls.Units[1].Pins
	if len(pins) != 1 || pins[0].Type != "passive" || pins[0].Style != "line" {
		t.Fatalf("unit 1 pins = %+v", pins)
	}
	if pins[0].Name != "~" || pins[0].Number != "1" {
		t.Errorf("pin name/number = %q %q", pins[0].Name, pins[0].Number)
	}

	if len(s.Junctions) != 1 || len(s.Wires) != 1 {
		t.Errorf("got %d junctions, %d wires", len(s.Junctions), len(s.Wires))
	}
	if len(s.Wires[0].Pts.XY) != 2 {
		t.Errorf("wire pts = %+v", s.Wires[0].Pts)
	}
	if len(s.Labels) != 1 || s.Labels[0].Text != "NET1" {
		t.Errorf("labels = %+v", s.Labels)
	}
	if len(s.GlobalLabels) != 1 || s.GlobalLabels[0].Shape != "input" || !s.GlobalLabels[0].FieldsAutoplaced {
		t.Errorf("global labels = %+v", s.GlobalLabels)
	}

	if len(s.Symbols) != 1 {
		t.Fatalf("got %d placed symbols, want 1", len(s.Symbols))
	}
	sym := s.Symbols[0]
	if sym.LibID != "Device:R" || sym.Reference() != "R1" || sym.Value() != "10k" {
		t.Errorf("symbol = lib_id %q ref %q value %q", sym.LibID, sym.Reference(), sym.Value())
	}
	if len(sym.Pins) != 2 || sym.Pins[0].Number != "1" {
		t.Errorf("symbol pins = %+v", sym.Pins)
	}
	if sym.Instances == nil {
		t.Error("instances block not kept")
	}
	if s.SheetInstances == nil {
		t.Error("sheet_instances block not kept")
	}
}

func TestSchematicRoundTrip(t *testing.T) {
	s, _, err := Parse(smallSchematic)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if out != smallSchematic {
		t.Errorf("round trip changed the document:\ngot:\n%s\nwant:\n%s", out, smallSchematic)
	}
}

func TestUUIDsMapToFields(t *testing.T) {
	s, diags, err := Parse(smallSchematic)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(s.Unknown) != 0 {
		t.Errorf("document-level passthrough = %+v", s.Unknown)
	}
	if s.UUID == nil {
		t.Error("document uuid not mapped")
	}
	if s.Wires[0].UUID == nil || s.Wires[0].UUID.Value != "0b6230fe-9a61-4bd6-8fd0-b6fe02e0f90c" {
		t.Errorf("wire uuid = %+v", s.Wires[0].UUID)
	}
	if len(s.Wires[0].Unknown) != 0 {
		t.Errorf("wire passthrough = %+v", s.Wires[0].Unknown)
	}
	if s.Labels[0].UUID == nil || s.GlobalLabels[0].UUID == nil {
		t.Error("label uuids not mapped")
	}
	sym := s.Symbols[0]
	if sym.UUID == nil || sym.UUID.Value != "287c22c8-4b8f-4a9e-8f39-3d1c0a9b7e55" {
		t.Errorf("symbol uuid = %+v", sym.UUID)
	}
	if len(sym.Unknown) != 0 {
		t.Errorf("symbol passthrough = %+v", sym.Unknown)
	}
	if sym.Pins[0].UUID == nil || sym.Pins[1].UUID == nil {
		t.Error("symbol pin uuids not mapped")
	}
}

func TestSymbolByReference(t *testing.T) {
	s, _, err := Parse(smallSchematic)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sym, ok := s.SymbolByReference("R1")
	if !ok || sym.LibID != "Device:R" {
		t.Errorf("SymbolByReference(R1) = %+v, %v", sym, ok)
	}
	if _, ok := s.SymbolByReference("R2"); ok {
		t.Error("found a symbol that does not exist")
	}
	if ls, ok := s.LibSymbolByName("Device:R"); !ok || ls.Name != "Device:R" {
		t.Errorf("LibSymbolByName = %+v, %v", ls, ok)
	}
}

func TestSchematicResolve(t *testing.T) {
	src := `(kicad_sch
  (version 20211123)
  (lib_symbols
    (symbol "Device:C"
      (in_bom yes)
      (on_board yes)
    )
  )
  (symbol
    (lib_id "Device:R")
    (at 0 0 0)
    (property "Reference" "R1"
      (at 0 0 0)
    )
  )
)
`
	s, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	diags := s.Resolve()
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "Device:R") {
			found = true
		}
	}
	if !found {
		t.Errorf("Resolve = %v, want a missing lib symbol warning", diags)
	}
}

func TestParseSchematicErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"wrong root tag", `(kicad_pcb (version 20211123))`, "not a KiCad schematic file"},
		{"version too old", `(kicad_sch (version 20200101))`, "unsupported file format version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLabelVariantsRoundTrip(t *testing.T) {
	src := `(kicad_sch
  (version 20211123)
  (hierarchical_label "CTRL"
    (shape output)
    (at 10 10 180)
    (uuid 7e3c1a22-5b8e-44d2-9f6a-1b2c3d4e5f60)
  )
)
`
	s, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(s.HierLabels) != 1 || s.HierLabels[0].Shape != "output" {
		t.Fatalf("hierarchical labels = %+v", s.HierLabels)
	}
	out, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if out != src {
		t.Errorf("round trip changed the document:\ngot:\n%s\nwant:\n%s", out, src)
	}
}
