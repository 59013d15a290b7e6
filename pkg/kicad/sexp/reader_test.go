package sexp

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	root, err := Parse(`(kicad_pcb (version 20211014) (net 0 ""))`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if root.Tag != "kicad_pcb" {
		t.Errorf("root tag = %q, want kicad_pcb", root.Tag)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}

	version, ok := root.Find("version")
	if !ok {
		t.Fatal("Find(version) not found")
	}
	v, err := version.NumberAt(0)
	if err != nil {
		t.Fatalf("NumberAt(0) unexpected error: %v", err)
	}
	if v.Int() != 20211014 {
		t.Errorf("version = %d, want 20211014", v.Int())
	}

	net, ok := root.Find("net")
	if !ok {
		t.Fatal("Find(net) not found")
	}
	name, err := net.StringAt(1)
	if err != nil {
		t.Fatalf("StringAt(1) unexpected error: %v", err)
	}
	if name != "" {
		t.Errorf("net name = %q, want empty", name)
	}
}

func TestParseNumericTag(t *testing.T) {
	// Board layer stack definitions use the ordinal as the tag.
	root, err := Parse(`(layers (0 "F.Cu" signal) (31 "B.Cu" signal))`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	first, ok := root.Children[0].(*Node)
	if !ok {
		t.Fatal("first child is not a node")
	}
	if first.Tag != "0" {
		t.Errorf("layer tag = %q, want %q", first.Tag, "0")
	}
}

func TestParseDeepNesting(t *testing.T) {
	// The reader must not be recursion-bound.
	const depth = 100000
	src := ""
	for i := 0; i < depth; i++ {
		src += "(g "
	}
	src += "x"
	for i := 0; i < depth; i++ {
		src += ")"
	}
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if root.Tag != "g" {
		t.Errorf("root tag = %q, want g", root.Tag)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "only whitespace", input: "   \n"},
		{name: "unclosed paren", input: "(a (b c)"},
		{name: "extra close paren", input: "(a))"},
		{name: "bare atom at top level", input: "atom"},
		{name: "missing tag", input: "(()"},
		{name: "string as tag", input: `("a" b)`},
		{name: "two top-level expressions", input: "(a)(b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Errorf("Parse(%q) error type = %T, want *SyntaxError", tt.input, err)
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	roots, err := ParseAll("(version 1)\n(rule \"a\" (constraint clearance))\n")
	if err != nil {
		t.Fatalf("ParseAll() unexpected error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("ParseAll() got %d roots, want 2", len(roots))
	}
	if roots[0].Tag != "version" || roots[1].Tag != "rule" {
		t.Errorf("root tags = %q, %q", roots[0].Tag, roots[1].Tag)
	}
}

func TestParseAllEmpty(t *testing.T) {
	roots, err := ParseAll("")
	if err != nil {
		t.Fatalf("ParseAll() unexpected error: %v", err)
	}
	if len(roots) != 0 {
		t.Errorf("ParseAll(\"\") got %d roots, want 0", len(roots))
	}
}
