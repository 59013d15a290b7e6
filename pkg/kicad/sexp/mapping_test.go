package sexp

import (
	"errors"
	"fmt"
	"testing"
)

// stub entity for mapper tests, shaped like a track segment
type stub struct {
	Width  Number
	Layer  string
	Net    Number
	Locked bool
	Rest   []Value
}

func stubMapper(s *stub) Mapper {
	return Mapper{Construct: "stub", Rules: []Rule{
		{Name: "locked", Kind: Flag, BindFlag: func() { s.Locked = true }},
		{Name: "width", Kind: Keyword, Required: true, BindNode: func(n *Node) error {
			v, err := n.NumberAt(0)
			if err != nil {
				return err
			}
			s.Width = v
			return nil
		}},
		{Name: "layer", Kind: Keyword, BindNode: func(n *Node) error {
			v, err := n.StringAt(0)
			if err != nil {
				return err
			}
			s.Layer = v
			return nil
		}},
		{Name: "net", Kind: Keyword, Once: true, BindNode: func(n *Node) error {
			v, err := n.NumberAt(0)
			if err != nil {
				return err
			}
			s.Net = v
			return nil
		}},
		{Name: "rest", Kind: Rest, BindRest: func(vs []Value) error {
			s.Rest = vs
			return nil
		}},
	}}
}

func applyStub(t *testing.T, src string) (*stub, Diagnostics, error) {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	s := &stub{}
	var d Diagnostics
	err = stubMapper(s).Apply(n, &d)
	return s, d, err
}

func TestMapperKeywordOrderIndependent(t *testing.T) {
	// Keyword fields map identically regardless of child order.
	inputs := []string{
		`(stub (width 0.25) (layer F.Cu) (net 3))`,
		`(stub (net 3) (width 0.25) (layer F.Cu))`,
		`(stub (layer F.Cu) (net 3) (width 0.25))`,
	}
	for _, src := range inputs {
		s, d, err := applyStub(t, src)
		if err != nil {
			t.Fatalf("Apply(%q) unexpected error: %v", src, err)
		}
		if len(d) != 0 {
			t.Errorf("Apply(%q) diagnostics: %v", src, d)
		}
		if s.Width.Value() != 0.25 || s.Layer != "F.Cu" || s.Net.Int() != 3 {
			t.Errorf("Apply(%q) = %+v", src, s)
		}
	}
}

func TestMapperDuplicateLastWins(t *testing.T) {
	s, _, err := applyStub(t, `(stub (width 0.25) (layer F.Cu) (layer B.Cu))`)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if s.Layer != "B.Cu" {
		t.Errorf("layer = %q, want last occurrence B.Cu", s.Layer)
	}
}

func TestMapperDuplicateOnceErrors(t *testing.T) {
	_, _, err := applyStub(t, `(stub (width 0.25) (net 1) (net 2))`)
	if err == nil {
		t.Fatal("Apply() expected error for duplicate once-field, got nil")
	}
}

func TestMapperMissingRequired(t *testing.T) {
	_, _, err := applyStub(t, `(stub (layer F.Cu))`)
	if err == nil {
		t.Fatal("Apply() expected error, got nil")
	}
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingFieldError", err)
	}
	if missing.Field != "width" {
		t.Errorf("missing field = %q, want width", missing.Field)
	}
}

func TestMapperFlag(t *testing.T) {
	s, _, err := applyStub(t, `(stub locked (width 0.25))`)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if !s.Locked {
		t.Error("locked flag not consumed")
	}
}

func TestMapperRestPassthrough(t *testing.T) {
	s, d, err := applyStub(t, `(stub (width 0.25) (newfangled 1 2) (layer F.Cu))`)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if len(d) != 0 {
		t.Errorf("unexpected diagnostics: %v", d)
	}
	if len(s.Rest) != 1 {
		t.Fatalf("rest has %d values, want 1", len(s.Rest))
	}
	sub, ok := s.Rest[0].(*Node)
	if !ok || sub.Tag != "newfangled" {
		t.Errorf("rest[0] = %v, want (newfangled ...)", s.Rest[0])
	}
	// passthrough must survive a write verbatim
	if got, want := WriteValue(sub), "(newfangled 1 2)"; got != want {
		t.Errorf("passthrough serializes as %q, want %q", got, want)
	}
}

func TestMapperLeftoverWarns(t *testing.T) {
	n, err := Parse(`(thing (a 1) (b 2))`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	got := 0
	m := Mapper{Construct: "thing", Rules: []Rule{
		{Name: "a", Kind: Keyword, BindNode: func(*Node) error { got++; return nil }},
	}}
	var d Diagnostics
	if err := m.Apply(n, &d); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("a consumed %d times, want 1", got)
	}
	if len(d) != 1 || d[0].Severity != DiagWarning {
		t.Fatalf("diagnostics = %v, want one warning", d)
	}
}

func TestMapperPositional(t *testing.T) {
	n, err := Parse(`(net 42 "GND")`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	var num Number
	var name string
	m := Mapper{Construct: "net", Rules: []Rule{
		{Name: "number", Kind: Positional, Required: true, Bind: func(v Value) error {
			nv, ok := v.(Number)
			if !ok {
				return fmt.Errorf("expected a number")
			}
			num = nv
			return nil
		}},
		{Name: "name", Kind: Positional, Required: true, Bind: func(v Value) error {
			sv, ok := v.(String)
			if !ok {
				return fmt.Errorf("expected a string")
			}
			name = string(sv)
			return nil
		}},
	}}
	var d Diagnostics
	if err := m.Apply(n, &d); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if num.Int() != 42 || name != "GND" {
		t.Errorf("mapped (%d, %q), want (42, GND)", num.Int(), name)
	}
}

func TestMapperOptionalPositionalSkips(t *testing.T) {
	// An optional positional that rejects the value leaves it for
	// later rules, the way via type and locked interact.
	parse := func(src string) (typ string, locked bool) {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse() unexpected error: %v", err)
		}
		m := Mapper{Construct: "via", Rules: []Rule{
			{Name: "type", Kind: OptionalPositional, Bind: func(v Value) error {
				sym, ok := v.(Symbol)
				if !ok || (sym != "blind" && sym != "micro") {
					return fmt.Errorf("not a via type")
				}
				typ = string(sym)
				return nil
			}},
			{Name: "locked", Kind: Flag, BindFlag: func() { locked = true }},
		}}
		var d Diagnostics
		if err := m.Apply(n, &d); err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		return typ, locked
	}

	if typ, locked := parse(`(via blind locked)`); typ != "blind" || !locked {
		t.Errorf("(via blind locked) = (%q, %v)", typ, locked)
	}
	if typ, locked := parse(`(via locked)`); typ != "" || !locked {
		t.Errorf("(via locked) = (%q, %v)", typ, locked)
	}
	if typ, locked := parse(`(via)`); typ != "" || locked {
		t.Errorf("(via) = (%q, %v)", typ, locked)
	}
}
