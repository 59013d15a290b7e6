package rules

import (
	"strings"
	"testing"
)

const sampleRules = `(version 1)

(rule "HV clearance"
  (layer outer)
  (severity error)
  (condition "A.NetClass == 'HV'")
  (constraint clearance
    (min 1.5mm)
  )
)

(rule "no vias under BGA"
  (condition "A.insideArea('BGA_keepout')")
  (constraint disallow via)
)
`

func TestParseRules(t *testing.T) {
	dr, diags, err := Parse(sampleRules)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if dr.Version.Int() != 1 {
		t.Errorf("version = %s", dr.Version)
	}
	if len(dr.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(dr.Rules))
	}

	r := dr.Rules[0]
	if r.Name != "HV clearance" || r.Layer != "outer" {
		t.Errorf("rule 0 = name %q layer %q", r.Name, r.Layer)
	}
	if r.Severity != SeverityError {
		t.Errorf("rule 0 severity = %q", r.Severity)
	}
	if r.ConditionSrc != "A.NetClass == 'HV'" {
		t.Errorf("rule 0 condition = %q", r.ConditionSrc)
	}
	if len(r.Constraints) != 1 || r.Constraints[0].Type != "clearance" {
		t.Errorf("rule 0 constraints = %+v", r.Constraints)
	}

	r = dr.Rules[1]
	if r.Severity != SeverityWarning {
		t.Errorf("rule 1 severity = %q, want default warning", r.Severity)
	}
	if len(r.Constraints) != 1 || r.Constraints[0].Type != "disallow" {
		t.Errorf("rule 1 constraints = %+v", r.Constraints)
	}

	if _, ok := dr.RuleByName("HV clearance"); !ok {
		t.Error("RuleByName missed an existing rule")
	}
	if _, ok := dr.RuleByName("nope"); ok {
		t.Error("RuleByName found a rule that does not exist")
	}
}

func TestRulesRoundTrip(t *testing.T) {
	dr, _, err := Parse(sampleRules)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out := dr.Serialize()
	if out != sampleRules {
		t.Errorf("round trip changed the document:\ngot:\n%s\nwant:\n%s", out, sampleRules)
	}
	// Default severity must not be synthesized on write.
	if strings.Count(out, "severity") != 1 {
		t.Errorf("got %d severity clauses, want 1", strings.Count(out, "severity"))
	}
}

func TestRulesExplicitWarningKept(t *testing.T) {
	src := `(version 1)

(rule "cosmetic"
  (severity warning)
  (constraint silk_clearance
    (min 0.1mm)
  )
)
`
	dr, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if out := dr.Serialize(); out != src {
		t.Errorf("explicit (severity warning) dropped:\ngot:\n%s\nwant:\n%s", out, src)
	}
}

func TestParseRuleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unquoted name", `(rule unnamed (constraint clearance (min 0.1mm)))`},
		{"missing constraint", `(rule "empty")`},
		{"bad severity", `(rule "x" (severity fatal) (constraint clearance (min 0.1mm)))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("structural error: %v", err)
			}
			if !diags.HasErrors() {
				t.Errorf("diagnostics = %v, want an error", diags)
			}
		})
	}
}

func TestUnknownConstraintTypeWarns(t *testing.T) {
	src := `(rule "odd" (constraint teleportation (min 1mm)))`
	_, diags, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "teleportation") {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want an unknown constraint type warning", diags)
	}
}

func TestNormalize(t *testing.T) {
	src := `(version 1)

(rule "dup"
  (constraint track_width
    (min 0.2mm)
  )
)

(rule "dup"
  (constraint track_width
    (min 0.2mm)
  )
)

(rule "keep"
  (constraint via_count
    (max 10)
  )
)
`
	dr, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	dr.Normalize()
	if len(dr.Rules) != 2 {
		t.Fatalf("got %d rules after Normalize, want 2", len(dr.Rules))
	}
	if dr.Rules[0].Name != "dup" || dr.Rules[1].Name != "keep" {
		t.Errorf("rule order after Normalize = %q, %q", dr.Rules[0].Name, dr.Rules[1].Name)
	}
}

func TestExtend(t *testing.T) {
	a, _, err := Parse(`(rule "a" (constraint clearance (min 1mm)))`)
	if err != nil {
		t.Fatalf("Parse a failed: %v", err)
	}
	b, _, err := Parse(`(rule "b" (constraint clearance (min 2mm)))`)
	if err != nil {
		t.Fatalf("Parse b failed: %v", err)
	}
	a.Extend(b)
	if len(a.Rules) != 2 || a.Rules[1].Name != "b" {
		t.Errorf("Extend result = %+v", a.Rules)
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeverityError.AtLeast(SeverityWarning) {
		t.Error("error must outrank warning")
	}
	if !SeverityWarning.AtLeast(SeverityWarning) {
		t.Error("AtLeast must be reflexive")
	}
	if SeverityIgnore.AtLeast(SeverityWarning) {
		t.Error("ignore must not outrank warning")
	}
	if Severity("fatal").Valid() {
		t.Error("unknown severity reported valid")
	}
}

func TestLazyConditionCached(t *testing.T) {
	dr, _, err := Parse(`(rule "x" (condition "A.Clearance > 1mm") (constraint clearance (min 1mm)))`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r := dr.Rules[0]
	e1, err := r.Condition()
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}
	e2, _ := r.Condition()
	if e1 != e2 {
		t.Error("Condition must cache its result")
	}
}

func TestConditionSyntaxErrorSurfaces(t *testing.T) {
	dr, _, err := Parse(`(rule "x" (condition "A.Clearance >") (constraint clearance (min 1mm)))`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := dr.Rules[0].Condition(); err == nil {
		t.Fatal("expected a condition syntax error")
	}
}
