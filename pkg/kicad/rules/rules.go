// Package rules parses and serializes KiCad custom design rule files
// (.kicad_dru) and the condition expression language embedded in them.
package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Severity of a rule violation. Values are ordered: ignore < warning
// < error.
type Severity string

const (
	SeverityIgnore  Severity = "ignore"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityIgnore:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	}
	return -1
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool { return s.rank() >= 0 }

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool { return s.rank() >= other.rank() }

// ConstraintTypes lists the constraint kinds the board checker knows.
var ConstraintTypes = map[string]bool{
	"annular_width":           true,
	"assertion":               true,
	"clearance":               true,
	"connection_width":        true,
	"courtyard_clearance":     true,
	"diff_pair_gap":           true,
	"diff_pair_uncoupled":     true,
	"disallow":                true,
	"edge_clearance":          true,
	"hole_clearance":          true,
	"hole_size":               true,
	"hole_to_hole":            true,
	"length":                  true,
	"min_resolved_spokes":     true,
	"physical_clearance":      true,
	"physical_hole_clearance": true,
	"silk_clearance":          true,
	"text_height":             true,
	"text_thickness":          true,
	"thermal_relief_gap":      true,
	"thermal_spoke_width":     true,
	"track_width":             true,
	"via_count":               true,
	"via_diameter":            true,
	"zone_connection":         true,
}

// Constraint is one (constraint TYPE args...) clause. Args are kept
// verbatim: their shapes vary per type ((min 0.2mm), bare symbols for
// disallow, assertion strings).
type Constraint struct {
	Type string
	Args []sexp.Value
}

// Rule is one named design rule.
type Rule struct {
	Name         string
	Layer        string
	Severity     Severity
	ConditionSrc string
	Constraints  []*Constraint
	Unknown      []*sexp.Node

	cond        *Expr
	condErr     error
	parsed      bool
	hasSeverity bool
}

// Condition parses the rule's condition expression. The parse is lazy
// and cached: most callers only need structural layout data and never
// look inside the condition text.
func (r *Rule) Condition() (*Expr, error) {
	if !r.parsed {
		r.parsed = true
		if r.ConditionSrc != "" {
			r.cond, r.condErr = ParseExpr(r.ConditionSrc)
		}
	}
	return r.cond, r.condErr
}

// DesignRules is a whole .kicad_dru file.
type DesignRules struct {
	Version sexp.Number
	Rules   []*Rule
	Unknown []*sexp.Node
}

// ParseFile reads and parses a design rule file.
func ParseFile(filename string) (*DesignRules, sexp.Diagnostics, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(data))
}

// Parse parses design rule text. Unlike board and schematic files the
// rule file is a flat sequence of top-level expressions.
func Parse(src string) (*DesignRules, sexp.Diagnostics, error) {
	roots, err := sexp.ParseAll(src)
	if err != nil {
		return nil, nil, err
	}
	var d sexp.Diagnostics
	dr := &DesignRules{Version: sexp.NewInt(1)}
	for _, root := range roots {
		switch root.Tag {
		case "version":
			v, err := root.NumberAt(0)
			if err != nil {
				return nil, d, err
			}
			dr.Version = v
		case "rule":
			r, err := parseRule(root, &d)
			if err != nil {
				d.Errorf("rule", root.Pos, "%v", err)
				continue
			}
			dr.Rules = append(dr.Rules, r)
		default:
			d.Warnf("design_rules", root.Pos, "unknown construct (%s) kept as passthrough", root.Tag)
			dr.Unknown = append(dr.Unknown, root)
		}
	}
	return dr, d, nil
}

func parseRule(n *sexp.Node, d *sexp.Diagnostics) (*Rule, error) {
	r := &Rule{Severity: SeverityWarning}
	rules := []sexp.Rule{
		{Name: "name", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			s, ok := v.(sexp.String)
			if !ok {
				return fmt.Errorf("rule name must be a quoted string")
			}
			r.Name = string(s)
			return nil
		}},
		{Name: "layer", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			r.Layer = s
			return nil
		}},
		{Name: "severity", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			sev := Severity(s)
			if !sev.Valid() {
				return fmt.Errorf("unknown severity %q", s)
			}
			r.Severity = sev
			r.hasSeverity = true
			return nil
		}},
		{Name: "condition", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			r.ConditionSrc = s
			return nil
		}},
		{Name: "constraint", Kind: sexp.KeywordList, Required: true, BindNode: func(sub *sexp.Node) error {
			typ, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			if !ConstraintTypes[typ] {
				d.Warnf("constraint", sub.Pos, "unknown constraint type %q", typ)
			}
			r.Constraints = append(r.Constraints, &Constraint{Type: typ, Args: sub.Children[1:]})
			return nil
		}},
		common.RestRule(&r.Unknown),
	}
	if err := (sexp.Mapper{Construct: "rule", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rule) node() *sexp.Node {
	n := sexp.NewNode("rule", sexp.String(r.Name))
	if r.Layer != "" {
		n.Append(sexp.NewNode("layer", sexp.Symbol(r.Layer)))
	}
	if r.hasSeverity || r.Severity != SeverityWarning {
		n.Append(sexp.NewNode("severity", sexp.Symbol(string(r.Severity))))
	}
	if r.ConditionSrc != "" {
		n.Append(sexp.NewNode("condition", sexp.String(r.ConditionSrc)))
	}
	for _, c := range r.Constraints {
		cn := sexp.NewNode("constraint", sexp.Symbol(c.Type))
		for _, arg := range c.Args {
			cn.Append(arg)
		}
		n.Append(cn)
	}
	for _, sub := range r.Unknown {
		n.Append(sub)
	}
	return n
}

// Serialize writes the rule set back to the file format, one
// expression per top-level construct.
func (dr *DesignRules) Serialize() string {
	var sb strings.Builder
	sb.WriteString(sexp.Write(sexp.NewNode("version", dr.Version)))
	for _, r := range dr.Rules {
		sb.WriteString("\n")
		sb.WriteString(sexp.Write(r.node()))
	}
	for _, sub := range dr.Unknown {
		sb.WriteString("\n")
		sb.WriteString(sexp.Write(sub))
	}
	return sb.String()
}

// Normalize removes duplicate rules, keeping first occurrences in
// order. Rules are duplicates when their serialized forms match.
func (dr *DesignRules) Normalize() *DesignRules {
	seen := make(map[string]bool, len(dr.Rules))
	kept := dr.Rules[:0]
	for _, r := range dr.Rules {
		key := sexp.Write(r.node())
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	dr.Rules = kept
	return dr
}

// Extend appends all of other's rules to dr.
func (dr *DesignRules) Extend(other *DesignRules) *DesignRules {
	dr.Rules = append(dr.Rules, other.Rules...)
	return dr
}

// RuleByName looks a rule up by name.
func (dr *DesignRules) RuleByName(name string) (*Rule, bool) {
	for _, r := range dr.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
