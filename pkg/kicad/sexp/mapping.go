package sexp

import "fmt"

// DiagSeverity classifies a diagnostic.
type DiagSeverity int

const (
	DiagWarning DiagSeverity = iota
	DiagError
)

func (s DiagSeverity) String() string {
	if s == DiagError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a per-construct finding produced while mapping a
// generic tree into typed entities. Warnings cover semantic oddities
// (dangling net references, zero-area shapes, unknown constructs kept
// as passthrough); errors cover constructs that could not be mapped
// but did not prevent siblings from mapping.
type Diagnostic struct {
	Severity  DiagSeverity
	Construct string
	Pos       Pos
	Message   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: (%s) %s", d.Pos, d.Severity, d.Construct, d.Message)
}

// Diagnostics accumulates findings across a whole document read.
type Diagnostics []Diagnostic

func (d *Diagnostics) Warnf(construct string, pos Pos, format string, args ...any) {
	*d = append(*d, Diagnostic{Severity: DiagWarning, Construct: construct, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Errorf(construct string, pos Pos, format string, args ...any) {
	*d = append(*d, Diagnostic{Severity: DiagError, Construct: construct, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic is an error.
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity == DiagError {
			return true
		}
	}
	return false
}

// MissingFieldError reports a required field absent after consumption.
type MissingFieldError struct {
	Construct string
	Field     string
	Pos       Pos
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: (%s) missing required field %q", e.Pos, e.Construct, e.Field)
}

// SerializeError reports a typed document in a state that cannot be
// written back out. Documents produced by the parser never trigger it.
type SerializeError struct {
	Construct string
	Reason    string
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("cannot serialize (%s): %s", e.Construct, e.Reason)
}

// RuleKind says how a mapping rule consumes children.
type RuleKind int

const (
	// Positional fields are consumed strictly by position, before any
	// keyword scanning.
	Positional RuleKind = iota
	// OptionalPositional consumes the next child only if it is an atom;
	// absent otherwise.
	OptionalPositional
	// Keyword consumes (name ...) child nodes wherever they appear.
	// With several occurrences the last one wins unless Once is set.
	Keyword
	// KeywordList consumes every (name ...) child node, in order.
	KeywordList
	// Flag consumes a bare `name` symbol child.
	Flag
	// FlagEmpty consumes an empty (name) child node, KiCad's other
	// keyword-boolean spelling.
	FlagEmpty
	// Rest receives every child left over after all other rules, in
	// original order. At most one per mapper; recognized nested
	// entities and unknown passthrough constructs both arrive here.
	Rest
)

// Rule is one row of a construct's consumption table. Exactly one of
// the Bind callbacks is used, matching the Kind.
type Rule struct {
	Name     string
	Kind     RuleKind
	Required bool
	Once     bool

	Bind     func(v Value) error
	BindNode func(n *Node) error
	BindFlag func()
	BindRest func(vs []Value) error
}

// Mapper maps one construct kind. Rows are applied in order; the order
// of positional rows is the field order, and the order of keyword rows
// is the canonical serialization order.
type Mapper struct {
	Construct string
	Rules     []Rule
}

// Apply consumes n's children according to the rule table. It returns
// an error only for failures attributable to this construct (missing
// required fields, malformed field values, forbidden duplicates);
// semantic findings go to d.
func (m Mapper) Apply(n *Node, d *Diagnostics) error {
	consumed := make([]bool, len(n.Children))
	next := 0 // frontier for positional consumption

	for _, r := range m.Rules {
		switch r.Kind {
		case Positional, OptionalPositional:
			for next < len(n.Children) && consumed[next] {
				next++
			}
			var v Value
			if next < len(n.Children) {
				if _, isNode := n.Children[next].(*Node); !isNode {
					v = n.Children[next]
				}
			}
			if v == nil {
				if r.Kind == Positional && r.Required {
					return &MissingFieldError{Construct: m.Construct, Field: r.Name, Pos: n.Pos}
				}
				continue
			}
			if err := r.Bind(v); err != nil {
				if r.Kind == OptionalPositional {
					// Not this field, e.g. a flag symbol sitting where an
					// optional positional could be. Leave it for later rules.
					continue
				}
				return fmt.Errorf("%s: (%s) field %q: %w", n.Pos, m.Construct, r.Name, err)
			}
			consumed[next] = true
			next++

		case Keyword:
			var matches []*Node
			for i, c := range n.Children {
				if consumed[i] {
					continue
				}
				if sub, ok := c.(*Node); ok && sub.Tag == r.Name {
					matches = append(matches, sub)
					consumed[i] = true
				}
			}
			if len(matches) == 0 {
				if r.Required {
					return &MissingFieldError{Construct: m.Construct, Field: r.Name, Pos: n.Pos}
				}
				continue
			}
			if len(matches) > 1 && r.Once {
				return fmt.Errorf("%s: (%s) duplicate field %q", n.Pos, m.Construct, r.Name)
			}
			for _, sub := range matches {
				if err := r.BindNode(sub); err != nil {
					return fmt.Errorf("%s: (%s) field %q: %w", sub.Pos, m.Construct, r.Name, err)
				}
			}

		case KeywordList:
			found := 0
			for i, c := range n.Children {
				if consumed[i] {
					continue
				}
				if sub, ok := c.(*Node); ok && sub.Tag == r.Name {
					consumed[i] = true
					found++
					if err := r.BindNode(sub); err != nil {
						return fmt.Errorf("%s: (%s) field %q: %w", sub.Pos, m.Construct, r.Name, err)
					}
				}
			}
			if found == 0 && r.Required {
				return &MissingFieldError{Construct: m.Construct, Field: r.Name, Pos: n.Pos}
			}

		case Flag:
			for i, c := range n.Children {
				if consumed[i] {
					continue
				}
				if sym, ok := c.(Symbol); ok && string(sym) == r.Name {
					consumed[i] = true
					r.BindFlag()
				}
			}

		case FlagEmpty:
			for i, c := range n.Children {
				if consumed[i] {
					continue
				}
				if sub, ok := c.(*Node); ok && sub.Tag == r.Name && len(sub.Children) == 0 {
					consumed[i] = true
					r.BindFlag()
				}
			}

		case Rest:
			var rest []Value
			for i, c := range n.Children {
				if !consumed[i] {
					rest = append(rest, c)
					consumed[i] = true
				}
			}
			if len(rest) > 0 {
				if err := r.BindRest(rest); err != nil {
					return fmt.Errorf("%s: (%s): %w", n.Pos, m.Construct, err)
				}
			}
		}
	}

	for i, c := range n.Children {
		if consumed[i] {
			continue
		}
		if sub, ok := c.(*Node); ok {
			d.Warnf(m.Construct, sub.Pos, "unknown construct (%s) dropped; add a rest rule to keep it", sub.Tag)
		} else {
			d.Warnf(m.Construct, n.Pos, "unconsumed value %s", describeValue(c))
		}
	}
	return nil
}
