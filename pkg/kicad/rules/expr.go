package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The condition language is a small boolean/arithmetic expression
// grammar, unrelated to the outer S-expression syntax. Both the word
// operators (AND, OR, NOT) and the C-style spellings (&&, ||, !) are
// accepted. Precedence, loosest first: OR, AND, NOT, comparisons,
// additive, multiplicative.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?(?:mm|um|nm|mil|in|th)?`},
	{Name: "OrOp", Pattern: `\|\||(?i)\bOR\b`},
	{Name: "AndOp", Pattern: `&&|(?i)\bAND\b`},
	{Name: "CmpOp", Pattern: `==|!=|<=|>=|<|>`},
	{Name: "NotOp", Pattern: `!|(?i)\bNOT\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z_0-9]*(?:\.[A-Za-z_][A-Za-z_0-9]*)*`},
	{Name: "AddOp", Pattern: `[+-]`},
	{Name: "MulOp", Pattern: `[*/]`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
})

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// RuleSyntaxError reports a malformed condition expression.
type RuleSyntaxError struct {
	Line, Col int
	Token     string
	Message   string
}

func (e *RuleSyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("rule syntax error at %d:%d near %q: %s", e.Line, e.Col, e.Token, e.Message)
	}
	return fmt.Sprintf("rule syntax error at %d:%d: %s", e.Line, e.Col, e.Message)
}

// ParseExpr parses one condition expression.
func ParseExpr(src string) (*Expr, error) {
	expr, err := exprParser.ParseString("", src)
	if err != nil {
		rse := &RuleSyntaxError{Message: err.Error()}
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			rse.Line, rse.Col = pos.Line, pos.Column
			rse.Message = perr.Message()
		}
		var uerr *participle.UnexpectedTokenError
		if errors.As(err, &uerr) {
			rse.Token = uerr.Unexpected.Value
		}
		return nil, rse
	}
	return expr, nil
}

// Expr is an OR chain.
type Expr struct {
	Left *AndExpr   `parser:"@@"`
	Rest []*AndExpr `parser:"( OrOp @@ )*"`
}

// AndExpr is an AND chain.
type AndExpr struct {
	Left *NotExpr   `parser:"@@"`
	Rest []*NotExpr `parser:"( AndOp @@ )*"`
}

// NotExpr is an optional logical negation.
type NotExpr struct {
	Negated *NotExpr    `parser:"NotOp @@"`
	Cmp     *Comparison `parser:"| @@"`
}

// Comparison is an additive expression, optionally compared to another.
type Comparison struct {
	Left  *Sum   `parser:"@@"`
	Op    string `parser:"( @CmpOp"`
	Right *Sum   `parser:"@@ )?"`
}

type Sum struct {
	Left *Product   `parser:"@@"`
	Rest []*SumTail `parser:"@@*"`
}

type SumTail struct {
	Op   string   `parser:"@AddOp"`
	Term *Product `parser:"@@"`
}

type Product struct {
	Left *Unary         `parser:"@@"`
	Rest []*ProductTail `parser:"@@*"`
}

type ProductTail struct {
	Op   string `parser:"@MulOp"`
	Term *Unary `parser:"@@"`
}

type Unary struct {
	Sign  string `parser:"@AddOp?"`
	Value *Value `parser:"@@"`
}

// Value is a leaf: a unit-suffixed number, a string literal, a
// property function call, a dotted layer/property reference, or a
// parenthesized sub-expression.
type Value struct {
	Number *UnitNumber `parser:"@Number"`
	Str    *StrLit     `parser:"| @String"`
	Call   *Call       `parser:"| @@"`
	Ref    string      `parser:"| @Ident"`
	Sub    *Expr       `parser:"| LParen @@ RParen"`
}

// Call is a reference invoked with arguments, like A.inDiffPair('*').
type Call struct {
	Name string  `parser:"@Ident LParen"`
	Args []*Expr `parser:"( @@ ( Comma @@ )* )? RParen"`
}

// UnitNumber is a numeric literal with an optional length-unit suffix,
// converted to millimetres as the canonical internal unit.
type UnitNumber struct {
	Raw string
	MM  float64
}

// unit factors to millimetres
var unitFactors = map[string]float64{
	"mm":  1,
	"um":  1e-3,
	"nm":  1e-6,
	"mil": 0.0254,
	"th":  0.0254,
	"in":  25.4,
}

func (u *UnitNumber) Capture(values []string) error {
	u.Raw = values[0]
	digits := u.Raw
	factor := 1.0
	for suffix, f := range unitFactors {
		if strings.HasSuffix(digits, suffix) {
			digits = strings.TrimSuffix(digits, suffix)
			factor = f
			break
		}
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric literal %q", u.Raw)
	}
	u.MM = v * factor
	return nil
}

// StrLit is a quoted string literal with the quotes stripped.
type StrLit struct {
	Value string
	quote byte
}

func (s *StrLit) Capture(values []string) error {
	raw := values[0]
	s.quote = raw[0]
	s.Value = raw[1 : len(raw)-1]
	return nil
}

// stringification: semantically equivalent, not byte-identical, to
// the source text

func (e *Expr) String() string {
	parts := []string{e.Left.String()}
	for _, r := range e.Rest {
		parts = append(parts, "||", r.String())
	}
	return strings.Join(parts, " ")
}

func (e *AndExpr) String() string {
	parts := []string{e.Left.String()}
	for _, r := range e.Rest {
		parts = append(parts, "&&", r.String())
	}
	return strings.Join(parts, " ")
}

func (e *NotExpr) String() string {
	if e.Negated != nil {
		return "!" + e.Negated.String()
	}
	return e.Cmp.String()
}

func (e *Comparison) String() string {
	if e.Op == "" {
		return e.Left.String()
	}
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

func (e *Sum) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.Left.String())
	for _, t := range e.Rest {
		sb.WriteString(" " + t.Op + " " + t.Term.String())
	}
	return sb.String()
}

func (e *Product) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.Left.String())
	for _, t := range e.Rest {
		sb.WriteString(" " + t.Op + " " + t.Term.String())
	}
	return sb.String()
}

func (e *Unary) String() string {
	return e.Sign + e.Value.String()
}

func (v *Value) String() string {
	switch {
	case v.Number != nil:
		return v.Number.Raw
	case v.Str != nil:
		q := string(v.Str.quote)
		return q + v.Str.Value + q
	case v.Call != nil:
		return v.Call.String()
	case v.Sub != nil:
		return "(" + v.Sub.String() + ")"
	}
	return v.Ref
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}
