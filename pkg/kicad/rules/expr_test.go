package rules

import (
	"errors"
	"math"
	"testing"
)

func TestParseExprPrecedence(t *testing.T) {
	// OR binds loosest, then AND, then NOT, then comparisons.
	e, err := ParseExpr("(A > 1) AND (B < 2 OR NOT C)")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	if len(e.Rest) != 0 {
		t.Fatalf("top level must be a single AND chain, got %d OR terms", len(e.Rest)+1)
	}
	and := e.Left
	if len(and.Rest) != 1 {
		t.Fatalf("AND chain has %d extra terms, want 1", len(and.Rest))
	}

	left := and.Left.Cmp.Left.Left.Left.Value
	if left.Sub == nil {
		t.Fatal("left AND operand must be a parenthesized group")
	}
	if left.Sub.Left.Left.Cmp.Op != ">" {
		t.Errorf("left group op = %q, want >", left.Sub.Left.Left.Cmp.Op)
	}

	right := and.Rest[0].Cmp.Left.Left.Left.Value
	if right.Sub == nil {
		t.Fatal("right AND operand must be a parenthesized group")
	}
	if len(right.Sub.Rest) != 1 {
		t.Fatalf("right group must be an OR of 2 terms, got %d extra", len(right.Sub.Rest))
	}
	not := right.Sub.Rest[0].Left
	if not.Negated == nil {
		t.Error("second OR term must be negated")
	}
}

func TestParseExprOrLooserThanAnd(t *testing.T) {
	e, err := ParseExpr("A < 1 OR B > 2 AND C > 3")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	if len(e.Rest) != 1 {
		t.Fatalf("want 2 OR terms, got %d", len(e.Rest)+1)
	}
	if len(e.Left.Rest) != 0 {
		t.Error("first OR term must not absorb the AND")
	}
	if len(e.Rest[0].Rest) != 1 {
		t.Error("AND must bind B > 2 with C > 3")
	}
}

func TestParseExprSpellings(t *testing.T) {
	word, err := ParseExpr("A.NetClass == 'HV' AND NOT B.isPlated()")
	if err != nil {
		t.Fatalf("word spelling failed: %v", err)
	}
	symb, err := ParseExpr("A.NetClass == 'HV' && !B.isPlated()")
	if err != nil {
		t.Fatalf("symbol spelling failed: %v", err)
	}
	if word.String() != symb.String() {
		t.Errorf("spellings disagree: %q vs %q", word.String(), symb.String())
	}
}

func TestUnitConversion(t *testing.T) {
	tests := []struct {
		src string
		mm  float64
	}{
		{"1mm", 1},
		{"1000um", 1},
		{"1000000nm", 1},
		{"10mil", 0.254},
		{"5th", 0.127},
		{"1in", 25.4},
		{"0.2", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := ParseExpr("A.Clearance > " + tt.src)
			if err != nil {
				t.Fatalf("ParseExpr failed: %v", err)
			}
			num := e.Left.Left.Cmp.Right.Left.Left.Value.Number
			if num == nil {
				t.Fatal("right side is not a number literal")
			}
			if math.Abs(num.MM-tt.mm) > 1e-12 {
				t.Errorf("%s = %v mm, want %v", tt.src, num.MM, tt.mm)
			}
			if num.Raw != tt.src {
				t.Errorf("raw literal = %q, want %q", num.Raw, tt.src)
			}
		})
	}
}

func TestParseExprCall(t *testing.T) {
	e, err := ParseExpr("A.insideCourtyard('U?') || A.inDiffPair('*')")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	if len(e.Rest) != 1 {
		t.Fatalf("want 2 OR terms, got %d", len(e.Rest)+1)
	}
	call := e.Left.Left.Cmp.Left.Left.Left.Value.Call
	if call == nil {
		t.Fatal("first term is not a call")
	}
	if call.Name != "A.insideCourtyard" {
		t.Errorf("call name = %q", call.Name)
	}
	if len(call.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(call.Args))
	}
	arg := call.Args[0].Left.Left.Cmp.Left.Left.Left.Value.Str
	if arg == nil || arg.Value != "U?" {
		t.Errorf("call arg = %+v", arg)
	}
}

func TestParseExprArithmetic(t *testing.T) {
	e, err := ParseExpr("A.Clearance + 0.1mm > B.Clearance * 2")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	cmp := e.Left.Left.Cmp
	if cmp.Op != ">" {
		t.Fatalf("op = %q", cmp.Op)
	}
	if len(cmp.Left.Rest) != 1 || cmp.Left.Rest[0].Op != "+" {
		t.Errorf("left sum = %+v", cmp.Left)
	}
	if len(cmp.Right.Left.Rest) != 1 || cmp.Right.Left.Rest[0].Op != "*" {
		t.Errorf("right product = %+v", cmp.Right.Left)
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []string{
		"A >",
		"AND B",
		"(A > 1",
		"A.Clearance > > 2",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := ParseExpr(src)
			if err == nil {
				t.Fatal("expected an error")
			}
			var rse *RuleSyntaxError
			if !errors.As(err, &rse) {
				t.Fatalf("error = %T %v, want *RuleSyntaxError", err, err)
			}
			if rse.Line == 0 {
				t.Errorf("syntax error carries no position: %+v", rse)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"A AND B", "A && B"},
		{"NOT A OR B", "!A || B"},
		{"A.NetClass == 'HV'", "A.NetClass == 'HV'"},
		{"A.Clearance > 1mm", "A.Clearance > 1mm"},
		{"(A || B) && C", "(A || B) && C"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := ParseExpr(tt.src)
			if err != nil {
				t.Fatalf("ParseExpr failed: %v", err)
			}
			if got := e.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
