package sexp

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKinds []TokenKind
		wantRaw   []string
	}{
		{
			name:      "simple construct",
			input:     `(version 20211014)`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenNumber, TokenRightParen},
			wantRaw:   []string{"(", "version", "20211014", ")"},
		},
		{
			name:      "quoted string",
			input:     `(net 1 "GND")`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenNumber, TokenString, TokenRightParen},
			wantRaw:   []string{"(", "net", "1", `"GND"`, ")"},
		},
		{
			name:      "number keeps raw text with trailing zeros",
			input:     `(at 1.270000 -0.50)`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenNumber, TokenNumber, TokenRightParen},
			wantRaw:   []string{"(", "at", "1.270000", "-0.50", ")"},
		},
		{
			name:      "layer name with dot stays a symbol",
			input:     `(layer F.Cu)`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenSymbol, TokenRightParen},
			wantRaw:   []string{"(", "layer", "F.Cu", ")"},
		},
		{
			name:      "comment skipped",
			input:     "# header comment\n(a b)",
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenSymbol, TokenRightParen},
			wantRaw:   []string{"(", "a", "b", ")"},
		},
		{
			name:      "exponent literal is a number",
			input:     `(x 1e-3)`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenNumber, TokenRightParen},
			wantRaw:   []string{"(", "x", "1e-3", ")"},
		},
		{
			name:      "Inf stays a symbol",
			input:     `(x Inf)`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenSymbol, TokenRightParen},
			wantRaw:   []string{"(", "x", "Inf", ")"},
		},
		{
			name:      "escaped quote inside string",
			input:     `(a "say \"hi\"")`,
			wantKinds: []TokenKind{TokenLeftParen, TokenSymbol, TokenString, TokenRightParen},
			wantRaw:   []string{"(", "a", `"say \"hi\""`, ")"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() unexpected error: %v", err)
			}
			if len(tokens) != len(tt.wantKinds) {
				t.Fatalf("Tokenize() got %d tokens, want %d", len(tokens), len(tt.wantKinds))
			}
			for i, tok := range tokens {
				if tok.Kind != tt.wantKinds[i] {
					t.Errorf("token %d kind = %v, want %v", i, tok.Kind, tt.wantKinds[i])
				}
				if tok.Raw != tt.wantRaw[i] {
					t.Errorf("token %d raw = %q, want %q", i, tok.Raw, tt.wantRaw[i])
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unterminated string", input: `(a "open`},
		{name: "unterminated escape", input: `(a "trailing\`},
		{name: "invalid escape", input: `(a "\q")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("Tokenize() expected error, got nil")
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Errorf("Tokenize() error type = %T, want *LexError", err)
			}
		})
	}
}

func TestTokenizeStringText(t *testing.T) {
	tokens, err := Tokenize(`("a\nb\t\\\"")`)
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}
	// the quoted atom is a tag position here, but lexing is uniform
	var str *Token
	for i := range tokens {
		if tokens[i].Kind == TokenString {
			str = &tokens[i]
		}
	}
	if str == nil {
		t.Fatal("no string token found")
	}
	if want := "a\nb\t\\\""; str.Text != want {
		t.Errorf("string text = %q, want %q", str.Text, want)
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("(a\n  b)")
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}
	b := tokens[2]
	if b.Pos.Line != 2 || b.Pos.Col != 3 {
		t.Errorf("symbol b at %d:%d, want 2:3", b.Pos.Line, b.Pos.Col)
	}
}
