package sexp

import "fmt"

// TokenKind represents the type of a token
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
	TokenNumber
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	}
	return "unknown"
}

// Pos is a location in the source text. Line and Col are 1-based,
// Offset is the byte offset from the start of the input.
type Pos struct {
	Line   int
	Col    int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token represents a lexical token.
//
// Raw is the exact source text of the token, including quotes for
// strings. Text is the decoded value (escape sequences resolved,
// quotes stripped). For numbers, Value holds the parsed numeric value
// while Raw keeps the original formatting so that re-serialization can
// reproduce it byte for byte.
type Token struct {
	Kind  TokenKind
	Raw   string
	Text  string
	Value float64
	Pos   Pos
}

// LexError reports a malformed token.
type LexError struct {
	Pos    Pos
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Reason)
}

// SyntaxError reports ill-formed S-expression structure (unbalanced
// parentheses, empty input, atoms outside any list).
type SyntaxError struct {
	Pos      Pos
	Expected string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s", e.Pos, e.Expected)
}
