package sexp

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes KiCad S-expression text. It operates on an in-memory
// buffer so that every token can carry its raw source text and byte
// offset.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize converts src into a flat token sequence, excluding the
// trailing EOF token.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col, Offset: l.off}
}

func (l *Lexer) peek() (rune, bool) {
	if l.off >= len(l.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r, true
}

func (l *Lexer) read() (rune, bool) {
	r, ok := l.peek()
	if !ok {
		return 0, false
	}
	l.off += utf8.RuneLen(r)
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, true
}

// Next reads the next token from the input.
func (l *Lexer) Next() (Token, error) {
	// Skip whitespace and comments (# to end of line)
	for {
		ch, ok := l.peek()
		if !ok {
			return Token{Kind: TokenEOF, Pos: l.pos()}, nil
		}
		if unicode.IsSpace(ch) {
			l.read()
			continue
		}
		if ch == '#' {
			for {
				c, ok := l.read()
				if !ok || c == '\n' {
					break
				}
			}
			continue
		}
		break
	}

	start := l.pos()
	ch, _ := l.peek()

	switch ch {
	case '(':
		l.read()
		return Token{Kind: TokenLeftParen, Raw: "(", Text: "(", Pos: start}, nil
	case ')':
		l.read()
		return Token{Kind: TokenRightParen, Raw: ")", Text: ")", Pos: start}, nil
	case '"':
		return l.readString(start)
	default:
		return l.readSymbol(start)
	}
}

// readString reads a double-quoted string with backslash escapes.
func (l *Lexer) readString(start Pos) (Token, error) {
	l.read() // opening quote

	var text strings.Builder
	for {
		ch, ok := l.read()
		if !ok {
			return Token{}, &LexError{Pos: start, Reason: "unterminated string"}
		}
		if ch == '"' {
			break
		}
		if ch == '\\' {
			esc, ok := l.read()
			if !ok {
				return Token{}, &LexError{Pos: start, Reason: "unterminated string"}
			}
			switch esc {
			case 'n':
				text.WriteRune('\n')
			case 't':
				text.WriteRune('\t')
			case 'r':
				text.WriteRune('\r')
			case '\\':
				text.WriteRune('\\')
			case '"':
				text.WriteRune('"')
			default:
				return Token{}, &LexError{Pos: start, Reason: "invalid escape sequence \\" + string(esc)}
			}
			continue
		}
		text.WriteRune(ch)
	}

	return Token{
		Kind: TokenString,
		Raw:  l.src[start.Offset:l.off],
		Text: text.String(),
		Pos:  start,
	}, nil
}

// readSymbol reads an unquoted atom. Atoms that parse completely as a
// numeric literal become number tokens; the raw text is kept either
// way.
func (l *Lexer) readSymbol(start Pos) (Token, error) {
	for {
		ch, ok := l.peek()
		if !ok {
			break
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
	}

	raw := l.src[start.Offset:l.off]
	if raw == "" {
		return Token{}, &LexError{Pos: start, Reason: "empty symbol"}
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil && isNumericLiteral(raw) {
		return Token{Kind: TokenNumber, Raw: raw, Text: raw, Value: v, Pos: start}, nil
	}
	return Token{Kind: TokenSymbol, Raw: raw, Text: raw, Pos: start}, nil
}

// isNumericLiteral restricts number tokens to plain decimal notation.
// ParseFloat also accepts forms like "Inf", "NaN" and hex floats which
// KiCad never writes; those stay symbols.
func isNumericLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := false
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			expDigits = true
		}
		if !expDigits {
			return false
		}
	}
	return i == len(s)
}
