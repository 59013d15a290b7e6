package sexp

// Read consumes a token sequence into a generic node tree. The input
// must contain exactly one top-level expression.
func Read(tokens []Token) (*Node, error) {
	roots, err := ReadAll(tokens)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, &SyntaxError{Expected: "an expression, got empty input"}
	}
	if len(roots) > 1 {
		return nil, &SyntaxError{Pos: roots[1].Pos, Expected: "end of input after top-level expression"}
	}
	return roots[0], nil
}

// ReadAll consumes a token sequence into a list of top-level nodes.
// Design-rule files are a flat sequence of expressions rather than a
// single root, so the multi-root form is exposed separately.
//
// The parse uses an explicit frame stack rather than recursion so that
// deeply nested constructs (zone fills, grouped graphics) are bounded
// only by memory.
func ReadAll(tokens []Token) ([]*Node, error) {
	var stack []*Node
	var roots []*Node

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.Kind {
		case TokenLeftParen:
			// A tag is normally a symbol; the board layer stack uses the
			// layer ordinal as the tag, so numbers are accepted too.
			if i+1 >= len(tokens) || (tokens[i+1].Kind != TokenSymbol && tokens[i+1].Kind != TokenNumber) {
				return nil, &SyntaxError{Pos: tok.Pos, Expected: "tag symbol after '('"}
			}
			i++
			stack = append(stack, &Node{Tag: tokens[i].Raw, Pos: tok.Pos})

		case TokenRightParen:
			if len(stack) == 0 {
				return nil, &SyntaxError{Pos: tok.Pos, Expected: "'(' before ')'"}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				roots = append(roots, top)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, top)
			}

		case TokenSymbol, TokenString, TokenNumber:
			if len(stack) == 0 {
				return nil, &SyntaxError{Pos: tok.Pos, Expected: "'(' before atom"}
			}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, atomValue(tok))

		case TokenEOF:
			// Tokenize does not emit EOF tokens; ignore if present.
		}
	}

	if len(stack) != 0 {
		return nil, &SyntaxError{Pos: stack[len(stack)-1].Pos, Expected: "')' to close '('"}
	}
	return roots, nil
}

func atomValue(tok Token) Value {
	switch tok.Kind {
	case TokenString:
		return String(tok.Text)
	case TokenNumber:
		return numberFromToken(tok)
	default:
		return Symbol(tok.Text)
	}
}

// Parse tokenizes and reads src in one step.
func Parse(src string) (*Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Read(tokens)
}

// ParseAll tokenizes and reads a multi-expression source in one step.
func ParseAll(src string) ([]*Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ReadAll(tokens)
}
