package sexp

import "strings"

// Indentation step used by the KiCad pretty-printer.
const indent = "  "

// Write serializes a generic node tree using KiCad's formatting
// conventions: a node whose children are all atoms is written inline;
// otherwise leading atoms stay on the tag line, each child node gets
// its own line one level deeper, and the closing paren gets its own
// line. Output ends with a newline.
func Write(n *Node) string {
	var b strings.Builder
	writeNode(&b, n, 0)
	b.WriteByte('\n')
	return b.String()
}

// WriteValue serializes a single value inline.
func WriteValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	b.WriteByte('(')
	b.WriteString(n.Tag)

	if !hasNodeChildren(n) {
		for _, c := range n.Children {
			b.WriteByte(' ')
			writeValue(b, c)
		}
		b.WriteByte(')')
		return
	}

	// Leading atoms share the tag line; everything from the first
	// child node on goes one per line.
	i := 0
	for ; i < len(n.Children); i++ {
		if _, ok := n.Children[i].(*Node); ok {
			break
		}
		b.WriteByte(' ')
		writeValue(b, n.Children[i])
	}
	for ; i < len(n.Children); i++ {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, depth+1))
		if sub, ok := n.Children[i].(*Node); ok {
			writeNode(b, sub, depth+1)
		} else {
			writeValue(b, n.Children[i])
		}
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteByte(')')
}

func hasNodeChildren(n *Node) bool {
	for _, c := range n.Children {
		if _, ok := c.(*Node); ok {
			return true
		}
	}
	return false
}

func writeValue(b *strings.Builder, v Value) {
	switch a := v.(type) {
	case Symbol:
		if needsQuotes(string(a)) {
			b.WriteString(quote(string(a)))
		} else {
			b.WriteString(string(a))
		}
	case String:
		b.WriteString(quote(string(a)))
	case Number:
		b.WriteString(a.String())
	case *Node:
		writeNode(b, a, 0)
	}
}

// quote wraps s in double quotes, escaping backslashes and quotes.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// needsQuotes reports whether a symbol cannot be written bare. Symbols
// produced by the lexer never need quoting; this guards values built
// programmatically.
func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '(' || r == ')' || r == '"' || r == '\\' || r == 0x7f {
			return true
		}
	}
	return false
}
