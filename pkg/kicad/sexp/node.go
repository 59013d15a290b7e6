package sexp

import "fmt"

// Value is one element of a node's child sequence: a nested *Node or
// an atom (Symbol, String, Number).
type Value interface {
	sexpValue()
}

// Symbol is an unquoted atom. Bare keyword flags like `locked` or
// `hide` are symbols too.
type Symbol string

func (Symbol) sexpValue() {}

// String is a quoted atom. It always serializes with surrounding
// quotes regardless of content, which is how KiCad distinguishes e.g.
// a net name from a keyword.
type String string

func (String) sexpValue() {}

// Node is one parenthesized group: a tag symbol followed by an ordered
// sequence of children.
type Node struct {
	Tag      string
	Children []Value
	Pos      Pos
}

func (*Node) sexpValue() {}

// NewNode builds a node for serialization.
func NewNode(tag string, children ...Value) *Node {
	return &Node{Tag: tag, Children: children}
}

// Append adds children and returns the node for chaining.
func (n *Node) Append(children ...Value) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first child node with the given tag.
func (n *Node) Find(tag string) (*Node, bool) {
	for _, c := range n.Children {
		if sub, ok := c.(*Node); ok && sub.Tag == tag {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns all child nodes with the given tag, in order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if sub, ok := c.(*Node); ok && sub.Tag == tag {
			out = append(out, sub)
		}
	}
	return out
}

// HasFlag reports whether a bare symbol child with the given name is
// present, e.g. `locked` in (footprint ... locked ...).
func (n *Node) HasFlag(name string) bool {
	for _, c := range n.Children {
		if sym, ok := c.(Symbol); ok && string(sym) == name {
			return true
		}
	}
	return false
}

// At returns the i-th child.
func (n *Node) At(i int) (Value, bool) {
	if i < 0 || i >= len(n.Children) {
		return nil, false
	}
	return n.Children[i], true
}

// StringAt returns the i-th child as decoded text. Symbols, strings
// and numbers all have a textual form; nested nodes do not.
func (n *Node) StringAt(i int) (string, error) {
	v, ok := n.At(i)
	if !ok {
		return "", fmt.Errorf("(%s): no value at index %d", n.Tag, i)
	}
	switch a := v.(type) {
	case Symbol:
		return string(a), nil
	case String:
		return string(a), nil
	case Number:
		return a.String(), nil
	}
	return "", fmt.Errorf("(%s): expected atom at index %d, got a list", n.Tag, i)
}

// NumberAt returns the i-th child as a Number, preserving its source
// literal.
func (n *Node) NumberAt(i int) (Number, error) {
	v, ok := n.At(i)
	if !ok {
		return Number{}, fmt.Errorf("(%s): no value at index %d", n.Tag, i)
	}
	num, ok := v.(Number)
	if !ok {
		return Number{}, fmt.Errorf("(%s): expected number at index %d, got %s", n.Tag, i, describeValue(v))
	}
	return num, nil
}

// FloatAt returns the i-th child's numeric value.
func (n *Node) FloatAt(i int) (float64, error) {
	num, err := n.NumberAt(i)
	if err != nil {
		return 0, err
	}
	return num.Value(), nil
}

// IntAt returns the i-th child as an int.
func (n *Node) IntAt(i int) (int, error) {
	num, err := n.NumberAt(i)
	if err != nil {
		return 0, err
	}
	return num.Int(), nil
}

func describeValue(v Value) string {
	switch a := v.(type) {
	case Symbol:
		return fmt.Sprintf("symbol %q", string(a))
	case String:
		return fmt.Sprintf("string %q", string(a))
	case Number:
		return "number " + a.String()
	case *Node:
		return "(" + a.Tag + " ...)"
	}
	return "nil"
}
