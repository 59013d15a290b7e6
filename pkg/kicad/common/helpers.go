package common

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// atomText returns the textual form of an atom value, empty for nested
// nodes.
func atomText(v sexp.Value) string {
	switch a := v.(type) {
	case sexp.Symbol:
		return string(a)
	case sexp.String:
		return string(a)
	case sexp.Number:
		return a.String()
	}
	return ""
}

// RestRule builds a catch-all row that keeps unrecognized child
// constructs verbatim for forward compatibility. They re-serialize
// exactly as read.
func RestRule(dst *[]*sexp.Node) sexp.Rule {
	return sexp.Rule{Name: "passthrough", Kind: sexp.Rest, BindRest: func(vs []sexp.Value) error {
		for _, v := range vs {
			sub, ok := v.(*sexp.Node)
			if !ok {
				return fmt.Errorf("unexpected bare value %s", sexp.WriteValue(v))
			}
			*dst = append(*dst, sub)
		}
		return nil
	}}
}

func appendNodes(n *sexp.Node, nodes []*sexp.Node) {
	for _, sub := range nodes {
		n.Append(sub)
	}
}

// UUID is a (uuid "...") or, in older files, (tstamp ...) identifier.
// The tag and quoting it was read with are kept so files round-trip
// unchanged: v6 writes bare tstamp symbols, v7+ quoted uuid strings.
type UUID struct {
	Tag    string
	Value  string
	Quoted bool
}

// NewUUID creates a fresh v4 identifier with the modern spelling.
func NewUUID() *UUID {
	return &UUID{Tag: "uuid", Value: sexp.NewUUID(), Quoted: true}
}

// UUIDRules returns keyword rows accepting both identifier spellings.
func UUIDRules(dst **UUID) []sexp.Rule {
	bind := func(tag string) func(*sexp.Node) error {
		return func(sub *sexp.Node) error {
			v, ok := sub.At(0)
			if !ok {
				return fmt.Errorf("missing identifier value")
			}
			_, quoted := v.(sexp.String)
			*dst = &UUID{Tag: tag, Value: atomText(v), Quoted: quoted}
			return nil
		}
	}
	return []sexp.Rule{
		{Name: "tstamp", Kind: sexp.Keyword, BindNode: bind("tstamp")},
		{Name: "uuid", Kind: sexp.Keyword, BindNode: bind("uuid")},
	}
}

func (u *UUID) Node() *sexp.Node {
	tag := u.Tag
	if tag == "" {
		tag = "uuid"
	}
	if u.Quoted {
		return sexp.NewNode(tag, sexp.String(u.Value))
	}
	return sexp.NewNode(tag, sexp.Symbol(u.Value))
}
