// Package pcb models KiCad board files (.kicad_pcb) as typed
// documents and transcodes them to and from the S-expression text
// format losslessly.
package pcb

import (
	"errors"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Minimum supported file format version (KiCad 6.0).
const MinSupportedVersion = 20211014

// Sentinel for OptionalPositional binders rejecting a value that
// belongs to a later rule.
var errNotThisField = errors.New("value does not match field")

// Layer is one entry of the board layer stack.
type Layer struct {
	Ordinal  sexp.Number
	Name     string
	Type     string // signal, power, mixed, user, jumper
	UserName string // optional rename, empty when absent
}

// parseLayerDef reads one stack entry, e.g. (0 "F.Cu" signal). The
// tag is the layer ordinal.
func parseLayerDef(n *sexp.Node) (Layer, error) {
	var l Layer
	ord, err := sexp.ParseNumber(n.Tag)
	if err != nil {
		return l, err
	}
	l.Ordinal = ord
	if l.Name, err = n.StringAt(0); err != nil {
		return l, err
	}
	if l.Type, err = n.StringAt(1); err != nil {
		return l, err
	}
	if len(n.Children) > 2 {
		if l.UserName, err = n.StringAt(2); err != nil {
			return l, err
		}
	}
	return l, nil
}

func (l Layer) node() *sexp.Node {
	n := sexp.NewNode(l.Ordinal.String(), sexp.String(l.Name), sexp.Symbol(l.Type))
	if l.UserName != "" {
		n.Append(sexp.String(l.UserName))
	}
	return n
}

// Net is one entry of the board net list. Other entities refer to nets
// by number only; the number is a weak reference.
type Net struct {
	Number sexp.Number
	Name   string
}

// General is the (general ...) board section.
type General struct {
	Thickness *sexp.Number
	Unknown   []*sexp.Node
}

func parseGeneral(n *sexp.Node, d *sexp.Diagnostics) (*General, error) {
	g := &General{}
	m := sexp.Mapper{Construct: "general", Rules: []sexp.Rule{
		{Name: "thickness", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			t, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			g.Thickness = &t
			return nil
		}},
		common.RestRule(&g.Unknown),
	}}
	if err := m.Apply(n, d); err != nil {
		return nil, err
	}
	if g.Thickness != nil && g.Thickness.Value() <= 0 {
		d.Warnf("general", n.Pos, "non-positive board thickness %s", g.Thickness)
	}
	return g, nil
}

func (g *General) node() *sexp.Node {
	n := sexp.NewNode("general")
	if g.Thickness != nil {
		n.Append(sexp.NewNode("thickness", *g.Thickness))
	}
	for _, sub := range g.Unknown {
		n.Append(sub)
	}
	return n
}

// Group is a named collection of member entity identifiers.
type Group struct {
	Name    string
	Locked  bool
	UUID    *common.UUID
	Members []string
	Unknown []*sexp.Node
}

func parseGroup(n *sexp.Node, d *sexp.Diagnostics) (*Group, error) {
	g := &Group{}
	rules := []sexp.Rule{
		{Name: "name", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			g.Name = atomText(v)
			return nil
		}},
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { g.Locked = true }},
	}
	rules = append(rules, common.UUIDRules(&g.UUID)...)
	rules = append(rules,
		sexp.Rule{Name: "id", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			v, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			g.UUID = &common.UUID{Tag: "id", Value: v, Quoted: true}
			return nil
		}},
		sexp.Rule{Name: "members", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			for i := range sub.Children {
				mem, err := sub.StringAt(i)
				if err != nil {
					return err
				}
				g.Members = append(g.Members, mem)
			}
			return nil
		}},
		common.RestRule(&g.Unknown),
	)
	m := sexp.Mapper{Construct: "group", Rules: rules}
	err := m.Apply(n, d)
	return g, err
}

func (g *Group) node() *sexp.Node {
	n := sexp.NewNode("group", sexp.String(g.Name))
	if g.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	if g.UUID != nil {
		n.Append(g.UUID.Node())
	}
	members := sexp.NewNode("members")
	for _, mem := range g.Members {
		members.Append(sexp.String(mem))
	}
	n.Append(members)
	for _, sub := range g.Unknown {
		n.Append(sub)
	}
	return n
}

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
