package common

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Font holds stroke-font parameters from (font ...).
type Font struct {
	Face      string // empty when the file omits it
	Size      *XY
	Thickness *sexp.Number
	Bold      bool
	Italic    bool
}

// ParseFont reads a font node.
func ParseFont(n *sexp.Node, d *sexp.Diagnostics) (Font, error) {
	var f Font
	m := sexp.Mapper{Construct: "font", Rules: []sexp.Rule{
		{Name: "face", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			face, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			f.Face = face
			return nil
		}},
		{Name: "size", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			size, err := ParseXY(sub)
			if err != nil {
				return err
			}
			f.Size = &size
			return nil
		}},
		{Name: "thickness", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			t, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			f.Thickness = &t
			return nil
		}},
		{Name: "bold", Kind: sexp.Flag, BindFlag: func() { f.Bold = true }},
		{Name: "italic", Kind: sexp.Flag, BindFlag: func() { f.Italic = true }},
	}}
	err := m.Apply(n, d)
	return f, err
}

func (f Font) Node() *sexp.Node {
	n := sexp.NewNode("font")
	if f.Face != "" {
		n.Append(sexp.NewNode("face", sexp.String(f.Face)))
	}
	if f.Size != nil {
		n.Append(f.Size.Node("size"))
	}
	if f.Thickness != nil {
		n.Append(sexp.NewNode("thickness", *f.Thickness))
	}
	if f.Bold {
		n.Append(sexp.Symbol("bold"))
	}
	if f.Italic {
		n.Append(sexp.Symbol("italic"))
	}
	return n
}

// Justify keeps the justification symbols in file order (left, right,
// top, bottom, mirror).
type Justify struct {
	Tokens []string
}

// ParseJustify reads (justify ...).
func ParseJustify(n *sexp.Node) (Justify, error) {
	var j Justify
	for i := range n.Children {
		tok, err := n.StringAt(i)
		if err != nil {
			return j, err
		}
		j.Tokens = append(j.Tokens, tok)
	}
	return j, nil
}

// Has reports whether a justification token is present.
func (j Justify) Has(tok string) bool {
	for _, t := range j.Tokens {
		if t == tok {
			return true
		}
	}
	return false
}

func (j Justify) Node() *sexp.Node {
	n := sexp.NewNode("justify")
	for _, t := range j.Tokens {
		n.Append(sexp.Symbol(t))
	}
	return n
}

// Effects is the (effects ...) node attached to text items.
type Effects struct {
	Font    *Font
	Justify *Justify
	Hide    bool
}

// ParseEffects reads an effects node.
func ParseEffects(n *sexp.Node, d *sexp.Diagnostics) (Effects, error) {
	var e Effects
	m := sexp.Mapper{Construct: "effects", Rules: []sexp.Rule{
		{Name: "font", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			f, err := ParseFont(sub, d)
			if err != nil {
				return err
			}
			e.Font = &f
			return nil
		}},
		{Name: "justify", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			j, err := ParseJustify(sub)
			if err != nil {
				return err
			}
			e.Justify = &j
			return nil
		}},
		{Name: "hide", Kind: sexp.Flag, BindFlag: func() { e.Hide = true }},
	}}
	err := m.Apply(n, d)
	return e, err
}

func (e Effects) Node() *sexp.Node {
	n := sexp.NewNode("effects")
	if e.Font != nil {
		n.Append(e.Font.Node())
	}
	if e.Justify != nil {
		n.Append(e.Justify.Node())
	}
	if e.Hide {
		n.Append(sexp.Symbol("hide"))
	}
	return n
}

// Property is a (property "Key" "Value" ...) construct carried by
// footprints, symbols and sheets.
type Property struct {
	Key     string
	Value   string
	ID      *sexp.Number
	At      *Position
	Effects *Effects
	Unknown []*sexp.Node
}

// ParseProperty reads a property node.
func ParseProperty(n *sexp.Node, d *sexp.Diagnostics) (*Property, error) {
	p := &Property{}
	m := sexp.Mapper{Construct: "property", Rules: []sexp.Rule{
		{Name: "key", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			p.Key = atomText(v)
			return nil
		}},
		{Name: "value", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			p.Value = atomText(v)
			return nil
		}},
		{Name: "id", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			id, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			p.ID = &id
			return nil
		}},
		{Name: "at", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			at, err := ParsePosition(sub)
			if err != nil {
				return err
			}
			p.At = &at
			return nil
		}},
		{Name: "effects", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			e, err := ParseEffects(sub, d)
			if err != nil {
				return err
			}
			p.Effects = &e
			return nil
		}},
		RestRule(&p.Unknown),
	}}
	err := m.Apply(n, d)
	return p, err
}

func (p *Property) Node() *sexp.Node {
	n := sexp.NewNode("property", sexp.String(p.Key), sexp.String(p.Value))
	if p.ID != nil {
		n.Append(sexp.NewNode("id", *p.ID))
	}
	if p.At != nil {
		n.Append(p.At.Node())
	}
	if p.Effects != nil {
		n.Append(p.Effects.Node())
	}
	appendNodes(n, p.Unknown)
	return n
}
