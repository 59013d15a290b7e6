package pcb

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// The graphical shape constructs appear both at board level (gr_line,
// gr_rect, ...) and inside footprints (fp_line, fp_rect, ...) with
// identical field sets, so one struct serves both and the tag is
// supplied at serialization time.
//
// Older files carry a plain (width W); KiCad 7+ writes a (stroke ...)
// sub-node instead. Whichever form was read is the form written back.

// Line is a straight graphic segment.
type Line struct {
	Start   common.XY
	End     common.XY
	Stroke  *common.Stroke
	Width   *sexp.Number
	Layer   string
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseLine(n *sexp.Node, d *sexp.Diagnostics) (*Line, error) {
	l := &Line{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { l.Locked = true }},
		keywordXY("start", &l.Start, true),
		keywordXY("end", &l.End, true),
		keywordStroke("stroke", &l.Stroke, d),
		keywordNumberOpt("width", &l.Width),
		keywordString("layer", &l.Layer),
	}
	rules = append(rules, common.UUIDRules(&l.UUID)...)
	rules = append(rules, common.RestRule(&l.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	return l, err
}

func (l *Line) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if l.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(l.Start.Node("start"), l.End.Node("end"))
	if l.Stroke != nil {
		n.Append(l.Stroke.Node())
	}
	if l.Width != nil {
		n.Append(sexp.NewNode("width", *l.Width))
	}
	n.Append(sexp.NewNode("layer", sexp.String(l.Layer)))
	if l.UUID != nil {
		n.Append(l.UUID.Node())
	}
	for _, sub := range l.Unknown {
		n.Append(sub)
	}
	return n
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Start   common.XY
	End     common.XY
	Stroke  *common.Stroke
	Width   *sexp.Number
	Fill    string // solid, none; empty when absent
	Layer   string
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseRect(n *sexp.Node, d *sexp.Diagnostics) (*Rect, error) {
	r := &Rect{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { r.Locked = true }},
		keywordXY("start", &r.Start, true),
		keywordXY("end", &r.End, true),
		keywordStroke("stroke", &r.Stroke, d),
		keywordNumberOpt("width", &r.Width),
		keywordString("fill", &r.Fill),
		keywordString("layer", &r.Layer),
	}
	rules = append(rules, common.UUIDRules(&r.UUID)...)
	rules = append(rules, common.RestRule(&r.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	if err == nil && r.Start.X.Equal(r.End.X) && r.Start.Y.Equal(r.End.Y) {
		d.Warnf(n.Tag, n.Pos, "zero-area rectangle")
	}
	return r, err
}

func (r *Rect) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if r.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(r.Start.Node("start"), r.End.Node("end"))
	if r.Stroke != nil {
		n.Append(r.Stroke.Node())
	}
	if r.Width != nil {
		n.Append(sexp.NewNode("width", *r.Width))
	}
	if r.Fill != "" {
		n.Append(sexp.NewNode("fill", sexp.Symbol(r.Fill)))
	}
	n.Append(sexp.NewNode("layer", sexp.String(r.Layer)))
	if r.UUID != nil {
		n.Append(r.UUID.Node())
	}
	for _, sub := range r.Unknown {
		n.Append(sub)
	}
	return n
}

// Circle is defined by its center and a point on the circumference.
type Circle struct {
	Center  common.XY
	End     common.XY
	Stroke  *common.Stroke
	Width   *sexp.Number
	Fill    string
	Layer   string
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseCircle(n *sexp.Node, d *sexp.Diagnostics) (*Circle, error) {
	c := &Circle{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { c.Locked = true }},
		keywordXY("center", &c.Center, true),
		keywordXY("end", &c.End, true),
		keywordStroke("stroke", &c.Stroke, d),
		keywordNumberOpt("width", &c.Width),
		keywordString("fill", &c.Fill),
		keywordString("layer", &c.Layer),
	}
	rules = append(rules, common.UUIDRules(&c.UUID)...)
	rules = append(rules, common.RestRule(&c.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	if err == nil && c.Center.X.Equal(c.End.X) && c.Center.Y.Equal(c.End.Y) {
		d.Warnf(n.Tag, n.Pos, "zero-radius circle")
	}
	return c, err
}

func (c *Circle) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if c.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(c.Center.Node("center"), c.End.Node("end"))
	if c.Stroke != nil {
		n.Append(c.Stroke.Node())
	}
	if c.Width != nil {
		n.Append(sexp.NewNode("width", *c.Width))
	}
	if c.Fill != "" {
		n.Append(sexp.NewNode("fill", sexp.Symbol(c.Fill)))
	}
	n.Append(sexp.NewNode("layer", sexp.String(c.Layer)))
	if c.UUID != nil {
		n.Append(c.UUID.Node())
	}
	for _, sub := range c.Unknown {
		n.Append(sub)
	}
	return n
}

// Arc is defined by three points: start, a point on the arc, and end.
type Arc struct {
	Start   common.XY
	Mid     common.XY
	End     common.XY
	Stroke  *common.Stroke
	Width   *sexp.Number
	Layer   string
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseArc(n *sexp.Node, d *sexp.Diagnostics) (*Arc, error) {
	a := &Arc{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { a.Locked = true }},
		keywordXY("start", &a.Start, true),
		keywordXY("mid", &a.Mid, true),
		keywordXY("end", &a.End, true),
		keywordStroke("stroke", &a.Stroke, d),
		keywordNumberOpt("width", &a.Width),
		keywordString("layer", &a.Layer),
	}
	rules = append(rules, common.UUIDRules(&a.UUID)...)
	rules = append(rules, common.RestRule(&a.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	return a, err
}

func (a *Arc) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if a.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(a.Start.Node("start"), a.Mid.Node("mid"), a.End.Node("end"))
	if a.Stroke != nil {
		n.Append(a.Stroke.Node())
	}
	if a.Width != nil {
		n.Append(sexp.NewNode("width", *a.Width))
	}
	n.Append(sexp.NewNode("layer", sexp.String(a.Layer)))
	if a.UUID != nil {
		n.Append(a.UUID.Node())
	}
	for _, sub := range a.Unknown {
		n.Append(sub)
	}
	return n
}

// Poly is a filled or outlined polygon.
type Poly struct {
	Pts     common.Pts
	Stroke  *common.Stroke
	Width   *sexp.Number
	Fill    string
	Layer   string
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parsePoly(n *sexp.Node, d *sexp.Diagnostics) (*Poly, error) {
	p := &Poly{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { p.Locked = true }},
		{Name: "pts", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
			pts, err := common.ParsePts(sub)
			if err != nil {
				return err
			}
			p.Pts = pts
			return nil
		}},
		keywordStroke("stroke", &p.Stroke, d),
		keywordNumberOpt("width", &p.Width),
		keywordString("fill", &p.Fill),
		keywordString("layer", &p.Layer),
	}
	rules = append(rules, common.UUIDRules(&p.UUID)...)
	rules = append(rules, common.RestRule(&p.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	return p, err
}

func (p *Poly) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if p.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(p.Pts.Node())
	if p.Stroke != nil {
		n.Append(p.Stroke.Node())
	}
	if p.Width != nil {
		n.Append(sexp.NewNode("width", *p.Width))
	}
	if p.Fill != "" {
		n.Append(sexp.NewNode("fill", sexp.Symbol(p.Fill)))
	}
	n.Append(sexp.NewNode("layer", sexp.String(p.Layer)))
	if p.UUID != nil {
		n.Append(p.UUID.Node())
	}
	for _, sub := range p.Unknown {
		n.Append(sub)
	}
	return n
}

// Text is a free text item on a layer.
type Text struct {
	Text    string
	At      common.Position
	Layer   string
	Effects *common.Effects
	Locked  bool
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseText(n *sexp.Node, d *sexp.Diagnostics) (*Text, error) {
	t := &Text{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { t.Locked = true }},
		{Name: "text", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			t.Text = atomText(v)
			return nil
		}},
		{Name: "at", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
			at, err := common.ParsePosition(sub)
			if err != nil {
				return err
			}
			t.At = at
			return nil
		}},
		keywordString("layer", &t.Layer),
		{Name: "effects", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			e, err := common.ParseEffects(sub, d)
			if err != nil {
				return err
			}
			t.Effects = &e
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&t.UUID)...)
	rules = append(rules, common.RestRule(&t.Unknown))
	err := sexp.Mapper{Construct: n.Tag, Rules: rules}.Apply(n, d)
	return t, err
}

func (t *Text) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag)
	if t.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(sexp.String(t.Text), t.At.Node())
	if t.Layer != "" {
		n.Append(sexp.NewNode("layer", sexp.String(t.Layer)))
	}
	if t.Effects != nil {
		n.Append(t.Effects.Node())
	}
	if t.UUID != nil {
		n.Append(t.UUID.Node())
	}
	for _, sub := range t.Unknown {
		n.Append(sub)
	}
	return n
}

// Graphics groups the board-level graphic items by kind.
type Graphics struct {
	Lines   []*Line
	Rects   []*Rect
	Circles []*Circle
	Arcs    []*Arc
	Polys   []*Poly
	Texts   []*Text
}

// rule helpers shared by the construct tables

func keywordXY(name string, dst *common.XY, required bool) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, Required: required, BindNode: func(sub *sexp.Node) error {
		xy, err := common.ParseXY(sub)
		if err != nil {
			return err
		}
		*dst = xy
		return nil
	}}
}

func keywordString(name string, dst *string) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		s, err := sub.StringAt(0)
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}}
}

func keywordNumber(name string, dst *sexp.Number, required bool) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, Required: required, BindNode: func(sub *sexp.Node) error {
		v, err := sub.NumberAt(0)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}}
}

func keywordNumberOpt(name string, dst **sexp.Number) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		v, err := sub.NumberAt(0)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}}
}

func keywordStroke(name string, dst **common.Stroke, d *sexp.Diagnostics) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		s, err := common.ParseStroke(sub, d)
		if err != nil {
			return err
		}
		*dst = &s
		return nil
	}}
}
