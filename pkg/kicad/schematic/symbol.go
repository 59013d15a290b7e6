package schematic

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// PinNames holds the (pin_names [(offset N)] [hide]) header of a
// library symbol.
type PinNames struct {
	Offset *sexp.Number
	Hide   bool
}

// LibSymbol is a symbol definition from the lib_symbols cache. Units
// are nested symbol nodes named like "R_0_1"; their bodies hold the
// drawing primitives and pins.
type LibSymbol struct {
	Name           string
	Power          bool
	PinNumbersHide bool
	PinNames       *PinNames
	InBOM          *bool
	OnBoard        *bool
	Properties     []*common.Property
	Units          []*SymbolUnit
	Unknown        []*sexp.Node
}

// SymbolUnit is one body ("R_0_1") of a library symbol.
type SymbolUnit struct {
	Name       string
	Rectangles []*UnitRect
	Circles    []*UnitCircle
	Arcs       []*UnitArc
	Polylines  []*UnitPoly
	Texts      []*UnitText
	Pins       []*Pin
	Unknown    []*sexp.Node
}

type UnitRect struct {
	Start   common.XY
	End     common.XY
	Stroke  *common.Stroke
	Fill    *Fill
	Unknown []*sexp.Node
}

type UnitCircle struct {
	Center  common.XY
	Radius  sexp.Number
	Stroke  *common.Stroke
	Fill    *Fill
	Unknown []*sexp.Node
}

type UnitArc struct {
	Start   common.XY
	Mid     common.XY
	End     common.XY
	Stroke  *common.Stroke
	Fill    *Fill
	Unknown []*sexp.Node
}

type UnitPoly struct {
	Pts     common.Pts
	Stroke  *common.Stroke
	Fill    *Fill
	Unknown []*sexp.Node
}

type UnitText struct {
	Text    string
	At      common.Position
	Effects *common.Effects
	Unknown []*sexp.Node
}

// Pin is a library symbol pin. Type is the electrical type (input,
// output, passive, ...), Style the graphic style (line, inverted, ...).
type Pin struct {
	Type       string
	Style      string
	At         common.Position
	Length     *sexp.Number
	Hide       bool
	Name       string
	NameFx     *common.Effects
	Number     string
	NumberFx   *common.Effects
	Alternates []*sexp.Node
	Unknown    []*sexp.Node
}

func parseLibSymbol(n *sexp.Node, d *sexp.Diagnostics) (*LibSymbol, error) {
	ls := &LibSymbol{}
	rules := []sexp.Rule{
		{Name: "name", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			ls.Name = atomText(v)
			return nil
		}},
		{Name: "power", Kind: sexp.FlagEmpty, BindFlag: func() { ls.Power = true }},
		{Name: "pin_numbers", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			ls.PinNumbersHide = sub.HasFlag("hide")
			return nil
		}},
		{Name: "pin_names", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			pn := &PinNames{Hide: sub.HasFlag("hide")}
			if off, ok := sub.Find("offset"); ok {
				v, err := off.NumberAt(0)
				if err != nil {
					return err
				}
				pn.Offset = &v
			}
			ls.PinNames = pn
			return nil
		}},
		yesNo("in_bom", &ls.InBOM),
		yesNo("on_board", &ls.OnBoard),
		propertyList(&ls.Properties, d),
		childList("symbol", &ls.Units, d, parseSymbolUnit),
		common.RestRule(&ls.Unknown),
	}
	if err := (sexp.Mapper{Construct: "symbol", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *LibSymbol) node() *sexp.Node {
	n := sexp.NewNode("symbol", sexp.String(ls.Name))
	if ls.Power {
		n.Append(sexp.NewNode("power"))
	}
	if ls.PinNumbersHide {
		n.Append(sexp.NewNode("pin_numbers", sexp.Symbol("hide")))
	}
	if pn := ls.PinNames; pn != nil {
		sub := sexp.NewNode("pin_names")
		if pn.Offset != nil {
			sub.Append(sexp.NewNode("offset", *pn.Offset))
		}
		if pn.Hide {
			sub.Append(sexp.Symbol("hide"))
		}
		n.Append(sub)
	}
	if ls.InBOM != nil {
		n.Append(yesNoNode("in_bom", *ls.InBOM))
	}
	if ls.OnBoard != nil {
		n.Append(yesNoNode("on_board", *ls.OnBoard))
	}
	for _, p := range ls.Properties {
		n.Append(p.Node())
	}
	for _, u := range ls.Units {
		n.Append(u.node())
	}
	appendUnknown(n, ls.Unknown)
	return n
}

func parseSymbolUnit(n *sexp.Node, d *sexp.Diagnostics) (*SymbolUnit, error) {
	u := &SymbolUnit{}
	rules := []sexp.Rule{
		{Name: "name", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			u.Name = atomText(v)
			return nil
		}},
		childList("rectangle", &u.Rectangles, d, parseUnitRect),
		childList("circle", &u.Circles, d, parseUnitCircle),
		childList("arc", &u.Arcs, d, parseUnitArc),
		childList("polyline", &u.Polylines, d, parseUnitPoly),
		childList("text", &u.Texts, d, parseUnitText),
		childList("pin", &u.Pins, d, parsePin),
		common.RestRule(&u.Unknown),
	}
	if err := (sexp.Mapper{Construct: "symbol unit", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *SymbolUnit) node() *sexp.Node {
	n := sexp.NewNode("symbol", sexp.String(u.Name))
	for _, r := range u.Rectangles {
		n.Append(r.node())
	}
	for _, c := range u.Circles {
		n.Append(c.node())
	}
	for _, a := range u.Arcs {
		n.Append(a.node())
	}
	for _, p := range u.Polylines {
		n.Append(p.node())
	}
	for _, t := range u.Texts {
		n.Append(t.node())
	}
	for _, p := range u.Pins {
		n.Append(p.node())
	}
	appendUnknown(n, u.Unknown)
	return n
}

func fillRule(dst **Fill, d *sexp.Diagnostics) sexp.Rule {
	return sexp.Rule{Name: "fill", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		f, err := parseFill(sub, d)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}}
}

func parseUnitRect(n *sexp.Node, d *sexp.Diagnostics) (*UnitRect, error) {
	r := &UnitRect{}
	rules := []sexp.Rule{
		keywordXY("start", &r.Start, true),
		keywordXY("end", &r.End, true),
		keywordStroke(&r.Stroke, d),
		fillRule(&r.Fill, d),
		common.RestRule(&r.Unknown),
	}
	if err := (sexp.Mapper{Construct: "rectangle", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *UnitRect) node() *sexp.Node {
	n := sexp.NewNode("rectangle", r.Start.Node("start"), r.End.Node("end"))
	if r.Stroke != nil {
		n.Append(r.Stroke.Node())
	}
	if r.Fill != nil {
		n.Append(r.Fill.node())
	}
	appendUnknown(n, r.Unknown)
	return n
}

func parseUnitCircle(n *sexp.Node, d *sexp.Diagnostics) (*UnitCircle, error) {
	c := &UnitCircle{}
	rules := []sexp.Rule{
		keywordXY("center", &c.Center, true),
		keywordNumber("radius", &c.Radius, true),
		keywordStroke(&c.Stroke, d),
		fillRule(&c.Fill, d),
		common.RestRule(&c.Unknown),
	}
	if err := (sexp.Mapper{Construct: "circle", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *UnitCircle) node() *sexp.Node {
	n := sexp.NewNode("circle", c.Center.Node("center"), sexp.NewNode("radius", c.Radius))
	if c.Stroke != nil {
		n.Append(c.Stroke.Node())
	}
	if c.Fill != nil {
		n.Append(c.Fill.node())
	}
	appendUnknown(n, c.Unknown)
	return n
}

func parseUnitArc(n *sexp.Node, d *sexp.Diagnostics) (*UnitArc, error) {
	a := &UnitArc{}
	rules := []sexp.Rule{
		keywordXY("start", &a.Start, true),
		keywordXY("mid", &a.Mid, true),
		keywordXY("end", &a.End, true),
		keywordStroke(&a.Stroke, d),
		fillRule(&a.Fill, d),
		common.RestRule(&a.Unknown),
	}
	if err := (sexp.Mapper{Construct: "arc", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *UnitArc) node() *sexp.Node {
	n := sexp.NewNode("arc", a.Start.Node("start"), a.Mid.Node("mid"), a.End.Node("end"))
	if a.Stroke != nil {
		n.Append(a.Stroke.Node())
	}
	if a.Fill != nil {
		n.Append(a.Fill.node())
	}
	appendUnknown(n, a.Unknown)
	return n
}

func parseUnitPoly(n *sexp.Node, d *sexp.Diagnostics) (*UnitPoly, error) {
	p := &UnitPoly{}
	rules := []sexp.Rule{
		keywordPts(&p.Pts),
		keywordStroke(&p.Stroke, d),
		fillRule(&p.Fill, d),
		common.RestRule(&p.Unknown),
	}
	if err := (sexp.Mapper{Construct: "polyline", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *UnitPoly) node() *sexp.Node {
	n := sexp.NewNode("polyline", p.Pts.Node())
	if p.Stroke != nil {
		n.Append(p.Stroke.Node())
	}
	if p.Fill != nil {
		n.Append(p.Fill.node())
	}
	appendUnknown(n, p.Unknown)
	return n
}

func parseUnitText(n *sexp.Node, d *sexp.Diagnostics) (*UnitText, error) {
	t := &UnitText{}
	rules := []sexp.Rule{
		{Name: "text", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			t.Text = atomText(v)
			return nil
		}},
		keywordPosition(&t.At, true),
		keywordEffects(&t.Effects, d),
		common.RestRule(&t.Unknown),
	}
	if err := (sexp.Mapper{Construct: "text", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *UnitText) node() *sexp.Node {
	n := sexp.NewNode("text", sexp.String(t.Text), t.At.Node())
	if t.Effects != nil {
		n.Append(t.Effects.Node())
	}
	appendUnknown(n, t.Unknown)
	return n
}

func parsePin(n *sexp.Node, d *sexp.Diagnostics) (*Pin, error) {
	p := &Pin{}
	bindAtom := func(dst *string) func(v sexp.Value) error {
		return func(v sexp.Value) error {
			if _, ok := v.(*sexp.Node); ok {
				return fmt.Errorf("expected atom")
			}
			*dst = atomText(v)
			return nil
		}
	}
	namedAtom := func(tag string, text *string, fx **common.Effects) sexp.Rule {
		return sexp.Rule{Name: tag, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			*text = s
			if sub2, ok := sub.Find("effects"); ok {
				e, err := common.ParseEffects(sub2, d)
				if err != nil {
					return err
				}
				*fx = &e
			}
			return nil
		}}
	}
	rules := []sexp.Rule{
		{Name: "type", Kind: sexp.Positional, Required: true, Bind: bindAtom(&p.Type)},
		{Name: "style", Kind: sexp.OptionalPositional, Bind: bindAtom(&p.Style)},
		keywordPosition(&p.At, true),
		keywordNumberOpt("length", &p.Length),
		{Name: "hide", Kind: sexp.Flag, BindFlag: func() { p.Hide = true }},
		namedAtom("name", &p.Name, &p.NameFx),
		namedAtom("number", &p.Number, &p.NumberFx),
		{Name: "alternate", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			p.Alternates = append(p.Alternates, sub)
			return nil
		}},
		common.RestRule(&p.Unknown),
	}
	if err := (sexp.Mapper{Construct: "pin", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pin) node() *sexp.Node {
	n := sexp.NewNode("pin", sexp.Symbol(p.Type))
	if p.Style != "" {
		n.Append(sexp.Symbol(p.Style))
	}
	n.Append(p.At.Node())
	if p.Length != nil {
		n.Append(sexp.NewNode("length", *p.Length))
	}
	if p.Hide {
		n.Append(sexp.Symbol("hide"))
	}
	named := func(tag, text string, fx *common.Effects) *sexp.Node {
		sub := sexp.NewNode(tag, sexp.String(text))
		if fx != nil {
			sub.Append(fx.Node())
		}
		return sub
	}
	if p.Name != "" || p.NameFx != nil {
		n.Append(named("name", p.Name, p.NameFx))
	}
	if p.Number != "" || p.NumberFx != nil {
		n.Append(named("number", p.Number, p.NumberFx))
	}
	for _, alt := range p.Alternates {
		n.Append(alt)
	}
	appendUnknown(n, p.Unknown)
	return n
}

// PinRef ties a placed symbol's pin number to its UUID.
type PinRef struct {
	Number  string
	UUID    *common.UUID
	Unknown []*sexp.Node
}

// Symbol is a placed symbol instance on a sheet.
type Symbol struct {
	LibID            string
	At               common.Position
	Mirror           string
	Unit             *sexp.Number
	InBOM            *bool
	OnBoard          *bool
	DNP              *bool
	FieldsAutoplaced bool
	UUID             *common.UUID
	Properties       []*common.Property
	Pins             []*PinRef
	Instances        *sexp.Node // project/path bookkeeping, kept verbatim
	Unknown          []*sexp.Node
}

func parseSymbol(n *sexp.Node, d *sexp.Diagnostics) (*Symbol, error) {
	s := &Symbol{}
	rules := []sexp.Rule{
		keywordString("lib_id", &s.LibID),
		keywordPosition(&s.At, true),
		keywordString("mirror", &s.Mirror),
		keywordNumberOpt("unit", &s.Unit),
		yesNo("in_bom", &s.InBOM),
		yesNo("on_board", &s.OnBoard),
		yesNo("dnp", &s.DNP),
		{Name: "fields_autoplaced", Kind: sexp.FlagEmpty, BindFlag: func() { s.FieldsAutoplaced = true }},
		propertyList(&s.Properties, d),
		{Name: "pin", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			pr := &PinRef{}
			num, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			pr.Number = num
			prRules := []sexp.Rule{
				{Name: "number", Kind: sexp.Positional, Required: true, Bind: func(sexp.Value) error { return nil }},
			}
			prRules = append(prRules, common.UUIDRules(&pr.UUID)...)
			prRules = append(prRules, common.RestRule(&pr.Unknown))
			if err := (sexp.Mapper{Construct: "pin", Rules: prRules}).Apply(sub, d); err != nil {
				return err
			}
			s.Pins = append(s.Pins, pr)
			return nil
		}},
		{Name: "instances", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s.Instances = sub
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&s.UUID)...)
	rules = append(rules, common.RestRule(&s.Unknown))
	if err := (sexp.Mapper{Construct: "symbol", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Symbol) node() *sexp.Node {
	n := sexp.NewNode("symbol")
	if s.LibID != "" {
		n.Append(sexp.NewNode("lib_id", sexp.String(s.LibID)))
	}
	n.Append(s.At.Node())
	if s.Mirror != "" {
		n.Append(sexp.NewNode("mirror", sexp.Symbol(s.Mirror)))
	}
	if s.Unit != nil {
		n.Append(sexp.NewNode("unit", *s.Unit))
	}
	if s.InBOM != nil {
		n.Append(yesNoNode("in_bom", *s.InBOM))
	}
	if s.OnBoard != nil {
		n.Append(yesNoNode("on_board", *s.OnBoard))
	}
	if s.DNP != nil {
		n.Append(yesNoNode("dnp", *s.DNP))
	}
	if s.FieldsAutoplaced {
		n.Append(sexp.NewNode("fields_autoplaced"))
	}
	if s.UUID != nil {
		n.Append(s.UUID.Node())
	}
	for _, p := range s.Properties {
		n.Append(p.Node())
	}
	for _, pr := range s.Pins {
		pn := sexp.NewNode("pin", sexp.String(pr.Number))
		if pr.UUID != nil {
			pn.Append(pr.UUID.Node())
		}
		appendUnknown(pn, pr.Unknown)
		n.Append(pn)
	}
	if s.Instances != nil {
		n.Append(s.Instances)
	}
	appendUnknown(n, s.Unknown)
	return n
}

// Reference returns the symbol's Reference property value, if set.
func (s *Symbol) Reference() string {
	return s.propertyValue("Reference")
}

// Value returns the symbol's Value property value, if set.
func (s *Symbol) Value() string {
	return s.propertyValue("Value")
}

func (s *Symbol) propertyValue(key string) string {
	for _, p := range s.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}
