package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// DefaultRoundrectRatio is the corner radius ratio KiCad assumes for a
// roundrect pad that does not carry an explicit roundrect_rratio.
const DefaultRoundrectRatio = 0.25

// Attributes is the footprint (attr ...) construct.
type Attributes struct {
	Type                   string // smd, through_hole; empty when absent
	BoardOnly              bool
	ExcludeFromPosFiles    bool
	ExcludeFromBOM         bool
	AllowMissingCourtyard  bool
	AllowSoldermaskBridges bool
}

func parseAttributes(n *sexp.Node, d *sexp.Diagnostics) (*Attributes, error) {
	a := &Attributes{}
	m := sexp.Mapper{Construct: "attr", Rules: []sexp.Rule{
		{Name: "type", Kind: sexp.OptionalPositional, Bind: func(v sexp.Value) error {
			sym, ok := v.(sexp.Symbol)
			if !ok || (sym != "smd" && sym != "through_hole") {
				return errNotThisField
			}
			a.Type = string(sym)
			return nil
		}},
		{Name: "board_only", Kind: sexp.Flag, BindFlag: func() { a.BoardOnly = true }},
		{Name: "exclude_from_pos_files", Kind: sexp.Flag, BindFlag: func() { a.ExcludeFromPosFiles = true }},
		{Name: "exclude_from_bom", Kind: sexp.Flag, BindFlag: func() { a.ExcludeFromBOM = true }},
		{Name: "allow_missing_courtyard", Kind: sexp.Flag, BindFlag: func() { a.AllowMissingCourtyard = true }},
		{Name: "allow_soldermask_bridges", Kind: sexp.Flag, BindFlag: func() { a.AllowSoldermaskBridges = true }},
	}}
	err := m.Apply(n, d)
	return a, err
}

func (a *Attributes) node() *sexp.Node {
	n := sexp.NewNode("attr")
	if a.Type != "" {
		n.Append(sexp.Symbol(a.Type))
	}
	if a.BoardOnly {
		n.Append(sexp.Symbol("board_only"))
	}
	if a.ExcludeFromPosFiles {
		n.Append(sexp.Symbol("exclude_from_pos_files"))
	}
	if a.ExcludeFromBOM {
		n.Append(sexp.Symbol("exclude_from_bom"))
	}
	if a.AllowMissingCourtyard {
		n.Append(sexp.Symbol("allow_missing_courtyard"))
	}
	if a.AllowSoldermaskBridges {
		n.Append(sexp.Symbol("allow_soldermask_bridges"))
	}
	return n
}

// FpText is footprint text: reference, value or free user text.
type FpText struct {
	Type    string // reference, value, user
	Locked  bool
	Text    string
	At      common.Position
	Layer   string
	Hide    bool
	Effects *common.Effects
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseFpText(n *sexp.Node, d *sexp.Diagnostics) (*FpText, error) {
	t := &FpText{}
	rules := []sexp.Rule{
		{Name: "type", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			sym, ok := v.(sexp.Symbol)
			if !ok {
				return fmt.Errorf("expected text type symbol")
			}
			t.Type = string(sym)
			return nil
		}},
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
		{Name: "hide", Kind: sexp.Flag, BindFlag: func() { t.Hide = true }},
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
	err := sexp.Mapper{Construct: "fp_text", Rules: rules}.Apply(n, d)
	return t, err
}

func (t *FpText) node() *sexp.Node {
	n := sexp.NewNode("fp_text", sexp.Symbol(t.Type))
	if t.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(sexp.String(t.Text), t.At.Node(), sexp.NewNode("layer", sexp.String(t.Layer)))
	if t.Hide {
		n.Append(sexp.Symbol("hide"))
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

// Drill is a pad drill definition: round or oval, with an optional
// offset from the pad center.
type Drill struct {
	Oval   bool
	Size   *sexp.Number
	SizeY  *sexp.Number
	Offset *common.XY
}

func parseDrill(n *sexp.Node) (*Drill, error) {
	dr := &Drill{}
	i := 0
	if len(n.Children) > i {
		if sym, ok := n.Children[i].(sexp.Symbol); ok && sym == "oval" {
			dr.Oval = true
			i++
		}
	}
	for ; i < len(n.Children); i++ {
		switch v := n.Children[i].(type) {
		case sexp.Number:
			if dr.Size == nil {
				num := v
				dr.Size = &num
			} else if dr.SizeY == nil {
				num := v
				dr.SizeY = &num
			} else {
				return nil, fmt.Errorf("too many drill dimensions")
			}
		case *sexp.Node:
			if v.Tag != "offset" {
				return nil, fmt.Errorf("unexpected (%s) in drill", v.Tag)
			}
			off, err := common.ParseXY(v)
			if err != nil {
				return nil, err
			}
			dr.Offset = &off
		default:
			return nil, fmt.Errorf("unexpected drill value %s", sexp.WriteValue(v))
		}
	}
	return dr, nil
}

func (dr *Drill) node() *sexp.Node {
	n := sexp.NewNode("drill")
	if dr.Oval {
		n.Append(sexp.Symbol("oval"))
	}
	if dr.Size != nil {
		n.Append(*dr.Size)
	}
	if dr.SizeY != nil {
		n.Append(*dr.SizeY)
	}
	if dr.Offset != nil {
		n.Append(dr.Offset.Node("offset"))
	}
	return n
}

// PadNet is a pad's weak reference to a net: number plus the name the
// file recorded for it.
type PadNet struct {
	Number sexp.Number
	Name   string
}

// Pad is a footprint pad. Number, Type and Shape are positional; the
// remaining fields are keyword-tagged and optional.
type Pad struct {
	Number string
	Type   string // thru_hole, smd, connect, np_thru_hole
	Shape  string // rect, circle, oval, trapezoid, roundrect, custom
	Locked bool

	At                     common.Position
	Size                   common.XY
	Drill                  *Drill
	Properties             []string
	Layers                 []string
	RemoveUnusedLayers     bool
	KeepEndLayers          bool
	RoundrectRRatio        *sexp.Number
	ChamferRatio           *sexp.Number
	Chamfer                []string
	Net                    *PadNet
	PinFunction            string
	PinType                string
	SolderMaskMargin       *sexp.Number
	SolderPasteMargin      *sexp.Number
	SolderPasteMarginRatio *sexp.Number
	Clearance              *sexp.Number
	ZoneConnect            *sexp.Number
	ThermalBridgeWidth     *sexp.Number
	ThermalWidth           *sexp.Number
	ThermalGap             *sexp.Number
	Options                *sexp.Node // custom pad options, kept verbatim
	Primitives             *sexp.Node // custom pad primitives, kept verbatim
	UUID                   *common.UUID
	Unknown                []*sexp.Node

	// Older files write the pad number as a bare atom instead of a
	// quoted string; the spelling it was read with is kept so the
	// file round-trips unchanged.
	numberBare bool
}

// RoundrectRatio returns the corner ratio, falling back to the format
// default when the field is absent.
func (p *Pad) RoundrectRatio() float64 {
	if p.RoundrectRRatio == nil {
		return DefaultRoundrectRatio
	}
	return p.RoundrectRRatio.Value()
}

func parsePad(n *sexp.Node, d *sexp.Diagnostics) (*Pad, error) {
	p := &Pad{}
	keepNode := func(dst **sexp.Node) func(*sexp.Node) error {
		return func(sub *sexp.Node) error {
			*dst = sub
			return nil
		}
	}
	rules := []sexp.Rule{
		{Name: "number", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			_, quoted := v.(sexp.String)
			p.Number = atomText(v)
			p.numberBare = !quoted
			return nil
		}},
		{Name: "type", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			sym, ok := v.(sexp.Symbol)
			if !ok {
				return fmt.Errorf("expected pad type symbol")
			}
			p.Type = string(sym)
			return nil
		}},
		{Name: "shape", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			sym, ok := v.(sexp.Symbol)
			if !ok {
				return fmt.Errorf("expected pad shape symbol")
			}
			p.Shape = string(sym)
			return nil
		}},
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { p.Locked = true }},
		{Name: "at", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
			at, err := common.ParsePosition(sub)
			if err != nil {
				return err
			}
			p.At = at
			return nil
		}},
		keywordXY("size", &p.Size, true),
		{Name: "drill", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			dr, err := parseDrill(sub)
			if err != nil {
				return err
			}
			p.Drill = dr
			return nil
		}},
		{Name: "property", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			p.Properties = append(p.Properties, s)
			return nil
		}},
		{Name: "layers", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			layers, err := stringList(sub)
			if err != nil {
				return err
			}
			p.Layers = layers
			return nil
		}},
		{Name: "remove_unused_layers", Kind: sexp.FlagEmpty, BindFlag: func() { p.RemoveUnusedLayers = true }},
		{Name: "keep_end_layers", Kind: sexp.FlagEmpty, BindFlag: func() { p.KeepEndLayers = true }},
		keywordNumberOpt("roundrect_rratio", &p.RoundrectRRatio),
		keywordNumberOpt("chamfer_ratio", &p.ChamferRatio),
		{Name: "chamfer", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			corners, err := stringList(sub)
			if err != nil {
				return err
			}
			p.Chamfer = corners
			return nil
		}},
		{Name: "net", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			num, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			name, err := sub.StringAt(1)
			if err != nil {
				return err
			}
			p.Net = &PadNet{Number: num, Name: name}
			return nil
		}},
		keywordString("pinfunction", &p.PinFunction),
		keywordString("pintype", &p.PinType),
		keywordNumberOpt("solder_mask_margin", &p.SolderMaskMargin),
		keywordNumberOpt("solder_paste_margin", &p.SolderPasteMargin),
		keywordNumberOpt("solder_paste_margin_ratio", &p.SolderPasteMarginRatio),
		keywordNumberOpt("clearance", &p.Clearance),
		keywordNumberOpt("zone_connect", &p.ZoneConnect),
		keywordNumberOpt("thermal_bridge_width", &p.ThermalBridgeWidth),
		keywordNumberOpt("thermal_width", &p.ThermalWidth),
		keywordNumberOpt("thermal_gap", &p.ThermalGap),
		{Name: "options", Kind: sexp.Keyword, BindNode: keepNode(&p.Options)},
		{Name: "primitives", Kind: sexp.Keyword, BindNode: keepNode(&p.Primitives)},
	}
	rules = append(rules, common.UUIDRules(&p.UUID)...)
	rules = append(rules, common.RestRule(&p.Unknown))
	err := sexp.Mapper{Construct: "pad", Rules: rules}.Apply(n, d)
	if err == nil {
		if p.Size.X.Value() <= 0 || p.Size.Y.Value() <= 0 {
			d.Warnf("pad", n.Pos, "pad %q has zero-area size %s x %s", p.Number, p.Size.X, p.Size.Y)
		}
		if p.RoundrectRRatio != nil && (p.RoundrectRRatio.Value() < 0 || p.RoundrectRRatio.Value() > 0.5) {
			d.Warnf("pad", n.Pos, "roundrect_rratio %s outside [0, 0.5]", p.RoundrectRRatio)
		}
	}
	return p, err
}

func (p *Pad) node() *sexp.Node {
	var number sexp.Value = sexp.String(p.Number)
	if p.numberBare {
		number = sexp.Symbol(p.Number)
	}
	n := sexp.NewNode("pad", number, sexp.Symbol(p.Type), sexp.Symbol(p.Shape))
	if p.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(p.At.Node(), p.Size.Node("size"))
	if p.Drill != nil {
		n.Append(p.Drill.node())
	}
	for _, prop := range p.Properties {
		n.Append(sexp.NewNode("property", sexp.Symbol(prop)))
	}
	layers := sexp.NewNode("layers")
	for _, l := range p.Layers {
		layers.Append(sexp.String(l))
	}
	n.Append(layers)
	if p.RemoveUnusedLayers {
		n.Append(sexp.NewNode("remove_unused_layers"))
	}
	if p.KeepEndLayers {
		n.Append(sexp.NewNode("keep_end_layers"))
	}
	if p.RoundrectRRatio != nil {
		n.Append(sexp.NewNode("roundrect_rratio", *p.RoundrectRRatio))
	}
	if p.ChamferRatio != nil {
		n.Append(sexp.NewNode("chamfer_ratio", *p.ChamferRatio))
	}
	if len(p.Chamfer) > 0 {
		chamfer := sexp.NewNode("chamfer")
		for _, c := range p.Chamfer {
			chamfer.Append(sexp.Symbol(c))
		}
		n.Append(chamfer)
	}
	if p.Net != nil {
		n.Append(sexp.NewNode("net", p.Net.Number, sexp.String(p.Net.Name)))
	}
	if p.PinFunction != "" {
		n.Append(sexp.NewNode("pinfunction", sexp.String(p.PinFunction)))
	}
	if p.PinType != "" {
		n.Append(sexp.NewNode("pintype", sexp.String(p.PinType)))
	}
	appendOptNumber := func(tag string, v *sexp.Number) {
		if v != nil {
			n.Append(sexp.NewNode(tag, *v))
		}
	}
	appendOptNumber("solder_mask_margin", p.SolderMaskMargin)
	appendOptNumber("solder_paste_margin", p.SolderPasteMargin)
	appendOptNumber("solder_paste_margin_ratio", p.SolderPasteMarginRatio)
	appendOptNumber("clearance", p.Clearance)
	appendOptNumber("zone_connect", p.ZoneConnect)
	appendOptNumber("thermal_bridge_width", p.ThermalBridgeWidth)
	appendOptNumber("thermal_width", p.ThermalWidth)
	appendOptNumber("thermal_gap", p.ThermalGap)
	if p.Options != nil {
		n.Append(p.Options)
	}
	if p.Primitives != nil {
		n.Append(p.Primitives)
	}
	if p.UUID != nil {
		n.Append(p.UUID.Node())
	}
	for _, sub := range p.Unknown {
		n.Append(sub)
	}
	return n
}

// Model is a 3D model reference attached to a footprint.
type Model struct {
	File    string
	Hide    bool
	Opacity *sexp.Number
	Offset  *common.XYZ
	Scale   *common.XYZ
	Rotate  *common.XYZ
	Unknown []*sexp.Node
}

func parseModel(n *sexp.Node, d *sexp.Diagnostics) (*Model, error) {
	mo := &Model{}
	xyzRule := func(name string, dst **common.XYZ) sexp.Rule {
		return sexp.Rule{Name: name, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			inner, ok := sub.Find("xyz")
			if !ok {
				return fmt.Errorf("expected (xyz ...) in %s", name)
			}
			v, err := common.ParseXYZ(inner)
			if err != nil {
				return err
			}
			*dst = &v
			return nil
		}}
	}
	rules := []sexp.Rule{
		{Name: "file", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			mo.File = atomText(v)
			return nil
		}},
		{Name: "hide", Kind: sexp.Flag, BindFlag: func() { mo.Hide = true }},
		keywordNumberOpt("opacity", &mo.Opacity),
		xyzRule("offset", &mo.Offset),
		xyzRule("scale", &mo.Scale),
		xyzRule("rotate", &mo.Rotate),
		common.RestRule(&mo.Unknown),
	}
	err := sexp.Mapper{Construct: "model", Rules: rules}.Apply(n, d)
	return mo, err
}

func (mo *Model) node() *sexp.Node {
	n := sexp.NewNode("model", sexp.String(mo.File))
	if mo.Hide {
		n.Append(sexp.Symbol("hide"))
	}
	if mo.Opacity != nil {
		n.Append(sexp.NewNode("opacity", *mo.Opacity))
	}
	if mo.Offset != nil {
		n.Append(sexp.NewNode("offset", mo.Offset.Node()))
	}
	if mo.Scale != nil {
		n.Append(sexp.NewNode("scale", mo.Scale.Node()))
	}
	if mo.Rotate != nil {
		n.Append(sexp.NewNode("rotate", mo.Rotate.Node()))
	}
	for _, sub := range mo.Unknown {
		n.Append(sub)
	}
	return n
}

// Footprint is a placed footprint (or a library footprint when At is
// absent).
type Footprint struct {
	LibraryLink       string
	Locked            bool
	Placed            bool
	Layer             string
	Tedit             string
	UUID              *common.UUID
	At                *common.Position
	Descr             string
	Tags              string
	Properties        []*common.Property
	Path              string
	SolderMaskMargin  *sexp.Number
	SolderPasteMargin *sexp.Number
	SolderPasteRatio  *sexp.Number
	Clearance         *sexp.Number
	ZoneConnect       *sexp.Number
	Attr              *Attributes
	Texts             []*FpText
	Lines             []*Line
	Rects             []*Rect
	Circles           []*Circle
	Arcs              []*Arc
	Polys             []*Poly
	Pads              []*Pad
	Models            []*Model
	Unknown           []*sexp.Node

	hasPath bool
}

// PadByNumber returns the first pad with the given number. Pad numbers
// are not unique (thermal pads often repeat), so callers needing all
// of them should range over Pads.
func (f *Footprint) PadByNumber(number string) (*Pad, bool) {
	for _, p := range f.Pads {
		if p.Number == number {
			return p, true
		}
	}
	return nil, false
}

func parseFootprint(n *sexp.Node, d *sexp.Diagnostics) (*Footprint, error) {
	f := &Footprint{}
	rules := []sexp.Rule{
		{Name: "library_link", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			f.LibraryLink = atomText(v)
			return nil
		}},
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { f.Locked = true }},
		{Name: "placed", Kind: sexp.Flag, BindFlag: func() { f.Placed = true }},
		keywordString("layer", &f.Layer),
		keywordString("tedit", &f.Tedit),
	}
	rules = append(rules, common.UUIDRules(&f.UUID)...)
	rules = append(rules,
		sexp.Rule{Name: "at", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			at, err := common.ParsePosition(sub)
			if err != nil {
				return err
			}
			f.At = &at
			return nil
		}},
		keywordString("descr", &f.Descr),
		keywordString("tags", &f.Tags),
		sexp.Rule{Name: "property", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			prop, err := common.ParseProperty(sub, d)
			if err != nil {
				return err
			}
			f.Properties = append(f.Properties, prop)
			return nil
		}},
		sexp.Rule{Name: "path", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			p, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			f.Path = p
			f.hasPath = true
			return nil
		}},
		keywordNumberOpt("solder_mask_margin", &f.SolderMaskMargin),
		keywordNumberOpt("solder_paste_margin", &f.SolderPasteMargin),
		keywordNumberOpt("solder_paste_ratio", &f.SolderPasteRatio),
		keywordNumberOpt("clearance", &f.Clearance),
		keywordNumberOpt("zone_connect", &f.ZoneConnect),
		sexp.Rule{Name: "attr", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			a, err := parseAttributes(sub, d)
			if err != nil {
				return err
			}
			f.Attr = a
			return nil
		}},
		childList("fp_text", &f.Texts, d, parseFpText),
		childList("fp_line", &f.Lines, d, parseLine),
		childList("fp_rect", &f.Rects, d, parseRect),
		childList("fp_circle", &f.Circles, d, parseCircle),
		childList("fp_arc", &f.Arcs, d, parseArc),
		childList("fp_poly", &f.Polys, d, parsePoly),
		childList("pad", &f.Pads, d, parsePad),
		childList("model", &f.Models, d, parseModel),
		common.RestRule(&f.Unknown),
	)
	err := sexp.Mapper{Construct: "footprint", Rules: rules}.Apply(n, d)
	return f, err
}

func (f *Footprint) node() (*sexp.Node, error) {
	if f.LibraryLink == "" {
		return nil, &sexp.SerializeError{Construct: "footprint", Reason: "empty library link"}
	}
	n := sexp.NewNode("footprint", sexp.String(f.LibraryLink))
	if f.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	if f.Placed {
		n.Append(sexp.Symbol("placed"))
	}
	n.Append(sexp.NewNode("layer", sexp.String(f.Layer)))
	if f.Tedit != "" {
		n.Append(sexp.NewNode("tedit", sexp.Symbol(f.Tedit)))
	}
	if f.UUID != nil {
		n.Append(f.UUID.Node())
	}
	if f.At != nil {
		n.Append(f.At.Node())
	}
	if f.Descr != "" {
		n.Append(sexp.NewNode("descr", sexp.String(f.Descr)))
	}
	if f.Tags != "" {
		n.Append(sexp.NewNode("tags", sexp.String(f.Tags)))
	}
	for _, prop := range f.Properties {
		n.Append(prop.Node())
	}
	if f.hasPath {
		n.Append(sexp.NewNode("path", sexp.String(f.Path)))
	}
	appendOptNumber := func(tag string, v *sexp.Number) {
		if v != nil {
			n.Append(sexp.NewNode(tag, *v))
		}
	}
	appendOptNumber("solder_mask_margin", f.SolderMaskMargin)
	appendOptNumber("solder_paste_margin", f.SolderPasteMargin)
	appendOptNumber("solder_paste_ratio", f.SolderPasteRatio)
	appendOptNumber("clearance", f.Clearance)
	appendOptNumber("zone_connect", f.ZoneConnect)
	if f.Attr != nil {
		n.Append(f.Attr.node())
	}
	for _, t := range f.Texts {
		n.Append(t.node())
	}
	for _, l := range f.Lines {
		n.Append(l.node("fp_line"))
	}
	for _, r := range f.Rects {
		n.Append(r.node("fp_rect"))
	}
	for _, c := range f.Circles {
		n.Append(c.node("fp_circle"))
	}
	for _, a := range f.Arcs {
		n.Append(a.node("fp_arc"))
	}
	for _, p := range f.Polys {
		n.Append(p.node("fp_poly"))
	}
	for _, p := range f.Pads {
		n.Append(p.node())
	}
	for _, mo := range f.Models {
		n.Append(mo.node())
	}
	for _, sub := range f.Unknown {
		n.Append(sub)
	}
	return n, nil
}

// childList builds a KeywordList row that maps each matching child
// through parse and appends it to dst.
func childList[T any](tag string, dst *[]*T, d *sexp.Diagnostics, parse func(*sexp.Node, *sexp.Diagnostics) (*T, error)) sexp.Rule {
	return sexp.Rule{Name: tag, Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
		item, err := parse(sub, d)
		if err != nil {
			return err
		}
		*dst = append(*dst, item)
		return nil
	}}
}
