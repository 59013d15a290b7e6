package schematic

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Junction is a wire junction dot.
type Junction struct {
	At       common.Position
	Diameter *sexp.Number
	Color    *common.Color
	UUID     *common.UUID
	Unknown  []*sexp.Node
}

func parseJunction(n *sexp.Node, d *sexp.Diagnostics) (*Junction, error) {
	j := &Junction{}
	rules := []sexp.Rule{
		keywordPosition(&j.At, true),
		keywordNumberOpt("diameter", &j.Diameter),
		{Name: "color", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			c, err := common.ParseColor(sub)
			if err != nil {
				return err
			}
			j.Color = &c
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&j.UUID)...)
	rules = append(rules, common.RestRule(&j.Unknown))
	if err := (sexp.Mapper{Construct: "junction", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Junction) node() *sexp.Node {
	n := sexp.NewNode("junction", j.At.Node())
	if j.Diameter != nil {
		n.Append(sexp.NewNode("diameter", *j.Diameter))
	}
	if j.Color != nil {
		n.Append(j.Color.Node())
	}
	if j.UUID != nil {
		n.Append(j.UUID.Node())
	}
	appendUnknown(n, j.Unknown)
	return n
}

// NoConnect marks a pin as intentionally unconnected.
type NoConnect struct {
	At      common.Position
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseNoConnect(n *sexp.Node, d *sexp.Diagnostics) (*NoConnect, error) {
	nc := &NoConnect{}
	rules := []sexp.Rule{
		keywordPosition(&nc.At, true),
	}
	rules = append(rules, common.UUIDRules(&nc.UUID)...)
	rules = append(rules, common.RestRule(&nc.Unknown))
	if err := (sexp.Mapper{Construct: "no_connect", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return nc, nil
}

func (nc *NoConnect) node() *sexp.Node {
	n := sexp.NewNode("no_connect", nc.At.Node())
	if nc.UUID != nil {
		n.Append(nc.UUID.Node())
	}
	appendUnknown(n, nc.Unknown)
	return n
}

// BusEntry is the angled stub connecting a wire to a bus.
type BusEntry struct {
	At      common.Position
	Size    common.XY
	Stroke  *common.Stroke
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseBusEntry(n *sexp.Node, d *sexp.Diagnostics) (*BusEntry, error) {
	be := &BusEntry{}
	rules := []sexp.Rule{
		keywordPosition(&be.At, true),
		keywordXY("size", &be.Size, true),
		keywordStroke(&be.Stroke, d),
	}
	rules = append(rules, common.UUIDRules(&be.UUID)...)
	rules = append(rules, common.RestRule(&be.Unknown))
	if err := (sexp.Mapper{Construct: "bus_entry", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return be, nil
}

func (be *BusEntry) node() *sexp.Node {
	n := sexp.NewNode("bus_entry", be.At.Node(), be.Size.Node("size"))
	if be.Stroke != nil {
		n.Append(be.Stroke.Node())
	}
	if be.UUID != nil {
		n.Append(be.UUID.Node())
	}
	appendUnknown(n, be.Unknown)
	return n
}

// Wire is a polyline segment chain carrying a net. The same shape
// serves wire, bus and plain polyline constructs.
type Wire struct {
	Pts     common.Pts
	Stroke  *common.Stroke
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseWire(n *sexp.Node, d *sexp.Diagnostics) (*Wire, error) {
	w := &Wire{}
	rules := []sexp.Rule{
		keywordPts(&w.Pts),
		keywordStroke(&w.Stroke, d),
	}
	rules = append(rules, common.UUIDRules(&w.UUID)...)
	rules = append(rules, common.RestRule(&w.Unknown))
	if err := (sexp.Mapper{Construct: n.Tag, Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wire) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag, w.Pts.Node())
	if w.Stroke != nil {
		n.Append(w.Stroke.Node())
	}
	if w.UUID != nil {
		n.Append(w.UUID.Node())
	}
	appendUnknown(n, w.Unknown)
	return n
}

// Text is free-standing schematic text.
type Text struct {
	Text    string
	At      common.Position
	Effects *common.Effects
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseSchText(n *sexp.Node, d *sexp.Diagnostics) (*Text, error) {
	t := &Text{}
	rules := []sexp.Rule{
		{Name: "text", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			t.Text = atomText(v)
			return nil
		}},
		keywordPosition(&t.At, true),
		keywordEffects(&t.Effects, d),
	}
	rules = append(rules, common.UUIDRules(&t.UUID)...)
	rules = append(rules, common.RestRule(&t.Unknown))
	if err := (sexp.Mapper{Construct: "text", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Text) node() *sexp.Node {
	n := sexp.NewNode("text", sexp.String(t.Text), t.At.Node())
	if t.Effects != nil {
		n.Append(t.Effects.Node())
	}
	if t.UUID != nil {
		n.Append(t.UUID.Node())
	}
	appendUnknown(n, t.Unknown)
	return n
}

// Label is a net label. Shape is only present on the global and
// hierarchical variants, FieldsAutoplaced on all three.
type Label struct {
	Text             string
	Shape            string
	FieldsAutoplaced bool
	At               common.Position
	Effects          *common.Effects
	UUID             *common.UUID
	Properties       []*common.Property
	Unknown          []*sexp.Node
}

func parseLabel(n *sexp.Node, d *sexp.Diagnostics) (*Label, error) {
	l := &Label{}
	rules := []sexp.Rule{
		{Name: "text", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			l.Text = atomText(v)
			return nil
		}},
		{Name: "shape", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			l.Shape = s
			return nil
		}},
		{Name: "fields_autoplaced", Kind: sexp.FlagEmpty, BindFlag: func() { l.FieldsAutoplaced = true }},
		keywordPosition(&l.At, true),
		keywordEffects(&l.Effects, d),
		propertyList(&l.Properties, d),
	}
	rules = append(rules, common.UUIDRules(&l.UUID)...)
	rules = append(rules, common.RestRule(&l.Unknown))
	if err := (sexp.Mapper{Construct: n.Tag, Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Label) node(tag string) *sexp.Node {
	n := sexp.NewNode(tag, sexp.String(l.Text))
	if l.Shape != "" {
		n.Append(sexp.NewNode("shape", sexp.Symbol(l.Shape)))
	}
	if l.FieldsAutoplaced {
		n.Append(sexp.NewNode("fields_autoplaced"))
	}
	n.Append(l.At.Node())
	if l.Effects != nil {
		n.Append(l.Effects.Node())
	}
	if l.UUID != nil {
		n.Append(l.UUID.Node())
	}
	for _, p := range l.Properties {
		n.Append(p.Node())
	}
	appendUnknown(n, l.Unknown)
	return n
}

// Image is an embedded bitmap. Data stays as the base64 chunks the
// file carries, one symbol atom per line.
type Image struct {
	At      common.Position
	Scale   *sexp.Number
	UUID    *common.UUID
	Data    []string
	Unknown []*sexp.Node
}

func parseImage(n *sexp.Node, d *sexp.Diagnostics) (*Image, error) {
	img := &Image{}
	rules := []sexp.Rule{
		keywordPosition(&img.At, true),
		keywordNumberOpt("scale", &img.Scale),
		{Name: "data", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			for _, c := range sub.Children {
				img.Data = append(img.Data, atomText(c))
			}
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&img.UUID)...)
	rules = append(rules, common.RestRule(&img.Unknown))
	if err := (sexp.Mapper{Construct: "image", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image) node() *sexp.Node {
	n := sexp.NewNode("image", img.At.Node())
	if img.Scale != nil {
		n.Append(sexp.NewNode("scale", *img.Scale))
	}
	if img.UUID != nil {
		n.Append(img.UUID.Node())
	}
	if len(img.Data) > 0 {
		data := sexp.NewNode("data")
		for _, chunk := range img.Data {
			data.Append(sexp.String(chunk))
		}
		n.Append(data)
	}
	appendUnknown(n, img.Unknown)
	return n
}

// Fill is the fill style used by sheets and symbol graphics.
type Fill struct {
	Type    string
	Color   *common.Color
	Unknown []*sexp.Node
}

func parseFill(n *sexp.Node, d *sexp.Diagnostics) (*Fill, error) {
	f := &Fill{}
	rules := []sexp.Rule{
		keywordString("type", &f.Type),
		{Name: "color", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			c, err := common.ParseColor(sub)
			if err != nil {
				return err
			}
			f.Color = &c
			return nil
		}},
		common.RestRule(&f.Unknown),
	}
	if err := (sexp.Mapper{Construct: "fill", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fill) node() *sexp.Node {
	n := sexp.NewNode("fill")
	if f.Type != "" {
		n.Append(sexp.NewNode("type", sexp.Symbol(f.Type)))
	}
	if f.Color != nil {
		n.Append(f.Color.Node())
	}
	appendUnknown(n, f.Unknown)
	return n
}

func appendUnknown(n *sexp.Node, nodes []*sexp.Node) {
	for _, sub := range nodes {
		n.Append(sub)
	}
}
