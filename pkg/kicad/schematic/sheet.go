package schematic

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// SheetPin is a hierarchical pin on a sub-sheet boundary.
type SheetPin struct {
	Name    string
	Shape   string
	At      common.Position
	Effects *common.Effects
	UUID    *common.UUID
	Unknown []*sexp.Node
}

// Sheet is a hierarchical sub-sheet placement. The sheet name and file
// live in the Sheetname and Sheetfile properties.
type Sheet struct {
	At               common.Position
	Size             common.XY
	FieldsAutoplaced bool
	Stroke           *common.Stroke
	Fill             *Fill
	UUID             *common.UUID
	Properties       []*common.Property
	Pins             []*SheetPin
	Instances        *sexp.Node
	Unknown          []*sexp.Node
}

func parseSheetPin(n *sexp.Node, d *sexp.Diagnostics) (*SheetPin, error) {
	p := &SheetPin{}
	rules := []sexp.Rule{
		{Name: "name", Kind: sexp.Positional, Required: true, Bind: func(v sexp.Value) error {
			p.Name = atomText(v)
			return nil
		}},
		{Name: "shape", Kind: sexp.OptionalPositional, Bind: func(v sexp.Value) error {
			p.Shape = atomText(v)
			return nil
		}},
		keywordPosition(&p.At, true),
		keywordEffects(&p.Effects, d),
	}
	rules = append(rules, common.UUIDRules(&p.UUID)...)
	rules = append(rules, common.RestRule(&p.Unknown))
	if err := (sexp.Mapper{Construct: "sheet pin", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SheetPin) node() *sexp.Node {
	n := sexp.NewNode("pin", sexp.String(p.Name))
	if p.Shape != "" {
		n.Append(sexp.Symbol(p.Shape))
	}
	n.Append(p.At.Node())
	if p.Effects != nil {
		n.Append(p.Effects.Node())
	}
	if p.UUID != nil {
		n.Append(p.UUID.Node())
	}
	appendUnknown(n, p.Unknown)
	return n
}

func parseSheet(n *sexp.Node, d *sexp.Diagnostics) (*Sheet, error) {
	s := &Sheet{}
	rules := []sexp.Rule{
		keywordPosition(&s.At, true),
		keywordXY("size", &s.Size, true),
		{Name: "fields_autoplaced", Kind: sexp.FlagEmpty, BindFlag: func() { s.FieldsAutoplaced = true }},
		keywordStroke(&s.Stroke, d),
		fillRule(&s.Fill, d),
		propertyList(&s.Properties, d),
		childList("pin", &s.Pins, d, parseSheetPin),
		{Name: "instances", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s.Instances = sub
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&s.UUID)...)
	rules = append(rules, common.RestRule(&s.Unknown))
	if err := (sexp.Mapper{Construct: "sheet", Rules: rules}).Apply(n, d); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sheet) node() *sexp.Node {
	n := sexp.NewNode("sheet", s.At.Node(), s.Size.Node("size"))
	if s.FieldsAutoplaced {
		n.Append(sexp.NewNode("fields_autoplaced"))
	}
	if s.Stroke != nil {
		n.Append(s.Stroke.Node())
	}
	if s.Fill != nil {
		n.Append(s.Fill.node())
	}
	if s.UUID != nil {
		n.Append(s.UUID.Node())
	}
	for _, p := range s.Properties {
		n.Append(p.Node())
	}
	for _, pin := range s.Pins {
		n.Append(pin.node())
	}
	if s.Instances != nil {
		n.Append(s.Instances)
	}
	appendUnknown(n, s.Unknown)
	return n
}

// Name returns the Sheetname property value.
func (s *Sheet) Name() string {
	for _, p := range s.Properties {
		if p.Key == "Sheetname" || p.Key == "Sheet name" {
			return p.Value
		}
	}
	return ""
}

// File returns the Sheetfile property value.
func (s *Sheet) File() string {
	for _, p := range s.Properties {
		if p.Key == "Sheetfile" || p.Key == "Sheet file" {
			return p.Value
		}
	}
	return ""
}
