package pcb

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Segment is a straight copper track. Net is a weak reference into the
// board net list.
type Segment struct {
	Start   common.XY
	End     common.XY
	Width   sexp.Number
	Layer   string
	Locked  bool
	Net     sexp.Number
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseSegment(n *sexp.Node, d *sexp.Diagnostics) (*Segment, error) {
	s := &Segment{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { s.Locked = true }},
		keywordXY("start", &s.Start, true),
		keywordXY("end", &s.End, true),
		keywordNumber("width", &s.Width, true),
		keywordString("layer", &s.Layer),
		keywordNumber("net", &s.Net, false),
	}
	rules = append(rules, common.UUIDRules(&s.UUID)...)
	rules = append(rules, common.RestRule(&s.Unknown))
	err := sexp.Mapper{Construct: "segment", Rules: rules}.Apply(n, d)
	if err == nil && s.Width.Value() <= 0 {
		d.Warnf("segment", n.Pos, "non-positive track width %s", s.Width)
	}
	return s, err
}

func (s *Segment) node() *sexp.Node {
	n := sexp.NewNode("segment")
	if s.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(
		s.Start.Node("start"),
		s.End.Node("end"),
		sexp.NewNode("width", s.Width),
		sexp.NewNode("layer", sexp.String(s.Layer)),
		sexp.NewNode("net", s.Net),
	)
	if s.UUID != nil {
		n.Append(s.UUID.Node())
	}
	for _, sub := range s.Unknown {
		n.Append(sub)
	}
	return n
}

// TrackArc is a curved copper track.
type TrackArc struct {
	Start   common.XY
	Mid     common.XY
	End     common.XY
	Width   sexp.Number
	Layer   string
	Locked  bool
	Net     sexp.Number
	UUID    *common.UUID
	Unknown []*sexp.Node
}

func parseTrackArc(n *sexp.Node, d *sexp.Diagnostics) (*TrackArc, error) {
	a := &TrackArc{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { a.Locked = true }},
		keywordXY("start", &a.Start, true),
		keywordXY("mid", &a.Mid, true),
		keywordXY("end", &a.End, true),
		keywordNumber("width", &a.Width, true),
		keywordString("layer", &a.Layer),
		keywordNumber("net", &a.Net, false),
	}
	rules = append(rules, common.UUIDRules(&a.UUID)...)
	rules = append(rules, common.RestRule(&a.Unknown))
	err := sexp.Mapper{Construct: "arc", Rules: rules}.Apply(n, d)
	return a, err
}

func (a *TrackArc) node() *sexp.Node {
	n := sexp.NewNode("arc")
	if a.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(
		a.Start.Node("start"),
		a.Mid.Node("mid"),
		a.End.Node("end"),
		sexp.NewNode("width", a.Width),
		sexp.NewNode("layer", sexp.String(a.Layer)),
		sexp.NewNode("net", a.Net),
	)
	if a.UUID != nil {
		n.Append(a.UUID.Node())
	}
	for _, sub := range a.Unknown {
		n.Append(sub)
	}
	return n
}

// Via connects copper layers. Type is empty for a through via, or
// "blind" / "micro".
type Via struct {
	Type               string
	Locked             bool
	At                 common.Position
	Size               sexp.Number
	Drill              sexp.Number
	Layers             []string
	RemoveUnusedLayers bool
	KeepEndLayers      bool
	Free               bool
	Net                sexp.Number
	UUID               *common.UUID
	Unknown            []*sexp.Node
}

func parseVia(n *sexp.Node, d *sexp.Diagnostics) (*Via, error) {
	v := &Via{}
	rules := []sexp.Rule{
		{Name: "type", Kind: sexp.OptionalPositional, Bind: func(val sexp.Value) error {
			sym, ok := val.(sexp.Symbol)
			if !ok || (sym != "blind" && sym != "micro") {
				return errNotThisField
			}
			v.Type = string(sym)
			return nil
		}},
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { v.Locked = true }},
		{Name: "at", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
			at, err := common.ParsePosition(sub)
			if err != nil {
				return err
			}
			v.At = at
			return nil
		}},
		keywordNumber("size", &v.Size, true),
		keywordNumber("drill", &v.Drill, false),
		{Name: "layers", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			layers, err := stringList(sub)
			if err != nil {
				return err
			}
			v.Layers = layers
			return nil
		}},
		{Name: "remove_unused_layers", Kind: sexp.FlagEmpty, BindFlag: func() { v.RemoveUnusedLayers = true }},
		{Name: "keep_end_layers", Kind: sexp.FlagEmpty, BindFlag: func() { v.KeepEndLayers = true }},
		{Name: "free", Kind: sexp.FlagEmpty, BindFlag: func() { v.Free = true }},
		keywordNumber("net", &v.Net, false),
	}
	rules = append(rules, common.UUIDRules(&v.UUID)...)
	rules = append(rules, common.RestRule(&v.Unknown))
	err := sexp.Mapper{Construct: "via", Rules: rules}.Apply(n, d)
	if err == nil && v.Drill.Value() > v.Size.Value() {
		d.Warnf("via", n.Pos, "drill %s larger than via size %s", v.Drill, v.Size)
	}
	return v, err
}

func (v *Via) node() *sexp.Node {
	n := sexp.NewNode("via")
	if v.Type != "" {
		n.Append(sexp.Symbol(v.Type))
	}
	if v.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(v.At.Node(), sexp.NewNode("size", v.Size), sexp.NewNode("drill", v.Drill))
	layers := sexp.NewNode("layers")
	for _, l := range v.Layers {
		layers.Append(sexp.String(l))
	}
	n.Append(layers)
	if v.RemoveUnusedLayers {
		n.Append(sexp.NewNode("remove_unused_layers"))
	}
	if v.KeepEndLayers {
		n.Append(sexp.NewNode("keep_end_layers"))
	}
	if v.Free {
		n.Append(sexp.NewNode("free"))
	}
	n.Append(sexp.NewNode("net", v.Net))
	if v.UUID != nil {
		n.Append(v.UUID.Node())
	}
	for _, sub := range v.Unknown {
		n.Append(sub)
	}
	return n
}

func stringList(n *sexp.Node) ([]string, error) {
	var out []string
	for i := range n.Children {
		s, err := n.StringAt(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
