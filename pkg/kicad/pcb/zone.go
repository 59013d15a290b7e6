package pcb

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Hatch is a zone's outline display style.
type Hatch struct {
	Style string // none, edge, full
	Pitch sexp.Number
}

// ConnectPads defines how a zone attaches to pads. Mode is empty for
// thermal reliefs (KiCad's default), or "yes" / "no" / "thru_hole_only".
type ConnectPads struct {
	Mode      string
	Clearance *sexp.Number
}

// FilledPolygon is one computed fill area on a layer.
type FilledPolygon struct {
	Layer  string
	Island bool
	Pts    common.Pts
}

// Zone is a copper or keepout zone. Net and layer references are weak;
// the fill settings sub-node is version-volatile and kept verbatim.
type Zone struct {
	Locked               bool
	Net                  sexp.Number
	NetName              string
	Layer                string   // single-layer form
	Layers               []string // multi-layer form
	Name                 string
	UUID                 *common.UUID
	Hatch                *Hatch
	Priority             *sexp.Number
	ConnectPads          *ConnectPads
	MinThickness         *sexp.Number
	FilledAreasThickness string     // "no" when present
	Keepout              *sexp.Node // keepout rule block, kept verbatim
	Fill                 *sexp.Node // fill settings, kept verbatim
	Polygons             []common.Pts
	FilledPolygons       []*FilledPolygon
	Unknown              []*sexp.Node
}

func parseZone(n *sexp.Node, d *sexp.Diagnostics) (*Zone, error) {
	z := &Zone{}
	rules := []sexp.Rule{
		{Name: "locked", Kind: sexp.Flag, BindFlag: func() { z.Locked = true }},
		keywordNumber("net", &z.Net, true),
		keywordString("net_name", &z.NetName),
		keywordString("layer", &z.Layer),
		{Name: "layers", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			layers, err := stringList(sub)
			if err != nil {
				return err
			}
			z.Layers = layers
			return nil
		}},
		keywordString("name", &z.Name),
	}
	rules = append(rules, common.UUIDRules(&z.UUID)...)
	rules = append(rules,
		sexp.Rule{Name: "hatch", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			style, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			pitch, err := sub.NumberAt(1)
			if err != nil {
				return err
			}
			z.Hatch = &Hatch{Style: style, Pitch: pitch}
			return nil
		}},
		keywordNumberOpt("priority", &z.Priority),
		sexp.Rule{Name: "connect_pads", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			cp := &ConnectPads{}
			for _, c := range sub.Children {
				switch v := c.(type) {
				case sexp.Symbol:
					cp.Mode = string(v)
				case *sexp.Node:
					if v.Tag == "clearance" {
						cl, err := v.NumberAt(0)
						if err != nil {
							return err
						}
						cp.Clearance = &cl
					}
				}
			}
			z.ConnectPads = cp
			return nil
		}},
		keywordNumberOpt("min_thickness", &z.MinThickness),
		keywordString("filled_areas_thickness", &z.FilledAreasThickness),
		sexp.Rule{Name: "keepout", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			z.Keepout = sub
			return nil
		}},
		sexp.Rule{Name: "fill", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			z.Fill = sub
			return nil
		}},
		sexp.Rule{Name: "polygon", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			ptsNode, ok := sub.Find("pts")
			if !ok {
				return &sexp.MissingFieldError{Construct: "polygon", Field: "pts", Pos: sub.Pos}
			}
			pts, err := common.ParsePts(ptsNode)
			if err != nil {
				return err
			}
			z.Polygons = append(z.Polygons, pts)
			return nil
		}},
		sexp.Rule{Name: "filled_polygon", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			fp := &FilledPolygon{Island: sub.HasFlag("island")}
			if layerNode, ok := sub.Find("layer"); ok {
				layer, err := layerNode.StringAt(0)
				if err != nil {
					return err
				}
				fp.Layer = layer
			}
			ptsNode, ok := sub.Find("pts")
			if !ok {
				return &sexp.MissingFieldError{Construct: "filled_polygon", Field: "pts", Pos: sub.Pos}
			}
			pts, err := common.ParsePts(ptsNode)
			if err != nil {
				return err
			}
			fp.Pts = pts
			z.FilledPolygons = append(z.FilledPolygons, fp)
			return nil
		}},
		common.RestRule(&z.Unknown),
	)
	err := sexp.Mapper{Construct: "zone", Rules: rules}.Apply(n, d)
	if err == nil && z.MinThickness != nil && z.MinThickness.Value() <= 0 {
		d.Warnf("zone", n.Pos, "non-positive min_thickness %s", z.MinThickness)
	}
	return z, err
}

func (z *Zone) node() *sexp.Node {
	n := sexp.NewNode("zone")
	if z.Locked {
		n.Append(sexp.Symbol("locked"))
	}
	n.Append(sexp.NewNode("net", z.Net), sexp.NewNode("net_name", sexp.String(z.NetName)))
	if z.Layer != "" {
		n.Append(sexp.NewNode("layer", sexp.String(z.Layer)))
	}
	if len(z.Layers) > 0 {
		layers := sexp.NewNode("layers")
		for _, l := range z.Layers {
			layers.Append(sexp.String(l))
		}
		n.Append(layers)
	}
	if z.Name != "" {
		n.Append(sexp.NewNode("name", sexp.String(z.Name)))
	}
	if z.UUID != nil {
		n.Append(z.UUID.Node())
	}
	if z.Hatch != nil {
		n.Append(sexp.NewNode("hatch", sexp.Symbol(z.Hatch.Style), z.Hatch.Pitch))
	}
	if z.Priority != nil {
		n.Append(sexp.NewNode("priority", *z.Priority))
	}
	if z.ConnectPads != nil {
		cp := sexp.NewNode("connect_pads")
		if z.ConnectPads.Mode != "" {
			cp.Append(sexp.Symbol(z.ConnectPads.Mode))
		}
		if z.ConnectPads.Clearance != nil {
			cp.Append(sexp.NewNode("clearance", *z.ConnectPads.Clearance))
		}
		n.Append(cp)
	}
	if z.MinThickness != nil {
		n.Append(sexp.NewNode("min_thickness", *z.MinThickness))
	}
	if z.FilledAreasThickness != "" {
		n.Append(sexp.NewNode("filled_areas_thickness", sexp.Symbol(z.FilledAreasThickness)))
	}
	if z.Keepout != nil {
		n.Append(z.Keepout)
	}
	if z.Fill != nil {
		n.Append(z.Fill)
	}
	for _, pts := range z.Polygons {
		n.Append(sexp.NewNode("polygon", pts.Node()))
	}
	for _, fp := range z.FilledPolygons {
		sub := sexp.NewNode("filled_polygon")
		if fp.Layer != "" {
			sub.Append(sexp.NewNode("layer", sexp.String(fp.Layer)))
		}
		if fp.Island {
			sub.Append(sexp.Symbol("island"))
		}
		sub.Append(fp.Pts.Node())
		n.Append(sub)
	}
	for _, sub := range z.Unknown {
		n.Append(sub)
	}
	return n
}
