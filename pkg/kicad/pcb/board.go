package pcb

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/layers"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Board is the typed document for a .kicad_pcb file.
type Board struct {
	Version          sexp.Number
	Generator        string
	GeneratorVersion string
	General          *General
	Paper            *common.Paper
	TitleBlock       *common.TitleBlock
	Layers           []Layer
	Setup            *sexp.Node // version-volatile, kept verbatim
	Properties       []*common.Property
	Nets             []Net
	Footprints       []*Footprint
	Graphics         Graphics
	Segments         []*Segment
	TrackArcs        []*TrackArc
	Vias             []*Via
	Zones            []*Zone
	Groups           []*Group
	Unknown          []*sexp.Node

	generatorQuoted bool
}

// ParseFile reads and parses a board file.
func ParseFile(filename string) (*Board, sexp.Diagnostics, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(data))
}

// Parse parses board text. Structural errors abort the read; per-
// construct errors are accumulated as diagnostics and the rest of the
// board still maps.
func Parse(src string) (*Board, sexp.Diagnostics, error) {
	root, err := sexp.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	return FromNode(root)
}

// FromNode maps an already-read generic tree.
func FromNode(root *sexp.Node) (*Board, sexp.Diagnostics, error) {
	if root.Tag != "kicad_pcb" {
		return nil, nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", root.Tag)
	}

	var d sexp.Diagnostics
	b := &Board{}

	rules := []sexp.Rule{
		{Name: "version", Kind: sexp.Keyword, Required: true, Once: true, BindNode: func(sub *sexp.Node) error {
			v, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			b.Version = v
			return nil
		}},
		{Name: "generator", Kind: sexp.Keyword, Once: true, BindNode: func(sub *sexp.Node) error {
			v, ok := sub.At(0)
			if !ok {
				return fmt.Errorf("missing generator value")
			}
			_, b.generatorQuoted = v.(sexp.String)
			b.Generator = atomText(v)
			return nil
		}},
		keywordString("generator_version", &b.GeneratorVersion),
		{Name: "general", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			g, err := parseGeneral(sub, &d)
			if err != nil {
				return err
			}
			b.General = g
			return nil
		}},
		{Name: "paper", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			p, err := common.ParsePaper(sub)
			if err != nil {
				return err
			}
			b.Paper = p
			return nil
		}},
		{Name: "title_block", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			tb, err := common.ParseTitleBlock(sub, &d)
			if err != nil {
				return err
			}
			b.TitleBlock = tb
			return nil
		}},
		{Name: "layers", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			for _, c := range sub.Children {
				def, ok := c.(*sexp.Node)
				if !ok {
					return fmt.Errorf("expected layer definition list")
				}
				l, err := parseLayerDef(def)
				if err != nil {
					return err
				}
				b.Layers = append(b.Layers, l)
			}
			return nil
		}},
		{Name: "setup", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			b.Setup = sub
			return nil
		}},
		{Name: "property", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			prop, err := common.ParseProperty(sub, &d)
			if err != nil {
				return err
			}
			b.Properties = append(b.Properties, prop)
			return nil
		}},
		{Name: "net", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			num, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			name, err := sub.StringAt(1)
			if err != nil {
				return err
			}
			b.Nets = append(b.Nets, Net{Number: num, Name: name})
			return nil
		}},
		tolerant("footprint", &d, &b.Footprints, parseFootprint),
		tolerant("gr_line", &d, &b.Graphics.Lines, parseLine),
		tolerant("gr_rect", &d, &b.Graphics.Rects, parseRect),
		tolerant("gr_circle", &d, &b.Graphics.Circles, parseCircle),
		tolerant("gr_arc", &d, &b.Graphics.Arcs, parseArc),
		tolerant("gr_poly", &d, &b.Graphics.Polys, parsePoly),
		tolerant("gr_text", &d, &b.Graphics.Texts, parseText),
		tolerant("segment", &d, &b.Segments, parseSegment),
		tolerant("arc", &d, &b.TrackArcs, parseTrackArc),
		tolerant("via", &d, &b.Vias, parseVia),
		tolerant("zone", &d, &b.Zones, parseZone),
		tolerant("group", &d, &b.Groups, parseGroup),
		common.RestRule(&b.Unknown),
	}

	if err := (sexp.Mapper{Construct: "kicad_pcb", Rules: rules}).Apply(root, &d); err != nil {
		return nil, d, err
	}
	if b.Version.Int() < MinSupportedVersion {
		return nil, d, fmt.Errorf("unsupported file format version %s (minimum %d)", b.Version, MinSupportedVersion)
	}
	for _, sub := range b.Unknown {
		d.Warnf("kicad_pcb", sub.Pos, "unknown construct (%s) kept as passthrough", sub.Tag)
	}
	return b, d, nil
}

// tolerant wraps a child-construct parser so that one bad construct
// becomes a diagnostic instead of aborting the whole file.
func tolerant[T any](tag string, d *sexp.Diagnostics, dst *[]*T, parse func(*sexp.Node, *sexp.Diagnostics) (*T, error)) sexp.Rule {
	return sexp.Rule{Name: tag, Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
		item, err := parse(sub, d)
		if err != nil {
			d.Errorf(tag, sub.Pos, "%v", err)
			return nil
		}
		*dst = append(*dst, item)
		return nil
	}}
}

// Serialize writes the board back to the file format.
func (b *Board) Serialize() (string, error) {
	root, err := b.node()
	if err != nil {
		return "", err
	}
	return sexp.Write(root), nil
}

func (b *Board) node() (*sexp.Node, error) {
	n := sexp.NewNode("kicad_pcb", sexp.NewNode("version", b.Version))
	if b.Generator != "" {
		if b.generatorQuoted {
			n.Append(sexp.NewNode("generator", sexp.String(b.Generator)))
		} else {
			n.Append(sexp.NewNode("generator", sexp.Symbol(b.Generator)))
		}
	}
	if b.GeneratorVersion != "" {
		n.Append(sexp.NewNode("generator_version", sexp.String(b.GeneratorVersion)))
	}
	if b.General != nil {
		n.Append(b.General.node())
	}
	if b.Paper != nil {
		n.Append(b.Paper.Node())
	}
	if b.TitleBlock != nil {
		n.Append(b.TitleBlock.Node())
	}
	if len(b.Layers) > 0 {
		layersNode := sexp.NewNode("layers")
		for _, l := range b.Layers {
			layersNode.Append(l.node())
		}
		n.Append(layersNode)
	}
	if b.Setup != nil {
		n.Append(b.Setup)
	}
	for _, prop := range b.Properties {
		n.Append(prop.Node())
	}
	for _, net := range b.Nets {
		n.Append(sexp.NewNode("net", net.Number, sexp.String(net.Name)))
	}
	for _, f := range b.Footprints {
		fn, err := f.node()
		if err != nil {
			return nil, err
		}
		n.Append(fn)
	}
	for _, l := range b.Graphics.Lines {
		n.Append(l.node("gr_line"))
	}
	for _, r := range b.Graphics.Rects {
		n.Append(r.node("gr_rect"))
	}
	for _, c := range b.Graphics.Circles {
		n.Append(c.node("gr_circle"))
	}
	for _, a := range b.Graphics.Arcs {
		n.Append(a.node("gr_arc"))
	}
	for _, p := range b.Graphics.Polys {
		n.Append(p.node("gr_poly"))
	}
	for _, t := range b.Graphics.Texts {
		n.Append(t.node("gr_text"))
	}
	for _, s := range b.Segments {
		n.Append(s.node())
	}
	for _, a := range b.TrackArcs {
		n.Append(a.node())
	}
	for _, v := range b.Vias {
		n.Append(v.node())
	}
	for _, z := range b.Zones {
		n.Append(z.node())
	}
	for _, g := range b.Groups {
		n.Append(g.node())
	}
	for _, sub := range b.Unknown {
		n.Append(sub)
	}
	return n, nil
}

// NetByNumber looks a net up by its number.
func (b *Board) NetByNumber(num int) (Net, bool) {
	for _, net := range b.Nets {
		if net.Number.Int() == num {
			return net, true
		}
	}
	return Net{}, false
}

// LayerByName looks a stack layer up by canonical name.
func (b *Board) LayerByName(name string) (Layer, bool) {
	for _, l := range b.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Resolve checks the board's weak references: net numbers against the
// net list and layer names against the stack and the canonical layer
// table. Dangling references are warnings, never errors — files being
// edited routinely contain them.
func (b *Board) Resolve() sexp.Diagnostics {
	var d sexp.Diagnostics

	nets := make(map[int]bool, len(b.Nets))
	for _, net := range b.Nets {
		nets[net.Number.Int()] = true
	}
	checkNet := func(construct string, num sexp.Number) {
		if !nets[num.Int()] {
			d.Warnf(construct, sexp.Pos{}, "references net %d which is not in the net list", num.Int())
		}
	}
	checkLayer := func(construct, name string) {
		if name == "" {
			return
		}
		if _, ok := b.LayerByName(name); ok {
			return
		}
		if !layers.IsCanonical(name) && !layers.IsWildcard(name) {
			d.Warnf(construct, sexp.Pos{}, "references unknown layer %q", name)
		}
	}

	for _, s := range b.Segments {
		checkNet("segment", s.Net)
		checkLayer("segment", s.Layer)
	}
	for _, a := range b.TrackArcs {
		checkNet("arc", a.Net)
		checkLayer("arc", a.Layer)
	}
	for _, v := range b.Vias {
		checkNet("via", v.Net)
		for _, l := range v.Layers {
			checkLayer("via", l)
		}
	}
	for _, z := range b.Zones {
		checkNet("zone", z.Net)
		checkLayer("zone", z.Layer)
		for _, l := range z.Layers {
			checkLayer("zone", l)
		}
	}
	for _, f := range b.Footprints {
		checkLayer("footprint", f.Layer)
		for _, p := range f.Pads {
			if p.Net != nil {
				checkNet("pad", p.Net.Number)
			}
			for _, l := range p.Layers {
				checkLayer("pad", l)
			}
		}
	}
	return d
}
