// Package schematic parses and serializes KiCad schematic files
// (.kicad_sch) into a typed document that round-trips losslessly.
package schematic

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// MinSupportedVersion is the oldest schematic file format this package
// accepts, as a YYYYMMDD date stamp.
const MinSupportedVersion = 20211123

// Schematic is the typed document for one .kicad_sch sheet.
type Schematic struct {
	Version          sexp.Number
	Generator        string
	GeneratorVersion string
	UUID             *common.UUID
	Paper            *common.Paper
	TitleBlock       *common.TitleBlock
	LibSymbols       []*LibSymbol
	Junctions        []*Junction
	NoConnects       []*NoConnect
	BusEntries       []*BusEntry
	Wires            []*Wire
	Buses            []*Wire
	Polylines        []*Wire
	Images           []*Image
	Texts            []*Text
	Labels           []*Label
	GlobalLabels     []*Label
	HierLabels       []*Label
	Symbols          []*Symbol
	Sheets           []*Sheet
	SheetInstances   *sexp.Node // kept verbatim
	SymbolInstances  *sexp.Node // kept verbatim
	Unknown          []*sexp.Node

	generatorQuoted bool
	hasLibSymbols   bool
}

// ParseFile reads and parses a schematic file.
func ParseFile(filename string) (*Schematic, sexp.Diagnostics, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(data))
}

// Parse parses schematic text. Structural errors abort the read;
// per-construct errors become diagnostics and the rest still maps.
func Parse(src string) (*Schematic, sexp.Diagnostics, error) {
	root, err := sexp.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	return FromNode(root)
}

// FromNode maps an already-read generic tree.
func FromNode(root *sexp.Node) (*Schematic, sexp.Diagnostics, error) {
	if root.Tag != "kicad_sch" {
		return nil, nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", root.Tag)
	}

	var d sexp.Diagnostics
	s := &Schematic{}

	rules := []sexp.Rule{
		{Name: "version", Kind: sexp.Keyword, Required: true, Once: true, BindNode: func(sub *sexp.Node) error {
			v, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			s.Version = v
			return nil
		}},
		{Name: "generator", Kind: sexp.Keyword, Once: true, BindNode: func(sub *sexp.Node) error {
			v, ok := sub.At(0)
			if !ok {
				return fmt.Errorf("missing generator value")
			}
			_, s.generatorQuoted = v.(sexp.String)
			s.Generator = atomText(v)
			return nil
		}},
		keywordString("generator_version", &s.GeneratorVersion),
		{Name: "paper", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			p, err := common.ParsePaper(sub)
			if err != nil {
				return err
			}
			s.Paper = p
			return nil
		}},
		{Name: "title_block", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			tb, err := common.ParseTitleBlock(sub, &d)
			if err != nil {
				return err
			}
			s.TitleBlock = tb
			return nil
		}},
		{Name: "lib_symbols", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s.hasLibSymbols = true
			for _, c := range sub.Children {
				def, ok := c.(*sexp.Node)
				if !ok || def.Tag != "symbol" {
					return fmt.Errorf("expected symbol definition in lib_symbols")
				}
				ls, err := parseLibSymbol(def, &d)
				if err != nil {
					d.Errorf("lib_symbols", def.Pos, "%v", err)
					continue
				}
				s.LibSymbols = append(s.LibSymbols, ls)
			}
			return nil
		}},
		tolerant("junction", &d, &s.Junctions, parseJunction),
		tolerant("no_connect", &d, &s.NoConnects, parseNoConnect),
		tolerant("bus_entry", &d, &s.BusEntries, parseBusEntry),
		tolerant("wire", &d, &s.Wires, parseWire),
		tolerant("bus", &d, &s.Buses, parseWire),
		tolerant("polyline", &d, &s.Polylines, parseWire),
		tolerant("image", &d, &s.Images, parseImage),
		tolerant("text", &d, &s.Texts, parseSchText),
		tolerant("label", &d, &s.Labels, parseLabel),
		tolerant("global_label", &d, &s.GlobalLabels, parseLabel),
		tolerant("hierarchical_label", &d, &s.HierLabels, parseLabel),
		tolerant("symbol", &d, &s.Symbols, parseSymbol),
		tolerant("sheet", &d, &s.Sheets, parseSheet),
		{Name: "sheet_instances", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s.SheetInstances = sub
			return nil
		}},
		{Name: "symbol_instances", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			s.SymbolInstances = sub
			return nil
		}},
	}
	rules = append(rules, common.UUIDRules(&s.UUID)...)
	rules = append(rules, common.RestRule(&s.Unknown))

	if err := (sexp.Mapper{Construct: "kicad_sch", Rules: rules}).Apply(root, &d); err != nil {
		return nil, d, err
	}
	if s.Version.Int() < MinSupportedVersion {
		return nil, d, fmt.Errorf("unsupported file format version %s (minimum %d)", s.Version, MinSupportedVersion)
	}
	for _, sub := range s.Unknown {
		d.Warnf("kicad_sch", sub.Pos, "unknown construct (%s) kept as passthrough", sub.Tag)
	}
	return s, d, nil
}

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

// Serialize writes the schematic back to the file format.
func (s *Schematic) Serialize() (string, error) {
	return sexp.Write(s.node()), nil
}

func (s *Schematic) node() *sexp.Node {
	n := sexp.NewNode("kicad_sch", sexp.NewNode("version", s.Version))
	if s.Generator != "" {
		if s.generatorQuoted {
			n.Append(sexp.NewNode("generator", sexp.String(s.Generator)))
		} else {
			n.Append(sexp.NewNode("generator", sexp.Symbol(s.Generator)))
		}
	}
	if s.GeneratorVersion != "" {
		n.Append(sexp.NewNode("generator_version", sexp.String(s.GeneratorVersion)))
	}
	if s.UUID != nil {
		n.Append(s.UUID.Node())
	}
	if s.Paper != nil {
		n.Append(s.Paper.Node())
	}
	if s.TitleBlock != nil {
		n.Append(s.TitleBlock.Node())
	}
	if s.hasLibSymbols || len(s.LibSymbols) > 0 {
		lib := sexp.NewNode("lib_symbols")
		for _, ls := range s.LibSymbols {
			lib.Append(ls.node())
		}
		n.Append(lib)
	}
	for _, j := range s.Junctions {
		n.Append(j.node())
	}
	for _, nc := range s.NoConnects {
		n.Append(nc.node())
	}
	for _, be := range s.BusEntries {
		n.Append(be.node())
	}
	for _, w := range s.Wires {
		n.Append(w.node("wire"))
	}
	for _, b := range s.Buses {
		n.Append(b.node("bus"))
	}
	for _, p := range s.Polylines {
		n.Append(p.node("polyline"))
	}
	for _, img := range s.Images {
		n.Append(img.node())
	}
	for _, t := range s.Texts {
		n.Append(t.node())
	}
	for _, l := range s.Labels {
		n.Append(l.node("label"))
	}
	for _, l := range s.GlobalLabels {
		n.Append(l.node("global_label"))
	}
	for _, l := range s.HierLabels {
		n.Append(l.node("hierarchical_label"))
	}
	for _, sym := range s.Symbols {
		n.Append(sym.node())
	}
	for _, sh := range s.Sheets {
		n.Append(sh.node())
	}
	if s.SheetInstances != nil {
		n.Append(s.SheetInstances)
	}
	if s.SymbolInstances != nil {
		n.Append(s.SymbolInstances)
	}
	appendUnknown(n, s.Unknown)
	return n
}

// SymbolByReference looks a placed symbol up by its Reference
// property ("R1", "U3").
func (s *Schematic) SymbolByReference(ref string) (*Symbol, bool) {
	for _, sym := range s.Symbols {
		if sym.Reference() == ref {
			return sym, true
		}
	}
	return nil, false
}

// LibSymbolByName looks a cached library symbol up by its full name.
func (s *Schematic) LibSymbolByName(name string) (*LibSymbol, bool) {
	for _, ls := range s.LibSymbols {
		if ls.Name == name {
			return ls, true
		}
	}
	return nil, false
}

// Resolve checks the schematic's weak references: every placed
// symbol's lib_id against the lib_symbols cache. Dangling references
// are warnings, never errors.
func (s *Schematic) Resolve() sexp.Diagnostics {
	var d sexp.Diagnostics
	for _, sym := range s.Symbols {
		if sym.LibID == "" {
			continue
		}
		if _, ok := s.LibSymbolByName(sym.LibID); !ok {
			d.Warnf("symbol", sexp.Pos{}, "lib_id %q not present in lib_symbols cache", sym.LibID)
		}
	}
	return d
}
