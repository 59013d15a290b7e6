package schematic

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/common"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// rule helpers shared by the construct tables

func keywordPosition(dst *common.Position, required bool) sexp.Rule {
	return sexp.Rule{Name: "at", Kind: sexp.Keyword, Required: required, BindNode: func(sub *sexp.Node) error {
		p, err := common.ParsePosition(sub)
		if err != nil {
			return err
		}
		*dst = p
		return nil
	}}
}

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

func keywordStroke(dst **common.Stroke, d *sexp.Diagnostics) sexp.Rule {
	return sexp.Rule{Name: "stroke", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		s, err := common.ParseStroke(sub, d)
		if err != nil {
			return err
		}
		*dst = &s
		return nil
	}}
}

func keywordPts(dst *common.Pts) sexp.Rule {
	return sexp.Rule{Name: "pts", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
		pts, err := common.ParsePts(sub)
		if err != nil {
			return err
		}
		*dst = pts
		return nil
	}}
}

func keywordEffects(dst **common.Effects, d *sexp.Diagnostics) sexp.Rule {
	return sexp.Rule{Name: "effects", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		e, err := common.ParseEffects(sub, d)
		if err != nil {
			return err
		}
		*dst = &e
		return nil
	}}
}

// yesNo covers constructs like (in_bom yes): a keyword whose single
// value is the symbol yes or no. Absence, yes and no are all distinct
// on disk, hence the pointer.
func yesNo(name string, dst **bool) sexp.Rule {
	return sexp.Rule{Name: name, Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
		s, err := sub.StringAt(0)
		if err != nil {
			return err
		}
		v := s == "yes"
		*dst = &v
		return nil
	}}
}

func yesNoNode(name string, v bool) *sexp.Node {
	if v {
		return sexp.NewNode(name, sexp.Symbol("yes"))
	}
	return sexp.NewNode(name, sexp.Symbol("no"))
}

func propertyList(dst *[]*common.Property, d *sexp.Diagnostics) sexp.Rule {
	return sexp.Rule{Name: "property", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
		p, err := common.ParseProperty(sub, d)
		if err != nil {
			return err
		}
		*dst = append(*dst, p)
		return nil
	}}
}

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

func atomText(v sexp.Value) string {
	switch t := v.(type) {
	case sexp.Symbol:
		return string(t)
	case sexp.String:
		return string(t)
	case sexp.Number:
		return t.String()
	}
	return ""
}
