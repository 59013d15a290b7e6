package common

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// Comment is a numbered title-block comment line.
type Comment struct {
	Number sexp.Number
	Text   string
}

// TitleBlock is the (title_block ...) construct shared by boards and
// schematics. Every field is optional and omitted fields stay omitted
// on write.
type TitleBlock struct {
	Title    string
	Date     string
	Rev      string
	Company  string
	Comments []Comment
	Unknown  []*sexp.Node

	hasTitle, hasDate, hasRev, hasCompany bool
}

// ParseTitleBlock reads a title block.
func ParseTitleBlock(n *sexp.Node, d *sexp.Diagnostics) (*TitleBlock, error) {
	tb := &TitleBlock{}
	bindStr := func(dst *string, present *bool) func(*sexp.Node) error {
		return func(sub *sexp.Node) error {
			s, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			*dst = s
			*present = true
			return nil
		}
	}
	m := sexp.Mapper{Construct: "title_block", Rules: []sexp.Rule{
		{Name: "title", Kind: sexp.Keyword, BindNode: bindStr(&tb.Title, &tb.hasTitle)},
		{Name: "date", Kind: sexp.Keyword, BindNode: bindStr(&tb.Date, &tb.hasDate)},
		{Name: "rev", Kind: sexp.Keyword, BindNode: bindStr(&tb.Rev, &tb.hasRev)},
		{Name: "company", Kind: sexp.Keyword, BindNode: bindStr(&tb.Company, &tb.hasCompany)},
		{Name: "comment", Kind: sexp.KeywordList, BindNode: func(sub *sexp.Node) error {
			num, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			text, err := sub.StringAt(1)
			if err != nil {
				return err
			}
			tb.Comments = append(tb.Comments, Comment{Number: num, Text: text})
			return nil
		}},
		RestRule(&tb.Unknown),
	}}
	err := m.Apply(n, d)
	return tb, err
}

// SetTitle assigns the title and marks it present.
func (tb *TitleBlock) SetTitle(s string) {
	tb.Title = s
	tb.hasTitle = true
}

func (tb *TitleBlock) Node() *sexp.Node {
	n := sexp.NewNode("title_block")
	if tb.hasTitle {
		n.Append(sexp.NewNode("title", sexp.String(tb.Title)))
	}
	if tb.hasDate {
		n.Append(sexp.NewNode("date", sexp.String(tb.Date)))
	}
	if tb.hasRev {
		n.Append(sexp.NewNode("rev", sexp.String(tb.Rev)))
	}
	if tb.hasCompany {
		n.Append(sexp.NewNode("company", sexp.String(tb.Company)))
	}
	for _, c := range tb.Comments {
		n.Append(sexp.NewNode("comment", c.Number, sexp.String(c.Text)))
	}
	appendNodes(n, tb.Unknown)
	return n
}

// Paper is the sheet size declaration. Standard sizes carry a format
// name and optional portrait flag; the "User" format carries explicit
// dimensions instead.
type Paper struct {
	Format   string
	Width    *sexp.Number
	Height   *sexp.Number
	Portrait bool
}

// ParsePaper reads (paper "A4"), (paper "A4" portrait) or
// (paper "User" W H).
func ParsePaper(n *sexp.Node) (*Paper, error) {
	p := &Paper{}
	format, err := n.StringAt(0)
	if err != nil {
		return nil, err
	}
	p.Format = format
	if p.Format == "User" {
		w, err := n.NumberAt(1)
		if err != nil {
			return nil, err
		}
		h, err := n.NumberAt(2)
		if err != nil {
			return nil, err
		}
		p.Width, p.Height = &w, &h
		return p, nil
	}
	p.Portrait = n.HasFlag("portrait")
	return p, nil
}

func (p *Paper) Node() *sexp.Node {
	n := sexp.NewNode("paper", sexp.String(p.Format))
	if p.Format == "User" && p.Width != nil && p.Height != nil {
		n.Append(*p.Width, *p.Height)
		return n
	}
	if p.Portrait {
		n.Append(sexp.Symbol("portrait"))
	}
	return n
}
