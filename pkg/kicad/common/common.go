// Package common holds typed constructs shared between the PCB and
// schematic document models: coordinates, strokes, text effects,
// properties and title blocks.
package common

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/kicad/sexp"
)

// XY is a bare coordinate pair, used with several tags (start, end,
// center, mid, xy, size, offset).
type XY struct {
	X sexp.Number
	Y sexp.Number
}

// ParseXY reads (tag X Y).
func ParseXY(n *sexp.Node) (XY, error) {
	x, err := n.NumberAt(0)
	if err != nil {
		return XY{}, err
	}
	y, err := n.NumberAt(1)
	if err != nil {
		return XY{}, err
	}
	return XY{X: x, Y: y}, nil
}

// Node serializes the pair under the given tag.
func (p XY) Node(tag string) *sexp.Node {
	return sexp.NewNode(tag, p.X, p.Y)
}

// XYZ is a 3D coordinate, used in footprint 3D model transforms.
type XYZ struct {
	X, Y, Z sexp.Number
}

// ParseXYZ reads (xyz X Y Z).
func ParseXYZ(n *sexp.Node) (XYZ, error) {
	x, err := n.NumberAt(0)
	if err != nil {
		return XYZ{}, err
	}
	y, err := n.NumberAt(1)
	if err != nil {
		return XYZ{}, err
	}
	z, err := n.NumberAt(2)
	if err != nil {
		return XYZ{}, err
	}
	return XYZ{X: x, Y: y, Z: z}, nil
}

func (p XYZ) Node() *sexp.Node {
	return sexp.NewNode("xyz", p.X, p.Y, p.Z)
}

// Position is an (at X Y [angle]) node. The angle is optional in the
// file and its absence is preserved on re-serialization.
type Position struct {
	X     sexp.Number
	Y     sexp.Number
	Angle *sexp.Number
}

// ParsePosition reads (at X Y [angle]).
func ParsePosition(n *sexp.Node) (Position, error) {
	x, err := n.NumberAt(0)
	if err != nil {
		return Position{}, err
	}
	y, err := n.NumberAt(1)
	if err != nil {
		return Position{}, err
	}
	pos := Position{X: x, Y: y}
	if len(n.Children) > 2 {
		a, err := n.NumberAt(2)
		if err != nil {
			return Position{}, err
		}
		pos.Angle = &a
	}
	return pos, nil
}

// AngleDegrees returns the rotation, zero when absent.
func (p Position) AngleDegrees() float64 {
	if p.Angle == nil {
		return 0
	}
	return p.Angle.Value()
}

func (p Position) Node() *sexp.Node {
	n := sexp.NewNode("at", p.X, p.Y)
	if p.Angle != nil {
		n.Append(*p.Angle)
	}
	return n
}

// Pts is a polygon point list: (pts (xy X Y) ...).
type Pts struct {
	XY []XY
}

// ParsePts reads a point list.
func ParsePts(n *sexp.Node) (Pts, error) {
	var pts Pts
	for _, c := range n.Children {
		sub, ok := c.(*sexp.Node)
		if !ok || sub.Tag != "xy" {
			return Pts{}, fmt.Errorf("expected (xy ...) in point list")
		}
		p, err := ParseXY(sub)
		if err != nil {
			return Pts{}, err
		}
		pts.XY = append(pts.XY, p)
	}
	return pts, nil
}

func (p Pts) Node() *sexp.Node {
	n := sexp.NewNode("pts")
	for _, xy := range p.XY {
		n.Append(xy.Node("xy"))
	}
	return n
}

// Color is an RGBA color with 0-255 channels and 0-1 alpha, as KiCad
// writes it.
type Color struct {
	R, G, B, A sexp.Number
}

// ParseColor reads (color R G B A).
func ParseColor(n *sexp.Node) (Color, error) {
	var c Color
	var err error
	if c.R, err = n.NumberAt(0); err != nil {
		return c, err
	}
	if c.G, err = n.NumberAt(1); err != nil {
		return c, err
	}
	if c.B, err = n.NumberAt(2); err != nil {
		return c, err
	}
	if c.A, err = n.NumberAt(3); err != nil {
		return c, err
	}
	return c, nil
}

func (c Color) Node() *sexp.Node {
	return sexp.NewNode("color", c.R, c.G, c.B, c.A)
}

// Stroke defines outline appearance: (stroke (width W) (type T)
// [(color ...)]).
type Stroke struct {
	Width sexp.Number
	Type  string
	Color *Color
}

// ParseStroke reads a stroke node.
func ParseStroke(n *sexp.Node, d *sexp.Diagnostics) (Stroke, error) {
	s := Stroke{Type: "default"}
	m := sexp.Mapper{Construct: "stroke", Rules: []sexp.Rule{
		{Name: "width", Kind: sexp.Keyword, Required: true, BindNode: func(sub *sexp.Node) error {
			w, err := sub.NumberAt(0)
			if err != nil {
				return err
			}
			s.Width = w
			return nil
		}},
		{Name: "type", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			t, err := sub.StringAt(0)
			if err != nil {
				return err
			}
			s.Type = t
			return nil
		}},
		{Name: "color", Kind: sexp.Keyword, BindNode: func(sub *sexp.Node) error {
			c, err := ParseColor(sub)
			if err != nil {
				return err
			}
			s.Color = &c
			return nil
		}},
	}}
	if err := m.Apply(n, d); err != nil {
		return s, err
	}
	if s.Width.Value() < 0 {
		d.Warnf("stroke", n.Pos, "negative stroke width %s", s.Width)
	}
	return s, nil
}

func (s Stroke) Node() *sexp.Node {
	n := sexp.NewNode("stroke",
		sexp.NewNode("width", s.Width),
		sexp.NewNode("type", sexp.Symbol(s.Type)))
	if s.Color != nil {
		n.Append(s.Color.Node())
	}
	return n
}
