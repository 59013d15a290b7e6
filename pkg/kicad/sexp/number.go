package sexp

import (
	"strconv"
	"strings"
)

// Number is a numeric value that remembers how it was written in the
// source file. KiCad files contain mathematically equal but textually
// distinct numbers (2 vs 2.0 vs 2.000000) and saving a file must not
// reformat values the program never touched.
//
// A Number parsed from a file holds its original literal; Set discards
// it. String prints the literal when present, otherwise the canonical
// formatting. An empty literal therefore doubles as the dirty flag.
type Number struct {
	value float64
	raw   string
}

// NewNumber creates a Number with no source literal; it prints in
// canonical formatting.
func NewNumber(v float64) Number {
	return Number{value: v}
}

// NewInt creates an integer-valued Number.
func NewInt(v int) Number {
	return Number{value: float64(v)}
}

func numberFromToken(t Token) Number {
	return Number{value: t.Value, raw: t.Raw}
}

// ParseNumber builds a Number from source text, keeping the literal.
func ParseNumber(raw string) (Number, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number{}, err
	}
	return Number{value: v, raw: raw}, nil
}

// Value returns the parsed numeric value.
func (n Number) Value() float64 { return n.value }

// Int returns the value truncated to an int.
func (n Number) Int() int { return int(n.value) }

// Set replaces the value and invalidates the source literal.
func (n *Number) Set(v float64) {
	n.value = v
	n.raw = ""
}

// IsZero reports whether the value is exactly zero.
func (n Number) IsZero() bool { return n.value == 0 }

// Equal compares by numeric value only; the source literal does not
// participate in document equality.
func (n Number) Equal(o Number) bool { return n.value == o.value }

// String prints the original literal if the value is unchanged since
// parsing, otherwise the canonical formatting.
func (n Number) String() string {
	if n.raw != "" {
		return n.raw
	}
	return FormatFloat(n.value)
}

func (n Number) sexpValue() {}

// FormatFloat prints v in fixed point with up to 6 decimal places,
// stripping trailing zeros and the decimal point. It never uses
// scientific notation.
//
//	FormatFloat(1.0)      == "1"
//	FormatFloat(1.0001)   == "1.0001"
//	FormatFloat(2.342e-6) == "0.000002"
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
