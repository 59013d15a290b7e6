// Package layers holds the canonical KiCad board layer table.
package layers

import (
	"strconv"
	"strings"
)

// Canonical names of the fixed (non-copper) layers.
var fixed = []string{
	"B.Adhes", "F.Adhes",
	"B.Paste", "F.Paste",
	"B.SilkS", "F.SilkS",
	"B.Mask", "F.Mask",
	"Dwgs.User", "Cmts.User", "Eco1.User", "Eco2.User",
	"Edge.Cuts", "Margin",
	"B.CrtYd", "F.CrtYd",
	"B.Fab", "F.Fab",
	"User.1", "User.2", "User.3", "User.4", "User.5",
	"User.6", "User.7", "User.8", "User.9",
	"Rescue",
}

// Copper returns the canonical copper layer names for a board with
// count copper layers, front to back. Count is clamped to [2, 32] and
// rounded down to even, matching what the board editor can produce.
func Copper(count int) []string {
	if count < 2 {
		count = 2
	}
	if count > 32 {
		count = 32
	}
	count -= count % 2
	names := make([]string, 0, count)
	names = append(names, "F.Cu")
	for i := 1; i <= count-2; i++ {
		names = append(names, "In"+strconv.Itoa(i)+".Cu")
	}
	names = append(names, "B.Cu")
	return names
}

// AllCanonical returns every canonical layer name, copper first.
func AllCanonical() []string {
	names := Copper(32)
	return append(names, fixed...)
}

// IsCopper reports whether name is a canonical copper layer.
func IsCopper(name string) bool {
	if name == "F.Cu" || name == "B.Cu" {
		return true
	}
	if !strings.HasPrefix(name, "In") || !strings.HasSuffix(name, ".Cu") {
		return false
	}
	digits := name[2 : len(name)-3]
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsCanonical reports whether name is a layer KiCad itself defines.
func IsCanonical(name string) bool {
	if IsCopper(name) {
		return true
	}
	for _, f := range fixed {
		if f == name {
			return true
		}
	}
	return false
}

// IsWildcard reports whether name is one of the layer-set shorthands
// that pad and via layer lists may use instead of concrete names.
func IsWildcard(name string) bool {
	switch name {
	case "*.Cu", "*.Mask", "*.SilkS", "*.Paste", "*.Adhes", "*.CrtYd", "*.Fab",
		"F&B.Cu", "*&*.Cu":
		return true
	}
	return strings.HasPrefix(name, "*.")
}
