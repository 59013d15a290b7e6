package pcb

import (
	"strings"
	"testing"
)

const zoneBoard = `(kicad_pcb
  (version 20211014)
  (net 0 "")
  (net 2 "VCC")
  (zone
    (net 2)
    (net_name "VCC")
    (layer "F.Cu")
    (tstamp aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee)
    (hatch edge 0.5)
    (connect_pads
      (clearance 0.508)
    )
    (min_thickness 0.254)
    (fill yes
      (thermal_gap 0.508)
      (thermal_bridge_width 0.508)
    )
    (polygon
      (pts
        (xy 90 90)
        (xy 130 90)
        (xy 130 110)
        (xy 90 110)
      )
    )
    (filled_polygon
      (layer "F.Cu")
      (pts
        (xy 90.1 90.1)
        (xy 129.9 90.1)
        (xy 129.9 109.9)
        (xy 90.1 109.9)
      )
    )
  )
)
`

func TestParseZone(t *testing.T) {
	b, diags, err := Parse(zoneBoard)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(b.Zones) != 1 {
		t.Fatalf("got %d zones, want 1", len(b.Zones))
	}
	z := b.Zones[0]
	if z.Net.Int() != 2 || z.NetName != "VCC" || z.Layer != "F.Cu" {
		t.Errorf("zone refs = net %s %q layer %q", z.Net, z.NetName, z.Layer)
	}
	if z.Hatch == nil || z.Hatch.Style != "edge" || z.Hatch.Pitch.Value() != 0.5 {
		t.Errorf("hatch = %+v", z.Hatch)
	}
	if z.ConnectPads == nil || z.ConnectPads.Mode != "" || z.ConnectPads.Clearance == nil {
		t.Errorf("connect_pads = %+v", z.ConnectPads)
	}
	if z.MinThickness == nil || z.MinThickness.Value() != 0.254 {
		t.Errorf("min_thickness = %v", z.MinThickness)
	}
	if z.Fill == nil || !z.Fill.HasFlag("yes") {
		t.Errorf("fill block not kept verbatim: %+v", z.Fill)
	}
	if len(z.Polygons) != 1 || len(z.Polygons[0].XY) != 4 {
		t.Errorf("polygons = %+v", z.Polygons)
	}
	if len(z.FilledPolygons) != 1 || z.FilledPolygons[0].Layer != "F.Cu" || z.FilledPolygons[0].Island {
		t.Errorf("filled polygons = %+v", z.FilledPolygons)
	}
}

func TestZoneRoundTrip(t *testing.T) {
	b, _, err := Parse(zoneBoard)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if out != zoneBoard {
		t.Errorf("round trip changed the document:\ngot:\n%s\nwant:\n%s", out, zoneBoard)
	}
}

func TestZoneKeepoutVerbatim(t *testing.T) {
	src := `(kicad_pcb
  (version 20211014)
  (net 0 "")
  (zone
    (net 0)
    (net_name "")
    (layers "F.Cu" "B.Cu")
    (keepout
      (tracks not_allowed)
      (vias allowed)
    )
    (polygon
      (pts
        (xy 0 0)
        (xy 1 0)
        (xy 1 1)
      )
    )
  )
)
`
	b, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	z := b.Zones[0]
	if z.Keepout == nil {
		t.Fatal("keepout block not captured")
	}
	if len(z.Layers) != 2 {
		t.Errorf("zone layers = %v", z.Layers)
	}
	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(out, "(tracks not_allowed)") {
		t.Error("keepout content lost on write")
	}
	if out != src {
		t.Errorf("round trip changed the document:\ngot:\n%s\nwant:\n%s", out, src)
	}
}
