package kml

import "github.com/aibandobast/bandobast/internal/taxonomy"

const iconBase = "http://maps.google.com/mapfiles/kml/"

// Style IDs referenced from placemarks.
const (
	StyleGhat  = "ghat"
	StyleRoute = "route"
)

// UnitStyle is the point style for a unit of the given risk tier.
func UnitStyle(tier taxonomy.RiskTier) string { return "risk_" + tierKey(tier) }

// ZoneStyle is the polygon style for a zone of the given risk tier.
func ZoneStyle(tier taxonomy.RiskTier) string { return "zone_" + tierKey(tier) }

// Unknown tiers fall back to the low style so the styleUrl always resolves.
func tierKey(tier taxonomy.RiskTier) string {
	switch tier {
	case taxonomy.RiskMedium, taxonomy.RiskHigh:
		return tier.Key()
	default:
		return taxonomy.RiskLow.Key()
	}
}

type pointStyle struct {
	id, color, scale, icon string
	label                  bool
}

type polyStyle struct {
	id, fill, line string
}

var pointStyles = []pointStyle{
	{id: "risk_low", color: "ff00ff00", scale: "1.0", icon: "paddle/grn-circle.png", label: true},
	{id: "risk_medium", color: "ff00a5ff", scale: "1.0", icon: "paddle/ylw-circle.png", label: true},
	{id: "risk_high", color: "ff0000ff", scale: "1.2", icon: "paddle/red-circle.png", label: true},
	{id: StyleGhat, color: "ffff0000", scale: "1.0", icon: "shapes/water.png"},
}

var polyStyles = []polyStyle{
	{id: "zone_low", fill: "4000ff00", line: "ff00ff00"},
	{id: "zone_medium", fill: "4000a5ff", line: "ff00a5ff"},
	{id: "zone_high", fill: "400000ff", line: "ff0000ff"},
}

func writeStyles(w *writer) {
	for _, s := range pointStyles {
		w.open(`Style id="` + s.id + `"`)
		w.open("IconStyle")
		w.line("<color>" + s.color + "</color>")
		w.line("<scale>" + s.scale + "</scale>")
		w.line("<Icon><href>" + iconBase + s.icon + "</href></Icon>")
		w.close("IconStyle")
		if s.label {
			w.line("<LabelStyle><color>" + s.color + "</color></LabelStyle>")
		}
		w.close("Style")
	}

	w.open(`Style id="` + StyleRoute + `"`)
	w.open("LineStyle")
	w.line("<color>ff8b00ff</color>")
	w.line("<width>4</width>")
	w.close("LineStyle")
	w.close("Style")

	for _, s := range polyStyles {
		w.open(`Style id="` + s.id + `"`)
		w.open("PolyStyle")
		w.line("<color>" + s.fill + "</color>")
		w.line("<outline>1</outline>")
		w.close("PolyStyle")
		w.line("<LineStyle><color>" + s.line + "</color><width>2</width></LineStyle>")
		w.close("Style")
	}
}
