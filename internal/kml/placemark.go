package kml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aibandobast/bandobast/internal/geo"
)

// Skip reasons. A formatter returning one of these produced no placemark;
// the document is still rendered without it.
var (
	ErrMissingCoordinates = errors.New("missing coordinates")
	ErrMalformedBoundary  = errors.New("malformed boundary")
)

// UnitPlacemark renders a unit as a styled point.
func UnitPlacemark(u geo.Unit) (string, error) {
	if u.Latitude == nil || u.Longitude == nil {
		return "", ErrMissingCoordinates
	}
	desc := []string{
		field("Risk Tier", Escape(string(u.RiskTier))),
		field("Address", Escape(u.Address)),
		field("Head", Escape(u.HeadName)),
		field("Crowd Estimate", intOrZero(u.CrowdMin)+" - "+intOrZero(u.CrowdMax)),
	}
	var b strings.Builder
	b.WriteString("<Placemark>\n")
	b.WriteString("  <name>" + Escape(u.UnitName) + "</name>\n")
	b.WriteString("  " + description(desc) + "\n")
	b.WriteString("  <styleUrl>#" + UnitStyle(u.RiskTier) + "</styleUrl>\n")
	b.WriteString("  <Point>\n")
	b.WriteString("    <coordinates>" + position(*u.Longitude, *u.Latitude) + "</coordinates>\n")
	b.WriteString("  </Point>\n")
	b.WriteString("</Placemark>\n")
	return b.String(), nil
}

// TerminalPlacemark renders a ghat. Ghats always have a position.
func TerminalPlacemark(t geo.Terminal) (string, error) {
	capacity := "N/A"
	if t.CapacityEst != nil {
		capacity = strconv.Itoa(*t.CapacityEst)
	}
	desc := []string{
		field("Type", "Immersion Point"),
		field("Address", Escape(t.Address)),
		field("Capacity", capacity),
	}
	var b strings.Builder
	b.WriteString("<Placemark>\n")
	b.WriteString("  <name>" + Escape(t.GhatName) + "</name>\n")
	b.WriteString("  " + description(desc) + "\n")
	b.WriteString("  <styleUrl>#" + StyleGhat + "</styleUrl>\n")
	b.WriteString("  <Point>\n")
	b.WriteString("    <coordinates>" + position(t.Longitude, t.Latitude) + "</coordinates>\n")
	b.WriteString("  </Point>\n")
	b.WriteString("</Placemark>\n")
	return b.String(), nil
}

// RoutePlacemark renders a route as a two-point line from start to end.
func RoutePlacemark(r geo.Route) (string, error) {
	if r.StartLat == nil || r.StartLng == nil || r.EndLat == nil || r.EndLng == nil {
		return "", ErrMissingCoordinates
	}
	distance := "N/A"
	if r.DistanceKM != nil {
		distance = formatNumber(*r.DistanceKM)
	}
	desc := []string{
		field("Start", Escape(r.StartLabel)),
		field("End", Escape(r.EndLabel)),
		field("Distance", distance+" km"),
	}
	var b strings.Builder
	b.WriteString("<Placemark>\n")
	b.WriteString("  <name>" + Escape(r.RouteName) + "</name>\n")
	b.WriteString("  " + description(desc) + "\n")
	b.WriteString("  <styleUrl>#" + StyleRoute + "</styleUrl>\n")
	b.WriteString("  <LineString>\n")
	b.WriteString("    <coordinates>" + position(*r.StartLng, *r.StartLat) + " " + position(*r.EndLng, *r.EndLat) + "</coordinates>\n")
	b.WriteString("  </LineString>\n")
	b.WriteString("</Placemark>\n")
	return b.String(), nil
}

// ZonePlacemark renders a zone's GeoJSON polygon outer ring.
func ZonePlacemark(z geo.Zone) (string, error) {
	ring, err := OuterRing(z.PolygonGeoJSON)
	if err != nil {
		return "", err
	}
	coords := make([]string, len(ring))
	for i, p := range ring {
		coords[i] = position(p[0], p[1])
	}
	desc := []string{
		field("Type", "Zone"),
		field("Risk Tier", Escape(string(z.RiskTier))),
	}
	var b strings.Builder
	b.WriteString("<Placemark>\n")
	b.WriteString("  <name>" + Escape(z.ZoneName) + "</name>\n")
	b.WriteString("  " + description(desc) + "\n")
	b.WriteString("  <styleUrl>#" + ZoneStyle(z.RiskTier) + "</styleUrl>\n")
	b.WriteString("  <Polygon>\n")
	b.WriteString("    <outerBoundaryIs>\n")
	b.WriteString("      <LinearRing>\n")
	b.WriteString("        <coordinates>" + strings.Join(coords, " ") + "</coordinates>\n")
	b.WriteString("      </LinearRing>\n")
	b.WriteString("    </outerBoundaryIs>\n")
	b.WriteString("  </Polygon>\n")
	b.WriteString("</Placemark>\n")
	return b.String(), nil
}

type polygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// OuterRing parses a GeoJSON Polygon and returns its first ring as
// [lng, lat] pairs, closed. Rings need at least three positions and every
// position at least two numbers.
func OuterRing(geojson string) ([][2]float64, error) {
	var p polygon
	if err := json.Unmarshal([]byte(geojson), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBoundary, err)
	}
	if p.Type != "" && p.Type != "Polygon" {
		return nil, fmt.Errorf("%w: geometry type %q", ErrMalformedBoundary, p.Type)
	}
	if len(p.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: no rings", ErrMalformedBoundary)
	}

	src := p.Coordinates[0]
	if len(src) < 3 {
		return nil, fmt.Errorf("%w: ring has %d positions", ErrMalformedBoundary, len(src))
	}
	ring := make([][2]float64, 0, len(src)+1)
	for i, pos := range src {
		if len(pos) < 2 {
			return nil, fmt.Errorf("%w: position %d has %d values", ErrMalformedBoundary, i, len(pos))
		}
		ring = append(ring, [2]float64{pos[0], pos[1]})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

func field(label, value string) string {
	return "<strong>" + label + ":</strong> " + value
}

func description(fields []string) string {
	return "<description><![CDATA[" + strings.Join(fields, "<br/>") + "]]></description>"
}

func position(lng, lat float64) string {
	return formatNumber(lng) + "," + formatNumber(lat) + ",0"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intOrZero(v *int) string {
	if v == nil {
		return "0"
	}
	return strconv.Itoa(*v)
}
