// Package geo holds the bandobast map entities: police stations, event units,
// immersion terminals, procession routes and security zones.
package geo

import (
	"strings"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// PoliceStation is a station from the register. Units, routes and zones
// reference it by ID.
type PoliceStation struct {
	ID           string `json:"id"`
	Name         string `json:"ps_name"`
	DivisionName string `json:"division_name,omitempty"`
	City         string `json:"city,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// Jurisdiction resolves the station name to its taxonomy value.
func (p PoliceStation) Jurisdiction() taxonomy.Jurisdiction {
	return taxonomy.ParseJurisdiction(p.Name)
}

// Unit is a mandal or other event unit. Coordinates are nil until geocoded.
type Unit struct {
	ID        string            `json:"id"`
	PSID      string            `json:"ps_id,omitempty"`
	PSName    string            `json:"ps_name,omitempty"`
	UnitName  string            `json:"unit_name"`
	UnitType  string            `json:"unit_type,omitempty"`
	HeadName  string            `json:"head_name,omitempty"`
	Address   string            `json:"address,omitempty"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	CrowdMin  *int              `json:"crowd_min"`
	CrowdMax  *int              `json:"crowd_max"`
	RiskTier  taxonomy.RiskTier `json:"risk_tier"`
}

// Jurisdiction is the taxonomy value of the unit's station.
func (u Unit) Jurisdiction() taxonomy.Jurisdiction {
	return taxonomy.ParseJurisdiction(u.PSName)
}

// Terminal is an immersion ghat. Its position is always known.
type Terminal struct {
	ID          string  `json:"id"`
	GhatName    string  `json:"ghat_name"`
	Address     string  `json:"address,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CapacityEst *int    `json:"capacity_est"`
	Notes       string  `json:"notes,omitempty"`
}

// Route is a procession path between two labelled endpoints.
type Route struct {
	ID         string   `json:"id"`
	PSID       string   `json:"ps_id,omitempty"`
	PSName     string   `json:"ps_name,omitempty"`
	RouteName  string   `json:"route_name"`
	RouteType  string   `json:"route_type,omitempty"`
	StartLabel string   `json:"start_label,omitempty"`
	StartLat   *float64 `json:"start_lat"`
	StartLng   *float64 `json:"start_lng"`
	EndLabel   string   `json:"end_label,omitempty"`
	EndLat     *float64 `json:"end_lat"`
	EndLng     *float64 `json:"end_lng"`
	TimeStart  string   `json:"time_start,omitempty"`
	TimeEnd    string   `json:"time_end,omitempty"`
	DistanceKM *float64 `json:"distance_km"`
}

// Zone is a security polygon stored as GeoJSON text.
type Zone struct {
	ID             string            `json:"id"`
	PSID           string            `json:"ps_id,omitempty"`
	PSName         string            `json:"ps_name,omitempty"`
	ZoneName       string            `json:"zone_name"`
	ZoneType       string            `json:"zone_type,omitempty"`
	RiskTier       taxonomy.RiskTier `json:"risk_tier"`
	PolygonGeoJSON string            `json:"polygon_geojson"`
}

// Collections is one consistent read of every entity kind.
type Collections struct {
	Stations  []PoliceStation `json:"stations"`
	Units     []Unit          `json:"units"`
	Terminals []Terminal      `json:"terminals"`
	Routes    []Route         `json:"routes"`
	Zones     []Zone          `json:"zones"`
}

// Include selects which entity layers are loaded and exported.
type Include struct {
	Units  bool
	Ghats  bool
	Routes bool
	Zones  bool
}

// AllLayers includes every layer.
func AllLayers() Include {
	return Include{Units: true, Ghats: true, Routes: true, Zones: true}
}

// ParseInclude reads a comma-separated layer list such as
// "units,routes,ghats,zones". An empty list selects every layer; unknown
// names are ignored.
func ParseInclude(s string) Include {
	if strings.TrimSpace(s) == "" {
		return AllLayers()
	}
	var inc Include
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "units":
			inc.Units = true
		case "ghats", "terminals":
			inc.Ghats = true
		case "routes":
			inc.Routes = true
		case "zones":
			inc.Zones = true
		}
	}
	return inc
}

// String renders the include set in canonical order.
func (inc Include) String() string {
	var parts []string
	if inc.Units {
		parts = append(parts, "units")
	}
	if inc.Routes {
		parts = append(parts, "routes")
	}
	if inc.Ghats {
		parts = append(parts, "ghats")
	}
	if inc.Zones {
		parts = append(parts, "zones")
	}
	return strings.Join(parts, ",")
}
