package geo

import (
	"context"
	"fmt"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

func f64(v float64) *float64 { return &v }
func num(v int) *int         { return &v }

// DemoData returns the Nashik Ganpati Utsav planning data set. Units,
// routes and zones name their station through PSName; Seed resolves it.
func DemoData() Collections {
	const (
		panchavati = "Panchavati Police Station"
		gangapur   = "Gangapur Police Station"
		nashikRoad = "Nashik Road Police Station"
	)
	return Collections{
		Stations: []PoliceStation{
			{Name: panchavati, DivisionName: "Nashik City", City: "Nashik", ContactPhone: "0253-2573100"},
			{Name: gangapur, DivisionName: "Nashik City", City: "Nashik", ContactPhone: "0253-2573200"},
			{Name: nashikRoad, DivisionName: "Nashik City", City: "Nashik", ContactPhone: "0253-2573300"},
		},
		Terminals: []Terminal{
			{GhatName: "Ramkund Ghat", Address: "Ramkund, Panchavati, Nashik", Latitude: 20.0063, Longitude: 73.7904, CapacityEst: num(5000), Notes: "Primary immersion point at sacred Ramkund"},
			{GhatName: "Godavari Ghat", Address: "Godavari River, Nashik", Latitude: 19.9975, Longitude: 73.7898, CapacityEst: num(3000), Notes: "Secondary immersion point near Godavari"},
		},
		Units: []Unit{
			{PSName: panchavati, UnitName: "Shree Ganesh Mandal Panchavati", UnitType: "SARVAJANIK", HeadName: "Ramesh Patil", Address: "Main Road, Panchavati", Latitude: f64(20.0073), Longitude: f64(73.7914), CrowdMin: num(5000), CrowdMax: num(8000), RiskTier: taxonomy.RiskHigh},
			{PSName: panchavati, UnitName: "Kalaram Ganesh Seva Mandal", UnitType: "SARVAJANIK", HeadName: "Suresh Joshi", Address: "Kalaram Temple Road", Latitude: f64(20.0068), Longitude: f64(73.7925), CrowdMin: num(3000), CrowdMax: num(5000), RiskTier: taxonomy.RiskMedium},
			{PSName: panchavati, UnitName: "Saptashrungi Mandal", UnitType: "SARVAJANIK", HeadName: "Vijay More", Address: "Saptashrungi Galli, Panchavati", Latitude: f64(20.0055), Longitude: f64(73.7892), CrowdMin: num(1000), CrowdMax: num(2000), RiskTier: taxonomy.RiskLow},
			{PSName: gangapur, UnitName: "Gangapur Sarvajanik Ganeshotsav", UnitType: "SARVAJANIK", HeadName: "Mahesh Kulkarni", Address: "Gangapur Road", Latitude: f64(19.9888), Longitude: f64(73.7756), CrowdMin: num(4000), CrowdMax: num(6000), RiskTier: taxonomy.RiskHigh},
			{PSName: gangapur, UnitName: "Jai Maharaj Mandal", UnitType: "SARVAJANIK", HeadName: "Anil Shinde", Address: "College Road, Gangapur", Latitude: f64(19.9923), Longitude: f64(73.7812), CrowdMin: num(2000), CrowdMax: num(3500), RiskTier: taxonomy.RiskMedium},
			{PSName: gangapur, UnitName: "Shivaji Nagar Ganesh Mandal", UnitType: "SARVAJANIK", HeadName: "Prakash Gaikwad", Address: "Shivaji Nagar", Latitude: f64(19.9945), Longitude: f64(73.7834), CrowdMin: num(800), CrowdMax: num(1500), RiskTier: taxonomy.RiskLow},
			{PSName: nashikRoad, UnitName: "Nashik Road Ganeshotsav Mandal", UnitType: "SARVAJANIK", HeadName: "Deepak Wagh", Address: "Station Road, Nashik Road", Latitude: f64(19.9634), Longitude: f64(73.8456), CrowdMin: num(3500), CrowdMax: num(5500), RiskTier: taxonomy.RiskMedium},
			{PSName: nashikRoad, UnitName: "Railway Colony Mandal", UnitType: "RESIDENTIAL", HeadName: "Kiran Pawar", Address: "Railway Colony, Nashik Road", Latitude: f64(19.9612), Longitude: f64(73.8423), CrowdMin: num(500), CrowdMax: num(1000), RiskTier: taxonomy.RiskLow},
			{PSName: nashikRoad, UnitName: "Bytco Point Ganesh Utsav", UnitType: "SARVAJANIK", HeadName: "Sachin Jadhav", Address: "Bytco Point, Nashik Road", Latitude: f64(19.9678), Longitude: f64(73.8512), CrowdMin: num(2500), CrowdMax: num(4000), RiskTier: taxonomy.RiskMedium},
			{PSName: nashikRoad, UnitName: "Dwarka Ganesh Mandal", UnitType: "SARVAJANIK", HeadName: "Rajendra Nikam", Address: "Dwarka Circle, Nashik Road", Latitude: f64(19.9701), Longitude: f64(73.8478), CrowdMin: num(6000), CrowdMax: num(9000), RiskTier: taxonomy.RiskHigh},
		},
		Routes: []Route{
			{PSName: panchavati, RouteName: "Panchavati Main Route", RouteType: "VISARJAN", StartLabel: "Panchavati Chowk", StartLat: f64(20.0073), StartLng: f64(73.7914), EndLabel: "Ramkund Ghat", EndLat: f64(20.0063), EndLng: f64(73.7904), TimeStart: "18:00", TimeEnd: "22:00", DistanceKM: f64(1.2)},
			{PSName: gangapur, RouteName: "Gangapur to Godavari Route", RouteType: "VISARJAN", StartLabel: "Gangapur Main Road", StartLat: f64(19.9888), StartLng: f64(73.7756), EndLabel: "Godavari Ghat", EndLat: f64(19.9975), EndLng: f64(73.7898), TimeStart: "16:00", TimeEnd: "20:00", DistanceKM: f64(2.5)},
		},
		Zones: []Zone{
			{
				PSName:         panchavati,
				ZoneName:       "Ramkund High Security Zone",
				ZoneType:       "HIGH_SECURITY",
				RiskTier:       taxonomy.RiskHigh,
				PolygonGeoJSON: `{"type":"Polygon","coordinates":[[[73.789,20.005],[73.792,20.005],[73.792,20.008],[73.789,20.008],[73.789,20.005]]]}`,
			},
		},
	}
}

// SeedSummary counts what Seed inserted.
type SeedSummary struct {
	Stations  int `json:"stations"`
	Terminals int `json:"terminals"`
	Units     int `json:"units"`
	Routes    int `json:"routes"`
	Zones     int `json:"zones"`
}

// Seed replaces every geo entity in the store with data. Station names in
// units, routes and zones are resolved to the IDs of the inserted stations.
func Seed(ctx context.Context, store *Store, data Collections) (SeedSummary, error) {
	var sum SeedSummary
	if err := store.Reset(ctx); err != nil {
		return sum, err
	}

	ids := make(map[string]string, len(data.Stations))
	for i := range data.Stations {
		p := data.Stations[i]
		if err := store.CreateStation(ctx, &p); err != nil {
			return sum, fmt.Errorf("seeding station %s: %w", p.Name, err)
		}
		ids[p.Name] = p.ID
		sum.Stations++
	}
	for i := range data.Terminals {
		t := data.Terminals[i]
		if err := store.CreateTerminal(ctx, &t); err != nil {
			return sum, fmt.Errorf("seeding ghat %s: %w", t.GhatName, err)
		}
		sum.Terminals++
	}
	for i := range data.Units {
		u := data.Units[i]
		u.PSID = resolveStation(ids, u.PSID, u.PSName)
		if err := store.CreateUnit(ctx, &u); err != nil {
			return sum, fmt.Errorf("seeding unit %s: %w", u.UnitName, err)
		}
		sum.Units++
	}
	for i := range data.Routes {
		r := data.Routes[i]
		r.PSID = resolveStation(ids, r.PSID, r.PSName)
		if err := store.CreateRoute(ctx, &r); err != nil {
			return sum, fmt.Errorf("seeding route %s: %w", r.RouteName, err)
		}
		sum.Routes++
	}
	for i := range data.Zones {
		z := data.Zones[i]
		z.PSID = resolveStation(ids, z.PSID, z.PSName)
		if err := store.CreateZone(ctx, &z); err != nil {
			return sum, fmt.Errorf("seeding zone %s: %w", z.ZoneName, err)
		}
		sum.Zones++
	}
	return sum, nil
}

func resolveStation(ids map[string]string, id, name string) string {
	if id != "" {
		return id
	}
	return ids[name]
}
