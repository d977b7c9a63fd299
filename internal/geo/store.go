package geo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Store provides persistence for geo entities.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// --- Police stations ---

// CreateStation inserts a station. If p.ID is empty a UUID is generated.
func (s *Store) CreateStation(ctx context.Context, p *PoliceStation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO police_stations (id, ps_name, division_name, city, contact_phone)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.DivisionName, p.City, p.ContactPhone,
	)
	if err != nil {
		return fmt.Errorf("inserting police station: %w", err)
	}
	return nil
}

// ListStations returns stations in registration order.
func (s *Store) ListStations(ctx context.Context) ([]PoliceStation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ps_name, division_name, city, contact_phone
		FROM police_stations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing police stations: %w", err)
	}
	defer rows.Close()

	out := []PoliceStation{}
	for rows.Next() {
		var p PoliceStation
		if err := rows.Scan(&p.ID, &p.Name, &p.DivisionName, &p.City, &p.ContactPhone); err != nil {
			return nil, fmt.Errorf("scanning police station: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Event units ---

// CreateUnit inserts an event unit.
func (s *Store) CreateUnit(ctx context.Context, u *Unit) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.RiskTier == "" {
		u.RiskTier = taxonomy.RiskLow
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_units (
			id, ps_id, unit_name, unit_type, head_name, address,
			latitude, longitude, crowd_min, crowd_max, risk_tier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullString(u.PSID), u.UnitName, u.UnitType, nullString(u.HeadName), nullString(u.Address),
		nullFloat(u.Latitude), nullFloat(u.Longitude), nullInt(u.CrowdMin), nullInt(u.CrowdMax),
		string(u.RiskTier),
	)
	if err != nil {
		return fmt.Errorf("inserting event unit: %w", err)
	}
	return nil
}

// ListUnits returns every unit with its station name resolved.
func (s *Store) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.ps_id, ps.ps_name, u.unit_name, u.unit_type, u.head_name, u.address,
			   u.latitude, u.longitude, u.crowd_min, u.crowd_max, u.risk_tier
		FROM event_units u
		LEFT JOIN police_stations ps ON ps.id = u.ps_id
		ORDER BY u.rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing event units: %w", err)
	}
	defer rows.Close()

	out := []Unit{}
	for rows.Next() {
		var (
			u                  Unit
			psID, psName       sql.NullString
			head, addr         sql.NullString
			lat, lng           sql.NullFloat64
			crowdMin, crowdMax sql.NullInt64
			risk               string
		)
		if err := rows.Scan(&u.ID, &psID, &psName, &u.UnitName, &u.UnitType, &head, &addr,
			&lat, &lng, &crowdMin, &crowdMax, &risk); err != nil {
			return nil, fmt.Errorf("scanning event unit: %w", err)
		}
		u.PSID, u.PSName = psID.String, psName.String
		u.HeadName, u.Address = head.String, addr.String
		u.Latitude, u.Longitude = floatPtr(lat), floatPtr(lng)
		u.CrowdMin, u.CrowdMax = intPtr(crowdMin), intPtr(crowdMax)
		u.RiskTier = taxonomy.RiskTier(risk)
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- Terminals ---

// CreateTerminal inserts an immersion ghat.
func (s *Store) CreateTerminal(ctx context.Context, t *Terminal) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO terminals (id, ghat_name, address, latitude, longitude, capacity_est, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.GhatName, nullString(t.Address), t.Latitude, t.Longitude, nullInt(t.CapacityEst), nullString(t.Notes),
	)
	if err != nil {
		return fmt.Errorf("inserting terminal: %w", err)
	}
	return nil
}

// ListTerminals returns every ghat.
func (s *Store) ListTerminals(ctx context.Context) ([]Terminal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ghat_name, address, latitude, longitude, capacity_est, notes
		FROM terminals ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing terminals: %w", err)
	}
	defer rows.Close()

	out := []Terminal{}
	for rows.Next() {
		var (
			t           Terminal
			addr, notes sql.NullString
			capacity    sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.GhatName, &addr, &t.Latitude, &t.Longitude, &capacity, &notes); err != nil {
			return nil, fmt.Errorf("scanning terminal: %w", err)
		}
		t.Address, t.Notes = addr.String, notes.String
		t.CapacityEst = intPtr(capacity)
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- Routes ---

// CreateRoute inserts a procession route.
func (s *Store) CreateRoute(ctx context.Context, r *Route) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routes (
			id, ps_id, route_name, route_type, start_label, start_lat, start_lng,
			end_label, end_lat, end_lng, time_start, time_end, distance_km
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, nullString(r.PSID), r.RouteName, r.RouteType,
		nullString(r.StartLabel), nullFloat(r.StartLat), nullFloat(r.StartLng),
		nullString(r.EndLabel), nullFloat(r.EndLat), nullFloat(r.EndLng),
		nullString(r.TimeStart), nullString(r.TimeEnd), nullFloat(r.DistanceKM),
	)
	if err != nil {
		return fmt.Errorf("inserting route: %w", err)
	}
	return nil
}

// ListRoutes returns every route with its station name resolved.
func (s *Store) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.ps_id, ps.ps_name, r.route_name, r.route_type,
			   r.start_label, r.start_lat, r.start_lng, r.end_label, r.end_lat, r.end_lng,
			   r.time_start, r.time_end, r.distance_km
		FROM routes r
		LEFT JOIN police_stations ps ON ps.id = r.ps_id
		ORDER BY r.rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing routes: %w", err)
	}
	defer rows.Close()

	out := []Route{}
	for rows.Next() {
		var (
			r                                  Route
			psID, psName, startLabel, endLabel sql.NullString
			timeStart, timeEnd                 sql.NullString
			startLat, startLng, endLat, endLng sql.NullFloat64
			distance                           sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &psID, &psName, &r.RouteName, &r.RouteType,
			&startLabel, &startLat, &startLng, &endLabel, &endLat, &endLng,
			&timeStart, &timeEnd, &distance); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		r.PSID, r.PSName = psID.String, psName.String
		r.StartLabel, r.EndLabel = startLabel.String, endLabel.String
		r.StartLat, r.StartLng = floatPtr(startLat), floatPtr(startLng)
		r.EndLat, r.EndLng = floatPtr(endLat), floatPtr(endLng)
		r.TimeStart, r.TimeEnd = timeStart.String, timeEnd.String
		r.DistanceKM = floatPtr(distance)
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Zones ---

// CreateZone inserts a security zone. The polygon is stored verbatim.
func (s *Store) CreateZone(ctx context.Context, z *Zone) error {
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	if z.RiskTier == "" {
		z.RiskTier = taxonomy.RiskLow
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO zones (id, ps_id, zone_name, zone_type, risk_tier, polygon_geojson)
		VALUES (?, ?, ?, ?, ?, ?)`,
		z.ID, nullString(z.PSID), z.ZoneName, z.ZoneType, string(z.RiskTier), z.PolygonGeoJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting zone: %w", err)
	}
	return nil
}

// ListZones returns every zone with its station name resolved.
func (s *Store) ListZones(ctx context.Context) ([]Zone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT z.id, z.ps_id, ps.ps_name, z.zone_name, z.zone_type, z.risk_tier, z.polygon_geojson
		FROM zones z
		LEFT JOIN police_stations ps ON ps.id = z.ps_id
		ORDER BY z.rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}
	defer rows.Close()

	out := []Zone{}
	for rows.Next() {
		var (
			z            Zone
			psID, psName sql.NullString
			risk         string
		)
		if err := rows.Scan(&z.ID, &psID, &psName, &z.ZoneName, &z.ZoneType, &risk, &z.PolygonGeoJSON); err != nil {
			return nil, fmt.Errorf("scanning zone: %w", err)
		}
		z.PSID, z.PSName = psID.String, psName.String
		z.RiskTier = taxonomy.RiskTier(risk)
		out = append(out, z)
	}
	return out, rows.Err()
}

// Reset removes every geo entity.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"zones", "routes", "event_units", "terminals", "police_stations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// LoadCollections reads the selected layers concurrently. Stations are
// always loaded since grouping needs them. Any failed read fails the whole
// load so callers never see a partial snapshot.
func (s *Store) LoadCollections(ctx context.Context, inc Include) (*Collections, error) {
	c := &Collections{
		Units:     []Unit{},
		Terminals: []Terminal{},
		Routes:    []Route{},
		Zones:     []Zone{},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Stations, err = s.ListStations(ctx)
		return err
	})
	if inc.Units {
		g.Go(func() (err error) {
			c.Units, err = s.ListUnits(ctx)
			return err
		})
	}
	if inc.Ghats {
		g.Go(func() (err error) {
			c.Terminals, err = s.ListTerminals(ctx)
			return err
		})
	}
	if inc.Routes {
		g.Go(func() (err error) {
			c.Routes, err = s.ListRoutes(ctx)
			return err
		})
	}
	if inc.Zones {
		g.Go(func() (err error) {
			c.Zones, err = s.ListZones(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading geo collections: %w", err)
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
