package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := setupStore(t)
	_, err := Seed(context.Background(), store, DemoData())
	require.NoError(t, err)
	return store
}

func TestSeedCounts(t *testing.T) {
	store := setupStore(t)

	sum, err := Seed(context.Background(), store, DemoData())
	require.NoError(t, err)
	assert.Equal(t, SeedSummary{Stations: 3, Terminals: 2, Units: 10, Routes: 2, Zones: 1}, sum)
}

func TestSeedIsRepeatable(t *testing.T) {
	store := seededStore(t)

	_, err := Seed(context.Background(), store, DemoData())
	require.NoError(t, err)

	stations, err := store.ListStations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 3)
}

func TestListUnitsResolvesStation(t *testing.T) {
	store := seededStore(t)

	units, err := store.ListUnits(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, units)

	first := units[0]
	assert.Equal(t, "Shree Ganesh Mandal Panchavati", first.UnitName)
	assert.Equal(t, "Panchavati Police Station", first.PSName)
	assert.Equal(t, taxonomy.Panchavati, first.Jurisdiction())
	require.NotNil(t, first.Latitude)
	assert.InDelta(t, 20.0073, *first.Latitude, 1e-9)
	require.NotNil(t, first.CrowdMax)
	assert.Equal(t, 8000, *first.CrowdMax)
}

func TestNullableColumnsRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUnit(ctx, &Unit{UnitName: "Ungeocoded Mandal"}))
	require.NoError(t, store.CreateRoute(ctx, &Route{RouteName: "Unsurveyed Route"}))

	units, err := store.ListUnits(ctx)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Nil(t, units[0].Latitude)
	assert.Nil(t, units[0].CrowdMin)
	assert.Equal(t, taxonomy.RiskLow, units[0].RiskTier)
	assert.Empty(t, units[0].PSName)

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].StartLat)
	assert.Nil(t, routes[0].DistanceKM)
}

func TestZeroCoordinateIsNotNull(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUnit(ctx, &Unit{UnitName: "Equator", Latitude: f64(0), Longitude: f64(0)}))

	units, err := store.ListUnits(ctx)
	require.NoError(t, err)
	require.NotNil(t, units[0].Latitude)
	assert.Zero(t, *units[0].Latitude)
}

func TestInvalidRiskTierRejected(t *testing.T) {
	store := setupStore(t)
	err := store.CreateZone(context.Background(), &Zone{ZoneName: "Bad", RiskTier: "EXTREME"})
	assert.Error(t, err)
}

func TestLoadCollectionsRespectsInclude(t *testing.T) {
	store := seededStore(t)

	c, err := store.LoadCollections(context.Background(), Include{Units: true, Zones: true})
	require.NoError(t, err)
	assert.Len(t, c.Stations, 3)
	assert.Len(t, c.Units, 10)
	assert.Len(t, c.Zones, 1)
	assert.Empty(t, c.Terminals)
	assert.Empty(t, c.Routes)

	all, err := store.LoadCollections(context.Background(), AllLayers())
	require.NoError(t, err)
	assert.Len(t, all.Terminals, 2)
	assert.Len(t, all.Routes, 2)
}

func TestLoadCollectionsCancelled(t *testing.T) {
	store := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.LoadCollections(ctx, AllLayers())
	assert.Error(t, err)
}

func TestParseInclude(t *testing.T) {
	tests := []struct {
		in   string
		want Include
	}{
		{"", AllLayers()},
		{"units", Include{Units: true}},
		{"ghats, routes", Include{Ghats: true, Routes: true}},
		{"terminals,ZONES,bogus", Include{Ghats: true, Zones: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseInclude(tt.in), "ParseInclude(%q)", tt.in)
	}
	assert.Equal(t, "units,routes,ghats,zones", AllLayers().String())
}

func TestFilterUnits(t *testing.T) {
	units := DemoData().Units

	assert.Len(t, FilterUnits(units, taxonomy.RiskHigh, ""), 3)
	assert.Len(t, FilterUnits(units, "", "Nashik Road"), 4)
	assert.Len(t, FilterUnits(units, taxonomy.RiskHigh, "Gangapur Police Station"), 1)
	assert.Len(t, FilterUnits(units, "", ""), len(units))
}

// --- HTTP handler tests ---

func TestHTTPEndpoints(t *testing.T) {
	store := seededStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/stations", 3},
		{"/api/units", 10},
		{"/api/units?risk=high", 3},
		{"/api/units?ps=Panchavati", 3},
		{"/api/terminals", 2},
		{"/api/ghats", 2},
		{"/api/routes", 2},
		{"/api/zones", 1},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var items []json.RawMessage
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
			assert.Len(t, items, tt.want)
		})
	}
}

func TestHTTPUnitsBadRisk(t *testing.T) {
	store := seededStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/units?risk=extreme", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPStoreFailureHidesCause(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	r := chi.NewRouter()
	RegisterRoutes(r, NewStore(database), nil)
	require.NoError(t, database.Close())

	for _, layer := range []string{"stations", "units", "terminals", "routes", "zones"} {
		req := httptest.NewRequest(http.MethodGet, "/api/"+layer, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code, layer)
		raw := rec.Body.String()
		assert.NotContains(t, raw, "sql")
		var body map[string]string
		require.NoError(t, json.Unmarshal([]byte(raw), &body))
		assert.Equal(t, "Failed to fetch "+layer, body["error"])
	}
}
