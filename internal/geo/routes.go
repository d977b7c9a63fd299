package geo

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// RegisterRoutes mounts read-only geo endpoints. Store failures are logged
// and answered with a fixed message naming the layer.
func RegisterRoutes(r chi.Router, store *Store, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Get("/api/stations", handleStations(store, logger))
	r.Get("/api/units", handleUnits(store, logger))
	r.Get("/api/terminals", handleTerminals(store, logger))
	r.Get("/api/ghats", handleTerminals(store, logger))
	r.Get("/api/routes", handleRoutes(store, logger))
	r.Get("/api/zones", handleZones(store, logger))
}

func storeFailed(w http.ResponseWriter, logger *zap.Logger, layer string, err error) {
	logger.Error("listing geo layer", zap.String("layer", layer), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch " + layer})
}

func handleStations(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stations, err := store.ListStations(r.Context())
		if err != nil {
			storeFailed(w, logger, "stations", err)
			return
		}
		writeJSON(w, http.StatusOK, stations)
	}
}

// handleUnits supports ?risk=HIGH and ?ps=Panchavati filters.
func handleUnits(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		units, err := store.ListUnits(r.Context())
		if err != nil {
			storeFailed(w, logger, "units", err)
			return
		}

		q := r.URL.Query()
		var risk taxonomy.RiskTier
		if v := q.Get("risk"); v != "" {
			risk, err = taxonomy.ParseRiskTier(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		ps := strings.TrimSpace(q.Get("ps"))
		writeJSON(w, http.StatusOK, FilterUnits(units, risk, ps))
	}
}

// FilterUnits keeps units matching risk and station. Empty values match all;
// the station is compared by jurisdiction so "Panchavati" and
// "Panchavati Police Station" are equivalent.
func FilterUnits(units []Unit, risk taxonomy.RiskTier, ps string) []Unit {
	var want taxonomy.Jurisdiction
	if ps != "" {
		want = taxonomy.ParseJurisdiction(ps)
	}
	out := []Unit{}
	for _, u := range units {
		if risk != "" && u.RiskTier != risk {
			continue
		}
		if ps != "" && u.Jurisdiction() != want {
			continue
		}
		out = append(out, u)
	}
	return out
}

func handleTerminals(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		terminals, err := store.ListTerminals(r.Context())
		if err != nil {
			storeFailed(w, logger, "terminals", err)
			return
		}
		writeJSON(w, http.StatusOK, terminals)
	}
}

func handleRoutes(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := store.ListRoutes(r.Context())
		if err != nil {
			storeFailed(w, logger, "routes", err)
			return
		}
		writeJSON(w, http.StatusOK, routes)
	}
}

func handleZones(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones, err := store.ListZones(r.Context())
		if err != nil {
			storeFailed(w, logger, "zones", err)
			return
		}
		writeJSON(w, http.StatusOK, zones)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
