package kml

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/geo"
)

// RouteConfig configures the export endpoint.
type RouteConfig struct {
	DocumentName string
	Logger       *zap.Logger
	// Actor names the caller in audit entries.
	Actor func(r *http.Request) string
	// Now stamps the attachment filename.
	Now func() time.Time
}

// RegisterRoutes mounts GET /api/kml.
func RegisterRoutes(r chi.Router, store *geo.Store, auditStore *audit.Store, cfg RouteConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Actor == nil {
		cfg.Actor = func(*http.Request) string { return "anonymous" }
	}
	r.Get("/api/kml", handleExport(store, auditStore, cfg))
}

func handleExport(store *geo.Store, auditStore *audit.Store, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		grouping, err := ParseGrouping(q.Get("groupBy"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		include := geo.ParseInclude(q.Get("include"))

		collections, err := store.LoadCollections(r.Context(), include)
		if err != nil {
			cfg.Logger.Error("generating KML", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate KML"})
			return
		}

		doc, err := Render(collections, Options{
			Grouping:     grouping,
			Include:      include,
			DocumentName: cfg.DocumentName,
			Logger:       cfg.Logger,
		})
		if err != nil {
			cfg.Logger.Error("generating KML", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate KML"})
			return
		}

		if err := audit.Record(r.Context(), auditStore, audit.Entry{
			ActorType: audit.ActorUser,
			ActorID:   cfg.Actor(r),
			Action:    audit.ActionKMLExported,
			Scope:     audit.ScopeGeo,
			ScopeID:   string(grouping),
			Summary:   fmt.Sprintf("Exported %d placemarks (%d skipped)", doc.Placemarks, len(doc.Skipped)),
			Detail:    "include=" + include.String(),
		}); err != nil {
			cfg.Logger.Warn("recording audit entry", zap.Error(err))
		}

		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(grouping, cfg.Now())+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(doc.Data)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
