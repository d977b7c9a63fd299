package notes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// RouteConfig carries the collaborators of the note endpoints.
type RouteConfig struct {
	Audit  *audit.Store
	Logger *zap.Logger
	Actor  func(r *http.Request) string
}

// RegisterRoutes mounts the decision note endpoints. Notes are addressed by
// stage in any form taxonomy.ParseStage accepts.
func RegisterRoutes(r chi.Router, store *Store, cfg RouteConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Actor == nil {
		cfg.Actor = func(*http.Request) string { return "anonymous" }
	}
	r.Get("/api/decision-notes", handleList(store, cfg))
	r.Get("/api/decision-notes/{stage}", handleGet(store, cfg))
	r.Put("/api/decision-notes/{stage}", handlePut(store, cfg))
}

func handleList(store *Store, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			cfg.Logger.Error("listing decision notes", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch decision notes"})
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGet(store *Store, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := taxonomy.ParseStage(chi.URLParam(r, "stage"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		n, err := store.Get(r.Context(), stage)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			cfg.Logger.Error("getting decision note", zap.String("stage", string(stage)), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch decision note"})
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

type noteRequest struct {
	Title            string   `json:"title"`
	WhatWeHad        string   `json:"whatWeHad"`
	WhatWeConsidered string   `json:"whatWeConsidered"`
	WhyWeDecided     string   `json:"whyWeDecided"`
	AIGISAssistNote  string   `json:"aiGisAssistNote"`
	EvidenceLinks    []string `json:"evidenceLinks"`
}

// handlePut stores the officer-approved text for a stage, typically an
// edited AI draft.
func handlePut(store *Store, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := taxonomy.ParseStage(chi.URLParam(r, "stage"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		actor := cfg.Actor(r)
		n := &Note{
			StageTag:         stage,
			Title:            req.Title,
			WhatWeHad:        req.WhatWeHad,
			WhatWeConsidered: req.WhatWeConsidered,
			WhyWeDecided:     req.WhyWeDecided,
			AIGISAssistNote:  req.AIGISAssistNote,
			EvidenceLinks:    req.EvidenceLinks,
			UpdatedBy:        actor,
		}
		if err := store.Save(r.Context(), n); err != nil {
			cfg.Logger.Error("saving decision note", zap.String("stage", string(stage)), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save decision note"})
			return
		}

		if err := audit.Record(r.Context(), cfg.Audit, audit.Entry{
			ActorType: audit.ActorUser,
			ActorID:   actor,
			Action:    audit.ActionNoteSaved,
			Scope:     audit.ScopeNotes,
			ScopeID:   string(stage),
			Summary:   "Saved decision note " + n.Title,
		}); err != nil {
			cfg.Logger.Warn("recording audit entry", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
