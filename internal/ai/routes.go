package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// RouteConfig carries the collaborators of the drafting endpoints.
type RouteConfig struct {
	Audit  *audit.Store
	Logger *zap.Logger
	Actor  func(r *http.Request) string
}

// RegisterRoutes mounts the drafting endpoints under /api/ai.
func RegisterRoutes(r chi.Router, a *Assistant, cfg RouteConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Actor == nil {
		cfg.Actor = func(*http.Request) string { return "anonymous" }
	}
	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/summarize-evidence", handleSummarize(a, cfg))
		r.Post("/generate-stage-note", handleStageNote(a, cfg))
		r.Post("/compare-years", handleCompare(a, cfg))
	})
}

type summarizeRequest struct {
	FileID string `json:"fileId"`
}

func handleSummarize(a *Assistant, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !configured(w, a) {
			return
		}
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.FileID) == "" {
			writeError(w, http.StatusBadRequest, "File ID is required")
			return
		}

		out, err := a.SummarizeEvidence(r.Context(), req.FileID)
		if err != nil {
			fail(w, cfg, err, "Failed to generate summary")
			return
		}
		record(r, cfg, "summarize-evidence", req.FileID, "Drafted summary of "+out.Title)
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*Summary
		}{true, out})
	}
}

type stageNoteRequest struct {
	Stage   string   `json:"stage"`
	FileIDs []string `json:"fileIds"`
}

func handleStageNote(a *Assistant, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !configured(w, a) {
			return
		}
		var req stageNoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Stage) == "" {
			writeError(w, http.StatusBadRequest, "Stage is required")
			return
		}
		stage, err := taxonomy.ParseStage(req.Stage)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		out, err := a.GenerateStageNote(r.Context(), stage, req.FileIDs)
		if err != nil {
			fail(w, cfg, err, "Failed to generate stage note")
			return
		}
		record(r, cfg, "generate-stage-note", string(stage), "Drafted decision note for "+stage.Label())
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*StageNote
		}{true, out})
	}
}

type compareRequest struct {
	YearA int `json:"yearA"`
	YearB int `json:"yearB"`
}

func handleCompare(a *Assistant, cfg RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !configured(w, a) {
			return
		}
		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.YearA == 0 || req.YearB == 0 {
			writeError(w, http.StatusBadRequest, "Both years are required")
			return
		}

		out, err := a.CompareYears(r.Context(), req.YearA, req.YearB)
		if err != nil {
			fail(w, cfg, err, "Failed to generate comparison")
			return
		}
		record(r, cfg, "compare-years", fmt.Sprintf("%d-%d", req.YearA, req.YearB),
			fmt.Sprintf("Drafted comparison of %d and %d", req.YearA, req.YearB))
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*Comparison
		}{true, out})
	}
}

// configured rejects the request before any input is read when no provider
// is available.
func configured(w http.ResponseWriter, a *Assistant) bool {
	if a.Provider == nil {
		writeError(w, http.StatusInternalServerError, ErrNotConfigured.Error())
		return false
	}
	return true
}

// fail maps lookup errors to 404 and hides every other cause.
func fail(w http.ResponseWriter, cfg RouteConfig, err error, msg string) {
	switch {
	case errors.Is(err, ErrEvidenceNotFound):
		writeError(w, http.StatusNotFound, "Evidence file not found")
	case errors.Is(err, ErrYearNotArchived):
		writeError(w, http.StatusNotFound, "Archive data not available for one or both years")
	case errors.Is(err, ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, ErrNotConfigured.Error())
	default:
		cfg.Logger.Error(strings.ToLower(msg), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func record(r *http.Request, cfg RouteConfig, kind, scopeID, summary string) {
	if err := audit.Record(r.Context(), cfg.Audit, audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   cfg.Actor(r),
		Action:    audit.ActionAIDrafted,
		Scope:     audit.ScopeAI,
		ScopeID:   kind + ":" + scopeID,
		Summary:   summary,
	}); err != nil {
		cfg.Logger.Warn("recording audit entry", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
