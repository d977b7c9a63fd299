package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// RegisterRoutes mounts audit endpoints under /api/audit on the given router.
func RegisterRoutes(r chi.Router, store *Store, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Route("/api/audit", func(r chi.Router) {
		r.Get("/", handleQuery(store, logger))
		r.Get("/summary", handleSummary(store, logger))
		r.Get("/{id}", handleGetByID(store, logger))
	})
}

func queryFailed(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Error("reading audit log", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch audit entries"})
}

func handleQuery(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			queryFailed(w, logger, err)
			return
		}
		if entries == nil {
			entries = []Entry{}
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

// parseFilter reads the audit query string. Unlike the UI filters, bad
// values are rejected rather than ignored.
func parseFilter(q url.Values) (QueryFilter, error) {
	filter := QueryFilter{
		ActorID: q.Get("actor"),
		ScopeID: q.Get("scope_id"),
		Limit:   defaultPageSize,
	}

	if v := q.Get("scope"); v != "" {
		filter.Scope = Scope(v)
		if !filter.Scope.Valid() {
			return filter, fmt.Errorf("unknown scope %q", v)
		}
	}
	if v := q.Get("action"); v != "" {
		filter.Action = Action(v)
		if !filter.Action.Valid() {
			return filter, fmt.Errorf("unknown action %q", v)
		}
	}

	var err error
	if filter.Since, err = parseTime(q, "since"); err != nil {
		return filter, err
	}
	if filter.Until, err = parseTime(q, "until"); err != nil {
		return filter, err
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = min(n, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid offset %q", v)
		}
		filter.Offset = n
	}
	return filter, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseTime(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s %q: want RFC 3339 or YYYY-MM-DD", key, v)
}

type summary struct {
	Total    int            `json:"total"`
	ByAction map[Action]int `json:"byAction"`
}

func handleSummary(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, err := parseTime(r.URL.Query(), "since")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		counts, err := store.CountByAction(r.Context(), since)
		if err != nil {
			queryFailed(w, logger, err)
			return
		}

		out := summary{ByAction: counts}
		for _, n := range counts {
			out.Total += n
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetByID(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			queryFailed(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
