package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/classifier"
)

// ActorFunc extracts the caller identity recorded in audit entries.
type ActorFunc func(r *http.Request) string

// RegisterRoutes mounts the manifest, metrics, archive, evidence and file
// endpoints. baseDir is the directory record relative paths resolve against.
func RegisterRoutes(r chi.Router, svc *Service, baseDir string, actor ActorFunc) {
	if actor == nil {
		actor = func(*http.Request) string { return "anonymous" }
	}
	r.Get("/api/manifest", handleList(svc))
	r.Post("/api/manifest/rebuild", handleRebuild(svc, actor))
	r.Get("/api/manifest/{id}", handleGet(svc))
	r.Get("/api/metrics", handleMetrics(svc))
	r.Get("/api/archive", handleArchive(svc))
	r.Get("/api/archive/{year}", handleArchiveYear(svc))
	r.Get("/api/evidence", handleEvidence(svc))
	r.Get("/api/evidence/{id}", handleEvidenceItem(svc))
	r.Get("/api/files/{id}", handleFile(svc, baseDir, actor))
}

// parseQuery reads the manifest filters shared by the list and evidence
// endpoints.
func parseQuery(r *http.Request) (Query, error) {
	q := r.URL.Query()
	query := Query{
		PoliceStation: q.Get("ps"),
		Category:      q.Get("category"),
		Stage:         q.Get("stage"),
		PreviewType:   q.Get("preview"),
		Text:          q.Get("q"),
	}
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Query{}, fmt.Errorf("invalid year %q", v)
		}
		query.Year = n
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Limit = n
		}
	}
	return query, nil
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseQuery(r)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, svc.Index.Filter(query))
	}
}

func handleArchive(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Index.Archive())
	}
}

func handleArchiveYear(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		a, ok := svc.Index.ArchiveYear(year)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func handleEvidence(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseQuery(r)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		records := svc.Index.Filter(query)
		out := make([]Evidence, 0, len(records))
		for _, rec := range records {
			out = append(out, EvidenceOf(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleEvidenceItem(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := svc.Index.Lookup(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, EvidenceOf(rec))
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := svc.Index.Lookup(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleMetrics(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Index.Metrics())
	}
}

func handleRebuild(svc *Service, actor ActorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Rebuild(r.Context(), actor(r))
		if err != nil {
			svc.Logger.Error("manifest rebuild failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build manifest"})
			return
		}
		writeJSON(w, http.StatusOK, res.Metrics)
	}
}

func handleFile(svc *Service, baseDir string, actor ActorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := svc.Index.Lookup(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}

		path, err := ResolvePath(baseDir, rec)
		if err != nil {
			svc.Logger.Warn("refusing to serve file", zap.String("file_id", rec.FileID), zap.Error(err))
			http.Error(w, "File not found on disk", http.StatusNotFound)
			return
		}

		f, err := os.Open(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				svc.Logger.Error("opening file", zap.String("path", path), zap.Error(err))
			}
			http.Error(w, "File not found on disk", http.StatusNotFound)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.Error(w, "File not found on disk", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", classifier.ContentType(rec.Filename))
		w.Header().Set("Content-Disposition", contentDisposition(rec.Filename))

		if err := audit.Record(r.Context(), svc.Audit, audit.Entry{
			ActorType: audit.ActorUser,
			ActorID:   actor(r),
			Action:    audit.ActionFileServed,
			Scope:     audit.ScopeFile,
			ScopeID:   rec.FileID,
			Summary:   "Served " + rec.Filename,
		}); err != nil {
			svc.Logger.Warn("recording audit entry", zap.Error(err))
		}

		http.ServeContent(w, r, rec.Filename, info.ModTime(), f)
	}
}

// ErrOutsideBase is returned for records whose path escapes the base dir.
var ErrOutsideBase = errors.New("path escapes base directory")

// ResolvePath maps a record to its absolute path below baseDir.
func ResolvePath(baseDir string, rec Record) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base dir: %w", err)
	}
	path := filepath.Join(absBase, filepath.FromSlash(rec.RelativePath))
	rel, err := filepath.Rel(absBase, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%s: %w", rec.RelativePath, ErrOutsideBase)
	}
	return path, nil
}

// contentDisposition quotes plain ASCII names verbatim and falls back to the
// RFC 2231 encoding for anything else.
func contentDisposition(filename string) string {
	plain := true
	for _, c := range filename {
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			plain = false
			break
		}
	}
	if plain {
		return `inline; filename="` + filename + `"`
	}
	if v := mime.FormatMediaType("inline", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "inline"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
