package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibandobast/bandobast/internal/ai"
	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/auth"
	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/notes"
)

func newDeps(t *testing.T) (Deps, string) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	base := t.TempDir()
	inbox := filepath.Join(base, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "Adgaon Deployment Plan 2024.pdf"), []byte("%PDF-1.4"), 0644))

	auditStore := audit.NewStore(database)
	geoStore := geo.NewStore(database)
	_, err = geo.Seed(context.Background(), geoStore, geo.DemoData())
	require.NoError(t, err)

	svc, err := manifest.NewService(&manifest.Builder{Root: inbox, BaseDir: base}, filepath.Join(base, "data"), auditStore, nil)
	require.NoError(t, err)
	_, err = svc.Rebuild(context.Background(), "")
	require.NoError(t, err)

	noteStore := notes.NewStore(database)
	_, err = notes.Seed(context.Background(), noteStore, notes.DemoNotes())
	require.NoError(t, err)

	return Deps{
		DB:       database,
		Manifest: svc,
		Geo:      geoStore,
		Copilot:  copilot.NewService(copilot.NewStore(database), auditStore, nil),
		Notes:    noteStore,
		AI:       ai.NewAssistant(nil, svc.Index, "", nil),
		Audit:    auditStore,
		Tokens:   auth.NewStore(database),
	}, base
}

func serve(srv *Server, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	srv, err := New(Config{Port: 0}, Deps{DB: database})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := serve(srv, "GET", "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	database.Close()

	srv, err := New(Config{}, Deps{DB: database})
	require.NoError(t, err)

	w := serve(srv, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, w.Body.String())
}

func TestCORSHeaders(t *testing.T) {
	srv, err := New(Config{Port: 0, AllowAll: true}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestRequireAuthNeedsTokenStore(t *testing.T) {
	_, err := New(Config{RequireAuth: true}, Deps{})
	assert.Error(t, err)
}

func TestMountsFeatures(t *testing.T) {
	deps, base := newDeps(t)
	srv, err := New(Config{BaseDir: base, DocumentName: "Test Bandobast"}, deps)
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"GET", "/api/manifest", "", http.StatusOK},
		{"GET", "/api/metrics", "", http.StatusOK},
		{"GET", "/api/stations", "", http.StatusOK},
		{"GET", "/api/units?risk=HIGH", "", http.StatusOK},
		{"GET", "/api/ghats", "", http.StatusOK},
		{"GET", "/api/routes", "", http.StatusOK},
		{"GET", "/api/zones", "", http.StatusOK},
		{"GET", "/api/kml?groupBy=ps", "", http.StatusOK},
		{"GET", "/api/audit", "", http.StatusOK},
		{"POST", "/api/copilot", `{"message":"show high risk units"}`, http.StatusOK},
		{"GET", "/api/archive", "", http.StatusOK},
		{"GET", "/api/archive/2024", "", http.StatusOK},
		{"GET", "/api/evidence?year=2024", "", http.StatusOK},
		{"GET", "/api/decision-notes", "", http.StatusOK},
		{"GET", "/api/decision-notes/stage_3", "", http.StatusOK},
		{"PUT", "/api/decision-notes/3", `{"whyWeDecided":"Confirmed at the DCP review."}`, http.StatusOK},
		{"POST", "/api/ai/compare-years", `{"yearA":2023,"yearB":2024}`, http.StatusInternalServerError},
		{"GET", "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(srv, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestServesIndexedFile(t *testing.T) {
	deps, base := newDeps(t)
	srv, err := New(Config{BaseDir: base}, deps)
	require.NoError(t, err)

	records := deps.Manifest.Index.All()
	require.Len(t, records, 1)

	w := serve(srv, "GET", "/api/files/"+records[0].FileID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestAuthGate(t *testing.T) {
	deps, base := newDeps(t)
	srv, err := New(Config{BaseDir: base, RequireAuth: true}, deps)
	require.NoError(t, err)

	reader, _, err := deps.Tokens.Create(context.Background(), "dashboard", auth.ScopeRead, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(srv, "GET", "/api/manifest", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/api/manifest", "", reader).Code)
	assert.Equal(t, http.StatusForbidden, serve(srv, "POST", "/api/manifest/rebuild", "", reader).Code)

	// Audit entries carry the token name.
	w := serve(srv, "GET", "/api/kml", "", reader)
	require.Equal(t, http.StatusOK, w.Code)
	entries, err := deps.Audit.Query(context.Background(), audit.QueryFilter{Action: audit.ActionKMLExported})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token:dashboard", entries[0].ActorID)
}
