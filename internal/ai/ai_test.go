package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// fakeOpenAI serves /v1/chat/completions and records the requests it saw.
type fakeOpenAI struct {
	mu       sync.Mutex
	requests []chatRequest
	reply    string
	status   int
}

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply, status := f.reply, f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded: table users", "type": "server_error"},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": reply},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
	})
}

func (f *fakeOpenAI) last(t *testing.T) chatRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeOpenAI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func sampleIndex() *manifest.Index {
	return manifest.NewIndex([]manifest.Record{
		{FileID: "risk23", Filename: "Panchavati Risk Assessment 2023.docx", Year: 2023, PoliceStation: taxonomy.Panchavati, Category: taxonomy.CategoryDataAnalysis, StageTag: taxonomy.Stage2},
		{FileID: "pack24", Filename: "PS Pack Final Report 2024.pdf", Year: 2024, PoliceStation: taxonomy.Adgaon, Category: taxonomy.CategoryPSPack, StageTag: taxonomy.Stage7},
		{FileID: "kml24", Filename: "ghats 2024.kml", Year: 2024, Category: taxonomy.CategoryKML, StageTag: taxonomy.Stage5},
	})
}

type fixture struct {
	fake   *fakeOpenAI
	router chi.Router
	audit  *audit.Store
}

func setup(t *testing.T, reply string) fixture {
	t.Helper()
	fake := &fakeOpenAI{reply: reply}
	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	auditStore := audit.NewStore(database)

	provider, err := NewProvider(Settings{APIKey: "sk-test", BaseURL: upstream.URL + "/v1"})
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, NewAssistant(provider, sampleIndex(), "", nil), RouteConfig{
		Audit: auditStore,
		Actor: func(*http.Request) string { return "token:dcp" },
	})
	return fixture{fake: fake, router: r, audit: auditStore}
}

func (f fixture) post(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestSummarizeEvidence(t *testing.T) {
	f := setup(t, "This risk assessment ranks Panchavati mandals.")

	rec := f.post(t, "/api/ai/summarize-evidence", `{"fileId":"risk23"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "This risk assessment ranks Panchavati mandals.", body["summary"])
	assert.Equal(t, SummaryDisclaimer, body["disclaimer"])
	assert.Equal(t, "risk23", body["fileId"])

	req := f.fake.last(t)
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, 500, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Title: Panchavati Risk Assessment 2023.docx")
	assert.Contains(t, req.Messages[1].Content, "Stage: STAGE_2 (Risk Thinking)")

	entries, err := f.audit.Query(context.Background(), audit.QueryFilter{Action: audit.ActionAIDrafted})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "summarize-evidence:risk23", entries[0].ScopeID)
	assert.Equal(t, "token:dcp", entries[0].ActorID)
}

func TestSummarizeEvidenceValidation(t *testing.T) {
	f := setup(t, "unused")

	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/ai/summarize-evidence", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/ai/summarize-evidence", `not json`).Code)

	rec := f.post(t, "/api/ai/summarize-evidence", `{"fileId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Evidence file not found", decode(t, rec)["error"])
	assert.Zero(t, f.fake.count(), "no completion for rejected requests")
}

const stageNoteReply = `Here is the draft.

1. **WHAT WE HAD:** Ghat capacity estimates.
Historical access patterns.
2. WHAT WE CONSIDERED: Entry and exit segregation.
3. WHY WE DECIDED:
Segregated lanes prevent crowding at peaks.
4. AI/GIS ASSISTANCE: Capacity modelling assisted officers.`

func TestGenerateStageNote(t *testing.T) {
	f := setup(t, stageNoteReply)

	rec := f.post(t, "/api/ai/generate-stage-note", `{"stage":"5","fileIds":["kml24"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Success       bool      `json:"success"`
		Stage         string    `json:"stage"`
		StageLabel    string    `json:"stageLabel"`
		Draft         NoteDraft `json:"draft"`
		EvidenceLinks []string  `json:"evidenceLinks"`
		Disclaimer    string    `json:"disclaimer"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "STAGE_5", out.Stage)
	assert.Equal(t, "Terminal/Ghat Planning", out.StageLabel)
	assert.Equal(t, NoteDraft{
		WhatWeHad:        "Ghat capacity estimates. Historical access patterns.",
		WhatWeConsidered: "Entry and exit segregation.",
		WhyWeDecided:     "Segregated lanes prevent crowding at peaks.",
		AIGISAssistNote:  "Capacity modelling assisted officers.",
	}, out.Draft)
	assert.Equal(t, []string{"kml24"}, out.EvidenceLinks)
	assert.Equal(t, StageNoteDisclaimer, out.Disclaimer)

	prompt := f.fake.last(t).Messages[1].Content
	assert.Contains(t, prompt, "Stage: Terminal/Ghat Planning (STAGE_5)")
	assert.Contains(t, prompt, "- ghats 2024.kml (KML)")
	assert.Equal(t, 800, f.fake.last(t).MaxTokens)
}

func TestGenerateStageNoteValidation(t *testing.T) {
	f := setup(t, stageNoteReply)

	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/ai/generate-stage-note", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/ai/generate-stage-note", `{"stage":"STAGE_9"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.post(t, "/api/ai/generate-stage-note", `{"stage":"1","fileIds":["missing"]}`).Code)
	assert.Zero(t, f.fake.count())

	// File ids are optional.
	assert.Equal(t, http.StatusOK, f.post(t, "/api/ai/generate-stage-note", `{"stage":"stage_1"}`).Code)
}

func TestCompareYears(t *testing.T) {
	f := setup(t, "2024 indexed more documents than 2023.")

	rec := f.post(t, "/api/ai/compare-years", `{"yearA":2023,"yearB":2024}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(2023), body["yearA"])
	assert.Equal(t, float64(2024), body["yearB"])
	assert.Equal(t, "2024 indexed more documents than 2023.", body["comparison"])
	assert.Equal(t, ComparisonDisclaimer, body["disclaimer"])

	prompt := f.fake.last(t).Messages[1].Content
	assert.Contains(t, prompt, "Year 2023 (Ganpati Utsav 2023):\n- Documents indexed: 1")
	assert.Contains(t, prompt, "Year 2024 (Ganpati Utsav 2024):\n- Documents indexed: 2")
	assert.Contains(t, prompt, "- Documents by planning stage: STAGE_5 1, STAGE_7 1")
}

func TestCompareYearsValidation(t *testing.T) {
	f := setup(t, "unused")

	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/ai/compare-years", `{"yearA":2023}`).Code)
	rec := f.post(t, "/api/ai/compare-years", `{"yearA":2023,"yearB":1990}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, f.fake.count())
}

func TestNotConfigured(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewAssistant(nil, sampleIndex(), "", nil), RouteConfig{})

	for _, target := range []string{"/api/ai/summarize-evidence", "/api/ai/generate-stage-note", "/api/ai/compare-years"} {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "API key not configured", target)
	}
}

func TestUpstreamFailureHidesCause(t *testing.T) {
	f := setup(t, "")
	f.fake.status = http.StatusInternalServerError

	rec := f.post(t, "/api/ai/summarize-evidence", `{"fileId":"pack24"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	raw := rec.Body.String()
	assert.NotContains(t, raw, "upstream exploded")
	assert.Contains(t, raw, "Failed to generate summary")
}

func TestParseNoteDraftIgnoresPreamble(t *testing.T) {
	d := ParseNoteDraft("Sure!\nWHY WE DECIDED - staggered timings\n")
	assert.Equal(t, NoteDraft{WhyWeDecided: "- staggered timings"}, d)
	assert.Equal(t, NoteDraft{}, ParseNoteDraft("no headings at all"))
}

func TestFactory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewProvider(Settings{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	t.Setenv("OPENAI_API_KEY", "sk-env")
	p, err := NewProvider(Settings{})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(Settings{Provider: "ollama", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProvider(Settings{APIKey: "sk", RequestsPerMinute: 30})
	require.NoError(t, err)
	assert.IsType(t, &RateLimitedProvider{}, p)

	_, err = NewProvider(Settings{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

// stubProvider returns a fixed response.
type stubProvider struct{ err error }

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Complete(context.Context, CompletionRequest) (*CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Content: "ok"}, nil
}

func TestRateLimiterBlocksUntilContextDone(t *testing.T) {
	rl := NewRateLimitedProvider(stubProvider{}, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := rl.Complete(ctx, CompletionRequest{})
	require.NoError(t, err)
	_, err = rl.Complete(ctx, CompletionRequest{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
