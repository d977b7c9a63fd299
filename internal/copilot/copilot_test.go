package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/db"
)

func TestRespondRules(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		msg        string
		wantRule   string
		wantAction ActionType
	}{
		{"Show HIGH RISK units in Adgaon", "high-risk-adgaon", ActionFilter},
		{"highlight 1km around Bhadrakali", "bhadrakali-radius", ActionHighlightZone},
		{"compare 2022 and 2024", "compare-years", ""},
		{"which routes run at 6pm?", "evening-routes", ActionShowRoutesTime},
		{"Routes after 18:00", "evening-routes", ActionShowRoutesTime},
		{"clear the map", "reset", ActionReset},
		{"reset high risk filter", "reset", ActionReset},
		{"show high risk units", "high-risk", ActionFilter},
		{"hello", "", ""},
		{"route at noon", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			resp := r.Respond(tt.msg)
			assert.Equal(t, tt.wantRule, resp.Rule)
			if tt.wantAction == "" {
				assert.Nil(t, resp.MapAction)
				return
			}
			require.NotNil(t, resp.MapAction)
			assert.Equal(t, tt.wantAction, resp.MapAction.Type)
		})
	}
}

func TestRespondPayloads(t *testing.T) {
	r := NewResponder()

	filter := r.Respond("high risk adgaon").MapAction
	assert.Equal(t, map[string]any{"riskTier": "HIGH", "psName": "Adgaon"}, filter.Payload)

	zone := r.Respond("bhadrakali 1km").MapAction
	assert.Equal(t, 19.9975, zone.Payload["lat"])
	assert.Equal(t, 73.7898, zone.Payload["lng"])
	assert.Equal(t, 1000, zone.Payload["radius"])
	assert.Equal(t, "Bhadrakali Safety Zone", zone.Payload["label"])

	routes := r.Respond("route 6pm").MapAction
	assert.Equal(t, true, routes.Payload["highlightOverlap"])

	reset := r.Respond("reset").MapAction
	data, err := json.Marshal(reset)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"RESET","payload":{}}`, string(data))
}

func TestRespondActionsAreFresh(t *testing.T) {
	r := NewResponder()
	a := r.Respond("high risk").MapAction
	a.Payload["riskTier"] = "LOW"
	assert.Equal(t, "HIGH", r.Respond("high risk").MapAction.Payload["riskTier"])
}

func TestRespondDefaultAndHTML(t *testing.T) {
	r := NewResponder()

	def := r.Respond("what is this?")
	assert.Equal(t, DefaultReply, def.Text)
	assert.Contains(t, def.HTML, "<p>")

	resp := r.Respond("compare 2022 vs 2024")
	assert.Contains(t, resp.HTML, "<strong>2022 vs 2024</strong>")
	assert.Contains(t, resp.HTML, "<li>")
}

func TestCustomRules(t *testing.T) {
	r := NewResponder(Rule{Name: "ping", Match: containsAll("ping"), Text: "pong"})
	assert.Equal(t, "pong", r.Respond("PING").Text)
	assert.Equal(t, DefaultReply, r.Respond("high risk").Text)
}

// --- store and service ---

func setupService(t *testing.T) (*Service, *audit.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	auditStore := audit.NewStore(database)
	return NewService(NewStore(database), auditStore, nil), auditStore
}

func TestAskRecordsConversation(t *testing.T) {
	svc, auditStore := setupService(t)
	ctx := context.Background()

	first, err := svc.Ask(ctx, "", "inspector", "show high risk units")
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)

	second, err := svc.Ask(ctx, first.SessionID, "inspector", "reset")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	msgs, err := svc.Store.Messages(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, m := range msgs {
		assert.Equal(t, i+1, m.Seq)
	}
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	require.NotNil(t, msgs[1].MapAction)
	assert.Equal(t, ActionFilter, msgs[1].MapAction.Type)
	assert.Nil(t, msgs[0].MapAction)

	entries, err := auditStore.Query(ctx, audit.QueryFilter{Action: audit.ActionCopilotQueried})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAskUnknownSession(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Ask(context.Background(), "missing", "x", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAskWithoutStore(t *testing.T) {
	svc := NewService(nil, nil, nil)
	reply, err := svc.Ask(context.Background(), "", "", "high risk")
	require.NoError(t, err)
	assert.Empty(t, reply.SessionID)
	assert.Equal(t, "high-risk", reply.Rule)

	_, err = svc.Ask(context.Background(), "", "", "")
	assert.Error(t, err)
}

// --- HTTP and WebSocket ---

func setupRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _ := setupService(t)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, nil)
	return r, svc
}

func TestHTTPAsk(t *testing.T) {
	r, _ := setupRouter(t)

	body := bytes.NewBufferString(`{"message":"highlight bhadrakali 1km"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/copilot", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reply))
	assert.NotEmpty(t, reply.SessionID)
	require.NotNil(t, reply.MapAction)
	assert.Equal(t, ActionHighlightZone, reply.MapAction.Type)

	req = httptest.NewRequest(http.MethodGet, "/api/copilot/sessions/"+reply.SessionID+"/messages", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msgs))
	assert.Len(t, msgs, 2)
}

func TestHTTPAskValidation(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"message":"   "}`, http.StatusBadRequest},
		{`{"message":"hi","session_id":"nope"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/copilot", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "body %s", tt.body)
	}
}

func TestHTTPStoreFailureHidesCause(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	svc := NewService(NewStore(database), nil, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, nil)
	require.NoError(t, database.Close())

	tests := []struct {
		method, target, body, want string
	}{
		{http.MethodPost, "/api/copilot", `{"message":"high risk"}`, errAskFailed},
		{http.MethodGet, "/api/copilot/sessions/abc/messages", "", errHistoryFailed},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code, tt.target)
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, tt.want, body["error"])
		assert.NotContains(t, body["error"], "sql")
	}
}

func TestWebSocketConversation(t *testing.T) {
	r, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/copilot"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "message", Content: "routes at 18:00"}))
	var resp wsResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "response", resp.Type)
	assert.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.MapAction)
	assert.Equal(t, ActionShowRoutesTime, resp.MapAction.Type)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "message", SessionID: resp.SessionID}))
	var errResp wsResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "error", errResp.Type)
	assert.Equal(t, "content is required", errResp.Content)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{bad")))
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "invalid message format", errResp.Content)
}
