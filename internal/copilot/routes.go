package copilot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UserFunc names the caller of a request.
type UserFunc func(r *http.Request) string

// RegisterRoutes mounts the copilot HTTP and WebSocket endpoints.
func RegisterRoutes(r chi.Router, svc *Service, user UserFunc) {
	if user == nil {
		user = func(*http.Request) string { return "anonymous" }
	}
	r.Post("/api/copilot", handleAsk(svc, user))
	r.Get("/api/copilot/sessions/{id}/messages", handleMessages(svc))
	r.Get("/ws/copilot", handleWebSocket(svc, user))
}

// Client-facing failure messages. Causes are logged, not returned.
const (
	errAskFailed     = "Failed to process copilot message"
	errHistoryFailed = "Failed to load chat history"
)

type askRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func handleAsk(svc *Service, user UserFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}

		reply, err := svc.Ask(r.Context(), req.SessionID, user(r), req.Message)
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			svc.Logger.Error("copilot ask failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errAskFailed})
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func handleMessages(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Store == nil {
			http.Error(w, "chat history is not enabled", http.StatusNotImplemented)
			return
		}
		id := chi.URLParam(r, "id")
		_, err := svc.Store.GetSession(r.Context(), id)
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			svc.Logger.Error("loading chat session", zap.String("session_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errHistoryFailed})
			return
		}
		messages, err := svc.Store.Messages(r.Context(), id)
		if err != nil {
			svc.Logger.Error("loading chat messages", zap.String("session_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errHistoryFailed})
			return
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "message"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string     `json:"type"` // "response" or "error"
	SessionID string     `json:"session_id,omitempty"`
	Content   string     `json:"content"`
	HTML      string     `json:"html,omitempty"`
	MapAction *MapAction `json:"mapAction,omitempty"`
}

func handleWebSocket(svc *Service, user UserFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			svc.Logger.Warn("copilot websocket upgrade", zap.Error(err))
			return
		}
		defer conn.Close()

		userID := user(r)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					svc.Logger.Warn("copilot websocket read", zap.Error(err))
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				send(svc, conn, wsResponse{Type: "error", Content: "invalid message format"})
				continue
			}
			if req.Type != "" && req.Type != "message" {
				send(svc, conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type})
				continue
			}
			if strings.TrimSpace(req.Content) == "" {
				send(svc, conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "content is required"})
				continue
			}

			reply, err := svc.Ask(r.Context(), req.SessionID, userID, req.Content)
			if errors.Is(err, ErrSessionNotFound) {
				send(svc, conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: err.Error()})
				continue
			}
			if err != nil {
				svc.Logger.Error("copilot ask failed", zap.Error(err))
				send(svc, conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: errAskFailed})
				continue
			}
			send(svc, conn, wsResponse{
				Type:      "response",
				SessionID: reply.SessionID,
				Content:   reply.Text,
				HTML:      reply.HTML,
				MapAction: reply.MapAction,
			})
		}
	}
}

func send(svc *Service, conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		svc.Logger.Warn("copilot websocket write", zap.Error(err))
	}
}
