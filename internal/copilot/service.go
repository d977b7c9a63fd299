package copilot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
)

// Service answers messages and, when a Store is configured, keeps the
// conversation history.
type Service struct {
	Responder *Responder
	Store     *Store
	Audit     *audit.Store
	Logger    *zap.Logger
}

// NewService wires a Service. store and auditStore may be nil.
func NewService(store *Store, auditStore *audit.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Responder: NewResponder(),
		Store:     store,
		Audit:     auditStore,
		Logger:    logger,
	}
}

// Reply is a Response bound to the session it was recorded in.
type Reply struct {
	SessionID string `json:"session_id,omitempty"`
	Response
}

// Ask answers message in sessionID, creating a session for userID when
// sessionID is empty.
func (s *Service) Ask(ctx context.Context, sessionID, userID, message string) (*Reply, error) {
	if message == "" {
		return nil, errors.New("message is required")
	}
	if userID == "" {
		userID = "anonymous"
	}

	if s.Store != nil {
		if sessionID == "" {
			sess, err := s.Store.CreateSession(ctx, userID)
			if err != nil {
				return nil, err
			}
			sessionID = sess.ID
		} else if _, err := s.Store.GetSession(ctx, sessionID); err != nil {
			return nil, err
		}
		if _, err := s.Store.AddMessage(ctx, Message{SessionID: sessionID, Role: RoleUser, Content: message}); err != nil {
			return nil, err
		}
	}

	resp := s.Responder.Respond(message)

	if s.Store != nil {
		if _, err := s.Store.AddMessage(ctx, Message{
			SessionID: sessionID,
			Role:      RoleAssistant,
			Content:   resp.Text,
			MapAction: resp.MapAction,
		}); err != nil {
			return nil, err
		}
	}

	rule := resp.Rule
	if rule == "" {
		rule = "default"
	}
	s.Logger.Debug("copilot answered", zap.String("session_id", sessionID), zap.String("rule", rule))
	if err := audit.Record(ctx, s.Audit, audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   userID,
		Action:    audit.ActionCopilotQueried,
		Scope:     audit.ScopeCopilot,
		ScopeID:   sessionID,
		Summary:   fmt.Sprintf("Answered with rule %s", rule),
	}); err != nil {
		s.Logger.Warn("recording audit entry", zap.Error(err))
	}

	return &Reply{SessionID: sessionID, Response: resp}, nil
}
