// Package copilot answers planning questions from a fixed rule table and
// tells the map view what to show.
package copilot

import (
	"errors"
	"time"
)

// ActionType names a map instruction.
type ActionType string

const (
	ActionFilter         ActionType = "FILTER"
	ActionHighlightZone  ActionType = "HIGHLIGHT_ZONE"
	ActionShowRoutesTime ActionType = "SHOW_ROUTES_TIME"
	ActionReset          ActionType = "RESET"
)

// MapAction is an instruction for the map view attached to a reply.
type MapAction struct {
	Type    ActionType     `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Response is the copilot's reply to one message.
type Response struct {
	Text      string     `json:"text"`
	HTML      string     `json:"html"`
	MapAction *MapAction `json:"mapAction"`
	// Rule names the rule that produced the reply; empty for the fallback.
	Rule string `json:"rule,omitempty"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is a persisted conversation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn of a session.
type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Seq       int        `json:"seq"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	MapAction *MapAction `json:"mapAction,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("chat session not found")
