// Package audit records who did what to the portal's data.
package audit

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("audit entry not found")

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Action describes what was done.
type Action string

const (
	ActionManifestBuilt  Action = "manifest_built"
	ActionKMLExported    Action = "kml_exported"
	ActionFileServed     Action = "file_served"
	ActionCopilotQueried Action = "copilot_queried"
	ActionDataSeeded     Action = "data_seeded"
	ActionTokenCreated   Action = "token_created"
	ActionNoteSaved      Action = "decision_note_saved"
	ActionAIDrafted      Action = "ai_drafted"
)

var knownActions = map[Action]bool{
	ActionManifestBuilt:  true,
	ActionKMLExported:    true,
	ActionFileServed:     true,
	ActionCopilotQueried: true,
	ActionDataSeeded:     true,
	ActionTokenCreated:   true,
	ActionNoteSaved:      true,
	ActionAIDrafted:      true,
}

// Valid reports whether a is a recorded action.
func (a Action) Valid() bool { return knownActions[a] }

// Scope names the kind of object an action touched.
type Scope string

const (
	ScopeManifest Scope = "manifest"
	ScopeGeo      Scope = "geo"
	ScopeFile     Scope = "file"
	ScopeCopilot  Scope = "copilot"
	ScopeAuth     Scope = "auth"
	ScopeNotes    Scope = "decision_note"
	ScopeAI       Scope = "ai"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeManifest, ScopeGeo, ScopeFile, ScopeCopilot, ScopeAuth, ScopeNotes, ScopeAI:
		return true
	}
	return false
}

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorType ActorType `json:"actor_type"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Scope     Scope     `json:"scope"`
	ScopeID   string    `json:"scope_id,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
