// Package notes keeps the per-stage decision notes that record what the
// planners had, what they weighed and why they decided as they did.
package notes

import (
	"errors"
	"time"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// ErrNotFound is returned when no note exists for a stage.
var ErrNotFound = errors.New("decision note not found")

// Note is the decision record of one planning stage. There is at most one
// note per stage.
type Note struct {
	ID               string         `json:"id"`
	StageTag         taxonomy.Stage `json:"stageTag"`
	Title            string         `json:"title"`
	WhatWeHad        string         `json:"whatWeHad"`
	WhatWeConsidered string         `json:"whatWeConsidered"`
	WhyWeDecided     string         `json:"whyWeDecided"`
	AIGISAssistNote  string         `json:"aiGisAssistNote"`
	// EvidenceLinks holds manifest file ids cited by the note.
	EvidenceLinks []string  `json:"evidenceLinks"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
