package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Store persists decision notes.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Save creates or replaces the note for n.StageTag. The stored note keeps
// its original id and creation time.
func (s *Store) Save(ctx context.Context, n *Note) error {
	if n.StageTag.Number() == 0 {
		return fmt.Errorf("saving decision note: unknown stage %q", n.StageTag)
	}
	if n.Title == "" {
		n.Title = n.StageTag.Label()
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.EvidenceLinks == nil {
		n.EvidenceLinks = []string{}
	}
	links, err := json.Marshal(n.EvidenceLinks)
	if err != nil {
		return fmt.Errorf("encoding evidence links: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decision_notes (
			id, stage_tag, title, what_we_had, what_we_considered, why_we_decided,
			ai_gis_assist_note, evidence_links, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stage_tag) DO UPDATE SET
			title = excluded.title,
			what_we_had = excluded.what_we_had,
			what_we_considered = excluded.what_we_considered,
			why_we_decided = excluded.why_we_decided,
			ai_gis_assist_note = excluded.ai_gis_assist_note,
			evidence_links = excluded.evidence_links,
			updated_by = excluded.updated_by,
			updated_at = datetime('now')`,
		n.ID, string(n.StageTag), n.Title, n.WhatWeHad, n.WhatWeConsidered, n.WhyWeDecided,
		n.AIGISAssistNote, string(links), n.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("saving decision note: %w", err)
	}

	saved, err := s.Get(ctx, n.StageTag)
	if err != nil {
		return err
	}
	*n = *saved
	return nil
}

const noteColumns = `id, stage_tag, title, what_we_had, what_we_considered, why_we_decided,
	ai_gis_assist_note, evidence_links, updated_by, created_at, updated_at`

// Get returns the note for stage.
func (s *Store) Get(ctx context.Context, stage taxonomy.Stage) (*Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM decision_notes WHERE stage_tag = ?`, string(stage))
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting decision note: %w", err)
	}
	return n, nil
}

// List returns every note in stage order.
func (s *Store) List(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM decision_notes ORDER BY stage_tag`)
	if err != nil {
		return nil, fmt.Errorf("listing decision notes: %w", err)
	}
	defer rows.Close()

	out := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning decision note: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// Reset deletes every note.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM decision_notes`); err != nil {
		return fmt.Errorf("clearing decision notes: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*Note, error) {
	var (
		n            Note
		stage, links string
	)
	if err := row.Scan(&n.ID, &stage, &n.Title, &n.WhatWeHad, &n.WhatWeConsidered, &n.WhyWeDecided,
		&n.AIGISAssistNote, &links, &n.UpdatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.StageTag = taxonomy.Stage(stage)
	if err := json.Unmarshal([]byte(links), &n.EvidenceLinks); err != nil {
		return nil, fmt.Errorf("decoding evidence links of %s: %w", stage, err)
	}
	if n.EvidenceLinks == nil {
		n.EvidenceLinks = []string{}
	}
	return &n, nil
}
