package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Lookup errors. Handlers map them to 404.
var (
	ErrEvidenceNotFound = errors.New("evidence file not found")
	ErrYearNotArchived  = errors.New("archive data not available for one or both years")
)

// Disclaimers returned with every draft.
const (
	SummaryDisclaimer    = "This summary is AI-generated for assistive purposes only. All decisions are made by authorized officers."
	StageNoteDisclaimer  = "This is an AI-generated draft for review. All content must be verified and approved by authorized officers."
	ComparisonDisclaimer = "This comparison is AI-generated for assistive purposes only. All conclusions and decisions are made by authorized officers."
)

const portalPreamble = "You are an AI assistant helping with administrative documentation for a government bandobast (security arrangement) portal."

// Assistant drafts text from the manifest with a Provider. A nil Provider
// makes every draft fail with ErrNotConfigured.
type Assistant struct {
	Provider Provider
	Index    *manifest.Index
	Model    string
	Logger   *zap.Logger
}

// NewAssistant wires an Assistant. provider may be nil.
func NewAssistant(provider Provider, index *manifest.Index, model string, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{Provider: provider, Index: index, Model: model, Logger: logger}
}

func (a *Assistant) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if a.Provider == nil {
		return "", ErrNotConfigured
	}
	resp, err := a.Provider.Complete(ctx, CompletionRequest{
		Model: a.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	a.Logger.Debug("ai completion",
		zap.String("provider", a.Provider.Name()),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)
	return resp.Content, nil
}

func (a *Assistant) evidence(id string) (manifest.Evidence, error) {
	if a.Index == nil {
		return manifest.Evidence{}, fmt.Errorf("%s: %w", id, ErrEvidenceNotFound)
	}
	rec, ok := a.Index.Lookup(id)
	if !ok {
		return manifest.Evidence{}, fmt.Errorf("%s: %w", id, ErrEvidenceNotFound)
	}
	return manifest.EvidenceOf(rec), nil
}

// Summary is a drafted evidence summary.
type Summary struct {
	FileID     string `json:"fileId"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Disclaimer string `json:"disclaimer"`
}

// SummarizeEvidence drafts a review summary of one indexed file.
func (a *Assistant) SummarizeEvidence(ctx context.Context, fileID string) (*Summary, error) {
	ev, err := a.evidence(fileID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`%s

Please summarize the following evidence document for administrative review:

Title: %s
Category: %s
Stage: %s (%s)
Police Station: %s
Year: %d
Description: %s

Generate a concise summary (2-3 paragraphs) that:
1. Explains what this document contains
2. Identifies key information relevant for bandobast planning
3. Notes any action items or follow-ups if applicable

Important: This summary is for assistive purposes only. All final decisions are made by authorized officers.`,
		portalPreamble, ev.Title, ev.Category, ev.StageTag, ev.StageLabel, ev.PoliceStation, ev.Year, ev.Description)

	text, err := a.complete(ctx,
		"You are an administrative assistant helping document bandobast planning. Provide clear, professional summaries suitable for government documentation.",
		prompt, 500)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = "Unable to generate summary"
	}
	return &Summary{FileID: ev.ID, Title: ev.Title, Summary: text, Disclaimer: SummaryDisclaimer}, nil
}

// NoteDraft holds the sections of a drafted decision note. The JSON names
// match the decision note endpoints so a reviewed draft can be saved as is.
type NoteDraft struct {
	WhatWeHad        string `json:"whatWeHad"`
	WhatWeConsidered string `json:"whatWeConsidered"`
	WhyWeDecided     string `json:"whyWeDecided"`
	AIGISAssistNote  string `json:"aiGisAssistNote"`
}

// StageNote is a drafted decision note for one stage.
type StageNote struct {
	Stage         taxonomy.Stage `json:"stage"`
	StageLabel    string         `json:"stageLabel"`
	Draft         NoteDraft      `json:"draft"`
	EvidenceLinks []string       `json:"evidenceLinks"`
	Disclaimer    string         `json:"disclaimer"`
}

// GenerateStageNote drafts the decision note of stage, citing the given
// indexed files. Every file id must exist in the manifest.
func (a *Assistant) GenerateStageNote(ctx context.Context, stage taxonomy.Stage, fileIDs []string) (*StageNote, error) {
	var lines []string
	for _, id := range fileIDs {
		ev, err := a.evidence(id)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", ev.Title, ev.Category, ev.Description))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nGenerate a draft decision note for the following planning stage:\n\n", portalPreamble)
	fmt.Fprintf(&b, "Stage: %s (%s)\n\n", stage.Label(), stage)
	if len(lines) > 0 {
		fmt.Fprintf(&b, "Related Evidence:\n%s\n\n", strings.Join(lines, "\n"))
	}
	b.WriteString(`Generate a structured decision note with the following sections:
1. WHAT WE HAD: Describe the inputs and data available at this stage
2. WHAT WE CONSIDERED: List the factors and considerations evaluated
3. WHY WE DECIDED: Explain the rationale for decisions made at this stage
4. AI/GIS ASSISTANCE: Brief note on how AI and GIS tools assisted (remember: assistive only, all decisions by officers)

Keep each section to 2-3 sentences. Be professional and suitable for government documentation.`)

	text, err := a.complete(ctx,
		"You are an administrative assistant helping document bandobast planning. Provide clear, professional content suitable for government documentation. Always emphasize that AI provides assistance only - all decisions are made by authorized officers.",
		b.String(), 800)
	if err != nil {
		return nil, err
	}

	links := fileIDs
	if links == nil {
		links = []string{}
	}
	return &StageNote{
		Stage:         stage,
		StageLabel:    stage.Label(),
		Draft:         ParseNoteDraft(text),
		EvidenceLinks: links,
		Disclaimer:    StageNoteDisclaimer,
	}, nil
}

// ParseNoteDraft splits a completion into the four note sections. A line
// naming a section heading starts that section; any text on the heading line
// after the heading is kept. Text before the first heading is dropped.
func ParseNoteDraft(text string) NoteDraft {
	headings := []struct {
		marker string
		field  func(*NoteDraft) *string
	}{
		{"WHAT WE HAD", func(d *NoteDraft) *string { return &d.WhatWeHad }},
		{"WHAT WE CONSIDERED", func(d *NoteDraft) *string { return &d.WhatWeConsidered }},
		{"WHY WE DECIDED", func(d *NoteDraft) *string { return &d.WhyWeDecided }},
		{"AI/GIS ASSISTANCE", func(d *NoteDraft) *string { return &d.AIGISAssistNote }},
	}

	var (
		d       NoteDraft
		current *string
	)
	for _, line := range strings.Split(text, "\n") {
		for _, h := range headings {
			if i := strings.Index(line, h.marker); i >= 0 {
				current = h.field(&d)
				line = strings.TrimLeft(line[i+len(h.marker):], ":*# ")
				break
			}
		}
		if current == nil {
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			if *current != "" {
				*current += " "
			}
			*current += line
		}
	}
	return d
}

// Comparison is a drafted narrative comparing two archive years.
type Comparison struct {
	YearA      int    `json:"yearA"`
	YearB      int    `json:"yearB"`
	Comparison string `json:"comparison"`
	Disclaimer string `json:"disclaimer"`
}

// CompareYears drafts a comparison of two seasons from the archive rollup.
func (a *Assistant) CompareYears(ctx context.Context, yearA, yearB int) (*Comparison, error) {
	if a.Index == nil {
		return nil, ErrYearNotArchived
	}
	dataA, okA := a.Index.ArchiveYear(yearA)
	dataB, okB := a.Index.ArchiveYear(yearB)
	if !okA || !okB {
		return nil, ErrYearNotArchived
	}

	prompt := fmt.Sprintf(`%s

Compare the following two years of bandobast planning data and generate a narrative comparison:

%s
%s
Generate a 2-3 paragraph narrative comparison that:
1. Highlights key differences between the two years
2. Notes trends (improvements or areas of concern)
3. Provides insights for future planning

Keep the tone professional and suitable for government documentation.`,
		portalPreamble, describeYear(dataA), describeYear(dataB))

	text, err := a.complete(ctx,
		"You are an administrative assistant helping with bandobast planning analysis. Provide clear, factual comparisons suitable for government documentation.",
		prompt, 600)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = "Unable to generate comparison"
	}
	return &Comparison{YearA: yearA, YearB: yearB, Comparison: text, Disclaimer: ComparisonDisclaimer}, nil
}

func describeYear(y manifest.ArchiveYear) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Year %d (%s):\n", y.Year, y.EventName)
	fmt.Fprintf(&b, "- Documents indexed: %d\n", y.TotalFiles)
	writeCounts(&b, "Documents by police station", y.FilesByPS)
	writeCounts(&b, "Documents by category", y.FilesByCategory)
	writeCounts(&b, "Documents by planning stage", y.FilesByStage)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	fmt.Fprintf(b, "- %s: %s\n", title, strings.Join(parts, ", "))
}
