package notes

import (
	"context"
	"fmt"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// DemoNotes returns the Nashik Ganpati decision notes, one per stage.
func DemoNotes() []Note {
	return []Note{
		{
			StageTag:         taxonomy.Stage1,
			Title:            "Ground Inputs",
			WhatWeHad:        "Mandal lists, PS boundaries, past files, routes, ghat list.",
			WhatWeConsidered: "Completeness of data, potential duplicates, format consistency across police stations.",
			WhyWeDecided:     `Establishing an official-first register reduces disputes later and creates a verifiable base for all downstream planning. We prioritized ground verification to eliminate "ghost" mandals.`,
			AIGISAssistNote:  "AI tools assisted in standardizing mandal names and identifying duplicates across 10 years of records.",
		},
		{
			StageTag:         taxonomy.Stage2,
			Title:            "Risk Thinking",
			WhatWeHad:        "Crowd estimates, history notes of past incidents, and sensitivity flags (proximity to schools/hospitals).",
			WhatWeConsidered: "We applied a weighted scoring model (Crowd 30%, Route 20%, Sensitivity 15%, History 20%) to avoid single-factor bias.",
			WhyWeDecided:     "Tiering units into LOW, MEDIUM, and HIGH allows for defensible and fair deployment of limited resources. It removes subjectivity from security allocations.",
			AIGISAssistNote:  "Automated risk scoring identified 3 high-risk outliers that would have been missed by manual review.",
		},
		{
			StageTag:         taxonomy.Stage3,
			Title:            "GIS Mapping",
			WhatWeHad:        "Verified addresses, route paths, and ghat locations.",
			WhatWeConsidered: "Spatial accuracy, interoperability with field devices, and ability to share layers with municipal corporation.",
			WhyWeDecided:     "Visualizing data on maps reveals pinch points and overlaps that text lists hide. KML exports enable cross-team operational clarity.",
			AIGISAssistNote:  "GIS analysis automatically flagged 2 zones where route density exceeded safe evacuation limits.",
		},
		{
			StageTag:         taxonomy.Stage4,
			Title:            "Route & Time Planning",
			WhatWeHad:        "Alternative route options, junction lists, and requested timing windows.",
			WhatWeConsidered: "Chokepoints, concurrent route overlaps, and peak-time load on key arteries.",
			WhyWeDecided:     "We selected routes with the lowest conflict potential and implemented a staggered timing strategy to prevent gridlock at major junctions.",
			AIGISAssistNote:  "Route simulation predicted a 40% congestion reduction by shifting 3 major processions by 30 minutes.",
		},
		{
			StageTag:         taxonomy.Stage5,
			Title:            "Terminal/Ghat Planning",
			WhatWeHad:        "Ghat capacity estimates and historical access patterns.",
			WhatWeConsidered: "Entry/exit segregation needs, lighting adequacy, and safety resource availability (swimmers/boats).",
			WhyWeDecided:     "Concentrating resources at terminals deals with the highest convergence risk. Segregated lanes prevent stampedes during immersion peaks.",
			AIGISAssistNote:  "Capacity modeling suggested extending the holding area at Ramkund by 50 meters to handle peak flow.",
		},
		{
			StageTag:         taxonomy.Stage6,
			Title:            "Resource Planning",
			WhatWeHad:        "Risk tier list, identified chokepoints, and total available force strength.",
			WhatWeConsidered: "The need for static coverage at critical points versus mobile reserves for flexibility.",
			WhyWeDecided:     "A layered model (Static + Mobile + Reserve) ensures baseline security while retaining the ability to respond to dynamic incidents.",
			AIGISAssistNote:  "Optimization algorithms suggested a 15% shift of personnel from static duties to QRTs for better response times.",
		},
		{
			StageTag:         taxonomy.Stage7,
			Title:            "Outputs & Documentation",
			WhatWeHad:        "All approved plans from previous layers.",
			WhatWeConsidered: "Traceability of decisions and speed of retrieval during the event.",
			WhyWeDecided:     "Comprehensive documentation (Annexures, Duty Charts, KMLs) reduces confusion on the ground and ensures full legal compliance.",
			AIGISAssistNote:  "Automated report generation compiled 200+ pages of annexures in minutes, ensuring zero clerical errors.",
		},
	}
}

// Seed replaces every note in the store with data and returns how many
// were written.
func Seed(ctx context.Context, store *Store, data []Note) (int, error) {
	if err := store.Reset(ctx); err != nil {
		return 0, err
	}
	for i := range data {
		n := data[i]
		n.UpdatedBy = "seed"
		if err := store.Save(ctx, &n); err != nil {
			return i, fmt.Errorf("seeding note %s: %w", n.StageTag, err)
		}
	}
	return len(data), nil
}
