// Package manifest builds, stores and serves the classified index of the
// planning document inbox.
package manifest

import (
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Output file names written next to each other in the data directory.
const (
	ManifestFile = "manifest.json"
	MetricsFile  = "metrics.json"
)

// Record is one classified file in the manifest.
type Record struct {
	FileID        string                `json:"file_id"`
	RelativePath  string                `json:"relative_path"`
	Filename      string                `json:"filename"`
	Year          int                   `json:"year"`
	PoliceStation taxonomy.Jurisdiction `json:"police_station"`
	Category      taxonomy.Category     `json:"category"`
	StageTag      taxonomy.Stage        `json:"stage_tag"`
	Tags          []string              `json:"tags"`
	PreviewType   taxonomy.PreviewType  `json:"preview_type"`
	SizeBytes     int64                 `json:"size_bytes"`
}

// Metrics aggregates record counts per classification value.
type Metrics struct {
	TotalFiles      int            `json:"totalFiles"`
	FilesByYear     map[int]int    `json:"filesByYear"`
	FilesByPS       map[string]int `json:"filesByPS"`
	FilesByCategory map[string]int `json:"filesByCategory"`
	FilesByStage    map[string]int `json:"filesByStage"`
}

// Result is the output of one indexer run.
type Result struct {
	Records []Record
	Metrics Metrics
}
