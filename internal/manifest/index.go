package manifest

import (
	"strings"
	"sync"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Index is the in-memory, concurrency-safe view of the current manifest.
// Readers never observe a half-replaced manifest.
type Index struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int
	metrics Metrics
}

// NewIndex returns an index over records.
func NewIndex(records []Record) *Index {
	idx := &Index{}
	idx.Replace(records)
	return idx
}

// Replace swaps in a new manifest and recomputes its metrics.
func (idx *Index) Replace(records []Record) {
	if records == nil {
		records = []Record{}
	}
	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[r.FileID] = i
	}
	metrics := ComputeMetrics(records)

	idx.mu.Lock()
	idx.records = records
	idx.byID = byID
	idx.metrics = metrics
	idx.mu.Unlock()
}

// Lookup returns the record with the given file id.
func (idx *Index) Lookup(id string) (Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	i, ok := idx.byID[id]
	if !ok {
		return Record{}, false
	}
	return idx.records[i], true
}

// All returns a copy of every record in manifest order.
func (idx *Index) All() []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Record, len(idx.records))
	copy(out, idx.records)
	return out
}

// Len returns the number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Metrics returns the metrics of the current manifest.
func (idx *Index) Metrics() Metrics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.metrics
}

// Query selects records. Zero-valued fields match everything.
type Query struct {
	Year          int
	PoliceStation string
	Category      string
	Stage         string
	PreviewType   string
	// Text matches case-insensitively against filename and relative path.
	Text  string
	Limit int
}

// Filter returns the records matching q in manifest order.
func (idx *Index) Filter(q Query) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var ps taxonomy.Jurisdiction
	if q.PoliceStation != "" {
		ps = taxonomy.ParseJurisdiction(q.PoliceStation)
	}
	stage := taxonomy.Stage(strings.TrimSpace(q.Stage))
	if parsed, err := taxonomy.ParseStage(q.Stage); err == nil {
		stage = parsed
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := []Record{}
	for _, r := range idx.records {
		if q.Year != 0 && r.Year != q.Year {
			continue
		}
		if q.PoliceStation != "" && r.PoliceStation != ps {
			continue
		}
		if q.Category != "" && !strings.EqualFold(string(r.Category), q.Category) {
			continue
		}
		if stage != "" && r.StageTag != stage {
			continue
		}
		if q.PreviewType != "" && !strings.EqualFold(string(r.PreviewType), q.PreviewType) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(r.Filename), text) &&
			!strings.Contains(strings.ToLower(r.RelativePath), text) {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
