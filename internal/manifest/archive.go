package manifest

import (
	"fmt"
	"net/url"

	"github.com/aibandobast/bandobast/internal/classifier"
	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// Festival seasons covered by the archive view.
const (
	ArchiveFirstYear = 2015
	ArchiveLastYear  = 2025
)

// archiveDocLimit caps the document links listed per year.
const archiveDocLimit = 8

// ArchiveDocument links one indexed file from an archive year.
type ArchiveDocument struct {
	FileID string `json:"file_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// ArchiveYear rolls up the indexed documents of one festival season.
type ArchiveYear struct {
	Year            int               `json:"year"`
	EventName       string            `json:"eventName"`
	TotalFiles      int               `json:"totalFiles"`
	FilesByPS       map[string]int    `json:"filesByPS"`
	FilesByCategory map[string]int    `json:"filesByCategory"`
	FilesByStage    map[string]int    `json:"filesByStage"`
	Notes           string            `json:"notes"`
	Documents       []ArchiveDocument `json:"documents"`
}

// FileURL is the portal path serving the file with the given id.
func FileURL(id string) string {
	return "/api/files/" + url.PathEscape(id)
}

// BuildArchive returns one entry per season from ArchiveFirstYear to
// ArchiveLastYear in ascending order. Seasons with no files are present with
// zero counts. Records outside the range are ignored.
func BuildArchive(records []Record) []ArchiveYear {
	years := make([]ArchiveYear, 0, ArchiveLastYear-ArchiveFirstYear+1)
	for y := ArchiveFirstYear; y <= ArchiveLastYear; y++ {
		years = append(years, ArchiveYear{
			Year:            y,
			EventName:       fmt.Sprintf("Ganpati Utsav %d", y),
			FilesByPS:       map[string]int{},
			FilesByCategory: map[string]int{},
			FilesByStage:    map[string]int{},
			Documents:       []ArchiveDocument{},
		})
	}
	for _, r := range records {
		if r.Year < ArchiveFirstYear || r.Year > ArchiveLastYear {
			continue
		}
		a := &years[r.Year-ArchiveFirstYear]
		a.TotalFiles++
		a.FilesByPS[r.PoliceStation.String()]++
		a.FilesByCategory[string(r.Category)]++
		a.FilesByStage[string(r.StageTag)]++
		if len(a.Documents) < archiveDocLimit {
			a.Documents = append(a.Documents, ArchiveDocument{FileID: r.FileID, Title: r.Filename, URL: FileURL(r.FileID)})
		}
	}
	for i := range years {
		years[i].Notes = fmt.Sprintf("Historical data extracted from %d files.", years[i].TotalFiles)
	}
	return years
}

// Archive returns the season rollup of the current manifest.
func (idx *Index) Archive() []ArchiveYear {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return BuildArchive(idx.records)
}

// ArchiveYear returns the rollup for one season. ok is false for years
// outside the archive range.
func (idx *Index) ArchiveYear(year int) (ArchiveYear, bool) {
	if year < ArchiveFirstYear || year > ArchiveLastYear {
		return ArchiveYear{}, false
	}
	return idx.Archive()[year-ArchiveFirstYear], true
}

// Evidence presents a record as a citable planning document.
type Evidence struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      taxonomy.Category `json:"category"`
	StageTag      taxonomy.Stage    `json:"stageTag"`
	StageLabel    string            `json:"stageLabel"`
	FileURL       string            `json:"fileUrl"`
	FileType      string            `json:"fileType"`
	Tags          []string          `json:"tags"`
	Year          int               `json:"year"`
	PoliceStation string            `json:"policeStation"`
}

// EvidenceOf maps r to its evidence view.
func EvidenceOf(r Record) Evidence {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	desc := "Historical data for " + r.PoliceStation.String()
	if r.Year != 0 {
		desc += fmt.Sprintf(" (%d)", r.Year)
	}
	return Evidence{
		ID:            r.FileID,
		Title:         r.Filename,
		Description:   desc,
		Category:      r.Category,
		StageTag:      r.StageTag,
		StageLabel:    r.StageTag.Label(),
		FileURL:       FileURL(r.FileID),
		FileType:      classifier.ContentType(r.Filename),
		Tags:          tags,
		Year:          r.Year,
		PoliceStation: r.PoliceStation.String(),
	}
}
