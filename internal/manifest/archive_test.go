package manifest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

func TestBuildArchiveCoversEverySeason(t *testing.T) {
	var records []Record
	for i := 0; i < 10; i++ {
		records = append(records, Record{
			FileID:        fmt.Sprintf("f%d", i),
			Filename:      fmt.Sprintf("Panchavati Duty Chart %d.pdf", i),
			Year:          2019,
			PoliceStation: taxonomy.Panchavati,
			Category:      taxonomy.CategoryPSPack,
			StageTag:      taxonomy.Stage6,
		})
	}
	records = append(records, Record{FileID: "old", Filename: "Old.pdf", Year: 2009})

	years := BuildArchive(records)
	require.Len(t, years, ArchiveLastYear-ArchiveFirstYear+1)
	assert.Equal(t, ArchiveFirstYear, years[0].Year)
	assert.Equal(t, ArchiveLastYear, years[len(years)-1].Year)

	total := 0
	for _, y := range years {
		total += y.TotalFiles
		assert.NotNil(t, y.Documents)
	}
	assert.Equal(t, 10, total, "records outside the archive range are ignored")

	y2019 := years[2019-ArchiveFirstYear]
	assert.Equal(t, "Ganpati Utsav 2019", y2019.EventName)
	assert.Equal(t, 10, y2019.TotalFiles)
	assert.Equal(t, 10, y2019.FilesByPS["Panchavati"])
	assert.Equal(t, 10, y2019.FilesByStage["STAGE_6"])
	assert.Len(t, y2019.Documents, archiveDocLimit)
	assert.Equal(t, "/api/files/f0", y2019.Documents[0].URL)
	assert.Equal(t, "Historical data extracted from 10 files.", y2019.Notes)

	assert.Zero(t, years[0].TotalFiles)
	assert.Empty(t, years[0].Documents)
}

func TestIndexArchiveYearRange(t *testing.T) {
	idx := NewIndex(sampleRecords())

	a, ok := idx.ArchiveYear(2024)
	require.True(t, ok)
	assert.Equal(t, 1, a.TotalFiles)

	_, ok = idx.ArchiveYear(2014)
	assert.False(t, ok)
	_, ok = idx.ArchiveYear(2026)
	assert.False(t, ok)
}

func TestEvidenceOf(t *testing.T) {
	ev := EvidenceOf(Record{
		FileID:        "abc",
		Filename:      "Panchavati Risk Assessment 2023.pdf",
		Year:          2023,
		PoliceStation: taxonomy.Panchavati,
		Category:      taxonomy.CategoryDataAnalysis,
		StageTag:      taxonomy.Stage2,
	})

	assert.Equal(t, "abc", ev.ID)
	assert.Equal(t, "Panchavati Risk Assessment 2023.pdf", ev.Title)
	assert.Equal(t, "Historical data for Panchavati (2023)", ev.Description)
	assert.Equal(t, "/api/files/abc", ev.FileURL)
	assert.Equal(t, "application/pdf", ev.FileType)
	assert.Equal(t, "Risk Thinking", ev.StageLabel)
	assert.NotNil(t, ev.Tags)
}

func TestHTTPArchive(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/archive")
	require.Equal(t, http.StatusOK, rec.Code)
	var years []ArchiveYear
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&years))
	require.Len(t, years, 11)
	assert.Equal(t, 1, years[2023-ArchiveFirstYear].TotalFiles)
	assert.Equal(t, 3, years[2025-ArchiveFirstYear].TotalFiles)

	rec = f.do(t, http.MethodGet, "/api/archive/2024")
	require.Equal(t, http.StatusOK, rec.Code)
	var one ArchiveYear
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&one))
	require.Len(t, one.Documents, 1)
	assert.Equal(t, "Adgaon Meeting Minutes 2024.txt", one.Documents[0].Title)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/archive/1999").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/archive/last").Code)
}

func TestHTTPEvidence(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/evidence")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []Evidence
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, 5)
	for _, ev := range all {
		assert.Equal(t, "/api/files/"+ev.ID, ev.FileURL)
	}

	rec = f.do(t, http.MethodGet, "/api/evidence?stage=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var risk []Evidence
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&risk))
	require.Len(t, risk, 1)
	assert.Equal(t, "Panchavati Risk Assessment 2023.docx", risk[0].Title)

	id := f.idOf(t, "PS Pack Final Report.pdf")
	rec = f.do(t, http.MethodGet, "/api/evidence/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	var one Evidence
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&one))
	assert.Equal(t, "application/pdf", one.FileType)

	// The advertised link serves the file.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, one.FileURL).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/evidence/missing").Code)
}
