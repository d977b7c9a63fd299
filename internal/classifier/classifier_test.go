package classifier

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

func TestClassifyDefaults(t *testing.T) {
	got := Classify("xyz123.pdf")
	want := Classification{
		Year:         2025,
		Jurisdiction: taxonomy.Unclassified,
		Category:     taxonomy.CategoryOther,
		Stage:        taxonomy.Stage1,
		PreviewType:  taxonomy.PreviewPDF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyKeywordPriority(t *testing.T) {
	got := Classify("PS Pack Final Report.pdf")
	if got.Category != taxonomy.CategoryPSPack {
		t.Errorf("Category = %q, want %q", got.Category, taxonomy.CategoryPSPack)
	}
	// "final" and "report" are both stage 7 keywords.
	if got.Stage != taxonomy.Stage7 {
		t.Errorf("Stage = %q, want %q", got.Stage, taxonomy.Stage7)
	}
}

func TestClassifyFullFilename(t *testing.T) {
	got := Classify("inbox/2023/Panchavati Risk Assessment 2023.docx")
	want := Classification{
		Year:         2023,
		Jurisdiction: taxonomy.Panchavati,
		Category:     taxonomy.CategoryOther,
		Stage:        taxonomy.Stage2,
		PreviewType:  taxonomy.PreviewDocx,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyIgnoresDirectories(t *testing.T) {
	got := Classify("Adgaon/2019/notes.txt")
	if got.Jurisdiction != taxonomy.Unclassified {
		t.Errorf("Jurisdiction = %q, want Unclassified", got.Jurisdiction)
	}
	if got.Year != DefaultYear {
		t.Errorf("Year = %d, want %d", got.Year, DefaultYear)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	names := []string{
		"Mandal QR list Gangapur 2022.xlsx",
		"Deolali Camp route timing.pdf",
		"ghats.kml",
		"",
	}
	for _, n := range names {
		first := Classify(n)
		for i := 0; i < 5; i++ {
			if diff := cmp.Diff(first, Classify(n)); diff != "" {
				t.Fatalf("Classify(%q) not deterministic:\n%s", n, diff)
			}
		}
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"report 2015.pdf", 2015},
		{"report 2019.pdf", 2019},
		{"report 2020.pdf", 2020},
		{"report 2025.pdf", 2025},
		{"report 2014.pdf", DefaultYear},
		{"report 2026.pdf", DefaultYear},
		{"plan-2018-vs-2024.pdf", 2018},
		{"scan_12019.jpg", 2019},
		{"nothing.pdf", DefaultYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Year(tt.name); got != tt.want {
				t.Errorf("Year(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestJurisdictionFirstMatch(t *testing.T) {
	got := Classify("adgaon and bhadrakali joint plan.pdf")
	if got.Jurisdiction != taxonomy.Adgaon {
		t.Errorf("Jurisdiction = %q, want Adgaon", got.Jurisdiction)
	}
}

func TestCategoryGeoOverlayBypassesKeywords(t *testing.T) {
	if got := Category("Final PS Pack.KML"); got != taxonomy.CategoryKML {
		t.Errorf("Category = %q, want KML", got)
	}
	if got := Category("Crime FIR summary.pdf"); got != taxonomy.CategoryCrime {
		t.Errorf("Category = %q, want Crime-incident", got)
	}
}

func TestPreview(t *testing.T) {
	tests := map[string]taxonomy.PreviewType{
		"a.PDF":  taxonomy.PreviewPDF,
		"a.doc":  taxonomy.PreviewDocx,
		"a.docx": taxonomy.PreviewDocx,
		"a.jpeg": taxonomy.PreviewImage,
		"a.svg":  taxonomy.PreviewImage,
		"a.kml":  taxonomy.PreviewKML,
		"a.xlsx": taxonomy.PreviewOther,
		"noext":  taxonomy.PreviewOther,
	}
	for name, want := range tests {
		if got := Preview(name); got != want {
			t.Errorf("Preview(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("map.kml"); got != "application/vnd.google-earth.kml+xml" {
		t.Errorf("ContentType(kml) = %q", got)
	}
	if got := ContentType("photo.JPG"); got != "image/jpeg" {
		t.Errorf("ContentType(JPG) = %q", got)
	}
	if got := ContentType("blob.bin"); got != "application/octet-stream" {
		t.Errorf("ContentType(bin) = %q", got)
	}
}

func TestTags(t *testing.T) {
	c := Classify("xyz123.pdf")
	want := []string{"STAGE_1", "2025"}
	if diff := cmp.Diff(want, Tags(c)); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}

	c = Classify("Adgaon Meeting Minutes 2024.pdf")
	want = []string{"Adgaon", "Meeting", "STAGE_1", "2024"}
	if diff := cmp.Diff(want, Tags(c)); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}
