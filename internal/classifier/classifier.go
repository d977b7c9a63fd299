// Package classifier infers year, jurisdiction, category, planning stage and
// preview type from a document's filename.
package classifier

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/aibandobast/bandobast/internal/taxonomy"
)

// DefaultYear is used when a filename carries no recognisable year.
const DefaultYear = 2025

// yearPattern accepts 2015 through 2025.
var yearPattern = regexp.MustCompile(`20(1[5-9]|2[0-5])`)

// geoOverlayExtensions skip keyword matching and are filed as KML.
var geoOverlayExtensions = map[string]bool{
	".kml": true,
	".kmz": true,
}

var previewByExtension = map[string]taxonomy.PreviewType{
	".pdf":  taxonomy.PreviewPDF,
	".docx": taxonomy.PreviewDocx,
	".doc":  taxonomy.PreviewDocx,
	".jpg":  taxonomy.PreviewImage,
	".jpeg": taxonomy.PreviewImage,
	".png":  taxonomy.PreviewImage,
	".gif":  taxonomy.PreviewImage,
	".svg":  taxonomy.PreviewImage,
	".kml":  taxonomy.PreviewKML,
	".kmz":  taxonomy.PreviewKML,
}

var contentTypeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".kml":  "application/vnd.google-earth.kml+xml",
	".kmz":  "application/vnd.google-earth.kmz",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".txt":  "text/plain; charset=utf-8",
}

// Classification is the result of classifying one filename. Every field is
// always populated; absence is expressed by the taxonomy defaults.
type Classification struct {
	Year         int                   `json:"year"`
	Jurisdiction taxonomy.Jurisdiction `json:"police_station"`
	Category     taxonomy.Category     `json:"category"`
	Stage        taxonomy.Stage        `json:"stage_tag"`
	PreviewType  taxonomy.PreviewType  `json:"preview_type"`
}

// Classify runs every classifier against filename. Only the base name is
// considered, so directory names never influence the result.
func Classify(filename string) Classification {
	base := filepath.Base(filename)
	return Classification{
		Year:         Year(base),
		Jurisdiction: taxonomy.Jurisdictions.MatchOr(base, taxonomy.Unclassified),
		Category:     Category(base),
		Stage:        taxonomy.Stages.MatchOr(base, taxonomy.DefaultStage),
		PreviewType:  Preview(base),
	}
}

// Year returns the first 2015-2025 year found in name.
func Year(name string) int {
	m := yearPattern.FindString(name)
	if m == "" {
		return DefaultYear
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return DefaultYear
	}
	return y
}

// Category files geo overlays by extension and everything else by keyword.
func Category(name string) taxonomy.Category {
	if geoOverlayExtensions[Ext(name)] {
		return taxonomy.CategoryKML
	}
	return taxonomy.Categories.MatchOr(name, taxonomy.CategoryOther)
}

// Preview maps the file extension to a preview type.
func Preview(name string) taxonomy.PreviewType {
	if p, ok := previewByExtension[Ext(name)]; ok {
		return p
	}
	return taxonomy.PreviewOther
}

// ContentType is the MIME type served for a file with the given name.
func ContentType(name string) string {
	if ct, ok := contentTypeByExtension[Ext(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Tags lists the non-default classification values of c: jurisdiction and
// category are dropped when they hold their placeholders.
func Tags(c Classification) []string {
	tags := make([]string, 0, 4)
	if c.Jurisdiction.IsClassified() {
		tags = append(tags, string(c.Jurisdiction))
	}
	if !c.Category.IsDefault() {
		tags = append(tags, string(c.Category))
	}
	tags = append(tags, string(c.Stage), strconv.Itoa(c.Year))
	return tags
}
