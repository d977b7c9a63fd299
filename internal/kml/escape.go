// Package kml renders geo collections as a Google Earth KML document.
package kml

import "strings"

// escaper makes a single pass, so entities it emits are never re-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML-reserved characters with their entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
