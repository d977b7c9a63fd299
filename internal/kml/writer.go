package kml

import "strings"

// writer accumulates indented markup. Two spaces per nesting level.
type writer struct {
	b     strings.Builder
	depth int
}

func (w *writer) line(s string) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("  ")
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

// block writes a multi-line fragment at the current depth.
func (w *writer) block(s string) {
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		w.line(l)
	}
}

// open writes a start tag; tag may carry attributes.
func (w *writer) open(tag string) {
	w.line("<" + tag + ">")
	w.depth++
}

func (w *writer) close(name string) {
	w.depth--
	w.line("</" + name + ">")
}

func (w *writer) bytes() []byte { return []byte(w.b.String()) }
