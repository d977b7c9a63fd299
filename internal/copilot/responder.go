package copilot

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Responder matches messages against an ordered rule list.
type Responder struct {
	rules []Rule
	md    goldmark.Markdown
}

// NewResponder returns a Responder over rules, or DefaultRules when none
// are given.
func NewResponder(rules ...Rule) *Responder {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Responder{
		rules: rules,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Respond answers message. Matching is case-insensitive; it never fails.
func (r *Responder) Respond(message string) Response {
	msg := strings.ToLower(message)
	for _, rule := range r.rules {
		if !rule.Match(msg) {
			continue
		}
		resp := Response{Text: rule.Text, Rule: rule.Name}
		if rule.Action != nil {
			resp.MapAction = rule.Action()
		}
		resp.HTML = r.render(resp.Text)
		return resp
	}
	return Response{Text: DefaultReply, HTML: r.render(DefaultReply)}
}

func (r *Responder) render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return buf.String()
}
