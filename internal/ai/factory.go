package ai

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no usable provider credentials exist.
var ErrNotConfigured = errors.New("AI API key not configured")

// DefaultModel is used when Settings.Model is empty.
const DefaultModel = "gpt-4"

// Settings selects and configures a provider.
type Settings struct {
	Provider          string // "openai" (default) or "ollama"
	Model             string
	BaseURL           string
	APIKey            string // falls back to OPENAI_API_KEY
	RequestsPerMinute int    // zero disables rate limiting
}

// NewProvider creates the provider described by s. A missing OpenAI key
// yields ErrNotConfigured.
func NewProvider(s Settings) (Provider, error) {
	model := s.Model
	if model == "" {
		model = DefaultModel
	}

	var p Provider
	switch strings.ToLower(s.Provider) {
	case "", "openai":
		key := s.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, ErrNotConfigured
		}
		p = NewOpenAIProvider(key, model, s.BaseURL)

	case "ollama":
		// Ollama serves the OpenAI chat API under /v1 and ignores the key.
		host := s.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		op := NewOpenAIProvider("ollama", model, strings.TrimSuffix(host, "/")+"/v1")
		op.name = "ollama"
		p = op

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", s.Provider)
	}

	if s.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, s.RequestsPerMinute)
	}
	return p, nil
}
