package gateway

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON or plain text from a prompt.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content is JSON that has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// SpeechSynthesizer turns text into raw PCM16 mono audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Prompt is the single user turn.
	Prompt string

	// Schema is the JSON Schema the response must conform to.
	// When nil, Content is raw text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema and keys the compiled-schema cache.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is validated JSON when a Schema was given, raw text otherwise.
	Content json.RawMessage
	Model   string
}
