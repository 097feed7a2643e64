// Package llm abstracts the external text-generation service the question
// engine calls. The engine depends only on the Provider interface, so the
// backing vendor (Anthropic, OpenAI, Gemini, OpenRouter) is swappable
// without touching the orchestrator or normalizer.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the boundary to the external generation collaborator.
type Provider interface {
	// Generate sends a prompt and returns the raw structured response.
	// When the request carries a Schema, the provider uses its native
	// structured-output mechanism and validates the result against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider targets.
	ModelID() string
}

// Request describes one call to the collaborator.
type Request struct {
	// System sets the model's role and output constraints.
	System string

	// Messages is the conversation. Question generation is single-turn,
	// so this usually holds one user message.
	Messages []Message

	// Schema, when set, is the JSON Schema the response must conform to.
	// When nil the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero means deterministic.
	Temperature float64
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the collaborator's output must satisfy.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "question-paper".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Normalized stop reasons shared by every adapter.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response holds the collaborator's output.
type Response struct {
	// Content is the generated output. With a Schema set this is the
	// schema-validated JSON; otherwise the raw text as a JSON value.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
