package llm

import (
	"context"
	"encoding/json"
)

// Provider defines the interface for reasoning-service providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one reasoning interaction: role instructions plus a
	// prompt, optionally with tools the model may invoke during the
	// interaction, returning the final text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Tool is a retrieval capability exposed to the model for the duration of
// one interaction. The model may call it zero or more times before
// producing its final answer.
type Tool struct {
	// Name is the function name the model calls
	Name string

	// Description tells the model when to use the tool
	Description string

	// Parameters is a JSON Schema object describing the arguments
	Parameters json.RawMessage

	// Call executes the tool with the model-supplied arguments
	Call func(ctx context.Context, args json.RawMessage) (string, error)
}

// CompletionRequest contains the input for one reasoning interaction
type CompletionRequest struct {
	// System is the fixed role-specific instruction text
	System string

	// Prompt is the user-turn content
	Prompt string

	// Tools the model may invoke during this interaction. Providers
	// without native tool support treat these as advisory and answer
	// from the prompt alone.
	Tools []Tool

	// ForceJSON requests a single JSON object as the final answer, for
	// stages with a declared output contract
	ForceJSON bool

	// Model overrides the provider's configured default model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling (0 = provider default)
	Temperature float32
}

// CompletionResponse contains the model's final output
type CompletionResponse struct {
	// Text is the final answer (free text, or a JSON object when
	// ForceJSON was set)
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption across all rounds
	TokensUsed int

	// ToolRounds counts how many tool-execution rounds occurred
	ToolRounds int
}

// Config holds reasoning-service provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model is the default model when a request does not name one
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens default for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 4000,
	}
}
