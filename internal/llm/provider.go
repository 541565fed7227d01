// Package llm provides the LLM provider interface and registry used for
// offline quiz generation.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Generate sends a single prompt and returns the model's text answer.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Validate checks if the provider is properly configured.
	Validate() error
}

// Request is a single-turn generation request.
type Request struct {
	System  string          `json:"system,omitempty"` // system instruction
	Prompt  string          `json:"prompt"`
	JSON    bool            `json:"json,omitempty"` // ask the model for a JSON object
	Options GenerateOptions `json:"options"`
}

// GenerateOptions contains options for generation.
type GenerateOptions struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`  // maximum tokens for response
	Temperature float64 `json:"temperature,omitempty"` // creativity level (0.0 - 1.0)
}

// Result contains the result of a generation call.
type Result struct {
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`
	Model string     `json:"model"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// DefaultGenerateOptions returns the default generation options.
// Quiz pools favour precision over variety, hence the low temperature.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxTokens:   8192,
		Temperature: 0.2,
	}
}

// MaxTokensOr returns o.MaxTokens, or fallback when unset.
func (o GenerateOptions) MaxTokensOr(fallback int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return fallback
}
