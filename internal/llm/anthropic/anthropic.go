// Package anthropic provides an llm.Provider backed by the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

const (
	// ProviderName is the provider identifier.
	ProviderName = "anthropic"
	// DefaultModel is used when the configuration names no model.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens bounds the answer length when the request sets none.
	DefaultMaxTokens = 8192
)

// Config holds the configuration for the Anthropic provider.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// Provider implements llm.Provider for Claude models.
type Provider struct {
	client    anthropic.Client
	apiKey    string
	model     string
	maxTokens int
}

// New creates a new Anthropic provider.
func New(cfg Config) (*Provider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("Anthropic API key not configured (set ANTHROPIC_API_KEY or provide via config)")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client:    anthropic.NewClient(opts...),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// Validate checks if the provider is properly configured.
func (p *Provider) Validate() error {
	if p.apiKey == "" {
		return errors.New("anthropic: missing API key")
	}
	return nil
}

// Generate sends the prompt as a single user turn.
//
// The Messages API has no JSON response mode; for JSON requests the assistant
// turn is prefilled with "{" so the answer starts inside the object.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
	}
	if req.JSON {
		messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(req.Options.MaxTokensOr(p.maxTokens)),
		Messages:    messages,
		Temperature: anthropic.Float(req.Options.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	if req.JSON {
		sb.WriteString("{")
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" || text == "{" {
		return nil, llm.ErrEmptyResponse
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &llm.Result{
		Text:  text,
		Model: string(msg.Model),
		Usage: llm.TokenUsage{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
	}, nil
}
