// Package openai provides an llm.Provider for the OpenAI Chat Completions API
// and for OpenAI-compatible servers such as Ollama.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

const (
	// ProviderName is the provider identifier.
	ProviderName = "openai"
	// OllamaProviderName identifies a local Ollama server.
	OllamaProviderName = "ollama"
	// DefaultModel is used when the configuration names no model.
	DefaultModel = "gpt-4o-mini"
	// DefaultOllamaModel is used for Ollama when no model is configured.
	DefaultOllamaModel = "llama3.2"
	// DefaultOllamaEndpoint is the default local Ollama address.
	DefaultOllamaEndpoint = "http://localhost:11434"
	// DefaultMaxTokens bounds the answer length when the request sets none.
	DefaultMaxTokens = 8192
)

// Config holds the configuration for the OpenAI provider.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// Provider implements llm.Provider over a Chat Completions endpoint.
type Provider struct {
	name      string
	client    *goopenai.Client
	apiKey    string
	model     string
	maxTokens int
}

// New creates a provider for the hosted OpenAI API.
func New(cfg Config) (*Provider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not configured (set OPENAI_API_KEY or provide via config)")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return newProvider(ProviderName, clientCfg, apiKey, model, cfg.MaxTokens), nil
}

// NewOllama creates a provider for a local Ollama server through its
// OpenAI-compatible /v1 endpoint. No API key is required.
func NewOllama(cfg Config) (*Provider, error) {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = os.Getenv("OLLAMA_HOST")
	}
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	// Ollama ignores the key but the client always sends one.
	clientCfg := goopenai.DefaultConfig("ollama")
	clientCfg.BaseURL = endpoint

	return newProvider(OllamaProviderName, clientCfg, "ollama", model, cfg.MaxTokens), nil
}

func newProvider(name string, clientCfg goopenai.ClientConfig, apiKey, model string, maxTokens int) *Provider {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Provider{
		name:      name,
		client:    goopenai.NewClientWithConfig(clientCfg),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Validate checks if the provider is properly configured.
func (p *Provider) Validate() error {
	if p.apiKey == "" {
		return fmt.Errorf("%s: missing API key", p.name)
	}
	if p.model == "" {
		return fmt.Errorf("%s: missing model", p.name)
	}
	return nil
}

// Generate sends the system instruction and prompt as one chat completion.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := goopenai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.Options.MaxTokensOr(p.maxTokens),
		Temperature: float32(req.Options.Temperature),
	}
	if req.JSON {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.Result{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: llm.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
