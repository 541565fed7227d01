// Package gemini provides an llm.Provider backed by the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

const (
	// ProviderName is the provider identifier.
	ProviderName = "gemini"
	// DefaultModel is used when the configuration names no model.
	DefaultModel = "gemini-2.0-flash"
	// DefaultMaxTokens bounds the answer length when the request sets none.
	DefaultMaxTokens = 8192
)

// Config holds the configuration for the Gemini provider.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// Provider implements llm.Provider for Gemini models.
type Provider struct {
	client    *genai.Client
	apiKey    string
	model     string
	maxTokens int
}

// New creates a new Gemini provider. The key falls back to GEMINI_API_KEY,
// then GOOGLE_API_KEY.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("Gemini API key not configured (set GEMINI_API_KEY or provide via config)")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{
		client:    client,
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
		return errors.New("gemini: missing API key")
	}
	return nil
}

// Generate runs a single generateContent call.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	temperature := float32(req.Options.Temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.Options.MaxTokensOr(p.maxTokens)),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyResponse
	}

	result := &llm.Result{
		Text:  text,
		Model: p.model,
	}
	if resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		result.Usage = llm.TokenUsage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return result, nil
}
