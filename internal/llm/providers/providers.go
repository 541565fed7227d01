// Package providers builds llm.Provider values from configuration.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/roboco-io/shlokstudy/internal/config"
	"github.com/roboco-io/shlokstudy/internal/llm"
	"github.com/roboco-io/shlokstudy/internal/llm/anthropic"
	"github.com/roboco-io/shlokstudy/internal/llm/gemini"
	"github.com/roboco-io/shlokstudy/internal/llm/openai"
)

// Names lists the supported provider identifiers.
var Names = []string{anthropic.ProviderName, gemini.ProviderName, openai.OllamaProviderName, openai.ProviderName}

// Build creates the named provider from its configuration entry.
func Build(ctx context.Context, name string, cfg config.Provider) (llm.Provider, error) {
	switch name {
	case anthropic.ProviderName:
		return anthropic.New(anthropic.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.Endpoint,
		})
	case openai.ProviderName:
		return openai.New(openai.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.Endpoint,
		})
	case openai.OllamaProviderName:
		return openai.NewOllama(openai.Config{
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.Endpoint,
		})
	case gemini.ProviderName:
		return gemini.New(ctx, gemini.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: %s)", name, strings.Join(Names, ", "))
	}
}

// RegisterConfigured registers every configured provider that can be built
// (i.e. has its credentials) and returns why the others were skipped.
func RegisterConfigured(ctx context.Context, reg *llm.Registry, cfg *config.Config) map[string]error {
	skipped := make(map[string]error)
	for name, pc := range cfg.Providers {
		p, err := Build(ctx, name, pc)
		if err != nil {
			skipped[name] = err
			continue
		}
		if err := reg.Register(p); err != nil {
			skipped[name] = err
		}
	}
	return skipped
}
