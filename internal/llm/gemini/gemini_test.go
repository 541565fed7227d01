package gemini

import (
	"context"
	"os"
	"testing"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

var _ llm.Provider = (*Provider)(nil)

func TestNew_NoAPIKey(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		old := os.Getenv(key)
		os.Unsetenv(key)
		defer func(k, v string) {
			if v != "" {
				os.Setenv(k, v)
			}
		}(key, old)
	}

	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Error("expected error when API key is not set")
	}
}

func TestNew_DefaultValues(t *testing.T) {
	p, err := New(context.Background(), Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name() != ProviderName {
		t.Errorf("expected provider name %q, got %q", ProviderName, p.Name())
	}
	if p.model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, p.model)
	}
	if p.maxTokens != DefaultMaxTokens {
		t.Errorf("expected max tokens %d, got %d", DefaultMaxTokens, p.maxTokens)
	}
}
