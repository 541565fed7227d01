package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

var _ llm.Provider = (*Provider)(nil)

func TestNew_NoAPIKey(t *testing.T) {
	oldKey := os.Getenv("ANTHROPIC_API_KEY")
	os.Unsetenv("ANTHROPIC_API_KEY")
	defer func() {
		if oldKey != "" {
			os.Setenv("ANTHROPIC_API_KEY", oldKey)
		}
	}()

	_, err := New(Config{})
	if err == nil {
		t.Error("expected error when API key is not set")
	}
}

func TestNew_DefaultValues(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
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
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestNew_CustomValues(t *testing.T) {
	p, err := New(Config{
		APIKey:    "test-key",
		Model:     "claude-3-5-haiku-latest",
		MaxTokens: 1000,
		BaseURL:   "http://localhost:9999",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.model != "claude-3-5-haiku-latest" {
		t.Errorf("expected custom model, got %q", p.model)
	}
	if p.maxTokens != 1000 {
		t.Errorf("expected max tokens 1000, got %d", p.maxTokens)
	}
}

func TestGenerate_JSONPrefill(t *testing.T) {
	var gotReq struct {
		System   []map[string]any `json:"system"`
		Messages []struct {
			Role    string           `json:"role"`
			Content []map[string]any `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "\"quiz_title\":\"t\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", Model: "claude-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := p.Generate(context.Background(), llm.Request{
		System: "system",
		Prompt: "prompt",
		JSON:   true,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if res.Text != `{"quiz_title":"t"}` {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if res.Usage.TotalTokens != 14 {
		t.Errorf("expected 14 total tokens, got %d", res.Usage.TotalTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Role != "assistant" {
		t.Fatalf("expected user turn plus assistant prefill, got %+v", gotReq.Messages)
	}
	if text := gotReq.Messages[1].Content[0]["text"]; text != "{" {
		t.Errorf("expected prefill '{', got %v", text)
	}
	if len(gotReq.System) != 1 || gotReq.System[0]["text"] != "system" {
		t.Errorf("unexpected system blocks: %v", gotReq.System)
	}
}
