// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
)

// Config represents the application configuration.
type Config struct {
	DefaultProvider string              `yaml:"default_provider"`
	Providers       map[string]Provider `yaml:"providers"`
	Quiz            QuizConfig          `yaml:"quiz"`
	Content         ContentConfig       `yaml:"content"`
	Server          ServerConfig        `yaml:"server"`
	Audio           AudioConfig         `yaml:"audio"`
}

// Provider represents an LLM provider configuration.
type Provider struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Endpoint  string `yaml:"endpoint,omitempty"` // for Ollama or custom endpoints
}

// QuizConfig contains quiz pool generation options.
type QuizConfig struct {
	Temperature    float64 `yaml:"temperature"`
	ClassPoolSize  int     `yaml:"class_pool_size"`  // questions generated per class quiz
	ReviewPoolSize int     `yaml:"review_pool_size"` // questions generated per mini review
	ReviewEvery    int     `yaml:"review_every"`     // a mini review follows every N classes
	ReviewSpan     int     `yaml:"review_span"`      // classes covered by one mini review
}

// ContentConfig locates class texts and generated quiz pools.
type ContentConfig struct {
	Dir          string   `yaml:"dir"`
	QuizzesDir   string   `yaml:"quizzes_dir"`
	ClassesIndex string   `yaml:"classes_index"`
	ProseMarkers []string `yaml:"prose_markers"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	FeedbackDB string `yaml:"feedback_db"` // empty disables feedback collection
}

// AudioConfig locates reference audio recordings.
type AudioConfig struct {
	ContainerURL string `yaml:"container_url"`          // container URL including its SAS query
	MappingFile  string `yaml:"mapping_file,omitempty"` // optional YAML override of the built-in table
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "gemini",
		Providers: map[string]Provider{
			"openai": {
				APIKey:    "${OPENAI_API_KEY}",
				Model:     "gpt-4o-mini",
				MaxTokens: 8192,
			},
			"anthropic": {
				APIKey:    "${ANTHROPIC_API_KEY}",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 8192,
			},
			"gemini": {
				APIKey:    "${GEMINI_API_KEY}",
				Model:     "gemini-2.0-flash",
				MaxTokens: 8192,
			},
			"ollama": {
				Endpoint:  "${OLLAMA_HOST:-http://localhost:11434}",
				Model:     "llama3.2",
				MaxTokens: 8192,
			},
		},
		Quiz: QuizConfig{
			Temperature:    0.2,
			ClassPoolSize:  10,
			ReviewPoolSize: 20,
			ReviewEvery:    5,
			ReviewSpan:     5,
		},
		Content: ContentConfig{
			Dir:          "public",
			QuizzesDir:   "public/quizzes",
			ClassesIndex: "classes.json",
			ProseMarkers: []string{"Vachanamrut", "Swamini Vato"},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			FeedbackDB: "data/feedback.db",
		},
		Audio: AudioConfig{
			ContainerURL: "${AUDIO_CONTAINER_SAS_URL}",
		},
	}
}

// Validate reports settings no command could run with. Zero quiz sizes are
// allowed and mean "use the built-in default".
func (c *Config) Validate() error {
	var errs []error
	if t := c.Quiz.Temperature; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("quiz.temperature must be within 0.0-1.0, got %g", t))
	}
	for key, n := range map[string]int{
		"quiz.class_pool_size":  c.Quiz.ClassPoolSize,
		"quiz.review_pool_size": c.Quiz.ReviewPoolSize,
		"quiz.review_every":     c.Quiz.ReviewEvery,
		"quiz.review_span":      c.Quiz.ReviewSpan,
	} {
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", key, n))
		}
	}
	for name, p := range c.Providers {
		if p.MaxTokens < 0 {
			errs = append(errs, fmt.Errorf("providers.%s.max_tokens must not be negative, got %d", name, p.MaxTokens))
		}
	}
	return errors.Join(errs...)
}

// GetProvider returns the provider configuration by name.
func (c *Config) GetProvider(name string) (*Provider, bool) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetDefaultProvider returns the default provider configuration.
func (c *Config) GetDefaultProvider() (*Provider, bool) {
	return c.GetProvider(c.DefaultProvider)
}
