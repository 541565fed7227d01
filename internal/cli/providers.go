package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/shlokstudy/internal/llm/anthropic"
	"github.com/roboco-io/shlokstudy/internal/llm/gemini"
	"github.com/roboco-io/shlokstudy/internal/llm/openai"
)

type providerInfo struct {
	Name         string
	DefaultModel string
	EnvKeys      []string
	Description  string
}

var providerTable = []providerInfo{
	{
		Name:         gemini.ProviderName,
		DefaultModel: gemini.DefaultModel,
		EnvKeys:      []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		Description:  "Google Gemini API",
	},
	{
		Name:         openai.ProviderName,
		DefaultModel: openai.DefaultModel,
		EnvKeys:      []string{"OPENAI_API_KEY"},
		Description:  "OpenAI Chat Completions API",
	},
	{
		Name:         anthropic.ProviderName,
		DefaultModel: anthropic.DefaultModel,
		EnvKeys:      []string{"ANTHROPIC_API_KEY"},
		Description:  "Anthropic Claude API",
	},
	{
		Name:         openai.OllamaProviderName,
		DefaultModel: openai.DefaultOllamaModel,
		EnvKeys:      []string{"OLLAMA_HOST"},
		Description:  "Local Ollama server",
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the LLM providers available for quiz generation",
	Long: `Lists the LLM providers "quiz generate" can use.

Hosted providers need their API key in the listed environment variable or in
the config file. Ollama runs locally and needs no key.

Examples:
  shlokstudy quiz generate --all --provider openai
  shlokstudy quiz generate --class 3 --model claude-sonnet-4-20250514`,
	Run: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PROVIDER\tDEFAULT MODEL\tENV\tSTATUS\tDESCRIPTION")
	for _, p := range providerTable {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.DefaultModel, p.EnvKeys[0], checkProviderStatus(p), p.Description)
	}
}

func checkProviderStatus(p providerInfo) string {
	if p.Name == openai.OllamaProviderName {
		return "✓ available"
	}
	for _, key := range p.EnvKeys {
		if os.Getenv(key) != "" {
			return "✓ configured"
		}
	}
	return "✗ not set"
}
