package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/config"
	"github.com/roboco-io/shlokstudy/internal/llm"
	"github.com/roboco-io/shlokstudy/internal/llm/providers"
	"github.com/roboco-io/shlokstudy/internal/quiz"
)

var (
	quizClass      string
	quizType       string
	quizAll        bool
	quizProvider   string
	quizModel      string
	quizContentDir string
	quizOutDir     string
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Manage quiz pools",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate quiz pools with an LLM",
	Long: `Generates question pools from the class texts and writes them as JSON
files the server reads (class_<n>.json, mini_review_<n>.json).

With --all, a class quiz is generated for every Class_<n>.txt and a mini
review after every quiz.review_every classes. Failures are reported and the
run continues.

Environment variables:
  GEMINI_API_KEY / GOOGLE_API_KEY   Gemini
  OPENAI_API_KEY                    OpenAI
  ANTHROPIC_API_KEY                 Anthropic
  OLLAMA_HOST                       Ollama server address

Examples:
  shlokstudy quiz generate --all
  shlokstudy quiz generate --class 3
  shlokstudy quiz generate --class 5 --type mini_review
  shlokstudy quiz generate --class 2 --model gpt-4o`,
	Args: cobra.NoArgs,
	RunE: runQuizGenerate,
}

func init() {
	quizGenerateCmd.Flags().StringVar(&quizClass, "class", "", "class number to generate")
	quizGenerateCmd.Flags().StringVar(&quizType, "type", "class_quiz", "pool type (class_quiz, mini_review)")
	quizGenerateCmd.Flags().BoolVar(&quizAll, "all", false, "generate pools for every class")
	quizGenerateCmd.Flags().StringVar(&quizProvider, "provider", "", "LLM provider (gemini, openai, anthropic, ollama)")
	quizGenerateCmd.Flags().StringVar(&quizModel, "model", "", "model name (provider detected from the name when --provider is unset)")
	quizGenerateCmd.Flags().StringVar(&quizContentDir, "content", "", "content directory (default content.dir)")
	quizGenerateCmd.Flags().StringVar(&quizOutDir, "out", "", "output directory (default content.quizzes_dir)")

	quizCmd.AddCommand(quizGenerateCmd)
	rootCmd.AddCommand(quizCmd)
}

func runQuizGenerate(cmd *cobra.Command, args []string) error {
	if quizAll == (quizClass != "") {
		return errors.New("specify exactly one of --class or --all")
	}
	if quizClass != "" {
		if _, err := strconv.Atoi(quizClass); err != nil {
			return fmt.Errorf("invalid class number: %s", quizClass)
		}
	}
	kind, err := quiz.ParseKind(quizType)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if quizContentDir != "" {
		cfg.Content.Dir = quizContentDir
	}
	if quizOutDir != "" {
		cfg.Content.QuizzesDir = quizOutDir
	}

	ctx := contextOrBackground(cmd)
	provider, err := selectProvider(cmd, cfg)
	if err != nil {
		return err
	}
	logger.Info("using provider", zap.String("provider", provider.Name()))

	gen := quiz.NewGenerator(provider, openCatalog(cfg), quizOptions(cfg), logger)
	store := quiz.NewStore(cfg.Content.QuizzesDir)

	if quizAll {
		report, err := gen.GenerateAll(ctx, store)
		if report != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "written: %d, failed: %d\n", len(report.Written), len(report.Failed))
			for _, f := range report.Failed {
				fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", f)
			}
		}
		return err
	}

	q, err := gen.Generate(ctx, quizClass, kind)
	if err != nil {
		return fmt.Errorf("quiz generation failed: %w", err)
	}
	path, err := store.Save(quizClass, kind, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions -> %s\n", q.Title, len(q.Questions), path)
	return nil
}

// selectProvider registers every usable configured provider and resolves
// the one requested on the command line, falling back to the default.
func selectProvider(cmd *cobra.Command, cfg *config.Config) (llm.Provider, error) {
	name := quizProvider
	if name == "" && quizModel != "" {
		name = detectProviderFromModel(quizModel)
	}
	if quizModel != "" {
		target := name
		if target == "" {
			target = cfg.DefaultProvider
		}
		pc := cfg.Providers[target]
		pc.Model = quizModel
		if cfg.Providers == nil {
			cfg.Providers = map[string]config.Provider{}
		}
		cfg.Providers[target] = pc
	}

	reg := llm.NewRegistry()
	skipped := providers.RegisterConfigured(contextOrBackground(cmd), reg, cfg)
	for n, err := range skipped {
		logger.Debug("provider unavailable", zap.String("provider", n), zap.Error(err))
	}

	p, err := reg.Resolve(name, cfg.DefaultProvider)
	if err != nil {
		selected := name
		if selected == "" {
			selected = cfg.DefaultProvider
		}
		if reason, ok := skipped[selected]; ok {
			return nil, fmt.Errorf("provider %s unavailable: %w", selected, reason)
		}
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// detectProviderFromModel guesses the provider from a model name. Unknown
// names are assumed to be local Ollama models.
func detectProviderFromModel(model string) string {
	if model == "" {
		return ""
	}
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return "openai"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	default:
		return "ollama"
	}
}
