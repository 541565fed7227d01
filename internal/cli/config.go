package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/shlokstudy/internal/config"
	"github.com/roboco-io/shlokstudy/internal/llm/providers"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manages the shlokstudy configuration.

Config file: ~/.shlokstudy/config.yaml (override with --config)

Subcommands:
  show    print the effective configuration
  init    write the default configuration file
  set     change one value
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Prints the configuration as stored, with ${VAR} placeholders unexpanded,
followed by the environment variables that feed it.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Writes the default configuration to the config file path.

Fails if the file exists unless --force is given.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Changes one configuration value.

Supported keys:
  default_provider       LLM provider (gemini, openai, anthropic, ollama)
  quiz.temperature       sampling temperature (0.0-1.0)
  quiz.class_pool_size   questions per class quiz pool
  quiz.review_pool_size  questions per mini review pool
  content.dir            directory holding Class_<n>.txt and classes.json
  content.quizzes_dir    directory for generated quiz pools
  server.addr            HTTP listen address
  server.feedback_db     SQLite file for feedback (empty disables)
  audio.container_url    blob container URL including the SAS query

Examples:
  shlokstudy config set default_provider openai
  shlokstudy config set quiz.temperature 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := config.NewLoaderFor(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
		return nil
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoaderFor(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if loader.Exists() {
		fmt.Fprintf(out, "Config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "Config file: (defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(out, string(data))

	if p, ok := cfg.GetDefaultProvider(); ok {
		fmt.Fprintf(out, "Default provider: %s (%s)\n\n", cfg.DefaultProvider, p.Model)
	} else {
		fmt.Fprintf(out, "Default provider: %s (not configured)\n\n", cfg.DefaultProvider)
	}

	fmt.Fprintln(out, "Environment:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	envVars := []struct {
		key   string
		desc  string
		value string
	}{
		{"GEMINI_API_KEY", "Gemini API key", maskAPIKey(config.GetEnvOrDefault("GEMINI_API_KEY", ""))},
		{"GOOGLE_API_KEY", "Google API key", maskAPIKey(config.GetEnvOrDefault("GOOGLE_API_KEY", ""))},
		{"OPENAI_API_KEY", "OpenAI API key", maskAPIKey(config.GetEnvOrDefault("OPENAI_API_KEY", ""))},
		{"ANTHROPIC_API_KEY", "Anthropic API key", maskAPIKey(config.GetEnvOrDefault("ANTHROPIC_API_KEY", ""))},
		{"OLLAMA_HOST", "Ollama host", config.GetEnvOrDefault("OLLAMA_HOST", "")},
		{"AUDIO_CONTAINER_SAS_URL", "Audio container", maskSAS(config.GetEnvOrDefault("AUDIO_CONTAINER_SAS_URL", ""))},
	}
	for _, ev := range envVars {
		status := "(not set)"
		if ev.value != "" {
			status = ev.value
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, status)
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoaderFor(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file written: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	loader, err := config.NewLoaderFor(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applySetting(cfg, key, value); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "default_provider":
		if !contains(providers.Names, value) {
			return fmt.Errorf("invalid provider: %s (supported: %s)", value, strings.Join(providers.Names, ", "))
		}
		cfg.DefaultProvider = value

	case "quiz.temperature":
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature: %s", value)
		}
		if temp < 0 || temp > 1 {
			return fmt.Errorf("temperature must be within 0.0-1.0: %g", temp)
		}
		cfg.Quiz.Temperature = temp

	case "quiz.class_pool_size", "quiz.review_pool_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid pool size: %s", value)
		}
		if key == "quiz.class_pool_size" {
			cfg.Quiz.ClassPoolSize = n
		} else {
			cfg.Quiz.ReviewPoolSize = n
		}

	case "content.dir":
		cfg.Content.Dir = value
	case "content.quizzes_dir":
		cfg.Content.QuizzesDir = value
	case "server.addr":
		cfg.Server.Addr = value
	case "server.feedback_db":
		cfg.Server.FeedbackDB = value
	case "audio.container_url":
		cfg.Audio.ContainerURL = value

	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// maskSAS hides the signature part of a container URL.
func maskSAS(u string) string {
	base, _, found := strings.Cut(u, "?")
	if !found {
		return u
	}
	return base + "?****"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
