package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/feedback"
)

var (
	feedbackDB    string
	feedbackLimit int
	feedbackCount bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect collected feedback",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored feedback entries, oldest first",
	Long: `Print stored feedback entries as a JSON array, oldest first.

Examples:
  shlokstudy feedback list
  shlokstudy feedback list --limit 20
  shlokstudy feedback list --count`,
	Args: cobra.NoArgs,
	RunE: runFeedbackList,
}

func init() {
	feedbackListCmd.Flags().StringVar(&feedbackDB, "db", "", "feedback SQLite path (default server.feedback_db)")
	feedbackListCmd.Flags().IntVarP(&feedbackLimit, "limit", "n", 0, "maximum number of entries (0 = all)")
	feedbackListCmd.Flags().BoolVar(&feedbackCount, "count", false, "print only the number of entries")

	feedbackCmd.AddCommand(feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if feedbackDB != "" {
		cfg.Server.FeedbackDB = feedbackDB
	}
	if cfg.Server.FeedbackDB == "" {
		return errors.New("no feedback database configured (set server.feedback_db or use --db)")
	}

	store, db, err := feedback.Open(cfg.Server.FeedbackDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := contextOrBackground(cmd)
	out := cmd.OutOrStdout()

	if feedbackCount {
		n, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil
	}

	entries, err := store.List(ctx, feedbackLimit)
	if err != nil {
		return err
	}
	logger.Debug("listed feedback", zap.Int("entries", len(entries)), zap.String("db", cfg.Server.FeedbackDB))

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
