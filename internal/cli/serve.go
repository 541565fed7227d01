package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/feedback"
	"github.com/roboco-io/shlokstudy/internal/quiz"
	"github.com/roboco-io/shlokstudy/internal/server"
)

var (
	serveAddr       string
	serveContentDir string
	serveFeedbackDB string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the class catalog, quizzes and feedback over HTTP",
	Long: `Starts the JSON API:

  GET  /healthz
  GET  /api/classes
  GET  /api/classes/{classID}/shloks/{shlokID}
  POST /api/quiz       {"classId": "3", "type": "class_quiz"}
  POST /api/feedback   any JSON object

Quiz pools are read from content.quizzes_dir; generate them first with
"shlokstudy quiz generate".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	serveCmd.Flags().StringVar(&serveContentDir, "content", "", "content directory (default content.dir)")
	serveCmd.Flags().StringVar(&serveFeedbackDB, "feedback-db", "", "feedback SQLite path (default server.feedback_db)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveContentDir != "" {
		cfg.Content.Dir = serveContentDir
	}
	if serveFeedbackDB != "" {
		cfg.Server.FeedbackDB = serveFeedbackDB
	}

	resolver, err := audioResolver(cfg)
	if err != nil {
		return err
	}
	if !resolver.Enabled() {
		logger.Warn("audio container URL not configured, reference audio disabled")
	}

	srvCfg := server.Config{
		Catalog: openCatalog(cfg),
		Quizzes: quiz.NewStore(cfg.Content.QuizzesDir),
		Audio:   resolver,
		Logger:  logger,
	}

	if cfg.Server.FeedbackDB != "" {
		store, db, err := feedback.Open(cfg.Server.FeedbackDB)
		if err != nil {
			return fmt.Errorf("failed to open feedback store: %w", err)
		}
		defer db.Close()
		srvCfg.Feedback = store
	} else {
		logger.Warn("feedback database not configured, submissions will be rejected")
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("content", cfg.Content.Dir),
	)
	return server.New(srvCfg).ListenAndServe(ctx, cfg.Server.Addr)
}

// contextOrBackground guards commands executed without ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
