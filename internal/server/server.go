// Package server exposes the class catalog, quiz pools and the feedback sink
// over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/audio"
	"github.com/roboco-io/shlokstudy/internal/catalog"
	"github.com/roboco-io/shlokstudy/internal/feedback"
	"github.com/roboco-io/shlokstudy/internal/quiz"
)

const shutdownTimeout = 10 * time.Second

// Config wires the server to its backing stores. Feedback and Audio may be nil.
type Config struct {
	Catalog  *catalog.Catalog
	Quizzes  *quiz.Store
	Feedback *feedback.Store
	Audio    *audio.Resolver
	Logger   *zap.Logger
}

// Server is the HTTP front of the study companion.
type Server struct {
	catalog  *catalog.Catalog
	quizzes  *quiz.Store
	feedback *feedback.Store
	audio    *audio.Resolver
	logger   *zap.Logger
	policy   *bluemonday.Policy
	router   *chi.Mux
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		catalog:  cfg.Catalog,
		quizzes:  cfg.Quizzes,
		feedback: cfg.Feedback,
		audio:    cfg.Audio,
		logger:   logger,
		policy:   versePolicy(),
	}
	s.router = s.routes()
	return s
}

// versePolicy allows only the no-wrap spans the verse formatter emits.
func versePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^nowrap$`)).OnElements("span")
	return p
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/classes", s.handleClasses)
		r.Get("/classes/{classID}/shloks/{shlokID}", s.handleShlok)
		r.Post("/quiz", s.handleQuiz)
		r.Post("/feedback", s.handleFeedback)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
