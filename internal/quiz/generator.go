package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

// Source supplies class documents. *catalog.Catalog satisfies it.
type Source interface {
	Text(filename string) (string, error)
	ClassIDs() ([]int, error)
}

// Options controls pool sizes and the review cadence.
type Options struct {
	Temperature    float64
	MaxTokens      int
	ClassPoolSize  int
	ReviewPoolSize int
	ReviewEvery    int // a mini review follows every n-th class
	ReviewSpan     int // classes covered by one mini review
}

// DefaultOptions returns the standard pool configuration.
func DefaultOptions() Options {
	return Options{
		Temperature:    0.2,
		MaxTokens:      8192,
		ClassPoolSize:  10,
		ReviewPoolSize: 20,
		ReviewEvery:    5,
		ReviewSpan:     5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.ClassPoolSize <= 0 {
		o.ClassPoolSize = d.ClassPoolSize
	}
	if o.ReviewPoolSize <= 0 {
		o.ReviewPoolSize = d.ReviewPoolSize
	}
	if o.ReviewEvery <= 0 {
		o.ReviewEvery = d.ReviewEvery
	}
	if o.ReviewSpan <= 0 {
		o.ReviewSpan = d.ReviewSpan
	}
	return o
}

// Generator builds question pools with an LLM provider.
type Generator struct {
	provider llm.Provider
	source   Source
	opts     Options
	logger   *zap.Logger
}

// NewGenerator creates a generator. A nil logger discards output.
func NewGenerator(provider llm.Provider, source Source, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		source:   source,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// ReviewRange returns the first and last class covered by the mini review
// ending at classID.
func (g *Generator) ReviewRange(classID int) (int, int) {
	return max(1, classID-g.opts.ReviewSpan+1), classID
}

// Generate produces the pool of the given kind for one class.
func (g *Generator) Generate(ctx context.Context, classID string, kind Kind) (*Quiz, error) {
	prompt, err := g.buildPrompt(classID, kind)
	if err != nil {
		return nil, err
	}

	g.logger.Info("generating quiz pool",
		zap.String("class", classID),
		zap.String("kind", string(kind)),
		zap.String("provider", g.provider.Name()),
	)

	res, err := g.provider.Generate(ctx, llm.Request{
		System: systemInstruction,
		Prompt: prompt,
		JSON:   true,
		Options: llm.GenerateOptions{
			MaxTokens:   g.opts.MaxTokens,
			Temperature: g.opts.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s for class %s: %w", kind, classID, err)
	}

	q, dropped, err := decode(res.Text)
	if err != nil {
		return nil, fmt.Errorf("%s for class %s: %w", kind, classID, err)
	}
	if dropped > 0 {
		g.logger.Warn("dropped incomplete questions",
			zap.String("class", classID),
			zap.String("kind", string(kind)),
			zap.Int("dropped", dropped),
		)
	}
	if q.Title == "" {
		q.Title = defaultTitle(classID, kind)
	}

	g.logger.Debug("quiz pool generated",
		zap.String("class", classID),
		zap.Int("questions", len(q.Questions)),
		zap.String("model", res.Model),
		zap.Int("total_tokens", res.Usage.TotalTokens),
	)
	return q, nil
}

func (g *Generator) buildPrompt(classID string, kind Kind) (string, error) {
	switch kind {
	case KindClassQuiz:
		text, err := g.source.Text("Class_" + classID + ".txt")
		if err != nil {
			return "", fmt.Errorf("class %s: %w: %w", classID, ErrNoContent, err)
		}
		return classQuizPrompt(classID, StripExcluded(text), g.opts.ClassPoolSize), nil

	case KindMiniReview:
		n, err := strconv.Atoi(classID)
		if err != nil {
			return "", fmt.Errorf("mini review needs a numeric class id, got %q", classID)
		}
		start, end := g.ReviewRange(n)
		parts := make([]string, 0, end-start+1)
		for c := start; c <= end; c++ {
			text, err := g.source.Text("Class_" + strconv.Itoa(c) + ".txt")
			if err != nil {
				g.logger.Debug("class missing from review", zap.Int("class", c), zap.Error(err))
				parts = append(parts, "")
				continue
			}
			parts = append(parts, wrapClass(c, text))
		}
		combined := strings.Join(parts, "\n\n")
		if strings.TrimSpace(combined) == "" {
			return "", fmt.Errorf("classes %d-%d: %w", start, end, ErrNoContent)
		}
		return miniReviewPrompt(start, end, StripExcluded(combined), g.opts.ReviewPoolSize), nil

	default:
		return "", fmt.Errorf("unknown quiz type: %q", kind)
	}
}

// decode parses a model answer and keeps only complete questions. Missing
// ids are numbered by position.
func decode(text string) (*Quiz, int, error) {
	var q Quiz
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &q); err != nil {
		return nil, 0, fmt.Errorf("failed to decode quiz JSON: %w", err)
	}

	kept := q.Questions[:0]
	dropped := 0
	for _, question := range q.Questions {
		if !question.Valid() {
			dropped++
			continue
		}
		if question.ID == "" {
			question.ID = "q" + strconv.Itoa(len(kept)+1)
		}
		if question.Type == "" {
			question.Type = "mcq"
		}
		kept = append(kept, question)
	}
	if len(kept) == 0 {
		return nil, dropped, ErrNoQuestions
	}
	q.Questions = kept
	return &q, dropped, nil
}

func defaultTitle(classID string, kind Kind) string {
	if kind == KindMiniReview {
		return "Mini Review " + classID
	}
	return "Class " + classID + " Quiz"
}

// Report summarises a GenerateAll run.
type Report struct {
	Written []string // pool files written
	Failed  []string // "<kind> <class>" entries that could not be generated
}

// GenerateAll writes a class pool for every class document and a mini review
// pool after every ReviewEvery-th class. Individual failures are logged and
// reported; only listing or cancellation aborts the run.
func (g *Generator) GenerateAll(ctx context.Context, store *Store) (*Report, error) {
	ids, err := g.source.ClassIDs()
	if err != nil {
		return nil, err
	}
	g.logger.Info("found classes", zap.Ints("classes", ids))

	report := &Report{}
	for _, id := range ids {
		kinds := []Kind{KindClassQuiz}
		if id%g.opts.ReviewEvery == 0 {
			kinds = append(kinds, KindMiniReview)
		}

		for _, kind := range kinds {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			classID := strconv.Itoa(id)
			path, err := g.generateAndSave(ctx, store, classID, kind)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return report, err
				}
				g.logger.Error("quiz generation failed",
					zap.String("class", classID),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				report.Failed = append(report.Failed, string(kind)+" "+classID)
				continue
			}
			g.logger.Info("quiz pool written", zap.String("path", path))
			report.Written = append(report.Written, path)
		}
	}
	return report, nil
}

func (g *Generator) generateAndSave(ctx context.Context, store *Store, classID string, kind Kind) (string, error) {
	q, err := g.Generate(ctx, classID, kind)
	if err != nil {
		return "", err
	}
	return store.Save(classID, kind, q)
}
