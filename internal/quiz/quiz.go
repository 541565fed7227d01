// Package quiz generates and serves the question pools for class quizzes and
// periodic mini reviews.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAvailable is returned when no pool has been generated yet.
	ErrNotAvailable = errors.New("quiz content not available yet")
	// ErrNoContent is returned when no class text could be loaded.
	ErrNoContent = errors.New("no class content")
	// ErrNoQuestions is returned when the model produced no usable question.
	ErrNoQuestions = errors.New("no valid questions generated")
)

// Kind selects between a single-class quiz and a multi-class review.
type Kind string

const (
	KindClassQuiz  Kind = "class_quiz"
	KindMiniReview Kind = "mini_review"
)

// ParseKind converts a request value into a Kind. Empty means class quiz.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case "", KindClassQuiz:
		return KindClassQuiz, nil
	case KindMiniReview:
		return KindMiniReview, nil
	default:
		return "", fmt.Errorf("unknown quiz type: %q", s)
	}
}

// FileName returns the pool file name for a class.
func (k Kind) FileName(classID string) string {
	if k == KindMiniReview {
		return "mini_review_" + classID + ".json"
	}
	return "class_" + classID + ".json"
}

// Quiz is a question pool as stored on disk and served to clients. Clients
// draw their own subset from the pool.
type Quiz struct {
	Title     string     `json:"quiz_title"`
	Questions []Question `json:"questions"`
}

// Question is one multiple-choice question.
type Question struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	QuestionText    string   `json:"question_text"`
	Options         []string `json:"options"`
	CorrectAnswer   string   `json:"correct_answer"`
	Explanation     string   `json:"explanation"`
	SourceReference string   `json:"source_reference"`
}

// Valid reports whether the question can be shown: it has text, at least
// two options, and its answer is one of them.
func (q Question) Valid() bool {
	if strings.TrimSpace(q.QuestionText) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
		return false
	}
	if len(q.Options) < 2 {
		return false
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == strings.TrimSpace(q.CorrectAnswer) {
			return true
		}
	}
	return false
}
