package quiz

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roboco-io/shlokstudy/internal/llm"
)

// fakeSource serves class texts from memory.
type fakeSource map[int]string

func (f fakeSource) Text(filename string) (string, error) {
	for id, text := range f {
		if filename == "Class_"+strconv.Itoa(id)+".txt" {
			return text, nil
		}
	}
	return "", fs.ErrNotExist
}

func (f fakeSource) ClassIDs() ([]int, error) {
	ids := make([]int, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// mockProvider returns canned answers and records requests.
type mockProvider struct {
	mu       sync.Mutex
	answer   string
	err      error
	failFor  string
	requests []llm.Request
}

func (m *mockProvider) Name() string    { return "mock" }
func (m *mockProvider) Validate() error { return nil }

func (m *mockProvider) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.failFor != "" && strings.Contains(req.Prompt, m.failFor) {
		return nil, errors.New("model unavailable")
	}
	return &llm.Result{Text: m.answer, Model: "mock-1"}, nil
}

const goodAnswer = "```json\n" + `{
  "quiz_title": "Class Quiz",
  "questions": [
    {"id": "1", "type": "mcq", "question_text": "Q one", "options": ["a", "b"], "correct_answer": "a", "explanation": "e", "source_reference": "Vach.Sā.1"},
    {"id": "", "type": "", "question_text": "Q two", "options": ["x", "y", "z"], "correct_answer": "z", "explanation": "", "source_reference": ""},
    {"id": "3", "type": "mcq", "question_text": "", "options": ["a", "b"], "correct_answer": "a"},
    {"id": "4", "type": "mcq", "question_text": "Q four", "options": ["a"], "correct_answer": "a"},
    {"id": "5", "type": "mcq", "question_text": "Q five", "options": ["a", "b"], "correct_answer": "c"}
  ]
}` + "\n```"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindClassQuiz, false},
		{"class_quiz", KindClassQuiz, false},
		{"mini_review", KindMiniReview, false},
		{"final_exam", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKind_FileName(t *testing.T) {
	if got := KindClassQuiz.FileName("3"); got != "class_3.json" {
		t.Errorf("class quiz file = %q", got)
	}
	if got := KindMiniReview.FileName("5"); got != "mini_review_5.json" {
		t.Errorf("mini review file = %q", got)
	}
}

func TestStripExcluded(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "passage before gap",
			in:   "Intro\nSatsang Diksha Shlok 4\n• verse\n\nVachanamrut\n- ref",
			want: "Intro\n\n\nVachanamrut\n- ref",
		},
		{
			name: "passage at end",
			in:   "Intro\nsatsang diksha shlok 5\n• verse",
			want: "Intro\n",
		},
		{
			name: "nothing to strip",
			in:   "Swamini Vato\n- 1/19 text",
			want: "Swamini Vato\n- 1/19 text",
		},
		{
			name: "two passages",
			in:   "Satsang Diksha Shlok 1\n• a\n\nkeep\n\nSatsang Diksha Shlok 2\n• b",
			want: "\n\nkeep\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripExcluded(tt.in); got != tt.want {
				t.Errorf("StripExcluded() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuestion_Valid(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want bool
	}{
		{"complete", Question{QuestionText: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"}, true},
		{"answer with padding", Question{QuestionText: "q", Options: []string{"seva, suhradbhav", "b"}, CorrectAnswer: " seva, suhradbhav"}, true},
		{"no text", Question{Options: []string{"a", "b"}, CorrectAnswer: "a"}, false},
		{"one option", Question{QuestionText: "q", Options: []string{"a"}, CorrectAnswer: "a"}, false},
		{"answer not offered", Question{QuestionText: "q", Options: []string{"a", "b"}, CorrectAnswer: "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerator_Generate_ClassQuiz(t *testing.T) {
	src := fakeSource{3: "Title: Seva\nSatsang Diksha Shlok 12\n• secret verse\n\nVachanamrut\n- Vach.Sā.1 text"}
	mp := &mockProvider{answer: goodAnswer}
	g := NewGenerator(mp, src, Options{Temperature: 0.3}, nil)

	q, err := g.Generate(context.Background(), "3", KindClassQuiz)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := &Quiz{
		Title: "Class Quiz",
		Questions: []Question{
			{ID: "1", Type: "mcq", QuestionText: "Q one", Options: []string{"a", "b"}, CorrectAnswer: "a", Explanation: "e", SourceReference: "Vach.Sā.1"},
			{ID: "q2", Type: "mcq", QuestionText: "Q two", Options: []string{"x", "y", "z"}, CorrectAnswer: "z"},
		},
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}

	if len(mp.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(mp.requests))
	}
	req := mp.requests[0]
	if !req.JSON {
		t.Error("request should ask for JSON")
	}
	if req.System != SystemInstruction() {
		t.Error("request should carry the system instruction")
	}
	if req.Options.Temperature != 0.3 || req.Options.MaxTokens != 8192 {
		t.Errorf("unexpected options: %+v", req.Options)
	}
	if strings.Contains(req.Prompt, "secret verse") {
		t.Error("Satsang Diksha passage leaked into the prompt")
	}
	for _, want := range []string{"Vach.Sā.1 text", "pool of 10", "Class 3"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerator_Generate_MiniReview(t *testing.T) {
	src := fakeSource{}
	for i := 1; i <= 7; i++ {
		src[i] = "notes for class " + strconv.Itoa(i)
	}
	delete(src, 4)
	mp := &mockProvider{answer: goodAnswer}
	g := NewGenerator(mp, src, DefaultOptions(), nil)

	if _, err := g.Generate(context.Background(), "7", KindMiniReview); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	prompt := mp.requests[0].Prompt
	for _, want := range []string{
		"--- Class 3 Content ---\nnotes for class 3\n----------------",
		"--- Class 7 Content ---",
		"Range: Class 3 to Class 7.",
		"pool of 20",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	for _, unwanted := range []string{"Class 2 Content", "Class 4 Content"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("prompt should not contain %q", unwanted)
		}
	}
}

func TestGenerator_ReviewRange(t *testing.T) {
	g := NewGenerator(&mockProvider{}, fakeSource{}, DefaultOptions(), nil)
	tests := []struct{ class, start, end int }{
		{5, 1, 5},
		{10, 6, 10},
		{2, 1, 2},
	}
	for _, tt := range tests {
		start, end := g.ReviewRange(tt.class)
		if start != tt.start || end != tt.end {
			t.Errorf("ReviewRange(%d) = %d..%d, want %d..%d", tt.class, start, end, tt.start, tt.end)
		}
	}
}

func TestGenerator_Generate_Errors(t *testing.T) {
	src := fakeSource{1: "notes"}

	tests := []struct {
		name    string
		classID string
		kind    Kind
		mp      *mockProvider
		wantErr error
	}{
		{"missing class", "9", KindClassQuiz, &mockProvider{answer: goodAnswer}, ErrNoContent},
		{"review without content", "40", KindMiniReview, &mockProvider{answer: goodAnswer}, ErrNoContent},
		{"no valid questions", "1", KindClassQuiz, &mockProvider{answer: `{"quiz_title":"t","questions":[{"id":"1"}]}`}, ErrNoQuestions},
		{"provider failure", "1", KindClassQuiz, &mockProvider{err: llm.ErrEmptyResponse}, llm.ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.mp, src, DefaultOptions(), nil)
			_, err := g.Generate(context.Background(), tt.classID, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	g := NewGenerator(&mockProvider{answer: "not json"}, src, DefaultOptions(), nil)
	if _, err := g.Generate(context.Background(), "1", KindClassQuiz); err == nil {
		t.Error("expected decode error")
	}
	if _, err := g.Generate(context.Background(), "x", KindMiniReview); err == nil {
		t.Error("expected error for non numeric review id")
	}
	if _, err := g.Generate(context.Background(), "1", Kind("exam")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGenerator_GenerateAll(t *testing.T) {
	src := fakeSource{}
	for i := 1; i <= 5; i++ {
		src[i] = "notes for class " + strconv.Itoa(i)
	}
	mp := &mockProvider{answer: goodAnswer, failFor: "Class 2."}
	store := NewStore(filepath.Join(t.TempDir(), "quizzes"))
	g := NewGenerator(mp, src, DefaultOptions(), nil)

	report, err := g.GenerateAll(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	var written []string
	for _, p := range report.Written {
		written = append(written, filepath.Base(p))
	}
	wantWritten := []string{"class_1.json", "class_3.json", "class_4.json", "class_5.json", "mini_review_5.json"}
	if diff := cmp.Diff(wantWritten, written); diff != "" {
		t.Errorf("written mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"class_quiz 2"}, report.Failed); diff != "" {
		t.Errorf("failed mismatch (-want +got):\n%s", diff)
	}

	q, err := store.Load("5", KindMiniReview)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(q.Questions) != 2 {
		t.Errorf("expected 2 stored questions, got %d", len(q.Questions))
	}
}

func TestGenerator_GenerateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(&mockProvider{answer: goodAnswer}, fakeSource{1: "x"}, DefaultOptions(), nil)
	if _, err := g.GenerateAll(ctx, NewStore(t.TempDir())); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	for _, id := range []string{"1", "../1", ""} {
		if _, err := store.Load(id, KindClassQuiz); !errors.Is(err, ErrNotAvailable) {
			t.Errorf("Load(%q) error = %v, want ErrNotAvailable", id, err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "class_2.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := store.Load("2", KindClassQuiz)
	if err == nil || errors.Is(err, ErrNotAvailable) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "quizzes"))
	in := &Quiz{Title: "Class 1 Quiz", Questions: []Question{{ID: "1", Type: "mcq", QuestionText: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"}}}

	path, err := store.Save("1", KindClassQuiz, in)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "class_1.json" {
		t.Errorf("unexpected path %q", path)
	}

	out, err := store.Load("1", KindClassQuiz)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
