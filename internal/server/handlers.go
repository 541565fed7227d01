package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/roboco-io/shlokstudy/internal/catalog"
	"github.com/roboco-io/shlokstudy/internal/feedback"
	"github.com/roboco-io/shlokstudy/internal/ir"
	"github.com/roboco-io/shlokstudy/internal/quiz"
)

type entryView struct {
	Key          string `json:"key"`
	DisplayLabel string `json:"display_label"`
	Body         string `json:"body"`
	AudioURL     string `json:"audio_url,omitempty"`
}

type groupView struct {
	Topic   string      `json:"topic,omitempty"`
	Entries []entryView `json:"entries"`
}

type sectionView struct {
	Name   string      `json:"name"`
	Groups []groupView `json:"groups"`
}

type shlokResponse struct {
	ClassID            string        `json:"class_id"`
	Number             int           `json:"number"`
	Label              string        `json:"label,omitempty"`
	PrimaryText        string        `json:"primary_text,omitempty"`
	OriginalScriptText string        `json:"original_script_text,omitempty"`
	Sections           []sectionView `json:"sections"`
	Prev               *int          `json:"prev,omitempty"`
	Next               *int          `json:"next,omitempty"`
	NextIsQuiz         bool          `json:"next_is_quiz"`
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	meta, err := s.catalog.Metadata(r.Context())
	if err != nil {
		s.logger.Error("failed to index classes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load classes")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleShlok(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	number, err := strconv.Atoi(chi.URLParam(r, "shlokID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shlok id")
		return
	}

	page, err := s.catalog.Shlok(classID, number)
	switch {
	case errors.Is(err, catalog.ErrClassNotFound), errors.Is(err, catalog.ErrShlokNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to load shlok", zap.String("class", classID), zap.Int("shlok", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load shlok")
		return
	}

	writeJSON(w, http.StatusOK, s.shlokView(page))
}

func (s *Server) shlokView(page *catalog.Page) shlokResponse {
	b := page.Block
	resp := shlokResponse{
		ClassID:            page.ClassID,
		Number:             b.Number,
		Label:              b.Label,
		PrimaryText:        s.policy.Sanitize(b.PrimaryText),
		OriginalScriptText: s.policy.Sanitize(b.OriginalScriptText),
		Sections:           []sectionView{},
		Prev:               page.Prev,
		Next:               page.Next,
		NextIsQuiz:         page.NextIsQuiz,
	}

	b.Sections.Each(func(name string, entries []ir.ReferenceEntry) {
		sec := sectionView{Name: name, Groups: []groupView{}}
		for _, g := range ir.GroupByTopic(entries) {
			gv := groupView{Topic: g.Topic, Entries: make([]entryView, 0, len(g.Entries))}
			for _, e := range g.Entries {
				ev := entryView{Key: e.Key, DisplayLabel: e.DisplayLabel, Body: e.Body}
				ev.AudioURL = s.audioURL(e)
				gv.Entries = append(gv.Entries, ev)
			}
			sec.Groups = append(sec.Groups, gv)
		}
		resp.Sections = append(resp.Sections, sec)
	})
	return resp
}

// audioURL resolves by the de-duplicated key first, so a repeated reference
// can carry its own recording, then falls back to the plain label.
func (s *Server) audioURL(e ir.ReferenceEntry) string {
	if u, ok := s.audio.URL(e.Key); ok {
		return u
	}
	if e.DisplayLabel != e.Key {
		if u, ok := s.audio.URL(e.DisplayLabel); ok {
			return u
		}
	}
	return ""
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClassID json.RawMessage `json:"classId"`
		Type    string          `json:"type"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	classID := rawID(req.ClassID)
	if classID == "" {
		writeError(w, http.StatusBadRequest, "classId is required")
		return
	}
	kind, err := quiz.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := s.quizzes.Load(classID, kind)
	switch {
	case errors.Is(err, quiz.ErrNotAvailable):
		writeError(w, http.StatusNotFound, "Quiz content not available yet. Please contact admin to generate.")
		return
	case err != nil:
		s.logger.Error("failed to load quiz", zap.String("class", classID), zap.String("kind", string(kind)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// rawID accepts the class id as a JSON string or number.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		s.logger.Error("feedback submitted but no store is configured")
		writeError(w, http.StatusInternalServerError, "feedback storage is not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, feedback.MaxPayloadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.feedback.Append(r.Context(), body)
	switch {
	case errors.Is(err, feedback.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to save feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save feedback")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": entry.ID})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
