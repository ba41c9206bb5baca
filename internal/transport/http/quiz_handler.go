package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/importer"

	"github.com/go-chi/chi/v5"
)

// QuizHandler starts quizzes and reports results over REST. Play happens on /ws.
type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// questionView is what players see; the answer key stays server side.
type questionView struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Options    []string          `json:"options"`
	Subject    domain.Subject    `json:"subject,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
}

type quizView struct {
	ID         string            `json:"id"`
	Subject    domain.Subject    `json:"subject,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Questions  []questionView    `json:"questions"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func newQuizView(quiz domain.Quiz) quizView {
	view := quizView{
		ID:         quiz.ID,
		Subject:    quiz.Subject,
		Difficulty: quiz.Difficulty,
		Questions:  make([]questionView, 0, len(quiz.Questions)),
		CreatedAt:  quiz.CreatedAt,
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, questionView{
			ID:         q.ID,
			Text:       q.Text,
			Options:    q.Options,
			Subject:    q.Subject,
			Difficulty: q.Difficulty,
		})
	}
	return view
}

func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var cfg domain.QuizConfig
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid json body"})
			return
		}
	}

	// accept labels like "Geography" or "easy" as well as the tags
	if subject, ok := importer.CanonicalSubject(string(cfg.Subject)); ok {
		cfg.Subject = subject
	}
	if difficulty, ok := importer.CanonicalDifficulty(string(cfg.Difficulty)); ok {
		cfg.Difficulty = difficulty
	}

	quiz, err := h.service.StartQuiz(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, newQuizView(quiz))
}

func (h *QuizHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, result)
}

// UserResults lists a user's finished quizzes, newest first.
func (h *QuizHandler) UserResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.UserResults(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, results)
}

// Leaderboard is the all-time board. ?limit= caps both lists.
func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}
	board, err := h.service.HallOfFame(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, board)
}
