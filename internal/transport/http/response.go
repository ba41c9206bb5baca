package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-quiz-service/internal/domain"
)

type apiResponse struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeOK(w http.ResponseWriter, code int, data interface{}) {
	writeJSON(w, code, apiResponse{OK: true, Data: data})
}

// writeError maps domain errors onto status codes. Unknown errors are hidden from clients.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		msg = "internal error"
	}
	writeJSON(w, code, apiResponse{OK: false, Error: msg})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrDecode),
		errors.Is(err, domain.ErrNoValidQuestions),
		errors.Is(err, domain.ErrNoMatchingQuestions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBankNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyAnswer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
