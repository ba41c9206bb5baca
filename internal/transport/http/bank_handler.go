package http

import (
	"crypto/subtle"
	"errors"
	"mime/multipart"
	"net/http"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

const (
	adminTokenHeader = "X-Admin-Token"
	adminUserHeader  = "X-Admin-User"
	uploadField      = "file"
)

// BankHandler serves question file previews and the global bank.
type BankHandler struct {
	service    *app.BankService
	adminToken string
	maxUpload  int64
}

func NewBankHandler(service *app.BankService, adminToken string, maxUpload int64) *BankHandler {
	return &BankHandler{service: service, adminToken: adminToken, maxUpload: maxUpload}
}

type parseResponse struct {
	FileName  string            `json:"fileName"`
	Count     int               `json:"count"`
	Questions []domain.Question `json:"questions"`
}

// Parse normalizes an uploaded file and returns the questions without publishing them.
func (h *BankHandler) Parse(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	questions, err := h.service.Import(r.Context(), name, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, parseResponse{FileName: name, Count: len(questions), Questions: questions})
}

func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	bank, err := h.service.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, bank)
}

// Put replaces the global bank with the uploaded file.
func (h *BankHandler) Put(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	bank, err := h.service.Publish(r.Context(), adminActor(r), name, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, bank)
}

func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), adminActor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"cleared": true})
}

// RequireAdmin rejects requests without the configured admin token.
func (h *BankHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(adminTokenHeader)
		if h.adminToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// readUpload writes the error response itself and reports whether the caller may continue.
func (h *BankHandler) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	maxMemory := int64(32 << 20)
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		maxMemory = h.maxUpload
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, err)
			return nil, "", false
		}
		writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid multipart form"})
		return nil, "", false
	}

	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "file field is required"})
		return nil, "", false
	}
	return file, hdr.Filename, true
}

func adminActor(r *http.Request) string {
	if actor := r.Header.Get(adminUserHeader); actor != "" {
		return actor
	}
	return "admin"
}
