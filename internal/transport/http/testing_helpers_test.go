package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/importer"
	"trivia-quiz-service/internal/infra/memory"
)

const testAdminToken = "s3cret"

const sampleCSV = `Question,Option A,Option B,Option C,Option D,Answer,Subject,Explanation
What is the capital of France?,Paris,Rome,Madrid,Berlin,A,Geography,Paris has been the capital since 987.
What is 2 + 2?,3,4,5,6,B,Math,
`

type testEnv struct {
	server  *httptest.Server
	banks   *app.BankService
	quizzes *app.QuizService
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()
	bankStore := memory.NewBankCache(memory.NewBankStore(), time.Minute)
	banks := app.NewBankService(importer.NewNormalizer(importer.DefaultOptions()), bankStore, memory.NewBankNotifier())
	quizzes := app.NewQuizService(memory.NewSessionStore(time.Minute), memory.NewQuizRepository(time.Minute), bankStore).
		WithResults(memory.NewResultStore())

	server := httptest.NewServer(NewRouter(RouterConfig{
		Quizzes:        quizzes,
		Banks:          banks,
		AdminToken:     testAdminToken,
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: maxUpload,
	}))
	t.Cleanup(server.Close)
	return &testEnv{server: server, banks: banks, quizzes: quizzes}
}

func (e *testEnv) upload(t *testing.T, method, path, filename, content, token string) (*http.Response, envelope) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(method, e.server.URL+path, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set(adminTokenHeader, token)
	}
	return e.do(t, req)
}

func (e *testEnv) request(t *testing.T, method, path, body, token string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(adminTokenHeader, token)
	}
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func decodeField(t *testing.T, data json.RawMessage, field string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	v, _ := m[field].(string)
	if v == "" {
		t.Fatalf("missing %s in %s", field, data)
	}
	return v
}
