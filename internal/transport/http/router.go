package http

import (
	"net/http"
	"time"

	"trivia-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the services and limits the HTTP surface needs.
type RouterConfig struct {
	Quizzes        *app.QuizService
	Banks          *app.BankService
	AdminToken     string
	CORSOrigins    []string
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", adminTokenHeader, adminUserHeader},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	bankHandler := NewBankHandler(cfg.Banks, cfg.AdminToken, cfg.MaxUploadBytes)
	quizHandler := NewQuizHandler(cfg.Quizzes)
	wsHandler := NewWSHandler(cfg.Quizzes)
	bankWS := NewBankWSHandler(cfg.Banks)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/questions/parse", bankHandler.Parse)
		api.Get("/bank", bankHandler.Get)

		api.Group(func(admin chi.Router) {
			admin.Use(bankHandler.RequireAdmin)
			admin.Put("/bank", bankHandler.Put)
			admin.Delete("/bank", bankHandler.Delete)
		})

		api.Group(func(play chi.Router) {
			play.Use(middleware.Timeout(15 * time.Second))
			play.Post("/quizzes", quizHandler.Start)
			play.Get("/quizzes/{id}/results/{userID}", quizHandler.Result)
			play.Get("/users/{id}/results", quizHandler.UserResults)
			play.Get("/leaderboard", quizHandler.Leaderboard)
		})
	})

	r.Get("/ws", wsHandler.ServeWS)
	r.Get("/ws/bank", bankWS.ServeWS)
	return r
}
