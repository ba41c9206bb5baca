package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/importer"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Durable bank and result history: postgres when configured, otherwise process memory.
	var (
		backend memory.BankBackend   = memory.NewBankStore()
		results app.ResultRepository = memory.NewResultStore()
	)
	if pool != nil {
		backend = pgstore.NewBankStore(pool)
		results = pgstore.NewResultStore(pool)
	}

	var (
		banks    app.BankRepository
		notifier app.BankNotifier
		quizRepo app.QuizRepository
		store    app.SessionRepository
	)
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, backend, redisTTL)
		notifier = redisinfra.NewBankNotifier(redisClient)
		quizRepo = redisinfra.NewQuizRepository(redisClient, quizTTL)
		store = redisinfra.NewSessionStore(redisClient, quizTTL)
	} else {
		banks = memory.NewBankCache(backend, redisTTL)
		notifier = memory.NewBankNotifier()
		quizRepo = memory.NewQuizRepository(quizTTL)
		store = memory.NewSessionStore(quizTTL)
	}

	normalizer := importer.NewNormalizer(cfg.ImporterOptions())
	bankService := app.NewBankService(normalizer, banks, notifier)
	quizService := app.NewQuizService(store, quizRepo, banks).
		WithDefaultQuestionCount(cfg.Quiz.DefaultQuestionCount).
		WithPresets(memory.NewPresetLoader()).
		WithResults(results)

	if cfg.Admin.Token == "" {
		log.Printf("admin token not set; bank publishing is disabled")
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Quizzes:        quizService,
			Banks:          bankService,
			AdminToken:     cfg.Admin.Token,
			CORSOrigins:    cfg.Server.CORSOrigins,
			MaxUploadBytes: cfg.Import.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
