package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openailib "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/neighborly-labs/neighborly/internal/api/handlers"
	"github.com/neighborly-labs/neighborly/internal/config"
	"github.com/neighborly-labs/neighborly/internal/database"
	"github.com/neighborly-labs/neighborly/internal/jobs"
	"github.com/neighborly-labs/neighborly/internal/openai"
	"github.com/neighborly-labs/neighborly/internal/repository"
	"github.com/neighborly-labs/neighborly/internal/server"
	"github.com/neighborly-labs/neighborly/internal/service"
	"github.com/neighborly-labs/neighborly/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the neighborly API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("NEIGHBORLY_OPENAI_API_KEY is required: the assistant cannot start without its embedding and generation models")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	postRepo := repository.NewPostRepository(pool)
	helpRequestRepo := repository.NewHelpRequestRepository(pool)
	chatMemoryRepo := repository.NewChatMemoryRepository(pool)

	openaiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openailib.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
	})

	corpusSvc := service.NewCorpusService(postRepo, helpRequestRepo, openaiClient, cfg.RetrieveTopK)

	// Readiness gate: serve nothing until the corpus is embedded. A partial
	// or empty index would silently produce ungrounded answers.
	log.Println("building corpus snapshot...")
	if err := corpusSvc.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to build corpus snapshot: %w", err)
	}

	var refreshWorker *jobs.RefreshWorker
	if cfg.SnapshotRefresh > 0 {
		refresher := jobs.NewSnapshotRefresher(corpusSvc)
		refreshWorker = jobs.NewRefreshWorker(refresher, cfg.SnapshotRefresh)
		go refreshWorker.Start(ctx)
	}

	uuidGen := &service.DefaultUUIDGenerator{}

	assistantSvc := service.NewAssistantServiceWithTimeout(corpusSvc, chatMemoryRepo, openaiClient, cfg.ModelTimeout)
	insightsSvc := service.NewInsightsServiceWithTimeout(postRepo, openaiClient, cfg.ModelTimeout)

	assistantHandler := handlers.NewAssistantHandler(assistantSvc, chatMemoryRepo, corpusSvc)
	postHandler := handlers.NewPostHandler(postRepo, insightsSvc, insightsSvc, uuidGen)
	helpRequestHandler := handlers.NewHelpRequestHandler(helpRequestRepo, uuidGen)

	router := server.NewRouter(server.RouterConfig{
		AssistantHandler:   assistantHandler,
		PostHandler:        postHandler,
		HelpRequestHandler: helpRequestHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
