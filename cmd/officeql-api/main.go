package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/officeql/officeql/internal/api"
	"github.com/officeql/officeql/internal/api/uistatic"
	"github.com/officeql/officeql/internal/auth"
	"github.com/officeql/officeql/internal/config"
	"github.com/officeql/officeql/internal/executor"
	"github.com/officeql/officeql/internal/llm"
	"github.com/officeql/officeql/internal/nlq"
	"github.com/officeql/officeql/internal/observability"
	"github.com/officeql/officeql/internal/schema"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("officeql-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := sql.Open("sqlite3", sqliteDSN(cfg.Database))
	if err != nil {
		logger.Error("failed to open office database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	completer, cleanup, err := newCompleter(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to initialize language model client", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	pipeline := &nlq.Pipeline{
		Schema:      schema.NewProvider(db),
		Generator:   nlq.NewGenerator(completer),
		Executor:    executor.NewExecutor(db),
		Synthesizer: nlq.NewSynthesizer(completer),
		Logger:      logger,
	}

	deps := api.Dependencies{
		Logger:            logger,
		Pipeline:          pipeline,
		UI:                uistatic.Handler(),
		Readiness:         api.CheckDatabasePing(db),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("db_path", cfg.Database.Path),
			slog.String("ai_provider", cfg.AI.Provider),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func newCompleter(ctx context.Context, cfg config.Config) (llm.Completer, func(), error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
}

func sqliteDSN(cfg config.DatabaseConfig) string {
	values := url.Values{}
	values.Set("_foreign_keys", "on")
	if cfg.BusyTimeout > 0 {
		values.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	}
	return cfg.Path + "?" + values.Encode()
}
