package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpadapter "vpatgen/internal/adapters/http"
	llmadapter "vpatgen/internal/adapters/llm"
	pg "vpatgen/internal/adapters/postgres"
	"vpatgen/internal/config"
	"vpatgen/internal/ports"
	batchsvc "vpatgen/internal/services/batch"
	reportsvc "vpatgen/internal/services/report"
)

func main() {
	_ = godotenv.Load()

	cfg, cfgErr := config.Load()

	log, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Warn("config", zap.Error(cfgErr))
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.IssueProvider = db
	var _ ports.CriterionProvider = db
	var _ ports.DraftRowStore = db

	invoker, err := llmadapter.New(llmadapter.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxRetries:  cfg.MaxRetries,
		CallTimeout: cfg.CallTimeout,
	}, log.Named("llm"))
	if err != nil {
		log.Fatal("model client", zap.Error(err))
	}

	reports := reportsvc.New(invoker, log.Named("report"))
	batch := batchsvc.New(db, db, db, log.Named("batch"))

	srv := httpadapter.New(reports, batch, log.Named("http"))
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
