package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"vibegrapher/internal/api"
	"vibegrapher/internal/config"
	"vibegrapher/internal/database"
	"vibegrapher/internal/events"
	"vibegrapher/internal/llm/client"
	"vibegrapher/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("VIBEGRAPHER_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ProjectsDir, 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}

	db, err := database.Init(database.Config{Path: cfg.DatabasePath})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := buildClient(ctx, cfg, cfg.GeneratorModel)
	if err != nil {
		return fmt.Errorf("generator model: %w", err)
	}
	reviewer, err := buildClient(ctx, cfg, cfg.ReviewerModel)
	if err != nil {
		return fmt.Errorf("reviewer model: %w", err)
	}

	hub := events.NewHub()
	svcs := services.NewServices(db, cfg.ProjectsDir, hub, generator, reviewer, cfg.MaxAttempts)
	server := api.NewServer(svcs, hub)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":     cfg.ListenAddr,
			"provider": cfg.Provider,
		}).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildClient constructs an LLM client for the configured provider.
func buildClient(ctx context.Context, cfg *config.Config, model string) (*client.LLMClient, error) {
	key := cfg.APIKey(cfg.Provider)
	if key == "" {
		return nil, fmt.Errorf("no API key configured for provider %s", cfg.Provider)
	}

	switch cfg.Provider {
	case "openai":
		return client.NewOpenAIClient(ctx, key, client.OpenAIModelOptions{Model: model})
	case "anthropic":
		return client.NewClaudeClient(ctx, key, client.ClaudeModelOptions{Model: model})
	case "gemini":
		return client.NewGeminiClient(ctx, key, client.GeminiModelOptions{Model: model})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
