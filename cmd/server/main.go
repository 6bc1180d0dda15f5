// Package main is the entrypoint for the ytsummary API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/ai"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/api"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/handler"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/config"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/store"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/transcript"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config; fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"ai_provider", cfg.AI.Provider,
		"store_driver", cfg.Store.Driver,
		"env", cfg.Server.Env,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the saved-analysis store (migrations run inside Open)
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	slog.Info("store ready", "driver", cfg.Store.Driver)

	// 3. Create AI provider
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	// 4. Build router with dependencies
	fetcher := transcript.NewYouTubeFetcher(cfg.Transcript.BaseURL, cfg.Transcript.Language, cfg.Transcript.Timeout)
	router := newRouter(cfg, st, provider, fetcher)

	// 5. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Analysis calls can run up to the inference timeout.
		WriteTimeout: cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newRouter wires every endpoint to its backing component.
func newRouter(cfg *config.Config, st store.Store, provider models.AIProvider, fetcher transcript.Fetcher) http.Handler {
	retriever := transcript.NewRetriever(fetcher)
	generator := ai.NewGenerator(provider, cfg.AI.InferenceTimeout, cfg.AI.MaxTranscriptChars)

	return api.NewRouter(api.Dependencies{
		HealthHandler:     handler.NewHealthHandler(map[string]handler.Pinger{"store": st}),
		TranscriptHandler: handler.NewTranscriptHandler(retriever),
		AnalyzeHandler:    handler.NewAnalyzeHandler(generator),
		SaveHandler:       handler.NewSaveHandler(st),
		ListHandler:       handler.NewListHandler(st),
		GetHandler:        handler.NewGetHandler(st),
		UpdateHandler:     handler.NewUpdateHandler(st),
		DeleteHandler:     handler.NewDeleteHandler(st),
	})
}
