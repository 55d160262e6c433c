// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/dupfinder"
	"github.com/starford/ansuz/internal/embedding"
	"github.com/starford/ansuz/internal/formatter"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notesvc"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/trainlog"
	"github.com/starford/ansuz/internal/vecindex"
	"github.com/starford/ansuz/internal/vecsync"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. MCP mode logs to stderr because
	// stdout carries the protocol.
	logOut := os.Stdout
	if app.mcp {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("collection_path", cfg.Collection.Path),
		slog.String("llm_base_url", cfg.LLM.BaseURL),
		slog.String("embedding_provider", cfg.Embedding.Provider),
		slog.String("index_backend", cfg.Index.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the collection database.
	db, err := cardstore.Open(cfg.Collection.Path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer db.Close()

	// Build the embedding provider.
	var embedder embedding.Embedder
	switch cfg.Embedding.Provider {
	case EmbeddingOpenAI:
		embedder, err = embedding.NewOpenAI(embedding.OpenAIConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
		if err != nil {
			return fmt.Errorf("init embedder: %w", err)
		}
	default:
		embedder = embedding.NewFake(cfg.Embedding.Dimension)
	}

	// Build the vector index repository.
	var repo vecindex.Repository
	switch cfg.Index.Backend {
	case IndexQdrant:
		repo = vecindex.NewQdrant(vecindex.QdrantConfig{
			URL:        cfg.Index.URL,
			APIKey:     cfg.Index.APIKey,
			Collection: cfg.Index.Name,
			Timeout:    cfg.Index.Timeout,
		}, embedder)
	default:
		repo = vecindex.NewMemory(embedder)
	}

	// Load the collection into the domain model and bulk-index it.
	hostNotes, err := db.AllNotes(cfg.Collection.Deck)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	col := models.NewCollection(cfg.Collection.Deck)
	for _, n := range hostNotes {
		col.Add(cardstore.ToDomain(n))
	}
	finder, err := dupfinder.New(ctx, col, repo)
	if err != nil {
		return fmt.Errorf("index collection: %w", err)
	}
	logger.Info("Collection indexed", slog.Int("notes", col.Len()))

	// Completion client and formatter.
	client := llm.New(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Mode:        llm.Mode(cfg.LLM.Mode),
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		TopK:        cfg.LLM.TopK,
		MinP:        cfg.LLM.MinP,
		Timeout:     cfg.LLM.Timeout,
	})
	fmtsvc := formatter.New(client)

	var tlog *trainlog.Writer
	if cfg.Training.Path != "" {
		tlog = trainlog.NewWriter(cfg.Training.Path)
	}

	svc := notesvc.New(db, fmtsvc, finder, tlog, cfg.Collection.Deck)

	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker for collection sync notifications.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	// SSE endpoint.
	r.Get("/api/events", broker.ServeHTTP)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Re-index when the host writes to the collection.
	g.Go(func() error {
		return vecsync.Watch(gCtx, db, repo, cfg.Collection.Path, cfg.Collection.Deck, logger, broker.PublishSyncEvent)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
