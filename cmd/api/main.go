// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/QuietTern/embedgen/internal/api"
	"github.com/QuietTern/embedgen/internal/cache"
	"github.com/QuietTern/embedgen/internal/config"
	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/embedder"
	"github.com/QuietTern/embedgen/internal/service"
	"github.com/QuietTern/embedgen/internal/storage"
	"github.com/QuietTern/embedgen/internal/types"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")

	// Server flags
	addr := flag.String("addr", "", "Server address (overrides config)")

	// Storage flags
	storageDriver := flag.String("storage-driver", "", "Storage driver: sqlite, postgres, mongodb")
	dbPath := flag.String("db-path", "", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI")
	mongoDatabase := flag.String("mongodb-database", "", "MongoDB database name")

	// Embedder flags
	ollamaURL := flag.String("ollama-url", "", "Ollama API URL")
	model := flag.String("model", "", "Embedding model name")
	dim := flag.Int("dim", 0, "Vector length of the mock and fallback paths")

	// Migrate flag
	migrateOnly := flag.Bool("migrate", false, "Run migrations and exit")

	// Rate limiting flags
	rateLimit := flag.Int("rate-limit", -1, "Requests per minute per IP (0 to disable, overrides config)")

	// CORS flags
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins (empty to disable)")

	flag.Parse()

	// Load .env file if present (for EMBEDDINGS_MODE, OPENAI_API_KEY)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over file and environment
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if *dbPath != "" {
		cfg.Storage.SQLitePath = *dbPath
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *mongoURI != "" {
		cfg.Storage.MongoDBURI = *mongoURI
	}
	if *mongoDatabase != "" {
		cfg.Storage.MongoDBDatabase = *mongoDatabase
	}
	if *ollamaURL != "" {
		cfg.Embedder.OllamaURL = *ollamaURL
	}
	if *model != "" {
		cfg.Embedder.Model = *model
	}
	if *dim > 0 {
		cfg.Dim = *dim
	}
	if *rateLimit >= 0 {
		cfg.Server.RateLimit = *rateLimit
	}
	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.Server.CORSOrigins = origins
	}

	mode := dispatch.ResolveMode(cfg.Mode)

	// Mock vectors are hash-sized; keep the store column in step unless
	// the operator pinned a storage dimension.
	if cfg.Storage.Dim == 0 && mode == dispatch.ModeMock {
		cfg.Storage.Dim = cfg.Dim
	}

	ctx := context.Background()

	// Initialize storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// If migrate-only, exit now
	if *migrateOnly {
		log.Println("Migrations complete")
		return
	}

	// Initialize the provider, wrapped in the embedding cache when one is
	// configured. The mock path needs neither.
	var emb embedder.Embedder
	if mode == dispatch.ModeReal {
		emb, err = embedder.New(cfg.Embedder)
		if err != nil {
			log.Fatalf("Failed to initialize embedder: %v", err)
		}

		c, err := cache.New(cfg.Cache)
		if err != nil {
			log.Fatalf("Failed to initialize cache: %v", err)
		}
		if c != nil {
			defer c.Close()
			emb = embedder.NewCached(emb, c)
		}
	}

	disp := dispatch.New(mode, emb, cfg.Dim)

	// Create service
	svc := service.New(store, disp)

	// Create handlers
	handlers := api.NewHandlers(svc)

	// Set health check to verify storage connectivity
	handlers.SetHealthCheck(func() error {
		// Simple connectivity check - list with limit 1
		_, err := store.List(context.Background(), types.ListOpts{Limit: 1})
		return err
	})

	// Setup router
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)
	r.Use(api.Metrics)

	// Rate limiting (if enabled)
	if cfg.Server.RateLimit > 0 {
		limiter := api.NewRateLimiter(cfg.Server.RateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	// CORS (if enabled)
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(api.CORSMiddleware(cfg.Server.CORSOrigins))
	}

	// Routes
	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/embeddings", handlers.Embed)
		r.Post("/embeddings/search", handlers.Search)
		r.Get("/records", handlers.List)
		r.Get("/records/{id}", handlers.Get)
		r.Delete("/records/{id}", handlers.Delete)
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}

		close(done)
	}()

	// Start server
	log.Printf("Starting API server on %s (mode=%s)", cfg.Server.Addr, mode)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	fmt.Println("Server stopped")
}
