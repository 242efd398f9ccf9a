package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/cache"
	"github.com/QuietTern/embedgen/internal/config"
	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/embedder"
	"github.com/QuietTern/embedgen/internal/service"
	"github.com/QuietTern/embedgen/internal/storage"
	"github.com/QuietTern/embedgen/internal/tools"
	"github.com/QuietTern/embedgen/internal/types"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")

	// Storage flags (override the config file)
	storageDriver := flag.String("storage-driver", "", "Storage driver: sqlite, postgres, mongodb")
	dbPath := flag.String("db-path", "", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI (mongodb driver)")
	mongoDatabase := flag.String("mongodb-database", "", "MongoDB database name (mongodb driver)")

	// Embedder flags (override the config file)
	ollamaURL := flag.String("ollama-url", "", "Ollama API URL")
	model := flag.String("model", "", "Embedding model name")
	dim := flag.Int("dim", 0, "Vector length of the mock and fallback paths")

	// CLI mode flags
	listFlag := flag.Bool("list", false, "List recent records (CLI mode)")
	limitFlag := flag.Int("limit", 5, "Limit for list operation")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("embedgen-server %s\n", version)
		return
	}

	// Load .env file if present (for EMBEDDINGS_MODE, OPENAI_API_KEY)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over file and environment
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

	mode := dispatch.ResolveMode(cfg.Mode)

	// Mock vectors are hash-sized; keep the store column in step unless
	// the operator pinned a storage dimension.
	if cfg.Storage.Dim == 0 && mode == dispatch.ModeMock {
		cfg.Storage.Dim = cfg.Dim
	}

	ctx := context.Background()

	// CLI mode - list records
	if *listFlag {
		if err := runList(ctx, cfg.Storage, *limitFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Initialize storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

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

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "embedgen",
		Version: version,
	}, nil)

	// Register tools
	tools.Register(server, svc)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Printf("Starting embedgen MCP server (mode=%s)...", mode)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runList(ctx context.Context, cfg storage.Config, limit int) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	records, err := store.List(ctx, types.ListOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		fmt.Printf("[%s/%s] %s\n", r.Source, r.Model, r.Text)
	}
	return nil
}
