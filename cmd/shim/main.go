// cmd/shim/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/client"
	"github.com/QuietTern/embedgen/internal/shim"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	apiURL := flag.String("api-url", "", "Central API URL (required)")
	flag.Parse()

	// Check for env var if flag not set
	if *apiURL == "" {
		*apiURL = os.Getenv("EMBEDGEN_API_URL")
	}

	if *apiURL == "" {
		log.Fatal("API URL required: use --api-url or EMBEDGEN_API_URL environment variable")
	}

	// Create API client
	apiClient := client.New(*apiURL)

	// Create shim handler
	handler := shim.NewHandler(apiClient)

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "embedgen",
		Version: version,
	}, nil)

	// Register tools
	shim.Register(server, handler)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Printf("Starting embedgen shim for %s...", *apiURL)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
