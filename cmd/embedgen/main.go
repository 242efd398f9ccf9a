// cmd/embedgen/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/embedder"
	"github.com/QuietTern/embedgen/internal/storage"
	"github.com/QuietTern/embedgen/internal/types"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// version is set by goreleaser via ldflags
var version = "dev"

// embedgen reads one text from stdin and writes its embedding vector to
// stdout as a JSON array. Empty input produces []. The exit code is 0 even
// when the model provider is down: those runs take the hash fallback path.
func main() {
	dim := flag.Int("dim", vectorizer.DefaultDim, "Vector length of the mock and fallback paths")
	provider := flag.String("provider", "ollama", "Embedding provider: ollama, openai")
	model := flag.String("model", "", "Provider model name")
	ollamaURL := flag.String("ollama-url", "", "Ollama API URL")
	timeout := flag.Duration("timeout", 30*time.Second, "Provider request timeout")
	store := flag.String("store", "", "Persist the result: path to a SQLite database (optional)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("embedgen %s\n", version)
		return
	}

	// Load .env file if present (for EMBEDDINGS_MODE, OPENAI_API_KEY)
	_ = godotenv.Load()

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("Failed to read stdin: %v", err)
	}

	// Mode is resolved once here and passed in; nothing downstream reads
	// the environment again.
	mode := dispatch.ResolveMode(os.Getenv(dispatch.EnvMode))

	var emb embedder.Embedder
	if mode == dispatch.ModeReal {
		emb, err = embedder.New(embedder.Config{
			Provider:  *provider,
			Model:     *model,
			OllamaURL: *ollamaURL,
			Timeout:   *timeout,
			OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		})
		if err != nil {
			// A provider that cannot be constructed is treated like a
			// provider that cannot be reached: the run still succeeds on
			// the fallback path.
			log.Printf("embedding provider unavailable, using hash fallback: %v", err)
			emb = nil
		}
	}

	ctx := context.Background()
	disp := dispatch.New(mode, emb, *dim)
	res := disp.Generate(ctx, string(text))

	if *store != "" {
		if err := persist(ctx, *store, res); err != nil {
			log.Printf("Warning: failed to persist record: %v", err)
		}
	}

	out, err := json.Marshal(res.Vector)
	if err != nil {
		log.Fatalf("Failed to encode vector: %v", err)
	}
	fmt.Println(string(out))
}

// persist saves the result to a local SQLite store. Empty results are
// never persisted.
func persist(ctx context.Context, path string, res dispatch.Result) error {
	if res.Path == dispatch.PathEmpty {
		return nil
	}

	st, err := storage.New(ctx, storage.Config{
		Driver:     "sqlite",
		SQLitePath: path,
		Dim:        len(res.Vector),
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.Close()

	rec := types.Record{
		TextHash: vectorizer.TextHash(res.Text),
		Text:     res.Text,
		Source:   res.Path.Source(),
		Model:    res.Model,
	}

	if _, err := st.Save(ctx, rec, res.Vector); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}
