package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"complyscan.app/engine/common/id"
	"complyscan.app/engine/common/llm"
	"complyscan.app/engine/core/config"
	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/knowledge"
)

// analyze runs one document through the engine and prints the report. It
// reads the document from the file given as the first argument, or from
// stdin when no argument is given.
func main() {
	// Load .env file (ignore error if not found)
	_ = godotenv.Load()

	live := flag.Bool("live", false, "fetch live regulatory data before analyzing")
	flag.Parse()

	ctx := context.Background()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := id.Init(1); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize id generator: %v\n", err)
		os.Exit(1)
	}

	document, err := readDocument(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read document: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(document) == "" {
		fmt.Fprintln(os.Stderr, "document is empty")
		os.Exit(1)
	}

	var fetcher knowledge.Fetcher
	if *live {
		fetcher = knowledge.NewHTTPFetcher(knowledge.FetcherConfig{
			BaseURL:    cfg.Knowledge.SourceURL,
			HTTPClient: &http.Client{Timeout: cfg.Knowledge.FetchTimeout},
		})
	}
	store := knowledge.NewStore(knowledge.StoreConfig{Fetcher: fetcher})
	snapshot := store.Acquire(ctx)

	var backend llm.Client
	if cfg.LLM.Enabled() {
		backend, err = llm.New(llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create llm client: %v\n", err)
			os.Exit(1)
		}
	}

	eng, err := engine.New(backend, store, engine.Config{
		MergeMode:        engine.MergeMode(cfg.Analysis.MergeMode),
		MaxDocumentChars: cfg.Analysis.MaxDocumentChars,
		MaxTokens:        cfg.Analysis.MaxTokens,
		BackendTimeout:   cfg.Analysis.BackendTimeout,
		DSARTimelineRule: cfg.Analysis.DSARTimelineRule,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		os.Exit(1)
	}

	result := eng.Analyze(ctx, document)
	score := engine.Score(len(result.WeakPoints))

	source := "frozen snapshot"
	if snapshot.IsLiveData {
		source = "live data fetched " + snapshot.FetchedAt.Format("2006-01-02 15:04")
	}
	backendLabel := "rule-based only"
	if backend != nil {
		backendLabel = backend.Model()
	}

	fmt.Printf("Compliance score: %d/100\n", score)
	fmt.Printf("Knowledge base:   %s\n", source)
	fmt.Printf("Analysis backend: %s\n\n", backendLabel)

	if len(result.WeakPoints) == 0 {
		fmt.Println("No weak points detected.")
	} else {
		fmt.Printf("Weak points (%d):\n", len(result.WeakPoints))
		for _, wp := range result.WeakPoints {
			fmt.Printf("  - %s\n", wp.String())
		}
	}

	if len(result.ActionPlan) > 0 {
		fmt.Printf("\nAction plan (%d):\n", len(result.ActionPlan))
		for _, action := range result.ActionPlan {
			fmt.Printf("  - %s\n", indentContinuations(action.String()))
		}
	}
}

func readDocument(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// indentContinuations keeps multi-line plan entries aligned under their bullet.
func indentContinuations(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
