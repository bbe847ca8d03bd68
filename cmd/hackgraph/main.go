// Package main is the entry point for the hackgraph CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hackgraph/hackgraph"
	"github.com/hackgraph/hackgraph/internal/config"
	"github.com/hackgraph/hackgraph/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hackgraph",
		Short: "Hackathon project catalog indexer",
		Long:  `Hackgraph indexes hackathon project submissions into a vector search engine and maintains a similarity graph for related-project recommendations.`,
	}

	cmd.AddCommand(runCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func runCmd() *cobra.Command {
	var (
		envFile string
		// CLI flags override env vars
		dbURL       string
		weaviateURL string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one indexing and similarity pass",
		Long: `Run one full pipeline pass: refresh every project document in the
search engine, recomputing embeddings only where text changed, then rebuild
the similarity graph.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. CLI flags

Environment variables:
  DB_URL                       Database URL (default: sqlite://hackgraph.db)
  WEAVIATE_URL                 Search engine URL (default: http://localhost:8080)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)

  EMBEDDING_ENDPOINT_*         Embedding provider configuration
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier (default: text-embedding-3-small)
    API_KEY                    API key for authentication
    DIMENSION                  Vector dimension (default: 1536)
    TOKEN_BUDGET               Max input tokens (default: 8000)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 5)

  SIMILARITY_*                 Similarity sweep tuning
    THRESHOLD                  Acceptance threshold (default: 0.3)
    TOP_K                      Neighbors per project (default: 30)
    OVERFETCH                  Candidate over-fetch factor (default: 3)
    BATCH_SIZE                 Projects per commit batch (default: 50)
    MAX_CONCURRENT             In-flight vector queries (default: 10)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(envFile, dbURL, weaviateURL, logLevel)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "Database URL (overrides DB_URL env var)")
	cmd.Flags().StringVar(&weaviateURL, "weaviate-url", "", "Search engine URL (overrides WEAVIATE_URL env var)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL env var)")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hackgraph version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}

func runPipeline(envFile, dbURL, weaviateURL, logLevel string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbURL == "" {
		dbURL = cfg.DBURL()
	}
	if weaviateURL == "" {
		weaviateURL = cfg.WeaviateURL()
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel()
	}

	logger := log.New(log.Format(cfg.LogFormat()), logLevel)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("connecting", slog.String("db", maskDBURL(dbURL)), slog.String("weaviate", weaviateURL))

	client, err := hackgraph.New(ctx,
		hackgraph.WithDatabaseURL(dbURL),
		hackgraph.WithWeaviate(weaviateURL),
		hackgraph.WithEmbeddingConfig(cfg.Embedding()),
		hackgraph.WithPipelineConfig(cfg.Pipeline()),
		hackgraph.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	result, err := client.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("documents indexed: %d\n", result.DocumentsIndexed())
	fmt.Printf("edges persisted:   %d\n", result.EdgesPersisted())
	if failures := result.Failures(); len(failures) > 0 {
		fmt.Printf("projects skipped:  %d\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  %s (%s): %v\n", f.ProjectID(), f.Stage(), f.Err())
		}
	}
	return nil
}

// maskDBURL hides credentials in a database URL for logging.
func maskDBURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil || parsed.User == nil {
		return dbURL
	}
	return parsed.Redacted()
}
