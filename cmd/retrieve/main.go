package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/athapong/graphrag-mcp/pkg/graph/retrieval"
	"github.com/athapong/graphrag-mcp/pkg/graph/storage"
	"github.com/athapong/graphrag-mcp/services"
	"github.com/athapong/graphrag-mcp/tools"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	query           = flag.String("query", "", "Query to retrieve knowledge for")
	limit           = flag.Int("limit", 5, "Maximum number of chunks to return")
	structuredLimit = flag.Int("structured-limit", 25, "Maximum relationship rows for linked entities")
	envFile         = flag.String("env", ".env", "Path to environment file")
	asJSON          = flag.Bool("json", false, "Print the raw result as JSON instead of grounding context text")
	logLevel        = flag.String("log-level", "warn", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *query == "" {
		logger.Fatal("Query must be specified")
	}

	if err := godotenv.Load(*envFile); err != nil {
		logger.Debugf("No env file loaded from %s: %v", *envFile, err)
	}

	store, err := storage.NewNeo4jStore(
		envDefault("NEO4J_URI", "bolt://localhost:7687"),
		os.Getenv("NEO4J_USERNAME"),
		os.Getenv("NEO4J_PASSWORD"),
	)
	if err != nil {
		logger.Fatalf("Failed to create graph store: %v", err)
	}
	defer store.Close()

	if err := store.VerifyConnectivity(); err != nil {
		logger.Fatalf("Graph store unreachable: %v", err)
	}

	embedder := services.NewOpenAIEmbeddingClient(
		services.DefaultOpenAIClient(),
		os.Getenv("EMBEDDING_MODEL"),
	)

	config := retrieval.Config{
		IndexName:       envDefault("KNOWLEDGE_CHUNK_INDEX", "knowledge_chunks"),
		MaxContentChars: 2000,
	}
	searcher := retrieval.NewChunkSearcher(store, embedder, config.IndexName, config.MaxContentChars)
	service := retrieval.NewService(searcher, store, config)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := service.Retrieve(ctx, *query, *limit, *structuredLimit)
	if err != nil {
		logger.Fatalf("Retrieval failed: %v", err)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			logger.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	fmt.Println(tools.RenderGroundingContext(result))
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
