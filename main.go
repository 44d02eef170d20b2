package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
	"github.com/athapong/graphrag-mcp/pkg/graph/retrieval"
	"github.com/athapong/graphrag-mcp/pkg/graph/storage"
	"github.com/athapong/graphrag-mcp/prompts"
	"github.com/athapong/graphrag-mcp/services"
	"github.com/athapong/graphrag-mcp/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qdrant/go-client/qdrant"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	enableSSE := flag.Bool("sse", false, "Enable SSE server")
	sseAddr := flag.String("sse-addr", ":8080", "Address for SSE server to listen on")
	sseBasePath := flag.String("sse-base-path", "/mcp", "Base path for SSE endpoints")
	metricsAddr := flag.String("metrics-addr", "", "Address for Prometheus metrics endpoint (empty disables)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Error loading env file %s: %v\n", *envFile, err)
	}

	store, err := storage.NewNeo4jStore(
		envDefault("NEO4J_URI", "bolt://localhost:7687"),
		os.Getenv("NEO4J_USERNAME"),
		os.Getenv("NEO4J_PASSWORD"),
	)
	if err != nil {
		log.Fatalf("Failed to create graph store: %v", err)
	}
	defer store.Close()

	if err := store.VerifyConnectivity(); err != nil {
		log.Fatalf("Graph store unreachable: %v", err)
	}

	embedder := services.NewOpenAIEmbeddingClient(
		services.DefaultOpenAIClient(),
		os.Getenv("EMBEDDING_MODEL"),
	)

	config := retrievalConfigFromEnv()
	searcher, err := buildSearcher(store, embedder, config)
	if err != nil {
		log.Fatalf("Failed to build vector searcher: %v", err)
	}
	service := retrieval.NewService(searcher, store, config)

	mcpServer := server.NewMCPServer(
		"graphrag-mcp",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
	)
	tools.RegisterKnowledgeTools(mcpServer, service)
	prompts.RegisterKnowledgePrompts(mcpServer)

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	if *enableSSE || os.Getenv("ENABLE_SSE") == "true" {
		sseServer := server.NewSSEServer(mcpServer, *sseBasePath)

		go func() {
			log.Printf("Starting SSE server on %s with base path %s", *sseAddr, *sseBasePath)
			if err := sseServer.Start(*sseAddr); err != nil {
				log.Fatalf("Failed to start SSE server: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sseServer.Shutdown(ctx); err != nil {
			log.Printf("Error during SSE server shutdown: %v", err)
		}
		log.Println("SSE server shutdown complete")
	} else {
		if err := server.ServeStdio(mcpServer); err != nil {
			panic(fmt.Sprintf("Server error: %v", err))
		}
	}
}

func retrievalConfigFromEnv() retrieval.Config {
	return retrieval.Config{
		IndexName:       envDefault("KNOWLEDGE_CHUNK_INDEX", "knowledge_chunks"),
		MetadataIDKeys:  splitList(os.Getenv("KNOWLEDGE_ID_KEYS")),
		CacheMaxEntries: envInt("KNOWLEDGE_CACHE_MAX_ENTRIES", 128),
		CacheTTL:        time.Duration(envInt("KNOWLEDGE_CACHE_TTL_SECONDS", 300)) * time.Second,
		MaxContentChars: envInt("KNOWLEDGE_CONTENT_MAX_CHARS", 2000),
	}
}

// buildSearcher selects the similarity backend. Structured context always
// comes from the graph store; only the vector half is switchable.
func buildSearcher(store graph.GraphStore, embedder services.EmbeddingClient, config retrieval.Config) (retrieval.Searcher, error) {
	backend := envDefault("KNOWLEDGE_VECTOR_BACKEND", "neo4j")
	switch backend {
	case "neo4j":
		return retrieval.NewChunkSearcher(store, embedder, config.IndexName, config.MaxContentChars), nil
	case "qdrant":
		client, err := newQdrantClient()
		if err != nil {
			return nil, err
		}
		collection := envDefault("QDRANT_COLLECTION", "knowledge_chunks")
		return retrieval.NewQdrantSearcher(client, embedder, collection, config.MaxContentChars), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

func newQdrantClient() (*qdrant.Client, error) {
	host := os.Getenv("QDRANT_HOST")
	port := os.Getenv("QDRANT_PORT")
	apiKey := os.Getenv("QDRANT_API_KEY")
	if host == "" || port == "" {
		return nil, fmt.Errorf("QDRANT_HOST and QDRANT_PORT must be set for the qdrant backend")
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("failed to parse QDRANT_PORT: %v", err)
	}

	return qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   portInt,
		APIKey: apiKey,
		UseTLS: apiKey != "",
	})
}

func serveMetrics(addr string) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateSystemMetrics()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("Starting metrics endpoint on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("Metrics endpoint error: %v", err)
	}
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
