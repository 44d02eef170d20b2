package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
	"github.com/athapong/graphrag-mcp/services"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Searcher embeds a query and returns the top matching chunks, best first.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]RetrievalChunk, error)
}

const vectorSearchQuery = `
CALL db.index.vector.queryNodes($index_name, $limit, $embedding)
YIELD node, score
OPTIONAL MATCH (source:KnowledgeSource)-[:HAS_CHUNK]->(node)
RETURN node, score, source
ORDER BY score DESC
`

// ChunkSearcher runs the similarity query against a vector index inside the
// graph store and converts raw rows into chunk records.
type ChunkSearcher struct {
	store           graph.GraphStore
	embedder        services.EmbeddingClient
	indexName       string
	maxContentChars int
	logger          *logrus.Logger
}

// NewChunkSearcher creates a searcher bound to one vector index
func NewChunkSearcher(store graph.GraphStore, embedder services.EmbeddingClient, indexName string, maxContentChars int) *ChunkSearcher {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &ChunkSearcher{
		store:           store,
		embedder:        embedder,
		indexName:       indexName,
		maxContentChars: maxContentChars,
		logger:          logger,
	}
}

// Search implements Searcher. Results keep the index's descending score
// order; no secondary re-ranking happens here.
func (s *ChunkSearcher) Search(ctx context.Context, query string, limit int) ([]RetrievalChunk, error) {
	vector, err := embedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = 1
	}

	embedding := make([]float64, len(vector))
	for i, v := range vector {
		embedding[i] = float64(v)
	}

	records, err := s.store.ExecuteQuery(ctx, vectorSearchQuery, map[string]interface{}{
		"index_name": s.indexName,
		"limit":      limit,
		"embedding":  embedding,
	})
	if err != nil {
		metrics.GraphQueryErrors.WithLabelValues("vector_search").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearch, err)
	}

	chunks := make([]RetrievalChunk, 0, len(records))
	for _, record := range records {
		node, ok := record["node"].AsNode()
		if !ok {
			continue
		}

		score, _ := record["score"].AsFloat()
		chunk := RetrievalChunk{
			ChunkID:  stringProp(node.Properties, "chunk_id"),
			Score:    score,
			Content:  truncateContent(stringProp(node.Properties, "content"), s.maxContentChars),
			Metadata: parseMetadata(node.Properties["metadata_json"]),
		}

		if source, ok := record["source"].AsNode(); ok {
			chunk.SourceID = stringProp(source.Properties, "id")
			chunk.SourceType = stringProp(source.Properties, "type")
			chunk.SourceDescription = stringProp(source.Properties, "description")
		}

		chunks = append(chunks, chunk)
	}

	s.logger.WithFields(logrus.Fields{
		"index":  s.indexName,
		"limit":  limit,
		"chunks": len(chunks),
	}).Debug("Vector search completed")

	return chunks, nil
}

// embedQuery turns the query into a single vector, shared by all searcher
// backends.
func embedQuery(ctx context.Context, embedder services.EmbeddingClient, query string) ([]float32, error) {
	vectors, err := embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		metrics.EmbeddingErrors.Inc()
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		metrics.EmbeddingErrors.Inc()
		return nil, fmt.Errorf("%w: backend returned no vectors", ErrEmbedding)
	}
	if len(vectors[0]) == 0 {
		metrics.EmbeddingErrors.Inc()
		return nil, fmt.Errorf("%w: backend returned empty vector", ErrEmbedding)
	}
	return vectors[0], nil
}

// parseMetadata decodes the JSON-encoded metadata property of a chunk.
// Malformed metadata degrades to an empty map; one bad fragment must not
// fail a whole retrieval.
func parseMetadata(raw interface{}) map[string]interface{} {
	switch v := raw.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		return v
	case string:
		if v == "" {
			return map[string]interface{}{}
		}
		var metadata map[string]interface{}
		if err := json.Unmarshal([]byte(v), &metadata); err != nil || metadata == nil {
			return map[string]interface{}{}
		}
		return metadata
	default:
		return map[string]interface{}{}
	}
}

// truncateContent caps chunk content at maxChars characters. Content that is
// itself a valid JSON document is passed through untouched so downstream
// consumers never receive a truncated, unparseable payload.
func truncateContent(content string, maxChars int) string {
	if content == "" || maxChars <= 0 {
		return content
	}

	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}

	leading := strings.TrimLeftFunc(content, unicode.IsSpace)
	if strings.HasPrefix(leading, "{") || strings.HasPrefix(leading, "[") {
		if gjson.Valid(content) {
			return content
		}
	}

	if maxChars <= 3 {
		return string(runes[:maxChars])
	}
	prefix := strings.TrimRightFunc(string(runes[:maxChars-3]), unicode.IsSpace)
	return prefix + "..."
}

func stringProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
