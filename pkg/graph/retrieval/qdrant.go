package retrieval

import (
	"context"
	"fmt"

	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
	"github.com/athapong/graphrag-mcp/services"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"
)

// QdrantSearcher is the alternate similarity backend for deployments that
// keep chunk vectors in Qdrant instead of a graph-store vector index. Chunk
// rows are reconstructed from point payload fields.
type QdrantSearcher struct {
	client          *qdrant.Client
	embedder        services.EmbeddingClient
	collection      string
	maxContentChars int
	logger          *logrus.Logger
}

// NewQdrantSearcher creates a searcher over one Qdrant collection
func NewQdrantSearcher(client *qdrant.Client, embedder services.EmbeddingClient, collection string, maxContentChars int) *QdrantSearcher {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &QdrantSearcher{
		client:          client,
		embedder:        embedder,
		collection:      collection,
		maxContentChars: maxContentChars,
		logger:          logger,
	}
}

// Search implements Searcher
func (s *QdrantSearcher) Search(ctx context.Context, query string, limit int) ([]RetrievalChunk, error) {
	vector, err := embedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = 1
	}
	topK := uint64(limit)

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &topK,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		metrics.GraphQueryErrors.WithLabelValues("vector_search").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearch, err)
	}

	chunks := make([]RetrievalChunk, 0, len(points))
	for _, hit := range points {
		payload := hit.Payload
		chunk := RetrievalChunk{
			ChunkID:           payloadString(payload, "chunk_id"),
			Score:             float64(hit.Score),
			Content:           truncateContent(payloadString(payload, "content"), s.maxContentChars),
			Metadata:          parseMetadata(payloadString(payload, "metadata_json")),
			SourceID:          payloadString(payload, "source_id"),
			SourceType:        payloadString(payload, "source_type"),
			SourceDescription: payloadString(payload, "source_description"),
		}
		chunks = append(chunks, chunk)
	}

	s.logger.WithFields(logrus.Fields{
		"collection": s.collection,
		"limit":      limit,
		"chunks":     len(chunks),
	}).Debug("Qdrant search completed")

	return chunks, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	return value.GetStringValue()
}
