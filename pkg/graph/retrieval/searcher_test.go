package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSearcherMapsRows(t *testing.T) {
	store := fixtureStore("")
	searcher := NewChunkSearcher(store, &stubEmbedder{}, "knowledge_chunks", 0)

	chunks, err := searcher.Search(context.Background(), "salt", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, "formulations::0001", chunk.ChunkID)
	assert.Equal(t, 0.42, chunk.Score)
	assert.Equal(t, "approved", chunk.Metadata["status"])
	assert.Equal(t, "formulations", chunk.SourceID)
	assert.Equal(t, "structured", chunk.SourceType)
	assert.Equal(t, "Formulation knowledge chunks", chunk.SourceDescription)

	require.Len(t, store.calls, 1)
	params := store.calls[0].params
	assert.Equal(t, "knowledge_chunks", params["index_name"])
	assert.Equal(t, 3, params["limit"])
	assert.Equal(t, []float64{0, 1, 2, 3}, params["embedding"])
}

func TestChunkSearcherClampsLimit(t *testing.T) {
	store := fixtureStore("")
	searcher := NewChunkSearcher(store, &stubEmbedder{}, "knowledge_chunks", 0)

	_, err := searcher.Search(context.Background(), "salt", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls[0].params["limit"])
}

func TestChunkSearcherMalformedMetadataDegradesToEmptyMap(t *testing.T) {
	store := fixtureStore("")
	store.respond = withMetadata(store.respond, "{not json")
	searcher := NewChunkSearcher(store, &stubEmbedder{}, "knowledge_chunks", 0)

	chunks, err := searcher.Search(context.Background(), "salt", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Metadata)
}

func TestChunkSearcherEmbeddingFailures(t *testing.T) {
	store := fixtureStore("")

	t.Run("backend error", func(t *testing.T) {
		embedder := &stubEmbedder{err: errors.New("connection refused")}
		searcher := NewChunkSearcher(store, embedder, "knowledge_chunks", 0)
		_, err := searcher.Search(context.Background(), "salt", 3)
		assert.ErrorIs(t, err, ErrEmbedding)
	})

	t.Run("no vectors", func(t *testing.T) {
		embedder := &stubEmbedder{vectors: [][]float32{}}
		searcher := NewChunkSearcher(store, embedder, "knowledge_chunks", 0)
		_, err := searcher.Search(context.Background(), "salt", 3)
		assert.ErrorIs(t, err, ErrEmbedding)
	})

	t.Run("empty vector", func(t *testing.T) {
		embedder := &stubEmbedder{vectors: [][]float32{{}}}
		searcher := NewChunkSearcher(store, embedder, "knowledge_chunks", 0)
		_, err := searcher.Search(context.Background(), "salt", 3)
		assert.ErrorIs(t, err, ErrEmbedding)
	})
}

func TestChunkSearcherWrapsStoreFailure(t *testing.T) {
	store := &stubGraphStore{
		respond: func(string, map[string]interface{}) ([]graph.Record, error) {
			return nil, errors.New("no such index")
		},
	}
	searcher := NewChunkSearcher(store, &stubEmbedder{}, "knowledge_chunks", 0)

	_, err := searcher.Search(context.Background(), "salt", 3)
	assert.ErrorIs(t, err, ErrSimilaritySearch)
}

func TestTruncateContent(t *testing.T) {
	t.Run("short content untouched", func(t *testing.T) {
		assert.Equal(t, "short", truncateContent("short", 300))
	})

	t.Run("zero budget disables truncation", func(t *testing.T) {
		long := strings.Repeat("x", 5000)
		assert.Equal(t, long, truncateContent(long, 0))
	})

	t.Run("long content gets ellipsis within budget", func(t *testing.T) {
		long := strings.Repeat("abcdef ", 100) // 700 chars
		got := truncateContent(long, 300)
		assert.LessOrEqual(t, len(got), 300)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("trailing whitespace stripped before marker", func(t *testing.T) {
		content := "word " + strings.Repeat("x", 100)
		got := truncateContent(content, 8)
		assert.Equal(t, "word...", got)
	})

	t.Run("tiny budget truncates without marker", func(t *testing.T) {
		assert.Equal(t, "abc", truncateContent("abcdefgh", 3))
		assert.Equal(t, "ab", truncateContent("abcdefgh", 2))
	})

	t.Run("valid JSON object skips truncation", func(t *testing.T) {
		payload := mustJSON(map[string]interface{}{"id": "x", "notes": strings.Repeat("y", 400)})
		assert.Equal(t, payload, truncateContent(payload, 32))
	})

	t.Run("valid JSON array skips truncation", func(t *testing.T) {
		payload := `[` + strings.Repeat(`"item",`, 50) + `"last"]`
		assert.Equal(t, payload, truncateContent(payload, 32))
	})

	t.Run("malformed JSON-looking content is truncated", func(t *testing.T) {
		broken := `{"id": "x", "notes": "` + strings.Repeat("y", 400)
		got := truncateContent(broken, 32)
		assert.LessOrEqual(t, len(got), 32)
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}
