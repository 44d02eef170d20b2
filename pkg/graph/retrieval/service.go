package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
	"github.com/sirupsen/logrus"
)

// Error kinds surfaced by the retrieval core. Every kind except ErrEmptyQuery
// carries its root cause further down the chain.
var (
	ErrEmptyQuery       = errors.New("query text must not be empty")
	ErrEmbedding        = errors.New("embedding failed")
	ErrSimilaritySearch = errors.New("similarity search failed")
	ErrStructuredLookup = errors.New("structured lookup failed")
)

// RetrievalError is the single error kind callers of Retrieve handle. The
// wrapped cause stays reachable through errors.Is / errors.As.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("retrieval failed: %v", e.Err)
	}
	return fmt.Sprintf("retrieval failed for %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Config collects the construction-time settings of the retrieval service.
// Everything is read once; there is no hot reload.
type Config struct {
	// IndexName is the vector index the similarity query runs against.
	IndexName string
	// MetadataIDKeys overrides the entity-identifier allow-list.
	MetadataIDKeys []string
	// CacheMaxEntries bounds the result cache; zero disables caching.
	CacheMaxEntries int
	// CacheTTL ages out cached results; non-positive means never.
	CacheTTL time.Duration
	// MaxContentChars caps chunk content; zero disables truncation.
	MaxContentChars int
}

// Service composes query embedding, vector similarity search, entity
// linkage, structured graph expansion and result caching into one atomic
// Retrieve call.
type Service struct {
	searcher Searcher
	linker   *EntityLinker
	loader   *StructuredContextLoader
	cache    *ResultCache
	logger   *logrus.Logger
}

// NewService wires the retrieval components around the given searcher and
// store. The cache instance is owned by the service and lives as long as it.
func NewService(searcher Searcher, store graph.GraphStore, config Config) *Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Service{
		searcher: searcher,
		linker:   NewEntityLinker(config.MetadataIDKeys),
		loader:   NewStructuredContextLoader(store),
		cache:    NewResultCache(config.CacheMaxEntries, config.CacheTTL),
		logger:   logger,
	}
}

// Retrieve returns the top limit chunks for query plus structured context
// for the entities they reference, bounded by structuredLimit relationship
// rows. A cache hit short-circuits all backend calls; a miss performs one
// embedding call and at most two graph-store calls.
func (s *Service) Retrieve(ctx context.Context, query string, limit, structuredLimit int) (*HybridRetrievalResult, error) {
	canonical := strings.TrimSpace(query)
	if canonical == "" {
		return nil, &RetrievalError{Err: ErrEmptyQuery}
	}

	if cached, ok := s.cache.Get(canonical); ok {
		metrics.RetrievalRequests.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	timer := time.Now()

	chunks, err := s.searcher.Search(ctx, canonical, limit)
	if err != nil {
		return nil, s.fail(canonical, timer, err)
	}

	candidateIDs := s.linker.CollectCandidateIDs(chunks)

	var entities []StructuredEntityContext
	if len(candidateIDs) > 0 {
		entities, err = s.loader.Load(ctx, candidateIDs, structuredLimit)
		if err != nil {
			return nil, s.fail(canonical, timer, err)
		}
	}

	result := &HybridRetrievalResult{
		Query:              canonical,
		Chunks:             chunks,
		StructuredEntities: entities,
	}
	s.cache.Set(canonical, result)

	metrics.RetrievalRequests.WithLabelValues("success").Inc()
	metrics.RetrievalDuration.WithLabelValues("success").Observe(time.Since(timer).Seconds())

	s.logger.WithFields(logrus.Fields{
		"chunks":   len(result.Chunks),
		"entities": len(result.StructuredEntities),
	}).Info("Hybrid retrieval completed")

	return result, nil
}

func (s *Service) fail(query string, started time.Time, err error) error {
	metrics.RetrievalRequests.WithLabelValues("error").Inc()
	metrics.RetrievalDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
	s.logger.WithError(err).Warn("Hybrid retrieval failed")
	return &RetrievalError{Query: query, Err: err}
}
