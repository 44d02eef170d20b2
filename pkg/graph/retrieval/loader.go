package retrieval

import (
	"context"
	"fmt"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
	"github.com/sirupsen/logrus"
)

const nodesByIDQuery = `
MATCH (n)
WHERE n.id IN $entity_ids
RETURN n
`

const outgoingRelationshipsQuery = `
MATCH (n)-[r]->(m)
WHERE n.id IN $entity_ids
RETURN n.id AS source_id, r, m
ORDER BY source_id
LIMIT $limit
`

// StructuredContextLoader loads graph nodes by identity together with their
// outgoing relationships, bounded by a shared relationship-row ceiling.
type StructuredContextLoader struct {
	store  graph.GraphStore
	logger *logrus.Logger
}

// NewStructuredContextLoader creates a loader over the given store
func NewStructuredContextLoader(store graph.GraphStore) *StructuredContextLoader {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &StructuredContextLoader{store: store, logger: logger}
}

// Load resolves the candidate ids into entity contexts. Ids with no matching
// node are dropped silently; stale references are expected. Output order
// follows the candidate-id order, not the store's row order, and entities
// whose node was found appear even with zero relationship rows.
func (l *StructuredContextLoader) Load(ctx context.Context, entityIDs []string, structuredLimit int) ([]StructuredEntityContext, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	if structuredLimit < 1 {
		structuredLimit = 1
	}

	nodeRecords, err := l.store.ExecuteQuery(ctx, nodesByIDQuery, map[string]interface{}{
		"entity_ids": entityIDs,
	})
	if err != nil {
		metrics.GraphQueryErrors.WithLabelValues("node_lookup").Inc()
		return nil, fmt.Errorf("%w: node lookup: %v", ErrStructuredLookup, err)
	}

	lookup := make(map[string]*StructuredEntityContext)
	foundIDs := make([]string, 0, len(nodeRecords))
	for _, record := range nodeRecords {
		node, ok := record["n"].AsNode()
		if !ok {
			continue
		}
		nodeID := stringProp(node.Properties, "id")
		if nodeID == "" {
			continue
		}
		if _, exists := lookup[nodeID]; !exists {
			foundIDs = append(foundIDs, nodeID)
		}
		lookup[nodeID] = &StructuredEntityContext{Node: *node}
	}

	if len(lookup) == 0 {
		return nil, nil
	}

	relRecords, err := l.store.ExecuteQuery(ctx, outgoingRelationshipsQuery, map[string]interface{}{
		"entity_ids": foundIDs,
		"limit":      structuredLimit,
	})
	if err != nil {
		metrics.GraphQueryErrors.WithLabelValues("relationship_lookup").Inc()
		return nil, fmt.Errorf("%w: relationship lookup: %v", ErrStructuredLookup, err)
	}

	for _, record := range relRecords {
		sourceID, ok := record["source_id"].AsString()
		if !ok {
			continue
		}
		entity, ok := lookup[sourceID]
		if !ok {
			continue
		}

		rel, relOK := record["r"].AsRelationship()
		target, targetOK := record["m"].AsNode()
		if !relOK || !targetOK {
			continue
		}

		relType := rel.Type
		if relType == "" {
			relType = stringProp(rel.Properties, "type")
		}
		if relType == "" {
			relType = "UNKNOWN"
		}

		entity.Relationships = append(entity.Relationships, StructuredRelationship{
			Type:       relType,
			Direction:  DirectionOut,
			Target:     *target,
			Properties: rel.Properties,
		})
	}

	contexts := make([]StructuredEntityContext, 0, len(lookup))
	for _, entityID := range entityIDs {
		if entity, ok := lookup[entityID]; ok {
			contexts = append(contexts, *entity)
		}
	}

	l.logger.WithFields(logrus.Fields{
		"candidates": len(entityIDs),
		"entities":   len(contexts),
	}).Debug("Structured context loaded")

	return contexts, nil
}
