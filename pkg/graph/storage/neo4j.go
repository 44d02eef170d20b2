package storage

import (
	"context"
	"fmt"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
)

// Neo4jStore implements the graph.GraphStore interface using Neo4j
type Neo4jStore struct {
	driver neo4j.Driver
	uri    string
}

// NewNeo4jStore creates a new Neo4j store instance
func NewNeo4jStore(uri, username, password string) (*Neo4jStore, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %v", err)
	}

	return &Neo4jStore{
		driver: driver,
		uri:    uri,
	}, nil
}

// VerifyConnectivity checks that the store is reachable
func (s *Neo4jStore) VerifyConnectivity() error {
	return s.driver.VerifyConnectivity()
}

// Close releases the underlying driver
func (s *Neo4jStore) Close() error {
	if s.driver != nil {
		return s.driver.Close()
	}
	return nil
}

// ExecuteQuery implements graph.GraphStore. Each driver record is converted
// into a typed row so callers match on variant tags instead of driver types.
func (s *Neo4jStore) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) ([]graph.Record, error) {
	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.Run(query, params)
	if err != nil {
		return nil, err
	}

	records := make([]graph.Record, 0)
	for result.Next() {
		record := result.Record()
		row := make(graph.Record, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = convertValue(record.Values[i])
		}
		records = append(records, row)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// convertValue maps driver values onto the closed variant set
func convertValue(value interface{}) graph.Value {
	switch v := value.(type) {
	case nil:
		return graph.NullValue()
	case neo4j.Node:
		return graph.NodeValue(convertNode(v))
	case neo4j.Relationship:
		return graph.RelationshipValue(convertRelationship(v))
	case neo4j.Path:
		path := graph.Path{
			Nodes:         make([]graph.Node, 0, len(v.Nodes)),
			Relationships: make([]graph.Relationship, 0, len(v.Relationships)),
		}
		for _, node := range v.Nodes {
			path.Nodes = append(path.Nodes, convertNode(node))
		}
		for _, rel := range v.Relationships {
			path.Relationships = append(path.Relationships, convertRelationship(rel))
		}
		return graph.PathValue(path)
	default:
		return graph.ScalarValue(v)
	}
}

func convertNode(node neo4j.Node) graph.Node {
	return graph.Node{
		ID:         node.Id,
		Labels:     append([]string(nil), node.Labels...),
		Properties: node.Props,
	}
}

func convertRelationship(rel neo4j.Relationship) graph.Relationship {
	return graph.Relationship{
		ID:         rel.Id,
		StartID:    rel.StartId,
		EndID:      rel.EndId,
		Type:       rel.Type,
		Properties: rel.Props,
	}
}
