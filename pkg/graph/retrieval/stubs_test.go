package retrieval

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/athapong/graphrag-mcp/pkg/graph"
)

type stubEmbedder struct {
	calls   int
	vectors [][]float32
	err     error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.vectors != nil {
		return s.vectors, nil
	}
	return [][]float32{{0, 1, 2, 3}}, nil
}

type graphCall struct {
	query  string
	params map[string]interface{}
}

type stubGraphStore struct {
	calls   []graphCall
	respond func(query string, params map[string]interface{}) ([]graph.Record, error)
}

func (s *stubGraphStore) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) ([]graph.Record, error) {
	s.calls = append(s.calls, graphCall{query: query, params: params})
	if s.respond == nil {
		return nil, nil
	}
	return s.respond(query, params)
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// fixtureStore answers the three retrieval queries with a formulation chunk
// linked to one entity with one outgoing CONTAINS relationship.
func fixtureStore(chunkContent string) *stubGraphStore {
	return &stubGraphStore{
		respond: func(query string, params map[string]interface{}) ([]graph.Record, error) {
			switch {
			case strings.Contains(query, "db.index.vector.queryNodes"):
				content := chunkContent
				if content == "" {
					content = mustJSON(map[string]interface{}{"id": "form:1", "name": "Formulation A"})
				}
				return []graph.Record{{
					"node": graph.NodeValue(graph.Node{
						Labels: []string{"KnowledgeChunk"},
						Properties: map[string]interface{}{
							"chunk_id": "formulations::0001",
							"content":  content,
							"metadata_json": mustJSON(map[string]interface{}{
								"id":     "form:1",
								"status": "approved",
								"source": "formulations",
							}),
						},
					}),
					"score": graph.ScalarValue(0.42),
					"source": graph.NodeValue(graph.Node{
						Labels: []string{"KnowledgeSource"},
						Properties: map[string]interface{}{
							"id":          "formulations",
							"type":        "structured",
							"description": "Formulation knowledge chunks",
						},
					}),
				}}, nil

			case strings.Contains(query, "MATCH (n)-[r]->(m)"):
				return []graph.Record{{
					"source_id": graph.ScalarValue("form:1"),
					"r": graph.RelationshipValue(graph.Relationship{
						Type:       "CONTAINS",
						Properties: map[string]interface{}{"percentage": 5.0},
					}),
					"m": graph.NodeValue(graph.Node{
						Labels:     []string{"Ingredient"},
						Properties: map[string]interface{}{"id": "ingredient:1", "name": "Salt"},
					}),
				}}, nil

			case strings.Contains(query, "WHERE n.id IN"):
				return []graph.Record{{
					"n": graph.NodeValue(graph.Node{
						Labels:     []string{"Formulation"},
						Properties: map[string]interface{}{"id": "form:1", "name": "Formulation A"},
					}),
				}}, nil
			}
			return nil, nil
		},
	}
}

func fixtureService(store *stubGraphStore, embedder *stubEmbedder, config Config) *Service {
	if config.IndexName == "" {
		config.IndexName = "knowledge_chunks"
	}
	searcher := NewChunkSearcher(store, embedder, config.IndexName, config.MaxContentChars)
	return NewService(searcher, store, config)
}
