package retrieval

import (
	"testing"

	"github.com/athapong/graphrag-mcp/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridRetrievalResultCloneIsDeep(t *testing.T) {
	original := &HybridRetrievalResult{
		Query: "salt",
		Chunks: []RetrievalChunk{{
			ChunkID: "chunk::0001",
			Metadata: map[string]interface{}{
				"id":     "form:1",
				"tags":   []interface{}{"sodium", "savory"},
				"nested": map[string]interface{}{"depth": 2},
			},
		}},
		StructuredEntities: []StructuredEntityContext{{
			Node: graph.Node{
				Labels:     []string{"Formulation"},
				Properties: map[string]interface{}{"id": "form:1", "name": "Formulation A"},
			},
			Relationships: []StructuredRelationship{{
				Type:      "CONTAINS",
				Direction: DirectionOut,
				Target: graph.Node{
					Properties: map[string]interface{}{"id": "ingredient:1", "name": "Salt"},
				},
				Properties: map[string]interface{}{"percentage": 5.0},
			}},
		}},
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Chunks[0].Metadata["id"] = "mutated"
	clone.Chunks[0].Metadata["tags"].([]interface{})[0] = "mutated"
	clone.Chunks[0].Metadata["nested"].(map[string]interface{})["depth"] = 99
	clone.StructuredEntities[0].Node.Properties["name"] = "mutated"
	clone.StructuredEntities[0].Node.Labels[0] = "Mutated"
	clone.StructuredEntities[0].Relationships[0].Target.Properties["name"] = "mutated"
	clone.StructuredEntities[0].Relationships[0].Properties["percentage"] = 0.0

	assert.Equal(t, "form:1", original.Chunks[0].Metadata["id"])
	assert.Equal(t, "sodium", original.Chunks[0].Metadata["tags"].([]interface{})[0])
	assert.Equal(t, 2, original.Chunks[0].Metadata["nested"].(map[string]interface{})["depth"])
	assert.Equal(t, "Formulation A", original.StructuredEntities[0].Node.Properties["name"])
	assert.Equal(t, "Formulation", original.StructuredEntities[0].Node.Labels[0])
	assert.Equal(t, "Salt", original.StructuredEntities[0].Relationships[0].Target.Properties["name"])
	assert.Equal(t, 5.0, original.StructuredEntities[0].Relationships[0].Properties["percentage"])
}

func TestHybridRetrievalResultCloneNil(t *testing.T) {
	var result *HybridRetrievalResult
	assert.Nil(t, result.Clone())
}

func TestHybridRetrievalResultClonePreservesNilSlices(t *testing.T) {
	original := &HybridRetrievalResult{Query: "empty"}
	clone := original.Clone()
	assert.Nil(t, clone.Chunks)
	assert.Nil(t, clone.StructuredEntities)
}
