package retrieval

import (
	"github.com/athapong/graphrag-mcp/pkg/graph"
)

// DirectionOut is the only relationship direction loaded by structured
// context expansion.
const DirectionOut = "OUT"

// RetrievalChunk is one indexed fragment matched by similarity search.
// Immutable once constructed; built only by a Searcher.
type RetrievalChunk struct {
	ChunkID           string                 `json:"chunk_id"`
	Score             float64                `json:"score"`
	Content           string                 `json:"content"`
	Metadata          map[string]interface{} `json:"metadata"`
	SourceID          string                 `json:"source_id,omitempty"`
	SourceType        string                 `json:"source_type,omitempty"`
	SourceDescription string                 `json:"source_description,omitempty"`
}

// Clone returns a deep copy of the chunk.
func (c RetrievalChunk) Clone() RetrievalChunk {
	clone := c
	clone.Metadata = graph.CloneProperties(c.Metadata)
	return clone
}

// StructuredRelationship is one outgoing edge from a linked entity.
type StructuredRelationship struct {
	Type       string                 `json:"type"`
	Direction  string                 `json:"direction"`
	Target     graph.Node             `json:"target"`
	Properties map[string]interface{} `json:"properties"`
}

// Clone returns a deep copy of the relationship.
func (r StructuredRelationship) Clone() StructuredRelationship {
	clone := r
	clone.Target = r.Target.Clone()
	clone.Properties = graph.CloneProperties(r.Properties)
	return clone
}

// StructuredEntityContext is one graph entity plus its immediate outgoing
// neighborhood, in discovery order.
type StructuredEntityContext struct {
	Node          graph.Node               `json:"node"`
	Relationships []StructuredRelationship `json:"relationships"`
}

// Clone returns a deep copy of the entity context.
func (e StructuredEntityContext) Clone() StructuredEntityContext {
	clone := StructuredEntityContext{Node: e.Node.Clone()}
	if e.Relationships != nil {
		clone.Relationships = make([]StructuredRelationship, len(e.Relationships))
		for i, rel := range e.Relationships {
			clone.Relationships[i] = rel.Clone()
		}
	}
	return clone
}

// HybridRetrievalResult is the unit of work cached and returned to callers.
type HybridRetrievalResult struct {
	Query              string                    `json:"query"`
	Chunks             []RetrievalChunk          `json:"chunks"`
	StructuredEntities []StructuredEntityContext `json:"structured_entities"`
}

// Clone returns a deep copy of the result. The cache deep-copies at both
// boundaries so no caller ever shares mutable state with another caller or
// with the cached original.
func (r *HybridRetrievalResult) Clone() *HybridRetrievalResult {
	if r == nil {
		return nil
	}
	clone := &HybridRetrievalResult{Query: r.Query}
	if r.Chunks != nil {
		clone.Chunks = make([]RetrievalChunk, len(r.Chunks))
		for i, chunk := range r.Chunks {
			clone.Chunks[i] = chunk.Clone()
		}
	}
	if r.StructuredEntities != nil {
		clone.StructuredEntities = make([]StructuredEntityContext, len(r.StructuredEntities))
		for i, entity := range r.StructuredEntities {
			clone.StructuredEntities[i] = entity.Clone()
		}
	}
	return clone
}
