package graph

import (
	"context"
)

// Node represents a node record returned by a graph store. Identity for
// application purposes lives in Properties["id"], not in the store-internal
// numeric id.
type Node struct {
	ID         int64                  `json:"-"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	clone := Node{
		ID:         n.ID,
		Properties: CloneProperties(n.Properties),
	}
	if n.Labels != nil {
		clone.Labels = append([]string(nil), n.Labels...)
	}
	return clone
}

// Relationship represents a relationship record returned by a graph store.
type Relationship struct {
	ID         int64                  `json:"-"`
	StartID    int64                  `json:"-"`
	EndID      int64                  `json:"-"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
}

// Clone returns a deep copy of the relationship.
func (r Relationship) Clone() Relationship {
	clone := r
	clone.Properties = CloneProperties(r.Properties)
	return clone
}

// Path represents a path record returned by a graph store.
type Path struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// ValueKind tags the closed set of variants a result cell can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindScalar
	KindNode
	KindRelationship
	KindPath
)

// Value is one cell of a result row. Exactly one of the variant fields is
// populated, selected by Kind.
type Value struct {
	Kind         ValueKind
	Scalar       interface{}
	Node         *Node
	Relationship *Relationship
	Path         *Path
}

// NullValue returns the null variant.
func NullValue() Value {
	return Value{Kind: KindNull}
}

// ScalarValue wraps a plain value.
func ScalarValue(v interface{}) Value {
	if v == nil {
		return NullValue()
	}
	return Value{Kind: KindScalar, Scalar: v}
}

// NodeValue wraps a node record.
func NodeValue(n Node) Value {
	return Value{Kind: KindNode, Node: &n}
}

// RelationshipValue wraps a relationship record.
func RelationshipValue(r Relationship) Value {
	return Value{Kind: KindRelationship, Relationship: &r}
}

// PathValue wraps a path record.
func PathValue(p Path) Value {
	return Value{Kind: KindPath, Path: &p}
}

// AsNode returns the node variant, if that is what the cell holds.
func (v Value) AsNode() (*Node, bool) {
	if v.Kind != KindNode || v.Node == nil {
		return nil, false
	}
	return v.Node, true
}

// AsRelationship returns the relationship variant, if that is what the cell holds.
func (v Value) AsRelationship() (*Relationship, bool) {
	if v.Kind != KindRelationship || v.Relationship == nil {
		return nil, false
	}
	return v.Relationship, true
}

// AsString returns the scalar variant rendered as a string.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindScalar {
		return "", false
	}
	s, ok := v.Scalar.(string)
	return s, ok
}

// AsFloat returns the scalar variant as a float64, converting integer scalars.
func (v Value) AsFloat() (float64, bool) {
	if v.Kind != KindScalar {
		return 0, false
	}
	switch n := v.Scalar.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Record is one result row keyed by the query's return aliases.
type Record map[string]Value

// GraphStore executes parameterized queries against a graph database and
// returns typed rows.
type GraphStore interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) ([]Record, error)
}

// CloneProperties deep-copies a property map, including nested maps and
// slices produced by JSON decoding.
func CloneProperties(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	clone := make(map[string]interface{}, len(props))
	for key, value := range props {
		clone[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return CloneProperties(v)
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = cloneValue(item)
		}
		return items
	case []string:
		return append([]string(nil), v...)
	case []float64:
		return append([]float64(nil), v...)
	default:
		return v
	}
}
