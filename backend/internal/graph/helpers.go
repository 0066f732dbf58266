package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ============================================================================
// Record extraction helpers
// ============================================================================

func nodeFromDB(n dbtype.Node) Node {
	props := make(map[string]any, len(n.Props))
	for k, v := range n.Props {
		props[k] = v
	}
	return Node{
		ID:         getStringFromMap(props, "id", ""),
		Type:       getStringFromMap(props, "type", ""),
		Labels:     n.Labels,
		Properties: props,
	}
}

func edgeFromDB(r dbtype.Relationship, fromID, toID string) Edge {
	props := make(map[string]any, len(r.Props))
	for k, v := range r.Props {
		props[k] = v
	}
	return Edge{
		ID:         getStringFromMap(props, "id", ""),
		Type:       r.Type,
		FromID:     fromID,
		ToID:       toID,
		Properties: props,
	}
}

func nodeFromRecord(record *neo4j.Record, key string) (Node, bool) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return Node{}, false
	}
	n, ok := val.(dbtype.Node)
	if !ok {
		return Node{}, false
	}
	return nodeFromDB(n), true
}

func edgeFromRecord(record *neo4j.Record, key, fromID, toID string) (Edge, bool) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return Edge{}, false
	}
	r, ok := val.(dbtype.Relationship)
	if !ok {
		return Edge{}, false
	}
	return edgeFromDB(r, fromID, toID), true
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func getStringFromMap(m map[string]any, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getFloat64FromMap(m map[string]any, key string, defaultValue float64) float64 {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return defaultValue
}
