package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"knowledge-store/backend/pkg/kgerrors"
)

// ============================================================================
// Path Finding
// ============================================================================

// maxPathDepth caps path searches regardless of the requested bound.
const maxPathDepth = 10

// FindPath runs a bounded shortest-path search between two entities,
// optionally restricted to an allow-set of relationship types. No path
// within the bound is an empty result, not an error; only an invalid
// maxDepth fails, with DepthExceeded. Relationship type names have been
// checked against the registry by the caller.
func (s *Store) FindPath(ctx context.Context, fromID, toID string, maxDepth int, relTypes []string) (*Path, error) {
	if maxDepth <= 0 {
		return nil, kgerrors.NewDepthExceeded(maxDepth)
	}
	if maxDepth > maxPathDepth {
		maxDepth = maxPathDepth
	}

	relFilter := ""
	if len(relTypes) > 0 {
		relFilter = ":" + strings.Join(relTypes, "|")
	}

	query := fmt.Sprintf(`
		MATCH (source:Entity {id: $fromID}), (target:Entity {id: $toID})
		MATCH p = allShortestPaths((source)-[%s*..%d]-(target))
		RETURN p
		ORDER BY length(p) ASC
		LIMIT 1
	`, relFilter, maxDepth)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"fromID": fromID, "toID": toID})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return &Path{Hops: []PathHop{}}, nil
		}

		val, ok := res.Record().Get("p")
		if !ok {
			return &Path{Hops: []PathHop{}}, nil
		}
		dbPath, ok := val.(dbtype.Path)
		if !ok {
			return nil, fmt.Errorf("path query returned %T", val)
		}
		return pathFromDB(dbPath), nil
	})
	if err != nil {
		return nil, mapStoreError("find path", err)
	}

	return result.(*Path), nil
}

// pathFromDB converts a driver path into ordered (relationship, entity)
// hops. Relationship endpoints are resolved via element ids because the
// search is undirected: hop i pairs relationship i with node i+1.
func pathFromDB(p dbtype.Path) *Path {
	if len(p.Nodes) == 0 {
		return &Path{Hops: []PathHop{}}
	}

	nodes := make([]Node, len(p.Nodes))
	byElementID := make(map[string]Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = nodeFromDB(n)
		byElementID[n.ElementId] = nodes[i]
	}

	hops := make([]PathHop, 0, len(p.Relationships))
	for i, rel := range p.Relationships {
		from := byElementID[rel.StartElementId]
		to := byElementID[rel.EndElementId]
		hops = append(hops, PathHop{
			Relationship: edgeFromDB(rel, from.ID, to.ID),
			Entity:       nodes[i+1],
		})
	}

	return &Path{
		Start:  nodes[0],
		Hops:   hops,
		Length: len(hops),
	}
}
