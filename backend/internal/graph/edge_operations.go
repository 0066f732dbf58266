package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"knowledge-store/backend/pkg/kgerrors"
)

// ============================================================================
// Edge Operations
// ============================================================================

// CreateEdge persists a validated relationship. Both endpoints are
// re-confirmed inside the same transaction as the create, so the edge can
// never be written against an entity deleted in between; typeName has
// already been checked against the registry.
func (s *Store) CreateEdge(ctx context.Context, typeName, fromID, toID string, props map[string]any) (*Edge, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	stored := make(map[string]any, len(props)+1)
	for k, v := range props {
		stored[k] = v
	}
	if getStringFromMap(stored, "id", "") == "" {
		stored["id"] = uuid.NewString()
	}

	query := fmt.Sprintf(`
		MATCH (source:Entity {id: $fromID}), (target:Entity {id: $toID})
		CREATE (source)-[r:%s]->(target)
		SET r = $props
		RETURN r
	`, typeName)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		endpoints := []struct{ label, id string }{
			{"source entity", fromID},
			{"target entity", toID},
		}
		for _, ep := range endpoints {
			res, err := tx.Run(ctx, "MATCH (e:Entity {id: $id}) RETURN e.id", map[string]any{"id": ep.id})
			if err != nil {
				return nil, err
			}
			if !res.Next(ctx) {
				if err := res.Err(); err != nil {
					return nil, err
				}
				return nil, kgerrors.NewNotFound(ep.label, ep.id)
			}
		}

		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
			"props":  stored,
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		edge, ok := edgeFromRecord(record, "r", fromID, toID)
		if !ok {
			return nil, fmt.Errorf("create returned no relationship")
		}
		return edge, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("create edge", err)
	}

	edge := result.(Edge)
	s.logger.Info("Relationship created",
		zap.String("relationship_id", edge.ID),
		zap.String("relationship_type", typeName),
		zap.String("from_id", fromID),
		zap.String("to_id", toID),
	)
	return &edge, nil
}

// GetEdge fetches a relationship by id.
func (s *Store) GetEdge(ctx context.Context, id string) (*Edge, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (source:Entity)-[r]->(target:Entity)
			WHERE r.id = $id
			RETURN r, source.id AS from_id, target.id AS to_id
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("relationship", id)
		}
		record := res.Record()
		edge, ok := edgeFromRecord(record, "r",
			getStringFromRecord(record, "from_id"),
			getStringFromRecord(record, "to_id"))
		if !ok {
			return nil, fmt.Errorf("get returned no relationship")
		}
		return edge, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("get edge", err)
	}

	edge := result.(Edge)
	return &edge, nil
}

// UpdateEdge merges props into an existing relationship. Its id is immutable.
func (s *Store) UpdateEdge(ctx context.Context, id string, props map[string]any) (*Edge, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (source:Entity)-[r]->(target:Entity)
			WHERE r.id = $id
			SET r += $props
			RETURN r, source.id AS from_id, target.id AS to_id
		`, map[string]any{"id": id, "props": props})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("relationship", id)
		}
		record := res.Record()
		edge, ok := edgeFromRecord(record, "r",
			getStringFromRecord(record, "from_id"),
			getStringFromRecord(record, "to_id"))
		if !ok {
			return nil, fmt.Errorf("update returned no relationship")
		}
		return edge, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("update edge", err)
	}

	edge := result.(Edge)
	s.logger.Info("Relationship updated", zap.String("relationship_id", id))
	return &edge, nil
}

// DeleteEdge deletes a relationship by id.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH ()-[r]->()
			WHERE r.id = $id
			DELETE r
			RETURN count(r) AS deleted
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		if getIntFromRecord(record, "deleted") == 0 {
			return nil, kgerrors.NewNotFound("relationship", id)
		}
		return nil, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return err
		}
		return mapStoreError("delete edge", err)
	}

	s.logger.Info("Relationship deleted", zap.String("relationship_id", id))
	return nil
}
