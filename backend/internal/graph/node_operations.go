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
// Node Operations
// ============================================================================

// CreateNode persists a validated entity. The label chain comes from the
// type registry (root-first inheritance chain), never from request input.
// The id is assigned here if the payload carries none and is immutable
// afterwards.
func (s *Store) CreateNode(ctx context.Context, typeName string, labels []string, props map[string]any) (*Node, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	stored := make(map[string]any, len(props)+2)
	for k, v := range props {
		stored[k] = v
	}
	if getStringFromMap(stored, "id", "") == "" {
		stored["id"] = uuid.NewString()
	}
	stored["type"] = typeName

	query := fmt.Sprintf("CREATE (e:%s) SET e = $props RETURN e", labelExpr(labels))

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"props": stored})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		node, ok := nodeFromRecord(record, "e")
		if !ok {
			return nil, fmt.Errorf("create returned no node")
		}
		return node, nil
	})
	if err != nil {
		return nil, mapStoreError("create node", err)
	}

	node := result.(Node)
	s.logger.Info("Entity created",
		zap.String("entity_id", node.ID),
		zap.String("entity_type", typeName),
	)
	return &node, nil
}

// GetNode fetches an entity by id.
func (s *Store) GetNode(ctx context.Context, id string) (*Node, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (e:Entity {id: $id}) RETURN e", map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("entity", id)
		}
		node, ok := nodeFromRecord(res.Record(), "e")
		if !ok {
			return nil, fmt.Errorf("get returned no node")
		}
		return node, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("get node", err)
	}

	node := result.(Node)
	return &node, nil
}

// UpdateNode merges props into an existing entity. The id and type
// properties are immutable; callers strip them before reaching the store.
func (s *Store) UpdateNode(ctx context.Context, id string, props map[string]any) (*Node, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entity {id: $id}) SET e += $props RETURN e",
			map[string]any{"id": id, "props": props})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("entity", id)
		}
		node, ok := nodeFromRecord(res.Record(), "e")
		if !ok {
			return nil, fmt.Errorf("update returned no node")
		}
		return node, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("update node", err)
	}

	node := result.(Node)
	s.logger.Info("Entity updated", zap.String("entity_id", id))
	return &node, nil
}

// DeleteNode deletes an entity under the configured policy. Restrict fails
// with ConstraintViolation while relationships still reference the entity;
// cascade removes the entity and all its relationships in one transaction,
// so a concurrent reader never sees a dangling relationship.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// The self-assignment takes the node's write lock, so a concurrent
		// relationship create cannot land between the count and the delete.
		res, err := tx.Run(ctx, `
			MATCH (e:Entity {id: $id})
			SET e.id = e.id
			WITH e
			OPTIONAL MATCH (e)-[r]-()
			RETURN e.id AS id, count(r) AS degree
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("entity", id)
		}
		degree := getIntFromRecord(res.Record(), "degree")

		if degree > 0 && s.deletePolicy == DeleteRestrict {
			return nil, kgerrors.NewConstraintViolation("delete node",
				fmt.Sprintf("entity %s is referenced by %d relationship(s)", id, degree), nil)
		}

		_, err = tx.Run(ctx, "MATCH (e:Entity {id: $id}) DETACH DELETE e", map[string]any{"id": id})
		return nil, err
	})
	if err != nil {
		switch kgerrors.KindOf(err) {
		case kgerrors.KindNotFound, kgerrors.KindConstraintViolation:
			return err
		}
		return mapStoreError("delete node", err)
	}

	s.logger.Info("Entity deleted",
		zap.String("entity_id", id),
		zap.String("policy", string(s.deletePolicy)),
	)
	return nil
}
