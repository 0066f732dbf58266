package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"knowledge-store/backend/pkg/kgerrors"
)

// ============================================================================
// Tiered Retrieval
// ============================================================================

var tierSuffixes = []string{"_l1", "_l2", "_l3"}

// GetEntityWithTier fetches an entity reduced to the stored representation
// for one knowledge tier. Tier-specific content is stored upstream as
// suffixed properties (summary_l1, summary_l2, ...); the engine selects the
// matching suffix and never synthesizes content. Tier only applies to
// Concept entities (and their subtypes).
func (s *Store) GetEntityWithTier(ctx context.Context, entityID, tier string) (*TieredEntity, error) {
	if tier != "L1" && tier != "L2" && tier != "L3" {
		return nil, kgerrors.NewInvalidTier(tier)
	}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (e:Entity {id: $id}) RETURN e", map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, kgerrors.NewNotFound("entity", entityID)
		}
		node, ok := nodeFromRecord(res.Record(), "e")
		if !ok {
			return nil, kgerrors.NewNotFound("entity", entityID)
		}
		return node, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("get entity with tier", err)
	}

	node := result.(Node)
	if !hasLabel(node.Labels, "Concept") {
		return nil, kgerrors.NewTierNotApplicable(entityID, node.Type)
	}

	return &TieredEntity{
		EntityID:   entityID,
		Type:       node.Type,
		Tier:       tier,
		Properties: selectTierProperties(node.Properties, tier),
	}, nil
}

// selectTierProperties keeps properties suffixed for the requested tier
// (with the suffix stripped) plus all tier-neutral properties; other tiers'
// properties are dropped.
func selectTierProperties(props map[string]any, tier string) map[string]any {
	suffix := "_" + strings.ToLower(tier)
	out := make(map[string]any, len(props))
	for key, value := range props {
		if strings.HasSuffix(key, suffix) {
			out[strings.TrimSuffix(key, suffix)] = value
			continue
		}
		if !hasTierSuffix(key) {
			out[key] = value
		}
	}
	return out
}

func hasTierSuffix(key string) bool {
	for _, suffix := range tierSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
