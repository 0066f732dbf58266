// Package knowledge orchestrates the validate-then-persist flow: every
// mutation is checked against the type registry before the graph store is
// touched, so a rejected payload never causes a partial write.
package knowledge

import (
	"context"

	"go.uber.org/zap"

	"knowledge-store/backend/internal/graph"
	"knowledge-store/backend/internal/schema"
	"knowledge-store/backend/pkg/logger"
)

// GraphStore is the store contract the service depends on.
type GraphStore interface {
	CreateNode(ctx context.Context, typeName string, labels []string, props map[string]any) (*graph.Node, error)
	GetNode(ctx context.Context, id string) (*graph.Node, error)
	UpdateNode(ctx context.Context, id string, props map[string]any) (*graph.Node, error)
	DeleteNode(ctx context.Context, id string) error
	ListNodes(ctx context.Context, typeFilter string, propFilters map[string]any, page graph.Page) (*graph.NodeList, error)
	SearchNodes(ctx context.Context, query string, entityTypes []string, limit int) ([]graph.Node, error)

	CreateEdge(ctx context.Context, typeName, fromID, toID string, props map[string]any) (*graph.Edge, error)
	GetEdge(ctx context.Context, id string) (*graph.Edge, error)
	UpdateEdge(ctx context.Context, id string, props map[string]any) (*graph.Edge, error)
	DeleteEdge(ctx context.Context, id string) error

	FindSymbolsForConcept(ctx context.Context, conceptID string, page graph.Page) (*graph.SymbolList, error)
	FindConceptsForSymbol(ctx context.Context, symbolID string, page graph.Page) (*graph.ConceptList, error)
	GetEntityWithTier(ctx context.Context, entityID, tier string) (*graph.TieredEntity, error)
	FindCrossDomainMappings(ctx context.Context, conceptID, targetDomain string, page graph.Page) (*graph.MappingList, error)
	FindPath(ctx context.Context, fromID, toID string, maxDepth int, relTypes []string) (*graph.Path, error)
}

// Service ties the type registry, validator, and graph store together.
type Service struct {
	registry *schema.Holder
	store    GraphStore
	mode     schema.Mode
	logger   *zap.Logger
}

// NewService creates the knowledge service.
func NewService(registry *schema.Holder, store GraphStore, mode schema.Mode) *Service {
	return &Service{
		registry: registry,
		store:    store,
		mode:     mode,
		logger:   logger.Component("knowledge"),
	}
}

// Registry returns the active type registry.
func (s *Service) Registry() *schema.Registry {
	return s.registry.Load()
}

// ReloadSchema builds a fresh registry from the catalogs in dir and swaps it
// in atomically. In-flight validations keep the registry they started with.
func (s *Service) ReloadSchema(dir string) error {
	reg, err := schema.LoadCatalogs(dir)
	if err != nil {
		return err
	}
	s.registry.Swap(reg)
	s.logger.Info("Schema registry reloaded",
		zap.Int("entity_types", len(reg.EntityTypes())),
		zap.Int("relationship_types", len(reg.RelationshipTypes())),
	)
	return nil
}

// CreateEntity validates the payload against the resolved schema for
// typeName and persists it with the inheritance chain as its label set.
func (s *Service) CreateEntity(ctx context.Context, typeName string, props map[string]any) (*graph.Node, error) {
	reg := s.registry.Load()

	normalized, err := schema.ValidateEntity(reg, typeName, props, s.mode)
	if err != nil {
		return nil, err
	}
	labels, err := reg.LabelChain(typeName)
	if err != nil {
		return nil, err
	}

	return s.store.CreateNode(ctx, typeName, labels, normalized)
}

// GetEntity fetches an entity by id.
func (s *Service) GetEntity(ctx context.Context, id string) (*graph.Node, error) {
	return s.store.GetNode(ctx, id)
}

// UpdateEntity merges props into an entity after validating that the merged
// result still conforms to the entity's type schema. The id and type
// properties are immutable and silently dropped from the delta.
func (s *Service) UpdateEntity(ctx context.Context, id string, props map[string]any) (*graph.Node, error) {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}

	delta := make(map[string]any, len(props))
	for k, v := range props {
		if k == "id" || k == "type" {
			continue
		}
		delta[k] = v
	}

	merged := make(map[string]any, len(node.Properties)+len(delta))
	for k, v := range node.Properties {
		if k == "type" {
			continue // store bookkeeping, not part of the declared schema
		}
		merged[k] = v
	}
	for k, v := range delta {
		merged[k] = v
	}

	reg := s.registry.Load()
	if _, err := schema.ValidateEntity(reg, node.Type, merged, s.mode); err != nil {
		return nil, err
	}

	return s.store.UpdateNode(ctx, id, delta)
}

// DeleteEntity deletes an entity under the store's configured delete policy.
func (s *Service) DeleteEntity(ctx context.Context, id string) error {
	return s.store.DeleteNode(ctx, id)
}

// ListEntities returns one page of entities. A non-empty type filter must
// name a declared entity type.
func (s *Service) ListEntities(ctx context.Context, typeFilter string, propFilters map[string]any, page graph.Page) (*graph.NodeList, error) {
	if typeFilter != "" {
		if _, err := s.registry.Load().EntityType(typeFilter); err != nil {
			return nil, err
		}
	}
	return s.store.ListNodes(ctx, typeFilter, propFilters, page)
}

// SearchEntities performs a term search over the given entity types, which
// must all be declared.
func (s *Service) SearchEntities(ctx context.Context, query string, entityTypes []string, limit int) ([]graph.Node, error) {
	reg := s.registry.Load()
	for _, t := range entityTypes {
		if _, err := reg.EntityType(t); err != nil {
			return nil, err
		}
	}
	return s.store.SearchNodes(ctx, query, entityTypes, limit)
}

// CreateRelationship confirms both endpoints exist, validates their types
// against the relationship's allowed endpoint sets and the payload against
// its property schema, then persists the edge. No store mutation happens on
// a validation failure.
func (s *Service) CreateRelationship(ctx context.Context, typeName, fromID, toID string, props map[string]any) (*graph.Edge, error) {
	source, err := s.store.GetNode(ctx, fromID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.GetNode(ctx, toID)
	if err != nil {
		return nil, err
	}

	reg := s.registry.Load()
	normalized, err := schema.ValidateRelationship(reg, typeName, source.Type, target.Type, props, s.mode)
	if err != nil {
		return nil, err
	}

	return s.store.CreateEdge(ctx, typeName, fromID, toID, normalized)
}

// GetRelationship fetches a relationship by id.
func (s *Service) GetRelationship(ctx context.Context, id string) (*graph.Edge, error) {
	return s.store.GetEdge(ctx, id)
}

// UpdateRelationship merges props into a relationship after validating the
// merged result against its type's property schema.
func (s *Service) UpdateRelationship(ctx context.Context, id string, props map[string]any) (*graph.Edge, error) {
	edge, err := s.store.GetEdge(ctx, id)
	if err != nil {
		return nil, err
	}

	delta := make(map[string]any, len(props))
	for k, v := range props {
		if k == "id" {
			continue
		}
		delta[k] = v
	}

	merged := make(map[string]any, len(edge.Properties)+len(delta))
	for k, v := range edge.Properties {
		if k == "id" {
			continue // store bookkeeping, not part of the declared schema
		}
		merged[k] = v
	}
	for k, v := range delta {
		merged[k] = v
	}

	reg := s.registry.Load()
	def, err := reg.RelationshipType(edge.Type)
	if err != nil {
		return nil, err
	}
	// Endpoints are unchanged by an update; only the property schema applies.
	if _, err := schema.ValidateRelationship(reg, def.Name, def.SourceTypes[0], def.TargetTypes[0], merged, s.mode); err != nil {
		return nil, err
	}

	return s.store.UpdateEdge(ctx, id, delta)
}

// DeleteRelationship deletes a relationship by id.
func (s *Service) DeleteRelationship(ctx context.Context, id string) error {
	return s.store.DeleteEdge(ctx, id)
}

// FindSymbolsForConcept resolves a concept to its representing symbols.
func (s *Service) FindSymbolsForConcept(ctx context.Context, conceptID string, page graph.Page) (*graph.SymbolList, error) {
	return s.store.FindSymbolsForConcept(ctx, conceptID, page)
}

// FindConceptsForSymbol resolves a symbol to the concepts it represents.
func (s *Service) FindConceptsForSymbol(ctx context.Context, symbolID string, page graph.Page) (*graph.ConceptList, error) {
	return s.store.FindConceptsForSymbol(ctx, symbolID, page)
}

// GetEntityWithTier fetches an entity at one knowledge tier.
func (s *Service) GetEntityWithTier(ctx context.Context, entityID, tier string) (*graph.TieredEntity, error) {
	return s.store.GetEntityWithTier(ctx, entityID, tier)
}

// FindCrossDomainMappings returns one page of a concept's domain
// interpretations.
func (s *Service) FindCrossDomainMappings(ctx context.Context, conceptID, targetDomain string, page graph.Page) (*graph.MappingList, error) {
	return s.store.FindCrossDomainMappings(ctx, conceptID, targetDomain, page)
}

// FindPath searches for a bounded shortest path. Relationship type filters
// must name declared relationship types.
func (s *Service) FindPath(ctx context.Context, fromID, toID string, maxDepth int, relTypes []string) (*graph.Path, error) {
	reg := s.registry.Load()
	for _, t := range relTypes {
		if _, err := reg.RelationshipType(t); err != nil {
			return nil, err
		}
	}
	return s.store.FindPath(ctx, fromID, toID, maxDepth, relTypes)
}
