package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"knowledge-store/backend/pkg/kgerrors"
	"knowledge-store/backend/pkg/logger"
)

// DeletePolicy decides what happens when a deleted entity is still
// referenced by relationships.
type DeletePolicy string

const (
	// DeleteRestrict rejects the delete with a ConstraintViolation
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the entity and all its relationships atomically
	DeleteCascade DeletePolicy = "cascade"
)

// Store executes all Neo4j operations for the knowledge graph. It holds no
// state between calls beyond the driver's connection pool; every operation
// runs inside a managed transaction that commits or rolls back on all exit
// paths.
type Store struct {
	driver       neo4j.DriverWithContext
	deletePolicy DeletePolicy
	logger       *zap.Logger
}

// NewStore creates a store over an established driver.
func NewStore(driver neo4j.DriverWithContext, policy DeletePolicy) *Store {
	return &Store{
		driver:       driver,
		deletePolicy: policy,
		logger:       logger.Component("graph"),
	}
}

// Close closes the Neo4j driver connection
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

// readSession opens a read session; the caller must close it.
func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

// writeSession opens a write session; the caller must close it.
func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

// ApplyConstraints creates the uniqueness constraints and indexes the
// knowledge graph relies on. Safe to run repeatedly.
func (s *Store) ApplyConstraints(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE",
		"CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT symbol_id_unique IF NOT EXISTS FOR (s:Symbol) REQUIRE s.id IS UNIQUE",
		"CREATE INDEX entity_name_idx IF NOT EXISTS FOR (e:Entity) ON (e.name)",
		"CREATE INDEX entity_type_idx IF NOT EXISTS FOR (e:Entity) ON (e.type)",
		"CREATE INDEX concept_domain_idx IF NOT EXISTS FOR (c:Concept) ON (c.domain)",
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return mapStoreError("apply constraints", err)
		}
		s.logger.Debug("Applied schema statement", zap.String("statement", stmt))
	}

	s.logger.Info("Graph constraints and indexes applied", zap.Int("statements", len(statements)))
	return nil
}

// mapStoreError translates driver failures into the error taxonomy:
// uniqueness/integrity failures are non-retryable ConstraintViolations,
// transient connectivity problems surface as StoreUnavailable.
func mapStoreError(op string, err error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		if strings.Contains(neoErr.Code, "ConstraintValidationFailed") ||
			strings.Contains(neoErr.Code, "ConstraintViolation") {
			return kgerrors.NewConstraintViolation(op, neoErr.Msg, err)
		}
	}
	if neo4j.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
		return kgerrors.NewStoreUnavailable(op, err)
	}
	var connErr *neo4j.ConnectivityError
	if errors.As(err, &connErr) {
		return kgerrors.NewStoreUnavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// labelExpr joins a trusted label chain into a Cypher label expression.
// Labels come from the type registry, never from request input.
func labelExpr(labels []string) string {
	return strings.Join(labels, ":")
}
