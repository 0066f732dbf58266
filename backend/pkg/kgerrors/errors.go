// Package kgerrors defines the error taxonomy for the knowledge store.
// Every user-visible failure carries a Kind plus enough structured detail
// for the calling layer to handle it programmatically.
package kgerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of error
type Kind string

const (
	// KindSchemaViolation is an invalid entity/relationship payload (client error, non-retryable)
	KindSchemaViolation Kind = "schema_violation"
	// KindUnknownType is a reference to an undeclared type
	KindUnknownType Kind = "unknown_type"
	// KindUnknownParent is an inherits reference to an undeclared type
	KindUnknownParent Kind = "unknown_parent"
	// KindDuplicateType is a repeated type declaration
	KindDuplicateType Kind = "duplicate_type"
	// KindCyclicInheritance is a parent reference that closes an inheritance cycle
	KindCyclicInheritance Kind = "cyclic_inheritance"
	// KindEndpointTypeMismatch is a relationship endpoint outside the allowed type set
	KindEndpointTypeMismatch Kind = "endpoint_type_mismatch"
	// KindConstraintViolation is a store-level uniqueness/integrity failure (non-retryable)
	KindConstraintViolation Kind = "constraint_violation"
	// KindStoreUnavailable is a transient store failure (retryable with backoff by the caller)
	KindStoreUnavailable Kind = "store_unavailable"
	// KindTierNotApplicable is a tier request against a non-Concept entity
	KindTierNotApplicable Kind = "tier_not_applicable"
	// KindInvalidTier is a tier outside {L1, L2, L3}
	KindInvalidTier Kind = "invalid_tier"
	// KindDepthExceeded is an invalid path-search depth bound
	KindDepthExceeded Kind = "depth_exceeded"
	// KindNotFound is a reference to a non-existent entity or relationship
	KindNotFound Kind = "not_found"
)

type kinder interface {
	ErrKind() Kind
}

// KindOf returns the Kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var k kinder
	if errors.As(err, &k) {
		return k.ErrKind()
	}
	return ""
}

// IsRetryable reports whether the caller may retry the operation.
// Only transient store failures qualify; validation and constraint
// errors will fail again unchanged.
func IsRetryable(err error) bool {
	return KindOf(err) == KindStoreUnavailable
}

// Violation describes a single schema violation on one field.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaViolation reports every violation found in one pass so callers
// get complete feedback in a single round trip.
type SchemaViolation struct {
	TypeName   string      `json:"type_name"`
	Violations []Violation `json:"violations"`
}

func NewSchemaViolation(typeName string, violations []Violation) *SchemaViolation {
	return &SchemaViolation{TypeName: typeName, Violations: violations}
}

func (e *SchemaViolation) ErrKind() Kind { return KindSchemaViolation }

func (e *SchemaViolation) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return fmt.Sprintf("schema violation for type %q: %s", e.TypeName, strings.Join(parts, "; "))
}

// UnknownType is returned when a type name is not declared in the registry.
type UnknownType struct {
	Name string
}

func NewUnknownType(name string) *UnknownType { return &UnknownType{Name: name} }

func (e *UnknownType) ErrKind() Kind { return KindUnknownType }

func (e *UnknownType) Error() string {
	return fmt.Sprintf("unknown type: %q", e.Name)
}

// UnknownParent is returned when a type inherits from an undeclared type.
type UnknownParent struct {
	Type   string
	Parent string
}

func NewUnknownParent(typeName, parent string) *UnknownParent {
	return &UnknownParent{Type: typeName, Parent: parent}
}

func (e *UnknownParent) ErrKind() Kind { return KindUnknownParent }

func (e *UnknownParent) Error() string {
	return fmt.Sprintf("type %q inherits from undeclared type %q", e.Type, e.Parent)
}

// DuplicateType is returned when a type name is registered twice.
type DuplicateType struct {
	Name string
}

func NewDuplicateType(name string) *DuplicateType { return &DuplicateType{Name: name} }

func (e *DuplicateType) ErrKind() Kind { return KindDuplicateType }

func (e *DuplicateType) Error() string {
	return fmt.Sprintf("duplicate type: %q", e.Name)
}

// CyclicInheritance is returned when a parent reference closes a cycle.
type CyclicInheritance struct {
	Type  string
	Chain []string
}

func NewCyclicInheritance(typeName string, chain []string) *CyclicInheritance {
	return &CyclicInheritance{Type: typeName, Chain: chain}
}

func (e *CyclicInheritance) ErrKind() Kind { return KindCyclicInheritance }

func (e *CyclicInheritance) Error() string {
	return fmt.Sprintf("cyclic inheritance at type %q: %s", e.Type, strings.Join(e.Chain, " -> "))
}

// EndpointTypeMismatch is returned when a relationship endpoint's type is
// outside the relationship's allowed source/target set.
type EndpointTypeMismatch struct {
	Relationship string
	Endpoint     string // "source" or "target"
	Got          string
	Allowed      []string
}

func NewEndpointTypeMismatch(relationship, endpoint, got string, allowed []string) *EndpointTypeMismatch {
	return &EndpointTypeMismatch{Relationship: relationship, Endpoint: endpoint, Got: got, Allowed: allowed}
}

func (e *EndpointTypeMismatch) ErrKind() Kind { return KindEndpointTypeMismatch }

func (e *EndpointTypeMismatch) Error() string {
	return fmt.Sprintf("%s type %q is not allowed for relationship %q (allowed: %s)",
		e.Endpoint, e.Got, e.Relationship, strings.Join(e.Allowed, ", "))
}

// ConstraintViolation is a store-level integrity failure, e.g. a duplicate id
// or a restricted delete of a still-referenced entity.
type ConstraintViolation struct {
	Op     string
	Detail string
	Err    error
}

func NewConstraintViolation(op, detail string, err error) *ConstraintViolation {
	return &ConstraintViolation{Op: op, Detail: detail, Err: err}
}

func (e *ConstraintViolation) ErrKind() Kind { return KindConstraintViolation }

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation in %s: %s", e.Op, e.Detail)
}

func (e *ConstraintViolation) Unwrap() error { return e.Err }

// StoreUnavailable is a transient connectivity or timeout failure of the
// underlying graph store. Retry policy belongs to the caller.
type StoreUnavailable struct {
	Op  string
	Err error
}

func NewStoreUnavailable(op string, err error) *StoreUnavailable {
	return &StoreUnavailable{Op: op, Err: err}
}

func (e *StoreUnavailable) ErrKind() Kind { return KindStoreUnavailable }

func (e *StoreUnavailable) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailable) Unwrap() error { return e.Err }

// TierNotApplicable is returned when tiered retrieval is requested for an
// entity whose type carries no tier semantics.
type TierNotApplicable struct {
	EntityID string
	TypeName string
}

func NewTierNotApplicable(entityID, typeName string) *TierNotApplicable {
	return &TierNotApplicable{EntityID: entityID, TypeName: typeName}
}

func (e *TierNotApplicable) ErrKind() Kind { return KindTierNotApplicable }

func (e *TierNotApplicable) Error() string {
	return fmt.Sprintf("tier not applicable to entity %q of type %q", e.EntityID, e.TypeName)
}

// InvalidTier is returned for a tier outside the known set.
type InvalidTier struct {
	Tier string
}

func NewInvalidTier(tier string) *InvalidTier { return &InvalidTier{Tier: tier} }

func (e *InvalidTier) ErrKind() Kind { return KindInvalidTier }

func (e *InvalidTier) Error() string {
	return fmt.Sprintf("invalid tier %q, must be one of L1, L2, L3", e.Tier)
}

// DepthExceeded is returned when a path search depth bound is invalid.
type DepthExceeded struct {
	MaxDepth int
}

func NewDepthExceeded(maxDepth int) *DepthExceeded { return &DepthExceeded{MaxDepth: maxDepth} }

func (e *DepthExceeded) ErrKind() Kind { return KindDepthExceeded }

func (e *DepthExceeded) Error() string {
	return fmt.Sprintf("invalid max depth %d, must be positive", e.MaxDepth)
}

// NotFound is returned when an entity or relationship does not exist.
type NotFound struct {
	Label string // e.g. "entity", "relationship", "concept", "symbol"
	ID    string
}

func NewNotFound(label, id string) *NotFound { return &NotFound{Label: label, ID: id} }

func (e *NotFound) ErrKind() Kind { return KindNotFound }

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Label, e.ID)
}
