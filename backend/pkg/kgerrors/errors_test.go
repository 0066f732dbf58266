package kgerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NewSchemaViolation("Concept", []Violation{{Field: "tier", Reason: "missing"}}), KindSchemaViolation},
		{NewUnknownType("Widget"), KindUnknownType},
		{NewUnknownParent("Concept", "Base"), KindUnknownParent},
		{NewDuplicateType("Concept"), KindDuplicateType},
		{NewCyclicInheritance("A", []string{"A", "B", "A"}), KindCyclicInheritance},
		{NewEndpointTypeMismatch("REPRESENTS", "source", "Document", []string{"Symbol"}), KindEndpointTypeMismatch},
		{NewConstraintViolation("delete entity", "still referenced", nil), KindConstraintViolation},
		{NewStoreUnavailable("create entity", errors.New("connection refused")), KindStoreUnavailable},
		{NewTierNotApplicable("e1", "Symbol"), KindTierNotApplicable},
		{NewInvalidTier("L4"), KindInvalidTier},
		{NewDepthExceeded(0), KindDepthExceeded},
		{NewNotFound("entity", "e1"), KindNotFound},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %q, want %q", c.err, got, c.want)
		}
	}

	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewNotFound("entity", "e1"))
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindNotFound)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewStoreUnavailable("op", errors.New("timeout"))) {
		t.Error("StoreUnavailable must be retryable")
	}
	if IsRetryable(NewConstraintViolation("op", "duplicate id", nil)) {
		t.Error("ConstraintViolation must not be retryable")
	}
	if IsRetryable(NewSchemaViolation("Concept", nil)) {
		t.Error("SchemaViolation must not be retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil must not be retryable")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")

	if !errors.Is(NewStoreUnavailable("op", cause), cause) {
		t.Error("StoreUnavailable must unwrap to its cause")
	}
	if !errors.Is(NewConstraintViolation("op", "detail", cause), cause) {
		t.Error("ConstraintViolation must unwrap to its cause")
	}
}

func TestSchemaViolation_Error(t *testing.T) {
	err := NewSchemaViolation("Concept", []Violation{
		{Field: "domain", Reason: "required property is missing"},
		{Field: "tier", Reason: "value \"L4\" is not one of: L1, L2, L3"},
	})

	msg := err.Error()
	for _, want := range []string{"Concept", "domain", "tier"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error message %q missing %q", msg, want)
		}
	}
}
