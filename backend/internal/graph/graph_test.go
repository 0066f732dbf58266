package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"knowledge-store/backend/pkg/kgerrors"
)

func TestPage_Clamp(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{Number: 0, Size: 0}, Page{Number: 0, Size: DefaultPageSize}},
		{Page{Number: -3, Size: 10}, Page{Number: 0, Size: 10}},
		{Page{Number: 2, Size: 500}, Page{Number: 2, Size: DefaultPageSize}},
		{Page{Number: 1, Size: MaxPageSize}, Page{Number: 1, Size: MaxPageSize}},
	}
	for _, c := range cases {
		if got := c.in.clamp(); got != c.want {
			t.Errorf("clamp(%+v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestPage_Skip(t *testing.T) {
	p := Page{Number: 3, Size: 20}
	if got := p.skip(); got != 60 {
		t.Errorf("skip() = %d, want 60", got)
	}
}

func TestPageInfoFor(t *testing.T) {
	info := pageInfoFor(Page{Number: 1, Size: 20}, 45)
	if info.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrev {
		t.Errorf("Expected HasNext and HasPrev on middle page, got %+v", info)
	}

	empty := pageInfoFor(Page{Number: 0, Size: 20}, 0)
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrev {
		t.Errorf("Unexpected pagination for empty result: %+v", empty)
	}

	last := pageInfoFor(Page{Number: 2, Size: 20}, 45)
	if last.HasNext {
		t.Errorf("Expected no next page on the last page: %+v", last)
	}
}

func TestSelectTierProperties(t *testing.T) {
	props := map[string]any{
		"name":       "Entropy",
		"domain":     "information-theory",
		"summary_l1": "Measure of uncertainty",
		"summary_l2": "Expected information content of a random variable",
		"summary_l3": "Full treatment with derivations",
		"detail_l2":  "Includes the axiomatic characterization",
	}

	selected := selectTierProperties(props, "L2")

	if selected["summary"] != "Expected information content of a random variable" {
		t.Errorf("Expected L2 summary with suffix stripped, got %v", selected["summary"])
	}
	if selected["detail"] != "Includes the axiomatic characterization" {
		t.Errorf("Expected L2 detail, got %v", selected["detail"])
	}
	if selected["name"] != "Entropy" || selected["domain"] != "information-theory" {
		t.Error("Tier-neutral properties must survive selection")
	}
	for _, key := range []string{"summary_l1", "summary_l2", "summary_l3", "detail_l2"} {
		if _, ok := selected[key]; ok {
			t.Errorf("Suffixed property %q leaked into the selection", key)
		}
	}
}

func TestSelectTierProperties_MissingTierContent(t *testing.T) {
	props := map[string]any{
		"name":       "Entropy",
		"summary_l1": "Short",
	}

	// No _l3 properties stored: the result is just the neutral properties,
	// never synthesized content.
	selected := selectTierProperties(props, "L3")
	if len(selected) != 1 || selected["name"] != "Entropy" {
		t.Errorf("Expected only neutral properties, got %v", selected)
	}
}

func TestHasLabel(t *testing.T) {
	labels := []string{"Entity", "Concept", "Algorithm"}
	if !hasLabel(labels, "Concept") {
		t.Error("Expected Concept label to be found")
	}
	if hasLabel(labels, "Symbol") {
		t.Error("Did not expect Symbol label")
	}
}

func TestLabelExpr(t *testing.T) {
	if got := labelExpr([]string{"Entity", "Concept"}); got != "Entity:Concept" {
		t.Errorf("labelExpr = %q", got)
	}
}

func TestGroupByDomain(t *testing.T) {
	interpretations := []Interpretation{
		{Domain: "physics", Interpretation: "thermodynamic entropy"},
		{Domain: "cs", Interpretation: "information entropy"},
		{Domain: "physics", Interpretation: "statistical entropy"},
	}

	grouped := groupByDomain(interpretations)

	if len(grouped) != 2 {
		t.Fatalf("Expected 2 domains, got %d", len(grouped))
	}
	// Domains come back sorted for stable output.
	if grouped[0].Domain != "cs" || grouped[1].Domain != "physics" {
		t.Errorf("Unexpected domain order: %q, %q", grouped[0].Domain, grouped[1].Domain)
	}
	if len(grouped[1].Interpretations) != 2 {
		t.Errorf("Expected 2 physics interpretations, got %d", len(grouped[1].Interpretations))
	}
}

func TestMapStoreError_ConstraintViolation(t *testing.T) {
	neoErr := &neo4j.Neo4jError{
		Code: "Neo.ClientError.Schema.ConstraintValidationFailed",
		Msg:  "node already exists",
	}

	err := mapStoreError("create entity", neoErr)
	if kgerrors.KindOf(err) != kgerrors.KindConstraintViolation {
		t.Fatalf("Expected constraint_violation, got %v", err)
	}
	if !errors.Is(err, neoErr) {
		t.Error("Mapped error must wrap the driver error")
	}
}

func TestMapStoreError_Timeout(t *testing.T) {
	err := mapStoreError("find path", context.DeadlineExceeded)
	if kgerrors.KindOf(err) != kgerrors.KindStoreUnavailable {
		t.Fatalf("Expected store_unavailable, got %v", err)
	}
	if !kgerrors.IsRetryable(err) {
		t.Error("Timeouts must be retryable")
	}
}

func TestMapStoreError_Unmapped(t *testing.T) {
	plain := errors.New("boom")
	err := mapStoreError("get entity", plain)
	if kgerrors.KindOf(err) != "" {
		t.Fatalf("Expected no kind for unmapped error, got %v", err)
	}
	if !errors.Is(err, plain) {
		t.Error("Unmapped error must wrap the original")
	}
}

func TestGetFromMapHelpers(t *testing.T) {
	m := map[string]any{
		"context":    "statistics",
		"confidence": 0.75,
		"count":      int64(3),
	}

	if got := getStringFromMap(m, "context", ""); got != "statistics" {
		t.Errorf("getStringFromMap = %q", got)
	}
	if got := getStringFromMap(m, "missing", "fallback"); got != "fallback" {
		t.Errorf("getStringFromMap default = %q", got)
	}
	if got := getFloat64FromMap(m, "confidence", 0); got != 0.75 {
		t.Errorf("getFloat64FromMap = %v", got)
	}
	if got := getFloat64FromMap(m, "missing", 0.5); got != 0.5 {
		t.Errorf("getFloat64FromMap default = %v", got)
	}
}
