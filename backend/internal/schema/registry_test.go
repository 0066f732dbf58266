package schema

import (
	"testing"

	"knowledge-store/backend/pkg/kgerrors"
)

func testEntityDefs() map[string]EntityType {
	return map[string]EntityType{
		"Entity": {
			Properties: map[string]PropertySpec{
				"id":   {Type: TypeString},
				"name": {Type: TypeString, Required: true},
			},
		},
		"Concept": {
			Inherits: "Entity",
			Properties: map[string]PropertySpec{
				"domain": {Type: TypeString, Required: true},
			},
		},
		"Algorithm": {
			Inherits: "Concept",
			Properties: map[string]PropertySpec{
				"complexity": {Type: TypeString},
			},
		},
		"Symbol": {
			Inherits: "Entity",
			Properties: map[string]PropertySpec{
				"notation": {Type: TypeString, Required: true},
			},
		},
	}
}

func TestRegistry_FlattensInheritedProperties(t *testing.T) {
	reg, err := NewRegistry(testEntityDefs(), map[string]RelationshipType{
		"RELATES_TO": {SourceTypes: []string{"Entity"}, TargetTypes: []string{"Entity"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	schema, err := reg.Resolve("Algorithm")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	for _, prop := range []string{"id", "name", "domain", "complexity"} {
		if _, ok := schema[prop]; !ok {
			t.Errorf("Resolved schema missing property %q", prop)
		}
	}
	if !schema["name"].Required {
		t.Error("Inherited property 'name' lost its required flag")
	}
}

func TestRegistry_LabelChainIsRootFirst(t *testing.T) {
	reg, err := NewRegistry(testEntityDefs(), map[string]RelationshipType{
		"RELATES_TO": {SourceTypes: []string{"Entity"}, TargetTypes: []string{"Entity"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	chain, err := reg.LabelChain("Algorithm")
	if err != nil {
		t.Fatalf("LabelChain failed: %v", err)
	}

	want := []string{"Entity", "Concept", "Algorithm"}
	if len(chain) != len(want) {
		t.Fatalf("Expected chain %v, got %v", want, chain)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("Expected chain %v, got %v", want, chain)
			break
		}
	}
}

func TestRegistry_IsSubtype(t *testing.T) {
	reg, err := NewRegistry(testEntityDefs(), map[string]RelationshipType{
		"RELATES_TO": {SourceTypes: []string{"Entity"}, TargetTypes: []string{"Entity"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	cases := []struct {
		a, b string
		want bool
	}{
		{"Algorithm", "Concept", true},
		{"Algorithm", "Entity", true},
		{"Algorithm", "Algorithm", true},
		{"Concept", "Algorithm", false},
		{"Symbol", "Concept", false},
		{"Missing", "Entity", false},
	}
	for _, c := range cases {
		if got := reg.IsSubtype(c.a, c.b); got != c.want {
			t.Errorf("IsSubtype(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestBuilder_DuplicateType(t *testing.T) {
	b := NewBuilder()
	if err := b.AddEntityType(EntityType{Name: "Entity"}); err != nil {
		t.Fatalf("First AddEntityType failed: %v", err)
	}

	err := b.AddEntityType(EntityType{Name: "Entity"})
	if kgerrors.KindOf(err) != kgerrors.KindDuplicateType {
		t.Fatalf("Expected duplicate_type, got %v", err)
	}
}

func TestBuilder_CycleLeavesBuilderUnchanged(t *testing.T) {
	b := NewBuilder()
	if err := b.AddEntityType(EntityType{Name: "A", Inherits: "B"}); err != nil {
		t.Fatalf("AddEntityType A failed: %v", err)
	}
	if err := b.AddEntityType(EntityType{Name: "B", Inherits: "C"}); err != nil {
		t.Fatalf("AddEntityType B failed: %v", err)
	}

	// C -> A closes the cycle A -> B -> C -> A.
	err := b.AddEntityType(EntityType{Name: "C", Inherits: "A"})
	if kgerrors.KindOf(err) != kgerrors.KindCyclicInheritance {
		t.Fatalf("Expected cyclic_inheritance, got %v", err)
	}

	// The failed registration must not have landed: re-adding C with a
	// valid parent should succeed and the build should pass.
	if err := b.AddEntityType(EntityType{Name: "C"}); err != nil {
		t.Fatalf("Re-adding C after failed registration: %v", err)
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build after recovered registration failed: %v", err)
	}
}

func TestBuilder_SelfInheritance(t *testing.T) {
	b := NewBuilder()
	err := b.AddEntityType(EntityType{Name: "A", Inherits: "A"})
	if kgerrors.KindOf(err) != kgerrors.KindCyclicInheritance {
		t.Fatalf("Expected cyclic_inheritance, got %v", err)
	}
}

func TestBuild_UnknownParent(t *testing.T) {
	b := NewBuilder()
	if err := b.AddEntityType(EntityType{Name: "Concept", Inherits: "Entity"}); err != nil {
		t.Fatalf("AddEntityType failed: %v", err)
	}

	_, err := b.Build()
	if kgerrors.KindOf(err) != kgerrors.KindUnknownParent {
		t.Fatalf("Expected unknown_parent, got %v", err)
	}
}

func TestBuild_RelationshipEndpointMustBeDeclared(t *testing.T) {
	b := NewBuilder()
	if err := b.AddEntityType(EntityType{Name: "Entity"}); err != nil {
		t.Fatalf("AddEntityType failed: %v", err)
	}
	if err := b.AddRelationshipType(RelationshipType{
		Name:        "REPRESENTS",
		SourceTypes: []string{"Symbol"},
		TargetTypes: []string{"Entity"},
	}); err != nil {
		t.Fatalf("AddRelationshipType failed: %v", err)
	}

	_, err := b.Build()
	if kgerrors.KindOf(err) != kgerrors.KindUnknownType {
		t.Fatalf("Expected unknown_type, got %v", err)
	}
}

func TestBuild_RedeclaredInheritedPropertyTypeConflict(t *testing.T) {
	defs := testEntityDefs()
	defs["Algorithm"] = EntityType{
		Inherits: "Concept",
		Properties: map[string]PropertySpec{
			"name": {Type: TypeNumber}, // conflicts with inherited string
		},
	}

	_, err := NewRegistry(defs, map[string]RelationshipType{
		"RELATES_TO": {SourceTypes: []string{"Entity"}, TargetTypes: []string{"Entity"}},
	})
	if err == nil {
		t.Fatal("Expected build to fail on redeclared property with different type")
	}
}

func TestBuild_RedeclaredInheritedPropertyCannotRelax(t *testing.T) {
	min, max := 0.0, 1.0
	minLen, maxLen := 1, 64

	base := map[string]PropertySpec{
		"tier":       {Type: TypeString, Required: true, Enum: []string{"L1", "L2", "L3"}},
		"confidence": {Type: TypeNumber, Min: &min, Max: &max},
		"notation":   {Type: TypeString, MinLength: &minLen, MaxLength: &maxLen},
	}

	lowMin, highMax := -1.0, 2.0
	shortMin := 0

	cases := []struct {
		name  string
		redec map[string]PropertySpec
	}{
		{"drops required flag and enum", map[string]PropertySpec{
			"tier": {Type: TypeString},
		}},
		{"widens enum", map[string]PropertySpec{
			"tier": {Type: TypeString, Required: true, Enum: []string{"L1", "L2", "L3", "L9"}},
		}},
		{"drops min bound", map[string]PropertySpec{
			"confidence": {Type: TypeNumber, Max: &max},
		}},
		{"lowers min bound", map[string]PropertySpec{
			"confidence": {Type: TypeNumber, Min: &lowMin, Max: &max},
		}},
		{"raises max bound", map[string]PropertySpec{
			"confidence": {Type: TypeNumber, Min: &min, Max: &highMax},
		}},
		{"lowers min_length", map[string]PropertySpec{
			"notation": {Type: TypeString, MinLength: &shortMin, MaxLength: &maxLen},
		}},
		{"drops max_length", map[string]PropertySpec{
			"notation": {Type: TypeString, MinLength: &minLen},
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defs := map[string]EntityType{
				"Entity": {Properties: base},
				"Child":  {Inherits: "Entity", Properties: c.redec},
			}
			_, err := NewRegistry(defs, nil)
			if err == nil {
				t.Fatal("Expected build to fail on relaxed inherited property")
			}
		})
	}
}

func TestBuild_RedeclaredInheritedPropertyMayTighten(t *testing.T) {
	defs := map[string]EntityType{
		"Entity": {Properties: map[string]PropertySpec{
			"name": {Type: TypeString, Required: true},
			"tier": {Type: TypeString, Required: true, Enum: []string{"L1", "L2", "L3"}},
		}},
		"Child": {Inherits: "Entity", Properties: map[string]PropertySpec{
			// Narrowing the enum is allowed; the ancestor's guarantee holds.
			"tier": {Type: TypeString, Required: true, Enum: []string{"L1"}},
		}},
	}
	reg, err := NewRegistry(defs, nil)
	if err != nil {
		t.Fatalf("NewRegistry failed on tightened redeclaration: %v", err)
	}

	// The narrowed spec governs the child.
	if _, err := ValidateEntity(reg, "Child", map[string]any{"name": "x", "tier": "L2"}, ModeStrict); err == nil {
		t.Error("Child accepted a tier outside its narrowed enum")
	}
	if _, err := ValidateEntity(reg, "Child", map[string]any{"name": "x"}, ModeStrict); err == nil {
		t.Error("Child accepted a payload missing the inherited required tier")
	}
	if _, err := ValidateEntity(reg, "Child", map[string]any{"name": "x", "tier": "L1"}, ModeStrict); err != nil {
		t.Errorf("Child rejected a valid payload: %v", err)
	}
}

func TestRegistry_UnknownTypeLookups(t *testing.T) {
	reg, err := NewRegistry(testEntityDefs(), map[string]RelationshipType{
		"RELATES_TO": {SourceTypes: []string{"Entity"}, TargetTypes: []string{"Entity"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, err := reg.EntityType("Missing"); kgerrors.KindOf(err) != kgerrors.KindUnknownType {
		t.Errorf("EntityType: expected unknown_type, got %v", err)
	}
	if _, err := reg.RelationshipType("MISSING"); kgerrors.KindOf(err) != kgerrors.KindUnknownType {
		t.Errorf("RelationshipType: expected unknown_type, got %v", err)
	}
	if _, err := reg.Resolve("Missing"); kgerrors.KindOf(err) != kgerrors.KindUnknownType {
		t.Errorf("Resolve: expected unknown_type, got %v", err)
	}
}
