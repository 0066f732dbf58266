package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogs_FallsBackToDefaults(t *testing.T) {
	reg, err := LoadCatalogs(t.TempDir())
	if err != nil {
		t.Fatalf("LoadCatalogs failed: %v", err)
	}

	for _, name := range []string{"Entity", "Concept", "Symbol", "Document", "Algorithm", "Method"} {
		if _, err := reg.EntityType(name); err != nil {
			t.Errorf("Default catalog missing entity type %q: %v", name, err)
		}
	}
	if _, err := reg.RelationshipType("REPRESENTS"); err != nil {
		t.Errorf("Default catalog missing REPRESENTS: %v", err)
	}
}

func TestLoadCatalogs_ReadsCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	entityCatalog := `
Entity:
  properties:
    id:
      type: string
    name:
      type: string
      required: true
Theorem:
  inherits: Entity
  properties:
    statement:
      type: string
      required: true
`
	relationshipCatalog := `
PROVES:
  source_types: [Entity]
  target_types: [Theorem]
  properties:
    sketch:
      type: string
`
	if err := os.WriteFile(filepath.Join(dir, EntityCatalogFile), []byte(entityCatalog), 0o644); err != nil {
		t.Fatalf("Writing entity catalog: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, RelationshipCatalogFile), []byte(relationshipCatalog), 0o644); err != nil {
		t.Fatalf("Writing relationship catalog: %v", err)
	}

	reg, err := LoadCatalogs(dir)
	if err != nil {
		t.Fatalf("LoadCatalogs failed: %v", err)
	}

	if _, err := reg.EntityType("Theorem"); err != nil {
		t.Fatalf("Custom entity type not loaded: %v", err)
	}
	schema, err := reg.Resolve("Theorem")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !schema["name"].Required {
		t.Error("Inherited 'name' lost its required flag")
	}
	if _, err := reg.RelationshipType("PROVES"); err != nil {
		t.Fatalf("Custom relationship type not loaded: %v", err)
	}
}

func TestLoadCatalogs_MalformedCatalogFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, EntityCatalogFile), []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatalf("Writing catalog: %v", err)
	}

	if _, err := LoadCatalogs(dir); err == nil {
		t.Fatal("Expected malformed catalog to fail the load")
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	chain, err := reg.LabelChain("Algorithm")
	if err != nil {
		t.Fatalf("LabelChain failed: %v", err)
	}
	if len(chain) != 3 || chain[0] != "Entity" || chain[2] != "Algorithm" {
		t.Errorf("Unexpected Algorithm chain: %v", chain)
	}
}
