package schema

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog file names expected under the schema directory.
const (
	EntityCatalogFile       = "entity_types.yaml"
	RelationshipCatalogFile = "relationship_types.yaml"
)

//go:embed defaults/entity_types.yaml defaults/relationship_types.yaml
var defaultCatalogs embed.FS

// LoadCatalogs reads the entity and relationship type catalogs from dir and
// builds a registry. A missing catalog file falls back to the embedded
// default catalog; any malformed catalog fails the load so startup can abort
// with a descriptive error.
func LoadCatalogs(dir string) (*Registry, error) {
	entityDefs, err := loadCatalog[EntityType](dir, EntityCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading entity type catalog: %w", err)
	}

	relDefs, err := loadCatalog[RelationshipType](dir, RelationshipCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading relationship type catalog: %w", err)
	}

	return NewRegistry(entityDefs, relDefs)
}

// DefaultRegistry builds a registry from the embedded default catalogs only.
func DefaultRegistry() (*Registry, error) {
	entityDefs, err := parseCatalog[EntityType](mustReadDefault(EntityCatalogFile))
	if err != nil {
		return nil, fmt.Errorf("parsing default entity type catalog: %w", err)
	}
	relDefs, err := parseCatalog[RelationshipType](mustReadDefault(RelationshipCatalogFile))
	if err != nil {
		return nil, fmt.Errorf("parsing default relationship type catalog: %w", err)
	}
	return NewRegistry(entityDefs, relDefs)
}

func loadCatalog[T any](dir, file string) (map[string]T, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if os.IsNotExist(err) {
		data = mustReadDefault(file)
	} else if err != nil {
		return nil, err
	}
	return parseCatalog[T](data)
}

func parseCatalog[T any](data []byte) (map[string]T, error) {
	defs := make(map[string]T)
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return defs, nil
}

func mustReadDefault(file string) []byte {
	data, err := defaultCatalogs.ReadFile("defaults/" + file)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog %s missing: %v", file, err))
	}
	return data
}
