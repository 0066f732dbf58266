package schema

import (
	"fmt"
	"sort"

	"knowledge-store/backend/pkg/kgerrors"
)

// Registry holds the full type catalog with inheritance resolved into
// flattened property schemas. It is immutable after Build; concurrent
// reads need no synchronization.
type Registry struct {
	entities      map[string]*EntityType
	relationships map[string]*RelationshipType
	resolved      map[string]map[string]PropertySpec
	chains        map[string][]string // root-first inheritance chain per type
}

// Builder accumulates type declarations before building a Registry.
// A failed registration leaves the builder unchanged.
type Builder struct {
	entities      map[string]EntityType
	relationships map[string]RelationshipType
}

// NewBuilder creates an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{
		entities:      make(map[string]EntityType),
		relationships: make(map[string]RelationshipType),
	}
}

// AddEntityType registers an entity type declaration. It fails with
// DuplicateType if the name is taken, or CyclicInheritance if the parent
// reference closes a cycle through already declared types. An undeclared
// parent is allowed here (catalogs are unordered) and checked at Build.
func (b *Builder) AddEntityType(def EntityType) error {
	if def.Name == "" {
		return fmt.Errorf("entity type with empty name")
	}
	if _, exists := b.entities[def.Name]; exists {
		return kgerrors.NewDuplicateType(def.Name)
	}
	if err := validateProperties(def.Name, def.Properties); err != nil {
		return err
	}
	if def.Inherits != "" {
		chain := []string{def.Name}
		parent := def.Inherits
		for parent != "" {
			chain = append(chain, parent)
			if parent == def.Name {
				return kgerrors.NewCyclicInheritance(def.Name, chain)
			}
			p, ok := b.entities[parent]
			if !ok {
				break // checked at Build
			}
			parent = p.Inherits
		}
	}
	b.entities[def.Name] = def
	return nil
}

// AddRelationshipType registers a relationship type declaration.
// Endpoint type references are checked at Build.
func (b *Builder) AddRelationshipType(def RelationshipType) error {
	if def.Name == "" {
		return fmt.Errorf("relationship type with empty name")
	}
	if _, exists := b.relationships[def.Name]; exists {
		return kgerrors.NewDuplicateType(def.Name)
	}
	if err := validateProperties(def.Name, def.Properties); err != nil {
		return err
	}
	if len(def.SourceTypes) == 0 {
		return fmt.Errorf("relationship type %q declares no source types", def.Name)
	}
	if len(def.TargetTypes) == 0 {
		return fmt.Errorf("relationship type %q declares no target types", def.Name)
	}
	b.relationships[def.Name] = def
	return nil
}

// Build verifies the accumulated declarations and resolves inheritance into
// flattened schemas. Any inconsistency fails the whole build; a schema
// that does not load cleanly must abort startup.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		entities:      make(map[string]*EntityType, len(b.entities)),
		relationships: make(map[string]*RelationshipType, len(b.relationships)),
		resolved:      make(map[string]map[string]PropertySpec, len(b.entities)),
		chains:        make(map[string][]string, len(b.entities)),
	}

	for name := range b.entities {
		def := b.entities[name]
		reg.entities[name] = &def
	}

	// Verify parent references and detect cycles before flattening.
	for name, def := range reg.entities {
		seen := map[string]bool{name: true}
		chain := []string{name}
		parent := def.Inherits
		for parent != "" {
			chain = append(chain, parent)
			p, ok := reg.entities[parent]
			if !ok {
				return nil, kgerrors.NewUnknownParent(name, parent)
			}
			if seen[parent] {
				return nil, kgerrors.NewCyclicInheritance(name, chain)
			}
			seen[parent] = true
			parent = p.Inherits
		}
	}

	// Flatten: own properties union all ancestor properties. A child may add
	// properties, and may redeclare an inherited one only to narrow it: the
	// value type must match and no constraint the ancestor carries may relax.
	for name := range reg.entities {
		chain := reg.chainFor(name)
		reg.chains[name] = chain

		merged := make(map[string]PropertySpec)
		for _, ancestor := range chain { // root first, so children override last
			for prop, spec := range reg.entities[ancestor].Properties {
				if prev, ok := merged[prop]; ok {
					if prev.Type != spec.Type {
						return nil, fmt.Errorf("type %q redeclares inherited property %q with type %q (inherited %q)",
							ancestor, prop, spec.Type, prev.Type)
					}
					if reason, weakens := weakensInherited(prev, spec); weakens {
						return nil, fmt.Errorf("type %q redeclares inherited property %q and relaxes its %s",
							ancestor, prop, reason)
					}
				}
				merged[prop] = spec
			}
		}
		reg.resolved[name] = merged
	}

	for name := range b.relationships {
		def := b.relationships[name]
		for _, t := range append(append([]string{}, def.SourceTypes...), def.TargetTypes...) {
			if _, ok := reg.entities[t]; !ok {
				return nil, kgerrors.NewUnknownType(t)
			}
		}
		reg.relationships[name] = &def
	}

	return reg, nil
}

// chainFor returns the root-first inheritance chain for name.
// Called after cycle/parent verification, so the walk terminates.
func (r *Registry) chainFor(name string) []string {
	var reversed []string
	for cur := name; cur != ""; cur = r.entities[cur].Inherits {
		reversed = append(reversed, cur)
	}
	chain := make([]string, len(reversed))
	for i, t := range reversed {
		chain[len(reversed)-1-i] = t
	}
	return chain
}

// NewRegistry builds a registry from complete catalogs in one call.
func NewRegistry(entityDefs map[string]EntityType, relDefs map[string]RelationshipType) (*Registry, error) {
	b := NewBuilder()

	names := make([]string, 0, len(entityDefs))
	for name := range entityDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := entityDefs[name]
		def.Name = name
		if err := b.AddEntityType(def); err != nil {
			return nil, err
		}
	}

	relNames := make([]string, 0, len(relDefs))
	for name := range relDefs {
		relNames = append(relNames, name)
	}
	sort.Strings(relNames)
	for _, name := range relNames {
		def := relDefs[name]
		def.Name = name
		if err := b.AddRelationshipType(def); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// EntityType returns the declared (unflattened) entity type definition.
func (r *Registry) EntityType(name string) (*EntityType, error) {
	def, ok := r.entities[name]
	if !ok {
		return nil, kgerrors.NewUnknownType(name)
	}
	return def, nil
}

// RelationshipType returns the relationship type definition.
func (r *Registry) RelationshipType(name string) (*RelationshipType, error) {
	def, ok := r.relationships[name]
	if !ok {
		return nil, kgerrors.NewUnknownType(name)
	}
	return def, nil
}

// Resolve returns the fully merged property schema for an entity type:
// its own properties union all inherited ones.
func (r *Registry) Resolve(name string) (map[string]PropertySpec, error) {
	schema, ok := r.resolved[name]
	if !ok {
		return nil, kgerrors.NewUnknownType(name)
	}
	return schema, nil
}

// IsSubtype reports whether a is b or inherits from b, directly or
// transitively. Unknown types are never subtypes.
func (r *Registry) IsSubtype(a, b string) bool {
	for _, ancestor := range r.chains[a] {
		if ancestor == b {
			return true
		}
	}
	return false
}

// LabelChain returns the root-first inheritance chain for an entity type,
// used as the node's label set in the graph store.
func (r *Registry) LabelChain(name string) ([]string, error) {
	chain, ok := r.chains[name]
	if !ok {
		return nil, kgerrors.NewUnknownType(name)
	}
	return chain, nil
}

// EntityTypes returns all entity type definitions sorted by name.
func (r *Registry) EntityTypes() []EntityType {
	out := make([]EntityType, 0, len(r.entities))
	for _, def := range r.entities {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RelationshipTypes returns all relationship type definitions sorted by name.
func (r *Registry) RelationshipTypes() []RelationshipType {
	out := make([]RelationshipType, 0, len(r.relationships))
	for _, def := range r.relationships {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// weakensInherited reports whether next relaxes a constraint that the
// inherited spec carries. A child may tighten (add an enum restriction,
// raise a min bound) but never loosen what its ancestors guarantee.
func weakensInherited(prev, next PropertySpec) (string, bool) {
	if prev.Required && !next.Required {
		return "required flag", true
	}
	if len(prev.Enum) > 0 {
		if len(next.Enum) == 0 {
			return "enum", true
		}
		allowed := make(map[string]bool, len(prev.Enum))
		for _, v := range prev.Enum {
			allowed[v] = true
		}
		for _, v := range next.Enum {
			if !allowed[v] {
				return "enum", true
			}
		}
	}
	if prev.Min != nil && (next.Min == nil || *next.Min < *prev.Min) {
		return "min bound", true
	}
	if prev.Max != nil && (next.Max == nil || *next.Max > *prev.Max) {
		return "max bound", true
	}
	if prev.MinLength != nil && (next.MinLength == nil || *next.MinLength < *prev.MinLength) {
		return "min_length bound", true
	}
	if prev.MaxLength != nil && (next.MaxLength == nil || *next.MaxLength > *prev.MaxLength) {
		return "max_length bound", true
	}
	return "", false
}

func validateProperties(typeName string, props map[string]PropertySpec) error {
	for name, spec := range props {
		if !validPropertyType(spec.Type) {
			return fmt.Errorf("type %q property %q has invalid value type %q", typeName, name, spec.Type)
		}
		if len(spec.Enum) > 0 && spec.Type != TypeString {
			return fmt.Errorf("type %q property %q declares enum on non-string type", typeName, name)
		}
		if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
			return fmt.Errorf("type %q property %q has min > max", typeName, name)
		}
		if spec.MinLength != nil && spec.MaxLength != nil && *spec.MinLength > *spec.MaxLength {
			return fmt.Errorf("type %q property %q has min_length > max_length", typeName, name)
		}
		if spec.Items != nil && spec.Type != TypeArray {
			return fmt.Errorf("type %q property %q declares items on non-array type", typeName, name)
		}
	}
	return nil
}
