package schema

import (
	"fmt"
	"sort"
	"strings"

	"knowledge-store/backend/pkg/kgerrors"
)

// ValidateEntity checks properties against the flattened schema for typeName.
// All violations are collected in one pass and returned together. On success
// it returns the normalized property map.
func ValidateEntity(reg *Registry, typeName string, props map[string]any, mode Mode) (map[string]any, error) {
	schema, err := reg.Resolve(typeName)
	if err != nil {
		return nil, err
	}

	violations := checkProperties(schema, props, mode)
	if len(violations) > 0 {
		return nil, kgerrors.NewSchemaViolation(typeName, violations)
	}

	return normalize(schema, props, mode), nil
}

// ValidateRelationship checks relationship properties against the schema for
// typeName and verifies that both endpoint types are members of (or inherit
// from a member of) the allowed source/target sets.
func ValidateRelationship(reg *Registry, typeName, sourceType, targetType string, props map[string]any, mode Mode) (map[string]any, error) {
	def, err := reg.RelationshipType(typeName)
	if err != nil {
		return nil, err
	}

	if !isAllowedEndpoint(reg, sourceType, def.SourceTypes) {
		return nil, kgerrors.NewEndpointTypeMismatch(typeName, "source", sourceType, def.SourceTypes)
	}
	if !isAllowedEndpoint(reg, targetType, def.TargetTypes) {
		return nil, kgerrors.NewEndpointTypeMismatch(typeName, "target", targetType, def.TargetTypes)
	}

	violations := checkProperties(def.Properties, props, mode)
	if len(violations) > 0 {
		return nil, kgerrors.NewSchemaViolation(typeName, violations)
	}

	return normalize(def.Properties, props, mode), nil
}

// isAllowedEndpoint is the capability predicate for polymorphic endpoint
// checking: the entity type must be a subtype of some member of the set.
func isAllowedEndpoint(reg *Registry, entityType string, allowed []string) bool {
	for _, t := range allowed {
		if reg.IsSubtype(entityType, t) {
			return true
		}
	}
	return false
}

func checkProperties(schema map[string]PropertySpec, props map[string]any, mode Mode) []kgerrors.Violation {
	var violations []kgerrors.Violation

	required := make([]string, 0)
	for name, spec := range schema {
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	for _, name := range required {
		if _, present := props[name]; !present {
			violations = append(violations, kgerrors.Violation{
				Field:  name,
				Reason: "required property is missing",
			})
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec, declared := schema[name]
		if !declared {
			if mode == ModeStrict {
				violations = append(violations, kgerrors.Violation{
					Field:  name,
					Reason: "property is not declared in the schema",
				})
			}
			continue
		}
		violations = append(violations, checkValue(name, spec, props[name])...)
	}

	return violations
}

func checkValue(field string, spec PropertySpec, value any) []kgerrors.Violation {
	var violations []kgerrors.Violation
	fail := func(format string, args ...any) {
		violations = append(violations, kgerrors.Violation{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	switch spec.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			fail("expected string, got %T", value)
			return violations
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			fail("value %q is not one of: %s", s, strings.Join(spec.Enum, ", "))
		}
		if spec.MinLength != nil && len(s) < *spec.MinLength {
			fail("must have at least %d characters", *spec.MinLength)
		}
		if spec.MaxLength != nil && len(s) > *spec.MaxLength {
			fail("must have at most %d characters", *spec.MaxLength)
		}
	case TypeNumber:
		n, ok := asFloat64(value)
		if !ok {
			fail("expected number, got %T", value)
			return violations
		}
		if spec.Min != nil && n < *spec.Min {
			fail("must be at least %v", *spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			fail("must be at most %v", *spec.Max)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			fail("expected boolean, got %T", value)
		}
	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			fail("expected array, got %T", value)
			return violations
		}
		if spec.Items != nil {
			for i, item := range items {
				violations = append(violations, checkValue(fmt.Sprintf("%s[%d]", field, i), *spec.Items, item)...)
			}
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			fail("expected object, got %T", value)
		}
	}

	return violations
}

// normalize returns the property map the store will persist. Strict mode has
// already rejected undeclared properties; lenient mode passes them through.
func normalize(schema map[string]PropertySpec, props map[string]any, mode Mode) map[string]any {
	out := make(map[string]any, len(props))
	for name, value := range props {
		if _, declared := schema[name]; declared || mode == ModeLenient {
			out[name] = value
		}
	}
	return out
}

func asFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
