package schema

// Property value types supported by the catalogs.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Knowledge tiers for Concept entities, from short summary to full detail.
const (
	TierL1 = "L1"
	TierL2 = "L2"
	TierL3 = "L3"
)

// Mode controls how properties not declared in the schema are treated.
type Mode string

const (
	// ModeStrict rejects undeclared properties
	ModeStrict Mode = "strict"
	// ModeLenient passes undeclared properties through untouched
	ModeLenient Mode = "lenient"
)

// PropertySpec describes a single property in a type's schema.
type PropertySpec struct {
	Type      string        `yaml:"type" json:"type"`
	Required  bool          `yaml:"required" json:"required"`
	Enum      []string      `yaml:"enum,omitempty" json:"enum,omitempty"`
	Min       *float64      `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *float64      `yaml:"max,omitempty" json:"max,omitempty"`
	MinLength *int          `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength *int          `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Items     *PropertySpec `yaml:"items,omitempty" json:"items,omitempty"`
}

// EntityType declares an entity type with optional single inheritance.
type EntityType struct {
	Name        string                  `yaml:"-" json:"name"`
	Description string                  `yaml:"description,omitempty" json:"description,omitempty"`
	Inherits    string                  `yaml:"inherits,omitempty" json:"inherits,omitempty"`
	Properties  map[string]PropertySpec `yaml:"properties" json:"properties"`
}

// RelationshipType declares a relationship type with its allowed endpoint
// type sets and property schema.
type RelationshipType struct {
	Name        string                  `yaml:"-" json:"name"`
	Description string                  `yaml:"description,omitempty" json:"description,omitempty"`
	SourceTypes []string                `yaml:"source_types" json:"source_types"`
	TargetTypes []string                `yaml:"target_types" json:"target_types"`
	Properties  map[string]PropertySpec `yaml:"properties" json:"properties"`
}

// ValidTier reports whether tier is one of the known knowledge tiers.
func ValidTier(tier string) bool {
	return tier == TierL1 || tier == TierL2 || tier == TierL3
}

func validPropertyType(t string) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}
