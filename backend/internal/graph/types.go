package graph

// Node is an entity instance as stored in the graph
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Labels     []string       `json:"labels,omitempty"`
	Properties map[string]any `json:"properties"`
}

// Edge is a relationship instance as stored in the graph
type Edge struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	FromID     string         `json:"from_id"`
	ToID       string         `json:"to_id"`
	Properties map[string]any `json:"properties"`
}

// Page selects one page of a list result. Number is 0-based.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// Pagination bounds for list operations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// clamp normalizes a page request to the supported bounds.
func (p Page) clamp() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	return p
}

func (p Page) skip() int { return p.Number * p.Size }

// PageInfo describes the pagination state of a list result.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func pageInfoFor(p Page, total int) PageInfo {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}
	return PageInfo{
		Page:       p.Number,
		PageSize:   p.Size,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages-1,
		HasPrev:    p.Number > 0,
	}
}

// NodeList is one page of nodes.
type NodeList struct {
	Nodes      []Node   `json:"nodes"`
	Pagination PageInfo `json:"pagination"`
}

// SymbolHit is a symbol that represents a concept, with the REPRESENTS
// relationship carrying the confidence used for ordering.
type SymbolHit struct {
	Symbol       Node    `json:"symbol"`
	Relationship Edge    `json:"relationship"`
	Confidence   float64 `json:"confidence"`
}

// SymbolList is one page of symbol hits for a concept.
type SymbolList struct {
	Concept    Node        `json:"concept"`
	Symbols    []SymbolHit `json:"symbols"`
	Pagination PageInfo    `json:"pagination"`
}

// ConceptHit is a concept represented by a symbol. Context comes from the
// REPRESENTS relationship so callers can disambiguate overloaded notation;
// multiple hits per symbol is an expected outcome, not an error.
type ConceptHit struct {
	Concept      Node   `json:"concept"`
	Relationship Edge   `json:"relationship"`
	Context      string `json:"context,omitempty"`
}

// ConceptList is one page of concept hits for a symbol.
type ConceptList struct {
	Symbol     Node         `json:"symbol"`
	Ambiguous  bool         `json:"ambiguous"`
	Concepts   []ConceptHit `json:"concepts"`
	Pagination PageInfo     `json:"pagination"`
}

// TieredEntity is an entity reduced to the stored representation for one
// knowledge tier.
type TieredEntity struct {
	EntityID   string         `json:"entity_id"`
	Type       string         `json:"type"`
	Tier       string         `json:"tier"`
	Properties map[string]any `json:"properties"`
}

// Interpretation is one domain-specific interpretation of a concept,
// carried by a HAS_INTERPRETATION_IN relationship.
type Interpretation struct {
	Domain         string `json:"domain"`
	Interpretation string `json:"interpretation"`
	Concept        Node   `json:"concept"`
	Relationship   Edge   `json:"relationship"`
}

// DomainMappings groups a concept's interpretations by target domain.
type DomainMappings struct {
	Domain          string           `json:"domain"`
	Interpretations []Interpretation `json:"interpretations"`
}

// MappingList is one page of a concept's interpretations grouped by domain.
// Pagination applies to the flat interpretation list before grouping, so a
// domain's interpretations can span page boundaries.
type MappingList struct {
	ConceptID  string           `json:"concept_id"`
	Mappings   []DomainMappings `json:"mappings"`
	Pagination PageInfo         `json:"pagination"`
}

// PathHop is one step of a path: the relationship traversed and the entity
// reached.
type PathHop struct {
	Relationship Edge `json:"relationship"`
	Entity       Node `json:"entity"`
}

// Path is an ordered sequence of hops from a start entity. An empty Hops
// slice with a zero-value Start means no path was found within the bound.
type Path struct {
	Start  Node      `json:"start"`
	Hops   []PathHop `json:"hops"`
	Length int       `json:"length"`
}
