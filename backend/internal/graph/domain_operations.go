package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"knowledge-store/backend/pkg/kgerrors"
)

// ============================================================================
// Cross-Domain Mapping
// ============================================================================

// FindCrossDomainMappings returns one page of a concept's
// HAS_INTERPRETATION_IN edges, grouped by target domain. With a target domain
// the result is filtered to edges whose domain property matches exactly.
// Interpretations are ordered by domain, target name, then target id; the id
// tie-break is on an immutable key, so the ordering is stable across pages.
func (s *Store) FindCrossDomainMappings(ctx context.Context, conceptID, targetDomain string, page Page) (*MappingList, error) {
	page = page.clamp()

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := requireNode(ctx, tx, "concept", "Concept", conceptID); err != nil {
			return nil, err
		}

		res, err := tx.Run(ctx, `
			MATCH (c:Concept {id: $conceptID})-[r:HAS_INTERPRETATION_IN]->(t:Concept)
			WHERE $domain = '' OR r.domain = $domain
			RETURN count(r) AS total
		`, map[string]any{"conceptID": conceptID, "domain": targetDomain})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total := getIntFromRecord(record, "total")

		res, err = tx.Run(ctx, fmt.Sprintf(`
			MATCH (c:Concept {id: $conceptID})-[r:HAS_INTERPRETATION_IN]->(t:Concept)
			WHERE $domain = '' OR r.domain = $domain
			RETURN t, r
			ORDER BY r.domain ASC, t.name ASC, t.id ASC
			SKIP %d LIMIT %d
		`, page.skip(), page.Size), map[string]any{"conceptID": conceptID, "domain": targetDomain})
		if err != nil {
			return nil, err
		}

		interpretations := []Interpretation{}
		for res.Next(ctx) {
			rec := res.Record()
			target, ok := nodeFromRecord(rec, "t")
			if !ok {
				continue
			}
			edge, _ := edgeFromRecord(rec, "r", conceptID, target.ID)
			interpretations = append(interpretations, Interpretation{
				Domain:         getStringFromMap(edge.Properties, "domain", ""),
				Interpretation: getStringFromMap(edge.Properties, "interpretation", ""),
				Concept:        target,
				Relationship:   edge,
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		return &MappingList{
			ConceptID:  conceptID,
			Mappings:   groupByDomain(interpretations),
			Pagination: pageInfoFor(page, total),
		}, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("find cross-domain mappings", err)
	}

	return result.(*MappingList), nil
}

func groupByDomain(interpretations []Interpretation) []DomainMappings {
	byDomain := make(map[string][]Interpretation)
	for _, in := range interpretations {
		byDomain[in.Domain] = append(byDomain[in.Domain], in)
	}

	domains := make([]string, 0, len(byDomain))
	for domain := range byDomain {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	out := make([]DomainMappings, 0, len(domains))
	for _, domain := range domains {
		out = append(out, DomainMappings{Domain: domain, Interpretations: byDomain[domain]})
	}
	return out
}
