package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"knowledge-store/backend/pkg/kgerrors"
)

// ============================================================================
// Symbol-Concept Resolution
// ============================================================================

// FindSymbolsForConcept returns the symbols that represent a concept, ordered
// by relationship confidence descending with symbol name then id as
// tie-breaks. The id tie-break is on an immutable key, so the ordering is
// stable across pages even under concurrent inserts.
func (s *Store) FindSymbolsForConcept(ctx context.Context, conceptID string, page Page) (*SymbolList, error) {
	page = page.clamp()

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		concept, err := requireNode(ctx, tx, "concept", "Concept", conceptID)
		if err != nil {
			return nil, err
		}

		res, err := tx.Run(ctx, `
			MATCH (s:Symbol)-[r:REPRESENTS]->(c:Concept {id: $conceptID})
			RETURN count(r) AS total
		`, map[string]any{"conceptID": conceptID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total := getIntFromRecord(record, "total")

		res, err = tx.Run(ctx, fmt.Sprintf(`
			MATCH (s:Symbol)-[r:REPRESENTS]->(c:Concept {id: $conceptID})
			WITH s, r, coalesce(r.confidence, 0.0) AS confidence
			RETURN s, r, confidence
			ORDER BY confidence DESC, s.name ASC, s.id ASC
			SKIP %d LIMIT %d
		`, page.skip(), page.Size), map[string]any{"conceptID": conceptID})
		if err != nil {
			return nil, err
		}

		symbols := []SymbolHit{}
		for res.Next(ctx) {
			rec := res.Record()
			symbol, ok := nodeFromRecord(rec, "s")
			if !ok {
				continue
			}
			edge, _ := edgeFromRecord(rec, "r", symbol.ID, conceptID)
			symbols = append(symbols, SymbolHit{
				Symbol:       symbol,
				Relationship: edge,
				Confidence:   getFloat64FromMap(edge.Properties, "confidence", 0.0),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		return &SymbolList{
			Concept:    concept,
			Symbols:    symbols,
			Pagination: pageInfoFor(page, total),
		}, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("find symbols for concept", err)
	}

	return result.(*SymbolList), nil
}

// FindConceptsForSymbol returns the concepts a symbol represents. A symbol
// representing several concepts is ambiguous notation; each hit carries the
// relationship's context property so the caller can disambiguate.
func (s *Store) FindConceptsForSymbol(ctx context.Context, symbolID string, page Page) (*ConceptList, error) {
	page = page.clamp()

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		symbol, err := requireNode(ctx, tx, "symbol", "Symbol", symbolID)
		if err != nil {
			return nil, err
		}

		res, err := tx.Run(ctx, `
			MATCH (s:Symbol {id: $symbolID})-[r:REPRESENTS]->(c:Concept)
			RETURN count(r) AS total
		`, map[string]any{"symbolID": symbolID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total := getIntFromRecord(record, "total")

		res, err = tx.Run(ctx, fmt.Sprintf(`
			MATCH (s:Symbol {id: $symbolID})-[r:REPRESENTS]->(c:Concept)
			RETURN c, r
			ORDER BY c.name ASC, c.id ASC
			SKIP %d LIMIT %d
		`, page.skip(), page.Size), map[string]any{"symbolID": symbolID})
		if err != nil {
			return nil, err
		}

		concepts := []ConceptHit{}
		for res.Next(ctx) {
			rec := res.Record()
			concept, ok := nodeFromRecord(rec, "c")
			if !ok {
				continue
			}
			edge, _ := edgeFromRecord(rec, "r", symbolID, concept.ID)
			concepts = append(concepts, ConceptHit{
				Concept:      concept,
				Relationship: edge,
				Context:      getStringFromMap(edge.Properties, "context", ""),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		return &ConceptList{
			Symbol:     symbol,
			Ambiguous:  total > 1,
			Concepts:   concepts,
			Pagination: pageInfoFor(page, total),
		}, nil
	})
	if err != nil {
		if kgerrors.KindOf(err) == kgerrors.KindNotFound {
			return nil, err
		}
		return nil, mapStoreError("find concepts for symbol", err)
	}

	return result.(*ConceptList), nil
}

// requireNode fetches a node by label and id within the caller's
// transaction, failing with NotFound if it does not exist.
func requireNode(ctx context.Context, tx neo4j.ManagedTransaction, what, label, id string) (Node, error) {
	res, err := tx.Run(ctx, fmt.Sprintf("MATCH (n:%s {id: $id}) RETURN n", label), map[string]any{"id": id})
	if err != nil {
		return Node{}, err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return Node{}, err
		}
		return Node{}, kgerrors.NewNotFound(what, id)
	}
	node, ok := nodeFromRecord(res.Record(), "n")
	if !ok {
		return Node{}, fmt.Errorf("lookup returned no node")
	}
	return node, nil
}
